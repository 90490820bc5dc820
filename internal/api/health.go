package api

import (
	"encoding/json"
	"net/http"
)

const serviceName = "fxconvert"

type HealthResponse struct {
	Status    string   `json:"status" example:"healthy"`
	Service   string   `json:"service" example:"fxconvert"`
	Endpoints []string `json:"endpoints"`
}

// healthHandler godoc
// @Summary Service health
// @Description Report that the service is up and list the endpoints it serves
// @Tags Health
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /health [get]
func healthHandler(endpoints []string) http.HandlerFunc {
	body := HealthResponse{Status: "healthy", Service: serviceName, Endpoints: endpoints}
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(body)
	}
}
