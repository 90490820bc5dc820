package handler

import (
	"context"
	"encoding/json"
	"fxconvert/internal/domain"
	"fxconvert/internal/rate"
	"net/http"
)

const (
	statusSuccess = "success"
	statusError   = "error"

	upstreamFailedMsg = "Failed to fetch conversion rates"
)

type Validator interface {
	ValidateBase(base string) error
	ValidateCodes(from, to string) error
	ParseAmount(raw string) (float64, error)
}

type Service interface {
	Latest(ctx context.Context, base string) (domain.RateSnapshot, error)
	Convert(ctx context.Context, from string, to string, amount float64) (rate.Conversion, error)
}

type Handler struct {
	validator Validator
	service   Service
}

func NewRateHandler(validator Validator, service Service) *Handler {
	return &Handler{validator: validator, service: service}
}

type errorResponse struct {
	Status  string `json:"status" example:"error"`
	Message string `json:"message" example:"Failed to fetch conversion rates"`
	Error   string `json:"error,omitempty"`
}

func writeError(w http.ResponseWriter, statusCode int, message string, detail string) {
	writeJSON(w, statusCode, errorResponse{
		Status:  statusError,
		Message: message,
		Error:   detail,
	})
}

func writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(body)
}
