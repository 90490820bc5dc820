package handler

import (
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"
)

type GetRatesResponse struct {
	Status            string             `json:"status" example:"success"`
	Base              string             `json:"base" example:"USD"`
	ConversionRates   map[string]float64 `json:"conversion_rates"`
	TimeLastUpdateUTC string             `json:"time_last_update_utc,omitempty" example:"Mon, 08 Dec 2025 00:00:01 +0000"`
}

// GetRates godoc
// @Summary Latest exchange rates
// @Description Get the latest rate table, quoted against the given or the configured base currency
// @Tags Rates
// @Produce json
// @Param base query string false "Base currency code"
// @Success 200 {object} GetRatesResponse
// @Failure 400 {object} errorResponse
// @Failure 500 {object} errorResponse
// @Router /rates [get]
func (h *Handler) GetRates(w http.ResponseWriter, r *http.Request) {
	base := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("base")))

	if err := h.validator.ValidateBase(base); err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), "")
		return
	}

	snapshot, err := h.service.Latest(r.Context(), base)
	if err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{"handler": "GetRates", "base": base}).Error(upstreamFailedMsg)
		writeError(w, http.StatusInternalServerError, upstreamFailedMsg, err.Error())
		return
	}

	rates := snapshot.Rates
	if rates == nil {
		rates = map[string]float64{}
	}
	writeJSON(w, http.StatusOK, GetRatesResponse{
		Status:            statusSuccess,
		Base:              snapshot.Base,
		ConversionRates:   rates,
		TimeLastUpdateUTC: snapshot.UpdatedAt,
	})
}
