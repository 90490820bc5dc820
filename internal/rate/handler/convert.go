package handler

import (
	"errors"
	"fxconvert/internal/domain"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"
)

type ConvertResponse struct {
	Status            string  `json:"status" example:"success"`
	From              string  `json:"from" example:"USD"`
	To                string  `json:"to" example:"EUR"`
	Amount            float64 `json:"amount" example:"100"`
	ConversionRate    float64 `json:"conversion_rate" example:"0.85"`
	ConversionResult  float64 `json:"conversion_result" example:"85"`
	TimeLastUpdateUTC string  `json:"time_last_update_utc,omitempty" example:"Mon, 08 Dec 2025 00:00:01 +0000"`
}

// Convert godoc
// @Summary Convert an amount
// @Description Convert an amount between two currencies through the latest rate table
// @Tags Rates
// @Produce json
// @Param from query string true "Source currency code"
// @Param to query string true "Target currency code"
// @Param amount query number true "Non-negative amount"
// @Success 200 {object} ConvertResponse
// @Failure 400 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Failure 500 {object} errorResponse
// @Router /convert [get]
func (h *Handler) Convert(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	from := strings.ToUpper(strings.TrimSpace(query.Get("from")))
	to := strings.ToUpper(strings.TrimSpace(query.Get("to")))

	if err := h.validator.ValidateCodes(from, to); err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), "")
		return
	}
	amount, err := h.validator.ParseAmount(strings.TrimSpace(query.Get("amount")))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), "")
		return
	}

	conv, err := h.service.Convert(r.Context(), from, to, amount)
	if err != nil {
		if errors.Is(err, domain.ErrRateNotFound) {
			writeError(w, http.StatusNotFound, "rate not found", "")
			return
		}
		logrus.WithError(err).WithFields(logrus.Fields{"handler": "Convert", "from": from, "to": to}).Error(upstreamFailedMsg)
		writeError(w, http.StatusInternalServerError, upstreamFailedMsg, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, ConvertResponse{
		Status:            statusSuccess,
		From:              conv.From,
		To:                conv.To,
		Amount:            conv.Amount,
		ConversionRate:    conv.Rate,
		ConversionResult:  conv.Result,
		TimeLastUpdateUTC: conv.UpdatedAt,
	})
}
