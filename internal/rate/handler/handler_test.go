package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"fxconvert/internal/domain"
	"fxconvert/internal/rate"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockValidator struct{ mock.Mock }

func (m *MockValidator) ValidateBase(base string) error {
	args := m.Called(base)
	return args.Error(0)
}

func (m *MockValidator) ValidateCodes(from, to string) error {
	args := m.Called(from, to)
	return args.Error(0)
}

func (m *MockValidator) ParseAmount(raw string) (float64, error) {
	args := m.Called(raw)
	v, _ := args.Get(0).(float64)
	return v, args.Error(1)
}

type MockService struct{ mock.Mock }

func (m *MockService) Latest(ctx context.Context, base string) (domain.RateSnapshot, error) {
	args := m.Called(ctx, base)
	s, _ := args.Get(0).(domain.RateSnapshot)
	return s, args.Error(1)
}

func (m *MockService) Convert(ctx context.Context, from string, to string, amount float64) (rate.Conversion, error) {
	args := m.Called(ctx, from, to, amount)
	c, _ := args.Get(0).(rate.Conversion)
	return c, args.Error(1)
}

type errorJSON struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) errorJSON {
	t.Helper()
	require.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	var ej errorJSON
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &ej))
	require.Equal(t, "error", ej.Status)
	return ej
}

// --- GetRates ---

func TestHandler_GetRates_Success(t *testing.T) {
	mockValidator := new(MockValidator)
	mockService := new(MockService)
	h := NewRateHandler(mockValidator, mockService)

	snapshot := domain.RateSnapshot{
		Base:      "USD",
		Rates:     domain.RateTable{"USD": 1, "EUR": 0.85, "MAD": 10.0},
		UpdatedAt: "Mon, 08 Dec 2025 00:00:01 +0000",
	}
	mockValidator.On("ValidateBase", "").Return(nil).Once()
	mockService.On("Latest", mock.Anything, "").Return(snapshot, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/rates", nil)
	rr := httptest.NewRecorder()

	h.GetRates(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	var res GetRatesResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res))
	require.Equal(t, "success", res.Status)
	require.Equal(t, "USD", res.Base)
	require.InDelta(t, 0.85, res.ConversionRates["EUR"], 1e-9)
	require.InDelta(t, 10.0, res.ConversionRates["MAD"], 1e-9)
	require.Equal(t, "Mon, 08 Dec 2025 00:00:01 +0000", res.TimeLastUpdateUTC)
	mockValidator.AssertExpectations(t)
	mockService.AssertExpectations(t)
}

func TestHandler_GetRates_NormalizesBase(t *testing.T) {
	mockValidator := new(MockValidator)
	mockService := new(MockService)
	h := NewRateHandler(mockValidator, mockService)

	mockValidator.On("ValidateBase", "EUR").Return(nil).Once()
	mockService.On("Latest", mock.Anything, "EUR").Return(domain.RateSnapshot{Base: "EUR"}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/rates?base=+eur+", nil)
	rr := httptest.NewRecorder()

	h.GetRates(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var res GetRatesResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res))
	require.NotNil(t, res.ConversionRates)
	mockValidator.AssertExpectations(t)
	mockService.AssertExpectations(t)
}

func TestHandler_GetRates_InvalidBase(t *testing.T) {
	mockValidator := new(MockValidator)
	mockService := new(MockService)
	h := NewRateHandler(mockValidator, mockService)

	mockValidator.On("ValidateBase", "EURO").Return(rate.ErrBaseFormat).Once()

	req := httptest.NewRequest(http.MethodGet, "/rates?base=euro", nil)
	rr := httptest.NewRecorder()

	h.GetRates(rr, req)

	require.Equal(t, http.StatusBadRequest, rr.Code)
	ej := decodeError(t, rr)
	require.Equal(t, rate.ErrBaseFormat.Error(), ej.Message)
	mockService.AssertNotCalled(t, "Latest", mock.Anything, mock.Anything)
}

func TestHandler_GetRates_UpstreamError(t *testing.T) {
	mockValidator := new(MockValidator)
	mockService := new(MockService)
	h := NewRateHandler(mockValidator, mockService)

	mockValidator.On("ValidateBase", "").Return(nil).Once()
	mockService.On("Latest", mock.Anything, "").Return(domain.RateSnapshot{}, errors.New("unexpected status code 503 for currency \"USD\"")).Once()

	req := httptest.NewRequest(http.MethodGet, "/rates", nil)
	rr := httptest.NewRecorder()

	h.GetRates(rr, req)

	require.Equal(t, http.StatusInternalServerError, rr.Code)
	ej := decodeError(t, rr)
	require.Equal(t, "Failed to fetch conversion rates", ej.Message)
	require.Contains(t, ej.Error, "503")
	mockService.AssertExpectations(t)
}

// --- Convert ---

func TestHandler_Convert_Success(t *testing.T) {
	mockValidator := new(MockValidator)
	mockService := new(MockService)
	h := NewRateHandler(mockValidator, mockService)

	conv := rate.Conversion{From: "USD", To: "EUR", Amount: 100, Rate: 0.85, Result: 85}
	mockValidator.On("ValidateCodes", "USD", "EUR").Return(nil).Once()
	mockValidator.On("ParseAmount", "100").Return(100.0, nil).Once()
	mockService.On("Convert", mock.Anything, "USD", "EUR", 100.0).Return(conv, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/convert?from=usd&to=eur&amount=100", nil)
	rr := httptest.NewRecorder()

	h.Convert(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	var res ConvertResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res))
	require.Equal(t, "success", res.Status)
	require.Equal(t, "USD", res.From)
	require.Equal(t, "EUR", res.To)
	require.InDelta(t, 100.0, res.Amount, 1e-9)
	require.InDelta(t, 0.85, res.ConversionRate, 1e-9)
	require.InDelta(t, 85.0, res.ConversionResult, 1e-9)
	mockValidator.AssertExpectations(t)
	mockService.AssertExpectations(t)
}

func TestHandler_Convert_ValidationErrors(t *testing.T) {
	cases := []struct {
		name         string
		validatorErr error
	}{
		{name: "from required", validatorErr: rate.ErrFromRequired},
		{name: "to required", validatorErr: rate.ErrToRequired},
		{name: "from format", validatorErr: rate.ErrFromFormat},
		{name: "to format", validatorErr: rate.ErrToFormat},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mockValidator := new(MockValidator)
			mockService := new(MockService)
			h := NewRateHandler(mockValidator, mockService)

			mockValidator.On("ValidateCodes", "USD", "EUR").Return(tc.validatorErr).Once()

			req := httptest.NewRequest(http.MethodGet, "/convert?from=+usd&to=eur+&amount=1", nil)
			rr := httptest.NewRecorder()

			h.Convert(rr, req)

			require.Equal(t, http.StatusBadRequest, rr.Code)
			ej := decodeError(t, rr)
			require.Equal(t, tc.validatorErr.Error(), ej.Message)
			mockValidator.AssertNotCalled(t, "ParseAmount", mock.Anything)
			mockService.AssertNotCalled(t, "Convert", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestHandler_Convert_InvalidAmount(t *testing.T) {
	mockValidator := new(MockValidator)
	mockService := new(MockService)
	h := NewRateHandler(mockValidator, mockService)

	mockValidator.On("ValidateCodes", "USD", "EUR").Return(nil).Once()
	mockValidator.On("ParseAmount", "-5").Return(0.0, rate.ErrAmountInvalid).Once()

	req := httptest.NewRequest(http.MethodGet, "/convert?from=USD&to=EUR&amount=-5", nil)
	rr := httptest.NewRecorder()

	h.Convert(rr, req)

	require.Equal(t, http.StatusBadRequest, rr.Code)
	ej := decodeError(t, rr)
	require.Equal(t, rate.ErrAmountInvalid.Error(), ej.Message)
	mockService.AssertNotCalled(t, "Convert", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestHandler_Convert_NotFound(t *testing.T) {
	mockValidator := new(MockValidator)
	mockService := new(MockService)
	h := NewRateHandler(mockValidator, mockService)

	mockValidator.On("ValidateCodes", "USD", "XXX").Return(nil).Once()
	mockValidator.On("ParseAmount", "1").Return(1.0, nil).Once()
	mockService.On("Convert", mock.Anything, "USD", "XXX", 1.0).
		Return(rate.Conversion{}, fmt.Errorf("%w: USD/XXX", domain.ErrRateNotFound)).Once()

	req := httptest.NewRequest(http.MethodGet, "/convert?from=USD&to=XXX&amount=1", nil)
	rr := httptest.NewRecorder()

	h.Convert(rr, req)

	require.Equal(t, http.StatusNotFound, rr.Code)
	ej := decodeError(t, rr)
	require.Equal(t, "rate not found", ej.Message)
	mockService.AssertExpectations(t)
}

func TestHandler_Convert_UpstreamError(t *testing.T) {
	mockValidator := new(MockValidator)
	mockService := new(MockService)
	h := NewRateHandler(mockValidator, mockService)

	mockValidator.On("ValidateCodes", "USD", "EUR").Return(nil).Once()
	mockValidator.On("ParseAmount", "1").Return(1.0, nil).Once()
	mockService.On("Convert", mock.Anything, "USD", "EUR", 1.0).Return(rate.Conversion{}, errors.New("boom")).Once()

	req := httptest.NewRequest(http.MethodGet, "/convert?from=USD&to=EUR&amount=1", nil)
	rr := httptest.NewRecorder()

	h.Convert(rr, req)

	require.Equal(t, http.StatusInternalServerError, rr.Code)
	ej := decodeError(t, rr)
	require.Equal(t, "Failed to fetch conversion rates", ej.Message)
	require.Equal(t, "boom", ej.Error)
	mockService.AssertExpectations(t)
}
