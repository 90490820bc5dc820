package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"fxconvert/internal/domain"
	"net/http"
	"net/url"
	"strings"
)

// ExchangeRateClient calls the exchangerate-api v6 "latest" endpoint. Its base URL embeds the
// API key, so neither the URL nor the key ever appear in returned errors.
type ExchangeRateClient struct {
	http    *http.Client
	baseURL string
}

type apiResponse struct {
	Result            string             `json:"result"`
	ErrorType         string             `json:"error-type"`
	BaseCode          string             `json:"base_code"`
	TimeLastUpdateUTC string             `json:"time_last_update_utc"`
	ConversionRates   map[string]float64 `json:"conversion_rates"`
}

func (c *ExchangeRateClient) GetExchangeRates(ctx context.Context, base string) (domain.RateSnapshot, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return domain.RateSnapshot{}, errors.New("failed to parse upstream base URL")
	}

	u.Path = strings.TrimSuffix(u.Path, "/") + "/" + base

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return domain.RateSnapshot{}, fmt.Errorf("failed to create request for currency %q", base)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.RateSnapshot{}, fmt.Errorf("failed to execute request for currency %q: %w", base, stripURL(err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return domain.RateSnapshot{}, fmt.Errorf("unexpected status code %d for currency %q", resp.StatusCode, base)
	}

	var body apiResponse
	if err = json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return domain.RateSnapshot{}, fmt.Errorf("failed to decode response for currency %q: %w", base, err)
	}

	if body.Result != "success" {
		reason := body.Result
		if body.ErrorType != "" {
			reason += " (" + body.ErrorType + ")"
		}
		return domain.RateSnapshot{}, fmt.Errorf("api returned non-success result for currency %q: %s", base, reason)
	}

	rates := body.ConversionRates
	if rates == nil {
		rates = map[string]float64{}
	}
	code := body.BaseCode
	if code == "" {
		code = base
	}

	return domain.RateSnapshot{Base: code, Rates: rates, UpdatedAt: body.TimeLastUpdateUTC}, nil
}

// stripURL keeps only the underlying cause of a *url.Error.
func stripURL(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return urlErr.Err
	}
	return err
}

func NewExchangeRateClient(httpClient *http.Client, baseURL string) *ExchangeRateClient {
	return &ExchangeRateClient{http: httpClient, baseURL: baseURL}
}
