package ratesapi

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

const statusSuccess = "success"

// Client reads the rate table from a rates backend exposing GET <base>/rates.
type Client struct {
	http    *http.Client
	baseURL string
}

func NewClient(httpClient *http.Client, baseURL string) *Client {
	return &Client{http: httpClient, baseURL: strings.TrimSuffix(baseURL, "/")}
}

type ratesResponse struct {
	Status            string             `json:"status"`
	Message           string             `json:"message"`
	Base              string             `json:"base"`
	ConversionRates   map[string]float64 `json:"conversion_rates"`
	TimeLastUpdateUTC string             `json:"time_last_update_utc"`
}

func (c *Client) BaseURL() string { return c.baseURL }

// FetchRates returns a *domain.TransportError when the request can't complete, the status is
// not 2xx or the body can't be decoded, and a *domain.APIError when the body reports a failure.
func (c *Client) FetchRates(ctx context.Context) (domain.RateSnapshot, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return domain.RateSnapshot{}, &domain.TransportError{Err: fmt.Errorf("failed to parse base URL: %w", err)}
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/rates"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return domain.RateSnapshot{}, &domain.TransportError{Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.RateSnapshot{}, &domain.TransportError{Err: unwrapURLError(err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return domain.RateSnapshot{}, &domain.TransportError{StatusCode: resp.StatusCode}
	}

	var rr ratesResponse
	if err = json.NewDecoder(resp.Body).Decode(&rr); err != nil {
		return domain.RateSnapshot{}, &domain.TransportError{Err: fmt.Errorf("failed to decode response: %w", err)}
	}

	if rr.Status != statusSuccess {
		return domain.RateSnapshot{}, &domain.APIError{Message: rr.Message}
	}

	if rr.ConversionRates == nil {
		rr.ConversionRates = map[string]float64{}
	}

	return domain.RateSnapshot{
		Base:      rr.Base,
		Rates:     rr.ConversionRates,
		UpdatedAt: rr.TimeLastUpdateUTC,
	}, nil
}

// unwrapURLError drops the "Get <url>:" prefix; the URL is reported separately.
func unwrapURLError(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return urlErr.Err
	}
	return err
}
