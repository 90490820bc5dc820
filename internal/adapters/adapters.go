package adapters

import (
	"context"
	"fxconvert/internal/domain"
)

// RatesSource serves the rate table a converter session works with.
type RatesSource interface {
	FetchRates(ctx context.Context) (domain.RateSnapshot, error)
	BaseURL() string
}

// RateClient talks to the upstream exchange rate provider.
type RateClient interface {
	GetExchangeRates(ctx context.Context, base string) (domain.RateSnapshot, error)
}
