package rate

import (
	"context"
	"fmt"
	"fxconvert/internal/adapters"
	"fxconvert/internal/converter"
	"fxconvert/internal/domain"
)

// Conversion is a server-side conversion computed from one upstream snapshot.
type Conversion struct {
	From      string
	To        string
	Amount    float64
	Rate      float64
	Result    float64
	UpdatedAt string
}

type Service struct {
	client   adapters.RateClient
	baseCode string
}

// Latest returns the upstream table quoted against base, or against the configured base
// currency when base is empty.
func (s *Service) Latest(ctx context.Context, base string) (domain.RateSnapshot, error) {
	if base == "" {
		base = s.baseCode
	}
	return s.client.GetExchangeRates(ctx, base)
}

func (s *Service) Convert(ctx context.Context, from string, to string, amount float64) (Conversion, error) {
	snapshot, err := s.client.GetExchangeRates(ctx, s.baseCode)
	if err != nil {
		return Conversion{}, err
	}

	pair := domain.RatePair{Base: from, Quote: to}
	result, ok := converter.ComputeConversion(amount, pair.Base, pair.Quote, snapshot.Rates)
	if !ok {
		return Conversion{}, fmt.Errorf("%w: %s", domain.ErrRateNotFound, pair)
	}
	rate, _ := converter.CrossRate(from, to, snapshot.Rates)

	return Conversion{
		From:      from,
		To:        to,
		Amount:    amount,
		Rate:      rate,
		Result:    result,
		UpdatedAt: snapshot.UpdatedAt,
	}, nil
}

func NewService(client adapters.RateClient, baseCode string) *Service {
	return &Service{client: client, baseCode: baseCode}
}
