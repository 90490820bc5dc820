package domain

import (
	"maps"
	"slices"
)

// RateTable maps a currency code to its rate against the table's base currency.
type RateTable map[string]float64

// Codes returns the table's currency codes in sorted order.
func (t RateTable) Codes() []string {
	codes := slices.Collect(maps.Keys(t))
	slices.Sort(codes)
	return codes
}

// Rate returns the rate for code; ok is false when the code is missing or its rate is not positive.
func (t RateTable) Rate(code string) (float64, bool) {
	v, ok := t[code]
	if !ok || v <= 0 {
		return 0, false
	}
	return v, true
}

func (t RateTable) Clone() RateTable {
	return maps.Clone(t)
}

// RateSnapshot is one fetched rate table together with what the provider said about it.
type RateSnapshot struct {
	Base      string
	Rates     RateTable
	UpdatedAt string // provider's time_last_update_utc, may be empty
}

// RatePair is a source/target currency selection.
type RatePair struct {
	Base  string
	Quote string
}

func (p RatePair) Reversed() RatePair {
	return RatePair{
		Base:  p.Quote,
		Quote: p.Base,
	}
}

func (p RatePair) String() string {
	return p.Base + "/" + p.Quote
}
