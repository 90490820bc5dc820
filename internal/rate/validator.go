package rate

import (
	"errors"
	"fxconvert/internal/converter"
	"regexp"
)

var (
	ErrBaseFormat     = errors.New("base currency must be a 3-letter code")
	ErrFromRequired   = errors.New("from currency is required")
	ErrToRequired     = errors.New("to currency is required")
	ErrFromFormat     = errors.New("from currency must be a 3-letter code")
	ErrToFormat       = errors.New("to currency must be a 3-letter code")
	ErrAmountRequired = errors.New("amount is required")
	ErrAmountInvalid  = errors.New("amount must be a non-negative number")
)

var codePattern = regexp.MustCompile(`^[A-Z]{3}$`)

// CurrencyValidator checks query parameters of the rates endpoints. Codes are expected
// upper-cased already.
type CurrencyValidator struct{}

// ValidateBase accepts an empty base, which selects the configured default.
func (v *CurrencyValidator) ValidateBase(base string) error {
	if base != "" && !codePattern.MatchString(base) {
		return ErrBaseFormat
	}
	return nil
}

func (v *CurrencyValidator) ValidateCodes(from, to string) error {
	if from == "" {
		return ErrFromRequired
	}
	if to == "" {
		return ErrToRequired
	}
	if !codePattern.MatchString(from) {
		return ErrFromFormat
	}
	if !codePattern.MatchString(to) {
		return ErrToFormat
	}
	return nil
}

func (v *CurrencyValidator) ParseAmount(raw string) (float64, error) {
	if raw == "" {
		return 0, ErrAmountRequired
	}
	amount, ok := converter.ParseAmount(raw)
	if !ok {
		return 0, ErrAmountInvalid
	}
	return amount.Value, nil
}

func NewValidator() *CurrencyValidator {
	return &CurrencyValidator{}
}
