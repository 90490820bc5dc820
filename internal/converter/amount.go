package converter

import (
	"math"
	"strconv"
	"strings"
)

// Amount is the value of the amount field. Empty marks a cleared field, which is not zero.
type Amount struct {
	Value float64
	Empty bool
}

// Positive reports whether a result line may be shown for the amount.
func (a Amount) Positive() bool { return !a.Empty && a.Value > 0 }

// String renders the amount the way the input field shows it.
func (a Amount) String() string {
	if a.Empty {
		return ""
	}
	return strconv.FormatFloat(a.Value, 'f', -1, 64)
}

// ParseAmount turns raw field input into an Amount. ok is false for input that must be
// rejected: anything that is not a finite non-negative number. "" is accepted as Empty.
func ParseAmount(raw string) (Amount, bool) {
	if raw == "" {
		return Amount{Empty: true}, true
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return Amount{}, false
	}
	return Amount{Value: v}, true
}
