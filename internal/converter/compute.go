package converter

import (
	"math"

	"fxconvert/internal/domain"
)

// ComputeConversion converts amount from source to target through the table's common base:
// (amount / rate[source]) * rate[target]. ok is false when either rate is undefined or the
// amount is not a finite non-negative number.
func ComputeConversion(amount float64, source, target string, table domain.RateTable) (float64, bool) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount < 0 {
		return 0, false
	}
	from, ok := table.Rate(source)
	if !ok {
		return 0, false
	}
	to, ok := table.Rate(target)
	if !ok {
		return 0, false
	}
	return (amount / from) * to, true
}

// CrossRate is the value of one unit of source in target.
func CrossRate(source, target string, table domain.RateTable) (float64, bool) {
	return ComputeConversion(1, source, target, table)
}
