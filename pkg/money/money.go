// Package money provides rounding helpers for monetary amounts.
//
// All billing amounts in aquabill are decimal values rounded to two places
// after every accumulation step. Rounding at each step (instead of once at
// the end) keeps totals reproducible across band-by-band tariff sums.
package money

import "math"

// Round rounds v to two decimal places, half away from zero.
func Round(v float64) float64 {
	return math.Round(v*100) / 100
}
