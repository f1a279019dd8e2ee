// Package money provides currency rounding for order totals.
package money

import "math"

// epsilon nudges values sitting just below a .5 cent boundary due to binary
// float representation (e.g. 2.675*100 == 267.49999...) so they round half-up.
const epsilon = 2.220446049250313e-16

// Round rounds a monetary amount to two decimals using half-up semantics.
// Order totals must be rounded exactly once, over the full sum of lines;
// summing per-line rounded amounts drifts across many orders.
func Round(amount float64) float64 {
	return math.Round((amount+epsilon)*100) / 100
}
