package utils

import "github.com/shopspring/decimal"

// Round2 rounds a monetary amount to cents using decimal arithmetic, so
// repeated round-trips through edits do not drift.
func Round2(x float64) float64 {
	f, _ := decimal.NewFromFloat(x).Round(2).Float64()
	return f
}
