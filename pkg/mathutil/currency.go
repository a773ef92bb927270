// Package mathutil provides common mathematical utility functions.
package mathutil

import (
	"math"

	"github.com/iwvelando/rental-portfolio/pkg/constants"
	"github.com/shopspring/decimal"
)

// RoundCents rounds a currency amount to whole cents using decimal arithmetic,
// half away from zero. Binary representation error does not leak into the
// result, so 1.005 rounds to 1.01. Non-finite values are returned unchanged.
func RoundCents(val float64) float64 {
	if !IsFinite(val) {
		return val
	}
	return decimal.NewFromFloat(val).Round(constants.CurrencyPlaces).InexactFloat64()
}

// SumCents adds currency amounts with decimal precision and returns the cent-rounded total.
func SumCents(values ...float64) float64 {
	total := decimal.Zero
	for _, v := range values {
		if !IsFinite(v) {
			continue
		}
		total = total.Add(decimal.NewFromFloat(v))
	}
	return total.Round(constants.CurrencyPlaces).InexactFloat64()
}

// IsPositive checks if a value is positive (greater than tolerance)
func IsPositive(val float64) bool {
	return val > constants.CurrencyTolerance
}

// IsFinite reports whether val is neither NaN nor an infinity.
func IsFinite(val float64) bool {
	return !math.IsNaN(val) && !math.IsInf(val, 0)
}

// SafeDivide returns numerator/denominator, or 0 when the denominator is not
// strictly positive.
func SafeDivide(numerator, denominator float64) float64 {
	if denominator <= 0 || math.IsNaN(denominator) {
		return 0
	}
	return numerator / denominator
}

// Min returns the minimum of two float64 values
func Min(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

// Max returns the maximum of two float64 values
func Max(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

// CalculatePercentage calculates what percentage value is of total
func CalculatePercentage(value, total float64) float64 {
	return SafeDivide(value, total) * constants.PercentageMultiplier
}

// PercentChange returns the percent change from previous to current. A zero
// previous value yields 0.
func PercentChange(previous, current float64) float64 {
	if previous == 0 {
		return 0
	}
	return (current - previous) / math.Abs(previous) * constants.PercentageMultiplier
}
