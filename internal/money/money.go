// Package money holds the currency rounding rules shared by the balance and
// receipt calculators.
package money

import (
	"math"

	"github.com/shopspring/decimal"
)

const (
	// Tolerance is the amount below which a balance or settlement counts as zero.
	Tolerance = 0.01

	// FullClaimTolerance is how close the summed share fractions of an item
	// must get to 1 for the item to count as fully claimed. Three-way splits
	// drift further than cent rounding does.
	FullClaimTolerance = 0.002

	// ReconcileThreshold bounds the rounding discrepancy that may be absorbed
	// into a single member's receipt total. Anything at or above it is left
	// visible.
	ReconcileThreshold = 0.10
)

// Round rounds v to cents, half away from zero.
func Round(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}

// IsZero reports whether v is within Tolerance of zero.
func IsZero(v float64) bool {
	return math.Abs(v) <= Tolerance
}

// Sum adds the values in decimal arithmetic and rounds the result to cents.
func Sum(values ...float64) float64 {
	total := decimal.Zero
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		total = total.Add(decimal.NewFromFloat(v))
	}
	f, _ := total.Round(2).Float64()
	return f
}
