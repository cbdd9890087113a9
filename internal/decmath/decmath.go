// Package decmath extends shopspring/decimal with the handful of
// operations the aggregation formulas need. Division by zero is a caller
// bug everywhere in this module; call sites guard before dividing.
package decmath

import (
	"math/big"

	"github.com/shopspring/decimal"
)

var (
	Zero    = decimal.Zero
	One     = decimal.NewFromInt(1)
	Two     = decimal.NewFromInt(2)
	Hundred = decimal.NewFromInt(100)
)

// Abs returns the absolute value of d.
func Abs(d decimal.Decimal) decimal.Decimal {
	return d.Abs()
}

// Max returns the larger of a and b.
func Max(a, b decimal.Decimal) decimal.Decimal {
	if a.GreaterThan(b) {
		return a
	}
	return b
}

// Min returns the smaller of a and b.
func Min(a, b decimal.Decimal) decimal.Decimal {
	if a.LessThan(b) {
		return a
	}
	return b
}

// Sqrt computes the square root by Newton-Raphson iteration:
// x' = (v/x + x)/2 until the sequence stops decreasing. The seed must be
// at or above the root for the stop condition to be valid, so it is v
// itself for v >= 1 and 1 below that. Returns 0 for zero or negative
// input.
func Sqrt(v decimal.Decimal) decimal.Decimal {
	if v.Sign() <= 0 {
		return decimal.Zero
	}

	x := v
	if v.LessThan(One) {
		x = One
	}
	for {
		next := v.DivRound(x, sqrtScale).Add(x).DivRound(Two, sqrtScale)
		if next.GreaterThanOrEqual(x) {
			return x
		}
		x = next
	}
}

const sqrtScale = 18

// FromRawAmount converts a raw integer token amount to a decimal using the
// token's decimal count.
func FromRawAmount(amount *big.Int, decimals uint8) decimal.Decimal {
	if amount == nil || amount.Sign() == 0 {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(amount, -int32(decimals))
}

// FromInt64 converts an integer count to a decimal.
func FromInt64(n int64) decimal.Decimal {
	return decimal.NewFromInt(n)
}
