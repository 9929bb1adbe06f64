// Package money centralizes the decimal-safe arithmetic the account engine
// needs for exact-cent balance, margin, fee, and PnL bookkeeping.
package money

import "github.com/shopspring/decimal"

// D is a thin alias so callers don't need to import shopspring/decimal
// directly for the common case.
type D = decimal.Decimal

// FromFloat converts a float64 into a Decimal.
func FromFloat(f float64) D {
	return decimal.NewFromFloat(f)
}

// ToFloat converts a Decimal back to float64 for the query-surface methods
// the account engine's public contract exposes as plain floats.
func ToFloat(d D) float64 {
	f, _ := d.Float64()
	return f
}

// Zero is the additive identity.
func Zero() D { return decimal.Zero }

// Mul multiplies two decimals.
func Mul(a, b D) D { return a.Mul(b) }

// Div divides a by b. Callers must ensure b is non-zero; division by zero
// is a programmer error in this domain (leverage and quantity are always
// validated positive before reaching arithmetic).
func Div(a, b D) D { return a.Div(b) }

// Add sums any number of decimals.
func Add(ds ...D) D {
	sum := decimal.Zero
	for _, d := range ds {
		sum = sum.Add(d)
	}
	return sum
}

// Sub subtracts b from a.
func Sub(a, b D) D { return a.Sub(b) }

// LessThan reports whether a < b.
func LessThan(a, b D) bool { return a.LessThan(b) }

// LessThanOrEqual reports whether a <= b.
func LessThanOrEqual(a, b D) bool { return a.LessThanOrEqual(b) }

// GreaterThan reports whether a > b.
func GreaterThan(a, b D) bool { return a.GreaterThan(b) }

// Epsilon is the tolerance below which a quantity or PnL is treated as
// dust and purged, matching the account engine's ε boundary cases.
var Epsilon = decimal.NewFromFloat(1e-9)

// IsDust reports whether abs(d) <= Epsilon.
func IsDust(d D) bool {
	return LessThanOrEqual(d.Abs(), Epsilon)
}
