/*
Package generic provides the domain-agnostic arithmetic the payroll engine is
built on.

PURPOSE:
  This package contains jurisdiction-agnostic types and algorithms: decimal
  helpers for currency amounts and rates, progressive bracket schedules, and
  the error taxonomy shared by every layer. Nothing here knows about pension
  tiers, insurance or a particular province; the payroll package composes
  these pieces into a weekly deduction estimate.

KEY CONCEPTS IN THIS FILE (types.go):
  - Amounts are decimal.Decimal values (currency, full precision)
  - Rates are decimal.Decimal fractions (0.0595 == 5.95%)
  - Annualize / PerPeriod convert between pay-period and annual figures

DESIGN PRINCIPLES:
  1. Precision: Uses decimal.Decimal to avoid floating-point drift
  2. No rounding: values keep full precision until a caller formats them
  3. Pure functions: nothing in this package holds state

USAGE:
  weekly := generic.MustParseDecimal("1500")
  annual := generic.Annualize(weekly, 52)        // 78000
  back := generic.PerPeriod(annual, 52)          // 1500

SEE ALSO:
  - brackets.go: Progressive bracket schedules
  - errors.go: Sentinel and structured errors
*/
package generic

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// DECIMAL CONSTRUCTORS
// =============================================================================

// Dec converts a float literal to a decimal using its shortest exact
// representation (0.0595 stays 0.0595).
func Dec(value float64) decimal.Decimal {
	return decimal.NewFromFloat(value)
}

// DecPtr is Dec for optional fields.
func DecPtr(value float64) *decimal.Decimal {
	d := Dec(value)
	return &d
}

// MustParseDecimal parses s or returns zero. Only use with literals.
func MustParseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// ParseAmount parses a caller-supplied amount. The field name is carried into
// the returned *InputError.
func ParseAmount(field, s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, &InputError{Field: field, Value: s, Reason: "not a number"}
	}
	if err := CheckScale(field, d); err != nil {
		return decimal.Zero, err
	}
	return d, nil
}

// =============================================================================
// SCALE LIMITS
// =============================================================================

// Caller-supplied amounts must stay within these limits. Comparing or adding
// decimals rescales them to a common exponent, so "1e200000000" would expand
// to a 200-million-digit integer on first use.
const (
	MaxExponent        = 20
	MaxCoefficientBits = 100 // about 30 decimal digits
)

// CheckScale rejects d when its exponent or coefficient is outside the scale
// limits. It reads only the exponent and bit length, so it is safe to call
// on any parsed value. The value is left out of the error; printing it is
// exactly the expansion being refused.
func CheckScale(field string, d decimal.Decimal) error {
	exp := d.Exponent()
	if exp > MaxExponent || exp < -MaxExponent {
		return &InputError{Field: field, Reason: fmt.Sprintf("exponent %d is outside ±%d", exp, MaxExponent)}
	}
	if d.Coefficient().BitLen() > MaxCoefficientBits {
		return &InputError{Field: field, Reason: "too many significant digits"}
	}
	return nil
}

// =============================================================================
// PERIOD CONVERSION
// =============================================================================

// Annualize projects a per-period amount over a full year.
func Annualize(perPeriod decimal.Decimal, periodsPerYear int) decimal.Decimal {
	return perPeriod.Mul(decimal.NewFromInt(int64(periodsPerYear)))
}

// PerPeriod spreads an annual amount evenly over the pay periods of a year.
func PerPeriod(annual decimal.Decimal, periodsPerYear int) decimal.Decimal {
	return annual.Div(decimal.NewFromInt(int64(periodsPerYear)))
}

// =============================================================================
// CLAMPING
// =============================================================================

// NonNegative floors d at zero.
func NonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// Clamp bounds d to [lo, hi].
func Clamp(d, lo, hi decimal.Decimal) decimal.Decimal {
	return decimal.Max(lo, decimal.Min(d, hi))
}

// FormatMoney renders d as dollars with places decimal places. Display only.
func FormatMoney(d decimal.Decimal, places int32) string {
	return fmt.Sprintf("$%s", d.StringFixed(places))
}
