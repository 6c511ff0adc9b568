/*
types.go - Payroll deduction value types

PURPOSE:
  Defines the values that flow through one weekly deduction estimate:
  the caller's input, the two intermediate results, and the final
  breakdown. All of them are immutable values recomputed per call.

KEY TYPES:
  Mode:               EarlyYear or Annualized projection policy
  Options:            Mode plus an optional union dues override
  WeeklyInput:        Taxable / non-taxable weekly earnings + mode
  ContributionResult: CPP, CPP2 and EI for the week
  TaxResult:          Federal and provincial income tax for the week
  DeductionBreakdown: Everything above plus dues, totals and net pay

SEE ALSO:
  - calculator.go: Produces DeductionBreakdown
  - constants.go: Statutory figures the calculation reads
*/
package payroll

import (
	"github.com/shopspring/decimal"
	"github.com/warp/paycalc/generic"
)

// =============================================================================
// MODE - Weekly-to-annual projection policy
// =============================================================================

type Mode string

const (
	// ModeEarlyYear approximates contributions week by week. Intended for
	// the start of a year before annual totals mean anything.
	ModeEarlyYear Mode = "early-year"

	// ModeAnnualized projects the week over 52 weeks and caps annually.
	ModeAnnualized Mode = "annualized"

	DefaultMode = ModeEarlyYear
)

// Modes lists the valid modes in display order.
func Modes() []Mode { return []Mode{ModeEarlyYear, ModeAnnualized} }

// ParseMode maps a caller-supplied string to a Mode. Only the exact values
// "early-year" and "annualized" are recognized; the empty string is accepted
// as the default and anything else is reported as !ok.
func ParseMode(s string) (Mode, bool) {
	switch Mode(s) {
	case "", ModeEarlyYear:
		return ModeEarlyYear, true
	case ModeAnnualized:
		return ModeAnnualized, true
	default:
		return DefaultMode, false
	}
}

// NormalizeMode is ParseMode with silent fallback to DefaultMode.
func NormalizeMode(s string) Mode {
	m, _ := ParseMode(s)
	return m
}

func (m Mode) String() string { return string(m) }

// =============================================================================
// OPTIONS
// =============================================================================

// Options controls one calculation. The zero value means early-year mode
// with the constant set's default dues rate.
type Options struct {
	TaxMode       Mode
	UnionDuesRate *decimal.Decimal
}

// ModeOptions is shorthand for Options{TaxMode: mode} from a bare string.
func ModeOptions(mode string) Options {
	return Options{TaxMode: NormalizeMode(mode)}
}

// WithUnionDuesRate returns a copy of o with the dues rate overridden.
func (o Options) WithUnionDuesRate(rate decimal.Decimal) Options {
	o.UnionDuesRate = &rate
	return o
}

// =============================================================================
// INPUT
// =============================================================================

type WeeklyInput struct {
	TaxableWeekly    decimal.Decimal
	NonTaxableWeekly decimal.Decimal
	Mode             Mode
}

// MaxWeeklyAmount bounds each weekly earnings figure at the boundary.
var MaxWeeklyAmount = decimal.New(1, 9)

// Validate is the boundary check for callers that want to reject negative or
// unreasonably large earnings. The calculator itself accepts any value and
// lets it flow through the arithmetic.
func (in WeeklyInput) Validate() error {
	if err := validateWeeklyAmount("taxableWeekly", in.TaxableWeekly); err != nil {
		return err
	}
	return validateWeeklyAmount("nonTaxableWeekly", in.NonTaxableWeekly)
}

func validateWeeklyAmount(field string, d decimal.Decimal) error {
	// Scale first: the comparisons below rescale d.
	if err := generic.CheckScale(field, d); err != nil {
		return err
	}
	if d.IsNegative() {
		return &generic.InputError{Field: field, Value: d.String(), Reason: "must not be negative"}
	}
	if d.GreaterThan(MaxWeeklyAmount) {
		return &generic.InputError{Field: field, Value: d.String(), Reason: "must not exceed " + MaxWeeklyAmount.String()}
	}
	return nil
}

// ValidateDuesRate rejects a dues override outside 0..1.
func ValidateDuesRate(rate decimal.Decimal) error {
	if err := generic.CheckScale("unionDuesRate", rate); err != nil {
		return err
	}
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(1)) {
		return &generic.InputError{Field: "unionDuesRate", Value: rate.String(), Reason: "must be between 0 and 1"}
	}
	return nil
}

// =============================================================================
// RESULTS
// =============================================================================

// ContributionResult holds weekly contributions. Each is at most its annual
// cap divided by the periods per year.
type ContributionResult struct {
	Tier1     decimal.Decimal
	Tier2     decimal.Decimal
	Insurance decimal.Decimal
}

// Total sums the three contributions.
func (c ContributionResult) Total() decimal.Decimal {
	return c.Tier1.Add(c.Tier2).Add(c.Insurance)
}

// TaxResult holds weekly income tax, floored at zero after credits.
type TaxResult struct {
	FederalWeekly    decimal.Decimal
	ProvincialWeekly decimal.Decimal
}

func (t TaxResult) Total() decimal.Decimal {
	return t.FederalWeekly.Add(t.ProvincialWeekly)
}

// DeductionBreakdown is the result of one weekly calculation. Figures are
// full precision; use Rounded for display.
type DeductionBreakdown struct {
	CPP             decimal.Decimal `json:"cpp"`
	CPP2            decimal.Decimal `json:"cpp2"`
	EI              decimal.Decimal `json:"ei"`
	FederalTax      decimal.Decimal `json:"federalTax"`
	AlbertaTax      decimal.Decimal `json:"albertaTax"`
	UnionDues       decimal.Decimal `json:"unionDues"`
	TotalDeductions decimal.Decimal `json:"totalDeductions"`
	NetTaxableOnly  decimal.Decimal `json:"netTaxableOnly"`
	NetPayTotal     decimal.Decimal `json:"netPayTotal"`
}

// Rounded returns a copy with every figure rounded half away from zero to
// places decimal places.
func (b DeductionBreakdown) Rounded(places int32) DeductionBreakdown {
	return DeductionBreakdown{
		CPP:             b.CPP.Round(places),
		CPP2:            b.CPP2.Round(places),
		EI:              b.EI.Round(places),
		FederalTax:      b.FederalTax.Round(places),
		AlbertaTax:      b.AlbertaTax.Round(places),
		UnionDues:       b.UnionDues.Round(places),
		TotalDeductions: b.TotalDeductions.Round(places),
		NetTaxableOnly:  b.NetTaxableOnly.Round(places),
		NetPayTotal:     b.NetPayTotal.Round(places),
	}
}
