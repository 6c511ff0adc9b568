/*
calculator.go - Weekly deduction orchestrator

PURPOSE:
  Composes the contribution and income tax calculators into one
  DeductionBreakdown, adds union dues and derives net pay.

CALCULATION ORDER:
  1. Normalize mode (unknown or empty -> early-year)
  2. Contributions (CPP, CPP2, EI)
  3. Income tax, credited with CPP and EI (CPP2 is not credited)
  4. Union dues = taxable * dues rate
  5. Total deductions, net of taxable pay, net pay including non-taxable pay

PRECISION:
  Nothing is rounded here. Callers format the breakdown (see
  DeductionBreakdown.Rounded).

USAGE:
  calc := payroll.NewCalculator(payroll.Alberta2025())
  b := calc.CalculateDeductionsForWeek(
      decimal.NewFromInt(1500), decimal.NewFromInt(100),
      payroll.ModeOptions("early-year"),
  )

SEE ALSO:
  - contributions.go, tax.go: The two stages
  - constants.go: Injected ConstantSet
*/
package payroll

import (
	"github.com/shopspring/decimal"
)

// Calculator holds one immutable ConstantSet. It is safe for concurrent use.
type Calculator struct {
	constants ConstantSet
}

// NewCalculator copies cs so later changes to the caller's value have no
// effect on the calculator.
func NewCalculator(cs ConstantSet) *Calculator {
	return &Calculator{constants: cs.Clone()}
}

// Constants returns a copy of the calculator's constant set.
func (c *Calculator) Constants() ConstantSet {
	return c.constants.Clone()
}

// CalculateDeductionsForWeek computes one week's deductions and net pay.
func (c *Calculator) CalculateDeductionsForWeek(taxableWeekly, nonTaxableWeekly decimal.Decimal, opts Options) DeductionBreakdown {
	return c.Calculate(WeeklyInput{
		TaxableWeekly:    taxableWeekly,
		NonTaxableWeekly: nonTaxableWeekly,
		Mode:             opts.TaxMode,
	}, opts.UnionDuesRate)
}

// Calculate is CalculateDeductionsForWeek taking a WeeklyInput. A nil
// duesRate uses the constant set's default.
func (c *Calculator) Calculate(in WeeklyInput, duesRate *decimal.Decimal) DeductionBreakdown {
	cs := c.constants
	mode := NormalizeMode(string(in.Mode))

	contrib := ComputeContributions(cs, in.TaxableWeekly, mode)
	tax := ComputeTax(cs, in.TaxableWeekly, contrib.Tier1, contrib.Insurance)

	rate := cs.UnionDuesRate
	if duesRate != nil {
		rate = *duesRate
	}
	dues := in.TaxableWeekly.Mul(rate)

	total := contrib.Total().Add(tax.Total()).Add(dues)
	netTaxable := in.TaxableWeekly.Sub(total)

	return DeductionBreakdown{
		CPP:             contrib.Tier1,
		CPP2:            contrib.Tier2,
		EI:              contrib.Insurance,
		FederalTax:      tax.FederalWeekly,
		AlbertaTax:      tax.ProvincialWeekly,
		UnionDues:       dues,
		TotalDeductions: total,
		NetTaxableOnly:  netTaxable,
		NetPayTotal:     netTaxable.Add(in.NonTaxableWeekly),
	}
}

// CompareModes runs the same week through both modes.
func (c *Calculator) CompareModes(taxableWeekly, nonTaxableWeekly decimal.Decimal, duesRate *decimal.Decimal) map[Mode]DeductionBreakdown {
	out := make(map[Mode]DeductionBreakdown, 2)
	for _, m := range Modes() {
		out[m] = c.Calculate(WeeklyInput{
			TaxableWeekly:    taxableWeekly,
			NonTaxableWeekly: nonTaxableWeekly,
			Mode:             m,
		}, duesRate)
	}
	return out
}

var defaultCalculator = NewCalculator(Alberta2025())

// CalculateDeductionsForWeek uses the built-in Alberta 2025 constants.
func CalculateDeductionsForWeek(taxableWeekly, nonTaxableWeekly decimal.Decimal, opts Options) DeductionBreakdown {
	return defaultCalculator.CalculateDeductionsForWeek(taxableWeekly, nonTaxableWeekly, opts)
}
