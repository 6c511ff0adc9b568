package payroll

import (
	"github.com/shopspring/decimal"
	"github.com/warp/paycalc/generic"
)

// =============================================================================
// INCOME TAX CALCULATOR
// =============================================================================

// ComputeTax estimates weekly federal and provincial income tax.
//
// Each week is treated as if it repeats for the whole year: the weekly figure
// is annualized, run through the brackets, reduced by the personal credit and
// a credit for the tier-1 and insurance contributions, then spread back over
// the year. This is an estimate, not a year-to-date reconciliation.
func ComputeTax(cs ConstantSet, taxableWeekly, tier1Weekly, insuranceWeekly decimal.Decimal) TaxResult {
	n := cs.PeriodsPerYear
	annualIncome := generic.Annualize(taxableWeekly, n)
	creditBase := generic.Annualize(tier1Weekly, n).Add(generic.Annualize(insuranceWeekly, n))

	return TaxResult{
		FederalWeekly:    weeklyTax(cs.Federal, annualIncome, creditBase, n),
		ProvincialWeekly: weeklyTax(cs.Provincial, annualIncome, creditBase, n),
	}
}

func weeklyTax(auth TaxAuthority, annualIncome, creditBase decimal.Decimal, periods int) decimal.Decimal {
	gross := auth.Brackets.Apply(annualIncome)
	credit := auth.BasicPersonalAmount.Mul(auth.CreditRate).
		Add(creditBase.Mul(auth.CreditRate))
	return generic.PerPeriod(generic.NonNegative(gross.Sub(credit)), periods)
}
