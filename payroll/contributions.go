package payroll

import (
	"github.com/shopspring/decimal"
	"github.com/warp/paycalc/generic"
)

// =============================================================================
// CONTRIBUTION CALCULATOR - CPP, CPP2, EI
// =============================================================================

// ComputeContributions returns the week's pension and insurance contributions
// under mode. An unrecognized mode is treated as ModeEarlyYear.
//
// Both modes agree when the same weekly earnings repeat all year; they differ
// only in how the weekly figure is turned into a capped amount.
func ComputeContributions(cs ConstantSet, taxableWeekly decimal.Decimal, mode Mode) ContributionResult {
	if mode == ModeAnnualized {
		return annualizedContributions(cs, taxableWeekly)
	}
	return earlyYearContributions(cs, taxableWeekly)
}

func earlyYearContributions(cs ConstantSet, weekly decimal.Decimal) ContributionResult {
	n := cs.PeriodsPerYear

	weeklyExemption := generic.PerPeriod(cs.Tier1.BasicExemption, n)
	tier1 := decimal.Min(
		generic.NonNegative(weekly.Sub(weeklyExemption)).Mul(cs.Tier1.Rate),
		generic.PerPeriod(cs.Tier1.AnnualCap, n),
	)

	// min(weekly, MIE/n) * rate is taken as min(weekly*rate, MIE*rate/n) so a
	// week at or above the ceiling lands exactly on the weekly cap.
	insurance := decimal.Min(
		weekly.Mul(cs.Insurance.Rate),
		generic.PerPeriod(cs.Insurance.MaxInsurable.Mul(cs.Insurance.Rate), n),
		generic.PerPeriod(cs.Insurance.AnnualCap, n),
	)

	return ContributionResult{
		Tier1: tier1,
		// Tier 2 is projected over the year even in early-year mode.
		Tier2:     tier2FromAnnualProjection(cs, weekly),
		Insurance: insurance,
	}
}

func annualizedContributions(cs ConstantSet, weekly decimal.Decimal) ContributionResult {
	n := cs.PeriodsPerYear
	annual := generic.Annualize(weekly, n)

	pensionable := generic.Clamp(annual, cs.Tier1.BasicExemption, cs.Tier1.Ceiling).Sub(cs.Tier1.BasicExemption)
	tier1 := decimal.Min(pensionable.Mul(cs.Tier1.Rate), cs.Tier1.AnnualCap)

	insurable := decimal.Min(annual, cs.Insurance.MaxInsurable)
	insurance := decimal.Min(insurable.Mul(cs.Insurance.Rate), cs.Insurance.AnnualCap)

	return ContributionResult{
		Tier1:     generic.PerPeriod(tier1, n),
		Tier2:     tier2FromAnnualProjection(cs, weekly),
		Insurance: generic.PerPeriod(insurance, n),
	}
}

// tier2FromAnnualProjection taxes the projected annual earnings that fall
// between the tier-1 and tier-2 ceilings.
func tier2FromAnnualProjection(cs ConstantSet, weekly decimal.Decimal) decimal.Decimal {
	n := cs.PeriodsPerYear
	annual := generic.Annualize(weekly, n)
	if !annual.GreaterThan(cs.Tier1.Ceiling) {
		return decimal.Zero
	}

	band := decimal.Min(annual, cs.Tier2.Ceiling).Sub(cs.Tier1.Ceiling)
	contribution := decimal.Min(band.Mul(cs.Tier2.Rate), cs.Tier2.AnnualCap)
	return generic.PerPeriod(contribution, n)
}
