package payroll_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/warp/paycalc/payroll"
)

func TestContributions_BelowExemption(t *testing.T) {
	// 3500/52 is about 67.31 a week; nothing pensionable below it.
	c := payroll.ComputeContributions(payroll.Alberta2025(), dec(60), payroll.ModeEarlyYear)
	assert.True(t, c.Tier1.IsZero())
	assert.True(t, c.Tier2.IsZero())
	assert.True(t, c.Insurance.Equal(dec(0.984)), "ei %s", c.Insurance)
}

func TestContributions_EarlyYearTier1Formula(t *testing.T) {
	cs := payroll.Alberta2025()
	c := payroll.ComputeContributions(cs, dec(800), payroll.ModeEarlyYear)
	// (800 - 3500/52) * 0.0595
	assert.InDelta(t, (800-3500.0/52)*0.0595, f64(c.Tier1), 1e-9)
	assert.True(t, c.Insurance.Equal(dec(13.12)))
}

func TestContributions_Tier2OnlyAboveTier1Ceiling(t *testing.T) {
	cs := payroll.Alberta2025()
	// 71300 / 52 is about 1371.15 a week.
	for _, m := range payroll.Modes() {
		below := payroll.ComputeContributions(cs, dec(1371), m)
		assert.True(t, below.Tier2.IsZero(), "%s", m)

		above := payroll.ComputeContributions(cs, dec(1400), m)
		// (72800 - 71300) * 0.04 / 52
		assert.InDelta(t, 60.0/52, f64(above.Tier2), 1e-9, "%s", m)
	}
}

func TestContributions_Tier2AnnualizedEvenInEarlyYear(t *testing.T) {
	// A single week at 1400 is far below the annual tier-1 ceiling, but
	// early-year mode still projects it over 52 weeks for tier 2.
	c := payroll.ComputeContributions(payroll.Alberta2025(), dec(1400), payroll.ModeEarlyYear)
	assert.True(t, c.Tier2.IsPositive())
}

func TestContributions_AnnualizedFormula(t *testing.T) {
	cs := payroll.Alberta2025()
	c := payroll.ComputeContributions(cs, dec(1000), payroll.ModeAnnualized)
	// (52000 - 3500) * 0.0595 / 52
	assert.InDelta(t, 48500*0.0595/52, f64(c.Tier1), 1e-9)
	assert.InDelta(t, 52000*0.0164/52, f64(c.Insurance), 1e-9)
	assert.True(t, c.Tier2.IsZero())
}

func TestContributions_UnknownModeIsEarlyYear(t *testing.T) {
	cs := payroll.Alberta2025()
	a := payroll.ComputeContributions(cs, dec(950), payroll.Mode("weird"))
	b := payroll.ComputeContributions(cs, dec(950), payroll.ModeEarlyYear)
	assert.True(t, a.Tier1.Equal(b.Tier1))
	assert.True(t, a.Insurance.Equal(b.Insurance))
}

func TestContributionResult_Total(t *testing.T) {
	c := payroll.ContributionResult{Tier1: dec(1), Tier2: dec(2), Insurance: dec(3)}
	assert.True(t, c.Total().Equal(decimal.NewFromInt(6)))
}
