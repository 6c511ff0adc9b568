package payroll_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/warp/paycalc/payroll"
)

func TestComputeTax_CreditsReduceTax(t *testing.T) {
	cs := payroll.Alberta2025()
	w := dec(1500)

	none := payroll.ComputeTax(cs, w, decimal.Zero, decimal.Zero)
	credited := payroll.ComputeTax(cs, w, dec(77.58), dec(20.72))

	// Every contribution dollar is credited at the authority's own rate.
	fedDelta := none.FederalWeekly.Sub(credited.FederalWeekly)
	assert.InDelta(t, (77.58+20.72)*0.15, f64(fedDelta), 1e-9)
	abDelta := none.ProvincialWeekly.Sub(credited.ProvincialWeekly)
	assert.InDelta(t, (77.58+20.72)*0.10, f64(abDelta), 1e-9)
}

func TestComputeTax_FederalAt78k(t *testing.T) {
	cs := payroll.Alberta2025()
	got := payroll.ComputeTax(cs, dec(1500), decimal.Zero, decimal.Zero)
	// 57375*15% + 20625*20.5% - 16129*15%
	want := (57375*0.15 + 20625*0.205 - 16129*0.15) / 52
	assert.InDelta(t, want, f64(got.FederalWeekly), 1e-9)
	assert.InDelta(t, (7800-2232.3)/52, f64(got.ProvincialWeekly), 1e-9)
}

func TestComputeTax_FlooredAtZero(t *testing.T) {
	got := payroll.ComputeTax(payroll.Alberta2025(), dec(300), dec(14), dec(5))
	assert.True(t, got.FederalWeekly.IsZero())
	assert.True(t, got.ProvincialWeekly.IsZero())
	assert.True(t, got.Total().IsZero())
}
