package payroll_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/paycalc/generic"
	"github.com/warp/paycalc/payroll"
)

func TestAlberta2025_IsValid(t *testing.T) {
	require.NoError(t, payroll.Alberta2025().Validate())
}

func TestAlberta2025_CapsMatchRates(t *testing.T) {
	// The published maxima are rate * (ceiling - exemption), which is what
	// lets a high earner land exactly on the weekly cap.
	cs := payroll.Alberta2025()
	tier1 := cs.Tier1.Ceiling.Sub(cs.Tier1.BasicExemption).Mul(cs.Tier1.Rate)
	assert.True(t, tier1.Equal(cs.Tier1.AnnualCap), "cpp max %s", tier1)

	tier2 := cs.Tier2.Ceiling.Sub(cs.Tier1.Ceiling).Mul(cs.Tier2.Rate)
	assert.True(t, tier2.Equal(cs.Tier2.AnnualCap), "cpp2 max %s", tier2)

	ei := cs.Insurance.MaxInsurable.Mul(cs.Insurance.Rate)
	assert.True(t, ei.Equal(cs.Insurance.AnnualCap), "ei max %s", ei)
}

func TestConstantSet_ValidateRejects(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(cs *payroll.ConstantSet)
		target error
	}{
		{"missing id", func(cs *payroll.ConstantSet) { cs.ID = "" }, generic.ErrInvalidConstantSet},
		{"zero periods", func(cs *payroll.ConstantSet) { cs.PeriodsPerYear = 0 }, generic.ErrInvalidConstantSet},
		{"rate above one", func(cs *payroll.ConstantSet) { cs.Tier1.Rate = decimal.NewFromInt(2) }, generic.ErrInvalidConstantSet},
		{"negative dues", func(cs *payroll.ConstantSet) { cs.UnionDuesRate = decimal.NewFromInt(-1) }, generic.ErrInvalidConstantSet},
		{"negative ceiling", func(cs *payroll.ConstantSet) { cs.Insurance.MaxInsurable = decimal.NewFromInt(-1) }, generic.ErrInvalidConstantSet},
		{"tier2 below tier1", func(cs *payroll.ConstantSet) { cs.Tier2.Ceiling = decimal.NewFromInt(1000) }, generic.ErrInvalidConstantSet},
		{"bad brackets", func(cs *payroll.ConstantSet) {
			cs.Provincial.Brackets = generic.BracketSchedule{generic.NewBracket(1000, 0.1)}
		}, generic.ErrInvalidSchedule},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cs := payroll.Alberta2025()
			tc.mutate(&cs)
			err := cs.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, tc.target), "got %v", err)
		})
	}
}

func TestConstantSet_ScheduleErrorNamesAuthority(t *testing.T) {
	cs := payroll.Alberta2025()
	cs.Provincial.Brackets = generic.BracketSchedule{generic.NewBracket(1000, 0.1)}

	var se *generic.ScheduleError
	require.ErrorAs(t, cs.Validate(), &se)
	assert.Equal(t, "alberta", se.Authority)
}

func TestConstantSet_CloneIsDeep(t *testing.T) {
	cs := payroll.Alberta2025()
	c := cs.Clone()
	*c.Federal.Brackets[0].UpperLimit = decimal.NewFromInt(1)
	assert.True(t, cs.Federal.Brackets[0].UpperLimit.Equal(decimal.NewFromInt(57375)))
}
