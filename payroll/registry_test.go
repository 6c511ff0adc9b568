package payroll_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/paycalc/generic"
	"github.com/warp/paycalc/payroll"
)

func TestRegistry_BuiltinPresetRegistered(t *testing.T) {
	cs, err := payroll.LookupConstantSet(payroll.DefaultConstantSetID)
	require.NoError(t, err)
	assert.Equal(t, 2025, cs.TaxYear)
	assert.Contains(t, payroll.ConstantSetIDs(), payroll.DefaultConstantSetID)
}

func TestRegistry_RegisterLookupUnregister(t *testing.T) {
	cs := payroll.Alberta2025()
	cs.ID = "ab-2025-nodues"
	cs.UnionDuesRate = decimal.Zero

	payroll.RegisterConstantSet(cs)
	t.Cleanup(func() { payroll.UnregisterConstantSet("ab-2025-nodues") })

	got, err := payroll.LookupConstantSet("ab-2025-nodues")
	require.NoError(t, err)
	assert.True(t, got.UnionDuesRate.IsZero())

	// Lookups hand out copies.
	*got.Federal.Brackets[0].UpperLimit = decimal.NewFromInt(1)
	again := payroll.MustLookupConstantSet("ab-2025-nodues")
	assert.True(t, again.Federal.Brackets[0].UpperLimit.Equal(decimal.NewFromInt(57375)))

	payroll.UnregisterConstantSet("ab-2025-nodues")
	_, err = payroll.LookupConstantSet("ab-2025-nodues")
	assert.ErrorIs(t, err, generic.ErrConstantSetNotFound)
}

func TestRegistry_MustLookupPanics(t *testing.T) {
	assert.Panics(t, func() { payroll.MustLookupConstantSet("nope") })
}
