package cache

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/paycalc/payroll"
)

func input(taxable, nonTaxable string, mode payroll.Mode) payroll.WeeklyInput {
	return payroll.WeeklyInput{
		TaxableWeekly:    decimal.RequireFromString(taxable),
		NonTaxableWeekly: decimal.RequireFromString(nonTaxable),
		Mode:             mode,
	}
}

func TestKey(t *testing.T) {
	dues := decimal.RequireFromString("0.02")

	base := Key("ab-2025", input("1500", "100", payroll.ModeEarlyYear), nil)
	assert.Equal(t, "paycalc:ab-2025:early-year:1500:100:default", base)

	// Equal amounts written differently share a key; empty mode is early-year.
	assert.Equal(t, base, Key("ab-2025", input("1500.00", "100.0", ""), nil))

	assert.NotEqual(t, base, Key("ab-2025", input("1500", "100", payroll.ModeAnnualized), nil))
	assert.NotEqual(t, base, Key("ab-2024", input("1500", "100", payroll.ModeEarlyYear), nil))
	assert.NotEqual(t, base, Key("ab-2025", input("1500", "100", payroll.ModeEarlyYear), &dues))
}

func TestMemory_GetSet(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(0, time.Hour)

	_, ok := m.Get(ctx, "missing")
	assert.False(t, ok)

	calc := payroll.NewCalculator(payroll.Alberta2025())
	b := calc.CalculateDeductionsForWeek(decimal.NewFromInt(1500), decimal.NewFromInt(100), payroll.Options{})

	require.NoError(t, m.Set(ctx, "k", b))
	got, ok := m.Get(ctx, "k")
	require.True(t, ok)
	assert.True(t, got.NetPayTotal.Equal(b.NetPayTotal))
	assert.Equal(t, 1, m.Len())
}

func TestMemory_EvictsLeastRecentlyUsed(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(2, time.Hour)

	require.NoError(t, m.Set(ctx, "a", payroll.DeductionBreakdown{}))
	require.NoError(t, m.Set(ctx, "b", payroll.DeductionBreakdown{}))
	_, _ = m.Get(ctx, "a") // a is now more recent than b
	require.NoError(t, m.Set(ctx, "c", payroll.DeductionBreakdown{}))

	assert.Equal(t, 2, m.Len())
	_, ok := m.Get(ctx, "b")
	assert.False(t, ok)
	_, ok = m.Get(ctx, "a")
	assert.True(t, ok)
}

func TestMemory_EntriesExpire(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(10, 20*time.Millisecond)

	require.NoError(t, m.Set(ctx, "k", payroll.DeductionBreakdown{}))
	_, ok := m.Get(ctx, "k")
	require.True(t, ok)

	assert.Eventually(t, func() bool {
		_, ok := m.Get(ctx, "k")
		return !ok
	}, 2*time.Second, 10*time.Millisecond)
}

func TestRedis_UnreachableIsMiss(t *testing.T) {
	r := NewRedis("127.0.0.1:1", time.Minute)
	defer r.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, ok := r.Get(ctx, "k")
	assert.False(t, ok)
	assert.Error(t, r.Ping(ctx))
}

func TestFingerprint(t *testing.T) {
	a := Fingerprint([]byte(`{"id":"ab-2025"}`))
	assert.Equal(t, a, Fingerprint([]byte(`{"id":"ab-2025"}`)))
	assert.NotEqual(t, a, Fingerprint([]byte(`{"id":"ab-2024"}`)))
	assert.NotEmpty(t, a)
}
