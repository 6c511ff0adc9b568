package generic_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/paycalc/generic"
)

func TestAnnualizeRoundTrip(t *testing.T) {
	annual := generic.Annualize(dec("1500"), 52)
	assertDecEqual(t, dec("78000"), annual)
	assertDecEqual(t, dec("1500"), generic.PerPeriod(annual, 52))
}

func TestNonNegativeAndClamp(t *testing.T) {
	assert.True(t, generic.NonNegative(dec("-0.01")).IsZero())
	assertDecEqual(t, dec("3"), generic.NonNegative(dec("3")))

	assertDecEqual(t, dec("10"), generic.Clamp(dec("50"), dec("0"), dec("10")))
	assertDecEqual(t, dec("0"), generic.Clamp(dec("-5"), dec("0"), dec("10")))
	assertDecEqual(t, dec("7"), generic.Clamp(dec("7"), dec("0"), dec("10")))
}

func TestParseAmount(t *testing.T) {
	d, err := generic.ParseAmount("taxable", "1500.25")
	require.NoError(t, err)
	assertDecEqual(t, dec("1500.25"), d)

	_, err = generic.ParseAmount("taxable", "abc")
	require.Error(t, err)
	assert.True(t, errors.Is(err, generic.ErrInvalidInput))

	var ie *generic.InputError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, "taxable", ie.Field)
}

func TestParseAmount_RejectsExtremeScale(t *testing.T) {
	tests := []string{
		"1e200000000",
		"1e-200000000",
		"0e21",
		"1234567890123456789012345678901234567890",
	}
	for _, s := range tests {
		t.Run(s, func(t *testing.T) {
			_, err := generic.ParseAmount("taxable", s)
			assert.ErrorIs(t, err, generic.ErrInvalidInput)
		})
	}

	// Ordinary amounts are well inside the limits.
	for _, s := range []string{"0", "1500", "1500.25", "0.0375", "1e9", "999999999.999999"} {
		_, err := generic.ParseAmount("taxable", s)
		assert.NoError(t, err, s)
	}
}

func TestCheckScale_ErrorOmitsValue(t *testing.T) {
	err := generic.CheckScale("taxableWeekly", dec("1e300"))
	require.Error(t, err)
	assert.Less(t, len(err.Error()), 100)
}

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "$56.25", generic.FormatMoney(dec("56.25"), 2))
	assert.Equal(t, "$77.58", generic.FormatMoney(dec("77.578846"), 2))
	assert.Equal(t, "$77.5788", generic.FormatMoney(dec("77.578846"), 4))
}

func TestErrorHelpers(t *testing.T) {
	assert.True(t, generic.IsNotFound(generic.ErrConstantSetNotFound))
	assert.False(t, generic.IsClientError(generic.ErrConstantSetNotFound))
	assert.True(t, generic.IsClientError(&generic.ConstantSetError{SetID: "x", Field: "f", Reason: "r"}))
}
