/*
constants.go - Statutory figures for one tax year

PURPOSE:
  A ConstantSet is the versioned configuration snapshot the calculator reads:
  pension tiers, insurance, two income-tax bracket ladders, personal credits
  and the default union dues rate. Each tax year gets its own set; sets are
  values, so several years can coexist and be tested independently.

AVAILABLE PRESETS:
  Alberta2025: CPP/CPP2/EI and federal + Alberta brackets for 2025

CUSTOMIZATION:
  Presets are starting points. Load a different year from JSON or YAML
  through factory.ConstantSetFactory, or copy a preset and change fields:

    cs := payroll.Alberta2025()
    cs.ID = "ab-2025-nodues"
    cs.UnionDuesRate = decimal.Zero

SEE ALSO:
  - registry.go: Named sets available by id
  - factory/constants.go: JSON/YAML representation
*/
package payroll

import (
	"github.com/shopspring/decimal"
	"github.com/warp/paycalc/generic"
)

// =============================================================================
// CONSTANT SET
// =============================================================================

// PensionTier1 is the base pension contribution (CPP).
type PensionTier1 struct {
	Rate           decimal.Decimal
	Ceiling        decimal.Decimal // maximum pensionable earnings
	BasicExemption decimal.Decimal
	AnnualCap      decimal.Decimal
}

// PensionTier2 is the additional contribution on earnings between the tier-1
// ceiling and the tier-2 ceiling (CPP2).
type PensionTier2 struct {
	Rate      decimal.Decimal
	Ceiling   decimal.Decimal
	AnnualCap decimal.Decimal
}

// Insurance is employment insurance (EI).
type Insurance struct {
	Rate         decimal.Decimal
	MaxInsurable decimal.Decimal
	AnnualCap    decimal.Decimal
}

// TaxAuthority is one level of income tax with its flat personal credit.
type TaxAuthority struct {
	Name                string
	Brackets            generic.BracketSchedule
	BasicPersonalAmount decimal.Decimal
	CreditRate          decimal.Decimal
}

type ConstantSet struct {
	ID             string
	Name           string
	TaxYear        int
	Province       string
	PeriodsPerYear int

	Tier1      PensionTier1
	Tier2      PensionTier2
	Insurance  Insurance
	Federal    TaxAuthority
	Provincial TaxAuthority

	// UnionDuesRate applies when Options.UnionDuesRate is nil.
	UnionDuesRate decimal.Decimal
}

const (
	DefaultPeriodsPerYear = 52
	DefaultConstantSetID  = "ab-2025"
)

// DefaultUnionDuesRate is 3.75% of taxable weekly earnings.
var DefaultUnionDuesRate = generic.MustParseDecimal("0.0375")

// Clone returns a copy that shares no bracket storage with cs.
func (cs ConstantSet) Clone() ConstantSet {
	out := cs
	out.Federal.Brackets = cs.Federal.Brackets.Clone()
	out.Provincial.Brackets = cs.Provincial.Brackets.Clone()
	return out
}

type namedValue struct {
	field string
	value decimal.Decimal
}

// Validate checks ranges and bracket ordering.
func (cs ConstantSet) Validate() error {
	if cs.ID == "" {
		return &generic.ConstantSetError{SetID: cs.ID, Field: "id", Reason: "required"}
	}
	if cs.PeriodsPerYear <= 0 {
		return &generic.ConstantSetError{SetID: cs.ID, Field: "periods_per_year", Reason: "must be positive"}
	}

	for _, f := range []namedValue{
		{"cpp.rate", cs.Tier1.Rate},
		{"cpp2.rate", cs.Tier2.Rate},
		{"ei.rate", cs.Insurance.Rate},
		{"federal.credit_rate", cs.Federal.CreditRate},
		{"provincial.credit_rate", cs.Provincial.CreditRate},
		{"union_dues_rate", cs.UnionDuesRate},
	} {
		if f.value.IsNegative() || f.value.GreaterThan(decimal.NewFromInt(1)) {
			return &generic.ConstantSetError{SetID: cs.ID, Field: f.field, Reason: "must be between 0 and 1"}
		}
	}

	for _, f := range []namedValue{
		{"cpp.ceiling", cs.Tier1.Ceiling},
		{"cpp.basic_exemption", cs.Tier1.BasicExemption},
		{"cpp.annual_cap", cs.Tier1.AnnualCap},
		{"cpp2.ceiling", cs.Tier2.Ceiling},
		{"cpp2.annual_cap", cs.Tier2.AnnualCap},
		{"ei.max_insurable", cs.Insurance.MaxInsurable},
		{"ei.annual_cap", cs.Insurance.AnnualCap},
		{"federal.basic_personal_amount", cs.Federal.BasicPersonalAmount},
		{"provincial.basic_personal_amount", cs.Provincial.BasicPersonalAmount},
	} {
		if f.value.IsNegative() {
			return &generic.ConstantSetError{SetID: cs.ID, Field: f.field, Reason: "must not be negative"}
		}
	}

	if cs.Tier2.Ceiling.LessThan(cs.Tier1.Ceiling) {
		return &generic.ConstantSetError{SetID: cs.ID, Field: "cpp2.ceiling", Reason: "must not be below cpp.ceiling"}
	}

	for _, auth := range []TaxAuthority{cs.Federal, cs.Provincial} {
		if err := auth.Brackets.Validate(); err != nil {
			if se, ok := err.(*generic.ScheduleError); ok {
				se.Authority = auth.Name
			}
			return err
		}
	}
	return nil
}

// =============================================================================
// PRESETS
// =============================================================================

// Alberta2025 returns the 2025 figures for an Alberta employee paid weekly.
func Alberta2025() ConstantSet {
	return ConstantSet{
		ID:             DefaultConstantSetID,
		Name:           "Alberta 2025",
		TaxYear:        2025,
		Province:       "AB",
		PeriodsPerYear: DefaultPeriodsPerYear,
		Tier1: PensionTier1{
			Rate:           generic.MustParseDecimal("0.0595"),
			Ceiling:        generic.MustParseDecimal("71300"),
			BasicExemption: generic.MustParseDecimal("3500"),
			AnnualCap:      generic.MustParseDecimal("4034.10"),
		},
		Tier2: PensionTier2{
			Rate:      generic.MustParseDecimal("0.04"),
			Ceiling:   generic.MustParseDecimal("81200"),
			AnnualCap: generic.MustParseDecimal("396.00"),
		},
		Insurance: Insurance{
			Rate:         generic.MustParseDecimal("0.0164"),
			MaxInsurable: generic.MustParseDecimal("65700"),
			AnnualCap:    generic.MustParseDecimal("1077.48"),
		},
		Federal: TaxAuthority{
			Name: "federal",
			Brackets: generic.BracketSchedule{
				generic.NewBracket(57375, 0.15),
				generic.NewBracket(114750, 0.205),
				generic.NewBracket(177882, 0.26),
				generic.NewBracket(253414, 0.29),
				generic.TopBracket(0.33),
			},
			BasicPersonalAmount: generic.MustParseDecimal("16129"),
			CreditRate:          generic.MustParseDecimal("0.15"),
		},
		Provincial: TaxAuthority{
			Name: "alberta",
			Brackets: generic.BracketSchedule{
				generic.NewBracket(151234, 0.10),
				generic.NewBracket(181481, 0.12),
				generic.NewBracket(241974, 0.13),
				generic.NewBracket(362961, 0.14),
				generic.TopBracket(0.15),
			},
			BasicPersonalAmount: generic.MustParseDecimal("22323"),
			CreditRate:          generic.MustParseDecimal("0.10"),
		},
		UnionDuesRate: DefaultUnionDuesRate,
	}
}
