/*
Package factory provides JSON/YAML to Go constant-set conversion.

PURPOSE:
  Converts constant-set definitions (one tax year's statutory figures) into
  payroll.ConstantSet values. This lets payroll staff publish next year's
  rates as a file instead of a code change.

WHY FILES?
  - Rates change every January; code shouldn't
  - Several years can be loaded side by side
  - Definitions can be stored in the database and versioned

SCHEMA (YAML shown; JSON uses the same keys):
  id: ab-2025
  name: Alberta 2025
  tax_year: 2025
  province: AB
  periods_per_year: 52          # optional, default 52
  union_dues_rate: 0.0375       # optional, default 0.0375
  cpp:  {rate: 0.0595, ceiling: 71300, basic_exemption: 3500, annual_cap: 4034.10}
  cpp2: {rate: 0.04, ceiling: 81200, annual_cap: 396}
  ei:   {rate: 0.0164, max_insurable: 65700, annual_cap: 1077.48}
  federal:
    name: federal
    basic_personal_amount: 16129
    credit_rate: 0.15
    brackets:
      - {up_to: 57375, rate: 0.15}
      - {rate: 0.33}              # no up_to: unbounded

KEY FEATURES:
  - Sets defaults for optional fields
  - Validates ranges and bracket ordering (payroll.ConstantSet.Validate)
  - Round-trips: ToJSON(FromJSON(x)) describes the same set

USAGE:
  f := factory.NewConstantSetFactory()
  cs, err := f.ParseFile("constants/ab-2026.yaml")
  payroll.RegisterConstantSet(cs)

SEE ALSO:
  - payroll/constants.go: ConstantSet definition and presets
  - store/sqlite/sqlite.go: Persists the JSON form
*/
package factory

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/shopspring/decimal"
	"github.com/warp/paycalc/generic"
	"github.com/warp/paycalc/payroll"
	"gopkg.in/yaml.v3"
)

// =============================================================================
// SCHEMA TYPES
// =============================================================================

// ConstantSetJSON is the file/database representation of a constant set.
type ConstantSetJSON struct {
	ID             string        `json:"id" yaml:"id"`
	Name           string        `json:"name" yaml:"name"`
	TaxYear        int           `json:"tax_year" yaml:"tax_year"`
	Province       string        `json:"province" yaml:"province"`
	PeriodsPerYear int           `json:"periods_per_year,omitempty" yaml:"periods_per_year,omitempty"`
	UnionDuesRate  *float64      `json:"union_dues_rate,omitempty" yaml:"union_dues_rate,omitempty"`
	CPP            CPPJSON       `json:"cpp" yaml:"cpp"`
	CPP2           CPP2JSON      `json:"cpp2" yaml:"cpp2"`
	EI             EIJSON        `json:"ei" yaml:"ei"`
	Federal        AuthorityJSON `json:"federal" yaml:"federal"`
	Provincial     AuthorityJSON `json:"provincial" yaml:"provincial"`
}

type CPPJSON struct {
	Rate           float64 `json:"rate" yaml:"rate"`
	Ceiling        float64 `json:"ceiling" yaml:"ceiling"`
	BasicExemption float64 `json:"basic_exemption" yaml:"basic_exemption"`
	AnnualCap      float64 `json:"annual_cap" yaml:"annual_cap"`
}

type CPP2JSON struct {
	Rate      float64 `json:"rate" yaml:"rate"`
	Ceiling   float64 `json:"ceiling" yaml:"ceiling"`
	AnnualCap float64 `json:"annual_cap" yaml:"annual_cap"`
}

type EIJSON struct {
	Rate         float64 `json:"rate" yaml:"rate"`
	MaxInsurable float64 `json:"max_insurable" yaml:"max_insurable"`
	AnnualCap    float64 `json:"annual_cap" yaml:"annual_cap"`
}

type AuthorityJSON struct {
	Name                string        `json:"name" yaml:"name"`
	BasicPersonalAmount float64       `json:"basic_personal_amount" yaml:"basic_personal_amount"`
	CreditRate          float64       `json:"credit_rate" yaml:"credit_rate"`
	Brackets            []BracketJSON `json:"brackets" yaml:"brackets"`
}

// BracketJSON leaves UpTo empty for the final, unbounded bracket.
type BracketJSON struct {
	UpTo *float64 `json:"up_to,omitempty" yaml:"up_to,omitempty"`
	Rate float64  `json:"rate" yaml:"rate"`
}

// =============================================================================
// CONSTANT SET FACTORY
// =============================================================================

// ConstantSetFactory converts file representations to payroll.ConstantSet.
type ConstantSetFactory struct{}

// NewConstantSetFactory creates a new constant set factory.
func NewConstantSetFactory() *ConstantSetFactory {
	return &ConstantSetFactory{}
}

// ParseJSON parses a JSON document into a validated ConstantSet.
func (f *ConstantSetFactory) ParseJSON(data []byte) (payroll.ConstantSet, error) {
	var cj ConstantSetJSON
	if err := json.Unmarshal(data, &cj); err != nil {
		return payroll.ConstantSet{}, fmt.Errorf("%w: failed to parse constant set JSON: %v", generic.ErrInvalidConstantSet, err)
	}
	return f.FromJSON(cj)
}

// ParseYAML parses a YAML document into a validated ConstantSet.
func (f *ConstantSetFactory) ParseYAML(data []byte) (payroll.ConstantSet, error) {
	var cj ConstantSetJSON
	if err := yaml.Unmarshal(data, &cj); err != nil {
		return payroll.ConstantSet{}, fmt.Errorf("%w: failed to parse constant set YAML: %v", generic.ErrInvalidConstantSet, err)
	}
	return f.FromJSON(cj)
}

// ParseFile reads a .json, .yaml or .yml file.
func (f *ConstantSetFactory) ParseFile(path string) (payroll.ConstantSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return payroll.ConstantSet{}, fmt.Errorf("failed to read constant set file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return f.ParseYAML(data)
	case ".json":
		return f.ParseJSON(data)
	default:
		return payroll.ConstantSet{}, fmt.Errorf("%w: unsupported file extension %q", generic.ErrInvalidConstantSet, filepath.Ext(path))
	}
}

// FromJSON converts the schema type to a ConstantSet, applying defaults and
// validating the result.
func (f *ConstantSetFactory) FromJSON(cj ConstantSetJSON) (payroll.ConstantSet, error) {
	if err := checkFinite(cj); err != nil {
		return payroll.ConstantSet{}, err
	}

	cs := payroll.ConstantSet{
		ID:             cj.ID,
		Name:           cj.Name,
		TaxYear:        cj.TaxYear,
		Province:       cj.Province,
		PeriodsPerYear: cj.PeriodsPerYear,
		Tier1: payroll.PensionTier1{
			Rate:           generic.Dec(cj.CPP.Rate),
			Ceiling:        generic.Dec(cj.CPP.Ceiling),
			BasicExemption: generic.Dec(cj.CPP.BasicExemption),
			AnnualCap:      generic.Dec(cj.CPP.AnnualCap),
		},
		Tier2: payroll.PensionTier2{
			Rate:      generic.Dec(cj.CPP2.Rate),
			Ceiling:   generic.Dec(cj.CPP2.Ceiling),
			AnnualCap: generic.Dec(cj.CPP2.AnnualCap),
		},
		Insurance: payroll.Insurance{
			Rate:         generic.Dec(cj.EI.Rate),
			MaxInsurable: generic.Dec(cj.EI.MaxInsurable),
			AnnualCap:    generic.Dec(cj.EI.AnnualCap),
		},
		Federal:       parseAuthority(cj.Federal, "federal"),
		Provincial:    parseAuthority(cj.Provincial, strings.ToLower(cj.Province)),
		UnionDuesRate: payroll.DefaultUnionDuesRate,
	}

	if cs.Name == "" {
		cs.Name = cs.ID
	}
	if cs.PeriodsPerYear == 0 {
		cs.PeriodsPerYear = payroll.DefaultPeriodsPerYear
	}
	if cj.UnionDuesRate != nil {
		cs.UnionDuesRate = generic.Dec(*cj.UnionDuesRate)
	}

	if err := cs.Validate(); err != nil {
		return payroll.ConstantSet{}, err
	}
	return cs, nil
}

// ToJSON converts a ConstantSet to its schema type.
func (f *ConstantSetFactory) ToJSON(cs payroll.ConstantSet) ConstantSetJSON {
	dues := cs.UnionDuesRate.InexactFloat64()
	return ConstantSetJSON{
		ID:             cs.ID,
		Name:           cs.Name,
		TaxYear:        cs.TaxYear,
		Province:       cs.Province,
		PeriodsPerYear: cs.PeriodsPerYear,
		UnionDuesRate:  &dues,
		CPP: CPPJSON{
			Rate:           cs.Tier1.Rate.InexactFloat64(),
			Ceiling:        cs.Tier1.Ceiling.InexactFloat64(),
			BasicExemption: cs.Tier1.BasicExemption.InexactFloat64(),
			AnnualCap:      cs.Tier1.AnnualCap.InexactFloat64(),
		},
		CPP2: CPP2JSON{
			Rate:      cs.Tier2.Rate.InexactFloat64(),
			Ceiling:   cs.Tier2.Ceiling.InexactFloat64(),
			AnnualCap: cs.Tier2.AnnualCap.InexactFloat64(),
		},
		EI: EIJSON{
			Rate:         cs.Insurance.Rate.InexactFloat64(),
			MaxInsurable: cs.Insurance.MaxInsurable.InexactFloat64(),
			AnnualCap:    cs.Insurance.AnnualCap.InexactFloat64(),
		},
		Federal:    authorityToJSON(cs.Federal),
		Provincial: authorityToJSON(cs.Provincial),
	}
}

// MarshalJSON renders a ConstantSet in the JSON schema.
func (f *ConstantSetFactory) MarshalJSON(cs payroll.ConstantSet) ([]byte, error) {
	return json.Marshal(f.ToJSON(cs))
}

// MarshalYAML renders a ConstantSet in the YAML schema.
func (f *ConstantSetFactory) MarshalYAML(cs payroll.ConstantSet) ([]byte, error) {
	return yaml.Marshal(f.ToJSON(cs))
}

// =============================================================================
// PARSING HELPERS
// =============================================================================

// checkFinite rejects NaN and infinite figures. YAML spells them .nan and
// .inf, and decimal.NewFromFloat panics on both.
func checkFinite(cj ConstantSetJSON) error {
	type field struct {
		name  string
		value float64
	}
	fields := []field{
		{"cpp.rate", cj.CPP.Rate},
		{"cpp.ceiling", cj.CPP.Ceiling},
		{"cpp.basic_exemption", cj.CPP.BasicExemption},
		{"cpp.annual_cap", cj.CPP.AnnualCap},
		{"cpp2.rate", cj.CPP2.Rate},
		{"cpp2.ceiling", cj.CPP2.Ceiling},
		{"cpp2.annual_cap", cj.CPP2.AnnualCap},
		{"ei.rate", cj.EI.Rate},
		{"ei.max_insurable", cj.EI.MaxInsurable},
		{"ei.annual_cap", cj.EI.AnnualCap},
	}
	if cj.UnionDuesRate != nil {
		fields = append(fields, field{"union_dues_rate", *cj.UnionDuesRate})
	}
	authorities := []struct {
		prefix string
		aj     AuthorityJSON
	}{{"federal", cj.Federal}, {"provincial", cj.Provincial}}
	for _, a := range authorities {
		prefix, aj := a.prefix, a.aj
		fields = append(fields,
			field{prefix + ".basic_personal_amount", aj.BasicPersonalAmount},
			field{prefix + ".credit_rate", aj.CreditRate},
		)
		for i, bj := range aj.Brackets {
			fields = append(fields, field{fmt.Sprintf("%s.brackets[%d].rate", prefix, i), bj.Rate})
			if bj.UpTo != nil {
				fields = append(fields, field{fmt.Sprintf("%s.brackets[%d].up_to", prefix, i), *bj.UpTo})
			}
		}
	}

	for _, f := range fields {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return &generic.ConstantSetError{SetID: cj.ID, Field: f.name, Reason: "must be a finite number"}
		}
	}
	return nil
}

func parseAuthority(aj AuthorityJSON, defaultName string) payroll.TaxAuthority {
	name := aj.Name
	if name == "" {
		name = defaultName
	}
	return payroll.TaxAuthority{
		Name:                name,
		Brackets:            parseBrackets(aj.Brackets),
		BasicPersonalAmount: generic.Dec(aj.BasicPersonalAmount),
		CreditRate:          generic.Dec(aj.CreditRate),
	}
}

func parseBrackets(bjs []BracketJSON) generic.BracketSchedule {
	schedule := make(generic.BracketSchedule, 0, len(bjs))
	for _, bj := range bjs {
		b := generic.Bracket{Rate: generic.Dec(bj.Rate)}
		if bj.UpTo != nil {
			b.UpperLimit = generic.DecPtr(*bj.UpTo)
		}
		schedule = append(schedule, b)
	}
	return schedule
}

func authorityToJSON(a payroll.TaxAuthority) AuthorityJSON {
	aj := AuthorityJSON{
		Name:                a.Name,
		BasicPersonalAmount: a.BasicPersonalAmount.InexactFloat64(),
		CreditRate:          a.CreditRate.InexactFloat64(),
	}
	for _, b := range a.Brackets {
		bj := BracketJSON{Rate: b.Rate.InexactFloat64()}
		if b.UpperLimit != nil {
			bj.UpTo = floatPtr(*b.UpperLimit)
		}
		aj.Brackets = append(aj.Brackets, bj)
	}
	return aj
}

func floatPtr(d decimal.Decimal) *float64 {
	v := d.InexactFloat64()
	return &v
}
