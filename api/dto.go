/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the payroll package's decimal values from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

AMOUNTS:
  Request amounts accept either a JSON number or a quoted decimal string.
  Responses carry two views of every breakdown:
    breakdown: float64 figures rounded for display (default 2 places)
    exact:     full-precision decimal strings, never rounded

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/constants.go: ConstantSetJSON type
*/
package api

import (
	"github.com/shopspring/decimal"
	"github.com/warp/paycalc/factory"
	"github.com/warp/paycalc/payroll"
)

// DefaultRoundPlaces is used when a request does not set "round".
const DefaultRoundPlaces int32 = 2

// =============================================================================
// DEDUCTIONS
// =============================================================================

// CalculateRequest is the body of POST /api/deductions.
type CalculateRequest struct {
	TaxableWeekly    *decimal.Decimal `json:"taxableWeekly"`
	NonTaxableWeekly decimal.Decimal  `json:"nonTaxableWeekly"`
	Mode             string           `json:"mode,omitempty"`
	UnionDuesRate    *decimal.Decimal `json:"unionDuesRate,omitempty"`
	ConstantSetID    string           `json:"constantSetId,omitempty"`
	Round            *int32           `json:"round,omitempty"`
}

// CompareRequest is the body of POST /api/deductions/compare.
type CompareRequest struct {
	TaxableWeekly    *decimal.Decimal `json:"taxableWeekly"`
	NonTaxableWeekly decimal.Decimal  `json:"nonTaxableWeekly"`
	UnionDuesRate    *decimal.Decimal `json:"unionDuesRate,omitempty"`
	ConstantSetID    string           `json:"constantSetId,omitempty"`
	Round            *int32           `json:"round,omitempty"`
}

// BreakdownDTO is a DeductionBreakdown rounded for display.
type BreakdownDTO struct {
	CPP             float64 `json:"cpp"`
	CPP2            float64 `json:"cpp2"`
	EI              float64 `json:"ei"`
	FederalTax      float64 `json:"federalTax"`
	AlbertaTax      float64 `json:"albertaTax"`
	UnionDues       float64 `json:"unionDues"`
	TotalDeductions float64 `json:"totalDeductions"`
	NetTaxableOnly  float64 `json:"netTaxableOnly"`
	NetPayTotal     float64 `json:"netPayTotal"`
}

// CalculationDTO represents one calculation in API responses.
type CalculationDTO struct {
	ID               string                     `json:"id"`
	ConstantSetID    string                     `json:"constantSetId"`
	Mode             string                     `json:"mode"`
	TaxableWeekly    string                     `json:"taxableWeekly"`
	NonTaxableWeekly string                     `json:"nonTaxableWeekly"`
	UnionDuesRate    *string                    `json:"unionDuesRate,omitempty"`
	Breakdown        BreakdownDTO               `json:"breakdown"`
	Exact            payroll.DeductionBreakdown `json:"exact"`
	Cached           bool                       `json:"cached,omitempty"`
	CreatedAt        string                     `json:"createdAt"`
}

// CompareDTO shows one week under both modes. Delta is annualized minus
// early-year for each line. CalculationIDs are the audit log entries, by mode.
type CompareDTO struct {
	ConstantSetID    string                  `json:"constantSetId"`
	TaxableWeekly    string                  `json:"taxableWeekly"`
	NonTaxableWeekly string                  `json:"nonTaxableWeekly"`
	Modes            map[string]BreakdownDTO `json:"modes"`
	Delta            BreakdownDTO            `json:"delta"`
	CalculationIDs   map[string]string       `json:"calculationIds"`
}

// =============================================================================
// CONSTANT SETS
// =============================================================================

// ConstantSetDTO represents a constant set in API responses.
type ConstantSetDTO struct {
	ID        string                  `json:"id"`
	Name      string                  `json:"name"`
	TaxYear   int                     `json:"taxYear"`
	Province  string                  `json:"province"`
	Source    string                  `json:"source"` // "builtin" or "stored"
	Version   int                     `json:"version,omitempty"`
	Default   bool                    `json:"default,omitempty"`
	Config    factory.ConstantSetJSON `json:"config"`
	UpdatedAt string                  `json:"updatedAt,omitempty"`
}

// =============================================================================
// SCENARIOS
// =============================================================================

// ScenarioDTO is a sample earner computed under both modes.
type ScenarioDTO struct {
	ID               string                  `json:"id"`
	Name             string                  `json:"name"`
	Description      string                  `json:"description"`
	TaxableWeekly    float64                 `json:"taxableWeekly"`
	NonTaxableWeekly float64                 `json:"nonTaxableWeekly"`
	Breakdowns       map[string]BreakdownDTO `json:"breakdowns,omitempty"`
}

// =============================================================================
// COMMON
// =============================================================================

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// HealthDTO is returned by GET /healthz.
type HealthDTO struct {
	Status       string   `json:"status"`
	ConstantSets []string `json:"constantSets"`
	Cache        string   `json:"cache"`
	CacheEntries int      `json:"cacheEntries,omitempty"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func toBreakdownDTO(b payroll.DeductionBreakdown, places int32) BreakdownDTO {
	r := b.Rounded(places)
	return BreakdownDTO{
		CPP:             r.CPP.InexactFloat64(),
		CPP2:            r.CPP2.InexactFloat64(),
		EI:              r.EI.InexactFloat64(),
		FederalTax:      r.FederalTax.InexactFloat64(),
		AlbertaTax:      r.AlbertaTax.InexactFloat64(),
		UnionDues:       r.UnionDues.InexactFloat64(),
		TotalDeductions: r.TotalDeductions.InexactFloat64(),
		NetTaxableOnly:  r.NetTaxableOnly.InexactFloat64(),
		NetPayTotal:     r.NetPayTotal.InexactFloat64(),
	}
}

func subtractBreakdown(a, b payroll.DeductionBreakdown) payroll.DeductionBreakdown {
	return payroll.DeductionBreakdown{
		CPP:             a.CPP.Sub(b.CPP),
		CPP2:            a.CPP2.Sub(b.CPP2),
		EI:              a.EI.Sub(b.EI),
		FederalTax:      a.FederalTax.Sub(b.FederalTax),
		AlbertaTax:      a.AlbertaTax.Sub(b.AlbertaTax),
		UnionDues:       a.UnionDues.Sub(b.UnionDues),
		TotalDeductions: a.TotalDeductions.Sub(b.TotalDeductions),
		NetTaxableOnly:  a.NetTaxableOnly.Sub(b.NetTaxableOnly),
		NetPayTotal:     a.NetPayTotal.Sub(b.NetPayTotal),
	}
}

func strPtr(s string) *string {
	return &s
}
