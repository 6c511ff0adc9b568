/*
scenarios.go - Sample earners for demos and sanity checks

PURPOSE:
  Provides a fixed set of weekly earners chosen to land on either side of
  the thresholds that change the result: the credit floor, the EI and CPP
  ceilings, the CPP2 band and the top brackets. Each is computed under both
  modes with the requested constant set.

AVAILABLE SCENARIOS:
  part-time:       Low earnings, no income tax after credits
  median:          Below every contribution ceiling
  above-ei:        Annualized earnings past maximum insurable earnings
  cpp2-band:       Between the CPP and CPP2 ceilings
  high-earner:     All contributions capped, upper federal brackets
  with-allowance:  Median earnings plus a non-taxable allowance

USAGE VIA API:
  GET /api/scenarios                      default constant set
  GET /api/scenarios?constantSetId=ab-2024

ADDING NEW SCENARIOS:
  Append to the 'scenarios' slice with ID, name, description and amounts.

SEE ALSO:
  - handlers.go: CompareModes uses the same calculator
*/
package api

import (
	"net/http"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:            "part-time",
		Name:          "Part-Time",
		Description:   "Earnings below the basic personal amounts",
		TaxableWeekly: 250,
	},
	{
		ID:            "median",
		Name:          "Median Earner",
		Description:   "Below every contribution ceiling",
		TaxableWeekly: 1000,
	},
	{
		ID:            "above-ei",
		Name:          "Above EI Ceiling",
		Description:   "EI capped, CPP still uncapped",
		TaxableWeekly: 1300,
	},
	{
		ID:            "cpp2-band",
		Name:          "CPP2 Band",
		Description:   "Between the CPP and CPP2 ceilings",
		TaxableWeekly: 1500,
	},
	{
		ID:            "high-earner",
		Name:          "High Earner",
		Description:   "All contributions capped, upper federal brackets",
		TaxableWeekly: 4000,
	},
	{
		ID:               "with-allowance",
		Name:             "Median With Allowance",
		Description:      "Median earnings plus a non-taxable allowance",
		TaxableWeekly:    1000,
		NonTaxableWeekly: 150,
	},
}

// ListScenarios returns every scenario computed under both modes.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	calc, _, err := h.calculator(r.URL.Query().Get("constantSetId"))
	if err != nil {
		writeDomainError(w, "Unknown constant set", err)
		return
	}

	out := make([]ScenarioDTO, len(scenarios))
	for i, s := range scenarios {
		results := calc.CompareModes(
			decimal.NewFromFloat(s.TaxableWeekly),
			decimal.NewFromFloat(s.NonTaxableWeekly),
			nil,
		)
		s.Breakdowns = make(map[string]BreakdownDTO, len(results))
		for mode, b := range results {
			s.Breakdowns[string(mode)] = toBreakdownDTO(b, DefaultRoundPlaces)
		}
		out[i] = s
	}

	writeJSON(w, http.StatusOK, out)
}
