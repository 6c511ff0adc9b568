package generic

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// BRACKET SCHEDULE - Progressive marginal-rate structure
// =============================================================================

// Bracket is one step of a progressive schedule. Rate applies only to the
// slice of income between the previous bracket's limit and UpperLimit.
type Bracket struct {
	// UpperLimit is nil for the final, unbounded bracket.
	UpperLimit *decimal.Decimal
	Rate       decimal.Decimal
}

// NewBracket builds a bounded bracket.
func NewBracket(upTo, rate float64) Bracket {
	return Bracket{UpperLimit: DecPtr(upTo), Rate: Dec(rate)}
}

// TopBracket builds the final unbounded bracket.
func TopBracket(rate float64) Bracket {
	return Bracket{Rate: Dec(rate)}
}

// IsUnbounded reports whether the bracket has no upper limit.
func (b Bracket) IsUnbounded() bool { return b.UpperLimit == nil }

// BracketSchedule is ordered by strictly increasing UpperLimit, and the last
// bracket is unbounded.
type BracketSchedule []Bracket

// Apply returns the tax owed on annualIncome.
//
// Apply does not validate the schedule. A malformed schedule (descending
// limits, a bounded last bracket) gives undefined results; call Validate
// when the schedule comes from outside the program.
func (s BracketSchedule) Apply(annualIncome decimal.Decimal) decimal.Decimal {
	tax := decimal.Zero
	lastLimit := decimal.Zero
	remaining := annualIncome

	for _, b := range s {
		if !remaining.IsPositive() {
			break
		}

		slice := remaining
		if !b.IsUnbounded() {
			slice = decimal.Min(remaining, b.UpperLimit.Sub(lastLimit))
		}
		if slice.IsPositive() {
			tax = tax.Add(slice.Mul(b.Rate))
			remaining = remaining.Sub(slice)
			if !b.IsUnbounded() {
				lastLimit = *b.UpperLimit
			}
		}
	}
	return tax
}

// Validate checks the ordering Apply relies on.
func (s BracketSchedule) Validate() error {
	if len(s) == 0 {
		return &ScheduleError{Index: -1, Reason: "schedule has no brackets"}
	}

	last := decimal.Zero
	for i, b := range s {
		if b.Rate.IsNegative() {
			return &ScheduleError{Index: i, Reason: fmt.Sprintf("negative rate %s", b.Rate)}
		}
		if i == len(s)-1 {
			if !b.IsUnbounded() {
				return &ScheduleError{Index: i, Reason: "last bracket must be unbounded"}
			}
			continue
		}
		if b.IsUnbounded() {
			return &ScheduleError{Index: i, Reason: "only the last bracket may be unbounded"}
		}
		if !b.UpperLimit.GreaterThan(last) {
			return &ScheduleError{Index: i, Reason: fmt.Sprintf("limit %s is not above %s", b.UpperLimit, last)}
		}
		last = *b.UpperLimit
	}
	return nil
}

// Clone returns a deep copy so callers cannot alias limit pointers.
func (s BracketSchedule) Clone() BracketSchedule {
	if s == nil {
		return nil
	}
	out := make(BracketSchedule, len(s))
	for i, b := range s {
		out[i] = Bracket{Rate: b.Rate}
		if b.UpperLimit != nil {
			limit := *b.UpperLimit
			out[i].UpperLimit = &limit
		}
	}
	return out
}
