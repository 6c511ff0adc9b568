/*
errors.go - Centralized error types for the deduction engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  The calculation core itself never fails; these errors come from the
  boundaries around it (input parsing, configuration loading, storage).

ERROR CATEGORIES:
  1. Input errors - Caller supplied a negative or non-numeric amount
  2. Configuration errors - Malformed bracket schedule or constant set
  3. Lookup errors - Unknown constant set id

USAGE:
  if errors.Is(err, generic.ErrInvalidInput) {
      // 400 Bad Request
  }

SEE ALSO:
  - brackets.go: Returns ScheduleError from Validate
  - payroll/registry.go: Returns ErrConstantSetNotFound
  - api/handlers.go: Maps these errors to HTTP status codes
*/
package generic

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidInput is returned at the boundary when an earnings figure is
	// negative or not a number. The calculation core does not return it.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidSchedule is returned when a bracket schedule breaks the
	// ascending-limit / unbounded-last rule.
	ErrInvalidSchedule = errors.New("invalid bracket schedule")

	// ErrInvalidConstantSet is returned when a constant set has out-of-range
	// rates, caps or period counts.
	ErrInvalidConstantSet = errors.New("invalid constant set")

	// ErrConstantSetNotFound is returned when a referenced constant set id
	// is neither registered nor stored.
	ErrConstantSetNotFound = errors.New("constant set not found")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InputError describes a rejected caller-supplied value.
type InputError struct {
	Field  string
	Value  string
	Reason string
}

func (e *InputError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

func (e *InputError) Unwrap() error {
	return ErrInvalidInput
}

// ScheduleError points at the offending bracket. Index is -1 for
// whole-schedule problems.
type ScheduleError struct {
	Authority string
	Index     int
	Reason    string
}

func (e *ScheduleError) Error() string {
	if e.Authority != "" {
		return fmt.Sprintf("%s brackets: bracket %d: %s", e.Authority, e.Index, e.Reason)
	}
	return fmt.Sprintf("bracket %d: %s", e.Index, e.Reason)
}

func (e *ScheduleError) Unwrap() error {
	return ErrInvalidSchedule
}

// ConstantSetError reports a constant-set field outside its allowed range.
type ConstantSetError struct {
	SetID  string
	Field  string
	Reason string
}

func (e *ConstantSetError) Error() string {
	return fmt.Sprintf("constant set %q: %s: %s", e.SetID, e.Field, e.Reason)
}

func (e *ConstantSetError) Unwrap() error {
	return ErrInvalidConstantSet
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrInvalidSchedule) ||
		errors.Is(err, ErrInvalidConstantSet)
}

// IsNotFound returns true if the error indicates a missing constant set.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrConstantSetNotFound)
}
