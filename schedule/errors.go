/*
errors.go - Centralized error types for the schedule engine

PURPOSE:
  All sentinel errors in one place. Adapters wrap these with transport
  context; callers classify with errors.Is.

ERROR CATEGORIES:
  1. Reconciliation preconditions (incomplete inputs)
  2. Source/record errors (missing records, malformed rows)
  3. Permission errors (surfaced by the HTTP boundary)
*/
package schedule

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - use with errors.Is()
// =============================================================================

var (
	// ErrIncompleteInputs is returned when any of the three record sources
	// produced no data. Reconciliation is gated on a complete world view;
	// partial results are never merged. An empty audit log is fine.
	ErrIncompleteInputs = errors.New("incomplete reconciliation inputs")

	// ErrEmptyRange is returned when the requested range contains no working
	// days.
	ErrEmptyRange = errors.New("no working days in range")

	// ErrRecordNotFound is returned when a source cannot resolve a record ID.
	ErrRecordNotFound = errors.New("record not found")

	// ErrMalformedRow is returned when a source row cannot be normalized.
	ErrMalformedRow = errors.New("malformed source row")

	// ErrPermissionDenied is returned when the caller lacks a required
	// permission. The engine never raises this; HTTP middleware does.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrAppendFailed wraps audit-log persistence failures so callers can
	// distinguish "diff computed but not saved" from upstream read errors.
	ErrAppendFailed = errors.New("audit append failed")
)

// =============================================================================
// STRUCTURED ERRORS
// =============================================================================

// IncompleteInputsError names which inputs were missing.
type IncompleteInputsError struct {
	Missing []string
}

func (e *IncompleteInputsError) Error() string {
	return fmt.Sprintf("incomplete reconciliation inputs: missing %v", e.Missing)
}

func (e *IncompleteInputsError) Unwrap() error { return ErrIncompleteInputs }

// =============================================================================
// HELPERS
// =============================================================================

// IsClientError reports whether the error is the caller's fault (400-class).
func IsClientError(err error) bool {
	return errors.Is(err, ErrEmptyRange) ||
		errors.Is(err, ErrRecordNotFound) ||
		errors.Is(err, ErrMalformedRow)
}
