/*
sources.go - Contracts for the external record sources

PURPOSE:
  The engine never talks to the spreadsheet backend directly. It consumes
  narrow source contracts; adapters (sheet/, store/sqlite) implement them.

IDENTITY:
  Records carry stable surrogate IDs. Row positions are an adapter-private
  detail: the sheet adapter re-resolves the current position of an ID
  immediately before each mutating call, so the core never derives identity
  from an index into a filtered listing.

PERMISSIONS:
  PermissionOracle gates which management surfaces a caller may use. The
  engine itself performs no permission checks - that is the HTTP boundary's
  job - so it stays trivially testable in isolation from auth.
*/
package schedule

import "context"

// =============================================================================
// RECORD SOURCES
// =============================================================================

// RosterSource provides CRUD over roster records.
type RosterSource interface {
	Read(ctx context.Context) ([]RosterRecord, error)
	Create(ctx context.Context, record RosterRecord) error
	// Update changes one field of the identified record. Field is either a
	// lowercase weekday name or one of "subjectName", "leader", "startDate",
	// "endDate".
	Update(ctx context.Context, id, field, value string) error
	Delete(ctx context.Context, id string) error
}

// ShiftSource provides CRUD over shift records. Field names for Update are
// the lowercase weekday names plus "email", "joinDate", "endDate".
type ShiftSource interface {
	Read(ctx context.Context) ([]ShiftRecord, error)
	Create(ctx context.Context, record ShiftRecord) error
	Update(ctx context.Context, id, field, value string) error
	Delete(ctx context.Context, id string) error
}

// AllocationSource provides read access to allocation records. By source
// convention the first element of Read's result is a header sentinel; the
// engine discards it.
type AllocationSource interface {
	Read(ctx context.Context) ([]AllocationRecord, error)

	// Allocations returns the distinct allocation names.
	Allocations(ctx context.Context) ([]string, error)
}

// =============================================================================
// PERMISSIONS
// =============================================================================

// Permission names understood by the oracle.
const (
	PermManageRoster = "manage_roster"
	PermManageShifts = "manage_shifts"
	PermViewCombined = "view_combined"
)

// PermissionOracle answers permission checks for a caller. Injected
// explicitly wherever a check is needed; never ambient state.
type PermissionOracle interface {
	HasPermission(email, name string) bool
}

// AllowAll grants everything. For tests and single-user deployments.
type AllowAll struct{}

func (AllowAll) HasPermission(string, string) bool { return true }
