/*
Package schedule provides the roster/shift reconciliation engine.

PURPOSE:
  This package merges three independently maintained record sets (project
  rosters, per-person shift assignments, and allocation records) into a
  single per-person, per-working-day view, overlays the most recent audit
  log entries, and computes minimal field-level diffs to persist back to
  the audit log.

KEY CONCEPTS IN THIS FILE (types.go):
  - RosterValue:      WFH / WFO / N/A - where a person works on a given day
  - ShiftLabel:       MORNING / DAY / EVENING / LATE / N/A - when they work
  - AllocationRecord: A person's assignment to a named project for a period
  - RosterRecord:     Per-weekday work-location plan for a project OR a person
  - ShiftRecord:      Per-weekday shift hours for one person
  - CombinedRecord:   The derived per-person row shown and edited in the UI

DESIGN PRINCIPLES:
  1. Precedence: WFO strictly dominates WFH when sources disagree
  2. Typed weekday maps: no stringly-typed field access for day lookups
  3. Stable identity: records carry surrogate IDs, never row positions
  4. Derived state: CombinedRecords are rebuilt per run, never persisted

SEE ALSO:
  - reconcile.go: The merge algorithm
  - diff.go:      Change extraction against a baseline
  - log.go:       Audit log entries and overlay index
*/
package schedule

import (
	"strings"
	"time"
)

// =============================================================================
// ROSTER AND SHIFT VALUES
// =============================================================================

// RosterValue is a work-location state for one day.
type RosterValue string

const (
	WFH RosterValue = "WFH"
	WFO RosterValue = "WFO"

	// ValueNA is the shared "no value" token for roster cells, shift cells,
	// and combined cell halves.
	ValueNA = "N/A"
)

// ShiftLabel is a daily work-hours bucket.
type ShiftLabel string

const (
	ShiftMorning ShiftLabel = "MORNING"
	ShiftDay     ShiftLabel = "DAY"
	ShiftEvening ShiftLabel = "EVENING"
	ShiftLate    ShiftLabel = "LATE"
	ShiftNA      ShiftLabel = ShiftLabel(ValueNA)
)

// Field names a half of a combined cell. Log entries target exactly one.
type Field string

const (
	FieldRoster Field = "roster"
	FieldShift  Field = "shift"
)

// =============================================================================
// SOURCE RECORDS
// =============================================================================

// AllocationRecord assigns a person to a project/allocation for a period.
// A person may hold several concurrent allocations.
type AllocationRecord struct {
	ID         string
	Email      string
	Allocation string
	StartDate  Date
	EndDate    Date
}

// RosterRecord is a per-weekday work-location plan.
//
// SubjectName is polymorphic: it keys either a project (the plan applies to
// everyone allocated to that project) or a person's email (the plan applies
// to that person directly). Validity is bounded by [StartDate, EndDate]
// inclusive.
type RosterRecord struct {
	ID          string
	SubjectName string
	Leader      string
	StartDate   Date
	EndDate     Date
	Days        map[time.Weekday]RosterValue
}

// ValueOn returns the configured roster value for a weekday, or ValueNA.
func (r RosterRecord) ValueOn(wd time.Weekday) RosterValue {
	if v, ok := r.Days[wd]; ok && v != "" {
		return v
	}
	return RosterValue(ValueNA)
}

// Covers reports whether the record's validity window contains the day.
// Invalid bounds never match.
func (r RosterRecord) Covers(day Date) bool {
	return r.StartDate.BeforeOrEqual(day) && day.BeforeOrEqual(r.EndDate)
}

// ShiftRecord is one person's per-weekday shift plan, valid in
// [JoinDate, EndDate] inclusive.
type ShiftRecord struct {
	ID       string
	Email    string
	JoinDate Date
	EndDate  Date
	Days     map[time.Weekday]ShiftLabel
}

// LabelOn returns the configured shift label for a weekday, or ShiftNA.
func (s ShiftRecord) LabelOn(wd time.Weekday) ShiftLabel {
	if v, ok := s.Days[wd]; ok && v != "" {
		return v
	}
	return ShiftNA
}

// Covers reports whether the shift plan is in effect on the day.
func (s ShiftRecord) Covers(day Date) bool {
	return s.JoinDate.BeforeOrEqual(day) && day.BeforeOrEqual(s.EndDate)
}

// =============================================================================
// COMBINED RECORD - the derived per-person row
// =============================================================================

// CombinedRecord is the per-person merged view for one reconciliation run.
// Cells maps ISO date -> "<roster>/ <shift>" and has exactly one entry per
// working day in the active range. CombinedRecords are ephemeral: they are
// recomputed whenever any upstream source changes and only diffs against
// them are persisted.
type CombinedRecord struct {
	Email       string
	ProjectName string
	Allocation  string
	Cells       map[string]string
}

// Clone returns a deep copy. Current and baseline snapshots must never share
// cell maps, else edits would corrupt diff detection.
func (c CombinedRecord) Clone() CombinedRecord {
	cells := make(map[string]string, len(c.Cells))
	for k, v := range c.Cells {
		cells[k] = v
	}
	return CombinedRecord{
		Email:       c.Email,
		ProjectName: c.ProjectName,
		Allocation:  c.Allocation,
		Cells:       cells,
	}
}

// CloneRecords deep-copies a combined snapshot.
func CloneRecords(records []CombinedRecord) []CombinedRecord {
	out := make([]CombinedRecord, len(records))
	for i, r := range records {
		out[i] = r.Clone()
	}
	return out
}

// =============================================================================
// CELL TEXT - "<roster>/ <shift>"
// =============================================================================

// cellSep separates the roster and shift halves of a cell. The separator is
// slash-space, not a bare slash: the "N/A" token itself contains a slash, so
// splitting on "/" alone would shred it.
const cellSep = "/ "

// ComposeCell builds the display text for one cell.
func ComposeCell(roster, shift string) string {
	if roster == "" {
		roster = ValueNA
	}
	if shift == "" {
		shift = ValueNA
	}
	return roster + cellSep + shift
}

// SplitCell splits cell text into its roster and shift halves, trimming
// whitespace. A missing half defaults to "N/A".
func SplitCell(cell string) (roster, shift string) {
	parts := strings.SplitN(cell, cellSep, 2)
	roster = strings.TrimSpace(parts[0])
	if roster == "" {
		roster = ValueNA
	}
	if len(parts) < 2 {
		return roster, ValueNA
	}
	shift = strings.TrimSpace(parts[1])
	if shift == "" {
		shift = ValueNA
	}
	return roster, shift
}

// ReplaceCellHalf swaps one half of a cell, preserving the other.
func ReplaceCellHalf(cell string, field Field, value string) string {
	roster, shift := SplitCell(cell)
	if field == FieldRoster {
		return ComposeCell(value, shift)
	}
	return ComposeCell(roster, value)
}
