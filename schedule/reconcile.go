/*
reconcile.go - The merge engine

PURPOSE:
  Produces one CombinedRecord per person with at least one allocation, for
  the selected date range. Per working day the engine resolves:

    roster half:  "N/A" unless an in-window roster record configures the
                  weekday; WFO strictly dominates WFH across all contributing
                  records, regardless of order
    shift half:   "N/A" outside the person's shift window, else the weekday's
                  configured label
    overlay:      the most recent log entry for (email, field, date) replaces
                  that half only

ROSTER SELECTION:
  Project rosters (subject matches any of the person's allocation names) and
  personal rosters (subject matches the person's own email) are unioned; both
  contribute to per-day resolution. Dominance, not list precedence, decides
  disagreements.

GATING:
  The merge only runs over a complete world view: all three source inputs
  must be non-empty and the range must contain at least one working day.
  Partial fetches are never reconciled.
*/
package schedule

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

// =============================================================================
// INPUTS
// =============================================================================

// Inputs is the complete world view for one reconciliation run. All slices
// must come from completed fetches; Logs may be empty (a fresh deployment
// has no history yet) but must still be the result of a completed read.
type Inputs struct {
	Allocations []AllocationRecord // first record is a header sentinel
	Rosters     []RosterRecord
	Shifts      []ShiftRecord
	Logs        []LogEntry
	Start       Date
	End         Date
}

// Engine merges the inputs into combined records.
type Engine struct {
	logger *zap.Logger
}

// NewEngine creates an engine. A nil logger is replaced with a no-op one.
func NewEngine(logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{logger: logger}
}

// =============================================================================
// RECONCILE
// =============================================================================

// Reconcile merges allocations, rosters, shifts, and the audit log into one
// combined record per person, ordered by first appearance in the allocation
// source.
func (e *Engine) Reconcile(ctx context.Context, in Inputs) ([]CombinedRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := gate(in); err != nil {
		return nil, err
	}

	days := WorkingDays(in.Start, in.End)
	if len(days) == 0 {
		return nil, ErrEmptyRange
	}

	overlay := BuildOverlay(in.Logs)

	// Group allocations by email, order-preserving. The source's first row
	// is a header sentinel.
	var emails []string
	byEmail := make(map[string][]AllocationRecord)
	for _, a := range in.Allocations[1:] {
		if a.Email == "" {
			continue
		}
		if _, seen := byEmail[a.Email]; !seen {
			emails = append(emails, a.Email)
		}
		byEmail[a.Email] = append(byEmail[a.Email], a)
	}

	records := make([]CombinedRecord, 0, len(emails))
	for _, email := range emails {
		records = append(records, e.reconcilePerson(email, byEmail[email], in, overlay, days))
	}
	return records, nil
}

func (e *Engine) reconcilePerson(email string, allocations []AllocationRecord, in Inputs, overlay *OverlayIndex, days []string) CombinedRecord {
	rosters := e.selectRosters(email, allocations, in)
	shift, hasShift := findShift(in.Shifts, email)

	cells := make(map[string]string, len(days))
	for _, iso := range days {
		day, err := ParseDate(iso)
		if err != nil {
			// WorkingDays only emits valid ISO dates; guard anyway.
			continue
		}
		wd := day.Weekday()

		rosterCell := ValueNA
		for _, r := range rosters {
			if !r.Covers(day) {
				continue
			}
			switch r.ValueOn(wd) {
			case WFO:
				rosterCell = string(WFO)
			case WFH:
				if rosterCell != string(WFO) {
					rosterCell = string(WFH)
				}
			}
		}

		shiftCell := ValueNA
		if hasShift && shift.Covers(day) {
			shiftCell = string(shift.LabelOn(wd))
		}

		cell := ComposeCell(rosterCell, shiftCell)

		// Log overlay, per half. A roster override must not disturb a
		// concurrently applied shift override on the same cell.
		if entry, ok := overlay.Latest(email, FieldRoster, iso); ok {
			cell = ReplaceCellHalf(cell, FieldRoster, entry.NewValue)
		}
		if entry, ok := overlay.Latest(email, FieldShift, iso); ok {
			cell = ReplaceCellHalf(cell, FieldShift, entry.NewValue)
		}

		cells[iso] = cell
	}

	projectName := ValueNA
	if allocations[0].Allocation != "" {
		projectName = allocations[0].Allocation
	}
	names := make([]string, len(allocations))
	for i, a := range allocations {
		names[i] = a.Allocation
	}

	return CombinedRecord{
		Email:       email,
		ProjectName: projectName,
		Allocation:  strings.Join(names, ", "),
		Cells:       cells,
	}
}

// selectRosters unions the person's project rosters with their personal
// rosters, restricted to records whose validity window overlaps the active
// range. Records with unusable windows are skipped with a warning.
func (e *Engine) selectRosters(email string, allocations []AllocationRecord, in Inputs) []RosterRecord {
	names := make(map[string]bool, len(allocations))
	for _, a := range allocations {
		names[a.Allocation] = true
	}

	var selected []RosterRecord
	for _, r := range in.Rosters {
		if !names[r.SubjectName] && r.SubjectName != email {
			continue
		}
		if !r.StartDate.Valid() || !r.EndDate.Valid() {
			e.logger.Warn("skipping roster record with unusable validity window",
				zap.String("subject", r.SubjectName),
				zap.String("id", r.ID))
			continue
		}
		if r.StartDate.BeforeOrEqual(in.End) && r.EndDate.AfterOrEqual(in.Start) {
			selected = append(selected, r)
		}
	}
	return selected
}

// findShift locates the (at most one) shift record for the email.
func findShift(shifts []ShiftRecord, email string) (ShiftRecord, bool) {
	for _, s := range shifts {
		if s.Email == email {
			return s, true
		}
	}
	return ShiftRecord{}, false
}

func gate(in Inputs) error {
	var missing []string
	if len(in.Allocations) == 0 {
		missing = append(missing, "allocations")
	}
	if len(in.Rosters) == 0 {
		missing = append(missing, "rosters")
	}
	if len(in.Shifts) == 0 {
		missing = append(missing, "shifts")
	}
	if len(missing) > 0 {
		return &IncompleteInputsError{Missing: missing}
	}
	return nil
}
