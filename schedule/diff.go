/*
diff.go - Minimal change extraction between combined snapshots

PURPOSE:
  Compares an edited snapshot against its baseline and extracts only the
  meaningful field-level changes as audit log entries.

MEANINGFUL CHANGES:
  A half-cell change is logged iff the value differs AND the baseline half
  is not "N/A". Changes from "N/A" carry no meaningful old value - logging
  them would only produce noise on first-time assignment. This is policy,
  not convenience.

SEE ALSO:
  - workspace.go: Persists the extracted changes and advances the baseline
*/
package schedule

import (
	"sort"
	"time"
)

// ComputeChanges diffs current against baseline, record by record, working
// day by working day, and returns the audit entries to persist. Both
// snapshots must come from the same reconciliation run (same record order,
// same date columns). Entries are deterministic: ordered by record, then
// date, roster before shift.
func ComputeChanges(current, baseline []CombinedRecord, actor string, now time.Time) []LogEntry {
	var changes []LogEntry

	n := len(current)
	if len(baseline) < n {
		n = len(baseline)
	}

	for i := 0; i < n; i++ {
		cur, base := current[i], baseline[i]

		dates := make([]string, 0, len(cur.Cells))
		for iso := range cur.Cells {
			dates = append(dates, iso)
		}
		sort.Strings(dates)

		for _, iso := range dates {
			baseCell, ok := base.Cells[iso]
			if !ok {
				continue
			}
			curRoster, curShift := SplitCell(cur.Cells[iso])
			baseRoster, baseShift := SplitCell(baseCell)

			day, err := ParseDate(iso)
			if err != nil {
				continue
			}

			if curRoster != baseRoster && baseRoster != ValueNA {
				changes = append(changes, newChange(cur.Email, day, FieldRoster, baseRoster, curRoster, actor, now))
			}
			if curShift != baseShift && baseShift != ValueNA {
				changes = append(changes, newChange(cur.Email, day, FieldShift, baseShift, curShift, actor, now))
			}
		}
	}
	return changes
}

func newChange(email string, day Date, field Field, oldValue, newValue, actor string, now time.Time) LogEntry {
	return LogEntry{
		ID:        NewLogEntryID(),
		Email:     email,
		Day:       WeekdayName(day.Weekday()),
		Field:     field,
		OldValue:  oldValue,
		NewValue:  newValue,
		ChangedBy: actor,
		Timestamp: now,
		Date:      day,
	}
}
