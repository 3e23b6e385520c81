/*
log.go - Append-only audit log of cell-level changes

PURPOSE:
  Every committed edit to a combined cell is recorded as a LogEntry. The log
  is the immutable trail of who changed what and when, and it feeds back
  into reconciliation: the most recent entry for a (email, field, date) cell
  overrides the freshly computed value for that half of the cell.

CRITICAL INVARIANTS:
  1. APPEND-ONLY: entries are never updated or deleted
  2. INDEPENDENT HALVES: a roster entry never clobbers the shift half of the
     same cell, and vice versa
  3. MOST RECENT WINS: overlay resolution orders by timestamp descending

SEE ALSO:
  - reconcile.go:       Applies the overlay during the merge
  - diff.go:            The only producer of new entries
  - store/memory.go:    In-memory LogStore
  - store/sqlite:       Durable LogStore
*/
package schedule

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// LOG ENTRY
// =============================================================================

// LogEntry records one field-level change to a combined cell. Immutable once
// written.
type LogEntry struct {
	ID        string
	Email     string
	Day       string // lowercase weekday name, legacy display key
	Field     Field  // which half of the cell changed
	OldValue  string
	NewValue  string
	ChangedBy string
	Timestamp time.Time
	Date      Date // the calendar day the change applies to
}

// NewLogEntryID issues a fresh surrogate key for a log entry.
func NewLogEntryID() string { return uuid.NewString() }

// =============================================================================
// LOG STORE - read-all / append-batch contract
// =============================================================================

// LogStore persists audit entries. Append-only: there is deliberately no
// update or delete operation.
type LogStore interface {
	// Read returns the full log history.
	Read(ctx context.Context) ([]LogEntry, error)

	// Append persists a batch of entries atomically.
	Append(ctx context.Context, entries []LogEntry) error
}

// =============================================================================
// OVERLAY INDEX - latest entry per (email, field, date)
// =============================================================================

type overlayKey struct {
	email string
	field Field
	date  string // ISO day; calendar-day match, not time-of-day
}

// OverlayIndex resolves the most recent log entry for a cell half in O(1).
type OverlayIndex struct {
	latest map[overlayKey]LogEntry
}

// BuildOverlay indexes a log history. Later timestamps win; entries without
// a calendar date can never be surfaced on a cell and are skipped.
func BuildOverlay(entries []LogEntry) *OverlayIndex {
	idx := &OverlayIndex{latest: make(map[overlayKey]LogEntry)}
	for _, e := range entries {
		if !e.Date.Valid() {
			continue
		}
		k := overlayKey{email: e.Email, field: e.Field, date: e.Date.String()}
		if cur, ok := idx.latest[k]; !ok || e.Timestamp.After(cur.Timestamp) {
			idx.latest[k] = e
		}
	}
	return idx
}

// Latest returns the most recent entry for the cell half, if any.
func (o *OverlayIndex) Latest(email string, field Field, isoDate string) (LogEntry, bool) {
	e, ok := o.latest[overlayKey{email: email, field: field, date: isoDate}]
	return e, ok
}

// =============================================================================
// HISTORY - recent entries for one cell (tooltip feed)
// =============================================================================

// LogHistory returns the n most recent entries matching the filters, newest
// first. An empty email or day matches everything, so the same call serves
// the full listing, a per-person feed, and the exact-cell tooltip.
func LogHistory(entries []LogEntry, email, day string, n int) []LogEntry {
	var matched []LogEntry
	for _, e := range entries {
		if email != "" && e.Email != email {
			continue
		}
		if day != "" && e.Day != day {
			continue
		}
		matched = append(matched, e)
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Timestamp.After(matched[j].Timestamp)
	})
	if n > 0 && len(matched) > n {
		matched = matched[:n]
	}
	return matched
}
