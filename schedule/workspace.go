/*
workspace.go - Current/baseline snapshot pair and the commit cycle

PURPOSE:
  Holds the two combined snapshots that drive change detection:

    current:  what the user sees and edits
    baseline: the last-synced state, the comparison point for diffs

DISCIPLINE:
  - Snapshots are installed and handed out as deep clones; current and
    baseline never share cell maps, else edits would mutate both and diff
    detection would silently break.
  - The baseline advances ONLY after a successful persist. A failed append
    leaves it untouched so a retry re-detects the same diff.
  - Superseding loads are last-write-wins: a later Load simply replaces
    whatever an earlier fetch produced.
*/
package schedule

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// CommitResult reports the outcome of a commit. NoOp distinguishes "nothing
// to log" from "logged N changes" so callers can surface the right message.
type CommitResult struct {
	Logged  int
	NoOp    bool
	Entries []LogEntry
}

// Workspace owns the editable combined snapshot and its baseline.
type Workspace struct {
	mu       sync.Mutex
	current  []CombinedRecord
	baseline []CombinedRecord
}

func NewWorkspace() *Workspace { return &Workspace{} }

// Load installs a freshly reconciled result as both current and baseline,
// discarding any uncommitted edits. Last write wins across superseding
// reconciliation runs.
func (w *Workspace) Load(records []CombinedRecord) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.current = CloneRecords(records)
	w.baseline = CloneRecords(records)
}

// Current returns a deep copy of the editable snapshot.
func (w *Workspace) Current() []CombinedRecord {
	w.mu.Lock()
	defer w.mu.Unlock()
	return CloneRecords(w.current)
}

// Baseline returns a deep copy of the comparison snapshot.
func (w *Workspace) Baseline() []CombinedRecord {
	w.mu.Lock()
	defer w.mu.Unlock()
	return CloneRecords(w.baseline)
}

// Edit replaces one half of a cell in the current snapshot. The baseline is
// untouched.
func (w *Workspace) Edit(email, isoDate string, field Field, value string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	for i := range w.current {
		if w.current[i].Email != email {
			continue
		}
		cell, ok := w.current[i].Cells[isoDate]
		if !ok {
			return ErrRecordNotFound
		}
		w.current[i].Cells[isoDate] = ReplaceCellHalf(cell, field, value)
		return nil
	}
	return ErrRecordNotFound
}

// Commit diffs current against baseline, persists any changes as one atomic
// batch, and advances the baseline. Zero changes is a distinct no-op: no
// store call is made. On persistence failure the baseline is NOT advanced
// and the error propagates.
func (w *Workspace) Commit(ctx context.Context, store LogStore, actor string) (CommitResult, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	changes := ComputeChanges(w.current, w.baseline, actor, time.Now().UTC())
	if len(changes) == 0 {
		return CommitResult{NoOp: true}, nil
	}

	if err := store.Append(ctx, changes); err != nil {
		return CommitResult{}, fmt.Errorf("%w: %v", ErrAppendFailed, err)
	}

	w.baseline = CloneRecords(w.current)
	return CommitResult{Logged: len(changes), Entries: changes}, nil
}
