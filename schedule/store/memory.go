/*
Package store provides in-memory implementations of the schedule source and
log contracts, used by tests, demo scenarios, and single-process deployments.

All implementations are mutex-guarded and hand out deep copies, so callers
can never alias internal state.
*/
package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/warp/roster-engine/schedule"
)

// =============================================================================
// MEMORY LOG STORE
// =============================================================================

// MemoryLog is an in-memory append-only schedule.LogStore.
type MemoryLog struct {
	mu      sync.RWMutex
	entries []schedule.LogEntry
}

func NewMemoryLog() *MemoryLog { return &MemoryLog{} }

func (m *MemoryLog) Read(_ context.Context) ([]schedule.LogEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]schedule.LogEntry, len(m.entries))
	copy(out, m.entries)
	return out, nil
}

// Append adds a batch. All-or-nothing is trivial here: the slice append is
// a single operation under the lock.
func (m *MemoryLog) Append(_ context.Context, entries []schedule.LogEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range entries {
		if e.ID == "" {
			e.ID = uuid.NewString()
		}
		m.entries = append(m.entries, e)
	}
	return nil
}

// =============================================================================
// MEMORY ROSTER SOURCE
// =============================================================================

// MemoryRoster is an in-memory schedule.RosterSource.
type MemoryRoster struct {
	mu      sync.RWMutex
	records []schedule.RosterRecord
}

func NewMemoryRoster(seed ...schedule.RosterRecord) *MemoryRoster {
	m := &MemoryRoster{}
	for _, r := range seed {
		m.records = append(m.records, cloneRoster(withRosterID(r)))
	}
	return m
}

func (m *MemoryRoster) Read(_ context.Context) ([]schedule.RosterRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]schedule.RosterRecord, len(m.records))
	for i, r := range m.records {
		out[i] = cloneRoster(r)
	}
	return out, nil
}

func (m *MemoryRoster) Create(_ context.Context, record schedule.RosterRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, cloneRoster(withRosterID(record)))
	return nil
}

func (m *MemoryRoster) Update(_ context.Context, id, field, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.records {
		if m.records[i].ID == id {
			return applyRosterField(&m.records[i], field, value)
		}
	}
	return schedule.ErrRecordNotFound
}

func (m *MemoryRoster) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.records {
		if m.records[i].ID == id {
			m.records = append(m.records[:i], m.records[i+1:]...)
			return nil
		}
	}
	return schedule.ErrRecordNotFound
}

// =============================================================================
// MEMORY SHIFT SOURCE
// =============================================================================

// MemoryShift is an in-memory schedule.ShiftSource.
type MemoryShift struct {
	mu      sync.RWMutex
	records []schedule.ShiftRecord
}

func NewMemoryShift(seed ...schedule.ShiftRecord) *MemoryShift {
	m := &MemoryShift{}
	for _, s := range seed {
		m.records = append(m.records, cloneShift(withShiftID(s)))
	}
	return m
}

func (m *MemoryShift) Read(_ context.Context) ([]schedule.ShiftRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]schedule.ShiftRecord, len(m.records))
	for i, s := range m.records {
		out[i] = cloneShift(s)
	}
	return out, nil
}

func (m *MemoryShift) Create(_ context.Context, record schedule.ShiftRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, cloneShift(withShiftID(record)))
	return nil
}

func (m *MemoryShift) Update(_ context.Context, id, field, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.records {
		if m.records[i].ID == id {
			return applyShiftField(&m.records[i], field, value)
		}
	}
	return schedule.ErrRecordNotFound
}

func (m *MemoryShift) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.records {
		if m.records[i].ID == id {
			m.records = append(m.records[:i], m.records[i+1:]...)
			return nil
		}
	}
	return schedule.ErrRecordNotFound
}

// =============================================================================
// MEMORY ALLOCATION SOURCE
// =============================================================================

// MemoryAllocation is an in-memory schedule.AllocationSource. By source
// convention the first seeded record is the header sentinel.
type MemoryAllocation struct {
	mu      sync.RWMutex
	records []schedule.AllocationRecord
}

func NewMemoryAllocation(seed ...schedule.AllocationRecord) *MemoryAllocation {
	m := &MemoryAllocation{}
	for _, a := range seed {
		if a.ID == "" {
			a.ID = uuid.NewString()
		}
		m.records = append(m.records, a)
	}
	return m
}

func (m *MemoryAllocation) Read(_ context.Context) ([]schedule.AllocationRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]schedule.AllocationRecord, len(m.records))
	copy(out, m.records)
	return out, nil
}

func (m *MemoryAllocation) Allocations(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	seen := make(map[string]bool)
	var names []string
	for i, a := range m.records {
		if i == 0 || a.Allocation == "" || seen[a.Allocation] {
			continue // skip the header sentinel and duplicates
		}
		seen[a.Allocation] = true
		names = append(names, a.Allocation)
	}
	return names, nil
}

// =============================================================================
// FIELD SETTERS
// =============================================================================

func applyRosterField(r *schedule.RosterRecord, field, value string) error {
	if wd, ok := schedule.ParseWeekday(field); ok {
		if r.Days == nil {
			r.Days = make(map[time.Weekday]schedule.RosterValue)
		}
		r.Days[wd] = schedule.RosterValue(value)
		return nil
	}
	switch field {
	case "subjectName":
		r.SubjectName = value
	case "leader":
		r.Leader = value
	case "startDate", "endDate":
		d, err := schedule.ParseDate(value)
		if err != nil {
			return fmt.Errorf("%w: bad %s %q", schedule.ErrMalformedRow, field, value)
		}
		if field == "startDate" {
			r.StartDate = d
		} else {
			r.EndDate = d
		}
	default:
		return fmt.Errorf("%w: unknown roster field %q", schedule.ErrMalformedRow, field)
	}
	return nil
}

func applyShiftField(s *schedule.ShiftRecord, field, value string) error {
	if wd, ok := schedule.ParseWeekday(field); ok {
		if s.Days == nil {
			s.Days = make(map[time.Weekday]schedule.ShiftLabel)
		}
		s.Days[wd] = schedule.ShiftLabel(value)
		return nil
	}
	switch field {
	case "email":
		s.Email = value
	case "joinDate", "endDate":
		d, err := schedule.ParseDate(value)
		if err != nil {
			return fmt.Errorf("%w: bad %s %q", schedule.ErrMalformedRow, field, value)
		}
		if field == "joinDate" {
			s.JoinDate = d
		} else {
			s.EndDate = d
		}
	default:
		return fmt.Errorf("%w: unknown shift field %q", schedule.ErrMalformedRow, field)
	}
	return nil
}

func withRosterID(r schedule.RosterRecord) schedule.RosterRecord {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return r
}

func withShiftID(s schedule.ShiftRecord) schedule.ShiftRecord {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return s
}

func cloneRoster(r schedule.RosterRecord) schedule.RosterRecord {
	days := make(map[time.Weekday]schedule.RosterValue, len(r.Days))
	for k, v := range r.Days {
		days[k] = v
	}
	r.Days = days
	return r
}

func cloneShift(s schedule.ShiftRecord) schedule.ShiftRecord {
	days := make(map[time.Weekday]schedule.ShiftLabel, len(s.Days))
	for k, v := range s.Days {
		days[k] = v
	}
	s.Days = days
	return s
}
