package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/roster-engine/schedule"
	"github.com/warp/roster-engine/store/sqlite"
)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.New(":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func entry(email string, ts time.Time, newValue string) schedule.LogEntry {
	return schedule.LogEntry{
		Email:     email,
		Day:       "monday",
		Field:     schedule.FieldRoster,
		OldValue:  "WFO",
		NewValue:  newValue,
		ChangedBy: "lead@x.com",
		Timestamp: ts,
		Date:      schedule.NewDate(2024, time.January, 8),
	}
}

// =============================================================================
// AUDIT LOG
// =============================================================================

func TestAuditLog_AppendAndReadMostRecentFirst(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 1, 8, 9, 0, 0, 0, time.UTC)

	require.NoError(t, store.Append(ctx, []schedule.LogEntry{
		entry("a@x.com", base, "WFH"),
		entry("a@x.com", base.Add(time.Hour), "WFO"),
	}))

	entries, err := store.Read(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "WFO", entries[0].NewValue, "most recent first")
	assert.Equal(t, "WFH", entries[1].NewValue)
	assert.Equal(t, "2024-01-08", entries[0].Date.String())
	assert.NotEmpty(t, entries[0].ID, "IDs are assigned on append")
}

func TestAuditLog_EmptyBatchIsNoOp(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, nil))
	entries, err := store.Read(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

// =============================================================================
// ROSTER SOURCE
// =============================================================================

func TestRosterSource_CRUDRoundTrip(t *testing.T) {
	store := newTestStore(t)
	rosters := store.Rosters()
	ctx := context.Background()

	require.NoError(t, rosters.Create(ctx, schedule.RosterRecord{
		SubjectName: "ProjA",
		Leader:      "lead@x.com",
		StartDate:   schedule.NewDate(2024, time.January, 1),
		EndDate:     schedule.NewDate(2024, time.January, 31),
		Days: map[time.Weekday]schedule.RosterValue{
			time.Monday: schedule.WFO,
			time.Friday: schedule.WFH,
		},
	}))

	records, err := rosters.Read(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)

	rec := records[0]
	assert.NotEmpty(t, rec.ID, "surrogate key assigned on create")
	assert.Equal(t, "ProjA", rec.SubjectName)
	assert.Equal(t, schedule.WFO, rec.Days[time.Monday])
	assert.Equal(t, schedule.WFH, rec.Days[time.Friday])
	assert.True(t, rec.Covers(schedule.NewDate(2024, time.January, 15)))

	// Update one weekday by stable ID.
	require.NoError(t, rosters.Update(ctx, rec.ID, "monday", "WFH"))
	records, _ = rosters.Read(ctx)
	assert.Equal(t, schedule.WFH, records[0].Days[time.Monday])

	require.NoError(t, rosters.Delete(ctx, rec.ID))
	records, _ = rosters.Read(ctx)
	assert.Empty(t, records)
}

func TestRosterSource_UpdateUnknownIDOrField(t *testing.T) {
	store := newTestStore(t)
	rosters := store.Rosters()
	ctx := context.Background()

	assert.ErrorIs(t, rosters.Update(ctx, "missing", "monday", "WFO"), schedule.ErrRecordNotFound)
	assert.ErrorIs(t, rosters.Update(ctx, "any", "saturday", "WFO"), schedule.ErrMalformedRow)
	assert.ErrorIs(t, rosters.Update(ctx, "any", "startDate", "not-a-date"), schedule.ErrMalformedRow)
}

func TestRosterSource_MissingWindowIsNonMatching(t *testing.T) {
	// GIVEN: a mirrored row with no usable start/end dates
	store := newTestStore(t)
	rosters := store.Rosters()
	ctx := context.Background()

	require.NoError(t, store.ReplaceRosters(ctx, []schedule.RosterRecord{{
		SubjectName: "ProjA",
	}}))

	records, err := rosters.Read(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.False(t, records[0].StartDate.Valid())
	assert.False(t, records[0].Covers(schedule.NewDate(2024, time.January, 8)),
		"record with invalid window must never match")
}

// =============================================================================
// SHIFT SOURCE
// =============================================================================

func TestShiftSource_CRUDRoundTrip(t *testing.T) {
	store := newTestStore(t)
	shifts := store.Shifts()
	ctx := context.Background()

	require.NoError(t, shifts.Create(ctx, schedule.ShiftRecord{
		Email:    "a@x.com",
		JoinDate: schedule.NewDate(2024, time.January, 1),
		EndDate:  schedule.NewDate(2024, time.December, 31),
		Days:     map[time.Weekday]schedule.ShiftLabel{time.Monday: schedule.ShiftMorning},
	}))

	records, err := shifts.Read(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, schedule.ShiftMorning, records[0].Days[time.Monday])
	assert.Equal(t, schedule.ShiftNA, records[0].LabelOn(time.Tuesday), "unset weekday reads as N/A")

	require.NoError(t, shifts.Update(ctx, records[0].ID, "tuesday", "LATE"))
	records, _ = shifts.Read(ctx)
	assert.Equal(t, schedule.ShiftLate, records[0].Days[time.Tuesday])
}

// =============================================================================
// ALLOCATION SOURCE
// =============================================================================

func TestAllocationSource_HeaderSentinelAndNames(t *testing.T) {
	store := newTestStore(t)
	allocations := store.AllocationSource()
	ctx := context.Background()

	require.NoError(t, allocations.Create(ctx, schedule.AllocationRecord{Email: "a@x.com", Allocation: "ProjA"}))
	require.NoError(t, allocations.Create(ctx, schedule.AllocationRecord{Email: "b@x.com", Allocation: "ProjA"}))
	require.NoError(t, allocations.Create(ctx, schedule.AllocationRecord{Email: "a@x.com", Allocation: "ProjB"}))

	records, err := allocations.Read(ctx)
	require.NoError(t, err)
	require.Len(t, records, 4, "header sentinel plus three records")
	assert.Equal(t, "Email", records[0].Email)
	assert.Equal(t, "a@x.com", records[1].Email)

	names, err := allocations.Allocations(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"ProjA", "ProjB"}, names)
}

func TestReplaceAllocations_DropsSentinel(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	listing := []schedule.AllocationRecord{
		{Email: "Email", Allocation: "Allocation"}, // header from upstream
		{Email: "a@x.com", Allocation: "ProjA"},
	}
	require.NoError(t, store.ReplaceAllocations(ctx, listing))

	records, err := store.AllocationSource().Read(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2, "one sentinel (re-added on read) plus one record")
	assert.Equal(t, "a@x.com", records[1].Email)
}

// =============================================================================
// PERMISSION ORACLE
// =============================================================================

func TestPermissionOracle(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveRole(ctx, "lead@x.com", "manager",
		[]string{schedule.PermManageRoster, schedule.PermViewCombined}))

	assert.True(t, store.HasPermission("lead@x.com", schedule.PermManageRoster))
	assert.False(t, store.HasPermission("lead@x.com", schedule.PermManageShifts))
	assert.False(t, store.HasPermission("stranger@x.com", schedule.PermViewCombined),
		"unknown callers are denied")

	role, perms, err := store.GetRole(ctx, "lead@x.com")
	require.NoError(t, err)
	assert.Equal(t, "manager", role)
	assert.Len(t, perms, 2)

	_, _, err = store.GetRole(ctx, "stranger@x.com")
	assert.ErrorIs(t, err, schedule.ErrRecordNotFound)
}
