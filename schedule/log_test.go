package schedule_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/warp/roster-engine/schedule"
)

func logAt(email, day string, ts time.Time, newValue string) schedule.LogEntry {
	return schedule.LogEntry{
		Email:     email,
		Day:       day,
		Field:     schedule.FieldRoster,
		NewValue:  newValue,
		Timestamp: ts,
		Date:      schedule.NewDate(2024, time.January, 8),
	}
}

func TestLogHistory_MostRecentFirstCapped(t *testing.T) {
	base := time.Date(2024, 1, 8, 9, 0, 0, 0, time.UTC)
	entries := []schedule.LogEntry{
		logAt("a@x.com", "monday", base, "v1"),
		logAt("a@x.com", "monday", base.Add(2*time.Hour), "v3"),
		logAt("a@x.com", "monday", base.Add(time.Hour), "v2"),
		logAt("a@x.com", "monday", base.Add(3*time.Hour), "v4"),
		logAt("b@x.com", "monday", base.Add(4*time.Hour), "other person"),
		logAt("a@x.com", "tuesday", base.Add(5*time.Hour), "other day"),
	}

	history := schedule.LogHistory(entries, "a@x.com", "monday", 3)
	assert.Len(t, history, 3)
	assert.Equal(t, "v4", history[0].NewValue)
	assert.Equal(t, "v3", history[1].NewValue)
	assert.Equal(t, "v2", history[2].NewValue)
}

func TestLogHistory_EmptyFiltersMatchEverything(t *testing.T) {
	base := time.Date(2024, 1, 8, 9, 0, 0, 0, time.UTC)
	entries := []schedule.LogEntry{
		logAt("a@x.com", "monday", base, "v1"),
		logAt("a@x.com", "tuesday", base.Add(time.Hour), "v2"),
		logAt("b@x.com", "monday", base.Add(2*time.Hour), "v3"),
	}

	// No filters: the full listing, newest first.
	all := schedule.LogHistory(entries, "", "", 0)
	assert.Len(t, all, 3)
	assert.Equal(t, "v3", all[0].NewValue)

	// Email only: all of that person's days.
	byEmail := schedule.LogHistory(entries, "a@x.com", "", 0)
	assert.Len(t, byEmail, 2)
	assert.Equal(t, "v2", byEmail[0].NewValue)

	// Day only: everyone on that weekday.
	byDay := schedule.LogHistory(entries, "", "monday", 0)
	assert.Len(t, byDay, 2)
}

func TestLogHistory_NoCap(t *testing.T) {
	base := time.Date(2024, 1, 8, 9, 0, 0, 0, time.UTC)
	entries := []schedule.LogEntry{
		logAt("a@x.com", "monday", base, "v1"),
		logAt("a@x.com", "monday", base.Add(time.Hour), "v2"),
	}
	assert.Len(t, schedule.LogHistory(entries, "a@x.com", "monday", 0), 2)
}

func TestBuildOverlay_SkipsUndatedEntries(t *testing.T) {
	entry := logAt("a@x.com", "monday", time.Now(), "WFH")
	entry.Date = schedule.Date{} // legacy rows may lack the date column

	overlay := schedule.BuildOverlay([]schedule.LogEntry{entry})
	_, ok := overlay.Latest("a@x.com", schedule.FieldRoster, "2024-01-08")
	assert.False(t, ok)
}
