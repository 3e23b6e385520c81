package schedule_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/roster-engine/schedule"
)

func TestSummarize_PerPersonCounts(t *testing.T) {
	records := []schedule.CombinedRecord{
		combined("a@x.com", map[string]string{
			"2024-01-08": "WFO/ DAY",
			"2024-01-09": "WFO/ DAY",
			"2024-01-10": "WFH/ LATE",
			"2024-01-11": "N/A/ N/A",
		}),
	}

	summary := schedule.Summarize(records)
	require.Len(t, summary.People, 1)

	p := summary.People[0]
	assert.Equal(t, 4, p.WorkingDays)
	assert.Equal(t, 2, p.OfficeDays)
	assert.Equal(t, 1, p.HomeDays)
	assert.Equal(t, 2, p.ShiftCounts[schedule.ShiftDay])
	assert.Equal(t, 1, p.ShiftCounts[schedule.ShiftLate])
	assert.Equal(t, 1, p.ShiftCounts[schedule.ShiftNA])

	// 2 office of 3 concrete days; N/A days don't dilute the ratio.
	assert.True(t, p.OfficeRatio.Equal(decimal.RequireFromString("0.6667")),
		"got %s", p.OfficeRatio)
}

func TestSummarize_AggregateRatio(t *testing.T) {
	records := []schedule.CombinedRecord{
		combined("a@x.com", map[string]string{"2024-01-08": "WFO/ DAY"}),
		combined("b@x.com", map[string]string{"2024-01-08": "WFH/ DAY"}),
	}

	summary := schedule.Summarize(records)
	assert.True(t, summary.OfficeRatio.Equal(decimal.RequireFromString("0.5")),
		"got %s", summary.OfficeRatio)
}

func TestSummarize_EmptySnapshot(t *testing.T) {
	summary := schedule.Summarize(nil)
	assert.Empty(t, summary.People)
	assert.True(t, summary.OfficeRatio.IsZero())
}
