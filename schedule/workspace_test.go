package schedule_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/roster-engine/schedule"
	"github.com/warp/roster-engine/schedule/store"
)

// brokenLog fails every append, for baseline-advance tests.
type brokenLog struct{}

func (brokenLog) Read(context.Context) ([]schedule.LogEntry, error)  { return nil, nil }
func (brokenLog) Append(context.Context, []schedule.LogEntry) error { return errors.New("upstream down") }

func loadedWorkspace() *schedule.Workspace {
	w := schedule.NewWorkspace()
	w.Load([]schedule.CombinedRecord{
		combined("a@x.com", map[string]string{"2024-01-08": "WFO/ DAY"}),
	})
	return w
}

func TestWorkspace_EditDoesNotTouchBaseline(t *testing.T) {
	w := loadedWorkspace()

	require.NoError(t, w.Edit("a@x.com", "2024-01-08", schedule.FieldRoster, "WFH"))

	assert.Equal(t, "WFH/ DAY", w.Current()[0].Cells["2024-01-08"])
	assert.Equal(t, "WFO/ DAY", w.Baseline()[0].Cells["2024-01-08"],
		"baseline must only advance on successful commit")
}

func TestWorkspace_EditUnknownCell(t *testing.T) {
	w := loadedWorkspace()

	err := w.Edit("nobody@x.com", "2024-01-08", schedule.FieldRoster, "WFH")
	assert.ErrorIs(t, err, schedule.ErrRecordNotFound)

	err = w.Edit("a@x.com", "2024-02-01", schedule.FieldRoster, "WFH")
	assert.ErrorIs(t, err, schedule.ErrRecordNotFound)
}

func TestWorkspace_CommitPersistsAndAdvancesBaseline(t *testing.T) {
	w := loadedWorkspace()
	logStore := store.NewMemoryLog()
	require.NoError(t, w.Edit("a@x.com", "2024-01-08", schedule.FieldRoster, "WFH"))

	result, err := w.Commit(context.Background(), logStore, "lead@x.com")
	require.NoError(t, err)
	assert.Equal(t, 1, result.Logged)
	assert.False(t, result.NoOp)

	persisted, err := logStore.Read(context.Background())
	require.NoError(t, err)
	require.Len(t, persisted, 1)
	assert.Equal(t, "WFO", persisted[0].OldValue)
	assert.Equal(t, "WFH", persisted[0].NewValue)

	// Second commit against the advanced baseline is a no-op.
	result, err = w.Commit(context.Background(), logStore, "lead@x.com")
	require.NoError(t, err)
	assert.True(t, result.NoOp)
	assert.Zero(t, result.Logged)

	persisted, _ = logStore.Read(context.Background())
	assert.Len(t, persisted, 1, "no-op commit must not write")
}

func TestWorkspace_NoOpCommitSkipsStore(t *testing.T) {
	w := loadedWorkspace()

	// brokenLog fails every call; a true no-op must never reach it.
	result, err := w.Commit(context.Background(), brokenLog{}, "lead@x.com")
	require.NoError(t, err)
	assert.True(t, result.NoOp)
}

func TestWorkspace_FailedCommitKeepsBaseline(t *testing.T) {
	w := loadedWorkspace()
	require.NoError(t, w.Edit("a@x.com", "2024-01-08", schedule.FieldRoster, "WFH"))

	_, err := w.Commit(context.Background(), brokenLog{}, "lead@x.com")
	require.ErrorIs(t, err, schedule.ErrAppendFailed)

	// Retry against a working store re-detects the same diff.
	logStore := store.NewMemoryLog()
	result, err := w.Commit(context.Background(), logStore, "lead@x.com")
	require.NoError(t, err)
	assert.Equal(t, 1, result.Logged)
}

func TestWorkspace_LoadIsLastWriteWins(t *testing.T) {
	w := loadedWorkspace()
	require.NoError(t, w.Edit("a@x.com", "2024-01-08", schedule.FieldRoster, "WFH"))

	// A superseding reconciliation result replaces pending edits wholesale.
	w.Load([]schedule.CombinedRecord{
		combined("a@x.com", map[string]string{"2024-01-08": "WFO/ MORNING"}),
	})

	assert.Equal(t, "WFO/ MORNING", w.Current()[0].Cells["2024-01-08"])

	result, err := w.Commit(context.Background(), store.NewMemoryLog(), "lead@x.com")
	require.NoError(t, err)
	assert.True(t, result.NoOp)
}

func TestWorkspace_SnapshotsNeverShareCellMaps(t *testing.T) {
	w := loadedWorkspace()

	// Mutating a handed-out snapshot must not affect workspace state.
	snapshot := w.Current()
	snapshot[0].Cells["2024-01-08"] = "tampered"

	assert.Equal(t, "WFO/ DAY", w.Current()[0].Cells["2024-01-08"])
}
