package api_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/roster-engine/api"
	"github.com/warp/roster-engine/schedule"
	"github.com/warp/roster-engine/store/sqlite"
)

// failingRosters simulates an upstream outage.
type failingRosters struct{}

func (failingRosters) Read(context.Context) ([]schedule.RosterRecord, error) {
	return nil, errors.New("upstream unreachable")
}
func (failingRosters) Create(context.Context, schedule.RosterRecord) error { return nil }
func (failingRosters) Update(context.Context, string, string, string) error {
	return nil
}
func (failingRosters) Delete(context.Context, string) error { return nil }

func TestSyncer_MirrorsUpstreamIntoStore(t *testing.T) {
	store, err := sqlite.New(":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	upstream := fixtureHandler() // reuse the seeded memory sources
	syncer := api.NewSyncer(upstream.Rosters, upstream.Shifts, upstream.Allocations, store, nil)

	syncer.RunNow()

	ctx := context.Background()
	rosters, err := store.Rosters().Read(ctx)
	require.NoError(t, err)
	require.Len(t, rosters, 1)
	assert.Equal(t, "ProjA", rosters[0].SubjectName)
	assert.Equal(t, schedule.WFO, rosters[0].Days[time.Monday])

	shifts, err := store.Shifts().Read(ctx)
	require.NoError(t, err)
	require.Len(t, shifts, 1)
	assert.Equal(t, "a@x.com", shifts[0].Email)

	allocations, err := store.AllocationSource().Read(ctx)
	require.NoError(t, err)
	require.Len(t, allocations, 2, "sentinel plus one mirrored row")
	assert.Equal(t, "a@x.com", allocations[1].Email)
}

func TestSyncer_FailedReadLeavesMirrorIntact(t *testing.T) {
	store, err := sqlite.New(":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	upstream := fixtureHandler()
	syncer := api.NewSyncer(upstream.Rosters, upstream.Shifts, upstream.Allocations, store, nil)
	syncer.RunNow()

	// GIVEN: the roster upstream starts failing
	syncer.Rosters = failingRosters{}
	syncer.RunNow()

	rosters, err := store.Rosters().Read(context.Background())
	require.NoError(t, err)
	assert.Len(t, rosters, 1, "previous mirror survives the outage")
}
