/*
sync.go - Background mirror of the sheet upstream

PURPOSE:
  Periodically copies the upstream sheet rows (rosters, shifts,
  allocations) into the local SQLite mirror so the dashboard reconciles
  against local data and survives upstream outages with stale-but-usable
  rows.

DESIGN:
  - Runs a background goroutine with a configurable interval
  - Each pass reads all three sources and replaces the mirror tables
    transactionally
  - Last write wins; a pass that fails mid-way leaves the previous mirror
    intact (the replace is all-or-nothing per table)
  - The audit log is never mirrored here: commits write it directly

USAGE:
  syncer := NewSyncer(upstreamRosters, upstreamShifts, upstreamAllocations, store, logger)
  syncer.Start()
  // ... later
  syncer.Stop()

SEE ALSO:
  - sheet/: the upstream client this reads from
  - store/sqlite: ReplaceRosters / ReplaceShifts / ReplaceAllocations
*/
package api

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/warp/roster-engine/schedule"
)

// defaultSyncInterval applies when the config leaves the interval unset.
const defaultSyncInterval = 5 * time.Minute

// Syncer mirrors upstream sheet rows into a local Seeder.
type Syncer struct {
	Rosters     schedule.RosterSource
	Shifts      schedule.ShiftSource
	Allocations schedule.AllocationSource
	Mirror      Seeder
	Interval    time.Duration
	Logger      *zap.Logger

	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewSyncer creates a syncer with the default interval.
func NewSyncer(rosters schedule.RosterSource, shifts schedule.ShiftSource,
	allocations schedule.AllocationSource, mirror Seeder, logger *zap.Logger) *Syncer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Syncer{
		Rosters:     rosters,
		Shifts:      shifts,
		Allocations: allocations,
		Mirror:      mirror,
		Interval:    defaultSyncInterval,
		Logger:      logger,
		stop:        make(chan struct{}),
	}
}

// Start begins the background loop. The first pass runs immediately.
func (s *Syncer) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ticker = time.NewTicker(s.Interval)
	s.wg.Add(1)
	go s.run()

	s.Logger.Info("sync started", zap.Duration("interval", s.Interval))
}

// Stop stops the loop and waits for an in-flight pass to finish.
func (s *Syncer) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ticker != nil {
		s.ticker.Stop()
		close(s.stop)
		s.wg.Wait()
		s.Logger.Info("sync stopped")
	}
}

func (s *Syncer) run() {
	defer s.wg.Done()

	s.RunNow()

	for {
		select {
		case <-s.ticker.C:
			s.RunNow()
		case <-s.stop:
			return
		}
	}
}

// RunNow executes one mirror pass.
func (s *Syncer) RunNow() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	start := time.Now()
	rosters, shifts, allocations := 0, 0, 0

	if records, err := s.Rosters.Read(ctx); err != nil {
		s.Logger.Warn("sync: failed to read upstream rosters", zap.Error(err))
	} else if err := s.Mirror.ReplaceRosters(ctx, records); err != nil {
		s.Logger.Warn("sync: failed to mirror rosters", zap.Error(err))
	} else {
		rosters = len(records)
	}

	if records, err := s.Shifts.Read(ctx); err != nil {
		s.Logger.Warn("sync: failed to read upstream shifts", zap.Error(err))
	} else if err := s.Mirror.ReplaceShifts(ctx, records); err != nil {
		s.Logger.Warn("sync: failed to mirror shifts", zap.Error(err))
	} else {
		shifts = len(records)
	}

	if records, err := s.Allocations.Read(ctx); err != nil {
		s.Logger.Warn("sync: failed to read upstream allocations", zap.Error(err))
	} else if err := s.Mirror.ReplaceAllocations(ctx, records); err != nil {
		s.Logger.Warn("sync: failed to mirror allocations", zap.Error(err))
	} else {
		allocations = len(records)
	}

	s.Logger.Info("sync pass complete",
		zap.Int("rosters", rosters),
		zap.Int("shifts", shifts),
		zap.Int("allocations", allocations),
		zap.Duration("duration", time.Since(start)),
	)
}
