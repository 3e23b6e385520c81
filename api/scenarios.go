/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the stores with realistic
	data for testing and demos. Each scenario seeds allocations, rosters,
	and shifts that demonstrate specific reconciliation behavior.

AVAILABLE SCENARIOS:

	hybrid-team:      Two projects, mixed office/home days, all shifts set
	office-dominance: One person on overlapping project and personal
	                  rosters; an office day on either wins
	new-joiner:       Shift window opens mid-range, earlier days show N/A
	audit-trail:      hybrid-team plus pre-recorded manual overrides

DEMO WEEK:
	All scenarios target 2024-01-08 through 2024-01-12 (Monday to Friday).
	Query the combined view with that range after loading.

HOW SCENARIOS WORK:
 1. Replace all source tables (allocations, rosters, shifts)
 2. Optionally append audit entries

ADDING NEW SCENARIOS:
 1. Add to 'scenarios' slice with ID, name, description
 2. Create a loader function: loadXxxScenario(ctx, h)
 3. Add a case to LoadScenario

NOTE:

	Scenarios replace all source data. Only use in development/demo
	environments.

SEE ALSO:
  - handlers.go: Router wiring and shared helpers
  - store/sqlite: the Seeder implementation
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/warp/roster-engine/schedule"
)

// Seeder replaces full source tables transactionally. The SQLite store
// implements it; the sheet upstream deliberately does not (scenarios
// never touch production sheets).
type Seeder interface {
	ReplaceRosters(ctx context.Context, records []schedule.RosterRecord) error
	ReplaceShifts(ctx context.Context, records []schedule.ShiftRecord) error
	ReplaceAllocations(ctx context.Context, records []schedule.AllocationRecord) error
}

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "hybrid-team",
		Name:        "Hybrid Team",
		Description: "Two projects with mixed office/home days and full shift coverage",
	},
	{
		ID:          "office-dominance",
		Name:        "Office Dominance",
		Description: "Overlapping project and personal rosters; an office day on either wins",
	},
	{
		ID:          "new-joiner",
		Name:        "New Joiner",
		Description: "Shift window opens mid-week; earlier days resolve to N/A",
	},
	{
		ID:          "audit-trail",
		Name:        "Audit Trail",
		Description: "Hybrid team plus pre-recorded manual overrides in the audit log",
	},
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	current := h.currentScenario
	h.mu.Unlock()

	if current == "" {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	for _, s := range scenarios {
		if s.ID == current {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}
	writeJSON(w, http.StatusOK, ScenarioDTO{ID: current, Name: current})
}

// LoadScenario seeds a predefined scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	if h.Seeder == nil {
		writeError(w, http.StatusNotImplemented, "Scenario seeding not configured", nil)
		return
	}

	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	ctx := r.Context()
	var err error
	switch req.ID {
	case "hybrid-team":
		err = h.loadHybridTeamScenario(ctx)
	case "office-dominance":
		err = h.loadOfficeDominanceScenario(ctx)
	case "new-joiner":
		err = h.loadNewJoinerScenario(ctx)
	case "audit-trail":
		err = h.loadAuditTrailScenario(ctx)
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Unknown scenario: %s", req.ID), nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load scenario", err)
		return
	}

	h.mu.Lock()
	h.currentScenario = req.ID
	h.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded", "scenario": req.ID})
}

// ResetData clears all source tables.
func (h *Handler) ResetData(w http.ResponseWriter, r *http.Request) {
	if h.Seeder == nil {
		writeError(w, http.StatusNotImplemented, "Scenario seeding not configured", nil)
		return
	}

	ctx := r.Context()
	if err := h.seed(ctx, nil, nil, nil); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset data", err)
		return
	}

	h.mu.Lock()
	h.currentScenario = ""
	h.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

func (h *Handler) seed(ctx context.Context, allocations []schedule.AllocationRecord,
	rosters []schedule.RosterRecord, shifts []schedule.ShiftRecord) error {
	if err := h.Seeder.ReplaceAllocations(ctx, allocations); err != nil {
		return err
	}
	if err := h.Seeder.ReplaceRosters(ctx, rosters); err != nil {
		return err
	}
	return h.Seeder.ReplaceShifts(ctx, shifts)
}

func demoDate(day int) schedule.Date { return schedule.NewDate(2024, time.January, day) }

func demoRoster(name, leader string, days map[time.Weekday]schedule.RosterValue) schedule.RosterRecord {
	return schedule.RosterRecord{
		SubjectName: name,
		Leader:      leader,
		StartDate:   demoDate(1),
		EndDate:     demoDate(31),
		Days:        days,
	}
}

func demoShift(email string, days map[time.Weekday]schedule.ShiftLabel) schedule.ShiftRecord {
	return schedule.ShiftRecord{
		Email:    email,
		JoinDate: demoDate(1),
		EndDate:  schedule.NewDate(2024, time.December, 31),
		Days:     days,
	}
}

func (h *Handler) loadHybridTeamScenario(ctx context.Context) error {
	return h.seed(ctx,
		[]schedule.AllocationRecord{
			{Email: "alice@example.com", Allocation: "Atlas"},
			{Email: "bob@example.com", Allocation: "Atlas"},
			{Email: "carol@example.com", Allocation: "Beacon"},
		},
		[]schedule.RosterRecord{
			demoRoster("Atlas", "alice@example.com", map[time.Weekday]schedule.RosterValue{
				time.Monday: schedule.WFO, time.Tuesday: schedule.WFH,
				time.Wednesday: schedule.WFO, time.Thursday: schedule.WFH,
				time.Friday: schedule.WFH,
			}),
			demoRoster("Beacon", "carol@example.com", map[time.Weekday]schedule.RosterValue{
				time.Monday: schedule.WFH, time.Tuesday: schedule.WFO,
				time.Wednesday: schedule.WFH, time.Thursday: schedule.WFO,
				time.Friday: schedule.WFH,
			}),
		},
		[]schedule.ShiftRecord{
			demoShift("alice@example.com", map[time.Weekday]schedule.ShiftLabel{
				time.Monday: schedule.ShiftMorning, time.Tuesday: schedule.ShiftMorning,
				time.Wednesday: schedule.ShiftDay, time.Thursday: schedule.ShiftDay,
				time.Friday: schedule.ShiftMorning,
			}),
			demoShift("bob@example.com", map[time.Weekday]schedule.ShiftLabel{
				time.Monday: schedule.ShiftEvening, time.Tuesday: schedule.ShiftEvening,
				time.Wednesday: schedule.ShiftEvening, time.Thursday: schedule.ShiftLate,
				time.Friday: schedule.ShiftLate,
			}),
			demoShift("carol@example.com", map[time.Weekday]schedule.ShiftLabel{
				time.Monday: schedule.ShiftDay, time.Tuesday: schedule.ShiftDay,
				time.Wednesday: schedule.ShiftDay, time.Thursday: schedule.ShiftDay,
				time.Friday: schedule.ShiftDay,
			}),
		},
	)
}

func (h *Handler) loadOfficeDominanceScenario(ctx context.Context) error {
	return h.seed(ctx,
		[]schedule.AllocationRecord{
			{Email: "alice@example.com", Allocation: "Atlas"},
		},
		[]schedule.RosterRecord{
			demoRoster("Atlas", "alice@example.com", map[time.Weekday]schedule.RosterValue{
				time.Monday: schedule.WFH, time.Tuesday: schedule.WFH,
				time.Wednesday: schedule.WFH, time.Thursday: schedule.WFH,
				time.Friday: schedule.WFH,
			}),
			// Personal roster: office on Wednesday overrides the project's
			// home day.
			demoRoster("alice@example.com", "", map[time.Weekday]schedule.RosterValue{
				time.Wednesday: schedule.WFO,
			}),
		},
		[]schedule.ShiftRecord{
			demoShift("alice@example.com", map[time.Weekday]schedule.ShiftLabel{
				time.Monday: schedule.ShiftDay, time.Tuesday: schedule.ShiftDay,
				time.Wednesday: schedule.ShiftDay, time.Thursday: schedule.ShiftDay,
				time.Friday: schedule.ShiftDay,
			}),
		},
	)
}

func (h *Handler) loadNewJoinerScenario(ctx context.Context) error {
	joiner := demoShift("dave@example.com", map[time.Weekday]schedule.ShiftLabel{
		time.Monday: schedule.ShiftMorning, time.Tuesday: schedule.ShiftMorning,
		time.Wednesday: schedule.ShiftMorning, time.Thursday: schedule.ShiftMorning,
		time.Friday: schedule.ShiftMorning,
	})
	joiner.JoinDate = demoDate(10) // Wednesday of the demo week

	return h.seed(ctx,
		[]schedule.AllocationRecord{
			{Email: "dave@example.com", Allocation: "Atlas"},
		},
		[]schedule.RosterRecord{
			demoRoster("Atlas", "alice@example.com", map[time.Weekday]schedule.RosterValue{
				time.Monday: schedule.WFO, time.Tuesday: schedule.WFO,
				time.Wednesday: schedule.WFO, time.Thursday: schedule.WFO,
				time.Friday: schedule.WFO,
			}),
		},
		[]schedule.ShiftRecord{joiner},
	)
}

func (h *Handler) loadAuditTrailScenario(ctx context.Context) error {
	if err := h.loadHybridTeamScenario(ctx); err != nil {
		return err
	}

	// Manual overrides recorded after the week was published.
	overrides := []schedule.LogEntry{
		{
			Email:     "alice@example.com",
			Day:       "monday",
			Date:      demoDate(8),
			Field:     schedule.FieldRoster,
			OldValue:  string(schedule.WFO),
			NewValue:  string(schedule.WFH),
			ChangedBy: "alice@example.com",
			Timestamp: time.Date(2024, 1, 7, 18, 0, 0, 0, time.UTC),
		},
		{
			Email:     "bob@example.com",
			Day:       "friday",
			Date:      demoDate(12),
			Field:     schedule.FieldShift,
			OldValue:  string(schedule.ShiftLate),
			NewValue:  string(schedule.ShiftEvening),
			ChangedBy: "alice@example.com",
			Timestamp: time.Date(2024, 1, 8, 9, 30, 0, 0, time.UTC),
		},
	}
	return h.Logs.Append(ctx, overrides)
}
