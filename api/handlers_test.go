package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/roster-engine/api"
	"github.com/warp/roster-engine/schedule"
	memstore "github.com/warp/roster-engine/schedule/store"
	"github.com/warp/roster-engine/store/sqlite"
)

// =============================================================================
// FIXTURES
// =============================================================================

func weekRange() string { return "start=2024-01-08&end=2024-01-12" }

func fixtureHandler() *api.Handler {
	allocations := memstore.NewMemoryAllocation(
		schedule.AllocationRecord{Email: "Email", Allocation: "Allocation"},
		schedule.AllocationRecord{Email: "a@x.com", Allocation: "ProjA"},
	)
	rosters := memstore.NewMemoryRoster(schedule.RosterRecord{
		SubjectName: "ProjA",
		Leader:      "lead@x.com",
		StartDate:   schedule.NewDate(2024, time.January, 1),
		EndDate:     schedule.NewDate(2024, time.January, 31),
		Days: map[time.Weekday]schedule.RosterValue{
			time.Monday: schedule.WFO, time.Tuesday: schedule.WFH,
			time.Wednesday: schedule.WFO, time.Thursday: schedule.WFH,
			time.Friday: schedule.WFH,
		},
	})
	shifts := memstore.NewMemoryShift(schedule.ShiftRecord{
		Email:    "a@x.com",
		JoinDate: schedule.NewDate(2024, time.January, 1),
		EndDate:  schedule.NewDate(2024, time.December, 31),
		Days: map[time.Weekday]schedule.ShiftLabel{
			time.Monday: schedule.ShiftMorning, time.Tuesday: schedule.ShiftMorning,
			time.Wednesday: schedule.ShiftDay, time.Thursday: schedule.ShiftDay,
			time.Friday: schedule.ShiftMorning,
		},
	})

	return api.NewHandler(schedule.NewEngine(nil), rosters, shifts, allocations, memstore.NewMemoryLog())
}

func doRequest(t *testing.T, router http.Handler, method, path string, body any, actor string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if actor != "" {
		req.Header.Set("X-Actor-Email", actor)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	return out
}

// denyAll rejects every permission check.
type denyAll struct{}

func (denyAll) HasPermission(string, string) bool { return false }

// =============================================================================
// COMBINED VIEW
// =============================================================================

func TestGetCombined(t *testing.T) {
	router := api.NewRouter(fixtureHandler(), nil)

	rec := doRequest(t, router, http.MethodGet, "/api/combined?"+weekRange(), nil, "lead@x.com")
	require.Equal(t, http.StatusOK, rec.Code)

	view := decode[api.CombinedViewDTO](t, rec)
	assert.Equal(t, []string{"2024-01-08", "2024-01-09", "2024-01-10", "2024-01-11", "2024-01-12"}, view.Days)
	require.Len(t, view.Records, 1)
	assert.Equal(t, "a@x.com", view.Records[0].Email)
	assert.Equal(t, "ProjA", view.Records[0].ProjectName)
	assert.Equal(t, "WFO/ MORNING", view.Records[0].Cells["2024-01-08"])
	assert.Equal(t, "WFH/ DAY", view.Records[0].Cells["2024-01-11"])
}

func TestGetCombined_AuthBoundary(t *testing.T) {
	h := fixtureHandler()
	router := api.NewRouter(h, nil)

	rec := doRequest(t, router, http.MethodGet, "/api/combined?"+weekRange(), nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	h.Perms = denyAll{}
	rec = doRequest(t, router, http.MethodGet, "/api/combined?"+weekRange(), nil, "nobody@x.com")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestGetCombined_IncompleteInputs(t *testing.T) {
	h := fixtureHandler()
	h.Shifts = memstore.NewMemoryShift() // empty source
	router := api.NewRouter(h, nil)

	rec := doRequest(t, router, http.MethodGet, "/api/combined?"+weekRange(), nil, "lead@x.com")
	assert.Equal(t, http.StatusConflict, rec.Code)

	errResp := decode[api.ErrorResponse](t, rec)
	assert.Contains(t, errResp.Details, "shifts")
}

func TestGetCombined_BadRange(t *testing.T) {
	router := api.NewRouter(fixtureHandler(), nil)

	rec := doRequest(t, router, http.MethodGet, "/api/combined?start=nope&end=2024-01-12", nil, "lead@x.com")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Weekend-only range has no working days.
	rec = doRequest(t, router, http.MethodGet, "/api/combined?start=2024-01-13&end=2024-01-14", nil, "lead@x.com")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// =============================================================================
// COMMIT
// =============================================================================

func TestCommitCombined(t *testing.T) {
	h := fixtureHandler()
	router := api.NewRouter(h, nil)

	commit := api.CommitRequest{
		Start: "2024-01-08",
		End:   "2024-01-12",
		Edits: []api.EditDTO{
			{Email: "a@x.com", Date: "2024-01-08", Field: "roster", Value: "WFH"},
		},
	}

	// WHEN: committing one roster edit
	rec := doRequest(t, router, http.MethodPost, "/api/combined/commit", commit, "lead@x.com")
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[api.CommitResponse](t, rec)
	assert.Equal(t, 1, resp.Logged)
	assert.False(t, resp.NoOp)

	// THEN: the entry is in the audit log with the actor recorded
	rec = doRequest(t, router, http.MethodGet, "/api/logs?email=a@x.com", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	entries := decode[[]api.LogEntryDTO](t, rec)
	require.Len(t, entries, 1)
	assert.Equal(t, "roster", entries[0].Field)
	assert.Equal(t, "WFO", entries[0].OldValue)
	assert.Equal(t, "WFH", entries[0].NewValue)
	assert.Equal(t, "lead@x.com", entries[0].ChangedBy)

	// AND: the unfiltered listing sees it too
	rec = doRequest(t, router, http.MethodGet, "/api/logs", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]api.LogEntryDTO](t, rec), 1)

	// AND: the combined view now reflects the override
	rec = doRequest(t, router, http.MethodGet, "/api/combined?"+weekRange(), nil, "lead@x.com")
	view := decode[api.CombinedViewDTO](t, rec)
	assert.Equal(t, "WFH/ MORNING", view.Records[0].Cells["2024-01-08"])

	// AND: repeating the identical edit is a no-op, nothing new is logged
	rec = doRequest(t, router, http.MethodPost, "/api/combined/commit", commit, "lead@x.com")
	require.Equal(t, http.StatusOK, rec.Code)
	resp = decode[api.CommitResponse](t, rec)
	assert.True(t, resp.NoOp)
	assert.Equal(t, 0, resp.Logged)
	assert.Equal(t, "No changes to log", resp.Message)
}

func TestCommitCombined_UnknownCell(t *testing.T) {
	router := api.NewRouter(fixtureHandler(), nil)

	commit := api.CommitRequest{
		Start: "2024-01-08",
		End:   "2024-01-12",
		Edits: []api.EditDTO{
			{Email: "ghost@x.com", Date: "2024-01-08", Field: "roster", Value: "WFH"},
		},
	}
	rec := doRequest(t, router, http.MethodPost, "/api/combined/commit", commit, "lead@x.com")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCommitCombined_RejectsBadField(t *testing.T) {
	router := api.NewRouter(fixtureHandler(), nil)

	commit := api.CommitRequest{
		Start: "2024-01-08",
		End:   "2024-01-12",
		Edits: []api.EditDTO{
			{Email: "a@x.com", Date: "2024-01-08", Field: "mood", Value: "great"},
		},
	}
	rec := doRequest(t, router, http.MethodPost, "/api/combined/commit", commit, "lead@x.com")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// =============================================================================
// SUMMARY
// =============================================================================

func TestGetSummary(t *testing.T) {
	router := api.NewRouter(fixtureHandler(), nil)

	rec := doRequest(t, router, http.MethodGet, "/api/combined/summary?"+weekRange(), nil, "lead@x.com")
	require.Equal(t, http.StatusOK, rec.Code)

	summary := decode[api.SummaryDTO](t, rec)
	assert.Equal(t, 2, summary.OfficeDays)
	assert.Equal(t, 3, summary.HomeDays)
	assert.Equal(t, "0.4", summary.OfficeRatio)
	require.Len(t, summary.People, 1)
	assert.Equal(t, 3, summary.People[0].ShiftMix["MORNING"])
	assert.Equal(t, 2, summary.People[0].ShiftMix["DAY"])
}

// =============================================================================
// SOURCE CRUD
// =============================================================================

func TestRosterCRUDOverHTTP(t *testing.T) {
	router := api.NewRouter(fixtureHandler(), nil)

	create := api.CreateRosterRequest{
		SubjectName: "ProjB",
		Leader:      "lead@x.com",
		StartDate:   "2024-02-01",
		EndDate:     "2024-02-29",
		Monday:      "WFO",
	}
	rec := doRequest(t, router, http.MethodPost, "/api/roster/", create, "lead@x.com")
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(t, router, http.MethodGet, "/api/roster/", nil, "lead@x.com")
	require.Equal(t, http.StatusOK, rec.Code)
	rosters := decode[[]api.RosterDTO](t, rec)
	require.Len(t, rosters, 2)
	added := rosters[1]
	assert.Equal(t, "ProjB", added.SubjectName)
	assert.Equal(t, "WFO", added.Monday)

	update := api.UpdateFieldRequest{Field: "monday", Value: "WFH"}
	rec = doRequest(t, router, http.MethodPut, "/api/roster/"+added.ID, update, "lead@x.com")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, router, http.MethodDelete, "/api/roster/"+added.ID, nil, "lead@x.com")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, router, http.MethodDelete, "/api/roster/"+added.ID, nil, "lead@x.com")
	assert.Equal(t, http.StatusNotFound, rec.Code, "second delete finds nothing")
}

func TestShiftUpdate_RejectsMalformedDate(t *testing.T) {
	h := fixtureHandler()
	router := api.NewRouter(h, nil)

	rec := doRequest(t, router, http.MethodGet, "/api/shifts/", nil, "lead@x.com")
	require.Equal(t, http.StatusOK, rec.Code)
	shifts := decode[[]api.ShiftDTO](t, rec)
	require.Len(t, shifts, 1)

	update := api.UpdateFieldRequest{Field: "joinDate", Value: "not-a-date"}
	rec = doRequest(t, router, http.MethodPut, "/api/shifts/"+shifts[0].ID, update, "lead@x.com")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListAllocations_StripsSentinel(t *testing.T) {
	router := api.NewRouter(fixtureHandler(), nil)

	rec := doRequest(t, router, http.MethodGet, "/api/allocations/", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	allocations := decode[[]api.AllocationDTO](t, rec)
	require.Len(t, allocations, 1)
	assert.Equal(t, "a@x.com", allocations[0].Email)

	rec = doRequest(t, router, http.MethodGet, "/api/allocations/names", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	names := decode[[]string](t, rec)
	assert.Equal(t, []string{"ProjA"}, names)
}

// =============================================================================
// ROLES
// =============================================================================

type stubRoles struct{}

func (stubRoles) GetRole(_ context.Context, email string) (string, []string, error) {
	if email != "lead@x.com" {
		return "", nil, schedule.ErrRecordNotFound
	}
	return "manager", []string{schedule.PermManageRoster}, nil
}

func TestGetRole(t *testing.T) {
	h := fixtureHandler()
	h.Roles = stubRoles{}
	router := api.NewRouter(h, nil)

	rec := doRequest(t, router, http.MethodGet, "/api/roles/lead@x.com", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	role := decode[api.RoleDTO](t, rec)
	assert.Equal(t, "manager", role.Role)
	assert.Equal(t, []string{schedule.PermManageRoster}, role.Permissions)

	rec = doRequest(t, router, http.MethodGet, "/api/roles/stranger@x.com", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// =============================================================================
// SCENARIOS
// =============================================================================

func TestScenarios_LoadAndReset(t *testing.T) {
	store, err := sqlite.New(":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	h := api.NewHandler(schedule.NewEngine(nil),
		store.Rosters(), store.Shifts(), store.AllocationSource(), store)
	h.Seeder = store
	router := api.NewRouter(h, nil)

	rec := doRequest(t, router, http.MethodPost, "/api/scenarios/load",
		api.LoadScenarioRequest{ID: "office-dominance"}, "lead@x.com")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, router, http.MethodGet, "/api/scenarios/current", nil, "")
	current := decode[api.ScenarioDTO](t, rec)
	assert.Equal(t, "office-dominance", current.ID)

	// The personal office day must win over the project's home day.
	rec = doRequest(t, router, http.MethodGet, "/api/combined?"+weekRange(), nil, "lead@x.com")
	require.Equal(t, http.StatusOK, rec.Code)
	view := decode[api.CombinedViewDTO](t, rec)
	require.Len(t, view.Records, 1)
	assert.Equal(t, "WFO/ DAY", view.Records[0].Cells["2024-01-10"])
	assert.Equal(t, "WFH/ DAY", view.Records[0].Cells["2024-01-09"])

	rec = doRequest(t, router, http.MethodPost, "/api/scenarios/reset", nil, "lead@x.com")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, router, http.MethodGet, "/api/combined?"+weekRange(), nil, "lead@x.com")
	assert.Equal(t, http.StatusConflict, rec.Code, "reset leaves the sources empty")
}

func TestScenarios_UnknownID(t *testing.T) {
	store, err := sqlite.New(":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	h := api.NewHandler(schedule.NewEngine(nil),
		store.Rosters(), store.Shifts(), store.AllocationSource(), store)
	h.Seeder = store
	router := api.NewRouter(h, nil)

	rec := doRequest(t, router, http.MethodPost, "/api/scenarios/load",
		api.LoadScenarioRequest{ID: "nope"}, "lead@x.com")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
