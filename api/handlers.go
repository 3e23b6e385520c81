/*
handlers.go - HTTP API handlers for the roster dashboard

PURPOSE:
  Exposes the reconciliation engine and its sources via REST API. Handles
  HTTP request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Combined view:
    GET  /api/combined?start=&end=    Reconciled dashboard snapshot
    POST /api/combined/commit         Apply edits, diff, persist audit entries
    GET  /api/combined/summary        Attendance and shift-mix stats

  Sources (permission-gated):
    GET|POST        /api/roster       List / create roster rows
    PUT|DELETE      /api/roster/{id}  Update one field / delete a row
    GET|POST        /api/shifts       Same for shifts
    PUT|DELETE      /api/shifts/{id}

  Read-only:
    GET /api/allocations              Allocation rows (sentinel stripped)
    GET /api/allocations/names        Distinct project names
    GET /api/logs?email=&day=&limit=  Audit history, most recent first
    GET /api/roles/{email}            Role and permission names

  Scenarios:
    GET  /api/scenarios               List demo scenarios
    GET  /api/scenarios/current       Currently loaded scenario
    POST /api/scenarios/load          Seed a demo scenario
    POST /api/scenarios/reset         Clear all source data

IDENTITY:
  The caller is identified by the X-Actor-Email header. Token decoding is
  the deployment's concern (a proxy or the sheet upstream); handlers only
  consume the resolved email.

ERROR HANDLING:
  Domain sentinels map to HTTP status:
  - ErrEmptyRange, ErrMalformedRow: 400
  - ErrRecordNotFound: 404
  - ErrIncompleteInputs: 409 (a source is empty; not the caller's fault)
  - missing/denied actor: 401 / 403
  - everything else: 500

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario seeds
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/warp/roster-engine/schedule"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// RoleReader resolves a person's role and permission names.
type RoleReader interface {
	GetRole(ctx context.Context, email string) (role string, permissions []string, err error)
}

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Engine      *schedule.Engine
	Rosters     schedule.RosterSource
	Shifts      schedule.ShiftSource
	Allocations schedule.AllocationSource
	Logs        schedule.LogStore
	Perms       schedule.PermissionOracle
	Roles       RoleReader
	Seeder      Seeder
	Logger      *zap.Logger

	mu              sync.Mutex
	currentScenario string
}

// NewHandler creates a handler. Perms defaults to AllowAll and Logger to
// a no-op logger when nil.
func NewHandler(engine *schedule.Engine, rosters schedule.RosterSource, shifts schedule.ShiftSource,
	allocations schedule.AllocationSource, logs schedule.LogStore) *Handler {
	return &Handler{
		Engine:      engine,
		Rosters:     rosters,
		Shifts:      shifts,
		Allocations: allocations,
		Logs:        logs,
		Perms:       schedule.AllowAll{},
		Logger:      zap.NewNop(),
	}
}

// actorEmail extracts the caller identity.
func actorEmail(r *http.Request) string {
	return r.Header.Get("X-Actor-Email")
}

// requirePermission gates a route subtree on one permission name.
func (h *Handler) requirePermission(name string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor := actorEmail(r)
			if actor == "" {
				writeError(w, http.StatusUnauthorized, "Missing X-Actor-Email header", nil)
				return
			}
			if !h.Perms.HasPermission(actor, name) {
				h.Logger.Info("permission denied",
					zap.String("actor", actor), zap.String("permission", name))
				writeError(w, http.StatusForbidden, "Permission denied", schedule.ErrPermissionDenied)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// =============================================================================
// COMBINED VIEW HANDLERS
// =============================================================================

// reconcileRange reads all sources and runs the engine over [start, end].
func (h *Handler) reconcileRange(ctx context.Context, start, end schedule.Date) ([]schedule.CombinedRecord, error) {
	allocations, err := h.Allocations.Read(ctx)
	if err != nil {
		return nil, err
	}
	rosters, err := h.Rosters.Read(ctx)
	if err != nil {
		return nil, err
	}
	shifts, err := h.Shifts.Read(ctx)
	if err != nil {
		return nil, err
	}
	logs, err := h.Logs.Read(ctx)
	if err != nil {
		return nil, err
	}

	return h.Engine.Reconcile(ctx, schedule.Inputs{
		Allocations: allocations,
		Rosters:     rosters,
		Shifts:      shifts,
		Logs:        logs,
		Start:       start,
		End:         end,
	})
}

// parseRange reads start/end query parameters, defaulting to the current
// working week (Monday through Friday).
func parseRange(r *http.Request) (schedule.Date, schedule.Date, error) {
	startParam := r.URL.Query().Get("start")
	endParam := r.URL.Query().Get("end")

	if startParam == "" && endParam == "" {
		today := schedule.DateOf(time.Now())
		offset := (int(today.Weekday()) + 6) % 7 // days since Monday
		monday := today.AddDays(-offset)
		return monday, monday.AddDays(4), nil
	}

	start, err := schedule.ParseDate(startParam)
	if err != nil {
		return schedule.Date{}, schedule.Date{}, errors.New("invalid start date (use YYYY-MM-DD)")
	}
	end, err := schedule.ParseDate(endParam)
	if err != nil {
		return schedule.Date{}, schedule.Date{}, errors.New("invalid end date (use YYYY-MM-DD)")
	}
	return start, end, nil
}

// GetCombined returns the reconciled dashboard snapshot.
func (h *Handler) GetCombined(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	records, err := h.reconcileRange(r.Context(), start, end)
	if err != nil {
		h.writeDomainError(w, "Failed to reconcile", err)
		return
	}

	dtos := make([]CombinedRecordDTO, len(records))
	for i, rec := range records {
		dtos[i] = toCombinedRecordDTO(rec)
	}
	writeJSON(w, http.StatusOK, CombinedViewDTO{
		Start:   start.String(),
		End:     end.String(),
		Days:    schedule.WorkingDays(start, end),
		Records: dtos,
	})
}

// CommitCombined applies the submitted edits against a freshly reconciled
// baseline and appends the resulting audit entries atomically.
func (h *Handler) CommitCombined(w http.ResponseWriter, r *http.Request) {
	actor := actorEmail(r)
	if actor == "" {
		writeError(w, http.StatusUnauthorized, "Missing X-Actor-Email header", nil)
		return
	}

	var req CommitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	start, err := schedule.ParseDate(req.Start)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid start date (use YYYY-MM-DD)", err)
		return
	}
	end, err := schedule.ParseDate(req.End)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid end date (use YYYY-MM-DD)", err)
		return
	}

	baseline, err := h.reconcileRange(r.Context(), start, end)
	if err != nil {
		h.writeDomainError(w, "Failed to reconcile", err)
		return
	}

	ws := schedule.NewWorkspace()
	ws.Load(baseline)
	for _, edit := range req.Edits {
		field := schedule.Field(edit.Field)
		if field != schedule.FieldRoster && field != schedule.FieldShift {
			writeError(w, http.StatusBadRequest, "Field must be roster or shift", nil)
			return
		}
		if err := ws.Edit(edit.Email, edit.Date, field, edit.Value); err != nil {
			h.writeDomainError(w, "Failed to apply edit", err)
			return
		}
	}

	result, err := ws.Commit(r.Context(), h.Logs, actor)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to persist audit entries", err)
		return
	}

	resp := CommitResponse{Logged: result.Logged, NoOp: result.NoOp, Message: "Changes logged"}
	if result.NoOp {
		resp.Message = "No changes to log"
	}
	h.Logger.Info("commit",
		zap.String("actor", actor), zap.Int("logged", result.Logged), zap.Bool("noop", result.NoOp))
	writeJSON(w, http.StatusOK, resp)
}

// GetSummary returns attendance and shift-mix stats for the range.
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	records, err := h.reconcileRange(r.Context(), start, end)
	if err != nil {
		h.writeDomainError(w, "Failed to reconcile", err)
		return
	}

	summary := schedule.Summarize(records)
	dto := SummaryDTO{
		Start:       start.String(),
		End:         end.String(),
		OfficeRatio: summary.OfficeRatio.String(),
		People:      make([]PersonSummaryDTO, len(summary.People)),
	}
	for i, ps := range summary.People {
		mix := make(map[string]int, len(ps.ShiftCounts))
		for label, n := range ps.ShiftCounts {
			mix[string(label)] = n
		}
		dto.People[i] = PersonSummaryDTO{
			Email:       ps.Email,
			OfficeDays:  ps.OfficeDays,
			HomeDays:    ps.HomeDays,
			OfficeRatio: ps.OfficeRatio.String(),
			ShiftMix:    mix,
		}
		dto.OfficeDays += ps.OfficeDays
		dto.HomeDays += ps.HomeDays
	}
	writeJSON(w, http.StatusOK, dto)
}

// =============================================================================
// ROSTER HANDLERS
// =============================================================================

// ListRosters returns all roster rows.
func (h *Handler) ListRosters(w http.ResponseWriter, r *http.Request) {
	records, err := h.Rosters.Read(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list rosters", err)
		return
	}
	dtos := make([]RosterDTO, len(records))
	for i, rec := range records {
		dtos[i] = toRosterDTO(rec)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateRoster adds a roster row.
func (h *Handler) CreateRoster(w http.ResponseWriter, r *http.Request) {
	var req CreateRosterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.SubjectName == "" {
		writeError(w, http.StatusBadRequest, "subject_name is required", nil)
		return
	}

	record := schedule.RosterRecord{
		SubjectName: req.SubjectName,
		Leader:      req.Leader,
		Days:        make(map[time.Weekday]schedule.RosterValue),
	}
	record.StartDate, _ = schedule.ParseDate(req.StartDate)
	record.EndDate, _ = schedule.ParseDate(req.EndDate)
	for wd, value := range map[time.Weekday]string{
		time.Monday:    req.Monday,
		time.Tuesday:   req.Tuesday,
		time.Wednesday: req.Wednesday,
		time.Thursday:  req.Thursday,
		time.Friday:    req.Friday,
	} {
		if value != "" {
			record.Days[wd] = schedule.RosterValue(value)
		}
	}

	if err := h.Rosters.Create(r.Context(), record); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create roster", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": "created"})
}

// UpdateRoster updates a single field of a roster row.
func (h *Handler) UpdateRoster(w http.ResponseWriter, r *http.Request) {
	h.updateField(w, r, h.Rosters.Update)
}

// DeleteRoster removes a roster row.
func (h *Handler) DeleteRoster(w http.ResponseWriter, r *http.Request) {
	if err := h.Rosters.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeDomainError(w, "Failed to delete roster", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// =============================================================================
// SHIFT HANDLERS
// =============================================================================

// ListShifts returns all shift rows.
func (h *Handler) ListShifts(w http.ResponseWriter, r *http.Request) {
	records, err := h.Shifts.Read(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list shifts", err)
		return
	}
	dtos := make([]ShiftDTO, len(records))
	for i, rec := range records {
		dtos[i] = toShiftDTO(rec)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateShift adds a shift row.
func (h *Handler) CreateShift(w http.ResponseWriter, r *http.Request) {
	var req CreateShiftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Email == "" {
		writeError(w, http.StatusBadRequest, "email is required", nil)
		return
	}

	record := schedule.ShiftRecord{
		Email: req.Email,
		Days:  make(map[time.Weekday]schedule.ShiftLabel),
	}
	record.JoinDate, _ = schedule.ParseDate(req.JoinDate)
	record.EndDate, _ = schedule.ParseDate(req.EndDate)
	for wd, value := range map[time.Weekday]string{
		time.Monday:    req.Monday,
		time.Tuesday:   req.Tuesday,
		time.Wednesday: req.Wednesday,
		time.Thursday:  req.Thursday,
		time.Friday:    req.Friday,
	} {
		if value != "" {
			record.Days[wd] = schedule.ShiftLabel(value)
		}
	}

	if err := h.Shifts.Create(r.Context(), record); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create shift", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": "created"})
}

// UpdateShift updates a single field of a shift row.
func (h *Handler) UpdateShift(w http.ResponseWriter, r *http.Request) {
	h.updateField(w, r, h.Shifts.Update)
}

// DeleteShift removes a shift row.
func (h *Handler) DeleteShift(w http.ResponseWriter, r *http.Request) {
	if err := h.Shifts.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeDomainError(w, "Failed to delete shift", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// updateField is the shared PUT body for roster and shift rows.
func (h *Handler) updateField(w http.ResponseWriter, r *http.Request,
	update func(ctx context.Context, id, field, value string) error) {
	var req UpdateFieldRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Field == "" {
		writeError(w, http.StatusBadRequest, "field is required", nil)
		return
	}
	if err := update(r.Context(), chi.URLParam(r, "id"), req.Field, req.Value); err != nil {
		h.writeDomainError(w, "Failed to update record", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// =============================================================================
// ALLOCATION HANDLERS
// =============================================================================

// ListAllocations returns allocation rows without the header sentinel.
func (h *Handler) ListAllocations(w http.ResponseWriter, r *http.Request) {
	records, err := h.Allocations.Read(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list allocations", err)
		return
	}
	if len(records) > 0 {
		records = records[1:] // header sentinel
	}
	dtos := make([]AllocationDTO, len(records))
	for i, rec := range records {
		dtos[i] = AllocationDTO{
			ID:         rec.ID,
			Email:      rec.Email,
			Allocation: rec.Allocation,
			StartDate:  rec.StartDate.String(),
			EndDate:    rec.EndDate.String(),
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// ListAllocationNames returns the distinct project names.
func (h *Handler) ListAllocationNames(w http.ResponseWriter, r *http.Request) {
	names, err := h.Allocations.Allocations(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list allocation names", err)
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, names)
}

// =============================================================================
// AUDIT LOG HANDLERS
// =============================================================================

// defaultLogLimit caps unfiltered audit listings.
const defaultLogLimit = 50

// ListLogs returns audit history, most recent first, optionally filtered
// to one person/day pair (the cell tooltip feed).
func (h *Handler) ListLogs(w http.ResponseWriter, r *http.Request) {
	entries, err := h.Logs.Read(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to read audit log", err)
		return
	}

	limit := defaultLogLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer", nil)
			return
		}
		limit = n
	}

	email := r.URL.Query().Get("email")
	day := r.URL.Query().Get("day")
	entries = schedule.LogHistory(entries, email, day, limit)

	dtos := make([]LogEntryDTO, len(entries))
	for i, e := range entries {
		dtos[i] = toLogEntryDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// ROLE HANDLERS
// =============================================================================

// GetRole returns a person's role and permissions.
func (h *Handler) GetRole(w http.ResponseWriter, r *http.Request) {
	if h.Roles == nil {
		writeError(w, http.StatusNotImplemented, "Role lookups not configured", nil)
		return
	}

	email := chi.URLParam(r, "email")
	role, permissions, err := h.Roles.GetRole(r.Context(), email)
	if err != nil {
		h.writeDomainError(w, "Failed to look up role", err)
		return
	}
	if permissions == nil {
		permissions = []string{}
	}
	writeJSON(w, http.StatusOK, RoleDTO{Email: email, Role: role, Permissions: permissions})
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps domain sentinels to HTTP status codes.
func (h *Handler) writeDomainError(w http.ResponseWriter, message string, err error) {
	switch {
	case errors.Is(err, schedule.ErrRecordNotFound):
		writeError(w, http.StatusNotFound, message, err)
	case errors.Is(err, schedule.ErrIncompleteInputs):
		writeError(w, http.StatusConflict, message, err)
	case schedule.IsClientError(err):
		writeError(w, http.StatusBadRequest, message, err)
	default:
		h.Logger.Error(message, zap.Error(err))
		writeError(w, http.StatusInternalServerError, message, err)
	}
}
