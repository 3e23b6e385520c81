/*
Package sqlite provides the SQLite-backed implementation of the schedule
storage contracts.

PURPOSE:
  Implements the audit log sink plus the roster, shift, and allocation
  sources for standalone deployments (no spreadsheet upstream) and as the
  local mirror the background sync writes into.

INTERFACES IMPLEMENTED:
  schedule.LogStore:         append-only audit trail
  schedule.RosterSource:     roster CRUD
  schedule.ShiftSource:      shift CRUD
  schedule.AllocationSource: allocation reads
  schedule.PermissionOracle: role-based permission lookups

APPEND-ONLY ENFORCEMENT:
  The audit_log table has no UPDATE or DELETE path. Every committed cell
  change stays recorded; reconciliation overlays resolve "latest wins" by
  timestamp.

IDENTITY:
  Every record row carries a surrogate TEXT primary key. Mutations address
  rows by that key only - positional identity stops at the sheet adapter.

WAL MODE:
  The database is opened with WAL so concurrent readers don't block the
  single writer.

SEE ALSO:
  - schedule/log.go:           LogStore contract
  - schedule/store/memory.go:  In-memory implementation for tests
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/warp/roster-engine/schedule"
)

// allocationHeader is the sentinel row the engine expects as element zero
// of an allocation listing, mirroring the spreadsheet source convention.
var allocationHeader = schedule.AllocationRecord{Email: "Email", Allocation: "Allocation"}

// Store implements the schedule storage contracts on SQLite.
type Store struct {
	db     *sql.DB
	mu     sync.RWMutex
	logger *zap.Logger
}

// New opens (or creates) the database at dbPath. Use ":memory:" for tests.
func New(dbPath string, logger *zap.Logger) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite serializes writers anyway, and a single connection keeps
	// ":memory:" databases from fragmenting across the pool.
	db.SetMaxOpenConns(1)
	if logger == nil {
		logger = zap.NewNop()
	}

	store := &Store{db: db, logger: logger}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate() error {
	schema := `
	-- Audit log (append-only; no UPDATE, no DELETE)
	CREATE TABLE IF NOT EXISTS audit_log (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL,
		day TEXT NOT NULL,
		field TEXT NOT NULL,
		old_value TEXT NOT NULL,
		new_value TEXT NOT NULL,
		changed_by TEXT NOT NULL,
		timestamp TEXT NOT NULL,
		date TEXT NOT NULL DEFAULT ''
	);

	-- Overlay resolution (hot path): latest entry per email/field/date
	CREATE INDEX IF NOT EXISTS idx_audit_log_cell
		ON audit_log(email, field, date, timestamp DESC);
	CREATE INDEX IF NOT EXISTS idx_audit_log_timestamp
		ON audit_log(timestamp DESC);

	-- Roster records (project-level or personal work-location plans)
	CREATE TABLE IF NOT EXISTS rosters (
		id TEXT PRIMARY KEY,
		subject_name TEXT NOT NULL,
		leader TEXT NOT NULL DEFAULT '',
		start_date TEXT NOT NULL DEFAULT '',
		end_date TEXT NOT NULL DEFAULT '',
		monday TEXT NOT NULL DEFAULT '',
		tuesday TEXT NOT NULL DEFAULT '',
		wednesday TEXT NOT NULL DEFAULT '',
		thursday TEXT NOT NULL DEFAULT '',
		friday TEXT NOT NULL DEFAULT '',
		position INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_rosters_subject ON rosters(subject_name);

	-- Shift records (one per person)
	CREATE TABLE IF NOT EXISTS shifts (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL,
		join_date TEXT NOT NULL DEFAULT '',
		end_date TEXT NOT NULL DEFAULT '',
		monday TEXT NOT NULL DEFAULT '',
		tuesday TEXT NOT NULL DEFAULT '',
		wednesday TEXT NOT NULL DEFAULT '',
		thursday TEXT NOT NULL DEFAULT '',
		friday TEXT NOT NULL DEFAULT '',
		position INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_shifts_email ON shifts(email);

	-- Allocation records (person -> project membership)
	CREATE TABLE IF NOT EXISTS allocations (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL,
		allocation TEXT NOT NULL,
		start_date TEXT NOT NULL DEFAULT '',
		end_date TEXT NOT NULL DEFAULT '',
		position INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_allocations_email ON allocations(email);
	CREATE INDEX IF NOT EXISTS idx_allocations_name ON allocations(allocation);

	-- Roles (permission oracle backing)
	CREATE TABLE IF NOT EXISTS roles (
		email TEXT PRIMARY KEY,
		role TEXT NOT NULL DEFAULT '',
		permissions TEXT NOT NULL DEFAULT ''
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// LOG STORE (schedule.LogStore)
// =============================================================================

// Read returns the full audit history, most recent first.
func (s *Store) Read(ctx context.Context) ([]schedule.LogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, email, day, field, old_value, new_value, changed_by, timestamp, date
		FROM audit_log ORDER BY timestamp DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to read audit log: %w", err)
	}
	defer rows.Close()

	var entries []schedule.LogEntry
	for rows.Next() {
		var e schedule.LogEntry
		var field, ts, date string
		if err := rows.Scan(&e.ID, &e.Email, &e.Day, &field, &e.OldValue, &e.NewValue, &e.ChangedBy, &ts, &date); err != nil {
			return nil, err
		}
		e.Field = schedule.Field(field)
		if t, err := time.Parse(time.RFC3339Nano, ts); err == nil {
			e.Timestamp = t
		} else {
			s.logger.Warn("audit entry with unparseable timestamp",
				zap.String("id", e.ID), zap.String("timestamp", ts))
		}
		e.Date = s.parseDate(date, "audit_log", e.ID)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Append persists a batch of entries atomically. There is no update or
// delete counterpart.
func (s *Store) Append(ctx context.Context, entries []schedule.LogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, e := range entries {
		if e.ID == "" {
			e.ID = uuid.NewString()
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO audit_log (id, email, day, field, old_value, new_value, changed_by, timestamp, date)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			e.ID, e.Email, e.Day, string(e.Field), e.OldValue, e.NewValue, e.ChangedBy,
			e.Timestamp.UTC().Format(time.RFC3339Nano), e.Date.String(),
		)
		if err != nil {
			return fmt.Errorf("failed to append audit entry: %w", err)
		}
	}
	return tx.Commit()
}

// =============================================================================
// ROSTER SOURCE (schedule.RosterSource)
// =============================================================================

// RosterStore is the roster-facing view of the Store.
type RosterStore struct{ *Store }

// Rosters returns the RosterSource view.
func (s *Store) Rosters() *RosterStore { return &RosterStore{s} }

func (r *RosterStore) Read(ctx context.Context) ([]schedule.RosterRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, subject_name, leader, start_date, end_date,
		       monday, tuesday, wednesday, thursday, friday
		FROM rosters ORDER BY position, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to read rosters: %w", err)
	}
	defer rows.Close()

	var records []schedule.RosterRecord
	for rows.Next() {
		var rec schedule.RosterRecord
		var start, end string
		days := make([]string, 5)
		if err := rows.Scan(&rec.ID, &rec.SubjectName, &rec.Leader, &start, &end,
			&days[0], &days[1], &days[2], &days[3], &days[4]); err != nil {
			return nil, err
		}
		rec.StartDate = r.parseDate(start, "rosters", rec.ID)
		rec.EndDate = r.parseDate(end, "rosters", rec.ID)
		rec.Days = make(map[time.Weekday]schedule.RosterValue, 5)
		for i, wd := range schedule.Workweek {
			if days[i] != "" {
				rec.Days[wd] = schedule.RosterValue(days[i])
			}
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (r *RosterStore) Create(ctx context.Context, record schedule.RosterRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO rosters (id, subject_name, leader, start_date, end_date,
			monday, tuesday, wednesday, thursday, friday, position)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?,
			(SELECT COALESCE(MAX(position), 0) + 1 FROM rosters))`,
		record.ID, record.SubjectName, record.Leader,
		record.StartDate.String(), record.EndDate.String(),
		dayOrEmpty(record.Days, time.Monday), dayOrEmpty(record.Days, time.Tuesday),
		dayOrEmpty(record.Days, time.Wednesday), dayOrEmpty(record.Days, time.Thursday),
		dayOrEmpty(record.Days, time.Friday),
	)
	if err != nil {
		return fmt.Errorf("failed to create roster record: %w", err)
	}
	return nil
}

func (r *RosterStore) Update(ctx context.Context, id, field, value string) error {
	col, ok := rosterColumns[field]
	if !ok {
		return fmt.Errorf("%w: unknown roster field %q", schedule.ErrMalformedRow, field)
	}
	if field == "startDate" || field == "endDate" {
		if _, err := schedule.ParseDate(value); err != nil {
			return fmt.Errorf("%w: bad %s %q", schedule.ErrMalformedRow, field, value)
		}
	}
	return r.updateColumn(ctx, "rosters", col, id, value)
}

func (r *RosterStore) Delete(ctx context.Context, id string) error {
	return r.deleteByID(ctx, "rosters", id)
}

// =============================================================================
// SHIFT SOURCE (schedule.ShiftSource)
// =============================================================================

// ShiftStore is the shift-facing view of the Store.
type ShiftStore struct{ *Store }

// Shifts returns the ShiftSource view.
func (s *Store) Shifts() *ShiftStore { return &ShiftStore{s} }

func (sh *ShiftStore) Read(ctx context.Context) ([]schedule.ShiftRecord, error) {
	sh.mu.RLock()
	defer sh.mu.RUnlock()

	rows, err := sh.db.QueryContext(ctx, `
		SELECT id, email, join_date, end_date,
		       monday, tuesday, wednesday, thursday, friday
		FROM shifts ORDER BY position, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to read shifts: %w", err)
	}
	defer rows.Close()

	var records []schedule.ShiftRecord
	for rows.Next() {
		var rec schedule.ShiftRecord
		var join, end string
		days := make([]string, 5)
		if err := rows.Scan(&rec.ID, &rec.Email, &join, &end,
			&days[0], &days[1], &days[2], &days[3], &days[4]); err != nil {
			return nil, err
		}
		rec.JoinDate = sh.parseDate(join, "shifts", rec.ID)
		rec.EndDate = sh.parseDate(end, "shifts", rec.ID)
		rec.Days = make(map[time.Weekday]schedule.ShiftLabel, 5)
		for i, wd := range schedule.Workweek {
			if days[i] != "" {
				rec.Days[wd] = schedule.ShiftLabel(days[i])
			}
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (sh *ShiftStore) Create(ctx context.Context, record schedule.ShiftRecord) error {
	sh.mu.Lock()
	defer sh.mu.Unlock()

	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	_, err := sh.db.ExecContext(ctx, `
		INSERT INTO shifts (id, email, join_date, end_date,
			monday, tuesday, wednesday, thursday, friday, position)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?,
			(SELECT COALESCE(MAX(position), 0) + 1 FROM shifts))`,
		record.ID, record.Email,
		record.JoinDate.String(), record.EndDate.String(),
		dayOrEmpty(record.Days, time.Monday), dayOrEmpty(record.Days, time.Tuesday),
		dayOrEmpty(record.Days, time.Wednesday), dayOrEmpty(record.Days, time.Thursday),
		dayOrEmpty(record.Days, time.Friday),
	)
	if err != nil {
		return fmt.Errorf("failed to create shift record: %w", err)
	}
	return nil
}

func (sh *ShiftStore) Update(ctx context.Context, id, field, value string) error {
	col, ok := shiftColumns[field]
	if !ok {
		return fmt.Errorf("%w: unknown shift field %q", schedule.ErrMalformedRow, field)
	}
	if field == "joinDate" || field == "endDate" {
		if _, err := schedule.ParseDate(value); err != nil {
			return fmt.Errorf("%w: bad %s %q", schedule.ErrMalformedRow, field, value)
		}
	}
	return sh.updateColumn(ctx, "shifts", col, id, value)
}

func (sh *ShiftStore) Delete(ctx context.Context, id string) error {
	return sh.deleteByID(ctx, "shifts", id)
}

// =============================================================================
// ALLOCATION SOURCE (schedule.AllocationSource)
// =============================================================================

// AllocationStore is the allocation-facing view of the Store.
type AllocationStore struct{ *Store }

// AllocationSource returns the AllocationSource view.
func (s *Store) AllocationSource() *AllocationStore { return &AllocationStore{s} }

// Read returns the allocation listing with the header sentinel the engine
// expects as row zero.
func (a *AllocationStore) Read(ctx context.Context) ([]schedule.AllocationRecord, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	rows, err := a.db.QueryContext(ctx, `
		SELECT id, email, allocation, start_date, end_date
		FROM allocations ORDER BY position, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to read allocations: %w", err)
	}
	defer rows.Close()

	records := []schedule.AllocationRecord{allocationHeader}
	for rows.Next() {
		var rec schedule.AllocationRecord
		var start, end string
		if err := rows.Scan(&rec.ID, &rec.Email, &rec.Allocation, &start, &end); err != nil {
			return nil, err
		}
		rec.StartDate = a.parseDate(start, "allocations", rec.ID)
		rec.EndDate = a.parseDate(end, "allocations", rec.ID)
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (a *AllocationStore) Allocations(ctx context.Context) ([]string, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	rows, err := a.db.QueryContext(ctx,
		`SELECT DISTINCT allocation FROM allocations WHERE allocation != '' ORDER BY allocation`)
	if err != nil {
		return nil, fmt.Errorf("failed to read allocation names: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Create inserts an allocation record. Used by seeds and the upstream sync.
func (a *AllocationStore) Create(ctx context.Context, record schedule.AllocationRecord) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	_, err := a.db.ExecContext(ctx, `
		INSERT INTO allocations (id, email, allocation, start_date, end_date, position)
		VALUES (?, ?, ?, ?, ?,
			(SELECT COALESCE(MAX(position), 0) + 1 FROM allocations))`,
		record.ID, record.Email, record.Allocation,
		record.StartDate.String(), record.EndDate.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to create allocation record: %w", err)
	}
	return nil
}

// =============================================================================
// PERMISSION ORACLE (schedule.PermissionOracle)
// =============================================================================

// HasPermission checks the roles table. Lookup failures deny.
func (s *Store) HasPermission(email, name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var permissions string
	err := s.db.QueryRow(`SELECT permissions FROM roles WHERE email = ?`, email).Scan(&permissions)
	if err != nil {
		return false
	}
	for _, p := range strings.Split(permissions, ",") {
		if strings.TrimSpace(p) == name {
			return true
		}
	}
	return false
}

// SaveRole upserts a role grant. Permissions are comma-separated names.
func (s *Store) SaveRole(ctx context.Context, email, role string, permissions []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO roles (email, role, permissions) VALUES (?, ?, ?)
		ON CONFLICT(email) DO UPDATE SET role = excluded.role, permissions = excluded.permissions`,
		email, role, strings.Join(permissions, ","),
	)
	if err != nil {
		return fmt.Errorf("failed to save role: %w", err)
	}
	return nil
}

// GetRole returns a person's role and permission names.
func (s *Store) GetRole(ctx context.Context, email string) (string, []string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var role, permissions string
	err := s.db.QueryRowContext(ctx, `SELECT role, permissions FROM roles WHERE email = ?`, email).
		Scan(&role, &permissions)
	if err == sql.ErrNoRows {
		return "", nil, schedule.ErrRecordNotFound
	}
	if err != nil {
		return "", nil, err
	}
	var names []string
	for _, p := range strings.Split(permissions, ",") {
		if p = strings.TrimSpace(p); p != "" {
			names = append(names, p)
		}
	}
	return role, names, nil
}

// =============================================================================
// UPSTREAM MIRROR - transactional full replacement, used by the sync loop
// =============================================================================

// ReplaceRosters swaps the full roster table contents atomically.
func (s *Store) ReplaceRosters(ctx context.Context, records []schedule.RosterRecord) error {
	return s.replaceAll(ctx, "rosters", len(records), func(tx *sql.Tx, i int) error {
		rec := records[i]
		if rec.ID == "" {
			rec.ID = uuid.NewString()
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO rosters (id, subject_name, leader, start_date, end_date,
				monday, tuesday, wednesday, thursday, friday, position)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			rec.ID, rec.SubjectName, rec.Leader, rec.StartDate.String(), rec.EndDate.String(),
			dayOrEmpty(rec.Days, time.Monday), dayOrEmpty(rec.Days, time.Tuesday),
			dayOrEmpty(rec.Days, time.Wednesday), dayOrEmpty(rec.Days, time.Thursday),
			dayOrEmpty(rec.Days, time.Friday), i+1,
		)
		return err
	})
}

// ReplaceShifts swaps the full shift table contents atomically.
func (s *Store) ReplaceShifts(ctx context.Context, records []schedule.ShiftRecord) error {
	return s.replaceAll(ctx, "shifts", len(records), func(tx *sql.Tx, i int) error {
		rec := records[i]
		if rec.ID == "" {
			rec.ID = uuid.NewString()
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO shifts (id, email, join_date, end_date,
				monday, tuesday, wednesday, thursday, friday, position)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			rec.ID, rec.Email, rec.JoinDate.String(), rec.EndDate.String(),
			dayOrEmpty(rec.Days, time.Monday), dayOrEmpty(rec.Days, time.Tuesday),
			dayOrEmpty(rec.Days, time.Wednesday), dayOrEmpty(rec.Days, time.Thursday),
			dayOrEmpty(rec.Days, time.Friday), i+1,
		)
		return err
	})
}

// ReplaceAllocations swaps the full allocation table contents atomically.
// The header sentinel, if present, is not persisted.
func (s *Store) ReplaceAllocations(ctx context.Context, records []schedule.AllocationRecord) error {
	if len(records) > 0 && records[0].Email == allocationHeader.Email {
		records = records[1:]
	}
	return s.replaceAll(ctx, "allocations", len(records), func(tx *sql.Tx, i int) error {
		rec := records[i]
		if rec.ID == "" {
			rec.ID = uuid.NewString()
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO allocations (id, email, allocation, start_date, end_date, position)
			VALUES (?, ?, ?, ?, ?, ?)`,
			rec.ID, rec.Email, rec.Allocation, rec.StartDate.String(), rec.EndDate.String(), i+1,
		)
		return err
	})
}

func (s *Store) replaceAll(ctx context.Context, table string, n int, insert func(*sql.Tx, int) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
		return fmt.Errorf("failed to clear %s: %w", table, err)
	}
	for i := 0; i < n; i++ {
		if err := insert(tx, i); err != nil {
			return fmt.Errorf("failed to insert into %s: %w", table, err)
		}
	}
	return tx.Commit()
}

// =============================================================================
// HELPERS
// =============================================================================

var rosterColumns = map[string]string{
	"subjectName": "subject_name",
	"leader":      "leader",
	"startDate":   "start_date",
	"endDate":     "end_date",
	"monday":      "monday",
	"tuesday":     "tuesday",
	"wednesday":   "wednesday",
	"thursday":    "thursday",
	"friday":      "friday",
}

var shiftColumns = map[string]string{
	"email":     "email",
	"joinDate":  "join_date",
	"endDate":   "end_date",
	"monday":    "monday",
	"tuesday":   "tuesday",
	"wednesday": "wednesday",
	"thursday":  "thursday",
	"friday":    "friday",
}

func (s *Store) updateColumn(ctx context.Context, table, column, id, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// column comes from an allow-list, never from user input.
	res, err := s.db.ExecContext(ctx,
		fmt.Sprintf("UPDATE %s SET %s = ? WHERE id = ?", table, column), value, id)
	if err != nil {
		return fmt.Errorf("failed to update %s.%s: %w", table, column, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return schedule.ErrRecordNotFound
	}
	return nil
}

func (s *Store) deleteByID(ctx context.Context, table, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM "+table+" WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete from %s: %w", table, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return schedule.ErrRecordNotFound
	}
	return nil
}

// dayOrEmpty renders an unset weekday as the empty string, not "N/A", so
// reads can distinguish "never configured" from an explicit value.
func dayOrEmpty[V ~string](days map[time.Weekday]V, wd time.Weekday) string {
	return string(days[wd])
}

// parseDate guards free-text date cells: a malformed value yields the
// invalid Date (the record simply never matches) plus a warning.
func (s *Store) parseDate(raw, table, id string) schedule.Date {
	if strings.TrimSpace(raw) == "" {
		return schedule.Date{}
	}
	d, err := schedule.ParseDate(raw)
	if err != nil {
		s.logger.Warn("malformed date in store; treating record as non-matching",
			zap.String("table", table), zap.String("id", id), zap.String("value", raw))
		return schedule.Date{}
	}
	return d
}
