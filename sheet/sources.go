package sheet

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/warp/roster-engine/schedule"
)

// =============================================================================
// WIRE LAYOUTS
// =============================================================================

// 1-based cell positions within each sheet's row layout. The upstream
// addresses update targets by these numbers.
var rosterColumns = map[string]int{
	"subjectName": 1,
	"leader":      2,
	"startDate":   3,
	"endDate":     4,
	"monday":      5,
	"tuesday":     6,
	"wednesday":   7,
	"thursday":    8,
	"friday":      9,
}

var shiftColumns = map[string]int{
	"email":     1,
	"joinDate":  2,
	"endDate":   3,
	"monday":    4,
	"tuesday":   5,
	"wednesday": 6,
	"thursday":  7,
	"friday":    8,
}

var allocationColumns = map[string]int{
	"email":      1,
	"allocation": 2,
	"startDate":  3,
	"endDate":    4,
}

// parseDate guards a free-text date cell: malformed values become the
// invalid Date so the record never matches, with a warning for operators.
func (c *Client) parseDate(raw, module string, row int) schedule.Date {
	if raw == "" {
		return schedule.Date{}
	}
	d, err := schedule.ParseDate(raw)
	if err != nil {
		c.logger.Warn("malformed date cell in sheet; treating record as non-matching",
			zap.String("module", module), zap.Int("row", row), zap.String("value", raw))
		return schedule.Date{}
	}
	return d
}

func validateDateField(field, value string) error {
	switch field {
	case "startDate", "endDate", "joinDate":
		if _, err := schedule.ParseDate(value); err != nil {
			return fmt.Errorf("%w: bad %s %q", schedule.ErrMalformedRow, field, value)
		}
	}
	return nil
}

// =============================================================================
// ROSTER SOURCE (schedule.RosterSource)
// =============================================================================

// RosterSheet reads and mutates the roster sheet.
type RosterSheet struct{ c *Client }

// Rosters returns the RosterSource view of the upstream.
func (c *Client) Rosters() *RosterSheet { return &RosterSheet{c} }

func (r *RosterSheet) Read(ctx context.Context) ([]schedule.RosterRecord, error) {
	rows, err := r.c.readRows(ctx, "roster", 9)
	if err != nil {
		return nil, err
	}
	if len(rows) > 0 {
		rows = rows[1:] // header row
	}
	ids := r.c.rememberRows("roster", len(rows), 2)

	records := make([]schedule.RosterRecord, 0, len(rows))
	for i, row := range rows {
		rec := schedule.RosterRecord{
			ID:          ids[i],
			SubjectName: row[0],
			Leader:      row[1],
			StartDate:   r.c.parseDate(row[2], "roster", i+2),
			EndDate:     r.c.parseDate(row[3], "roster", i+2),
			Days:        make(map[time.Weekday]schedule.RosterValue, 5),
		}
		for j, wd := range schedule.Workweek {
			if cell := row[4+j]; cell != "" {
				rec.Days[wd] = schedule.RosterValue(cell)
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

func (r *RosterSheet) Create(ctx context.Context, record schedule.RosterRecord) error {
	params := url.Values{}
	params.Set("module", "roster")
	params.Set("action", "create")
	params.Set("projectName", record.SubjectName)
	params.Set("projectLeader", record.Leader)
	params.Set("startDate", record.StartDate.String())
	params.Set("endDate", record.EndDate.String())
	for _, wd := range schedule.Workweek {
		params.Set(schedule.WeekdayName(wd), string(record.Days[wd]))
	}
	_, err := r.c.call(ctx, params)
	return err
}

func (r *RosterSheet) Update(ctx context.Context, id, field, value string) error {
	column, ok := rosterColumns[field]
	if !ok {
		return fmt.Errorf("%w: unknown roster field %q", schedule.ErrMalformedRow, field)
	}
	if err := validateDateField(field, value); err != nil {
		return err
	}
	row, ok := r.c.resolveRow(ctx, "roster", id, func(ctx context.Context) error {
		_, err := r.Read(ctx)
		return err
	})
	if !ok {
		return schedule.ErrRecordNotFound
	}
	return r.c.updateCell(ctx, "roster", row, column, value)
}

func (r *RosterSheet) Delete(ctx context.Context, id string) error {
	row, ok := r.c.resolveRow(ctx, "roster", id, func(ctx context.Context) error {
		_, err := r.Read(ctx)
		return err
	})
	if !ok {
		return schedule.ErrRecordNotFound
	}
	return r.c.deleteRow(ctx, "roster", row)
}

// =============================================================================
// SHIFT SOURCE (schedule.ShiftSource)
// =============================================================================

// ShiftSheet reads and mutates the shift sheet.
type ShiftSheet struct{ c *Client }

// Shifts returns the ShiftSource view of the upstream.
func (c *Client) Shifts() *ShiftSheet { return &ShiftSheet{c} }

func (s *ShiftSheet) Read(ctx context.Context) ([]schedule.ShiftRecord, error) {
	rows, err := s.c.readRows(ctx, "shift", 8)
	if err != nil {
		return nil, err
	}
	if len(rows) > 0 {
		rows = rows[1:] // header row
	}
	ids := s.c.rememberRows("shift", len(rows), 2)

	records := make([]schedule.ShiftRecord, 0, len(rows))
	for i, row := range rows {
		rec := schedule.ShiftRecord{
			ID:       ids[i],
			Email:    row[0],
			JoinDate: s.c.parseDate(row[1], "shift", i+2),
			EndDate:  s.c.parseDate(row[2], "shift", i+2),
			Days:     make(map[time.Weekday]schedule.ShiftLabel, 5),
		}
		for j, wd := range schedule.Workweek {
			if cell := row[3+j]; cell != "" {
				rec.Days[wd] = schedule.ShiftLabel(cell)
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

func (s *ShiftSheet) Create(ctx context.Context, record schedule.ShiftRecord) error {
	params := url.Values{}
	params.Set("module", "shift")
	params.Set("action", "create")
	params.Set("email", record.Email)
	params.Set("joinDate", record.JoinDate.String())
	params.Set("endDate", record.EndDate.String())
	for _, wd := range schedule.Workweek {
		params.Set(schedule.WeekdayName(wd), string(record.Days[wd]))
	}
	_, err := s.c.call(ctx, params)
	return err
}

func (s *ShiftSheet) Update(ctx context.Context, id, field, value string) error {
	column, ok := shiftColumns[field]
	if !ok {
		return fmt.Errorf("%w: unknown shift field %q", schedule.ErrMalformedRow, field)
	}
	if err := validateDateField(field, value); err != nil {
		return err
	}
	row, ok := s.c.resolveRow(ctx, "shift", id, func(ctx context.Context) error {
		_, err := s.Read(ctx)
		return err
	})
	if !ok {
		return schedule.ErrRecordNotFound
	}
	return s.c.updateCell(ctx, "shift", row, column, value)
}

func (s *ShiftSheet) Delete(ctx context.Context, id string) error {
	row, ok := s.c.resolveRow(ctx, "shift", id, func(ctx context.Context) error {
		_, err := s.Read(ctx)
		return err
	})
	if !ok {
		return schedule.ErrRecordNotFound
	}
	return s.c.deleteRow(ctx, "shift", row)
}

// =============================================================================
// ALLOCATION SOURCE (schedule.AllocationSource)
// =============================================================================

// AllocationSheet reads and mutates the allocation sheet. Unlike the
// roster and shift views it keeps the header row in its results, because
// the allocation listing's first element is the header sentinel downstream
// consumers expect.
type AllocationSheet struct{ c *Client }

// Allocations returns the AllocationSource view of the upstream.
func (c *Client) Allocations() *AllocationSheet { return &AllocationSheet{c} }

func (a *AllocationSheet) Read(ctx context.Context) ([]schedule.AllocationRecord, error) {
	rows, err := a.c.readRows(ctx, "main", 4)
	if err != nil {
		return nil, err
	}

	// IDs cover data rows only; the sentinel is never a mutation target.
	dataRows := len(rows)
	if dataRows > 0 {
		dataRows--
	}
	ids := a.c.rememberRows("main", dataRows, 2)

	records := make([]schedule.AllocationRecord, 0, len(rows))
	for i, row := range rows {
		rec := schedule.AllocationRecord{
			Email:      row[0],
			Allocation: row[1],
		}
		if i > 0 {
			rec.ID = ids[i-1]
			rec.StartDate = a.c.parseDate(row[2], "main", i+1)
			rec.EndDate = a.c.parseDate(row[3], "main", i+1)
		}
		records = append(records, rec)
	}
	return records, nil
}

// Allocations returns the distinct project names from the sheet.
func (a *AllocationSheet) Allocations(ctx context.Context) ([]string, error) {
	params := url.Values{}
	params.Set("module", "main")
	params.Set("action", "getAllocations")

	body, err := a.c.call(ctx, params)
	if err != nil {
		return nil, err
	}
	var names []string
	if err := json.Unmarshal(body, &names); err != nil {
		return nil, fmt.Errorf("failed to decode allocation names: %w", err)
	}
	return names, nil
}

func (a *AllocationSheet) Create(ctx context.Context, record schedule.AllocationRecord) error {
	params := url.Values{}
	params.Set("module", "main")
	params.Set("action", "create")
	params.Set("email", record.Email)
	params.Set("allocation", record.Allocation)
	params.Set("startDate", record.StartDate.String())
	params.Set("endDate", record.EndDate.String())
	_, err := a.c.call(ctx, params)
	return err
}

func (a *AllocationSheet) Update(ctx context.Context, id, field, value string) error {
	column, ok := allocationColumns[field]
	if !ok {
		return fmt.Errorf("%w: unknown allocation field %q", schedule.ErrMalformedRow, field)
	}
	if err := validateDateField(field, value); err != nil {
		return err
	}
	row, ok := a.c.resolveRow(ctx, "main", id, func(ctx context.Context) error {
		_, err := a.Read(ctx)
		return err
	})
	if !ok {
		return schedule.ErrRecordNotFound
	}
	return a.c.updateCell(ctx, "main", row, column, value)
}

func (a *AllocationSheet) Delete(ctx context.Context, id string) error {
	row, ok := a.c.resolveRow(ctx, "main", id, func(ctx context.Context) error {
		_, err := a.Read(ctx)
		return err
	})
	if !ok {
		return schedule.ErrRecordNotFound
	}
	return a.c.deleteRow(ctx, "main", row)
}
