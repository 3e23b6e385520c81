/*
date.go - Guarded day-granularity dates and the working-day calculator

PURPOSE:
  Roster and shift records arrive from spreadsheet-style sources where date
  cells are free text. A malformed date must never abort a reconciliation
  run: it makes the carrying record non-matching instead. Date encodes that
  policy directly - the zero Date is invalid and invalid dates never satisfy
  any window comparison.

WORKING DAYS:
  WorkingDays produces the ordered business dates (Mon-Fri) of an inclusive
  range. It is a pure function, recomputed on every call.
*/
package schedule

import (
	"strings"
	"time"
)

// ISODate is the canonical wire format for day values.
const ISODate = "2006-01-02"

// =============================================================================
// DATE - day-granularity value with guarded comparisons
// =============================================================================

// Date is a calendar day. The zero Date is invalid: it never matches any
// window and never equals any valid Date.
type Date struct {
	Time time.Time
}

// NewDate builds a valid Date.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a day value. It accepts "2006-01-02" and full RFC3339
// timestamps (truncated to the day). Callers should treat an error as
// "record does not match" rather than failing the run.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, 'T'); i > 0 {
		s = s[:i]
	}
	t, err := time.Parse(ISODate, s)
	if err != nil {
		return Date{}, err
	}
	return Date{Time: t}, nil
}

// DateOf truncates a timestamp to its calendar day.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

func (d Date) Valid() bool { return !d.Time.IsZero() }

func (d Date) normalize() time.Time {
	return time.Date(d.Time.Year(), d.Time.Month(), d.Time.Day(), 0, 0, 0, 0, time.UTC)
}

// Comparisons. Any comparison involving an invalid Date is false, so a
// record with an unparseable bound simply never covers a day.
func (d Date) Before(o Date) bool { return d.Valid() && o.Valid() && d.normalize().Before(o.normalize()) }
func (d Date) After(o Date) bool  { return d.Valid() && o.Valid() && d.normalize().After(o.normalize()) }
func (d Date) Equal(o Date) bool  { return d.Valid() && o.Valid() && d.normalize().Equal(o.normalize()) }
func (d Date) BeforeOrEqual(o Date) bool { return d.Before(o) || d.Equal(o) }
func (d Date) AfterOrEqual(o Date) bool  { return d.After(o) || d.Equal(o) }

func (d Date) AddDays(n int) Date { return Date{Time: d.Time.AddDate(0, 0, n)} }

func (d Date) Weekday() time.Weekday { return d.Time.Weekday() }

func (d Date) IsWeekend() bool {
	wd := d.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// String renders the ISO day, or "" for the invalid Date.
func (d Date) String() string {
	if !d.Valid() {
		return ""
	}
	return d.Time.Format(ISODate)
}

// =============================================================================
// WEEKDAY NAMES - log entries key cells by lowercase weekday name
// =============================================================================

var weekdayNames = map[time.Weekday]string{
	time.Sunday:    "sunday",
	time.Monday:    "monday",
	time.Tuesday:   "tuesday",
	time.Wednesday: "wednesday",
	time.Thursday:  "thursday",
	time.Friday:    "friday",
	time.Saturday:  "saturday",
}

// WeekdayName returns the lowercase English weekday name.
func WeekdayName(wd time.Weekday) string { return weekdayNames[wd] }

// ParseWeekday resolves a lowercase weekday name. The second return is false
// for unknown names.
func ParseWeekday(name string) (time.Weekday, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for wd, n := range weekdayNames {
		if n == name {
			return wd, true
		}
	}
	return time.Sunday, false
}

// Workdays in source order. Roster and shift plans configure these five only.
var Workweek = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday,
}

// =============================================================================
// WORKING DAYS
// =============================================================================

// WorkingDays returns all dates in [start, end] inclusive whose weekday is
// Monday-Friday, ascending, as ISO date strings. The sequence is empty when
// either bound is invalid or start is after end.
func WorkingDays(start, end Date) []string {
	if !start.Valid() || !end.Valid() || start.After(end) {
		return nil
	}
	var days []string
	for d := start; d.BeforeOrEqual(end); d = d.AddDays(1) {
		if !d.IsWeekend() {
			days = append(days, d.String())
		}
	}
	return days
}
