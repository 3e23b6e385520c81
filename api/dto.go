/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

TYPES:
  Combined view:
    CombinedViewDTO, CombinedRecordDTO, CommitRequest, CommitResponse

  Sources:
    RosterDTO, CreateRosterRequest
    ShiftDTO, CreateShiftRequest
    AllocationDTO
    UpdateFieldRequest (shared by roster/shift cell edits)

  Audit:
    LogEntryDTO

  Summary:
    SummaryDTO, PersonSummaryDTO

  Roles / scenarios:
    RoleDTO, ScenarioDTO

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - schedule/types.go: Domain model these map from
*/
package api

import (
	"time"

	"github.com/warp/roster-engine/schedule"
)

// =============================================================================
// COMBINED VIEW
// =============================================================================

// CombinedViewDTO is the reconciled dashboard payload.
type CombinedViewDTO struct {
	Start   string              `json:"start"`
	End     string              `json:"end"`
	Days    []string            `json:"days"`
	Records []CombinedRecordDTO `json:"records"`
}

// CombinedRecordDTO is one person-row of the combined view. Cells map
// ISO dates to "<roster>/ <shift>" strings.
type CombinedRecordDTO struct {
	Email       string            `json:"email"`
	ProjectName string            `json:"project_name"`
	Allocation  string            `json:"allocation"`
	Cells       map[string]string `json:"cells"`
}

// EditDTO is a single pending cell edit.
type EditDTO struct {
	Email string `json:"email"`
	Date  string `json:"date"`
	Field string `json:"field"` // "roster" or "shift"
	Value string `json:"value"`
}

// CommitRequest applies edits against a freshly reconciled baseline and
// persists the resulting audit entries.
type CommitRequest struct {
	Start string    `json:"start"`
	End   string    `json:"end"`
	Edits []EditDTO `json:"edits"`
}

// CommitResponse reports what the commit did. A no-op commit (every edit
// matched the baseline) is a distinct outcome, not an error.
type CommitResponse struct {
	Logged  int    `json:"logged"`
	NoOp    bool   `json:"no_op"`
	Message string `json:"message"`
}

// =============================================================================
// SOURCE RECORDS
// =============================================================================

// RosterDTO represents a roster row in API responses.
type RosterDTO struct {
	ID          string `json:"id"`
	SubjectName string `json:"subject_name"`
	Leader      string `json:"leader"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	Monday      string `json:"monday"`
	Tuesday     string `json:"tuesday"`
	Wednesday   string `json:"wednesday"`
	Thursday    string `json:"thursday"`
	Friday      string `json:"friday"`
}

// CreateRosterRequest is the request to add a roster row.
type CreateRosterRequest struct {
	SubjectName string `json:"subject_name"`
	Leader      string `json:"leader"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	Monday      string `json:"monday"`
	Tuesday     string `json:"tuesday"`
	Wednesday   string `json:"wednesday"`
	Thursday    string `json:"thursday"`
	Friday      string `json:"friday"`
}

// ShiftDTO represents a shift row in API responses.
type ShiftDTO struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	JoinDate  string `json:"join_date"`
	EndDate   string `json:"end_date"`
	Monday    string `json:"monday"`
	Tuesday   string `json:"tuesday"`
	Wednesday string `json:"wednesday"`
	Thursday  string `json:"thursday"`
	Friday    string `json:"friday"`
}

// CreateShiftRequest is the request to add a shift row.
type CreateShiftRequest struct {
	Email     string `json:"email"`
	JoinDate  string `json:"join_date"`
	EndDate   string `json:"end_date"`
	Monday    string `json:"monday"`
	Tuesday   string `json:"tuesday"`
	Wednesday string `json:"wednesday"`
	Thursday  string `json:"thursday"`
	Friday    string `json:"friday"`
}

// UpdateFieldRequest targets a single field of a record by name.
type UpdateFieldRequest struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// AllocationDTO represents an allocation row (the header sentinel is
// never exposed over the API).
type AllocationDTO struct {
	ID         string `json:"id"`
	Email      string `json:"email"`
	Allocation string `json:"allocation"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
}

// =============================================================================
// AUDIT, SUMMARY, ROLES, SCENARIOS
// =============================================================================

// LogEntryDTO represents one audit entry.
type LogEntryDTO struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Day       string `json:"day"`
	Date      string `json:"date"`
	Field     string `json:"field"`
	OldValue  string `json:"old_value"`
	NewValue  string `json:"new_value"`
	ChangedBy string `json:"changed_by"`
	Timestamp string `json:"timestamp"`
}

// PersonSummaryDTO aggregates one person's range.
type PersonSummaryDTO struct {
	Email       string         `json:"email"`
	OfficeDays  int            `json:"office_days"`
	HomeDays    int            `json:"home_days"`
	OfficeRatio string         `json:"office_ratio"`
	ShiftMix    map[string]int `json:"shift_mix"`
}

// SummaryDTO aggregates the whole range.
type SummaryDTO struct {
	Start       string             `json:"start"`
	End         string             `json:"end"`
	OfficeDays  int                `json:"office_days"`
	HomeDays    int                `json:"home_days"`
	OfficeRatio string             `json:"office_ratio"`
	People      []PersonSummaryDTO `json:"people"`
}

// RoleDTO is the role lookup response.
type RoleDTO struct {
	Email       string   `json:"email"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
}

// ScenarioDTO represents a demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// LoadScenarioRequest selects a scenario by ID.
type LoadScenarioRequest struct {
	ID string `json:"id"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toCombinedRecordDTO(rec schedule.CombinedRecord) CombinedRecordDTO {
	return CombinedRecordDTO{
		Email:       rec.Email,
		ProjectName: rec.ProjectName,
		Allocation:  rec.Allocation,
		Cells:       rec.Cells,
	}
}

func toRosterDTO(rec schedule.RosterRecord) RosterDTO {
	return RosterDTO{
		ID:          rec.ID,
		SubjectName: rec.SubjectName,
		Leader:      rec.Leader,
		StartDate:   rec.StartDate.String(),
		EndDate:     rec.EndDate.String(),
		Monday:      string(rec.Days[time.Monday]),
		Tuesday:     string(rec.Days[time.Tuesday]),
		Wednesday:   string(rec.Days[time.Wednesday]),
		Thursday:    string(rec.Days[time.Thursday]),
		Friday:      string(rec.Days[time.Friday]),
	}
}

func toShiftDTO(rec schedule.ShiftRecord) ShiftDTO {
	return ShiftDTO{
		ID:        rec.ID,
		Email:     rec.Email,
		JoinDate:  rec.JoinDate.String(),
		EndDate:   rec.EndDate.String(),
		Monday:    string(rec.Days[time.Monday]),
		Tuesday:   string(rec.Days[time.Tuesday]),
		Wednesday: string(rec.Days[time.Wednesday]),
		Thursday:  string(rec.Days[time.Thursday]),
		Friday:    string(rec.Days[time.Friday]),
	}
}

func toLogEntryDTO(e schedule.LogEntry) LogEntryDTO {
	return LogEntryDTO{
		ID:        e.ID,
		Email:     e.Email,
		Day:       e.Day,
		Date:      e.Date.String(),
		Field:     string(e.Field),
		OldValue:  e.OldValue,
		NewValue:  e.NewValue,
		ChangedBy: e.ChangedBy,
		Timestamp: e.Timestamp.UTC().Format(time.RFC3339Nano),
	}
}
