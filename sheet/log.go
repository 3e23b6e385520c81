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
// AUDIT LOG (schedule.LogStore)
// =============================================================================

// LogSheet is the audit-log view of the upstream. The log sheet is
// append-only: the upstream exposes no update or delete action for it.
type LogSheet struct{ c *Client }

// Logs returns the LogStore view of the upstream.
func (c *Client) Logs() *LogSheet { return &LogSheet{c} }

// wireLogEntry is the JSON shape the upstream accepts in its "logs"
// parameter.
type wireLogEntry struct {
	Timestamp string `json:"timestamp"`
	Email     string `json:"email"`
	Day       string `json:"day"`
	Field     string `json:"field"`
	OldValue  string `json:"oldValue"`
	NewValue  string `json:"newValue"`
	ChangedBy string `json:"changedBy"`
	Date      string `json:"date"`
}

func (l *LogSheet) Read(ctx context.Context) ([]schedule.LogEntry, error) {
	rows, err := l.c.readRows(ctx, "log", 8)
	if err != nil {
		return nil, err
	}

	var entries []schedule.LogEntry
	for i, row := range rows {
		ts, err := time.Parse(time.RFC3339Nano, row[0])
		if err != nil {
			if i == 0 {
				continue // header row
			}
			l.c.logger.Warn("audit row with unparseable timestamp",
				zap.Int("row", i+1), zap.String("value", row[0]))
		}
		e := schedule.LogEntry{
			Email:     row[1],
			Day:       row[2],
			Field:     schedule.Field(row[3]),
			OldValue:  row[4],
			NewValue:  row[5],
			ChangedBy: row[6],
			Timestamp: ts,
		}
		e.Date = l.c.parseDate(row[7], "log", i+1)
		e.ID = schedule.NewLogEntryID()
		entries = append(entries, e)
	}
	return entries, nil
}

func (l *LogSheet) Append(ctx context.Context, entries []schedule.LogEntry) error {
	if len(entries) == 0 {
		return nil
	}

	wire := make([]wireLogEntry, 0, len(entries))
	for _, e := range entries {
		wire = append(wire, wireLogEntry{
			Timestamp: e.Timestamp.UTC().Format(time.RFC3339Nano),
			Email:     e.Email,
			Day:       e.Day,
			Field:     string(e.Field),
			OldValue:  e.OldValue,
			NewValue:  e.NewValue,
			ChangedBy: e.ChangedBy,
			Date:      e.Date.String(),
		})
	}
	payload, err := json.Marshal(wire)
	if err != nil {
		return fmt.Errorf("failed to encode audit batch: %w", err)
	}

	params := url.Values{}
	params.Set("module", "log")
	params.Set("action", "log")
	params.Set("logs", string(payload))
	_, err = l.c.call(ctx, params)
	return err
}

// =============================================================================
// ROLES
// =============================================================================

type roleResponse struct {
	Email       string   `json:"email"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
}

// GetRole looks up a person's role and permission names on the upstream.
func (c *Client) GetRole(ctx context.Context, email string) (string, []string, error) {
	params := url.Values{}
	params.Set("module", "role")
	params.Set("email", email)

	body, err := c.call(ctx, params)
	if err != nil {
		return "", nil, err
	}
	var resp roleResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", nil, fmt.Errorf("failed to decode role response: %w", err)
	}
	return resp.Role, resp.Permissions, nil
}

// HasPermission implements schedule.PermissionOracle against the upstream
// role module. Lookup failures deny.
func (c *Client) HasPermission(email, name string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, permissions, err := c.GetRole(ctx, email)
	if err != nil {
		c.logger.Warn("role lookup failed; denying",
			zap.String("email", email), zap.Error(err))
		return false
	}
	for _, p := range permissions {
		if p == name {
			return true
		}
	}
	return false
}
