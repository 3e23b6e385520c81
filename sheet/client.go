/*
Package sheet adapts a spreadsheet-backed upstream (a Google Apps Script
web app or anything speaking the same contract) to the schedule source
interfaces.

PURPOSE:
  The upstream is a single URL speaking query-parameter RPC: every call is
  a GET with "module" and "action" parameters plus an auth token. Reads
  return JSON arrays of string arrays - one array per sheet row, cells in
  a fixed positional layout. Mutations address cells by 1-based sheet row
  and column.

IDENTITY TRANSLATION:
  The upstream has no stable row keys; the rest of the system refuses to
  deal in positions. This package is where the two meet: each Read assigns
  a surrogate ID per row and remembers the ID -> sheet-row mapping. IDs are
  stable across reads - a re-read (the sync loop shares this client) keeps
  the ID of every row position it re-confirms - and every mutation resolves
  the caller's ID back to the current position.
  A stale ID (row deleted or reordered since the last Read) surfaces as
  ErrRecordNotFound after one refresh attempt.

ROW LAYOUTS:
  roster:     name, leader, startDate, endDate, mon..fri  (header at row 1)
  shift:      email, joinDate, endDate, mon..fri          (header at row 1)
  allocation: email, allocation, startDate, endDate       (header kept as
              the sentinel row the engine expects)
  log:        timestamp, email, day, field, old, new, by, date

SEE ALSO:
  - sheet/sources.go:   roster, shift, and allocation source views
  - sheet/log.go:       audit log sink and role lookups
  - store/sqlite:       the local mirror the sync loop copies rows into
*/
package sheet

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Client speaks the query-parameter RPC contract of the sheet upstream.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	logger  *zap.Logger

	mu   sync.Mutex
	rows map[string]map[string]int // module -> surrogate ID -> 1-based sheet row
}

// New builds a Client for the upstream at baseURL. The token rides along
// on every request; pass the empty string for unauthenticated upstreams.
func New(baseURL, token string, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: 30 * time.Second},
		logger:  logger,
		rows:    make(map[string]map[string]int),
	}
}

// upstreamError is the {"error": "..."} shape the upstream returns on
// failures (it always answers 200).
type upstreamError struct {
	Error string `json:"error"`
}

func (c *Client) call(ctx context.Context, params url.Values) ([]byte, error) {
	if c.token != "" {
		params.Set("token", c.token)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build upstream request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upstream request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read upstream response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("upstream returned %s", resp.Status)
	}

	// The upstream reports failures in-band.
	var ue upstreamError
	if err := json.Unmarshal(body, &ue); err == nil && ue.Error != "" {
		return nil, fmt.Errorf("upstream error: %s", ue.Error)
	}
	return body, nil
}

// readRows fetches module's rows. Short rows are padded to width so the
// positional mapping never indexes out of range.
func (c *Client) readRows(ctx context.Context, module string, width int) ([][]string, error) {
	params := url.Values{}
	params.Set("module", module)
	params.Set("action", "read")

	body, err := c.call(ctx, params)
	if err != nil {
		return nil, err
	}

	var rows [][]string
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode %s rows: %w", module, err)
	}
	for i, row := range rows {
		for len(row) < width {
			row = append(row, "")
		}
		rows[i] = row
	}
	return rows, nil
}

// rememberRows reconciles module's surrogate-ID mapping against a fresh read
// of count data rows starting at firstRow (1-based). A row seen at the same
// position keeps its ID, so background re-reads never invalidate identifiers
// already handed to clients; new rows get fresh UUIDs and rows past the end
// are forgotten.
func (c *Client) rememberRows(module string, count, firstRow int) []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	byRow := make(map[int]string, len(c.rows[module]))
	for id, row := range c.rows[module] {
		byRow[row] = id
	}

	ids := make([]string, count)
	mapping := make(map[string]int, count)
	for i := range ids {
		row := firstRow + i
		id, ok := byRow[row]
		if !ok {
			id = uuid.NewString()
		}
		ids[i] = id
		mapping[id] = row
	}
	c.rows[module] = mapping
	return ids
}

// resolveRow translates a surrogate ID to its current sheet row, refreshing
// the mapping once via refresh if the ID is unknown.
func (c *Client) resolveRow(ctx context.Context, module, id string, refresh func(context.Context) error) (int, bool) {
	c.mu.Lock()
	row, ok := c.rows[module][id]
	c.mu.Unlock()
	if ok {
		return row, true
	}

	if err := refresh(ctx); err != nil {
		c.logger.Warn("failed to refresh sheet rows while resolving id",
			zap.String("module", module), zap.Error(err))
		return 0, false
	}
	c.mu.Lock()
	row, ok = c.rows[module][id]
	c.mu.Unlock()
	return row, ok
}

func (c *Client) updateCell(ctx context.Context, module string, row, column int, value string) error {
	params := url.Values{}
	params.Set("module", module)
	params.Set("action", "update")
	params.Set("row", strconv.Itoa(row))
	params.Set("column", strconv.Itoa(column))
	params.Set("value", value)
	_, err := c.call(ctx, params)
	return err
}

func (c *Client) deleteRow(ctx context.Context, module string, row int) error {
	params := url.Values{}
	params.Set("module", module)
	params.Set("action", "delete")
	params.Set("id", strconv.Itoa(row))
	if _, err := c.call(ctx, params); err != nil {
		return err
	}

	// Every row below the deleted one shifted up by one.
	c.mu.Lock()
	mapping := c.rows[module]
	for id, r := range mapping {
		switch {
		case r == row:
			delete(mapping, id)
		case r > row:
			mapping[id] = r - 1
		}
	}
	c.mu.Unlock()
	return nil
}
