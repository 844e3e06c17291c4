// ABOUTME: HTTP client for a hosted PostgREST (Supabase) diary entries table.
// ABOUTME: Lists, inserts, and deletes rows using the public anon key.
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/2389-research/diary/internal/models"
)

// maxErrorBody caps how much of an error response is kept in the returned error.
const maxErrorBody = 1 << 20

// RESTStore talks to the entries table through the PostgREST HTTP interface.
type RESTStore struct {
	baseURL string
	anonKey string
	table   string
	client  *http.Client
}

// NewRESTStore creates a REST store for the given project URL, anon key, and table.
func NewRESTStore(apiURL, anonKey, table string) *RESTStore {
	if table == "" {
		table = DefaultTable
	}
	return &RESTStore{
		baseURL: NormalizeURL(apiURL),
		anonKey: anonKey,
		table:   table,
		client:  &http.Client{},
	}
}

// NormalizeURL strips trailing slashes and a trailing /rest/v1 from a project URL.
func NormalizeURL(apiURL string) string {
	apiURL = strings.TrimRight(strings.TrimSpace(apiURL), "/")
	apiURL = strings.TrimSuffix(apiURL, "/rest/v1")
	return apiURL
}

// TableURL returns the REST resource URL for a table under a normalized project URL.
func TableURL(baseURL, table string) string {
	return baseURL + "/rest/v1/" + url.PathEscape(table)
}

// restRow maps a single row of the entries table.
type restRow struct {
	ID        restID `json:"id"`
	CreatedAt string `json:"created_at"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	Mood      string `json:"mood"`
	UserID    string `json:"user_id"`
}

// restInsertRow is the JSON body element sent on insert.
type restInsertRow struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Mood    string `json:"mood"`
	UserID  string `json:"user_id"`
}

// restID accepts both string keys (uuid) and numeric keys (bigserial).
type restID string

func (id *restID) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*id = restID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("unsupported id %s: %w", string(b), err)
	}
	*id = restID(n.String())
	return nil
}

// timestampLayouts covers timestamptz and timestamp columns as rendered by PostgREST.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
}

func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", s)
}

// ListAll fetches every row ordered by created_at descending.
func (r *RESTStore) ListAll(ctx context.Context) ([]*models.DiaryEntry, error) {
	req, err := r.newRequest(ctx, http.MethodGet, nil)
	if err != nil {
		return nil, storeErr(OpList, err)
	}
	q := req.URL.Query()
	q.Set("select", "*")
	q.Set("order", "created_at.desc")
	req.URL.RawQuery = q.Encode()

	resp, err := r.do(req)
	if err != nil {
		return nil, storeErr(OpList, err)
	}
	defer func() { _ = resp.Body.Close() }()

	var rows []restRow
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, storeErr(OpList, fmt.Errorf("failed to decode response: %w", err))
	}

	entries := make([]*models.DiaryEntry, 0, len(rows))
	for _, row := range rows {
		createdAt, err := parseTimestamp(row.CreatedAt)
		if err != nil {
			return nil, storeErr(OpList, err)
		}
		entries = append(entries, &models.DiaryEntry{
			ID:        string(row.ID),
			CreatedAt: createdAt,
			Title:     row.Title,
			Mood:      row.Mood,
			Content:   row.Content,
			UserID:    row.UserID,
		})
	}

	models.SortNewestFirst(entries)
	return entries, nil
}

// Insert posts a single row. The server assigns id and created_at.
func (r *RESTStore) Insert(ctx context.Context, draft models.Draft) error {
	body, err := json.Marshal([]restInsertRow{{
		Title:   draft.Title,
		Content: draft.Content,
		Mood:    draft.Mood,
		UserID:  draft.UserID,
	}})
	if err != nil {
		return storeErr(OpInsert, fmt.Errorf("failed to marshal entry: %w", err))
	}

	req, err := r.newRequest(ctx, http.MethodPost, bytes.NewReader(body))
	if err != nil {
		return storeErr(OpInsert, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "return=minimal")

	resp, err := r.do(req)
	if err != nil {
		return storeErr(OpInsert, err)
	}
	_ = resp.Body.Close()
	return nil
}

// DeleteByID removes rows whose id matches exactly.
func (r *RESTStore) DeleteByID(ctx context.Context, id string) error {
	req, err := r.newRequest(ctx, http.MethodDelete, nil)
	if err != nil {
		return storeErr(OpDelete, err)
	}
	q := req.URL.Query()
	q.Set("id", "eq."+id)
	req.URL.RawQuery = q.Encode()

	resp, err := r.do(req)
	if err != nil {
		return storeErr(OpDelete, err)
	}
	_ = resp.Body.Close()
	return nil
}

// Close releases any resources held by the store.
func (r *RESTStore) Close() error {
	r.client.CloseIdleConnections()
	return nil
}

func (r *RESTStore) newRequest(ctx context.Context, method string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, TableURL(r.baseURL, r.table), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	SetAuthHeaders(req, r.anonKey)
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// do sends req and turns any status >= 400 into an error carrying the response body.
func (r *RESTStore) do(req *http.Request) (*http.Response, error) {
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("remote API request failed: %w", err)
	}
	if resp.StatusCode >= 400 {
		defer func() { _ = resp.Body.Close() }()
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("remote API returned %d: %s", resp.StatusCode, string(respBody))
	}
	return resp, nil
}

// SetAuthHeaders attaches the anon key the way PostgREST gateways expect it.
func SetAuthHeaders(req *http.Request, anonKey string) {
	req.Header.Set("apikey", anonKey)
	req.Header.Set("Authorization", "Bearer "+anonKey)
}
