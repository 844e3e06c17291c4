// ABOUTME: Connection validation for the hosted entries table and entry form checks.
// ABOUTME: Tests credentials with a one-row read; rejects blank form fields before submit.
package tui

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/2389-research/diary/internal/storage"
)

// ValidateConnection tests the store connection by reading a single row with the given credentials.
// The context allows cancellation when the user quits during validation.
func ValidateConnection(ctx context.Context, apiURL, anonKey, table string) error {
	client := &http.Client{Timeout: 10 * time.Second}

	if table == "" {
		table = storage.DefaultTable
	}
	endpoint := storage.TableURL(storage.NormalizeURL(apiURL), table)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	storage.SetAuthHeaders(req, anonKey)

	q := req.URL.Query()
	q.Set("select", "id")
	q.Set("limit", "1")
	req.URL.RawQuery = q.Encode()

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		return fmt.Errorf("API returned %d: %s", resp.StatusCode, string(body))
	}

	return nil
}

// ValidateForm reports the first blank field of an entry form, or nil when all are filled.
func ValidateForm(title, mood, content string) error {
	switch {
	case strings.TrimSpace(title) == "":
		return fmt.Errorf("title is required")
	case strings.TrimSpace(mood) == "":
		return fmt.Errorf("mood is required")
	case strings.TrimSpace(content) == "":
		return fmt.Errorf("entry is required")
	}
	return nil
}
