// ABOUTME: Tests for the PostgREST entry store using an httptest server.
// ABOUTME: Covers listing order, insert payloads, delete filters, auth headers, and failures.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/2389-research/diary/internal/models"
)

func TestRESTStoreListAll(t *testing.T) {
	var receivedPath string
	var receivedKey string
	var receivedAuth string
	var receivedOrder string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		receivedPath = r.URL.Path
		receivedKey = r.Header.Get("apikey")
		receivedAuth = r.Header.Get("Authorization")
		receivedOrder = r.URL.Query().Get("order")

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"id":"b","created_at":"2024-03-05T11:00:00.123456+00:00","title":"B","content":"second","mood":"calm","user_id":"default-user"},
			{"id":7,"created_at":"2024-03-05T10:00:00","title":"A","content":"first","mood":"ok","user_id":"default-user"}
		]`))
	}))
	defer server.Close()

	store := NewRESTStore(server.URL+"/", "anon-key", "")
	entries, err := store.ListAll(context.Background())
	if err != nil {
		t.Fatalf("ListAll error: %v", err)
	}

	if receivedPath != "/rest/v1/diary_entries" {
		t.Errorf("expected path /rest/v1/diary_entries, got %s", receivedPath)
	}
	if receivedKey != "anon-key" {
		t.Errorf("expected apikey header, got %q", receivedKey)
	}
	if receivedAuth != "Bearer anon-key" {
		t.Errorf("expected bearer auth, got %q", receivedAuth)
	}
	if receivedOrder != "created_at.desc" {
		t.Errorf("expected order=created_at.desc, got %q", receivedOrder)
	}

	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].ID != "b" || entries[1].ID != "7" {
		t.Errorf("unexpected ids: %s, %s", entries[0].ID, entries[1].ID)
	}
	if entries[0].Mood != "calm" || entries[0].Content != "second" {
		t.Errorf("unexpected first entry: %+v", entries[0])
	}
	if !models.IsNewestFirst(entries) {
		t.Error("expected entries newest first")
	}
}

func TestRESTStoreListAllSortsOutOfOrderRows(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[
			{"id":"old","created_at":"2024-03-01T10:00:00Z","title":"o","content":"o","mood":"o","user_id":"u"},
			{"id":"new","created_at":"2024-03-02T10:00:00Z","title":"n","content":"n","mood":"n","user_id":"u"}
		]`))
	}))
	defer server.Close()

	entries, err := NewRESTStore(server.URL, "k", "").ListAll(context.Background())
	if err != nil {
		t.Fatalf("ListAll error: %v", err)
	}
	if entries[0].ID != "new" {
		t.Errorf("expected newest entry first, got %s", entries[0].ID)
	}
}

func TestRESTStoreListAllError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Invalid API key"}`))
	}))
	defer server.Close()

	entries, err := NewRESTStore(server.URL, "bad", "").ListAll(context.Background())
	if err == nil {
		t.Fatal("expected error for 401 response")
	}
	if entries != nil {
		t.Error("expected no partial result on failure")
	}
	var se *StoreError
	if !errors.As(err, &se) {
		t.Fatalf("expected *StoreError, got %T", err)
	}
	if se.Op != OpList {
		t.Errorf("expected op %q, got %q", OpList, se.Op)
	}
}

func TestRESTStoreListAllBadJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer server.Close()

	_, err := NewRESTStore(server.URL, "k", "").ListAll(context.Background())
	if err == nil {
		t.Fatal("expected decode error")
	}
}

func TestRESTStoreInsert(t *testing.T) {
	var receivedBody []byte
	var receivedPrefer string
	var receivedContentType string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.URL.Path != "/rest/v1/my_entries" {
			t.Errorf("expected custom table path, got %s", r.URL.Path)
		}
		receivedPrefer = r.Header.Get("Prefer")
		receivedContentType = r.Header.Get("Content-Type")
		receivedBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	store := NewRESTStore(server.URL, "k", "my_entries")
	err := store.Insert(context.Background(), models.NewDraft("T", "ok", "hi\nthere", ""))
	if err != nil {
		t.Fatalf("Insert error: %v", err)
	}

	if receivedPrefer != "return=minimal" {
		t.Errorf("expected Prefer return=minimal, got %q", receivedPrefer)
	}
	if receivedContentType != "application/json" {
		t.Errorf("expected application/json, got %q", receivedContentType)
	}

	var rows []restInsertRow
	if err := json.Unmarshal(receivedBody, &rows); err != nil {
		t.Fatalf("failed to unmarshal request body: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected one row, got %d", len(rows))
	}
	want := restInsertRow{Title: "T", Content: "hi\nthere", Mood: "ok", UserID: models.DefaultUserID}
	if rows[0] != want {
		t.Errorf("got %+v, want %+v", rows[0], want)
	}
}

func TestRESTStoreInsertError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"null value in column \"title\""}`))
	}))
	defer server.Close()

	err := NewRESTStore(server.URL, "k", "").Insert(context.Background(), models.NewDraft("", "", "", ""))
	var se *StoreError
	if !errors.As(err, &se) || se.Op != OpInsert {
		t.Fatalf("expected insert StoreError, got %v", err)
	}
}

func TestRESTStoreDeleteByID(t *testing.T) {
	var receivedFilter string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("expected DELETE, got %s", r.Method)
		}
		receivedFilter = r.URL.Query().Get("id")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	store := NewRESTStore(server.URL, "k", "")
	if err := store.DeleteByID(context.Background(), "abc-123"); err != nil {
		t.Fatalf("DeleteByID error: %v", err)
	}
	if receivedFilter != "eq.abc-123" {
		t.Errorf("expected id=eq.abc-123, got %q", receivedFilter)
	}

	// A second delete of the same id matches no rows and still succeeds.
	if err := store.DeleteByID(context.Background(), "abc-123"); err != nil {
		t.Fatalf("second DeleteByID error: %v", err)
	}
}

func TestRESTStoreUnreachable(t *testing.T) {
	store := NewRESTStore("http://localhost:1", "k", "")
	err := store.DeleteByID(context.Background(), "x")
	var se *StoreError
	if !errors.As(err, &se) || se.Op != OpDelete {
		t.Fatalf("expected delete StoreError, got %v", err)
	}
}

func TestRESTStoreCancelledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewRESTStore(server.URL, "k", "").ListAll(ctx); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"https://x.supabase.co", "https://x.supabase.co"},
		{"https://x.supabase.co/", "https://x.supabase.co"},
		{"https://x.supabase.co/rest/v1/", "https://x.supabase.co"},
		{"  https://x.supabase.co/rest/v1 ", "https://x.supabase.co"},
	}
	for _, tt := range tests {
		if got := NormalizeURL(tt.in); got != tt.want {
			t.Errorf("NormalizeURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseTimestamp(t *testing.T) {
	for _, s := range []string{
		"2024-03-05T10:00:00Z",
		"2024-03-05T10:00:00.123456+00:00",
		"2024-03-05T10:00:00.5",
		"2024-03-05 10:00:00+00:00",
	} {
		if _, err := parseTimestamp(s); err != nil {
			t.Errorf("parseTimestamp(%q) error: %v", s, err)
		}
	}
	if _, err := parseTimestamp("yesterday"); err == nil {
		t.Error("expected error for unparseable timestamp")
	}
}

func TestRESTStoreLeavesDeadlinesToContext(t *testing.T) {
	store := NewRESTStore("https://project.supabase.co", "k", "")
	if store.client.Timeout != 0 {
		t.Errorf("expected no client timeout, got %v", store.client.Timeout)
	}
}
