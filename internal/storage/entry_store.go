// ABOUTME: Interface definition and shared error type for diary entry storage.
// ABOUTME: Opens the configured backend (REST, Postgres, SQLite) behind one contract.
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/2389-research/diary/internal/models"
)

// DefaultTable is the table holding diary entries in every backend.
const DefaultTable = "diary_entries"

// Backend names accepted by Open.
const (
	BackendREST     = "rest"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
)

// Operation names carried by StoreError.
const (
	OpList   = "list"
	OpInsert = "insert"
	OpDelete = "delete"
)

// ErrNotConfigured is returned by every operation of a store opened without credentials.
var ErrNotConfigured = errors.New("entry store is not configured")

// EntryStore defines the three round trips made against the entries table.
type EntryStore interface {
	// ListAll returns every entry ordered by CreatedAt descending.
	ListAll(ctx context.Context) ([]*models.DiaryEntry, error)

	// Insert persists a new entry. The store assigns its ID and CreatedAt.
	Insert(ctx context.Context, draft models.Draft) error

	// DeleteByID removes the entry with the given ID. A missing ID is not an error.
	DeleteByID(ctx context.Context, id string) error

	// Close releases any resources held by the store.
	Close() error
}

// StoreError is the single error kind returned by EntryStore operations.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s entries: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// storeErr wraps err as a *StoreError unless it already is one.
func storeErr(op string, err error) error {
	var se *StoreError
	if errors.As(err, &se) {
		return err
	}
	return &StoreError{Op: op, Err: err}
}

// Options selects and configures a backend.
type Options struct {
	Backend string
	URL     string // REST endpoint
	AnonKey string // REST public access key
	Table   string
	DSN     string // Postgres connection string
	Path    string // SQLite database file
}

// Open returns the store described by opts. Missing REST credentials or a missing
// Postgres DSN produce a store whose operations fail with ErrNotConfigured.
func Open(opts Options) (EntryStore, error) {
	if opts.Table == "" {
		opts.Table = DefaultTable
	}

	switch opts.Backend {
	case "", BackendREST:
		if opts.URL == "" || opts.AnonKey == "" {
			return NewUnconfiguredStore(), nil
		}
		return NewRESTStore(opts.URL, opts.AnonKey, opts.Table), nil
	case BackendPostgres:
		if opts.DSN == "" {
			return NewUnconfiguredStore(), nil
		}
		return OpenPostgresStore(opts.DSN, opts.Table)
	case BackendSQLite:
		if opts.Path == "" {
			return nil, fmt.Errorf("sqlite backend requires a database path")
		}
		return OpenSQLiteStore(opts.Path, opts.Table)
	default:
		return nil, fmt.Errorf("unknown store backend %q", opts.Backend)
	}
}

// UnconfiguredStore stands in for a store whose credentials are absent.
type UnconfiguredStore struct{}

// NewUnconfiguredStore creates a store that fails every operation with ErrNotConfigured.
func NewUnconfiguredStore() *UnconfiguredStore {
	return &UnconfiguredStore{}
}

func (UnconfiguredStore) ListAll(context.Context) ([]*models.DiaryEntry, error) {
	return nil, storeErr(OpList, ErrNotConfigured)
}

func (UnconfiguredStore) Insert(context.Context, models.Draft) error {
	return storeErr(OpInsert, ErrNotConfigured)
}

func (UnconfiguredStore) DeleteByID(context.Context, string) error {
	return storeErr(OpDelete, ErrNotConfigured)
}

func (UnconfiguredStore) Close() error {
	return nil
}
