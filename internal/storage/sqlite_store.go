// ABOUTME: SQLite entry store for running the diary against a local database file.
// ABOUTME: Assigns UUID ids and nanosecond timestamps the way the hosted table does.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/2389-research/diary/internal/models"
)

// sqliteSchema creates the entries table when it does not exist yet.
const sqliteSchema = `
CREATE TABLE IF NOT EXISTS %[1]s (
    id TEXT PRIMARY KEY,
    created_at INTEGER NOT NULL,
    title TEXT NOT NULL,
    content TEXT NOT NULL,
    mood TEXT NOT NULL,
    user_id TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS %[1]s_created_at_idx ON %[1]s (created_at);
`

// SQLiteStore keeps entries in a local SQLite database.
type SQLiteStore struct {
	db    *sql.DB
	table string
	now   func() time.Time
}

// OpenSQLiteStore opens (creating if needed) the database at path and ensures the table exists.
// path may be ":memory:" for a throwaway database.
func OpenSQLiteStore(path, table string) (*SQLiteStore, error) {
	if table == "" {
		table = DefaultTable
	}
	if err := checkTable(table); err != nil {
		return nil, err
	}

	dsn := path
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		dsn = "file:" + path + "?_journal_mode=WAL&_busy_timeout=5000"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}
	if path == ":memory:" {
		// every connection to :memory: is a separate database
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec(fmt.Sprintf(sqliteSchema, table)); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create entries table: %w", err)
	}

	return &SQLiteStore{db: db, table: table, now: time.Now}, nil
}

// ListAll returns all entries, newest first; equal timestamps fall back to insertion order.
func (s *SQLiteStore) ListAll(ctx context.Context) ([]*models.DiaryEntry, error) {
	query := fmt.Sprintf(`
	SELECT id, created_at, title, content, mood, user_id
	FROM %s
	ORDER BY created_at DESC, rowid DESC
	`, s.table)

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, storeErr(OpList, fmt.Errorf("failed to select entries: %w", err))
	}
	defer rows.Close()

	result := make([]*models.DiaryEntry, 0)
	for rows.Next() {
		var e models.DiaryEntry
		var createdAt int64
		if err := rows.Scan(&e.ID, &createdAt, &e.Title, &e.Content, &e.Mood, &e.UserID); err != nil {
			return nil, storeErr(OpList, err)
		}
		e.CreatedAt = time.Unix(0, createdAt)
		result = append(result, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr(OpList, err)
	}
	return result, nil
}

// Insert stores a new entry with a generated UUID and the current time.
func (s *SQLiteStore) Insert(ctx context.Context, draft models.Draft) error {
	query := fmt.Sprintf(`
	INSERT INTO %s (id, created_at, title, content, mood, user_id)
	VALUES (?, ?, ?, ?, ?, ?)
	`, s.table)

	_, err := s.db.ExecContext(ctx, query,
		uuid.New().String(), s.now().UnixNano(), draft.Title, draft.Content, draft.Mood, draft.UserID)
	if err != nil {
		return storeErr(OpInsert, fmt.Errorf("failed to insert entry: %w", err))
	}
	return nil
}

// DeleteByID removes the entry with the given id. Missing ids are ignored.
func (s *SQLiteStore) DeleteByID(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = ?`, s.table)
	if _, err := s.db.ExecContext(ctx, query, id); err != nil {
		return storeErr(OpDelete, fmt.Errorf("failed to delete entry: %w", err))
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
