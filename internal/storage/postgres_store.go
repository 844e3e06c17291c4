// ABOUTME: PostgreSQL entry store using the pgx database/sql driver.
// ABOUTME: Talks to the same diary_entries table the hosted REST gateway exposes.
package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver

	"github.com/2389-research/diary/internal/models"
)

// PostgresStore reads and writes entries over a DBTX (*sql.DB or *sql.Tx).
// The table's id and created_at columns are filled by column defaults.
type PostgresStore struct {
	db     DBTX
	closer func() error

	listQuery   string
	insertQuery string
	deleteQuery string
}

// OpenPostgresStore opens a pgx-backed connection pool for dsn. No connection is
// made until the first operation.
func OpenPostgresStore(dsn, table string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	store, err := NewPostgresStore(db, table)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	store.closer = db.Close
	return store, nil
}

// NewPostgresStore constructs a store bound to the given DBTX and table.
func NewPostgresStore(db DBTX, table string) (*PostgresStore, error) {
	if table == "" {
		table = DefaultTable
	}
	if err := checkTable(table); err != nil {
		return nil, err
	}
	return &PostgresStore{
		db: db,
		listQuery: fmt.Sprintf(`SELECT id::text, created_at, title, content, mood, user_id
			FROM %s
			ORDER BY created_at DESC`, table),
		insertQuery: fmt.Sprintf(`INSERT INTO %s (title, content, mood, user_id)
			VALUES ($1, $2, $3, $4)`, table),
		deleteQuery: fmt.Sprintf(`DELETE FROM %s WHERE id::text = $1`, table),
	}, nil
}

// ListAll returns all rows ordered by created_at descending.
func (s *PostgresStore) ListAll(ctx context.Context) ([]*models.DiaryEntry, error) {
	rows, err := s.db.QueryContext(ctx, s.listQuery)
	if err != nil {
		return nil, storeErr(OpList, fmt.Errorf("failed to select entries: %w", err))
	}
	defer rows.Close()

	result := make([]*models.DiaryEntry, 0)
	for rows.Next() {
		var e models.DiaryEntry
		if err := rows.Scan(&e.ID, &e.CreatedAt, &e.Title, &e.Content, &e.Mood, &e.UserID); err != nil {
			return nil, storeErr(OpList, err)
		}
		result = append(result, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr(OpList, err)
	}
	return result, nil
}

// Insert adds one row; id and created_at come from the column defaults.
func (s *PostgresStore) Insert(ctx context.Context, draft models.Draft) error {
	_, err := s.db.ExecContext(ctx, s.insertQuery, draft.Title, draft.Content, draft.Mood, draft.UserID)
	if err != nil {
		return storeErr(OpInsert, fmt.Errorf("db error: %w", err))
	}
	return nil
}

// DeleteByID removes the row with the given id. Zero affected rows is not an error.
func (s *PostgresStore) DeleteByID(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, s.deleteQuery, id); err != nil {
		return storeErr(OpDelete, fmt.Errorf("db error: %w", err))
	}
	return nil
}

// Close closes the connection pool when the store opened it.
func (s *PostgresStore) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer()
}
