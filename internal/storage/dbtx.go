// ABOUTME: Minimal database/sql abstraction shared by the SQL-backed entry stores.
// ABOUTME: Validates table identifiers before they are interpolated into statements.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
)

// DBTX is the subset of database/sql used by the SQL stores.
// Both *sql.DB and *sql.Tx satisfy this interface.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,62}$`)

// checkTable rejects table names that cannot be used as a bare SQL identifier.
func checkTable(table string) error {
	if !identPattern.MatchString(table) {
		return fmt.Errorf("invalid table name %q", table)
	}
	return nil
}
