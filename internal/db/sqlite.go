package db

import (
	"context"

	_ "github.com/mattn/go-sqlite3"
)

// NewSQLiteClient opens the SQLite database file at path.
func NewSQLiteClient(ctx context.Context, path string) (*Client, error) {
	return Open(ctx, DialectSQLite, path)
}
