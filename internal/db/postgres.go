package db

import (
	"context"

	// Registers the "pgx" database/sql driver.
	_ "github.com/jackc/pgx/v5/stdlib"
)

// NewPostgresClient connects to PostgreSQL using a postgres:// URL or a
// key=value connection string.
func NewPostgresClient(ctx context.Context, connString string) (*Client, error) {
	return Open(ctx, DialectPostgres, connString)
}
