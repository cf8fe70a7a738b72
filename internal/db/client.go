package db

import (
	"context"
	"database/sql"
	"fmt"
)

// Dialect identifies a source database engine.
type Dialect string

// Supported dialects.
const (
	DialectPostgres Dialect = "postgres"
	DialectMySQL    Dialect = "mysql"
	DialectSQLite   Dialect = "sqlite"
	DialectDuckDB   Dialect = "duckdb"
)

// driverName returns the database/sql driver registered for the dialect.
func (d Dialect) driverName() (string, error) {
	switch d {
	case DialectPostgres:
		return "pgx", nil
	case DialectMySQL:
		return "mysql", nil
	case DialectSQLite:
		return "sqlite3", nil
	case DialectDuckDB:
		return "duckdb", nil
	default:
		return "", fmt.Errorf("unsupported dialect %q", string(d))
	}
}

// DefaultSchema returns the schema extracted when none is given. MySQL has
// none; the database named in the connection string is used instead.
func (d Dialect) DefaultSchema() string {
	switch d {
	case DialectPostgres:
		return "public"
	case DialectSQLite, DialectDuckDB:
		return "main"
	default:
		return ""
	}
}

// Client manages the connection to a source database
type Client struct {
	db      *sql.DB
	dialect Dialect
}

// Open connects to a database of the given dialect and verifies the connection.
func Open(ctx context.Context, dialect Dialect, dsn string) (*Client, error) {
	driver, err := dialect.driverName()
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test the connection
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Client{db: db, dialect: dialect}, nil
}

// NewClient wraps an already opened database.
func NewClient(db *sql.DB, dialect Dialect) *Client {
	return &Client{db: db, dialect: dialect}
}

// Close closes the database connection
func (c *Client) Close() error {
	return c.db.Close()
}

// GetDB returns the underlying database connection
func (c *Client) GetDB() *sql.DB {
	return c.db
}

// Dialect returns the dialect the client was opened with.
func (c *Client) Dialect() Dialect {
	return c.dialect
}
