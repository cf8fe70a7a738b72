package db

import (
	"context"

	_ "github.com/go-sql-driver/mysql"
)

// NewMySQLClient connects to MySQL using a go-sql-driver DSN
// (user:password@tcp(host:port)/database).
func NewMySQLClient(ctx context.Context, connString string) (*Client, error) {
	return Open(ctx, DialectMySQL, connString)
}
