package db

import (
	"context"

	_ "github.com/marcboeker/go-duckdb"
)

// NewDuckDBClient opens the DuckDB database file at path. An empty path opens
// an in-memory database.
func NewDuckDBClient(ctx context.Context, path string) (*Client, error) {
	return Open(ctx, DialectDuckDB, path)
}

// NewDuckDBExtractor creates an extractor for a DuckDB schema. DuckDB exposes
// the same information_schema views as PostgreSQL.
func NewDuckDBExtractor(client *Client, schemaName string) *InformationSchemaExtractor {
	if schemaName == "" {
		schemaName = DialectDuckDB.DefaultSchema()
	}
	return &InformationSchemaExtractor{db: client.GetDB(), schemaName: schemaName}
}
