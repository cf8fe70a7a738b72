//go:build integration
// +build integration

package dwhgen

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/mattn/go-sqlite3"
)

func createSQLiteDatabase(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "shop.db")
	conn, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer func() { _ = conn.Close() }()

	for _, stmt := range []string{
		`CREATE TABLE users (id INTEGER PRIMARY KEY, email VARCHAR(100) NOT NULL)`,
		`CREATE TABLE orders (id INTEGER PRIMARY KEY, user_id INTEGER NOT NULL REFERENCES users (id), total DECIMAL(10,2))`,
		`CREATE TABLE audit_log (id INTEGER PRIMARY KEY, entry TEXT)`,
	} {
		_, err := conn.Exec(stmt)
		require.NoError(t, err)
	}
	return path
}

func TestExtractSchema(t *testing.T) {
	url := "sqlite://" + createSQLiteDatabase(t)

	tests := []struct {
		name       string
		opts       *Options
		wantTables []string
	}{
		{name: "all tables", wantTables: []string{"audit_log", "orders", "users"}},
		{name: "specific tables", opts: &Options{Tables: []string{"users"}}, wantTables: []string{"users"}},
		{name: "excluded tables", opts: &Options{ExcludeTables: []string{"audit_log"}}, wantTables: []string{"orders", "users"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := ExtractSchema(context.Background(), url, tt.opts)
			require.NoError(t, err)

			var names []string
			for _, table := range s.Tables {
				names = append(names, table.Name)
			}
			assert.Equal(t, tt.wantTables, names)
		})
	}
}

func TestGenerateFromDatabase(t *testing.T) {
	url := "sqlite://" + createSQLiteDatabase(t)

	a, err := GenerateFromDatabase(context.Background(), url, &Options{ExcludeTables: []string{"audit_log"}})
	require.NoError(t, err)

	ddl, ok := a.File(FileStagingDDL)
	require.True(t, ok)
	assert.Contains(t, ddl.Content, "CREATE TABLE [main_stg].[orders] (")
	assert.Contains(t, ddl.Content, "[total] decimal(10,2) NULL")

	etl, _ := a.File(FileHDAETL)
	assert.Contains(t, etl.Content, "FROM [main].[orders]")
}
