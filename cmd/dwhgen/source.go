package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// sourceFlags are the mutually exclusive ways of naming a source database.
type sourceFlags struct {
	dbURL      string
	mysqlURL   string
	sqlitePath string
	duckdbPath string
}

func (s *sourceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&s.dbURL, "db-url", "", "PostgreSQL connection URL")
	cmd.Flags().StringVar(&s.mysqlURL, "mysql-url", "", "MySQL connection string (user:pass@tcp(host:port)/db)")
	cmd.Flags().StringVar(&s.sqlitePath, "sqlite", "", "SQLite database file path")
	cmd.Flags().StringVar(&s.duckdbPath, "duckdb", "", "DuckDB database file path")
	cmd.Flags().String("source", "", "Source database URL (postgres://, mysql://, sqlite:// or duckdb://)")
	cmd.Flags().StringP("schema", "s", "", "Database schema name (default: public for PostgreSQL, main for SQLite and DuckDB)")
	cmd.Flags().StringSliceP("tables", "t", nil, "Specific tables (comma-separated, optional)")
	cmd.Flags().StringSlice("exclude", nil, "Tables to exclude (comma-separated)")
}

// url returns the database URL given by flags, falling back to configured.
// It returns "" when neither names a database.
func (s *sourceFlags) url(configured string) (string, error) {
	var urls []string
	if s.dbURL != "" {
		urls = append(urls, s.dbURL)
	}
	if s.mysqlURL != "" {
		urls = append(urls, "mysql://"+s.mysqlURL)
	}
	if s.sqlitePath != "" {
		urls = append(urls, "sqlite://"+s.sqlitePath)
	}
	if s.duckdbPath != "" {
		urls = append(urls, "duckdb://"+s.duckdbPath)
	}

	switch len(urls) {
	case 0:
		return configured, nil
	case 1:
		return urls[0], nil
	default:
		return "", fmt.Errorf("only one of --db-url, --mysql-url, --sqlite or --duckdb can be specified")
	}
}
