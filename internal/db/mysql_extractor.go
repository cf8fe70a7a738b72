package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/tordrt/dwhgen/internal/schema"
)

// mysqlPrimaryKeyName is the name MySQL gives every primary key.
const mysqlPrimaryKeyName = "PRIMARY"

// MySQLExtractor handles schema extraction from MySQL
type MySQLExtractor struct {
	db         *sql.DB
	schemaName string
}

// NewMySQLExtractor creates a new MySQL schema extractor. An empty schemaName
// means the current database of the connection.
func NewMySQLExtractor(client *Client, schemaName string) *MySQLExtractor {
	return &MySQLExtractor{db: client.GetDB(), schemaName: schemaName}
}

// ExtractSchema extracts the complete schema for specified tables
// If tables is empty, extracts all tables in the schema
func (e *MySQLExtractor) ExtractSchema(ctx context.Context, tables []string) (*schema.Schema, error) {
	if e.schemaName == "" {
		name, err := e.currentDatabase(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to determine current database: %w", err)
		}
		e.schemaName = name
	}

	tableNames, err := e.getTableNames(ctx, tables)
	if err != nil {
		return nil, fmt.Errorf("failed to get table names: %w", err)
	}

	return extractTables(ctx, e.schemaName, tableNames, e.extractTable)
}

func (e *MySQLExtractor) currentDatabase(ctx context.Context) (string, error) {
	var name sql.NullString
	if err := e.db.QueryRowContext(ctx, "SELECT DATABASE()").Scan(&name); err != nil {
		return "", err
	}
	if !name.Valid || name.String == "" {
		return "", fmt.Errorf("no database selected in connection string")
	}
	return name.String, nil
}

// getTableNames returns the list of tables to extract
func (e *MySQLExtractor) getTableNames(ctx context.Context, requestedTables []string) ([]string, error) {
	if len(requestedTables) > 0 {
		return requestedTables, nil
	}

	query := `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = ? AND table_type = 'BASE TABLE'
		ORDER BY table_name
	`

	return queryStrings(ctx, e.db, query, e.schemaName)
}

// extractTable extracts all information for a single table
func (e *MySQLExtractor) extractTable(ctx context.Context, tableName string) (*schema.Table, error) {
	table := &schema.Table{Name: tableName}

	columns, err := e.extractColumns(ctx, tableName)
	if err != nil {
		return nil, fmt.Errorf("failed to extract columns: %w", err)
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("table %s.%s not found", e.schemaName, tableName)
	}
	table.Columns = columns

	pk, err := e.extractPrimaryKey(ctx, tableName)
	if err != nil {
		return nil, fmt.Errorf("failed to extract primary key: %w", err)
	}
	table.PrimaryKey = pk

	fks, err := e.extractForeignKeys(ctx, tableName)
	if err != nil {
		return nil, fmt.Errorf("failed to extract foreign keys: %w", err)
	}
	table.ForeignKeys = fks

	return table, nil
}

// extractColumns extracts column information for a table
func (e *MySQLExtractor) extractColumns(ctx context.Context, tableName string) ([]*schema.Column, error) {
	query := `
		SELECT
			c.column_name,
			c.data_type,
			c.is_nullable,
			c.character_maximum_length,
			c.numeric_precision,
			c.numeric_scale
		FROM information_schema.columns c
		WHERE c.table_schema = ? AND c.table_name = ?
		ORDER BY c.ordinal_position
	`

	rows, err := e.db.QueryContext(ctx, query, e.schemaName, tableName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []*schema.Column
	for rows.Next() {
		var name, dataType, nullable string
		var charLength, precision, scale sql.NullInt64

		if err := rows.Scan(&name, &dataType, &nullable, &charLength, &precision, &scale); err != nil {
			return nil, err
		}

		columns = append(columns, catalogColumn(name, dataType, nullable, charLength, precision, scale))
	}

	return columns, rows.Err()
}

// extractPrimaryKey extracts the primary key. MySQL calls every primary key
// PRIMARY, so the constraint is named pk_<table> instead.
func (e *MySQLExtractor) extractPrimaryKey(ctx context.Context, tableName string) (schema.PrimaryKeyConstraint, error) {
	query := `
		SELECT column_name
		FROM information_schema.key_column_usage
		WHERE table_schema = ?
			AND table_name = ?
			AND constraint_name = ?
		ORDER BY ordinal_position
	`

	pk := schema.PrimaryKeyConstraint{Name: "pk_" + tableName}

	columns, err := queryStrings(ctx, e.db, query, e.schemaName, tableName, mysqlPrimaryKeyName)
	if err != nil {
		return pk, err
	}
	pk.ColumnNames = columns

	return pk, nil
}

// extractForeignKeys extracts foreign key constraints
func (e *MySQLExtractor) extractForeignKeys(ctx context.Context, tableName string) ([]schema.ForeignKeyConstraint, error) {
	query := `
		SELECT
			kcu.constraint_name,
			kcu.column_name,
			kcu.referenced_table_schema,
			kcu.referenced_table_name,
			kcu.referenced_column_name
		FROM information_schema.key_column_usage kcu
		WHERE kcu.table_schema = ?
			AND kcu.table_name = ?
			AND kcu.referenced_table_name IS NOT NULL
		ORDER BY kcu.constraint_name, kcu.ordinal_position
	`

	rows, err := e.db.QueryContext(ctx, query, e.schemaName, tableName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cols []foreignKeyColumn
	for rows.Next() {
		var c foreignKeyColumn
		if err := rows.Scan(&c.constraintName, &c.columnName, &c.foreignSchema, &c.foreignTable, &c.foreignColumn); err != nil {
			return nil, err
		}
		cols = append(cols, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return groupForeignKeys(cols), nil
}
