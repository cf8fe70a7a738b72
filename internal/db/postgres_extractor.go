package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/tordrt/dwhgen/internal/schema"
)

// InformationSchemaExtractor extracts a schema through the standard
// information_schema views. It serves PostgreSQL and DuckDB.
type InformationSchemaExtractor struct {
	db         *sql.DB
	schemaName string
}

// NewPostgresExtractor creates a new PostgreSQL schema extractor
func NewPostgresExtractor(client *Client, schemaName string) *InformationSchemaExtractor {
	if schemaName == "" {
		schemaName = DialectPostgres.DefaultSchema()
	}
	return &InformationSchemaExtractor{db: client.GetDB(), schemaName: schemaName}
}

// ExtractSchema extracts the complete schema for specified tables
// If tables is empty, extracts all tables in the schema
func (e *InformationSchemaExtractor) ExtractSchema(ctx context.Context, tables []string) (*schema.Schema, error) {
	tableNames, err := e.getTableNames(ctx, tables)
	if err != nil {
		return nil, fmt.Errorf("failed to get table names: %w", err)
	}

	return extractTables(ctx, e.schemaName, tableNames, e.extractTable)
}

// getTableNames returns the list of tables to extract
func (e *InformationSchemaExtractor) getTableNames(ctx context.Context, requestedTables []string) ([]string, error) {
	if len(requestedTables) > 0 {
		return requestedTables, nil
	}

	query := `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = $1 AND table_type = 'BASE TABLE'
		ORDER BY table_name
	`

	return queryStrings(ctx, e.db, query, e.schemaName)
}

// extractTable extracts all information for a single table
func (e *InformationSchemaExtractor) extractTable(ctx context.Context, tableName string) (*schema.Table, error) {
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
func (e *InformationSchemaExtractor) extractColumns(ctx context.Context, tableName string) ([]*schema.Column, error) {
	query := `
		SELECT
			column_name,
			data_type,
			is_nullable,
			character_maximum_length,
			numeric_precision,
			numeric_scale
		FROM information_schema.columns
		WHERE table_schema = $1 AND table_name = $2
		ORDER BY ordinal_position
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

// extractPrimaryKey extracts the primary key constraint
func (e *InformationSchemaExtractor) extractPrimaryKey(ctx context.Context, tableName string) (schema.PrimaryKeyConstraint, error) {
	query := `
		SELECT tc.constraint_name, kcu.column_name
		FROM information_schema.table_constraints AS tc
		JOIN information_schema.key_column_usage AS kcu
			ON tc.constraint_name = kcu.constraint_name
			AND tc.table_schema = kcu.table_schema
			AND tc.table_name = kcu.table_name
		WHERE tc.constraint_type = 'PRIMARY KEY'
			AND tc.table_schema = $1
			AND tc.table_name = $2
		ORDER BY kcu.ordinal_position
	`

	var pk schema.PrimaryKeyConstraint

	rows, err := e.db.QueryContext(ctx, query, e.schemaName, tableName)
	if err != nil {
		return pk, err
	}
	defer rows.Close()

	for rows.Next() {
		var constraintName, columnName string
		if err := rows.Scan(&constraintName, &columnName); err != nil {
			return pk, err
		}
		pk.Name = constraintName
		pk.ColumnNames = append(pk.ColumnNames, columnName)
	}

	return pk, rows.Err()
}

// extractForeignKeys extracts foreign key constraints, pairing every
// referencing column with the referenced column at the same position
func (e *InformationSchemaExtractor) extractForeignKeys(ctx context.Context, tableName string) ([]schema.ForeignKeyConstraint, error) {
	query := `
		SELECT
			kcu.constraint_name,
			kcu.column_name,
			ukcu.table_schema AS foreign_table_schema,
			ukcu.table_name AS foreign_table_name,
			ukcu.column_name AS foreign_column_name
		FROM information_schema.referential_constraints AS rc
		JOIN information_schema.key_column_usage AS kcu
			ON kcu.constraint_schema = rc.constraint_schema
			AND kcu.constraint_name = rc.constraint_name
		JOIN information_schema.key_column_usage AS ukcu
			ON ukcu.constraint_schema = rc.unique_constraint_schema
			AND ukcu.constraint_name = rc.unique_constraint_name
			AND ukcu.ordinal_position = kcu.position_in_unique_constraint
		WHERE kcu.table_schema = $1
			AND kcu.table_name = $2
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
