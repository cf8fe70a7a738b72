package db

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"github.com/tordrt/dwhgen/internal/schema"
)

// SQLiteExtractor handles schema extraction from SQLite. SQLite keeps no
// constraint names, so primary keys are named pk_<table> and foreign keys
// fk_<table>_<n>.
type SQLiteExtractor struct {
	db         *sql.DB
	schemaName string
}

// NewSQLiteExtractor creates a new SQLite schema extractor. schemaName is the
// name given to the extracted schema; empty means "main".
func NewSQLiteExtractor(client *Client, schemaName string) *SQLiteExtractor {
	if schemaName == "" {
		schemaName = DialectSQLite.DefaultSchema()
	}
	return &SQLiteExtractor{db: client.GetDB(), schemaName: schemaName}
}

// ExtractSchema extracts the complete schema for specified tables
// If tables is empty, extracts all tables in the database
func (e *SQLiteExtractor) ExtractSchema(ctx context.Context, tables []string) (*schema.Schema, error) {
	tableNames, err := e.getTableNames(ctx, tables)
	if err != nil {
		return nil, fmt.Errorf("failed to get table names: %w", err)
	}

	return extractTables(ctx, e.schemaName, tableNames, e.extractTable)
}

// getTableNames returns the list of tables to extract
func (e *SQLiteExtractor) getTableNames(ctx context.Context, requestedTables []string) ([]string, error) {
	if len(requestedTables) > 0 {
		return requestedTables, nil
	}

	query := `
		SELECT name
		FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
		ORDER BY name
	`

	return queryStrings(ctx, e.db, query)
}

// extractTable extracts all information for a single table
func (e *SQLiteExtractor) extractTable(ctx context.Context, tableName string) (*schema.Table, error) {
	columns, pk, err := e.extractColumns(ctx, tableName)
	if err != nil {
		return nil, fmt.Errorf("failed to extract columns: %w", err)
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("table %s not found", tableName)
	}

	fks, err := e.extractForeignKeys(ctx, tableName)
	if err != nil {
		return nil, fmt.Errorf("failed to extract foreign keys: %w", err)
	}

	return &schema.Table{
		Name:        tableName,
		Columns:     columns,
		PrimaryKey:  schema.PrimaryKeyConstraint{Name: "pk_" + tableName, ColumnNames: pk},
		ForeignKeys: fks,
	}, nil
}

// extractColumns reads PRAGMA table_info and returns the columns together
// with the primary key columns in key order.
func (e *SQLiteExtractor) extractColumns(ctx context.Context, tableName string) ([]*schema.Column, []string, error) {
	rows, err := e.db.QueryContext(ctx, pragma("table_info", tableName))
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	type pkColumn struct {
		name     string
		position int
	}

	var columns []*schema.Column
	var pkColumns []pkColumn

	for rows.Next() {
		var cid int
		var name, colType string
		var notNull, pkPosition int
		var defaultValue sql.NullString

		if err := rows.Scan(&cid, &name, &colType, &notNull, &defaultValue, &pkPosition); err != nil {
			return nil, nil, err
		}

		col := parseColumnType(colType)
		col.Name = name
		col.Nullable = notNull == 0 && pkPosition == 0
		columns = append(columns, col)

		if pkPosition > 0 {
			pkColumns = append(pkColumns, pkColumn{name: name, position: pkPosition})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	sort.Slice(pkColumns, func(i, j int) bool {
		return pkColumns[i].position < pkColumns[j].position
	})
	pk := make([]string, len(pkColumns))
	for i, c := range pkColumns {
		pk[i] = c.name
	}

	return columns, pk, nil
}

// extractForeignKeys reads PRAGMA foreign_key_list. A reference without
// explicit columns points at the primary key of the referenced table.
func (e *SQLiteExtractor) extractForeignKeys(ctx context.Context, tableName string) ([]schema.ForeignKeyConstraint, error) {
	rows, err := e.db.QueryContext(ctx, pragma("foreign_key_list", tableName))
	if err != nil {
		return nil, err
	}

	var cols []foreignKeyColumn
	for rows.Next() {
		var id, seq int
		var targetTable, fromCol, onUpdate, onDelete, match string
		var toCol sql.NullString

		if err := rows.Scan(&id, &seq, &targetTable, &fromCol, &toCol, &onUpdate, &onDelete, &match); err != nil {
			_ = rows.Close()
			return nil, err
		}

		cols = append(cols, foreignKeyColumn{
			constraintName: fmt.Sprintf("fk_%s_%d", tableName, id),
			columnName:     fromCol,
			foreignSchema:  e.schemaName,
			foreignTable:   targetTable,
			foreignColumn:  toCol.String,
		})
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, err
	}
	_ = rows.Close()

	fks := groupForeignKeys(cols)
	for i := range fks {
		if !hasImplicitReference(fks[i]) {
			continue
		}
		_, pk, err := e.extractColumns(ctx, fks[i].ForeignTableName)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %s: %w", fks[i].Name, err)
		}
		if len(pk) != len(fks[i].ColumnNames) {
			return nil, fmt.Errorf("foreign key %s does not match the primary key of %s", fks[i].Name, fks[i].ForeignTableName)
		}
		fks[i].ForeignColumnNames = pk
	}

	return fks, nil
}

func hasImplicitReference(fk schema.ForeignKeyConstraint) bool {
	for _, c := range fk.ForeignColumnNames {
		if c == "" {
			return true
		}
	}
	return false
}

// pragma builds a table-valued PRAGMA statement with a quoted table name.
func pragma(name, tableName string) string {
	return fmt.Sprintf(`PRAGMA %s("%s")`, name, strings.ReplaceAll(tableName, `"`, `""`))
}
