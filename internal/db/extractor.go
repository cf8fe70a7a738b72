// Package db reads table definitions out of existing databases and turns
// them into source schemas for the staging and HDA transformers.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/tordrt/dwhgen/internal/schema"
)

// Extractor reads the definition of one database schema.
type Extractor interface {
	// ExtractSchema extracts the given tables, or every base table of the
	// schema when tables is empty.
	ExtractSchema(ctx context.Context, tables []string) (*schema.Schema, error)
}

// NewExtractor returns the extractor matching the client's dialect. An empty
// schemaName selects the dialect's default schema.
func NewExtractor(client *Client, schemaName string) (Extractor, error) {
	switch client.Dialect() {
	case DialectPostgres:
		return NewPostgresExtractor(client, schemaName), nil
	case DialectMySQL:
		return NewMySQLExtractor(client, schemaName), nil
	case DialectSQLite:
		return NewSQLiteExtractor(client, schemaName), nil
	case DialectDuckDB:
		return NewDuckDBExtractor(client, schemaName), nil
	default:
		return nil, fmt.Errorf("unsupported dialect %q", string(client.Dialect()))
	}
}

// extractTables runs extract for every table name and collects the results
// into a schema, stopping at the first failure.
func extractTables(ctx context.Context, schemaName string, tableNames []string, extract func(context.Context, string) (*schema.Table, error)) (*schema.Schema, error) {
	s := &schema.Schema{Name: schemaName, Tables: make([]*schema.Table, 0, len(tableNames))}

	for _, tableName := range tableNames {
		table, err := extract(ctx, tableName)
		if err != nil {
			return nil, fmt.Errorf("failed to extract table %s: %w", tableName, err)
		}
		s.Tables = append(s.Tables, table)
	}

	return s, nil
}

// queryStrings returns the single string column of every row.
func queryStrings(ctx context.Context, db *sql.DB, query string, args ...any) ([]string, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}

	return out, rows.Err()
}

// foreignKeyColumn is one column pair of a foreign key as returned by the
// catalog, ordered by constraint and position.
type foreignKeyColumn struct {
	constraintName string
	columnName     string
	foreignSchema  string
	foreignTable   string
	foreignColumn  string
}

// groupForeignKeys folds column pairs into constraints, keeping the order in
// which constraints first appear.
func groupForeignKeys(cols []foreignKeyColumn) []schema.ForeignKeyConstraint {
	var fks []schema.ForeignKeyConstraint
	index := make(map[string]int)

	for _, c := range cols {
		i, ok := index[c.constraintName]
		if !ok {
			i = len(fks)
			index[c.constraintName] = i
			fks = append(fks, schema.ForeignKeyConstraint{
				Name:              c.constraintName,
				ForeignSchemaName: c.foreignSchema,
				ForeignTableName:  c.foreignTable,
			})
		}
		fks[i].ColumnNames = append(fks[i].ColumnNames, c.columnName)
		fks[i].ForeignColumnNames = append(fks[i].ForeignColumnNames, c.foreignColumn)
	}

	return fks
}

// catalogColumn builds a column from an information_schema.columns row.
// Character types take their length from the maximum length, exact numeric
// types take precision and scale.
func catalogColumn(name, dataType, nullable string, charLength, precision, scale sql.NullInt64) *schema.Column {
	col := parseColumnType(dataType)
	col.Name = name
	col.Nullable = nullable == "YES"

	if col.Length != nil {
		return col
	}

	switch {
	case charLength.Valid && charLength.Int64 > 0:
		col.Length = schema.Int(int(charLength.Int64))
	case isExactNumeric(col.DataType) && precision.Valid:
		col.Length = schema.Int(int(precision.Int64))
		if scale.Valid {
			col.Scale = schema.Int(int(scale.Int64))
		}
	}

	return col
}

func isExactNumeric(dataType string) bool {
	return dataType == "numeric" || dataType == "decimal"
}

// parseColumnType splits a declared type such as VARCHAR(100) or
// decimal(10, 2) into a lower-case datatype, length and scale. Anything that
// does not parse as numbers is kept as part of the datatype.
func parseColumnType(declared string) *schema.Column {
	declared = strings.TrimSpace(declared)
	col := &schema.Column{DataType: strings.ToLower(declared)}

	open := strings.Index(declared, "(")
	if open < 0 || !strings.HasSuffix(declared, ")") {
		return col
	}

	args := strings.Split(declared[open+1:len(declared)-1], ",")
	if len(args) > 2 {
		return col
	}

	nums := make([]int, len(args))
	for i, a := range args {
		n, err := strconv.Atoi(strings.TrimSpace(a))
		if err != nil {
			return col
		}
		nums[i] = n
	}

	col.DataType = strings.ToLower(strings.TrimSpace(declared[:open]))
	col.Length = schema.Int(nums[0])
	if len(nums) == 2 {
		col.Scale = schema.Int(nums[1])
	}
	return col
}
