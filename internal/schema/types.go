// Package schema describes a physical relational model: schemas, tables,
// columns and their primary and foreign key constraints.
package schema

import (
	"strconv"
	"strings"
)

// Model represents a complete physical model
type Model struct {
	Schemas []*Schema
}

// Schema represents a database schema
type Schema struct {
	Name   string
	Tables []*Table
}

// Table represents a database table
type Table struct {
	Name        string
	Columns     []*Column
	PrimaryKey  PrimaryKeyConstraint
	ForeignKeys []ForeignKeyConstraint
}

// Column represents a table column. Length and Scale are optional type
// parameters, e.g. nvarchar(255) or decimal(19,4).
type Column struct {
	Name     string
	DataType string
	Nullable bool
	Length   *int
	Scale    *int
}

// PrimaryKeyConstraint represents a table's primary key
type PrimaryKeyConstraint struct {
	Name        string
	ColumnNames []string
}

// ForeignKeyConstraint represents a foreign key relationship. ColumnNames and
// ForeignColumnNames are parallel lists.
type ForeignKeyConstraint struct {
	Name               string
	ColumnNames        []string
	ForeignSchemaName  string
	ForeignTableName   string
	ForeignColumnNames []string
}

// Int returns a pointer to n, for populating Column.Length and Column.Scale.
func Int(n int) *int {
	return &n
}

// TypeString returns the datatype with its length and scale, e.g. int,
// nvarchar(255) or decimal(19,4). Scale is only used together with a length.
func (c *Column) TypeString() string {
	switch {
	case c.Length != nil && c.Scale != nil:
		return c.DataType + "(" + strconv.Itoa(*c.Length) + "," + strconv.Itoa(*c.Scale) + ")"
	case c.Length != nil:
		return c.DataType + "(" + strconv.Itoa(*c.Length) + ")"
	default:
		return c.DataType
	}
}

// FullType returns the column type followed by its nullability, e.g.
// "int NULL", "nvarchar(255) NOT NULL" or "numeric(10,3) NULL".
func (c *Column) FullType() string {
	if c.Nullable {
		return c.TypeString() + " NULL"
	}
	return c.TypeString() + " NOT NULL"
}

// Schema returns the schema with the given name, or nil.
func (m *Model) Schema(name string) *Schema {
	for _, s := range m.Schemas {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// Table returns the table with the given name, or nil.
func (s *Schema) Table(name string) *Table {
	for _, t := range s.Tables {
		if t.Name == name {
			return t
		}
	}
	return nil
}

// Column returns the column with the given name, or nil.
func (t *Table) Column(name string) *Column {
	for _, c := range t.Columns {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// ColumnNames returns the names of all columns in declaration order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// IsPrimaryKeyColumn reports whether the named column is part of the primary key.
func (t *Table) IsPrimaryKeyColumn(name string) bool {
	for _, pk := range t.PrimaryKey.ColumnNames {
		if pk == name {
			return true
		}
	}
	return false
}

// PrimaryKeyColumns returns the primary key columns in table column order.
func (t *Table) PrimaryKeyColumns() []*Column {
	var cols []*Column
	for _, c := range t.Columns {
		if t.IsPrimaryKeyColumn(c.Name) {
			cols = append(cols, c)
		}
	}
	return cols
}

// HasForeignKeys reports whether the table declares any foreign key.
func (t *Table) HasForeignKeys() bool {
	return len(t.ForeignKeys) > 0
}

// QualifiedName joins name parts with dots, e.g. schema.table.
func QualifiedName(parts ...string) string {
	return strings.Join(parts, ".")
}
