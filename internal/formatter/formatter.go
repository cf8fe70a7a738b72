// Package formatter writes human-readable descriptions of physical models and
// their mappings.
package formatter

import (
	"fmt"
	"strings"

	"github.com/tordrt/dwhgen/internal/schema"
)

// Formatter writes a physical model.
type Formatter interface {
	Format(m *schema.Model) error
}

// IncomingReference is a foreign key of another table pointing at a table.
type IncomingReference struct {
	SchemaName         string
	TableName          string
	ConstraintName     string
	ColumnNames        []string
	ForeignColumnNames []string
}

// findIncomingReferences finds all foreign keys pointing to schemaName.tableName.
func findIncomingReferences(m *schema.Model, schemaName, tableName string) []IncomingReference {
	var incoming []IncomingReference

	for _, s := range m.Schemas {
		for _, t := range s.Tables {
			for _, fk := range t.ForeignKeys {
				if fk.ForeignSchemaName != schemaName || fk.ForeignTableName != tableName {
					continue
				}
				incoming = append(incoming, IncomingReference{
					SchemaName:         s.Name,
					TableName:          t.Name,
					ConstraintName:     fk.Name,
					ColumnNames:        fk.ColumnNames,
					ForeignColumnNames: fk.ForeignColumnNames,
				})
			}
		}
	}

	return incoming
}

func columnConstraints(col *schema.Column, table *schema.Table) []string {
	var constraints []string
	if table.IsPrimaryKeyColumn(col.Name) {
		constraints = append(constraints, "PK")
	}
	if !col.Nullable {
		constraints = append(constraints, "NOT NULL")
	}
	return constraints
}

func describeForeignKey(fk schema.ForeignKeyConstraint) string {
	return fmt.Sprintf("%s (%s) → %s (%s)",
		fk.Name,
		strings.Join(fk.ColumnNames, ", "),
		schema.QualifiedName(fk.ForeignSchemaName, fk.ForeignTableName),
		strings.Join(fk.ForeignColumnNames, ", "))
}
