package transform

import (
	"fmt"

	"github.com/tordrt/dwhgen/internal/logical"
	"github.com/tordrt/dwhgen/internal/schema"
)

// LogicalTransformer turns a logical model into a physical model.
type LogicalTransformer struct {
	types *TypePolicy
}

// NewLogicalTransformer creates a transformer resolving property datatypes
// through the given policy. A nil policy means DefaultTypePolicy.
func NewLogicalTransformer(types *TypePolicy) *LogicalTransformer {
	if types == nil {
		types = DefaultTypePolicy()
	}
	return &LogicalTransformer{types: types}
}

// LogicalToPhysical transforms m with the default type policy.
func LogicalToPhysical(m *logical.Model) (*schema.Model, error) {
	return NewLogicalTransformer(nil).Transform(m)
}

// Transform validates m and returns one schema per domain and one table per
// entity. Nothing is returned when validation fails.
func (t *LogicalTransformer) Transform(m *logical.Model) (*schema.Model, error) {
	if err := logical.Validate(m); err != nil {
		return nil, fmt.Errorf("failed to transform logical model: %w", err)
	}

	out := &schema.Model{Schemas: make([]*schema.Schema, 0, len(m.Domains))}
	for _, d := range m.Domains {
		out.Schemas = append(out.Schemas, t.domainToSchema(d))
	}
	return out, nil
}

func (t *LogicalTransformer) domainToSchema(d logical.Domain) *schema.Schema {
	s := &schema.Schema{
		Name:   d.Name,
		Tables: make([]*schema.Table, 0, len(d.Entities)),
	}
	for _, e := range d.Entities {
		s.Tables = append(s.Tables, t.entityToTable(e))
	}
	return s
}

func (t *LogicalTransformer) entityToTable(e logical.Entity) *schema.Table {
	columns := make([]*schema.Column, 0, 1+len(e.Properties)+len(e.Relations))
	columns = append(columns, &schema.Column{
		Name:     logical.IDColumnName,
		DataType: TypeUniqueIdentifier,
		Nullable: false,
	})
	for _, p := range e.Properties {
		columns = append(columns, t.propertyToColumn(p))
	}
	for _, r := range e.Relations {
		columns = append(columns, relationToColumn(r))
	}

	var foreignKeys []schema.ForeignKeyConstraint
	for _, r := range e.Relations {
		foreignKeys = append(foreignKeys, relationToForeignKey(r))
	}

	return &schema.Table{
		Name:    e.Name,
		Columns: columns,
		PrimaryKey: schema.PrimaryKeyConstraint{
			Name:        "pk_" + e.Name,
			ColumnNames: []string{logical.IDColumnName},
		},
		ForeignKeys: foreignKeys,
	}
}

// propertyToColumn maps a property onto a nullable column; properties are
// always optional.
func (t *LogicalTransformer) propertyToColumn(p logical.Property) *schema.Column {
	ct := t.types.Resolve(p.DataType)
	return &schema.Column{
		Name:     p.Name,
		DataType: ct.DataType,
		Nullable: true,
		Length:   ct.Length,
		Scale:    ct.Scale,
	}
}

func relationToColumn(r logical.Relation) *schema.Column {
	return &schema.Column{
		Name:     r.ColumnName(),
		DataType: TypeUniqueIdentifier,
		Nullable: false,
	}
}

func relationToForeignKey(r logical.Relation) schema.ForeignKeyConstraint {
	return schema.ForeignKeyConstraint{
		Name:               "fk_" + r.Role + "_" + r.EntityName,
		ColumnNames:        []string{r.ColumnName()},
		ForeignSchemaName:  r.DomainName,
		ForeignTableName:   r.EntityName,
		ForeignColumnNames: []string{logical.IDColumnName},
	}
}
