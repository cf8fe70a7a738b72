// Package mapping relates a source physical model to a target physical model
// column by column. Mappings point at the physical objects they relate; they
// never copy them.
package mapping

import (
	"github.com/tordrt/dwhgen/internal/schema"
)

// Source is where a target column gets its value: either a source column
// (FromSource) or a generation rule (Synthetic). The set of variants is closed.
type Source interface {
	isSource()
}

// FromSource takes the value from a column of the source table.
type FromSource struct {
	Column *schema.Column
}

// Synthetic generates the value, e.g. from an ETL parameter or a literal.
type Synthetic struct {
	Expression string
}

func (FromSource) isSource() {}
func (Synthetic) isSource()  {}

// ColumnMapping maps one target column to its source.
type ColumnMapping struct {
	Target *schema.Column
	Source Source
}

// FromColumn creates a mapping copying source into target.
func FromColumn(target, source *schema.Column) ColumnMapping {
	return ColumnMapping{Target: target, Source: FromSource{Column: source}}
}

// Generated creates a mapping filling target from expr.
func Generated(target *schema.Column, expr string) ColumnMapping {
	return ColumnMapping{Target: target, Source: Synthetic{Expression: expr}}
}

// SourceColumn returns the source column, or nil for a synthetic mapping.
func (m ColumnMapping) SourceColumn() *schema.Column {
	if s, ok := m.Source.(FromSource); ok {
		return s.Column
	}
	return nil
}

// Expression returns the generation rule, or "" when the value comes from a
// source column.
func (m ColumnMapping) Expression() string {
	if s, ok := m.Source.(Synthetic); ok {
		return s.Expression
	}
	return ""
}

// IsSynthetic reports whether the target column has no source column.
func (m ColumnMapping) IsSynthetic() bool {
	_, ok := m.Source.(Synthetic)
	return ok
}

// StepKind identifies what a load step writes.
type StepKind string

const (
	// StepInsert copies every source row; used for flat (staging) mappings.
	StepInsert StepKind = "insert"
	// StepInsertChanges inserts new and changed rows.
	StepInsertChanges StepKind = "insert-changes"
	// StepInsertDeletes inserts a void marker for rows gone from the source.
	StepInsertDeletes StepKind = "insert-deletes"
)

// LoadStep is one ordered phase of loading a target table. The order of
// ColumnMappings is the output column order.
type LoadStep struct {
	Kind           StepKind
	Description    string
	ColumnMappings []ColumnMapping
}

// TableMapping relates one source table to one target table. Flat mappings
// use ColumnMappings, stepwise mappings use LoadSteps.
type TableMapping struct {
	Source         *schema.Table
	Target         *schema.Table
	ColumnMappings []ColumnMapping
	LoadSteps      []LoadStep
}

// SchemaMapping relates a source schema to a target schema.
type SchemaMapping struct {
	Source        *schema.Schema
	Target        *schema.Schema
	TableMappings []TableMapping
}

// ModelMapping relates a source model to the target model derived from it.
type ModelMapping struct {
	Source         *schema.Model
	Target         *schema.Model
	SchemaMappings []SchemaMapping
}

// Steps returns the load steps of the mapping. A flat mapping is presented
// as a single insert step.
func (tm TableMapping) Steps() []LoadStep {
	if len(tm.LoadSteps) > 0 {
		return tm.LoadSteps
	}
	return []LoadStep{{
		Kind:           StepInsert,
		Description:    "Insert all rows",
		ColumnMappings: tm.ColumnMappings,
	}}
}

// Step returns the first step of the given kind.
func (tm TableMapping) Step(kind StepKind) (LoadStep, bool) {
	for _, s := range tm.Steps() {
		if s.Kind == kind {
			return s, true
		}
	}
	return LoadStep{}, false
}

// KeyColumnNames returns the primary key of the source table.
func (tm TableMapping) KeyColumnNames() []string {
	return tm.Source.PrimaryKey.ColumnNames
}

// SourceMappings returns the mappings of the step that read a source column.
func (s LoadStep) SourceMappings() []ColumnMapping {
	var out []ColumnMapping
	for _, m := range s.ColumnMappings {
		if !m.IsSynthetic() {
			out = append(out, m)
		}
	}
	return out
}

// SourceColumnNames returns the names of the source columns read by the step.
func (s LoadStep) SourceColumnNames() []string {
	var names []string
	for _, m := range s.ColumnMappings {
		if src := m.SourceColumn(); src != nil {
			names = append(names, src.Name)
		}
	}
	return names
}

// IsDeletes reports whether the step writes void markers.
func (s LoadStep) IsDeletes() bool {
	return s.Kind == StepInsertDeletes
}

// TargetColumnNames returns the target column names in output order.
func (s LoadStep) TargetColumnNames() []string {
	names := make([]string, len(s.ColumnMappings))
	for i, m := range s.ColumnMappings {
		names[i] = m.Target.Name
	}
	return names
}
