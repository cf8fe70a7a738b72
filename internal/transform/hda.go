package transform

import (
	"fmt"

	"github.com/tordrt/dwhgen/internal/mapping"
	"github.com/tordrt/dwhgen/internal/schema"
)

// HDA naming and technical columns.
const (
	HDASchemaSuffix = "_hda"
	HDAValidFromUTC = "hda_validFrom_utc"
	HDAVoided       = "hda_voided"

	voidedChange = "0"
	voidedDelete = "1"
)

// SourceToHDA derives a historical data archive model from src. Each HDA row
// is a version of a source row keyed by the source key plus its validity
// start, so history is appended and never overwritten. Loading happens in
// two ordered steps: changed rows first, then void markers for deleted keys,
// which carry only the key columns.
func SourceToHDA(src *schema.Model) (*Result, error) {
	if err := src.Validate(); err != nil {
		return nil, fmt.Errorf("failed to derive HDA model: %w", err)
	}
	if err := checkTechnicalColumns(src, HDAValidFromUTC, HDAVoided); err != nil {
		return nil, fmt.Errorf("failed to derive HDA model: %w", err)
	}

	target := &schema.Model{Schemas: make([]*schema.Schema, 0, len(src.Schemas))}
	mm := &mapping.ModelMapping{
		Source:         src,
		Target:         target,
		SchemaMappings: make([]mapping.SchemaMapping, 0, len(src.Schemas)),
	}

	for _, s := range src.Schemas {
		sm := hdaSchema(s)
		target.Schemas = append(target.Schemas, sm.Target)
		mm.SchemaMappings = append(mm.SchemaMappings, sm)
	}

	return &Result{Model: target, Mapping: mm}, nil
}

func hdaSchema(src *schema.Schema) mapping.SchemaMapping {
	target := &schema.Schema{
		Name:   src.Name + HDASchemaSuffix,
		Tables: make([]*schema.Table, 0, len(src.Tables)),
	}
	sm := mapping.SchemaMapping{
		Source:        src,
		Target:        target,
		TableMappings: make([]mapping.TableMapping, 0, len(src.Tables)),
	}

	for _, t := range src.Tables {
		tm := hdaTable(t)
		target.Tables = append(target.Tables, tm.Target)
		sm.TableMappings = append(sm.TableMappings, tm)
	}
	return sm
}

func hdaTable(src *schema.Table) mapping.TableMapping {
	validFrom := &schema.Column{Name: HDAValidFromUTC, DataType: TypeDateTime, Nullable: false}
	voided := &schema.Column{Name: HDAVoided, DataType: TypeFlag, Nullable: false}

	columns := make([]*schema.Column, 0, len(src.Columns)+2)
	columns = append(columns, validFrom, voided)

	sourceMappings := make([]mapping.ColumnMapping, 0, len(src.Columns))
	for _, c := range src.Columns {
		col := derivedColumn(c, src)
		columns = append(columns, col)
		sourceMappings = append(sourceMappings, mapping.FromColumn(col, c))
	}

	changes := make([]mapping.ColumnMapping, 0, len(sourceMappings)+2)
	changes = append(changes,
		mapping.Generated(validFrom, ParamTimestampUTC),
		mapping.Generated(voided, voidedChange),
	)
	changes = append(changes, sourceMappings...)

	deletes := []mapping.ColumnMapping{
		mapping.Generated(validFrom, ParamTimestampUTC),
		mapping.Generated(voided, voidedDelete),
	}
	for _, m := range sourceMappings {
		if src.IsPrimaryKeyColumn(m.SourceColumn().Name) {
			deletes = append(deletes, m)
		}
	}

	pk := copyStrings(src.PrimaryKey.ColumnNames)
	target := &schema.Table{
		Name:    src.Name,
		Columns: columns,
		PrimaryKey: schema.PrimaryKeyConstraint{
			Name:        src.PrimaryKey.Name,
			ColumnNames: append(pk, HDAValidFromUTC),
		},
	}

	return mapping.TableMapping{
		Source: src,
		Target: target,
		LoadSteps: []mapping.LoadStep{
			{
				Kind:           mapping.StepInsertChanges,
				Description:    "Insert new and changed rows",
				ColumnMappings: changes,
			},
			{
				Kind:           mapping.StepInsertDeletes,
				Description:    "Insert void markers for deleted rows",
				ColumnMappings: deletes,
			},
		},
	}
}
