package transform

import (
	"fmt"

	"github.com/tordrt/dwhgen/internal/mapping"
	"github.com/tordrt/dwhgen/internal/schema"
)

// Staging naming and technical columns.
const (
	StagingSchemaSuffix = "_stg"
	StagingTimestampUTC = "stg_timestamp_utc"
	StagingRunID        = "stg_runId"
	ParamTimestampUTC   = "@timestamp_utc"
	ParamRunID          = "@runId"
)

// SourceToStaging derives a staging model from src. Every staging table
// carries the load timestamp and run id, is keyed by run id plus the source
// key, and tolerates partial loads: only key columns stay NOT NULL. Foreign
// keys are dropped.
func SourceToStaging(src *schema.Model) (*Result, error) {
	if err := src.Validate(); err != nil {
		return nil, fmt.Errorf("failed to derive staging model: %w", err)
	}
	if err := checkTechnicalColumns(src, StagingTimestampUTC, StagingRunID); err != nil {
		return nil, fmt.Errorf("failed to derive staging model: %w", err)
	}

	target := &schema.Model{Schemas: make([]*schema.Schema, 0, len(src.Schemas))}
	mm := &mapping.ModelMapping{
		Source:         src,
		Target:         target,
		SchemaMappings: make([]mapping.SchemaMapping, 0, len(src.Schemas)),
	}

	for _, s := range src.Schemas {
		sm := stagingSchema(s)
		target.Schemas = append(target.Schemas, sm.Target)
		mm.SchemaMappings = append(mm.SchemaMappings, sm)
	}

	return &Result{Model: target, Mapping: mm}, nil
}

func stagingSchema(src *schema.Schema) mapping.SchemaMapping {
	target := &schema.Schema{
		Name:   src.Name + StagingSchemaSuffix,
		Tables: make([]*schema.Table, 0, len(src.Tables)),
	}
	sm := mapping.SchemaMapping{
		Source:        src,
		Target:        target,
		TableMappings: make([]mapping.TableMapping, 0, len(src.Tables)),
	}

	for _, t := range src.Tables {
		tm := stagingTable(t)
		target.Tables = append(target.Tables, tm.Target)
		sm.TableMappings = append(sm.TableMappings, tm)
	}
	return sm
}

func stagingTable(src *schema.Table) mapping.TableMapping {
	timestamp := &schema.Column{Name: StagingTimestampUTC, DataType: TypeDateTime, Nullable: false}
	runID := &schema.Column{Name: StagingRunID, DataType: TypeUniqueIdentifier, Nullable: false}

	columns := make([]*schema.Column, 0, len(src.Columns)+2)
	columns = append(columns, timestamp, runID)

	mappings := make([]mapping.ColumnMapping, 0, len(src.Columns)+2)
	mappings = append(mappings,
		mapping.Generated(timestamp, ParamTimestampUTC),
		mapping.Generated(runID, ParamRunID),
	)

	for _, c := range src.Columns {
		col := derivedColumn(c, src)
		columns = append(columns, col)
		mappings = append(mappings, mapping.FromColumn(col, c))
	}

	target := &schema.Table{
		Name:    src.Name,
		Columns: columns,
		PrimaryKey: schema.PrimaryKeyConstraint{
			Name:        src.PrimaryKey.Name,
			ColumnNames: append([]string{StagingRunID}, src.PrimaryKey.ColumnNames...),
		},
	}

	return mapping.TableMapping{
		Source:         src,
		Target:         target,
		ColumnMappings: mappings,
	}
}

// derivedColumn copies c into a derived table. The copy is NOT NULL exactly
// when c belongs to the primary key of its table.
func derivedColumn(c *schema.Column, table *schema.Table) *schema.Column {
	return &schema.Column{
		Name:     c.Name,
		DataType: c.DataType,
		Nullable: !table.IsPrimaryKeyColumn(c.Name),
		Length:   copyInt(c.Length),
		Scale:    copyInt(c.Scale),
	}
}
