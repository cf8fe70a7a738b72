package mapping

import (
	"fmt"
)

// LineageRow is one target column of one load step with its origin.
type LineageRow struct {
	Step         StepKind
	TargetSchema string
	TargetTable  string
	TargetColumn string
	SourceSchema string
	SourceTable  string
	SourceColumn string
	Expression   string
}

// Lineage flattens the mapping into one row per target column per step, in
// schema, table, step and column order.
func (mm *ModelMapping) Lineage() []LineageRow {
	var rows []LineageRow
	for _, sm := range mm.SchemaMappings {
		for i := range sm.TableMappings {
			tm := &sm.TableMappings[i]
			for _, step := range tm.Steps() {
				for _, cm := range step.ColumnMappings {
					row := LineageRow{
						Step:         step.Kind,
						TargetSchema: sm.Target.Name,
						TargetTable:  tm.Target.Name,
						TargetColumn: cm.Target.Name,
						Expression:   cm.Expression(),
					}
					if src := cm.SourceColumn(); src != nil {
						row.SourceSchema = sm.Source.Name
						row.SourceTable = tm.Source.Name
						row.SourceColumn = src.Name
					}
					rows = append(rows, row)
				}
			}
		}
	}
	return rows
}

// Validate checks that the mapping only references objects of its own source
// and target models.
func (mm *ModelMapping) Validate() error {
	if mm.Source == nil || mm.Target == nil {
		return fmt.Errorf("model mapping without source or target model")
	}
	if len(mm.SchemaMappings) != len(mm.Target.Schemas) {
		return fmt.Errorf("model mapping covers %d schemas, target model has %d",
			len(mm.SchemaMappings), len(mm.Target.Schemas))
	}

	for i, sm := range mm.SchemaMappings {
		if sm.Target != mm.Target.Schemas[i] {
			return fmt.Errorf("schema mapping %d does not point at target schema %s", i, mm.Target.Schemas[i].Name)
		}
		if mm.Source.Schema(sm.Source.Name) != sm.Source {
			return fmt.Errorf("schema mapping %s: source schema %s is not part of the source model", sm.Target.Name, sm.Source.Name)
		}
		for j := range sm.TableMappings {
			if err := validateTableMapping(&sm, &sm.TableMappings[j]); err != nil {
				return fmt.Errorf("schema mapping %s: %w", sm.Target.Name, err)
			}
		}
	}

	return nil
}

func validateTableMapping(sm *SchemaMapping, tm *TableMapping) error {
	if sm.Target.Table(tm.Target.Name) != tm.Target {
		return fmt.Errorf("table %s is not part of the target schema", tm.Target.Name)
	}
	if sm.Source.Table(tm.Source.Name) != tm.Source {
		return fmt.Errorf("table %s is not part of the source schema", tm.Source.Name)
	}

	for _, step := range tm.Steps() {
		for _, cm := range step.ColumnMappings {
			if cm.Target == nil || cm.Source == nil {
				return fmt.Errorf("table %s step %s: incomplete column mapping", tm.Target.Name, step.Kind)
			}
			if tm.Target.Column(cm.Target.Name) != cm.Target {
				return fmt.Errorf("table %s step %s: column %s is not a target column", tm.Target.Name, step.Kind, cm.Target.Name)
			}
			if src := cm.SourceColumn(); src != nil && tm.Source.Column(src.Name) != src {
				return fmt.Errorf("table %s step %s: column %s is not a source column", tm.Target.Name, step.Kind, src.Name)
			}
		}
	}

	return nil
}
