package schema

import (
	"fmt"
)

// ValidationError describes an inconsistency in a physical model.
type ValidationError struct {
	Schema string
	Table  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Table != "" {
		return fmt.Sprintf("invalid physical model: table %s.%s: %s", e.Schema, e.Table, e.Reason)
	}
	return fmt.Sprintf("invalid physical model: schema %s: %s", e.Schema, e.Reason)
}

// Validate checks every schema and table of the model.
func (m *Model) Validate() error {
	if m == nil {
		return &ValidationError{Reason: "model is nil"}
	}

	seen := make(map[string]bool, len(m.Schemas))
	for _, s := range m.Schemas {
		if s == nil || s.Name == "" {
			return &ValidationError{Reason: "schema without a name"}
		}
		if seen[s.Name] {
			return &ValidationError{Schema: s.Name, Reason: "duplicate schema name"}
		}
		seen[s.Name] = true

		tables := make(map[string]bool, len(s.Tables))
		for _, t := range s.Tables {
			if t == nil || t.Name == "" {
				return &ValidationError{Schema: s.Name, Reason: "table without a name"}
			}
			if tables[t.Name] {
				return &ValidationError{Schema: s.Name, Table: t.Name, Reason: "duplicate table name"}
			}
			tables[t.Name] = true

			if err := t.Validate(); err != nil {
				if verr, ok := err.(*ValidationError); ok {
					verr.Schema = s.Name
				}
				return err
			}
		}
	}

	return nil
}

// Validate checks the table's columns and constraints against each other.
func (t *Table) Validate() error {
	fail := func(format string, args ...any) error {
		return &ValidationError{Table: t.Name, Reason: fmt.Sprintf(format, args...)}
	}

	columns := make(map[string]bool, len(t.Columns))
	for _, c := range t.Columns {
		if c == nil || c.Name == "" {
			return fail("column without a name")
		}
		if columns[c.Name] {
			return fail("duplicate column %q", c.Name)
		}
		columns[c.Name] = true
	}

	if len(t.PrimaryKey.ColumnNames) == 0 {
		return fail("primary key %q has no columns", t.PrimaryKey.Name)
	}
	for _, name := range t.PrimaryKey.ColumnNames {
		if !columns[name] {
			return fail("primary key %q references unknown column %q", t.PrimaryKey.Name, name)
		}
	}

	for _, fk := range t.ForeignKeys {
		if len(fk.ColumnNames) == 0 {
			return fail("foreign key %q has no columns", fk.Name)
		}
		if len(fk.ColumnNames) != len(fk.ForeignColumnNames) {
			return fail("foreign key %q maps %d columns onto %d", fk.Name, len(fk.ColumnNames), len(fk.ForeignColumnNames))
		}
		for _, name := range fk.ColumnNames {
			if !columns[name] {
				return fail("foreign key %q references unknown column %q", fk.Name, name)
			}
		}
	}

	return nil
}
