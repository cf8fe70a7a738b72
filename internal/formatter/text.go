package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/tordrt/dwhgen/internal/schema"
)

// TextFormatter formats a physical model as compact text
type TextFormatter struct {
	writer io.Writer
}

// NewTextFormatter creates a new text formatter
func NewTextFormatter(w io.Writer) *TextFormatter {
	return &TextFormatter{writer: w}
}

// Format writes the model in compact text format
func (f *TextFormatter) Format(m *schema.Model) error {
	for i, s := range m.Schemas {
		if i > 0 {
			_, _ = fmt.Fprintln(f.writer)
		}
		_, _ = fmt.Fprintf(f.writer, "SCHEMA %s\n", s.Name)

		for _, table := range s.Tables {
			_, _ = fmt.Fprintln(f.writer)
			f.formatTable(s, table)
		}
	}
	return nil
}

func (f *TextFormatter) formatTable(s *schema.Schema, table *schema.Table) {
	pkStr := ""
	if len(table.PrimaryKey.ColumnNames) > 0 {
		pkStr = fmt.Sprintf(" (PK %s: %s)", table.PrimaryKey.Name, strings.Join(table.PrimaryKey.ColumnNames, ", "))
	}
	_, _ = fmt.Fprintf(f.writer, "TABLE %s.%s%s\n", s.Name, table.Name, pkStr)

	for _, col := range table.Columns {
		_, _ = fmt.Fprintf(f.writer, "  %s\n", formatColumn(col))
	}

	if table.HasForeignKeys() {
		_, _ = fmt.Fprintln(f.writer, "  FOREIGN KEYS:")
		for _, fk := range table.ForeignKeys {
			_, _ = fmt.Fprintf(f.writer, "    %s\n", describeForeignKey(fk))
		}
	}
}

func formatColumn(col *schema.Column) string {
	return col.Name + ": " + col.FullType()
}
