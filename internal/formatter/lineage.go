package formatter

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/tordrt/dwhgen/internal/mapping"
)

// LineageFormatter prints the column lineage of a model mapping as a table.
type LineageFormatter struct {
	writer io.Writer
}

// NewLineageFormatter creates a new lineage formatter
func NewLineageFormatter(w io.Writer) *LineageFormatter {
	return &LineageFormatter{writer: w}
}

// Format writes one row per column mapping.
func (f *LineageFormatter) Format(mm *mapping.ModelMapping) error {
	rows := mm.Lineage()
	if len(rows) == 0 {
		_, _ = fmt.Fprintln(f.writer, "(0 mappings)")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(f.writer)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Step", "Target", "Source"})

	for _, r := range rows {
		t.AppendRow(table.Row{
			r.Step,
			r.TargetSchema + "." + r.TargetTable + "." + r.TargetColumn,
			lineageSource(r),
		})
	}

	t.Render()
	_, _ = fmt.Fprintf(f.writer, "(%d mappings)\n", len(rows))
	return nil
}

func lineageSource(r mapping.LineageRow) string {
	if r.Expression != "" {
		return r.Expression
	}
	return r.SourceSchema + "." + r.SourceTable + "." + r.SourceColumn
}
