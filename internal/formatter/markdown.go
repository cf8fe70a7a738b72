package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/tordrt/dwhgen/internal/schema"
)

// MarkdownFormatter formats a physical model as markdown
type MarkdownFormatter struct {
	writer io.Writer
}

// NewMarkdownFormatter creates a new markdown formatter
func NewMarkdownFormatter(w io.Writer) *MarkdownFormatter {
	return &MarkdownFormatter{writer: w}
}

// Format writes the model in markdown format
func (f *MarkdownFormatter) Format(m *schema.Model) error {
	_, _ = fmt.Fprintln(f.writer, "# Physical Model")
	_, _ = fmt.Fprintln(f.writer)

	for _, s := range m.Schemas {
		_, _ = fmt.Fprintf(f.writer, "## %s\n\n", s.Name)
		for _, table := range s.Tables {
			f.formatTable(m, s, table)
		}
	}
	return nil
}

func (f *MarkdownFormatter) formatTable(m *schema.Model, s *schema.Schema, table *schema.Table) {
	_, _ = fmt.Fprintf(f.writer, "### %s.%s\n\n", s.Name, table.Name)
	f.formatColumns(table)
	f.formatForeignKeys(table)
	f.formatReferencedBy(findIncomingReferences(m, s.Name, table.Name))
}

func (f *MarkdownFormatter) formatColumns(table *schema.Table) {
	for _, col := range table.Columns {
		constraints := columnConstraints(col, table)
		if len(constraints) > 0 {
			_, _ = fmt.Fprintf(f.writer, "- **%s:** %s, %s\n", col.Name, col.TypeString(), strings.Join(constraints, ", "))
		} else {
			_, _ = fmt.Fprintf(f.writer, "- **%s:** %s\n", col.Name, col.TypeString())
		}
	}
	_, _ = fmt.Fprintln(f.writer)

	if len(table.PrimaryKey.ColumnNames) > 0 {
		_, _ = fmt.Fprintf(f.writer, "Primary key `%s` on (%s)\n\n",
			table.PrimaryKey.Name,
			strings.Join(table.PrimaryKey.ColumnNames, ", "))
	}
}

func (f *MarkdownFormatter) formatForeignKeys(table *schema.Table) {
	if !table.HasForeignKeys() {
		return
	}
	_, _ = fmt.Fprintln(f.writer, "#### References")
	_, _ = fmt.Fprintln(f.writer)
	for _, fk := range table.ForeignKeys {
		_, _ = fmt.Fprintf(f.writer, "- %s\n", describeForeignKey(fk))
	}
	_, _ = fmt.Fprintln(f.writer)
}

func (f *MarkdownFormatter) formatReferencedBy(incoming []IncomingReference) {
	if len(incoming) == 0 {
		return
	}
	_, _ = fmt.Fprintln(f.writer, "#### Referenced by")
	_, _ = fmt.Fprintln(f.writer)
	for _, ref := range incoming {
		_, _ = fmt.Fprintf(f.writer, "- %s.%s (%s) via %s\n",
			ref.SchemaName, ref.TableName,
			strings.Join(ref.ColumnNames, ", "),
			ref.ConstraintName)
	}
	_, _ = fmt.Fprintln(f.writer)
}
