package formatter

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tordrt/dwhgen/internal/schema"
)

// Output formats understood by the formatters.
const (
	FormatMarkdown = "markdown"
	FormatText     = "text"
	FormatLineage  = "lineage"
)

// MultiFileFormatter writes a model to one file per table in a directory
type MultiFileFormatter struct {
	OutputDir    string
	OutputFormat string // "text" or "markdown"
}

// NewMultiFileFormatter creates a new multi-file formatter
func NewMultiFileFormatter(outputDir, format string) *MultiFileFormatter {
	return &MultiFileFormatter{
		OutputDir:    outputDir,
		OutputFormat: format,
	}
}

// Format writes the model to multiple files
func (f *MultiFileFormatter) Format(m *schema.Model) error {
	if err := os.MkdirAll(f.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := f.writeOverview(m); err != nil {
		return fmt.Errorf("failed to write overview: %w", err)
	}

	for _, s := range m.Schemas {
		for _, table := range s.Tables {
			if err := f.writeTableFile(m, s, table); err != nil {
				return fmt.Errorf("failed to write table file for %s.%s: %w", s.Name, table.Name, err)
			}
		}
	}

	return nil
}

// TableFileName returns the file a table is written to.
func (f *MultiFileFormatter) TableFileName(schemaName, tableName string) string {
	return schemaName + "." + tableName + f.getFileExtension()
}

func (f *MultiFileFormatter) writeOverview(m *schema.Model) error {
	filename := filepath.Join(f.OutputDir, "_overview"+f.getFileExtension())

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	if f.OutputFormat == FormatMarkdown {
		_, _ = fmt.Fprintf(file, "# Model Overview\n\n")
		_, _ = fmt.Fprintf(file, "Each table has a corresponding file: `<schema>.<table>%s`\n\n", f.getFileExtension())
	} else {
		_, _ = fmt.Fprintf(file, "MODEL OVERVIEW\n")
		_, _ = fmt.Fprintf(file, "Each table has a file: <schema>.<table>%s\n\n", f.getFileExtension())
	}

	for _, s := range m.Schemas {
		f.writeSchemaOverview(file, s)
	}
	return nil
}

func (f *MultiFileFormatter) writeSchemaOverview(w io.Writer, s *schema.Schema) {
	if f.OutputFormat == FormatMarkdown {
		_, _ = fmt.Fprintf(w, "## %s\n\n", s.Name)
	} else {
		_, _ = fmt.Fprintf(w, "%s\n", strings.ToUpper(s.Name))
	}

	sortedTables := make([]*schema.Table, len(s.Tables))
	copy(sortedTables, s.Tables)
	sort.Slice(sortedTables, func(i, j int) bool {
		return sortedTables[i].Name < sortedTables[j].Name
	})

	for _, table := range sortedTables {
		if f.OutputFormat == FormatMarkdown {
			_, _ = fmt.Fprintf(w, "- **%s**", table.Name)
		} else {
			_, _ = fmt.Fprintf(w, "  %s", table.Name)
		}

		if table.HasForeignKeys() {
			var targets []string
			for _, fk := range table.ForeignKeys {
				targets = append(targets, schema.QualifiedName(fk.ForeignSchemaName, fk.ForeignTableName))
			}
			_, _ = fmt.Fprintf(w, " (references: %s)", strings.Join(targets, ", "))
		}
		_, _ = fmt.Fprintln(w)
	}
	_, _ = fmt.Fprintln(w)
}

func (f *MultiFileFormatter) writeTableFile(m *schema.Model, s *schema.Schema, table *schema.Table) error {
	filename := filepath.Join(f.OutputDir, f.TableFileName(s.Name, table.Name))

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	if f.OutputFormat == FormatMarkdown {
		NewMarkdownFormatter(file).formatTable(m, s, table)
		return nil
	}

	NewTextFormatter(file).formatTable(s, table)
	incoming := findIncomingReferences(m, s.Name, table.Name)
	if len(incoming) > 0 {
		_, _ = fmt.Fprintln(file, "  REFERENCED BY:")
		for _, ref := range incoming {
			_, _ = fmt.Fprintf(file, "    %s.%s (%s)\n", ref.SchemaName, ref.TableName, strings.Join(ref.ColumnNames, ", "))
		}
	}
	return nil
}

func (f *MultiFileFormatter) getFileExtension() string {
	if f.OutputFormat == FormatMarkdown {
		return ".md"
	}
	return ".txt"
}
