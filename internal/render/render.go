// Package render turns fully built physical models and mappings into text
// (SQL DDL, SQL ETL procedures and Markdown lineage) using named templates.
//
// Templates are embedded in the binary and may be overridden file by file
// from a directory. Templates only ever see a Context built by ModelContext
// or MappingContext.
package render

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"text/template"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Template names.
const (
	TemplateDDL        = "ddl.sql"
	TemplateStagingETL = "staging-etl.sql"
	TemplateHDAETL     = "hda-etl.sql"
	TemplateHDAPIT     = "hda-pit.sql"
	TemplateLineage    = "lineage.md"

	templateExt     = ".tmpl"
	partialsPattern = "_*.tmpl"
)

// ErrTemplateNotFound is returned when no template with the requested name exists.
var ErrTemplateNotFound = errors.New("template not found")

// Renderer renders named templates.
type Renderer struct {
	fsys fs.FS
}

// New creates a renderer using the embedded templates.
func New() *Renderer {
	return &Renderer{fsys: embedded()}
}

// NewWithOverrides creates a renderer that looks up templates in dir first
// and falls back to the embedded ones.
func NewWithOverrides(dir string) (*Renderer, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open templates directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("templates path %s is not a directory", dir)
	}

	return &Renderer{fsys: overlayFS{primary: os.DirFS(dir), fallback: embedded()}}, nil
}

func embedded() fs.FS {
	sub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		// The embedded directory is fixed at build time.
		panic(err)
	}
	return sub
}

// Render executes the named template against ctx. The result has surrounding
// whitespace trimmed and ends with a single newline.
func (r *Renderer) Render(name string, ctx Context) (string, error) {
	file := name + templateExt

	if _, err := fs.Stat(r.fsys, file); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrTemplateNotFound, name)
		}
		return "", fmt.Errorf("failed to open template %s: %w", name, err)
	}

	tmpl := template.New(file).Funcs(funcs()).Option("missingkey=error")

	partials, err := fs.Glob(r.fsys, partialsPattern)
	if err != nil {
		return "", fmt.Errorf("failed to list template partials: %w", err)
	}

	tmpl, err = tmpl.ParseFS(r.fsys, append(partials, file)...)
	if err != nil {
		return "", fmt.Errorf("failed to parse template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, file, ctx); err != nil {
		return "", fmt.Errorf("failed to render template %s: %w", name, err)
	}

	return strings.TrimSpace(buf.String()) + "\n", nil
}

// overlayFS serves files from primary when present, otherwise from fallback.
type overlayFS struct {
	primary  fs.FS
	fallback fs.FS
}

func (o overlayFS) Open(name string) (fs.File, error) {
	f, err := o.primary.Open(name)
	if err == nil {
		return f, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	return o.fallback.Open(name)
}

// Glob merges the matches of both layers.
func (o overlayFS) Glob(pattern string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	for _, fsys := range []fs.FS{o.primary, o.fallback} {
		matches, err := fs.Glob(fsys, pattern)
		if err != nil {
			return nil, err
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				out = append(out, m)
			}
		}
	}
	return out, nil
}
