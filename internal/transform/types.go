// Package transform derives physical models from logical models, and staging
// and historical data archive (HDA) models from source physical models,
// together with the column mappings between them.
//
// All transforms are pure: they never modify their input and build a new
// output graph on every call, so they are safe for concurrent use.
package transform

import (
	"fmt"
	"sort"

	"github.com/tordrt/dwhgen/internal/mapping"
	"github.com/tordrt/dwhgen/internal/schema"
)

// Physical datatypes used for generated columns.
const (
	TypeUniqueIdentifier = "uniqueidentifier"
	TypeDateTime         = "datetime2"
	TypeText             = "nvarchar"
	TypeFlag             = "bit"

	DefaultTextLength = 255
)

// ColumnType is a resolved physical datatype.
type ColumnType struct {
	DataType string `koanf:"datatype"`
	Length   *int   `koanf:"length"`
	Scale    *int   `koanf:"scale"`
}

// TypePolicy maps logical datatypes onto physical ones. Unknown datatypes
// pass through unchanged without length or scale. A TypePolicy is immutable.
type TypePolicy struct {
	rules map[string]ColumnType
}

// DefaultTypePolicy maps "string" to nvarchar(255) and "timestamp" to datetime2.
func DefaultTypePolicy() *TypePolicy {
	return &TypePolicy{rules: map[string]ColumnType{
		"string":    {DataType: TypeText, Length: schema.Int(DefaultTextLength)},
		"timestamp": {DataType: TypeDateTime},
	}}
}

// With returns a copy of the policy in which logical maps to t.
func (p *TypePolicy) With(logical string, t ColumnType) *TypePolicy {
	rules := make(map[string]ColumnType, len(p.rules)+1)
	for k, v := range p.rules {
		rules[k] = v
	}
	rules[logical] = t
	return &TypePolicy{rules: rules}
}

// WithAll returns a copy of the policy extended by every entry of rules.
func (p *TypePolicy) WithAll(rules map[string]ColumnType) (*TypePolicy, error) {
	names := make([]string, 0, len(rules))
	for name := range rules {
		names = append(names, name)
	}
	sort.Strings(names)

	out := p
	for _, name := range names {
		t := rules[name]
		if t.DataType == "" {
			return nil, fmt.Errorf("type mapping for %q has no datatype", name)
		}
		out = out.With(name, t)
	}
	return out, nil
}

// Resolve returns the physical type for a logical datatype.
func (p *TypePolicy) Resolve(logical string) ColumnType {
	if t, ok := p.rules[logical]; ok {
		return ColumnType{DataType: t.DataType, Length: copyInt(t.Length), Scale: copyInt(t.Scale)}
	}
	return ColumnType{DataType: logical}
}

// Result pairs a derived model with the mapping that produced it;
// Mapping.Target is always Model.
type Result struct {
	Model   *schema.Model
	Mapping *mapping.ModelMapping
}

// checkTechnicalColumns fails when a source table already has a column named
// like one of the technical columns a derived table adds.
func checkTechnicalColumns(src *schema.Model, technical ...string) error {
	for _, s := range src.Schemas {
		for _, t := range s.Tables {
			for _, name := range technical {
				if t.Column(name) != nil {
					return &schema.ValidationError{
						Schema: s.Name,
						Table:  t.Name,
						Reason: fmt.Sprintf("column %q clashes with a generated technical column", name),
					}
				}
			}
		}
	}
	return nil
}

func copyInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func copyStrings(s []string) []string {
	out := make([]string, len(s))
	copy(out, s)
	return out
}
