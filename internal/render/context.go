package render

import (
	"time"

	"github.com/google/uuid"

	"github.com/tordrt/dwhgen/internal/mapping"
	"github.com/tordrt/dwhgen/internal/schema"
	"github.com/tordrt/dwhgen/internal/transform"
)

// Header identifies one generation run in every rendered artifact.
type Header struct {
	GeneratedAt  time.Time
	GenerationID string
}

// NewHeader creates a header stamped with now and a fresh generation id.
func NewHeader(now time.Time) Header {
	return Header{GeneratedAt: now.UTC(), GenerationID: uuid.NewString()}
}

// Timestamp returns the generation time in RFC 3339 format.
func (h Header) Timestamp() string {
	return h.GeneratedAt.UTC().Format(time.RFC3339)
}

// Context is the complete set of named values a template can reach.
type Context map[string]any

// ModelContext exposes a physical model:
//
//	Header   Header
//	Schemas  []*schema.Schema
func ModelContext(h Header, m *schema.Model) Context {
	return Context{
		"Header":  h,
		"Schemas": m.Schemas,
	}
}

// MappingContext exposes a model mapping together with the names of the
// technical columns the ETL templates refer to:
//
//	Header          Header
//	SourceModel     *schema.Model
//	TargetModel     *schema.Model
//	SchemaMappings  []mapping.SchemaMapping
//	ValidFrom       string
//	Voided          string
//	Params          map[string]string
func MappingContext(h Header, mm *mapping.ModelMapping) Context {
	return Context{
		"Header":         h,
		"SourceModel":    mm.Source,
		"TargetModel":    mm.Target,
		"SchemaMappings": mm.SchemaMappings,
		"ValidFrom":      transform.HDAValidFromUTC,
		"Voided":         transform.HDAVoided,
		"Params": map[string]string{
			"Timestamp": transform.ParamTimestampUTC,
			"RunID":     transform.ParamRunID,
		},
	}
}
