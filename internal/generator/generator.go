// Package generator turns a declarative schema into mock data records.
//
// A schema maps field names to either a bare type tag ("uuid") or a mapping
// with a "type" key and per-type constraints:
//
//	{
//	  "id":   "uuid",
//	  "age":  {"type": "integer", "min": 18, "max": 65},
//	  "tags": {"type": "array", "items": {"type": "enum", "choices": ["a", "b"]}, "size": [1, 3]}
//	}
//
// Schemas are compiled once into Definitions; generation itself never fails
// on bad data. Invalid fields are skipped, unknown tags and misconfigured
// fields yield sentinel strings. Only nesting beyond the configured depth is
// reported as an error.
package generator

import (
	"context"
	"fmt"
	"time"

	"mock-data-forge/internal/common/logger"
)

// Generator produces values, records and batches from schemas. It is safe for
// concurrent use when its Source is shared, since the Source is locked.
type Generator struct {
	config *Config
	src    *Source
	logger logger.Logger
}

func New(config *Config, src *Source, log logger.Logger) *Generator {
	if config == nil {
		config = LoadConfig()
	}
	if config.MaxDepth <= 0 {
		config.MaxDepth = DefaultMaxDepth
	}
	if config.MaxStringLength <= 0 {
		config.MaxStringLength = DefaultMaxStringLength
	}
	if config.MaxArraySize <= 0 {
		config.MaxArraySize = DefaultMaxArraySize
	}
	if config.Now == nil {
		config.Now = time.Now
	}
	if src == nil {
		src = NewSource(0)
	}
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Generator{
		config: config,
		src:    src,
		logger: log.WithFields(map[string]interface{}{"component": "generator"}),
	}
}

// Source returns the entropy source in use.
func (g *Generator) Source() *Source {
	return g.src
}

// Compile resolves a raw schema into Definitions. It fails only when the
// nesting exceeds the configured maximum depth. A nil schema compiles to an
// empty one.
func (g *Generator) Compile(raw *Object) (*Schema, error) {
	if raw == nil {
		raw = NewObject()
	}
	c := &compiler{maxDepth: g.config.MaxDepth}
	s, err := c.schema(raw, "", 0)
	if err != nil {
		return nil, err
	}
	s.invalid = c.invalid
	return s, nil
}

// GenerateValue produces one value for a type tag and constraint mapping.
// constraints may be nil; when present it is used as-is and its own "type"
// key, if any, is ignored in favour of typeTag.
func (g *Generator) GenerateValue(typeTag string, constraints *Object) (interface{}, error) {
	if constraints == nil {
		constraints = NewObject()
	}
	def := Definition{
		Kind:        KindFull,
		Type:        normalizeTag(typeTag),
		RawType:     typeTag,
		Constraints: constraints,
	}
	c := &compiler{maxDepth: g.config.MaxDepth}
	def, err := c.resolve(def, "", 0)
	if err != nil {
		return nil, err
	}
	return g.Value(def), nil
}

// GenerateMockData compiles schema and produces count independent records in
// generation order. The context is checked between records.
func (g *Generator) GenerateMockData(ctx context.Context, raw *Object, count int) ([]*Object, error) {
	if count <= 0 {
		return nil, fmt.Errorf("%w: count must be positive, got %d", ErrInvalidCount, count)
	}

	s, err := g.Compile(raw)
	if err != nil {
		return nil, err
	}
	for _, f := range s.InvalidFields() {
		g.logger.Warn("skipping invalid field", map[string]interface{}{
			"field":  f.Path,
			"reason": f.Reason,
		})
	}

	return g.Generate(ctx, s, count)
}

// Generate runs the batch loop over an already compiled schema.
func (g *Generator) Generate(ctx context.Context, s *Schema, count int) ([]*Object, error) {
	if count <= 0 {
		return nil, fmt.Errorf("%w: count must be positive, got %d", ErrInvalidCount, count)
	}

	records := make([]*Object, 0, count)
	for i := 0; i < count; i++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("generation stopped after %d of %d records: %w", i, count, err)
		}
		records = append(records, g.AssembleRecord(s))
	}
	return records, nil
}
