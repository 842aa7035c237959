package generator

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Type tags understood by the generator. Tags are matched case-insensitively.
const (
	TypeString   = "string"
	TypeInteger  = "integer"
	TypeFloat    = "float"
	TypeBoolean  = "boolean"
	TypeEnum     = "enum"
	TypeUUID     = "uuid"
	TypeName     = "name"
	TypeEmail    = "email"
	TypePhone    = "phone"
	TypeDate     = "date"
	TypeImageURL = "image_url"
	TypeFileURL  = "file_url"
	TypeObject   = "object"
	TypeArray    = "array"
)

// Constraint keys.
const (
	KeyType      = "type"
	KeyChoices   = "choices"
	KeyRegex     = "regex"
	KeyMaxLength = "max_length"
	KeyMin       = "min"
	KeyMax       = "max"
	KeyPrecision = "precision"
	KeyScale     = "scale"
	KeyWidth     = "width"
	KeyHeight    = "height"
	KeyExtension = "extension"
	KeySchema    = "schema"
	KeyItems     = "items"
	KeySize      = "size"
)

var (
	ErrSchemaTooDeep = errors.New("SCHEMA_TOO_DEEP")
	ErrInvalidCount  = errors.New("INVALID_COUNT")
)

// Kind tells how a field definition was written.
type Kind int

const (
	// KindShorthand is a bare type tag such as "uuid".
	KindShorthand Kind = iota
	// KindFull is a mapping with a "type" key plus constraints.
	KindFull
	// KindInvalid is anything else; such fields are skipped.
	KindInvalid
)

func (k Kind) String() string {
	switch k {
	case KindShorthand:
		return "shorthand"
	case KindFull:
		return "full"
	}
	return "invalid"
}

// Definition is a field definition resolved once at compile time.
type Definition struct {
	Kind Kind
	// Type is the lowercased tag; RawType the tag as written.
	Type    string
	RawType string
	// Constraints is the definition mapping itself for KindFull and an empty
	// Object otherwise. Never nil.
	Constraints *Object
	// Reason explains a KindInvalid definition.
	Reason string

	// Schema is the nested schema of an object definition.
	Schema *Schema
	// Items is the element definition of an array definition.
	Items *Definition

	badRegex bool
}

// Field is one named entry of a Schema.
type Field struct {
	Name       string
	Definition Definition
}

// InvalidField records a skipped schema entry. Path uses dots for nested
// objects and [] for array items.
type InvalidField struct {
	Path   string
	Reason string
}

// Schema is a compiled, ordered schema.
type Schema struct {
	Fields  []Field
	invalid []InvalidField
}

// InvalidFields lists every invalid entry found while compiling, including
// those of nested schemas.
func (s *Schema) InvalidFields() []InvalidField {
	return s.invalid
}

// FieldNames returns the names of the fields that will appear in records.
func (s *Schema) FieldNames() []string {
	names := make([]string, 0, len(s.Fields))
	for _, f := range s.Fields {
		if f.Definition.Kind != KindInvalid {
			names = append(names, f.Name)
		}
	}
	return names
}

func normalizeTag(tag string) string {
	return strings.ToLower(strings.TrimSpace(tag))
}

func invalidDefinition(reason string) Definition {
	return Definition{Kind: KindInvalid, Reason: reason, Constraints: NewObject()}
}

// compiler turns raw decoded schemas into Definitions. Field entries and
// array items go through the same definition path.
type compiler struct {
	maxDepth int
	invalid  []InvalidField
}

func (c *compiler) schema(raw *Object, path string, depth int) (*Schema, error) {
	if depth > c.maxDepth {
		return nil, fmt.Errorf("%w: schema too deep at %q (max depth %d)", ErrSchemaTooDeep, pathOrRoot(path), c.maxDepth)
	}

	s := &Schema{Fields: make([]Field, 0, raw.Len())}
	for _, name := range raw.Keys() {
		v, _ := raw.Get(name)
		fieldPath := joinPath(path, name)

		def, err := c.definition(v, fieldPath, depth)
		if err != nil {
			return nil, err
		}
		if def.Kind == KindInvalid {
			c.invalid = append(c.invalid, InvalidField{Path: fieldPath, Reason: def.Reason})
		}
		s.Fields = append(s.Fields, Field{Name: name, Definition: def})
	}
	return s, nil
}

func (c *compiler) definition(v interface{}, path string, depth int) (Definition, error) {
	switch d := v.(type) {
	case string:
		def := Definition{
			Kind:        KindShorthand,
			Type:        normalizeTag(d),
			RawType:     d,
			Constraints: NewObject(),
		}
		return c.resolve(def, path, depth)
	case *Object:
		tv, ok := d.Get(KeyType)
		if !ok {
			return invalidDefinition("definition mapping has no 'type' key"), nil
		}
		tag, ok := tv.(string)
		if !ok {
			return invalidDefinition(fmt.Sprintf("'type' must be a string, got %s", describe(tv))), nil
		}
		def := Definition{
			Kind:        KindFull,
			Type:        normalizeTag(tag),
			RawType:     tag,
			Constraints: d,
		}
		return c.resolve(def, path, depth)
	default:
		return invalidDefinition(fmt.Sprintf("definition must be a type name or a mapping, got %s", describe(v))), nil
	}
}

// resolve compiles the nested parts of a definition. A non-empty choices
// list wins over everything else, so nested parts are not compiled then.
func (c *compiler) resolve(def Definition, path string, depth int) (Definition, error) {
	if len(def.choices()) > 0 {
		return def, nil
	}

	switch def.Type {
	case TypeString:
		if pattern, ok := def.regex(); ok {
			if _, err := regexp.Compile(pattern); err != nil {
				def.badRegex = true
			}
		}
	case TypeObject:
		raw, ok := def.Constraints.Get(KeySchema)
		nested := NewObject()
		if ok {
			obj, isObj := raw.(*Object)
			if !isObj {
				return invalidDefinition(fmt.Sprintf("object 'schema' must be a mapping, got %s", describe(raw))), nil
			}
			nested = obj
		}
		s, err := c.schema(nested, path, depth+1)
		if err != nil {
			return Definition{}, err
		}
		def.Schema = s
	case TypeArray:
		if depth+1 > c.maxDepth {
			return Definition{}, fmt.Errorf("%w: schema too deep at %q (max depth %d)", ErrSchemaTooDeep, path+"[]", c.maxDepth)
		}
		raw, ok := def.Constraints.Get(KeyItems)
		if !ok {
			raw = TypeString
		}
		items, err := c.definition(raw, path+"[]", depth+1)
		if err != nil {
			return Definition{}, err
		}
		if items.Kind == KindInvalid {
			return invalidDefinition("items: " + items.Reason), nil
		}
		def.Items = &items
	}
	return def, nil
}

func joinPath(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "." + name
}

func pathOrRoot(path string) string {
	if path == "" {
		return "(root)"
	}
	return path
}

// choices returns the choices list when it is a non-empty list.
func (d Definition) choices() []interface{} {
	v, ok := d.Constraints.Get(KeyChoices)
	if !ok {
		return nil
	}
	list, _ := v.([]interface{})
	return list
}

func (d Definition) regex() (string, bool) {
	v, ok := d.Constraints.Get(KeyRegex)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok && s != ""
}

func (d Definition) stringConstraint(key, fallback string) string {
	v, ok := d.Constraints.Get(key)
	if !ok {
		return fallback
	}
	s, ok := v.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}

// intConstraint reads an integer constraint. Integral floats are accepted;
// anything else falls back to the default.
func (d Definition) intConstraint(key string, fallback int) int {
	v, ok := d.Constraints.Get(key)
	if !ok {
		return fallback
	}
	if n, ok := toInt(v); ok {
		return n
	}
	return fallback
}

// sizeRange reads the array length range. [min, max] and a single integer
// are accepted; anything else yields the default.
func (d Definition) sizeRange() (int, int) {
	v, ok := d.Constraints.Get(KeySize)
	if !ok {
		return DefaultArrayMin, DefaultArrayMax
	}

	if n, ok := toInt(v); ok {
		if n < 0 {
			n = 0
		}
		return n, n
	}

	list, ok := v.([]interface{})
	if !ok || len(list) != 2 {
		return DefaultArrayMin, DefaultArrayMax
	}
	lo, okLo := toInt(list[0])
	hi, okHi := toInt(list[1])
	if !okLo || !okHi {
		return DefaultArrayMin, DefaultArrayMax
	}
	if lo > hi {
		lo, hi = hi, lo
	}
	if lo < 0 {
		lo = 0
	}
	if hi < 0 {
		hi = 0
	}
	return lo, hi
}

func toInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case int32:
		return int(n), true
	case uint64:
		return int(n), true
	case float64:
		if n != float64(int64(n)) {
			return 0, false
		}
		return int(n), true
	}
	return 0, false
}
