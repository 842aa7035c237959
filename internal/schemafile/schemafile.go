// Package schemafile reads schema files and writes generated batches to disk.
package schemafile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"mock-data-forge/internal/generator"

	"gopkg.in/yaml.v3"
)

var (
	ErrNotFound          = errors.New("SCHEMA_NOT_FOUND")
	ErrInvalidFormat     = errors.New("INVALID_SCHEMA_FORMAT")
	ErrUnsupportedFormat = errors.New("UNSUPPORTED_SCHEMA_FORMAT")
	ErrWriteFailed       = errors.New("OUTPUT_WRITE_FAILED")
)

// Format of a schema file.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFor picks the format from the file extension. Files without a known
// extension are read as JSON.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json", "":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// Load reads a schema file from disk.
func Load(path string) (*generator.Object, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: schema file not found at '%s'", ErrNotFound, path)
		}
		return nil, fmt.Errorf("failed to read schema file '%s': %w", path, err)
	}

	format, err := FormatFor(path)
	if err != nil {
		return nil, err
	}
	return Parse(data, format)
}

// Parse decodes a schema document, keeping key order. The top-level value
// must be a mapping.
func Parse(data []byte, format Format) (*generator.Object, error) {
	switch format {
	case FormatYAML:
		return parseYAML(data)
	case FormatJSON:
		obj, err := generator.DecodeObject(data)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid JSON: %v", ErrInvalidFormat, err)
		}
		return obj, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

func parseYAML(data []byte) (*generator.Object, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: invalid YAML: %v", ErrInvalidFormat, err)
	}
	if doc.Kind == 0 {
		return nil, fmt.Errorf("%w: empty YAML document", ErrInvalidFormat)
	}

	v, err := nodeValue(&doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	obj, ok := v.(*generator.Object)
	if !ok {
		return nil, fmt.Errorf("%w: top-level value must be a mapping", ErrInvalidFormat)
	}
	return obj, nil
}

// nodeValue converts a YAML node into the values DecodeJSON would produce
// for the equivalent JSON.
func nodeValue(n *yaml.Node) (interface{}, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return nodeValue(n.Content[0])
	case yaml.AliasNode:
		return nodeValue(n.Alias)
	case yaml.MappingNode:
		obj := generator.NewObject()
		for i := 0; i+1 < len(n.Content); i += 2 {
			k, v := n.Content[i], n.Content[i+1]
			if k.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("line %d: mapping keys must be scalars", k.Line)
			}
			val, err := nodeValue(v)
			if err != nil {
				return nil, err
			}
			obj.Set(k.Value, val)
		}
		return obj, nil
	case yaml.SequenceNode:
		arr := make([]interface{}, 0, len(n.Content))
		for _, item := range n.Content {
			val, err := nodeValue(item)
			if err != nil {
				return nil, err
			}
			arr = append(arr, val)
		}
		return arr, nil
	case yaml.ScalarNode:
		var v interface{}
		if err := n.Decode(&v); err != nil {
			return nil, fmt.Errorf("line %d: %v", n.Line, err)
		}
		switch t := v.(type) {
		case int:
			return int64(t), nil
		case uint64:
			return float64(t), nil
		}
		return v, nil
	}
	return nil, fmt.Errorf("line %d: unsupported YAML node", n.Line)
}

// Marshal renders records as a JSON array indented with four spaces.
func Marshal(records []*generator.Object) ([]byte, error) {
	if records == nil {
		records = []*generator.Object{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "    ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(records); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteRecords writes records to path. The data goes to a temporary file in
// the same directory which is then renamed over path, so a failed write
// leaves nothing behind.
func WriteRecords(path string, records []*generator.Object) error {
	data, err := Marshal(records)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	tmpName := tmp.Name()

	cleanup := func(cause error) error {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: %v", ErrWriteFailed, cause)
	}

	if _, err := tmp.Write(data); err != nil {
		return cleanup(err)
	}
	if err := tmp.Sync(); err != nil {
		return cleanup(err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	return nil
}
