package schemafile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mock-data-forge/internal/generator"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestFormatFor(t *testing.T) {
	tests := []struct {
		path    string
		want    Format
		wantErr bool
	}{
		{path: "schema.json", want: FormatJSON},
		{path: "schema.JSON", want: FormatJSON},
		{path: "schema", want: FormatJSON},
		{path: "schema.yaml", want: FormatYAML},
		{path: "schema.yml", want: FormatYAML},
		{path: "schema.toml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := FormatFor(tt.path)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnsupportedFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoad_JSON(t *testing.T) {
	path := writeFile(t, "schema.json", `{"id": "uuid", "age": {"type": "integer", "min": 18}}`)

	obj, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "age"}, obj.Keys())

	age, _ := obj.Get("age")
	min, _ := age.(*generator.Object).Get("min")
	assert.Equal(t, int64(18), min)
}

func TestLoad_YAMLKeepsOrderAndTypes(t *testing.T) {
	path := writeFile(t, "schema.yaml", `
zeta: uuid
alpha:
  type: float
  precision: 3
  scale: 1.5
tags:
  type: array
  size: [2, 3]
  items:
    type: enum
    choices: [a, b, true]
defaults: &d
  type: string
copy: *d
`)

	obj, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"zeta", "alpha", "tags", "defaults", "copy"}, obj.Keys())

	alpha, _ := obj.Get("alpha")
	precision, _ := alpha.(*generator.Object).Get("precision")
	assert.Equal(t, int64(3), precision)
	scale, _ := alpha.(*generator.Object).Get("scale")
	assert.Equal(t, 1.5, scale)

	tags, _ := obj.Get("tags")
	size, _ := tags.(*generator.Object).Get("size")
	assert.Equal(t, []interface{}{int64(2), int64(3)}, size)
	items, _ := tags.(*generator.Object).Get("items")
	choices, _ := items.(*generator.Object).Get("choices")
	assert.Equal(t, []interface{}{"a", "b", true}, choices)

	cp, _ := obj.Get("copy")
	typ, _ := cp.(*generator.Object).Get("type")
	assert.Equal(t, "string", typ)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		path    func(t *testing.T) string
		wantErr error
	}{
		{
			name:    "missing file",
			path:    func(t *testing.T) string { return filepath.Join(t.TempDir(), "nope.json") },
			wantErr: ErrNotFound,
		},
		{
			name:    "malformed json",
			path:    func(t *testing.T) string { return writeFile(t, "bad.json", `{"id": `) },
			wantErr: ErrInvalidFormat,
		},
		{
			name:    "json array",
			path:    func(t *testing.T) string { return writeFile(t, "list.json", `["uuid"]`) },
			wantErr: ErrInvalidFormat,
		},
		{
			name:    "malformed yaml",
			path:    func(t *testing.T) string { return writeFile(t, "bad.yaml", "a: [1, 2\n") },
			wantErr: ErrInvalidFormat,
		},
		{
			name:    "yaml scalar",
			path:    func(t *testing.T) string { return writeFile(t, "scalar.yml", "just text\n") },
			wantErr: ErrInvalidFormat,
		},
		{
			name:    "empty yaml",
			path:    func(t *testing.T) string { return writeFile(t, "empty.yaml", "") },
			wantErr: ErrInvalidFormat,
		},
		{
			name:    "unknown extension",
			path:    func(t *testing.T) string { return writeFile(t, "schema.xml", "<a/>") },
			wantErr: ErrUnsupportedFormat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.path(t))
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestWriteRecords(t *testing.T) {
	rec := generator.NewObject()
	rec.Set("name", "Ada <Lovelace>")
	rec.Set("age", int64(36))

	path := filepath.Join(t.TempDir(), "out.json")
	require.NoError(t, WriteRecords(path, []*generator.Object{rec}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[\n    {\n        \"name\": \"Ada <Lovelace>\",\n        \"age\": 36\n    }\n]\n", string(data))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestWriteRecords_EmptyBatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	require.NoError(t, WriteRecords(path, nil))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]", strings.TrimSpace(string(data)))
}

func TestWriteRecords_MissingDirectoryLeavesNothing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "out.json")

	err := WriteRecords(path, []*generator.Object{generator.NewObject()})
	assert.ErrorIs(t, err, ErrWriteFailed)
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}
