package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func writeSchema(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append(args, "--log-level", "error"))
	err := cmd.Execute()
	return out.String(), err
}

const userSchema = `{
	"id": "uuid",
	"name": "name",
	"age": {"type": "integer", "min": 18, "max": 65}
}`

// ==========================
// Core Functionality Tests
// ==========================

func TestForge_WritesRecords(t *testing.T) {
	input := writeSchema(t, "schema.json", userSchema)
	output := filepath.Join(t.TempDir(), "data.json")

	out, err := execute(t, "-i", input, "-o", output, "-c", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "Success: Generated 3 records to '"+output+"'")

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "[\n    {\n        \"id\": "), string(data))

	var records []map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &records))
	require.Len(t, records, 3)
	for _, r := range records {
		age := r["age"].(float64)
		assert.GreaterOrEqual(t, age, float64(18))
		assert.LessOrEqual(t, age, float64(65))
		assert.NotEmpty(t, r["name"])
	}
}

func TestForge_DefaultCountIsOne(t *testing.T) {
	input := writeSchema(t, "schema.json", `{"ok": "boolean"}`)
	output := filepath.Join(t.TempDir(), "data.json")

	out, err := execute(t, "--input", input, "--output", output)
	require.NoError(t, err)
	assert.Contains(t, out, "Generated 1 records")
}

func TestForge_SeedIsReproducible(t *testing.T) {
	input := writeSchema(t, "schema.json", userSchema)
	dir := t.TempDir()
	first := filepath.Join(dir, "a.json")
	second := filepath.Join(dir, "b.json")

	_, err := execute(t, "-i", input, "-o", first, "-c", "5", "--seed", "42")
	require.NoError(t, err)
	_, err = execute(t, "-i", input, "-o", second, "-c", "5", "--seed", "42")
	require.NoError(t, err)

	a, err := os.ReadFile(first)
	require.NoError(t, err)
	b, err := os.ReadFile(second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestForge_YAMLSchema(t *testing.T) {
	input := writeSchema(t, "schema.yaml", "status:\n  type: enum\n  choices: [active]\nid: uuid\n")
	output := filepath.Join(t.TempDir(), "data.json")

	_, err := execute(t, "-i", input, "-o", output, "-c", "2")
	require.NoError(t, err)

	data, err := os.ReadFile(output)
	require.NoError(t, err)

	var records []map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &records))
	require.Len(t, records, 2)
	assert.Equal(t, "active", records[0]["status"])
	assert.Less(t, strings.Index(string(data), `"status"`), strings.Index(string(data), `"id"`))
}

// ==========================
// Error Handling Tests
// ==========================

func TestForge_Errors(t *testing.T) {
	valid := writeSchema(t, "schema.json", userSchema)
	broken := writeSchema(t, "broken.json", `{"id": "uuid",`)
	deep := writeSchema(t, "deep.json", `{"a": {"type": "object", "schema": {"b": {"type": "object", "schema": {"c": "uuid"}}}}}`)
	missing := filepath.Join(t.TempDir(), "nope.json")

	tests := []struct {
		name    string
		args    func(output string) []string
		wantErr string
	}{
		{
			name:    "non-positive count",
			args:    func(o string) []string { return []string{"-i", valid, "-o", o, "-c", "0"} },
			wantErr: "Count must be a positive integer.",
		},
		{
			name:    "schema file missing",
			args:    func(o string) []string { return []string{"-i", missing, "-o", o} },
			wantErr: "Schema file not found at '" + missing + "'",
		},
		{
			name:    "malformed json",
			args:    func(o string) []string { return []string{"-i", broken, "-o", o} },
			wantErr: "Invalid schema format in file at '" + broken + "'",
		},
		{
			name:    "nesting too deep",
			args:    func(o string) []string { return []string{"-i", deep, "-o", o, "--max-depth", "1"} },
			wantErr: "Failed to generate data",
		},
		{
			name:    "output directory missing",
			args:    func(o string) []string { return []string{"-i", valid, "-o", filepath.Join(o, "missing", "data.json")} },
			wantErr: "Failed to write data to file",
		},
		{
			name:    "input flag required",
			args:    func(o string) []string { return []string{"-o", o} },
			wantErr: `required flag(s) "input" not set`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output := filepath.Join(t.TempDir(), "data.json")

			_, err := execute(t, tt.args(output)...)
			require.Error(t, err)
			assert.Contains(t, userMessage(err), tt.wantErr)

			// wrapped errors follow Go casing; only the printed sentence is capitalized
			msg := err.Error()
			assert.Equal(t, strings.ToLower(msg[:1]), msg[:1], msg)

			_, statErr := os.Stat(output)
			assert.True(t, os.IsNotExist(statErr), "no output expected")
		})
	}
}
