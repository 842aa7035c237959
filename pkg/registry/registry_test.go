package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testActivity(id string) Activity {
	return Activity{
		ID:          id,
		DisplayName: "Generate Mock Data",
		Category:    "data-generation",
		TaskType:    id,
		Timeout:     "30s",
		InputSchema: map[string]interface{}{
			"type":     "object",
			"required": []interface{}{"schema"},
			"properties": map[string]interface{}{
				"schema": map[string]interface{}{"type": "object", "minProperties": 1},
			},
		},
	}
}

func TestLoadRegistry_Bundled(t *testing.T) {
	reg, err := LoadRegistry(filepath.Join("..", "..", "configs", "activity-registry.json"))
	require.NoError(t, err)
	require.NoError(t, reg.Validate())

	activity, ok := reg.Find("generate-mock-data")
	require.True(t, ok)
	assert.Equal(t, 3, activity.Retries)

	v, err := activity.InputValidator()
	require.NoError(t, err)
	require.NotNil(t, v)

	assert.True(t, v.Validate([]byte(`{"schema": {"id": "uuid"}, "count": 2}`)).Valid)

	result := v.Validate([]byte(`{"schema": {}, "count": 0}`))
	assert.False(t, result.Valid)
	assert.True(t, result.HasErrors("schema"))
	assert.True(t, result.HasErrors("count"))
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "registry.json")

	reg, err := LoadOrCreate(path)
	require.NoError(t, err)
	require.NoError(t, reg.Add(testActivity("generate-mock-data")))
	require.NoError(t, Save(reg, path))

	loaded, err := LoadRegistry(path)
	require.NoError(t, err)
	require.Len(t, loaded.Activities, 1)
	assert.NotEmpty(t, loaded.LastUpdated)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary file left behind")
}

func TestLoadRegistry_InvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o644))

	_, err := LoadRegistry(path)
	assert.Error(t, err)
}

func TestAdd_Duplicate(t *testing.T) {
	reg := &ActivityRegistry{}
	require.NoError(t, reg.Add(testActivity("a")))
	assert.ErrorIs(t, reg.Add(testActivity("a")), ErrActivityExists)
}

func TestUpdate(t *testing.T) {
	reg := &ActivityRegistry{Activities: []Activity{testActivity("a")}}

	require.NoError(t, reg.Update("a", "status", "verified"))
	require.NoError(t, reg.Update("a", "retries", "5"))
	require.NoError(t, reg.Update("a", "timeout", "45s"))
	assert.Equal(t, "verified", reg.Activities[0].ImplementationStatus)
	assert.Equal(t, 5, reg.Activities[0].Retries)
	assert.Equal(t, "45s", reg.Activities[0].Timeout)

	assert.ErrorIs(t, reg.Update("missing", "status", "x"), ErrActivityNotFound)
	assert.Error(t, reg.Update("a", "retries", "many"))
	assert.Error(t, reg.Update("a", "timeout", "soon"))
	assert.Error(t, reg.Update("a", "inputSchema", "{}"))
}

func TestValidate(t *testing.T) {
	broken := testActivity("b")
	broken.InputSchema = map[string]interface{}{"type": 12}

	badTimeout := testActivity("c")
	badTimeout.Timeout = "later"

	noCategory := testActivity("d")
	noCategory.Category = ""

	sameTask := testActivity("e")
	sameTask.TaskType = "a"

	tests := []struct {
		name       string
		activities []Activity
		wantErr    string
	}{
		{name: "empty", activities: nil, wantErr: "no activities"},
		{name: "duplicate id", activities: []Activity{testActivity("a"), testActivity("a")}, wantErr: "duplicate activity ID"},
		{name: "duplicate task type", activities: []Activity{testActivity("a"), sameTask}, wantErr: "duplicate task type"},
		{name: "missing category", activities: []Activity{noCategory}, wantErr: "Category"},
		{name: "bad timeout", activities: []Activity{badTimeout}, wantErr: "invalid timeout"},
		{name: "uncompilable input schema", activities: []Activity{broken}, wantErr: "activity b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := &ActivityRegistry{Activities: tt.activities}
			err := reg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	assert.NoError(t, (&ActivityRegistry{Activities: []Activity{testActivity("a")}}).Validate())
}

func TestInputValidator_Empty(t *testing.T) {
	a := testActivity("a")
	a.InputSchema = nil

	v, err := a.InputValidator()
	require.NoError(t, err)
	assert.Nil(t, v)
}
