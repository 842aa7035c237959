package generatemockdata

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"mock-data-forge/internal/common/config"
	apperrors "mock-data-forge/internal/common/errors"
	"mock-data-forge/internal/common/logger"
	"mock-data-forge/internal/common/observability"
	"mock-data-forge/internal/generator"
	"mock-data-forge/pkg/registry"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestConfig() *Config {
	return &Config{
		Timeout:  5 * time.Second,
		MaxCount: 50,
	}
}

func createTestHandler(t *testing.T, cfg *Config, maxDepth int) *Handler {
	if cfg == nil {
		cfg = createTestConfig()
	}
	log := logger.NewZapAdapter(zaptest.NewLogger(t))
	gen := generator.New(&generator.Config{MaxDepth: maxDepth}, generator.NewSource(11), log)
	return NewHandler(cfg, gen, log)
}

func decodeInput(t *testing.T, variables string) *Input {
	t.Helper()
	var input Input
	require.NoError(t, json.Unmarshal([]byte(variables), &input))
	return &input
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_Success(t *testing.T) {
	h := createTestHandler(t, nil, 0)
	input := decodeInput(t, `{
		"schema": {
			"id": "uuid",
			"age": {"type": "integer", "min": 18, "max": 18},
			"address": {"type": "object", "schema": {"city": "city"}}
		},
		"count": 3
	}`)

	output, err := h.Execute(context.Background(), input)
	require.NoError(t, err)
	require.NotNil(t, output)

	assert.Equal(t, 3, output.RecordCount)
	require.Len(t, output.Records, 3)
	for _, rec := range output.Records {
		assert.Equal(t, []string{"id", "age", "address"}, rec.Keys())
		age, _ := rec.Get("age")
		assert.EqualValues(t, 18, age)

		addr, _ := rec.Get("address")
		nested, ok := addr.(*generator.Object)
		require.True(t, ok)
		assert.Equal(t, []string{"city"}, nested.Keys())
	}
	assert.GreaterOrEqual(t, output.GenerationTimeMs, int64(0))
}

func TestHandler_Execute_DefaultCount(t *testing.T) {
	h := createTestHandler(t, nil, 0)

	output, err := h.Execute(context.Background(), decodeInput(t, `{"schema": {"ok": "boolean"}}`))
	require.NoError(t, err)
	assert.Equal(t, 1, output.RecordCount)
}

func TestHandler_Execute_OutputVariables(t *testing.T) {
	h := createTestHandler(t, nil, 0)

	output, err := h.Execute(context.Background(), decodeInput(t, `{"schema": {"b": "boolean", "a": "uuid"}, "count": 2}`))
	require.NoError(t, err)

	data, err := json.Marshal(output)
	require.NoError(t, err)

	var vars map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &vars))
	assert.EqualValues(t, 2, vars["recordCount"])
	assert.Contains(t, vars, "generationTimeMs")
	assert.Len(t, vars["records"], 2)

	// field order survives into the job variables
	assert.Regexp(t, `"records":\[\{"b":(true|false),"a":"`, string(data))
}

func TestHandler_Execute_RecordsBatchObservability(t *testing.T) {
	reg := promclient.NewRegistry()
	obs, err := observability.New("worker-test", reg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = obs.Shutdown(context.Background()) })

	log := logger.NewTestLogger(t)
	gen := generator.New(&generator.Config{}, generator.NewSource(11), log)
	h := NewHandler(createTestConfig(), gen, log, WithObservability(obs))

	_, err = h.Execute(context.Background(), decodeInput(t, `{"schema": {"a": "uuid"}, "count": 4}`))
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	promhttp.HandlerFor(reg, promhttp.HandlerOpts{}).ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)

	assert.Regexp(t, `forge_records_total\{[^}]*source="worker"[^}]*\} 4`, string(body))
}

// ==========================
// Error Handling Tests
// ==========================

func TestHandler_Execute_Errors(t *testing.T) {
	tests := []struct {
		name     string
		input    *Input
		maxDepth int
		wantCode apperrors.ErrorCode
	}{
		{name: "nil input", input: nil, wantCode: apperrors.ErrCodeInvalidSchema},
		{name: "missing schema", input: &Input{}, wantCode: apperrors.ErrCodeInvalidSchema},
		{name: "empty schema", input: &Input{Schema: generator.NewObject()}, wantCode: apperrors.ErrCodeInvalidSchema},
		{name: "zero count", input: decodeInput(t, `{"schema": {"a": "uuid"}, "count": 0}`), wantCode: apperrors.ErrCodeInvalidCount},
		{name: "negative count", input: decodeInput(t, `{"schema": {"a": "uuid"}, "count": -1}`), wantCode: apperrors.ErrCodeInvalidCount},
		{name: "count over limit", input: decodeInput(t, `{"schema": {"a": "uuid"}, "count": 51}`), wantCode: apperrors.ErrCodeCountLimitExceeded},
		{
			name:     "schema too deep",
			input:    decodeInput(t, `{"schema": {"a": {"type": "object", "schema": {"b": {"type": "array", "items": "uuid"}}}}}`),
			maxDepth: 1,
			wantCode: apperrors.ErrCodeSchemaTooDeep,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := createTestHandler(t, nil, tt.maxDepth)

			output, err := h.Execute(context.Background(), tt.input)
			require.Error(t, err)
			assert.Nil(t, output)

			stdErr, ok := apperrors.As(err)
			require.True(t, ok)
			assert.Equal(t, tt.wantCode, stdErr.Code)
			assert.False(t, stdErr.Retryable)
		})
	}
}

func TestHandler_Execute_Timeout(t *testing.T) {
	h := createTestHandler(t, nil, 0)

	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	<-ctx.Done()

	_, err := h.Execute(ctx, decodeInput(t, `{"schema": {"a": "uuid"}, "count": 5}`))
	require.Error(t, err)

	stdErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeGenerationTimeout, stdErr.Code)
	assert.True(t, stdErr.Retryable)
}

func TestInput_RejectsNonIntegerCount(t *testing.T) {
	var input Input
	assert.Error(t, json.Unmarshal([]byte(`{"schema": {"a": "uuid"}, "count": "5"}`), &input))
	assert.Error(t, json.Unmarshal([]byte(`{"schema": {"a": "uuid"}, "count": 1.5}`), &input))
}

func TestInputError_RegistrySchema(t *testing.T) {
	reg, err := registry.LoadRegistry(filepath.Join("..", "..", "..", "configs", "activity-registry.json"))
	require.NoError(t, err)
	activity, ok := reg.Find(TaskType)
	require.True(t, ok)
	v, err := activity.InputValidator()
	require.NoError(t, err)

	tests := []struct {
		name      string
		variables string
		wantCode  apperrors.ErrorCode
	}{
		{name: "not json", variables: `{`, wantCode: apperrors.ErrCodeInvalidSchema},
		{name: "missing schema", variables: `{"count": 2}`, wantCode: apperrors.ErrCodeInvalidSchema},
		{name: "schema not object", variables: `{"schema": "uuid"}`, wantCode: apperrors.ErrCodeInvalidSchema},
		{name: "empty schema", variables: `{"schema": {}}`, wantCode: apperrors.ErrCodeInvalidSchema},
		{name: "fractional count", variables: `{"schema": {"a": "uuid"}, "count": 1.5}`, wantCode: apperrors.ErrCodeInvalidCount},
		{name: "zero count", variables: `{"schema": {"a": "uuid"}, "count": 0}`, wantCode: apperrors.ErrCodeInvalidCount},
		{name: "not an object", variables: `[1, 2]`, wantCode: apperrors.ErrCodeInvalidSchema},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := v.Validate([]byte(tt.variables))
			require.False(t, result.Valid)
			assert.Equal(t, tt.wantCode, inputError(result).Code)
		})
	}

	assert.True(t, v.Validate([]byte(`{"schema": {"a": "uuid"}, "count": 3, "extra": true}`)).Valid)
}

// ==========================
// Configuration Tests
// ==========================

func TestConfigFrom(t *testing.T) {
	cfg := &config.Config{
		Generator: config.GeneratorConfig{MaxCount: 250},
		Workers: map[string]config.WorkerConfig{
			TaskType: {Enabled: true, Timeout: 1500},
		},
	}

	c := ConfigFrom(cfg)
	assert.Equal(t, 1500*time.Millisecond, c.Timeout)
	assert.Equal(t, 250, c.MaxCount)

	c = ConfigFrom(&config.Config{})
	assert.Equal(t, 30*time.Second, c.Timeout)
	assert.Equal(t, 0, c.MaxCount)
}
