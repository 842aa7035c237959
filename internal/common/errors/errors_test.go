package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errSentinel = stderrors.New("SENTINEL")

func TestStandardError_HTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  *StandardError
		want int
	}{
		{name: "invalid schema", err: NewInvalidSchemaError("schema is a list"), want: http.StatusBadRequest},
		{name: "invalid count", err: NewInvalidCountError("count: 0"), want: http.StatusBadRequest},
		{name: "count cap", err: NewCountLimitExceededError(20, 10), want: http.StatusBadRequest},
		{name: "too deep", err: NewSchemaTooDeepError(errSentinel), want: http.StatusBadRequest},
		{name: "table missing", err: NewTableNotFoundError("users"), want: http.StatusNotFound},
		{name: "sink down", err: NewSinkConnectionFailedError("redis", errSentinel), want: http.StatusBadGateway},
		{name: "timeout", err: NewGenerationTimeoutError(errSentinel), want: http.StatusGatewayTimeout},
		{name: "insert failed", err: NewDatabaseInsertFailedError("users", errSentinel), want: http.StatusInternalServerError},
		{name: "generation failed", err: NewGenerationFailedError(errSentinel), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.HTTPStatus())
		})
	}
}

func TestStandardError_Messages(t *testing.T) {
	assert.Equal(t, "Missing or invalid 'schema' in request body.", NewInvalidSchemaError("").Message)
	assert.Equal(t, "'count' must be a positive integer.", NewInvalidCountError("").Message)
	assert.Equal(t, "Internal server error during data generation.", NewGenerationFailedError(errSentinel).Message)
	assert.Equal(t, "'count' must not exceed 10.", NewCountLimitExceededError(11, 10).Message)
}

func TestStandardError_UnwrapAndAs(t *testing.T) {
	stdErr := NewSchemaTooDeepError(fmt.Errorf("%w: at a.b", errSentinel))
	wrapped := fmt.Errorf("handler: %w", stdErr)

	assert.ErrorIs(t, wrapped, errSentinel)

	got, ok := As(wrapped)
	require.True(t, ok)
	assert.Equal(t, ErrCodeSchemaTooDeep, got.Code)

	_, ok = As(errSentinel)
	assert.False(t, ok)
}

func TestConvertToBPMNError(t *testing.T) {
	bpmn := ConvertToBPMNError(NewSinkDeliveryFailedError("amqp", errSentinel))
	assert.Equal(t, "SINK_UNAVAILABLE", bpmn.Code)
	assert.True(t, bpmn.Retryable)
	assert.Equal(t, 3, bpmn.Retries)
	assert.Equal(t, "SINK_DELIVERY_FAILED", bpmn.ErrorVariables["originalErrorCode"])

	vars := bpmn.ToErrorVariables()
	assert.Equal(t, "SINK_UNAVAILABLE", vars["errorCode"])
	assert.Equal(t, "SENTINEL", vars["errorDetails"])

	bpmn = ConvertToBPMNError(NewInvalidSchemaError("bad"))
	assert.Equal(t, "INVALID_SCHEMA", bpmn.Code)
	assert.Equal(t, 0, bpmn.Retries)

	bpmn = ConvertToBPMNError(&StandardError{Code: "SOMETHING_ELSE", Retryable: true})
	assert.Equal(t, "SOMETHING_ELSE", bpmn.Code)
	assert.Equal(t, 0, bpmn.Retries)
}

func TestGetErrorCategory(t *testing.T) {
	tests := map[ErrorCode]string{
		ErrCodeSinkConnectionFailed: "SINK",
		ErrCodeTableNotFound:        "SINK",
		ErrCodeDatabaseInsertFailed: "SINK",
		ErrCodeGenerationTimeout:    "GENERATION",
		ErrCodeInvalidRequest:       "VALIDATION",
		ErrCodeSchemaTooDeep:        "VALIDATION",
		ErrCodeCountLimitExceeded:   "VALIDATION",
		ErrCodeInternal:             "OTHER",
	}
	for code, want := range tests {
		assert.Equal(t, want, GetErrorCategory(code), code)
	}
	assert.Positive(t, GetRetryCount(ErrCodeSinkConnectionFailed))
	assert.Zero(t, GetRetryCount(ErrCodeInvalidSchema))
}

func TestStandardError_WithMetadata(t *testing.T) {
	err := NewSinkConnectionFailedError("mongo", errSentinel).WithMetadata("attempt", 2)
	assert.Equal(t, "mongo", err.Metadata["sink"])
	assert.Equal(t, 2, err.Metadata["attempt"])
	assert.Contains(t, err.Error(), "SINK_CONNECTION_FAILED")
}
