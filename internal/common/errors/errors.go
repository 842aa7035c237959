// Package errors provides standardized error handling shared by the CLI, the
// HTTP service and the workflow job worker.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeInvalidRequest     ErrorCode = "INVALID_REQUEST"
	ErrCodeInvalidSchema      ErrorCode = "INVALID_SCHEMA"
	ErrCodeInvalidCount       ErrorCode = "INVALID_COUNT"
	ErrCodeCountLimitExceeded ErrorCode = "COUNT_LIMIT_EXCEEDED"
	ErrCodeSchemaTooDeep      ErrorCode = "SCHEMA_TOO_DEEP"

	ErrCodeGenerationFailed  ErrorCode = "GENERATION_FAILED"
	ErrCodeGenerationTimeout ErrorCode = "GENERATION_TIMEOUT"

	ErrCodeSinkConnectionFailed ErrorCode = "SINK_CONNECTION_FAILED"
	ErrCodeSinkDeliveryFailed   ErrorCode = "SINK_DELIVERY_FAILED"
	ErrCodeTableNotFound        ErrorCode = "TABLE_NOT_FOUND"
	ErrCodeDatabaseInsertFailed ErrorCode = "DATABASE_INSERT_FAILED"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`

	cause error
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// Unwrap exposes the underlying error so errors.Is keeps matching sentinels.
func (e *StandardError) Unwrap() error {
	return e.cause
}

// HTTPStatus maps the error code to a response status.
func (e *StandardError) HTTPStatus() int {
	switch e.Code {
	case ErrCodeInvalidRequest, ErrCodeInvalidSchema, ErrCodeInvalidCount,
		ErrCodeCountLimitExceeded, ErrCodeSchemaTooDeep:
		return http.StatusBadRequest
	case ErrCodeTableNotFound:
		return http.StatusNotFound
	case ErrCodeSinkConnectionFailed, ErrCodeSinkDeliveryFailed:
		return http.StatusBadGateway
	case ErrCodeGenerationTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// WithMetadata attaches a metadata entry and returns the error.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// As extracts a StandardError from an error chain.
func As(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

func newError(code ErrorCode, message, details string, retryable bool, cause error) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
		cause:     cause,
	}
}

// NewInvalidRequestError creates a non-retryable request error. message is
// shown to the caller as-is.
func NewInvalidRequestError(message, details string) *StandardError {
	return newError(ErrCodeInvalidRequest, message, details, false, nil)
}

// NewInvalidSchemaError creates a non-retryable schema error.
func NewInvalidSchemaError(details string) *StandardError {
	return newError(ErrCodeInvalidSchema, "Missing or invalid 'schema' in request body.", details, false, nil)
}

// NewInvalidCountError creates a non-retryable count error.
func NewInvalidCountError(details string) *StandardError {
	return newError(ErrCodeInvalidCount, "'count' must be a positive integer.", details, false, nil)
}

// NewCountLimitExceededError creates a non-retryable error for batches over the configured cap.
func NewCountLimitExceededError(count, limit int) *StandardError {
	return newError(ErrCodeCountLimitExceeded,
		fmt.Sprintf("'count' must not exceed %d.", limit),
		fmt.Sprintf("requested: %d, limit: %d", count, limit), false, nil)
}

// NewSchemaTooDeepError creates a non-retryable nesting error.
func NewSchemaTooDeepError(err error) *StandardError {
	return newError(ErrCodeSchemaTooDeep, "Schema nesting exceeds the maximum depth.", err.Error(), false, err)
}

// NewGenerationFailedError creates a non-retryable generation error.
func NewGenerationFailedError(err error) *StandardError {
	return newError(ErrCodeGenerationFailed, "Internal server error during data generation.", err.Error(), false, err)
}

// NewGenerationTimeoutError creates a retryable timeout error.
func NewGenerationTimeoutError(err error) *StandardError {
	return newError(ErrCodeGenerationTimeout, "Data generation timed out.", err.Error(), true, err)
}

// NewSinkConnectionFailedError creates a retryable connection error.
func NewSinkConnectionFailedError(sink string, err error) *StandardError {
	return newError(ErrCodeSinkConnectionFailed,
		fmt.Sprintf("Could not connect to %s.", sink),
		err.Error(), true, err).WithMetadata("sink", sink)
}

// NewSinkDeliveryFailedError creates a retryable delivery error.
func NewSinkDeliveryFailedError(sink string, err error) *StandardError {
	return newError(ErrCodeSinkDeliveryFailed,
		fmt.Sprintf("Delivery to %s failed.", sink),
		err.Error(), true, err).WithMetadata("sink", sink)
}

// NewTableNotFoundError creates a non-retryable reflection error.
func NewTableNotFoundError(table string) *StandardError {
	return newError(ErrCodeTableNotFound,
		fmt.Sprintf("Table '%s' not found in database.", table),
		fmt.Sprintf("table: %s", table), false, nil)
}

// NewDatabaseInsertFailedError creates a retryable insert error.
func NewDatabaseInsertFailedError(table string, err error) *StandardError {
	return newError(ErrCodeDatabaseInsertFailed,
		"Database insert failed; no records were inserted.",
		fmt.Sprintf("table: %s, error: %s", table, err.Error()), true, err)
}

// NewInternalError wraps an unexpected error.
func NewInternalError(err error) *StandardError {
	return newError(ErrCodeInternal, "Unexpected error", err.Error(), false, err)
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// BPMNErrorMapping maps internal error codes to BPMN error codes.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeInvalidRequest:       "INVALID_REQUEST",
	ErrCodeInvalidSchema:        "INVALID_SCHEMA",
	ErrCodeInvalidCount:         "INVALID_COUNT",
	ErrCodeCountLimitExceeded:   "INVALID_COUNT",
	ErrCodeSchemaTooDeep:        "SCHEMA_TOO_DEEP",
	ErrCodeGenerationFailed:     "GENERATION_FAILED",
	ErrCodeGenerationTimeout:    "GENERATION_TIMEOUT",
	ErrCodeSinkConnectionFailed: "SINK_UNAVAILABLE",
	ErrCodeSinkDeliveryFailed:   "SINK_UNAVAILABLE",
	ErrCodeTableNotFound:        "TABLE_NOT_FOUND",
	ErrCodeDatabaseInsertFailed: "DATABASE_INSERT_FAILED",
}

// GetRetryCount returns the recommended retry count for a code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeSinkConnectionFailed,
		ErrCodeSinkDeliveryFailed,
		ErrCodeDatabaseInsertFailed:
		return 3

	case ErrCodeGenerationTimeout:
		return 1

	default:
		return 0 // Business errors: no retry
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	return &BPMNError{
		Code:      bpmnCode,
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		Retries:   retries,
		ErrorVariables: map[string]interface{}{
			"originalErrorCode": string(stdErr.Code),
			"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
		},
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.HasPrefix(codeStr, "SINK") || strings.Contains(codeStr, "TABLE") || strings.Contains(codeStr, "DATABASE"):
		return "SINK"
	case strings.HasPrefix(codeStr, "GENERATION"):
		return "GENERATION"
	case strings.HasPrefix(codeStr, "INVALID") || strings.Contains(codeStr, "SCHEMA") || strings.Contains(codeStr, "COUNT"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
