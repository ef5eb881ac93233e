// Package errors provides standardized error handling for the prediction service.
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
	ErrCodeValidation       ErrorCode = "VALIDATION_ERROR"
	ErrCodeInvalidRegion    ErrorCode = "INVALID_REGION"
	ErrCodeGatewayFailure   ErrorCode = "GATEWAY_FAILURE"
	ErrCodeGatewayTimeout   ErrorCode = "GATEWAY_TIMEOUT"
	ErrCodeNotFound         ErrorCode = "NOT_FOUND"
	ErrCodeCorruptData      ErrorCode = "CORRUPT_DATA"
	ErrCodeStorageFailure   ErrorCode = "STORAGE_FAILURE"
	ErrCodeBatchNotFinished ErrorCode = "BATCH_NOT_FINISHED"
	ErrCodeInternal         ErrorCode = "INTERNAL_ERROR"
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
	if e.Details != "" {
		return fmt.Sprintf("StandardError[%s]: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

// Is matches any StandardError carrying the same code, so sentinel values
// such as ErrNotFound work with errors.Is.
func (e *StandardError) Is(target error) bool {
	t, ok := target.(*StandardError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Sentinels for errors.Is comparisons.
var (
	ErrValidation       = &StandardError{Code: ErrCodeValidation}
	ErrInvalidRegion    = &StandardError{Code: ErrCodeInvalidRegion}
	ErrNotFound         = &StandardError{Code: ErrCodeNotFound}
	ErrCorruptData      = &StandardError{Code: ErrCodeCorruptData}
	ErrStorageFailure   = &StandardError{Code: ErrCodeStorageFailure}
	ErrBatchNotFinished = &StandardError{Code: ErrCodeBatchNotFinished}
)

// ==========================
// 2. Error Constructors
// ==========================

// NewValidationError creates a non-retryable input validation error.
func NewValidationError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeValidation,
		Message:   "Input validation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidRegionError creates a non-retryable error for a region missing from the catalog.
func NewInvalidRegionError(regionCode string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidRegion,
		Message:   "Unsupported region",
		Details:   fmt.Sprintf("regionCode: %s", regionCode),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewGatewayFailureError wraps a failed prediction call.
func NewGatewayFailureError(key string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeGatewayFailure,
		Message:   "Prediction endpoint error",
		Details:   fmt.Sprintf("request: %s, error: %s", key, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewGatewayTimeoutError creates a retryable prediction timeout error.
func NewGatewayTimeoutError(key string) *StandardError {
	return &StandardError{
		Code:      ErrCodeGatewayTimeout,
		Message:   "Prediction endpoint timeout",
		Details:   fmt.Sprintf("request: %s", key),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotFoundError creates a non-retryable not found error.
func NewNotFoundError(resource, id string) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotFound,
		Message:   fmt.Sprintf("%s not found", resource),
		Details:   fmt.Sprintf("id: %s", id),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewCorruptDataError reports a stored value that does not parse as expected.
func NewCorruptDataError(key string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCorruptData,
		Message:   "Stored data is corrupt",
		Details:   fmt.Sprintf("key: %s, error: %s", key, err.Error()),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewStorageFailureError creates a retryable backend error.
func NewStorageFailureError(operation string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeStorageFailure,
		Message:   "Storage backend error",
		Details:   fmt.Sprintf("operation: %s, error: %s", operation, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewBatchNotFinishedError is returned when a save is requested before any batch completed.
func NewBatchNotFinishedError(state string) *StandardError {
	return &StandardError{
		Code:      ErrCodeBatchNotFinished,
		Message:   "No finished batch to save",
		Details:   fmt.Sprintf("state: %s", state),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. Utility Functions
// ==========================

// AsStandard normalizes any error into a StandardError.
func AsStandard(err error) *StandardError {
	if err == nil {
		return nil
	}
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// HTTPStatus returns the HTTP status an API response should carry for the code.
func HTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeValidation, ErrCodeInvalidRegion:
		return http.StatusBadRequest
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeBatchNotFinished:
		return http.StatusConflict
	case ErrCodeGatewayFailure, ErrCodeGatewayTimeout:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "GATEWAY"):
		return "PREDICTION"
	case strings.Contains(codeStr, "STORAGE") || strings.Contains(codeStr, "CORRUPT"):
		return "STORAGE"
	case strings.Contains(codeStr, "INVALID") || strings.Contains(codeStr, "VALIDATION"):
		return "VALIDATION"
	case strings.Contains(codeStr, "NOT_FOUND"):
		return "LOOKUP"
	case strings.Contains(codeStr, "BATCH"):
		return "BATCH"
	default:
		return "OTHER"
	}
}
