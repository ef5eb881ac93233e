package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingLogger struct {
	warns  []string
	errors []string
}

func (l *recordingLogger) Warn(msg string, _ map[string]interface{})  { l.warns = append(l.warns, msg) }
func (l *recordingLogger) Error(msg string, _ map[string]interface{}) { l.errors = append(l.errors, msg) }

func TestStandardError_IsMatchesByCode(t *testing.T) {
	err := fmt.Errorf("save snapshot: %w", NewValidationError("name is blank"))

	assert.True(t, stderrors.Is(err, ErrValidation))
	assert.False(t, stderrors.Is(err, ErrNotFound))
}

func TestStandardError_UnwrapsCause(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := NewStorageFailureError("get", cause)

	assert.True(t, stderrors.Is(err, cause))
	assert.True(t, stderrors.Is(err, ErrStorageFailure))
	assert.True(t, err.Retryable)
}

func TestAsStandard(t *testing.T) {
	assert.Nil(t, AsStandard(nil))

	std := NewNotFoundError("snapshot", "abc")
	assert.Same(t, std, AsStandard(fmt.Errorf("wrapped: %w", std)))

	plain := AsStandard(stderrors.New("boom"))
	assert.Equal(t, ErrCodeInternal, plain.Code)
	assert.Equal(t, "boom", plain.Details)
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want int
	}{
		{ErrCodeValidation, http.StatusBadRequest},
		{ErrCodeInvalidRegion, http.StatusBadRequest},
		{ErrCodeNotFound, http.StatusNotFound},
		{ErrCodeBatchNotFinished, http.StatusConflict},
		{ErrCodeGatewayTimeout, http.StatusBadGateway},
		{ErrCodeStorageFailure, http.StatusInternalServerError},
		{ErrCodeInternal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.code))
		})
	}
}

func TestGetErrorCategory(t *testing.T) {
	assert.Equal(t, "PREDICTION", GetErrorCategory(ErrCodeGatewayFailure))
	assert.Equal(t, "STORAGE", GetErrorCategory(ErrCodeCorruptData))
	assert.Equal(t, "VALIDATION", GetErrorCategory(ErrCodeInvalidRegion))
	assert.Equal(t, "LOOKUP", GetErrorCategory(ErrCodeNotFound))
	assert.Equal(t, "BATCH", GetErrorCategory(ErrCodeBatchNotFinished))
	assert.Equal(t, "OTHER", GetErrorCategory(ErrCodeInternal))
}

func TestErrorHandler_HandleRequestError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("client error is logged as warning", func(t *testing.T) {
		log := &recordingLogger{}
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/api/snapshots/x", nil)

		NewErrorHandler(log).HandleRequestError(c, NewNotFoundError("snapshot", "x"))

		require.Equal(t, http.StatusNotFound, w.Code)
		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "NOT_FOUND", body["code"])
		assert.Len(t, log.warns, 1)
		assert.Empty(t, log.errors)
		assert.True(t, c.IsAborted())
	})

	t.Run("unknown error becomes internal error", func(t *testing.T) {
		log := &recordingLogger{}
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/api/batches", nil)

		NewErrorHandler(log).HandleRequestError(c, stderrors.New("boom"))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Len(t, log.errors, 1)
	})
}
