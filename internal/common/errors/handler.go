// internal/common/errors/handler.go
package errors

import (
	"github.com/gin-gonic/gin"
)

// ErrorHandler turns errors into API responses with standardized logging.
type ErrorHandler struct {
	logger Logger
}

type Logger interface {
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// HandleRequestError writes the JSON error body and aborts the gin chain.
func (h *ErrorHandler) HandleRequestError(c *gin.Context, err error) {
	stdErr := AsStandard(err)
	status := HTTPStatus(stdErr.Code)

	h.logError(c, stdErr, status)

	c.AbortWithStatusJSON(status, gin.H{
		"code":      string(stdErr.Code),
		"message":   stdErr.Message,
		"details":   stdErr.Details,
		"retryable": stdErr.Retryable,
	})
}

func (h *ErrorHandler) logError(c *gin.Context, stdErr *StandardError, status int) {
	if h.logger == nil {
		return
	}
	fields := map[string]interface{}{
		"method":        c.Request.Method,
		"path":          c.FullPath(),
		"status":        status,
		"errorCode":     string(stdErr.Code),
		"message":       stdErr.Message,
		"details":       stdErr.Details,
		"retryable":     stdErr.Retryable,
		"errorCategory": GetErrorCategory(stdErr.Code),
	}
	if status >= 500 {
		h.logger.Error("request failed", fields)
		return
	}
	h.logger.Warn("request rejected", fields)
}
