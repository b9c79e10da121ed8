package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/pageza/recipegen/backend/internal/apperrors"
	"go.uber.org/zap"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error     string         `json:"error"`
	Code      apperrors.Kind `json:"code"`
	RequestID string         `json:"request_id,omitempty"`
}

// Abort records err on the context and stops the handler chain. ErrorHandler
// renders it.
func Abort(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// ErrorHandler renders the last error pushed onto the gin context as a JSON
// error response with the status mapped from its kind
func ErrorHandler(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		appErr := apperrors.As(c.Errors.Last().Err)
		status := appErr.StatusCode()

		fields := []zap.Field{
			zap.String("request_id", RequestIDFrom(c)),
			zap.String("code", string(appErr.Kind)),
			zap.String("message", appErr.Message),
		}
		if appErr.Cause != nil {
			fields = append(fields, zap.Error(appErr.Cause))
		}
		if status >= http.StatusInternalServerError {
			logger.Error("request failed", fields...)
		} else {
			logger.Debug("request rejected", fields...)
		}

		c.JSON(status, ErrorResponse{
			Error:     appErr.Message,
			Code:      appErr.Kind,
			RequestID: RequestIDFrom(c),
		})
	}
}

// Recovery recovers from panics and returns a 500 error
func Recovery(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error("panic recovered",
					zap.String("request_id", RequestIDFrom(c)),
					zap.Any("error", err),
					zap.String("stack", string(debug.Stack())),
				)

				c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
					Error:     "Internal server error",
					Code:      apperrors.KindInternal,
					RequestID: RequestIDFrom(c),
				})
			}
		}()

		c.Next()
	}
}
