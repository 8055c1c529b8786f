package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"

	apperrors "pyggy/internal/errors"
	"pyggy/internal/logger"
)

// ErrorHandler converts errors attached with c.Error into the JSON error body
// used across the API. Binding errors become INVALID_INPUT; unknown errors are
// logged and reported as INTERNAL_ERROR. Nothing is written when the handler
// already produced a response.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		last := c.Errors.Last()
		err := last.Err

		var appErr *apperrors.AppError
		switch {
		case errors.As(err, &appErr):
			if appErr.Internal != nil {
				logger.Get().Errorw("app error",
					"code", appErr.Code,
					"message", appErr.Message,
					"internal", appErr.Internal.Error(),
					"path", c.Request.URL.Path,
					"request_id", RequestID(c),
				)
			}
		case last.IsType(gin.ErrorTypeBind):
			appErr = apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
		default:
			logger.Get().Errorw("unexpected error",
				"error", err.Error(),
				"path", c.Request.URL.Path,
				"method", c.Request.Method,
				"request_id", RequestID(c),
			)
			appErr = apperrors.ErrInternalServer
		}

		c.JSON(appErr.StatusCode, gin.H{
			"error": gin.H{
				"code":    appErr.Code,
				"message": appErr.Message,
			},
		})
	}
}
