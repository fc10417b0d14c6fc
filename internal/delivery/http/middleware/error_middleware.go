package middleware

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"applyfollow-backend/internal/delivery/http/response"
	"applyfollow-backend/internal/domain"
	"applyfollow-backend/pkg/apperror"
	"applyfollow-backend/pkg/logger"
	"applyfollow-backend/pkg/validation"

	"github.com/gin-gonic/gin"
)

// ErrorHandler turns the last error attached with c.Error into the
// standard response envelope.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		code, message, details := classify(err)
		if code == http.StatusInternalServerError {
			// Internal details are logged, never returned.
			logger.Log.Error("unhandled error",
				"method", c.Request.Method,
				"path", c.FullPath(),
				"request_id", c.GetString(string(domain.KeyRequestID)),
				"error", err,
			)
			message = "An unexpected error occurred. Please try again later."
			details = nil
		}
		response.Error(c, code, message, details)
	}
}

func classify(err error) (int, string, interface{}) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return appErr.Code, appErr.Message, appErr.Details
	}

	if fields, ok := validation.FormatValidationErrors(err); ok {
		return http.StatusBadRequest, "Validation failed", fields
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.Is(err, io.EOF):
		return http.StatusBadRequest, "Request body is required", nil
	case errors.As(err, &syntaxErr), errors.As(err, &typeErr):
		return http.StatusBadRequest, "Malformed request body", nil
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "Resource not found", nil
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict, "Resource already exists", nil
	}

	return http.StatusInternalServerError, "", nil
}
