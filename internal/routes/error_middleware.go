package routes

import (
	"log/slog"

	"github.com/gin-gonic/gin"
)

// ErrorHandler captures errors added to the gin context and writes the
// standard response envelope with the mapped status code.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next() // Process the request first

		if len(c.Errors) == 0 {
			return
		}

		// Use the last error (most recent)
		err := c.Errors.Last().Err

		statusCode := GetErrorStatus(err)
		message := GetErrorMessage(err)

		if statusCode >= 500 {
			slog.Error("Request failed with server error",
				"error", err,
				"status", statusCode,
				"path", c.Request.URL.Path,
				"method", c.Request.Method,
			)
		} else {
			slog.Warn("Request failed with client error",
				"error", err,
				"status", statusCode,
				"path", c.Request.URL.Path,
				"method", c.Request.Method,
			)
		}

		if !c.Writer.Written() {
			c.JSON(statusCode, apiResponse{
				StatusCode: statusCode,
				Data:       nil,
				Message:    message,
				Path:       c.Request.URL.Path,
			})
		}
	}
}

// AbortWithError aborts the request and queues the error for ErrorHandler.
func AbortWithError(c *gin.Context, err error) {
	c.Error(err)
	c.Abort()
	c.Status(GetErrorStatus(err))
}
