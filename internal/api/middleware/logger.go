package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/harborline/freightdesk/internal/logger"
)

// Logger returns a Gin middleware that injects a request-scoped logger
// and logs request completion with latency.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		requestID := uuid.NewString()

		ctx := logger.WithFields(c.Request.Context(), logger.Fields{
			logger.FieldRequestID: requestID,
			logger.FieldComponent: "api",
		})
		c.Request = c.Request.WithContext(ctx)
		c.Header("X-Request-ID", requestID)

		c.Next()

		logger.FromContext(ctx).WithFields(logger.Fields{
			"method":      c.Request.Method,
			"path":        path,
			"status":      c.Writer.Status(),
			"client_ip":   c.ClientIP(),
			"duration_ms": time.Since(start).Milliseconds(),
		}).Info("Request completed")
	}
}
