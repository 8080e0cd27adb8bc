package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"finbot/internal/logger"
	"finbot/internal/uuid"
)

// RequestIDKey is the gin context key holding the request id.
const RequestIDKey = "requestID"

// RequestLogging logs each request with a time-ordered request id. An
// incoming X-Request-ID is reused so callers can correlate their logs.
func RequestLogging() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New()
		}
		c.Set(RequestIDKey, requestID)
		c.Writer.Header().Set("X-Request-ID", requestID)

		c.Next()

		latency := time.Since(start)
		logger.Get().Infow("request",
			"request_id", requestID,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"query", c.Request.URL.RawQuery,
			"latency_ms", latency.Milliseconds(),
		)
	}
}
