package middleware

import (
	"crypto/subtle"

	"github.com/gin-gonic/gin"

	apperrors "finbot/internal/errors"
)

// APIKeyHeader carries the shared secret of the local API.
const APIKeyHeader = "X-API-Key"

// APIKeyAuth rejects requests whose X-API-Key header does not match apiKey.
// An empty apiKey leaves the routes open; the API listens on loopback by default.
func APIKeyAuth(apiKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if apiKey == "" {
			c.Next()
			return
		}
		key := c.GetHeader(APIKeyHeader)
		if subtle.ConstantTimeCompare([]byte(key), []byte(apiKey)) != 1 {
			_ = c.Error(apperrors.WithMessage(apperrors.ErrUnauthorized, "Invalid or missing API key"))
			c.Abort()
			return
		}
		c.Next()
	}
}
