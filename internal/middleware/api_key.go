package middleware

import (
	"crypto/subtle"

	"github.com/gin-gonic/gin"

	apperrors "tally/internal/errors"
)

// APIKeyAuth validates the X-API-Key header against apiKey. It guards
// operational endpoints such as /metrics; an empty apiKey leaves them open.
func APIKeyAuth(apiKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if apiKey == "" {
			c.Next()
			return
		}
		key := c.GetHeader("X-API-Key")
		if subtle.ConstantTimeCompare([]byte(key), []byte(apiKey)) != 1 {
			WriteError(c, apperrors.ErrInvalidAPIKey)
			return
		}
		c.Next()
	}
}
