package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

// WebhookSecretMiddleware authenticates inbound webhook deliveries with a
// shared secret carried in the X-Webhook-Secret header.
// If no secret is configured, all requests are allowed (local development).
func WebhookSecretMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret != "" {
			provided := c.GetHeader("X-Webhook-Secret")
			if subtle.ConstantTimeCompare([]byte(provided), []byte(secret)) != 1 {
				c.String(http.StatusUnauthorized, "unauthorized: invalid webhook secret")
				c.Abort()
				return
			}
		}
		c.Next()
	}
}
