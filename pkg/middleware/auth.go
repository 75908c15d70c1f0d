package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Credential headers. Either may carry the user's key.
const (
	HeaderAPIKey    = "api-key"
	HeaderAPISecret = "api-secret"
)

// UsernameKey is the gin context key holding the authenticated username.
const UsernameKey = "username"

// Verifier resolves presented credential values to a username.
type Verifier interface {
	Verify(presented ...string) (string, bool)
}

// RequireCredentials rejects requests whose api-key or api-secret header does not match a
// registered user. On success the username is stored under UsernameKey.
func RequireCredentials(ver Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(HeaderAPIKey)
		secret := c.GetHeader(HeaderAPISecret)
		if key == "" && secret == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication failed"})
			return
		}
		username, ok := ver.Verify(key, secret)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication failed"})
			return
		}
		c.Set(UsernameKey, username)
		c.Next()
	}
}

// Username returns the authenticated username set by RequireCredentials.
func Username(c *gin.Context) string {
	return c.GetString(UsernameKey)
}
