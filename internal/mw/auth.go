package mw

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"carslink-backend/config"
	"carslink-backend/internal/auth"
)

// ContextAccountID is the gin context key holding the authenticated account id.
const ContextAccountID = "account_id"

// RequireAuth validates the bearer token and stores the account id in the
// request context.
func RequireAuth(cfg config.AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		claims, err := auth.ParseAccessToken(cfg, strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		c.Set(ContextAccountID, claims.Subject)
		c.Next()
	}
}

// AccountID returns the authenticated account id from the context.
func AccountID(c *gin.Context) string {
	return c.GetString(ContextAccountID)
}

// RequireGarageKey protects the garage-side endpoints with a shared API key.
// Garage authentication proper is out of scope; this keeps the surface from
// being open.
func RequireGarageKey(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if key == "" {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "garage API is not configured"})
			return
		}
		provided := c.GetHeader("X-Garage-Key")
		if subtle.ConstantTimeCompare([]byte(provided), []byte(key)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid garage key"})
			return
		}
		c.Next()
	}
}
