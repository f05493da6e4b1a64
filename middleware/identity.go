package middleware

import (
	"strings"

	"labcart/utils"

	"github.com/gin-gonic/gin"
)

// Context keys set by IdentityMiddleware.
const (
	ContextUserKey       = "userKey"
	ContextAuthenticated = "authenticated"
)

// IdentityMiddleware resolves the caller's identity key. A valid bearer
// token yields the authenticated user id; everything else yields a guest key
// derived from the device fingerprint so anonymous users keep their cart and
// checkout progress across requests. Requests are never rejected here: the
// checkout flow works for guests.
func IdentityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if strings.HasPrefix(authHeader, "Bearer ") {
			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			if userID, err := utils.ExtractIDFromToken(tokenString); err == nil {
				c.Set(ContextUserKey, userID)
				c.Set(ContextAuthenticated, true)
				c.Next()
				return
			}
		}

		fingerprint := c.GetHeader("X-Device-ID")
		if fingerprint == "" {
			fingerprint = getClientIP(c) + "|" + c.Request.UserAgent()
		}
		c.Set(ContextUserKey, utils.DeriveGuestKey(fingerprint))
		c.Set(ContextAuthenticated, false)
		c.Next()
	}
}

// UserKey reads the identity key resolved by IdentityMiddleware.
func UserKey(c *gin.Context) string {
	if v, ok := c.Get(ContextUserKey); ok {
		if key, ok := v.(string); ok {
			return key
		}
	}
	return ""
}

// IsAuthenticated reports whether the caller presented a valid token.
func IsAuthenticated(c *gin.Context) bool {
	if v, ok := c.Get(ContextAuthenticated); ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return false
}
