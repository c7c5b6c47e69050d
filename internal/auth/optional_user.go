package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// OptionalUser sets a user id in context without verifying a token.
// - The id is read from the X-User-Id header, falling back to defaultUID.
// - With neither available the request is rejected.
// - Use this ONLY for development/testing.
func OptionalUser(defaultUID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := strings.TrimSpace(c.GetHeader("X-User-Id"))
		if uid == "" {
			uid = defaultUID
		}
		if uid == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Unauthorized"})
			return
		}

		c.Set(CtxFirebaseUID, uid)
		c.Next()
	}
}
