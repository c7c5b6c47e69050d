package auth

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	CtxFirebaseUID = "firebase_uid"
	CtxEmail       = "email"
)

// UserID extracts the authenticated user id from the Gin context.
// This is set by middleware.FirebaseAuthMiddleware or OptionalUser.
func UserID(c *gin.Context) string {
	return strings.TrimSpace(c.GetString(CtxFirebaseUID))
}
