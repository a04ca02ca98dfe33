package app

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

const AdminTokenHeader = "X-Admin-Token"

// AdminOnly guards mutating routes with a shared admin token. Identity and
// sessions are handled in front of this service; an empty token disables
// the check.
func AdminOnly(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token == "" {
			c.Next()
			return
		}
		got := c.GetHeader(AdminTokenHeader)
		if got == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"status": "FAIL", "message": "Unauthorized: User not authenticated"})
			return
		}
		if subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
			c.AbortWithStatusJSON(http.StatusForbidden, H{"status": "FAIL", "message": "Forbidden: Insufficient permissions"})
			return
		}
		c.Next()
	}
}
