// Package middleware holds the gin middleware of the v1 API.
package middleware

import (
	"github.com/gin-gonic/gin"

	"maintledger/internal/core/security"
)

// RequirePermission rejects sessions whose role lacks p with 403, and
// requests without a session with 401.
func RequirePermission(p security.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := security.FromContext(c.Request.Context())
		if err := session.Require(p); err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}
		c.Next()
	}
}
