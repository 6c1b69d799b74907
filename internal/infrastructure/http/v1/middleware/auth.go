package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"maintledger/internal/core/apperror"
	"maintledger/internal/core/security"
)

// TokenValidator turns a bearer token into a session.
type TokenValidator interface {
	ValidateToken(tokenString string) (*security.Session, error)
}

// Auth requires a bearer token and stores the resulting session in the
// request context.
func Auth(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		scheme, token, ok := strings.Cut(c.GetHeader("Authorization"), " ")
		if !ok || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(token) == "" {
			_ = c.Error(apperror.NewUnauthorized("bearer token required"))
			c.Abort()
			return
		}

		session, err := validator.ValidateToken(strings.TrimSpace(token))
		if err != nil {
			_ = c.Error(apperror.NewUnauthorized("invalid token").WithCause(err))
			c.Abort()
			return
		}

		c.Request = c.Request.WithContext(security.WithSession(c.Request.Context(), session))
		c.Next()
	}
}
