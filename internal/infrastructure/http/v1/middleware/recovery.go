package middleware

import (
	"fmt"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"maintledger/internal/core/apperror"
	"maintledger/pkg/logger"
)

// Recovery turns a panic into a 500. It is the outermost middleware, so it
// writes the response itself.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			logger.Error(c.Request.Context(), "panic recovered",
				"panic", r,
				"stack", string(debug.Stack()),
			)
			if !c.Writer.Written() {
				writeError(c, apperror.NewInternal(fmt.Errorf("panic: %v", r)))
			}
		}()
		c.Next()
	}
}
