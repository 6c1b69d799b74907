package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"maintledger/pkg/logger"
)

// Logger writes one line per request. Client errors log at warn and server
// errors at error.
func Logger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := []any{
			"method", c.Request.Method,
			"route", c.FullPath(),
			"path", c.Request.URL.Path,
			"status", status,
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, "error", c.Errors.Last().Error())
		}

		l := log.WithContext(c.Request.Context())
		switch {
		case status >= http.StatusInternalServerError:
			l.Errorw("http request", fields...)
		case status >= http.StatusBadRequest:
			l.Warnw("http request", fields...)
		default:
			l.Infow("http request", fields...)
		}
	}
}
