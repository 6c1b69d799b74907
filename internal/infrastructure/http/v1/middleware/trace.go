package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	appctx "maintledger/internal/core/context"
)

const (
	HeaderRequestID = "X-Request-ID"
	HeaderTraceID   = "X-Trace-ID"
)

var tracer = otel.Tracer("maintledger/http")

// Trace opens a server span per request and stores the request identifiers.
// The trace id comes from the span when a tracer provider is installed,
// then from the X-Trace-ID header, then a fresh uuid.
func Trace() gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		ctx, span := tracer.Start(c.Request.Context(), c.Request.Method+" "+route,
			trace.WithSpanKind(trace.SpanKindServer),
		)
		defer span.End()

		info := appctx.RequestInfo{
			RequestID: headerOr(c, HeaderRequestID),
			TraceID:   appctx.SpanTraceID(ctx),
		}
		if info.TraceID == "" {
			info.TraceID = headerOr(c, HeaderTraceID)
		}
		span.SetAttributes(attribute.String("request.id", info.RequestID))

		c.Request = c.Request.WithContext(appctx.WithRequest(ctx, info))
		c.Header(HeaderRequestID, info.RequestID)
		c.Header(HeaderTraceID, info.TraceID)

		c.Next()

		status := c.Writer.Status()
		span.SetAttributes(attribute.Int("http.status_code", status))
		if status >= 500 {
			span.SetStatus(codes.Error, "server error")
		}
	}
}

func headerOr(c *gin.Context, name string) string {
	if v := c.GetHeader(name); v != "" {
		return v
	}
	return uuid.NewString()
}
