// Package context carries request identifiers through the call chain so log
// lines and audit rows can be joined back to the HTTP request.
package context

import (
	"context"

	"go.opentelemetry.io/otel/trace"
)

// RequestInfo identifies one inbound request.
type RequestInfo struct {
	RequestID string
	TraceID   string
}

type requestKey struct{}

func WithRequest(ctx context.Context, info RequestInfo) context.Context {
	return context.WithValue(ctx, requestKey{}, info)
}

// Request returns the identifiers stored by WithRequest.
func Request(ctx context.Context) (RequestInfo, bool) {
	info, ok := ctx.Value(requestKey{}).(RequestInfo)
	return info, ok
}

// SpanTraceID returns the trace id of the active span, or "" when no
// recording tracer is installed.
func SpanTraceID(ctx context.Context) string {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.HasTraceID() {
		return ""
	}
	return sc.TraceID().String()
}
