// Package contexthelpers stores request-scoped values in [context.Context].
package contexthelpers

import (
	"context"
	"net/http"
)

type contextKey string

const traceIDContextKey = contextKey("traceID")

// SetTraceID stores the trace id of the request.
func SetTraceID(r *http.Request, traceID string) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), traceIDContextKey, traceID))
}

// TraceID returns the trace id of the request or an empty string outside a request.
func TraceID(ctx context.Context) string {
	traceID, ok := ctx.Value(traceIDContextKey).(string)
	if !ok {
		return ""
	}
	return traceID
}
