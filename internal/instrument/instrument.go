package instrument

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
)

type ctxKey int

const traceIDKey ctxKey = iota

// TraceHeader carries the trace id in both directions.
const TraceHeader = "X-Trace-ID"

// newUUID generates a new UUID v4 string.
func newUUID() string {
	return uuid.New().String()
}

// WithTraceID sets the trace ID in the context.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey, traceID)
}

// GetTraceID returns the trace ID from the context.
func GetTraceID(ctx context.Context) string {
	if v, ok := ctx.Value(traceIDKey).(string); ok {
		return v
	}
	return ""
}

// Logf logs through the standard logger, prefixed with the request's trace ID when present.
func Logf(ctx context.Context, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if traceID := GetTraceID(ctx); traceID != "" {
		msg = "[" + traceID + "] " + msg
	}
	log.Output(2, msg) //nolint:errcheck
}
