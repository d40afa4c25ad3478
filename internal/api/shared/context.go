package shared

import (
	"context"
	"crypto/rand"
	"encoding/hex"
)

// ContextKey is a private type for context keys defined in this package.
type ContextKey string

// Context keys for various values
const (
	// UserIDContextKey is the context key for the authenticated user's ID.
	UserIDContextKey ContextKey = "userID"

	// UserEmailContextKey is the context key for the authenticated user's email.
	UserEmailContextKey ContextKey = "userEmail"

	// TraceIDKey is the key for the trace ID in the request context.
	TraceIDKey ContextKey = "traceID"

	// traceIDLength is the number of random bytes in a trace ID.
	traceIDLength = 16 // 32 hex characters
)

// GetUserEmail retrieves the authenticated user's email claim from the
// context, or "" if absent.
func GetUserEmail(ctx context.Context) string {
	if email, ok := ctx.Value(UserEmailContextKey).(string); ok {
		return email
	}
	return ""
}

// SetTraceID adds a freshly generated trace ID to the context.
// This is useful for correlating logs and error responses.
func SetTraceID(ctx context.Context) context.Context {
	return context.WithValue(ctx, TraceIDKey, generateTraceID())
}

// GetTraceID retrieves the trace ID from the context, or "" if absent.
func GetTraceID(ctx context.Context) string {
	if traceID, ok := ctx.Value(TraceIDKey).(string); ok {
		return traceID
	}
	return ""
}

// generateTraceID produces a random hex identifier. Falls back to a fixed
// marker if the system source of randomness fails, which keeps the request
// serviceable.
func generateTraceID() string {
	buf := make([]byte, traceIDLength)
	if _, err := rand.Read(buf); err != nil {
		return "trace-id-unavailable"
	}
	return hex.EncodeToString(buf)
}
