package logger

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MaxRequestIDLength caps ids accepted from clients.
const MaxRequestIDLength = 128

type requestIDKey struct{}

// NewRequestIDContext stores requestID in ctx. Empty or unusable ids are
// replaced with a generated one so every log line stays correlatable.
func NewRequestIDContext(ctx context.Context, requestID string) context.Context {
	if !ValidRequestID(requestID) {
		requestID = GenerateRequestID()
	}
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// GetRequestID returns the request id stored in ctx.
func GetRequestID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(requestIDKey{}).(string)
	return id, ok
}

// GenerateRequestID returns a time-ordered UUIDv7, falling back to v4 if the
// clock source fails.
func GenerateRequestID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// ValidRequestID accepts non-empty printable ASCII up to MaxRequestIDLength.
// Anything else would end up verbatim in logs and response headers.
func ValidRequestID(id string) bool {
	if id == "" || len(id) > MaxRequestIDLength {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] < 0x21 || id[i] > 0x7e {
			return false
		}
	}
	return true
}

// WithRequestID returns a child logger tagged with the request id from ctx, or l itself.
func (l *Logger) WithRequestID(ctx context.Context) *Logger {
	if id, ok := GetRequestID(ctx); ok {
		return l.With(zap.String(RequestID, id))
	}
	return l
}
