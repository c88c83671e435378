// Package requestcontext carries request-scoped values between middleware
// and services without an HTTP dependency. Middleware writes values with
// the With functions; services read them back through the accessors, which
// all degrade to useful zero values so tests and non-HTTP callers can hand
// services a bare context.
package requestcontext

import (
	"context"
	"time"

	"zipstate/pkg/domain"
)

type (
	apiKeyIDKey    struct{}
	apiVersionKey  struct{}
	callerNameKey  struct{}
	clientIPKey    struct{}
	userAgentKey   struct{}
	requestIDKey   struct{}
	requestTimeKey struct{}
)

func str(ctx context.Context, key any) string {
	s, _ := ctx.Value(key).(string)
	return s
}

// APIKeyID returns the authenticated API key ID, or "" for anonymous
// requests.
func APIKeyID(ctx context.Context) string { return str(ctx, apiKeyIDKey{}) }

// WithAPIKeyID records the authenticated key ID.
func WithAPIKeyID(ctx context.Context, keyID string) context.Context {
	return context.WithValue(ctx, apiKeyIDKey{}, keyID)
}

// CallerName returns the human-readable caller name bound to the API key.
func CallerName(ctx context.Context) string { return str(ctx, callerNameKey{}) }

// WithCallerName records the caller name.
func WithCallerName(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, callerNameKey{}, name)
}

// APIVersion returns the version the request was routed under. The result
// IsNil for requests that skipped the version middleware.
func APIVersion(ctx context.Context) domain.APIVersion {
	v, _ := ctx.Value(apiVersionKey{}).(domain.APIVersion)
	return v
}

// WithAPIVersion records the routed API version.
func WithAPIVersion(ctx context.Context, version domain.APIVersion) context.Context {
	return context.WithValue(ctx, apiVersionKey{}, version)
}

// ClientIP returns the client address resolved by the metadata middleware.
func ClientIP(ctx context.Context) string { return str(ctx, clientIPKey{}) }

// UserAgent returns the summarized client user agent.
func UserAgent(ctx context.Context) string { return str(ctx, userAgentKey{}) }

// WithClientMetadata records the client address and user agent together,
// the way the metadata middleware and service tests set them.
func WithClientMetadata(ctx context.Context, clientIP, userAgent string) context.Context {
	ctx = context.WithValue(ctx, clientIPKey{}, clientIP)
	return context.WithValue(ctx, userAgentKey{}, userAgent)
}

// RequestID returns the request correlation ID.
func RequestID(ctx context.Context) string { return str(ctx, requestIDKey{}) }

// WithRequestID records the correlation ID.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// Now returns the request arrival time, so one request observes a single
// clock reading end to end. Contexts without one fall back to time.Now.
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(requestTimeKey{}).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime pins the clock reading for the rest of the request.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, requestTimeKey{}, t)
}
