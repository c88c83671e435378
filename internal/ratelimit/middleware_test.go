package ratelimit

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zipstate/pkg/requestcontext"
)

type stubLimiter struct {
	result *Result
	err    error

	lastIP    string
	lastClass EndpointClass
}

func (s *stubLimiter) CheckIP(_ context.Context, ip string, class EndpointClass) (*Result, error) {
	s.lastIP = ip
	s.lastClass = class
	return s.result, s.err
}

func limiterTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func serveLimited(t *testing.T, m *Middleware, class EndpointClass, ip string) *httptest.ResponseRecorder {
	t.Helper()

	var handlerCalled bool
	handler := m.RateLimit(class)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		handlerCalled = true
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/v1/postal-codes/99577/state", nil)
	req = req.WithContext(requestcontext.WithClientMetadata(req.Context(), ip, "test-agent"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code == http.StatusOK {
		require.True(t, handlerCalled, "handler should run for allowed requests")
	}
	return rec
}

func TestMiddleware_AllowedRequestAddsHeaders(t *testing.T) {
	resetAt := time.Now().Add(30 * time.Second)
	limiter := &stubLimiter{result: &Result{Allowed: true, Limit: 120, Remaining: 119, ResetAt: resetAt}}
	m := NewMiddleware(limiter, limiterTestLogger())

	rec := serveLimited(t, m, ClassLookup, "203.0.113.7")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "120", rec.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "119", rec.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, "203.0.113.7", limiter.lastIP)
	assert.Equal(t, ClassLookup, limiter.lastClass)
}

func TestMiddleware_DeniedRequestReturns429(t *testing.T) {
	resetAt := time.Now().Add(45 * time.Second)
	limiter := &stubLimiter{result: &Result{Allowed: false, Limit: 120, Remaining: 0, ResetAt: resetAt, RetryAfter: 45}}
	m := NewMiddleware(limiter, limiterTestLogger())

	rec := serveLimited(t, m, ClassLookup, "203.0.113.7")

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "45", rec.Header().Get("Retry-After"))
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
	assert.JSONEq(t,
		`{"error":"rate_limit_exceeded","message":"Too many requests from this IP address. Please try again later.","retry_after":45}`,
		rec.Body.String())
}

func TestMiddleware_FailsOpenOnLimiterError(t *testing.T) {
	limiter := &stubLimiter{err: errors.New("redis unavailable")}
	m := NewMiddleware(limiter, limiterTestLogger())

	rec := serveLimited(t, m, ClassLookup, "203.0.113.7")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("X-RateLimit-Limit"))
}

func TestMiddleware_Disabled(t *testing.T) {
	limiter := &stubLimiter{err: errors.New("must not be called")}
	m := NewMiddleware(limiter, limiterTestLogger(), WithDisabled(true))

	rec := serveLimited(t, m, ClassLookup, "203.0.113.7")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, limiter.lastIP, "disabled middleware should never consult the limiter")
}

func TestMiddleware_EndToEndWithService(t *testing.T) {
	service, err := NewService(NewInMemoryBucketStore(),
		WithLimit(ClassAuth, Limit{Requests: 2, Window: time.Minute}),
	)
	require.NoError(t, err)
	m := NewMiddleware(service, limiterTestLogger())

	for range 2 {
		rec := serveLimited(t, m, ClassAuth, "198.51.100.4")
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := serveLimited(t, m, ClassAuth, "198.51.100.4")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	// A different address keeps its own budget.
	rec = serveLimited(t, m, ClassAuth, "198.51.100.5")
	assert.Equal(t, http.StatusOK, rec.Code)
}
