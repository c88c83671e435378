// Package ratelimit bounds per-client request rates on the lookup API using
// a sliding window over request timestamps.
package ratelimit

import (
	"context"
	"time"
)

// EndpointClass categorizes endpoints for differentiated rate limiting.
type EndpointClass string

const (
	// ClassLookup: single-code resolution endpoints.
	ClassLookup EndpointClass = "lookup"
	// ClassBatch: batch resolution and address validation.
	ClassBatch EndpointClass = "batch"
	// ClassAuth: token exchange.
	ClassAuth EndpointClass = "auth"
)

// IsValid checks if the endpoint class is one of the supported enum values.
func (c EndpointClass) IsValid() bool {
	switch c {
	case ClassLookup, ClassBatch, ClassAuth:
		return true
	}
	return false
}

// Limit pairs a request budget with the window it applies to.
type Limit struct {
	Requests int
	Window   time.Duration
}

// Result represents the outcome of a rate limit check.
type Result struct {
	Allowed    bool      `json:"allowed"`
	Limit      int       `json:"limit"`
	Remaining  int       `json:"remaining"`
	ResetAt    time.Time `json:"reset_at"`
	RetryAfter int       `json:"retry_after,omitempty"` // seconds, only set when not allowed
	Degraded   bool      `json:"degraded,omitempty"`    // served by the fallback store
}

// ExceededResponse is the 429 body returned when a limit is hit.
type ExceededResponse struct {
	Error      string `json:"error"`
	Message    string `json:"message"`
	RetryAfter int    `json:"retry_after"`
}

// BucketStore tracks request counts per key within a sliding window.
type BucketStore interface {
	// Allow checks if a request is allowed and increments the counter.
	Allow(ctx context.Context, key string, limit int, window time.Duration) (*Result, error)
	// AllowN checks if a request with custom cost is allowed.
	AllowN(ctx context.Context, key string, cost, limit int, window time.Duration) (*Result, error)
	// Reset clears the counter for a key.
	Reset(ctx context.Context, key string) error
	// CurrentCount returns the live request count for a key.
	CurrentCount(ctx context.Context, key string) (int, error)
}

// DefaultLimits returns the per-class budgets used when no override is set.
func DefaultLimits() map[EndpointClass]Limit {
	return map[EndpointClass]Limit{
		ClassLookup: {Requests: 120, Window: time.Minute},
		ClassBatch:  {Requests: 20, Window: time.Minute},
		ClassAuth:   {Requests: 10, Window: time.Minute},
	}
}
