package ratelimit

import (
	"context"
	"log/slog"
	"time"

	"zipstate/pkg/platform/circuit"
)

// FallbackBucketStore serves limits from a primary store and degrades to a
// secondary one behind a circuit breaker when the primary keeps failing.
// Counters do not carry across stores, so one window of requests may be
// re-admitted on each switch; that beats losing rate limiting entirely.
//
// The primary is still consulted while the breaker is open; its results are
// discarded until enough consecutive successes close the breaker again.
type FallbackBucketStore struct {
	primary  BucketStore
	fallback BucketStore
	breaker  *circuit.Breaker
	logger   *slog.Logger
}

func NewFallbackBucketStore(primary, fallback BucketStore, logger *slog.Logger) *FallbackBucketStore {
	return &FallbackBucketStore{
		primary:  primary,
		fallback: fallback,
		breaker:  circuit.New("ratelimit-primary"),
		logger:   logger,
	}
}

func (s *FallbackBucketStore) Allow(ctx context.Context, key string, limit int, window time.Duration) (*Result, error) {
	return s.AllowN(ctx, key, 1, limit, window)
}

func (s *FallbackBucketStore) AllowN(ctx context.Context, key string, cost, limit int, window time.Duration) (*Result, error) {
	result, err := s.primary.AllowN(ctx, key, cost, limit, window)
	if err != nil {
		_, change := s.breaker.RecordFailure()
		if change.Opened && s.logger != nil {
			s.logger.Warn("rate limit primary store failing, switching to in-memory fallback",
				"breaker", s.breaker.Name(),
				"error", err,
			)
		}
		return s.degraded(ctx, key, cost, limit, window)
	}

	usePrimary, change := s.breaker.RecordSuccess()
	if change.Closed && s.logger != nil {
		s.logger.Info("rate limit primary store recovered", "breaker", s.breaker.Name())
	}
	if !usePrimary {
		// Mid recovery streak: keep answering from the fallback so clients
		// see one consistent counter until the breaker closes.
		return s.degraded(ctx, key, cost, limit, window)
	}
	return result, nil
}

func (s *FallbackBucketStore) degraded(ctx context.Context, key string, cost, limit int, window time.Duration) (*Result, error) {
	result, err := s.fallback.AllowN(ctx, key, cost, limit, window)
	if err != nil {
		return nil, err
	}
	result.Degraded = true
	return result, nil
}

// Reset clears the key in both stores so a reset holds whichever one is
// currently answering.
func (s *FallbackBucketStore) Reset(ctx context.Context, key string) error {
	fallbackErr := s.fallback.Reset(ctx, key)
	if err := s.primary.Reset(ctx, key); err != nil {
		return err
	}
	return fallbackErr
}

func (s *FallbackBucketStore) CurrentCount(ctx context.Context, key string) (int, error) {
	if s.breaker.IsOpen() {
		return s.fallback.CurrentCount(ctx, key)
	}
	return s.primary.CurrentCount(ctx, key)
}
