//go:build integration

package ratelimit

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"zipstate/pkg/testutil/containers"
)

type RedisBucketStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *RedisBucketStore
	ctx   context.Context
}

func TestRedisBucketStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisBucketStoreSuite))
}

func (s *RedisBucketStoreSuite) SetupSuite() {
	s.ctx = context.Background()
	s.redis = containers.GetManager().GetRedis(s.T())
	s.store = NewRedisBucketStore(s.redis.Client)
}

func (s *RedisBucketStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(s.ctx))
}

// TestConcurrentAllows verifies the Lua script holds the limit under
// concurrency: the check and the add run atomically, so no pair of callers
// can both slip through the last slot.
func (s *RedisBucketStoreSuite) TestConcurrentAllows() {
	const (
		limit      = 10
		goroutines = 50
	)

	var wg sync.WaitGroup
	var allowed atomic.Int32
	var denied atomic.Int32

	for range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()

			result, err := s.store.Allow(s.ctx, "concurrent-test", limit, time.Minute)
			s.Require().NoError(err)

			if result.Allowed {
				allowed.Add(1)
			} else {
				denied.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(limit), allowed.Load(), "exactly %d requests should be allowed", limit)
	s.Equal(int32(goroutines-limit), denied.Load())

	count, err := s.store.CurrentCount(s.ctx, "concurrent-test")
	s.Require().NoError(err)
	s.Equal(limit, count)
}

// TestAllowNCost verifies weighted requests draw down the budget correctly.
func (s *RedisBucketStoreSuite) TestAllowNCost() {
	const limit = 10

	result, err := s.store.AllowN(s.ctx, "cost-test", 3, limit, time.Minute)
	s.Require().NoError(err)
	s.True(result.Allowed)
	s.Equal(7, result.Remaining)

	result, err = s.store.AllowN(s.ctx, "cost-test", 5, limit, time.Minute)
	s.Require().NoError(err)
	s.True(result.Allowed)
	s.Equal(2, result.Remaining)

	result, err = s.store.AllowN(s.ctx, "cost-test", 3, limit, time.Minute)
	s.Require().NoError(err)
	s.False(result.Allowed, "8+3 exceeds the limit")
}

// TestWindowExpiry verifies old entries age out of the sliding window.
func (s *RedisBucketStoreSuite) TestWindowExpiry() {
	const limit = 5
	window := time.Second

	for range limit {
		_, err := s.store.Allow(s.ctx, "expiry-test", limit, window)
		s.Require().NoError(err)
	}

	result, err := s.store.Allow(s.ctx, "expiry-test", limit, window)
	s.Require().NoError(err)
	s.False(result.Allowed, "should be at limit")

	time.Sleep(1500 * time.Millisecond)

	result, err = s.store.Allow(s.ctx, "expiry-test", limit, window)
	s.Require().NoError(err)
	s.True(result.Allowed, "should be allowed after window expires")
}

func (s *RedisBucketStoreSuite) TestKeysAreIndependent() {
	const limit = 2

	for range limit {
		result, err := s.store.Allow(s.ctx, "tenant-a", limit, time.Minute)
		s.Require().NoError(err)
		s.True(result.Allowed)
	}

	result, err := s.store.Allow(s.ctx, "tenant-a", limit, time.Minute)
	s.Require().NoError(err)
	s.False(result.Allowed)

	result, err = s.store.Allow(s.ctx, "tenant-b", limit, time.Minute)
	s.Require().NoError(err)
	s.True(result.Allowed, "other keys keep their own budget")
}

func (s *RedisBucketStoreSuite) TestReset() {
	const limit = 3

	for range limit {
		_, err := s.store.Allow(s.ctx, "reset-test", limit, time.Minute)
		s.Require().NoError(err)
	}

	result, err := s.store.Allow(s.ctx, "reset-test", limit, time.Minute)
	s.Require().NoError(err)
	s.False(result.Allowed)

	s.Require().NoError(s.store.Reset(s.ctx, "reset-test"))

	result, err = s.store.Allow(s.ctx, "reset-test", limit, time.Minute)
	s.Require().NoError(err)
	s.True(result.Allowed)
}

// TestResetAtTracksOldestEntry verifies the advertised reset time lands one
// window after the oldest surviving entry.
func (s *RedisBucketStoreSuite) TestResetAtTracksOldestEntry() {
	window := time.Minute
	before := time.Now()

	result, err := s.store.Allow(s.ctx, "resetat-test", 5, window)
	s.Require().NoError(err)

	expected := before.Add(window)
	s.WithinDuration(expected, result.ResetAt, 2*time.Second)
}
