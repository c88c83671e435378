//go:build integration

package apikey

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	dErrors "zipstate/pkg/domain-errors"
	"zipstate/pkg/platform/sentinel"
	"zipstate/pkg/testutil/containers"
)

type PostgresKeyStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *Postgres
	ctx      context.Context
}

func TestPostgresKeyStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresKeyStoreSuite))
}

func (s *PostgresKeyStoreSuite) SetupSuite() {
	s.ctx = context.Background()
	s.postgres = containers.GetManager().GetPostgres(s.T())

	store, err := NewPostgres(s.ctx, s.postgres.DB)
	s.Require().NoError(err)
	s.store = store
}

func (s *PostgresKeyStoreSuite) SetupTest() {
	err := s.postgres.TruncateTables(s.ctx, "api_keys")
	s.Require().NoError(err)
}

// Timestamps are truncated to microseconds because TIMESTAMPTZ does not
// keep nanoseconds; round trips would otherwise never compare equal.
func (s *PostgresKeyStoreSuite) newKey(name, prefix string, ttl time.Duration) *APIKey {
	now := time.Now().UTC().Truncate(time.Microsecond)
	key, err := NewAPIKey(KeyID(uuid.New()), name, prefix, "$2a$10$hash", ttl, now)
	s.Require().NoError(err)
	return key
}

func (s *PostgresKeyStoreSuite) TestRoundTrip() {
	s.Run("persists and retrieves all fields", func() {
		key := s.newKey("billing-service", "pfx-billing", 720*time.Hour)
		s.Require().NoError(s.store.Create(s.ctx, key))

		found, err := s.store.FindByID(s.ctx, key.ID)
		s.Require().NoError(err)
		s.Equal(key.ID, found.ID)
		s.Equal("billing-service", found.Name)
		s.Equal("pfx-billing", found.Prefix)
		s.Equal("$2a$10$hash", found.SecretHash)
		s.True(key.CreatedAt.Equal(found.CreatedAt))
		s.Require().NotNil(found.ExpiresAt)
		s.True(key.ExpiresAt.Equal(*found.ExpiresAt))
		s.Nil(found.RevokedAt)
	})

	s.Run("finds by prefix", func() {
		key := s.newKey("geo-service", "pfx-geo", 0)
		s.Require().NoError(s.store.Create(s.ctx, key))

		found, err := s.store.FindByPrefix(s.ctx, "pfx-geo")
		s.Require().NoError(err)
		s.Equal(key.ID, found.ID)
		s.Nil(found.ExpiresAt, "zero ttl stores NULL expiry")
	})

	s.Run("returns ErrNotFound for unknown ID", func() {
		_, err := s.store.FindByID(s.ctx, KeyID(uuid.New()))
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("returns ErrNotFound for unknown prefix", func() {
		_, err := s.store.FindByPrefix(s.ctx, "nonexistent")
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}

// TestDuplicatePrefix verifies the unique constraint maps to ErrAlreadyUsed.
func (s *PostgresKeyStoreSuite) TestDuplicatePrefix() {
	first := s.newKey("svc-a", "pfx-shared", 0)
	s.Require().NoError(s.store.Create(s.ctx, first))

	second := s.newKey("svc-b", "pfx-shared", 0)
	err := s.store.Create(s.ctx, second)
	s.Require().ErrorIs(err, sentinel.ErrAlreadyUsed)
}

// TestConcurrentRevoke verifies the FOR UPDATE row lock serializes
// revocations: exactly one goroutine wins, the rest observe the revoked row.
func (s *PostgresKeyStoreSuite) TestConcurrentRevoke() {
	key := s.newKey("contended", "pfx-contended", 0)
	s.Require().NoError(s.store.Create(s.ctx, key))

	const goroutines = 20
	var wg sync.WaitGroup
	var succeeded atomic.Int32
	var alreadyRevoked atomic.Int32
	var unexpected atomic.Int32

	for range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()

			_, err := s.store.Execute(s.ctx, key.ID,
				func(k *APIKey) error { return k.CanRevoke() },
				func(k *APIKey) { k.ApplyRevocation(time.Now()) },
			)
			switch {
			case err == nil:
				succeeded.Add(1)
			case dErrors.HasCode(err, dErrors.CodeInvariantViolation):
				alreadyRevoked.Add(1)
			default:
				unexpected.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), succeeded.Load(), "exactly one revoke should succeed")
	s.Equal(int32(goroutines-1), alreadyRevoked.Load())
	s.Equal(int32(0), unexpected.Load())

	stored, err := s.store.FindByID(s.ctx, key.ID)
	s.Require().NoError(err)
	s.NotNil(stored.RevokedAt)
}

func (s *PostgresKeyStoreSuite) TestExecuteValidationRollback() {
	key := s.newKey("svc-a", "pfx-rollback", 0)
	key.ApplyRevocation(time.Now().UTC().Truncate(time.Microsecond))
	s.Require().NoError(s.store.Create(s.ctx, key))

	_, err := s.store.Execute(s.ctx, key.ID,
		func(k *APIKey) error { return k.CanRevoke() },
		func(k *APIKey) { s.Fail("mutate must not run") },
	)
	s.Require().Error(err)
}

func (s *PostgresKeyStoreSuite) TestRevokeMany() {
	active1 := s.newKey("svc-a", "pfx-rm-1", 0)
	active2 := s.newKey("svc-b", "pfx-rm-2", 0)
	alreadyRevoked := s.newKey("svc-c", "pfx-rm-3", 0)
	alreadyRevoked.ApplyRevocation(time.Now().UTC().Truncate(time.Microsecond))

	for _, key := range []*APIKey{active1, active2, alreadyRevoked} {
		s.Require().NoError(s.store.Create(s.ctx, key))
	}

	revoked, err := s.store.RevokeMany(s.ctx,
		[]KeyID{active1.ID, active2.ID, alreadyRevoked.ID, KeyID(uuid.New())},
		time.Now(),
	)
	s.Require().NoError(err)
	s.Equal(int64(2), revoked, "only active known keys count")
}

func (s *PostgresKeyStoreSuite) TestListOrdersByCreation() {
	base := time.Now().UTC().Truncate(time.Microsecond)
	for i, prefix := range []string{"pfx-1", "pfx-2", "pfx-3"} {
		key := s.newKey("svc", prefix, 0)
		key.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		s.Require().NoError(s.store.Create(s.ctx, key))
	}

	keys, err := s.store.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(keys, 3)
	s.Equal("pfx-1", keys[0].Prefix)
	s.Equal("pfx-3", keys[2].Prefix)
}
