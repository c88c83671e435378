package apikey

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zipstate/internal/audit"
	dErrors "zipstate/pkg/domain-errors"
	"zipstate/pkg/requestcontext"
)

func newTestService(t *testing.T) (*Service, *audit.InMemoryStore) {
	t.Helper()
	auditStore := audit.NewInMemoryStore(0)
	pub := audit.NewPublisher(auditStore)
	t.Cleanup(func() { pub.Close() })

	svc := NewService(
		NewInMemory(),
		NewTokenService("test-signing-key", "zipstate", "zipstate-api"),
		WithAuditPublisher(pub),
		WithTokenTTL(30*time.Minute),
	)
	return svc, auditStore
}

func TestService_IssueAndExchange(t *testing.T) {
	svc, auditStore := newTestService(t)
	ctx := context.Background()

	key, plaintext, err := svc.Issue(ctx, "checkout-service", 0)
	require.NoError(t, err)
	require.NotNil(t, key)

	assert.True(t, strings.HasPrefix(plaintext, "zsk_"), "plaintext key carries the zsk_ tag")
	assert.NotContains(t, key.SecretHash, plaintext, "hash must not embed the plaintext")
	assert.Nil(t, key.ExpiresAt, "zero ttl issues a non-expiring key")

	token, expiresAt, err := svc.ExchangeToken(ctx, plaintext)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(30*time.Minute), expiresAt, time.Minute)

	claims, err := svc.tokens.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, key.ID.String(), claims.KeyID)
	assert.Equal(t, "checkout-service", claims.Caller)

	events, err := auditStore.ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, audit.ActionTokenExchanged, events[0].Action)
	assert.Equal(t, audit.ActionKeyIssued, events[1].Action)
}

func TestService_IssueValidatesName(t *testing.T) {
	svc, _ := newTestService(t)

	_, _, err := svc.Issue(context.Background(), "   ", 0)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}

func TestService_ExchangeRejectsBadCredentials(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, plaintext, err := svc.Issue(ctx, "checkout-service", 0)
	require.NoError(t, err)

	t.Run("malformed key", func(t *testing.T) {
		_, _, err := svc.ExchangeToken(ctx, "not-a-key")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	t.Run("unknown prefix", func(t *testing.T) {
		_, _, err := svc.ExchangeToken(ctx, "zsk_unknown.secret")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	t.Run("wrong secret", func(t *testing.T) {
		prefix, _, splitErr := splitKey(plaintext)
		require.NoError(t, splitErr)
		_, _, err := svc.ExchangeToken(ctx, "zsk_"+prefix+".wrong-secret")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})
}

func TestService_ExchangeRejectsExpiredKey(t *testing.T) {
	svc, _ := newTestService(t)

	issuedAt := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), issuedAt)

	_, plaintext, err := svc.Issue(ctx, "checkout-service", time.Hour)
	require.NoError(t, err)

	// Exchange still works just before expiry.
	okCtx := requestcontext.WithTime(context.Background(), issuedAt.Add(59*time.Minute))
	_, _, err = svc.ExchangeToken(okCtx, plaintext)
	require.NoError(t, err)

	// And fails after it.
	lateCtx := requestcontext.WithTime(context.Background(), issuedAt.Add(2*time.Hour))
	_, _, err = svc.ExchangeToken(lateCtx, plaintext)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestService_Revoke(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	key, plaintext, err := svc.Issue(ctx, "checkout-service", 0)
	require.NoError(t, err)

	revoked, err := svc.Revoke(ctx, key.ID)
	require.NoError(t, err)
	require.NotNil(t, revoked.RevokedAt)

	t.Run("revoked key no longer exchanges", func(t *testing.T) {
		_, _, err := svc.ExchangeToken(ctx, plaintext)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	t.Run("second revoke conflicts", func(t *testing.T) {
		_, err := svc.Revoke(ctx, key.ID)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
	})

	t.Run("unknown key is not found", func(t *testing.T) {
		_, err := svc.Revoke(ctx, KeyID(uuid.New()))
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func TestService_RevokeMany(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	keyA, _, err := svc.Issue(ctx, "svc-a", 0)
	require.NoError(t, err)
	keyB, _, err := svc.Issue(ctx, "svc-b", 0)
	require.NoError(t, err)

	revoked, err := svc.RevokeMany(ctx, []KeyID{keyA.ID, keyB.ID, KeyID(uuid.New())})
	require.NoError(t, err)
	assert.Equal(t, int64(2), revoked)

	t.Run("empty batch is a no-op", func(t *testing.T) {
		n, err := svc.RevokeMany(ctx, nil)
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("nil IDs are rejected", func(t *testing.T) {
		_, err := svc.RevokeMany(ctx, []KeyID{KeyID(uuid.Nil)})
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func TestService_List(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, _, err := svc.Issue(ctx, "svc-a", 0)
	require.NoError(t, err)
	_, _, err = svc.Issue(ctx, "svc-b", 0)
	require.NoError(t, err)

	keys, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, keys, 2)
}
