package apikey

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"zipstate/internal/audit"
	dErrors "zipstate/pkg/domain-errors"
	"zipstate/pkg/platform/sentinel"
	"zipstate/pkg/requestcontext"
)

// Store persists issued keys. Implementations return sentinel errors so the
// service can translate them into domain errors.
type Store interface {
	Create(ctx context.Context, key *APIKey) error
	FindByID(ctx context.Context, keyID KeyID) (*APIKey, error)
	FindByPrefix(ctx context.Context, prefix string) (*APIKey, error)
	List(ctx context.Context) ([]*APIKey, error)
	// Execute atomically validates and mutates one key while holding the
	// store's lock (mutex or FOR UPDATE).
	Execute(ctx context.Context, keyID KeyID, validate func(*APIKey) error, mutate func(*APIKey)) (*APIKey, error)
	// RevokeMany revokes every listed key that is not already revoked and
	// reports how many rows changed.
	RevokeMany(ctx context.Context, keyIDs []KeyID, now time.Time) (int64, error)
}

// Service orchestrates API key issuance, revocation and token exchange.
type Service struct {
	keys     Store
	tokens   *TokenService
	logger   *slog.Logger
	audit    audit.Publisher
	tokenTTL time.Duration
}

type serviceConfig struct {
	logger   *slog.Logger
	audit    audit.Publisher
	tokenTTL time.Duration
}

// Option configures the Service.
type Option func(*serviceConfig)

// WithLogger sets a logger for error reporting.
func WithLogger(logger *slog.Logger) Option {
	return func(c *serviceConfig) { c.logger = logger }
}

// WithAuditPublisher routes issuance and revocation events to pub.
func WithAuditPublisher(pub audit.Publisher) Option {
	return func(c *serviceConfig) { c.audit = pub }
}

// WithTokenTTL overrides the default one hour access token lifetime.
func WithTokenTTL(ttl time.Duration) Option {
	return func(c *serviceConfig) {
		if ttl > 0 {
			c.tokenTTL = ttl
		}
	}
}

func NewService(keys Store, tokens *TokenService, opts ...Option) *Service {
	cfg := &serviceConfig{tokenTTL: time.Hour}
	for _, opt := range opts {
		opt(cfg)
	}
	return &Service{
		keys:     keys,
		tokens:   tokens,
		logger:   cfg.logger,
		audit:    cfg.audit,
		tokenTTL: cfg.tokenTTL,
	}
}

// Issue creates a key for the named caller and returns it together with the
// plaintext credential. The plaintext is shown exactly once; only its bcrypt
// hash is stored.
func (s *Service) Issue(ctx context.Context, name string, ttl time.Duration) (*APIKey, string, error) {
	secret, err := generateSecret()
	if err != nil {
		return nil, "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to generate API key")
	}
	prefix, err := generatePrefix()
	if err != nil {
		return nil, "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to generate API key")
	}
	hash, err := hashSecret(secret)
	if err != nil {
		return nil, "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash API key secret")
	}

	key, err := NewAPIKey(KeyID(uuid.New()), name, prefix, hash, ttl, requestcontext.Now(ctx))
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
			return nil, "", dErrors.New(dErrors.CodeValidation, err.Error())
		}
		return nil, "", err
	}

	if err := s.keys.Create(ctx, key); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return nil, "", dErrors.Wrap(err, dErrors.CodeInternal, "API key prefix collision")
		}
		return nil, "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to store API key")
	}

	s.emit(ctx, audit.Event{
		Action: audit.ActionKeyIssued,
		Caller: key.Name,
	})
	return key, formatKey(prefix, secret), nil
}

// ExchangeToken trades a plaintext API key for a short-lived access token.
func (s *Service) ExchangeToken(ctx context.Context, plaintext string) (string, time.Time, error) {
	prefix, secret, err := splitKey(plaintext)
	if err != nil {
		return "", time.Time{}, dErrors.New(dErrors.CodeUnauthorized, "invalid API key")
	}

	key, err := s.keys.FindByPrefix(ctx, prefix)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return "", time.Time{}, dErrors.New(dErrors.CodeUnauthorized, "invalid API key")
		}
		return "", time.Time{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up API key")
	}

	if err := verifySecret(secret, key.SecretHash); err != nil {
		return "", time.Time{}, dErrors.New(dErrors.CodeUnauthorized, "invalid API key")
	}

	now := requestcontext.Now(ctx)
	if !key.IsActive(now) {
		return "", time.Time{}, dErrors.New(dErrors.CodeUnauthorized, "API key is expired or revoked")
	}

	token, err := s.tokens.GenerateAccessToken(key.ID, key.Name, s.tokenTTL)
	if err != nil {
		return "", time.Time{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to sign access token")
	}

	s.emit(ctx, audit.Event{
		Action: audit.ActionTokenExchanged,
		Caller: key.Name,
	})
	return token, now.Add(s.tokenTTL), nil
}

// Get returns one key by ID.
func (s *Service) Get(ctx context.Context, keyID KeyID) (*APIKey, error) {
	if keyID.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "key ID is required")
	}
	key, err := s.keys.FindByID(ctx, keyID)
	if err != nil {
		return nil, wrapKeyErr(err)
	}
	return key, nil
}

// List returns all issued keys, including revoked and expired ones.
func (s *Service) List(ctx context.Context) ([]*APIKey, error) {
	keys, err := s.keys.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list API keys")
	}
	return keys, nil
}

// Revoke permanently disables one key.
//
// Uses the Execute callback pattern for atomic validate-then-mutate.
func (s *Service) Revoke(ctx context.Context, keyID KeyID) (*APIKey, error) {
	if keyID.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "key ID is required")
	}

	now := requestcontext.Now(ctx)
	key, err := s.keys.Execute(ctx, keyID,
		func(k *APIKey) error {
			if err := k.CanRevoke(); err != nil {
				if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
					return dErrors.New(dErrors.CodeConflict, "API key is already revoked")
				}
				return err
			}
			return nil
		},
		func(k *APIKey) {
			k.ApplyRevocation(now)
		},
	)
	if err != nil {
		return nil, wrapKeyErr(err)
	}

	s.emit(ctx, audit.Event{
		Action: audit.ActionKeyRevoked,
		Caller: key.Name,
	})
	return key, nil
}

// RevokeMany revokes a batch of keys in one store round trip, skipping keys
// that are already revoked. Unknown IDs are not an error.
func (s *Service) RevokeMany(ctx context.Context, keyIDs []KeyID) (int64, error) {
	if len(keyIDs) == 0 {
		return 0, nil
	}
	for _, keyID := range keyIDs {
		if keyID.IsNil() {
			return 0, dErrors.New(dErrors.CodeValidation, "key IDs cannot be nil")
		}
	}

	revoked, err := s.keys.RevokeMany(ctx, keyIDs, requestcontext.Now(ctx))
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to revoke API keys")
	}
	if revoked > 0 {
		s.emit(ctx, audit.Event{Action: audit.ActionKeyRevoked})
	}
	return revoked, nil
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.audit == nil {
		return
	}
	event.Timestamp = requestcontext.Now(ctx)
	event.RequestID = requestcontext.RequestID(ctx)
	if err := s.audit.Emit(ctx, event); err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "audit emit failed",
			"action", event.Action,
			"error", err,
		)
	}
}

func wrapKeyErr(err error) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "API key not found")
	case dErrors.CodeOf(err) != dErrors.CodeInternal:
		return err
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "API key store failure")
	}
}
