package apikey

import (
	"strings"
	"time"

	"github.com/google/uuid"

	dErrors "zipstate/pkg/domain-errors"
)

// KeyID uniquely identifies an issued API key.
type KeyID uuid.UUID

func (id KeyID) String() string { return uuid.UUID(id).String() }

func (id KeyID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

func (id KeyID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

func (id *KeyID) UnmarshalText(text []byte) error {
	parsed, err := ParseKeyID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// ParseKeyID validates and parses a key identifier from its string form.
func ParseKeyID(raw string) (KeyID, error) {
	if raw == "" {
		return KeyID(uuid.Nil), dErrors.New(dErrors.CodeInvalidInput, "key ID cannot be empty")
	}
	parsed, err := uuid.Parse(raw)
	if err != nil {
		return KeyID(uuid.Nil), dErrors.New(dErrors.CodeInvalidInput, "key ID must be a valid UUID")
	}
	if parsed == uuid.Nil {
		return KeyID(uuid.Nil), dErrors.New(dErrors.CodeInvalidInput, "key ID cannot be nil")
	}
	return KeyID(parsed), nil
}

// APIKey is the aggregate root for one issued API credential.
//
// Invariants:
//   - Name is non-empty and at most 128 characters
//   - Prefix is non-empty and unique across all keys
//   - SecretHash holds a bcrypt hash, never the plaintext secret
//   - RevokedAt, once set, never reverts
type APIKey struct {
	ID         KeyID      `json:"id"`
	Name       string     `json:"name"`
	Prefix     string     `json:"prefix"`
	SecretHash string     `json:"-"` // Never serialize - contains bcrypt hash
	CreatedAt  time.Time  `json:"created_at"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
	RevokedAt  *time.Time `json:"revoked_at,omitempty"`
}

// NewAPIKey builds a key for the named caller. A zero ttl issues a key
// without an expiry.
func NewAPIKey(keyID KeyID, name, prefix, secretHash string, ttl time.Duration, now time.Time) (*APIKey, error) {
	name = strings.TrimSpace(name)
	if keyID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "key ID cannot be nil")
	}
	if name == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "key name cannot be empty")
	}
	if len(name) > 128 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "key name must be 128 characters or less")
	}
	if prefix == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "key prefix cannot be empty")
	}
	if secretHash == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "key secret hash cannot be empty")
	}
	if ttl < 0 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "key ttl cannot be negative")
	}

	key := &APIKey{
		ID:         keyID,
		Name:       name,
		Prefix:     prefix,
		SecretHash: secretHash,
		CreatedAt:  now,
	}
	if ttl > 0 {
		expiresAt := now.Add(ttl)
		key.ExpiresAt = &expiresAt
	}
	return key, nil
}

// IsActive reports whether the key can still be exchanged for tokens.
func (k *APIKey) IsActive(now time.Time) bool {
	if k.RevokedAt != nil {
		return false
	}
	if k.ExpiresAt != nil && now.After(*k.ExpiresAt) {
		return false
	}
	return true
}

// CanRevoke checks if the key can transition to revoked.
// Returns nil if the transition is valid, or an error if not allowed.
func (k *APIKey) CanRevoke() error {
	if k.RevokedAt != nil {
		return dErrors.New(dErrors.CodeInvariantViolation, "API key is already revoked")
	}
	return nil
}

// ApplyRevocation marks the key revoked.
// Must only be called after CanRevoke returns nil.
func (k *APIKey) ApplyRevocation(now time.Time) {
	revokedAt := now
	k.RevokedAt = &revokedAt
}
