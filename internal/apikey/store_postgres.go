package apikey

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"zipstate/pkg/platform/sentinel"
)

const createKeysTable = `CREATE TABLE IF NOT EXISTS api_keys (
	id UUID PRIMARY KEY,
	name TEXT NOT NULL,
	prefix TEXT NOT NULL UNIQUE,
	secret_hash TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	expires_at TIMESTAMPTZ,
	revoked_at TIMESTAMPTZ
);`

const createKeysNameIndex = `CREATE INDEX IF NOT EXISTS idx_api_keys_name ON api_keys (name);`

// uniqueViolation is the Postgres error code for unique constraint breaches.
const uniqueViolation = "23505"

// Postgres persists API keys in PostgreSQL.
type Postgres struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed key store and ensures the
// schema exists.
func NewPostgres(ctx context.Context, db *sql.DB) (*Postgres, error) {
	for _, stmt := range []string{createKeysTable, createKeysNameIndex} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return nil, fmt.Errorf("ensure api_keys schema: %w", err)
		}
	}
	return &Postgres{db: db}, nil
}

func (s *Postgres) Create(ctx context.Context, key *APIKey) error {
	query := `
		INSERT INTO api_keys (id, name, prefix, secret_hash, created_at, expires_at, revoked_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.db.ExecContext(ctx, query,
		key.ID.String(), key.Name, key.Prefix, key.SecretHash,
		key.CreatedAt, key.ExpiresAt, key.RevokedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("create api key: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, keyID KeyID) (*APIKey, error) {
	row := s.db.QueryRowContext(ctx, selectKey+` WHERE id = $1`, keyID.String())
	return scanKey(row)
}

func (s *Postgres) FindByPrefix(ctx context.Context, prefix string) (*APIKey, error) {
	row := s.db.QueryRowContext(ctx, selectKey+` WHERE prefix = $1`, prefix)
	return scanKey(row)
}

func (s *Postgres) List(ctx context.Context) ([]*APIKey, error) {
	rows, err := s.db.QueryContext(ctx, selectKey+` ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list api keys: %w", err)
	}
	defer rows.Close()

	var keys []*APIKey
	for rows.Next() {
		key, err := scanKey(rows)
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list api keys: %w", err)
	}
	return keys, nil
}

// Execute validates and mutates one key inside a transaction, holding a
// FOR UPDATE row lock between the two steps.
func (s *Postgres) Execute(ctx context.Context, keyID KeyID, validate func(*APIKey) error, mutate func(*APIKey)) (*APIKey, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin revoke tx: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, selectKey+` WHERE id = $1 FOR UPDATE`, keyID.String())
	key, err := scanKey(row)
	if err != nil {
		return nil, err
	}

	if err := validate(key); err != nil {
		return nil, err
	}
	mutate(key)

	query := `
		UPDATE api_keys
		SET name = $2, expires_at = $3, revoked_at = $4
		WHERE id = $1
	`
	if _, err := tx.ExecContext(ctx, query, key.ID.String(), key.Name, key.ExpiresAt, key.RevokedAt); err != nil {
		return nil, fmt.Errorf("update api key: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit revoke tx: %w", err)
	}
	return key, nil
}

// RevokeMany revokes all listed keys in a single statement.
// Uses ANY with an array bind for O(1) round trips instead of O(n).
func (s *Postgres) RevokeMany(ctx context.Context, keyIDs []KeyID, now time.Time) (int64, error) {
	if len(keyIDs) == 0 {
		return 0, nil
	}

	ids := make([]string, 0, len(keyIDs))
	for _, keyID := range keyIDs {
		if !keyID.IsNil() {
			ids = append(ids, keyID.String())
		}
	}
	if len(ids) == 0 {
		return 0, nil
	}

	query := `
		UPDATE api_keys
		SET revoked_at = $2
		WHERE id = ANY($1::uuid[]) AND revoked_at IS NULL
	`
	res, err := s.db.ExecContext(ctx, query, pq.Array(ids), now)
	if err != nil {
		return 0, fmt.Errorf("revoke api keys batch: %w", err)
	}
	revoked, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("revoke api keys batch: %w", err)
	}
	return revoked, nil
}

const selectKey = `SELECT id, name, prefix, secret_hash, created_at, expires_at, revoked_at FROM api_keys`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanKey(row rowScanner) (*APIKey, error) {
	var (
		rawID     string
		key       APIKey
		expiresAt sql.NullTime
		revokedAt sql.NullTime
	)
	err := row.Scan(&rawID, &key.Name, &key.Prefix, &key.SecretHash, &key.CreatedAt, &expiresAt, &revokedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan api key: %w", err)
	}

	parsed, err := uuid.Parse(rawID)
	if err != nil {
		return nil, fmt.Errorf("scan api key id: %w", err)
	}
	key.ID = KeyID(parsed)
	if expiresAt.Valid {
		key.ExpiresAt = &expiresAt.Time
	}
	if revokedAt.Valid {
		key.RevokedAt = &revokedAt.Time
	}
	return &key, nil
}
