package misses

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"zipstate/internal/lookup/models"
)

const (
	createMissesTable = `CREATE TABLE IF NOT EXISTS lookup_misses(
		id BIGSERIAL PRIMARY KEY,
		domain TEXT NOT NULL,
		code TEXT NOT NULL,
		request_id TEXT NOT NULL DEFAULT '',
		client_ip TEXT NOT NULL DEFAULT '',
		user_agent TEXT NOT NULL DEFAULT '',
		occurred_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);`

	createMissesDomainIndex = `CREATE INDEX IF NOT EXISTS idx_lookup_misses_domain ON lookup_misses(domain);`

	insertMiss = `INSERT INTO lookup_misses(domain, code, request_id, client_ip, user_agent, occurred_at)
		VALUES($1, $2, $3, $4, $5, $6);`

	selectRecentMisses = `SELECT id, domain, code, request_id, client_ip, user_agent, occurred_at
		FROM lookup_misses ORDER BY occurred_at DESC, id DESC LIMIT $1;`

	countMissesByDomain = `SELECT domain, COUNT(*) FROM lookup_misses GROUP BY domain;`
)

// PostgresStore persists misses through a pgx pool. The schema is created on
// construction if it does not exist.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, pool *pgxpool.Pool) (*PostgresStore, error) {
	if _, err := pool.Exec(ctx, createMissesTable); err != nil {
		return nil, fmt.Errorf("create lookup_misses table: %w", err)
	}
	if _, err := pool.Exec(ctx, createMissesDomainIndex); err != nil {
		return nil, fmt.Errorf("create lookup_misses index: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Record(ctx context.Context, miss models.Miss) error {
	occurredAt := miss.OccurredAt
	if occurredAt.IsZero() {
		// Let the column default stand in; passing the zero time would
		// store year 1 instead.
		_, err := s.pool.Exec(ctx, `INSERT INTO lookup_misses(domain, code, request_id, client_ip, user_agent)
			VALUES($1, $2, $3, $4, $5);`,
			string(miss.Domain), miss.Code, miss.RequestID, miss.ClientIP, miss.UserAgent)
		return err
	}

	_, err := s.pool.Exec(ctx, insertMiss,
		string(miss.Domain), miss.Code, miss.RequestID, miss.ClientIP, miss.UserAgent, occurredAt)
	return err
}

func (s *PostgresStore) Recent(ctx context.Context, limit int) ([]models.Miss, error) {
	if limit <= 0 {
		limit = defaultCapacity
	}

	rows, err := s.pool.Query(ctx, selectRecentMisses, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Miss
	for rows.Next() {
		var m models.Miss
		var domain string
		if err := rows.Scan(&m.ID, &domain, &m.Code, &m.RequestID, &m.ClientIP, &m.UserAgent, &m.OccurredAt); err != nil {
			return nil, err
		}
		m.Domain = models.CodeDomain(domain)
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *PostgresStore) CountByDomain(ctx context.Context) (map[string]int, error) {
	rows, err := s.pool.Query(ctx, countMissesByDomain)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var domain string
		var count int
		if err := rows.Scan(&domain, &count); err != nil {
			return nil, err
		}
		counts[domain] = count
	}
	return counts, rows.Err()
}
