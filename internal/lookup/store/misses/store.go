// Package misses logs codes that no rule matched, for operator review.
package misses

import (
	"context"

	"zipstate/internal/lookup/models"
)

// Store persists miss observations. Recording is best effort from the
// service's point of view; a store failure never fails the lookup.
type Store interface {
	Record(ctx context.Context, miss models.Miss) error
	// Recent returns misses newest first. A non-positive limit returns all.
	Recent(ctx context.Context, limit int) ([]models.Miss, error)
	CountByDomain(ctx context.Context) (map[string]int, error)
}
