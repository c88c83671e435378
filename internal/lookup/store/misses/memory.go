package misses

import (
	"context"
	"sync"
	"time"

	"zipstate/internal/lookup/models"
)

const defaultCapacity = 10000

// InMemoryStore keeps misses in a bounded slice, oldest evicted first.
// Suitable for development and tests; counters reset on restart.
type InMemoryStore struct {
	mu     sync.RWMutex
	misses []models.Miss
	nextID int64
	cap    int
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{cap: defaultCapacity, nextID: 1}
}

func (s *InMemoryStore) Record(_ context.Context, miss models.Miss) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	miss.ID = s.nextID
	s.nextID++
	if miss.OccurredAt.IsZero() {
		miss.OccurredAt = time.Now()
	}

	s.misses = append(s.misses, miss)
	if len(s.misses) > s.cap {
		s.misses = s.misses[len(s.misses)-s.cap:]
	}
	return nil
}

func (s *InMemoryStore) Recent(_ context.Context, limit int) ([]models.Miss, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := len(s.misses)
	if limit <= 0 || limit > n {
		limit = n
	}

	out := make([]models.Miss, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, s.misses[i])
	}
	return out, nil
}

func (s *InMemoryStore) CountByDomain(_ context.Context) (map[string]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[string]int)
	for _, miss := range s.misses {
		counts[string(miss.Domain)]++
	}
	return counts, nil
}

// Len reports how many misses are currently retained.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.misses)
}
