package apikey

import (
	"context"
	"sort"
	"sync"
	"time"

	"zipstate/pkg/platform/sentinel"
)

// InMemory is a mutex-guarded key store for single-node deployments and
// tests. Returned keys are copies; callers never alias store state.
type InMemory struct {
	mu       sync.RWMutex
	byID     map[KeyID]*APIKey
	byPrefix map[string]KeyID
}

func NewInMemory() *InMemory {
	return &InMemory{
		byID:     make(map[KeyID]*APIKey),
		byPrefix: make(map[string]KeyID),
	}
}

func (s *InMemory) Create(_ context.Context, key *APIKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byID[key.ID]; exists {
		return sentinel.ErrAlreadyUsed
	}
	if _, exists := s.byPrefix[key.Prefix]; exists {
		return sentinel.ErrAlreadyUsed
	}

	clone := *key
	s.byID[key.ID] = &clone
	s.byPrefix[key.Prefix] = key.ID
	return nil
}

func (s *InMemory) FindByID(_ context.Context, keyID KeyID) (*APIKey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	key, ok := s.byID[keyID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	clone := *key
	return &clone, nil
}

func (s *InMemory) FindByPrefix(_ context.Context, prefix string) (*APIKey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keyID, ok := s.byPrefix[prefix]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	clone := *s.byID[keyID]
	return &clone, nil
}

func (s *InMemory) List(_ context.Context) ([]*APIKey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]*APIKey, 0, len(s.byID))
	for _, key := range s.byID {
		clone := *key
		keys = append(keys, &clone)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].CreatedAt.Equal(keys[j].CreatedAt) {
			return keys[i].ID.String() < keys[j].ID.String()
		}
		return keys[i].CreatedAt.Before(keys[j].CreatedAt)
	})
	return keys, nil
}

// Execute runs validate then mutate on one key while holding the write lock,
// so no concurrent writer can interleave between the two.
func (s *InMemory) Execute(_ context.Context, keyID KeyID, validate func(*APIKey) error, mutate func(*APIKey)) (*APIKey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key, ok := s.byID[keyID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if err := validate(key); err != nil {
		return nil, err
	}
	mutate(key)

	clone := *key
	return &clone, nil
}

func (s *InMemory) RevokeMany(_ context.Context, keyIDs []KeyID, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var revoked int64
	for _, keyID := range keyIDs {
		key, ok := s.byID[keyID]
		if !ok || key.RevokedAt != nil {
			continue
		}
		key.ApplyRevocation(now)
		revoked++
	}
	return revoked, nil
}
