package store

import (
	"context"
	"sync"

	"gsweb/internal/models"
)

// MemoryStore keeps profiles in process memory.
type MemoryStore struct {
	mu       sync.RWMutex
	profiles []models.TxProfile
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(initial ...models.TxProfile) *MemoryStore {
	return &MemoryStore{profiles: append([]models.TxProfile{}, initial...)}
}

func (s *MemoryStore) Load(ctx context.Context) ([]models.TxProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.TxProfile{}, s.profiles...), nil
}

func (s *MemoryStore) Save(ctx context.Context, profiles []models.TxProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles = append([]models.TxProfile{}, profiles...)
	return nil
}

func (s *MemoryStore) Close() error { return nil }
