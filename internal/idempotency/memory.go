package idempotency

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is the single-process fallback when Redis is not configured.
type MemoryStore struct {
	mu    sync.Mutex
	items map[string]time.Time // key -> expiry
	now   func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string]time.Time), now: time.Now}
}

func (s *MemoryStore) Claim(_ context.Context, key string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if exp, ok := s.items[key]; ok && now.Before(exp) {
		return false, nil
	}
	s.items[key] = now.Add(ttl)
	s.gcLocked(now)
	return true, nil
}

func (s *MemoryStore) Release(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.items, key)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) gcLocked(now time.Time) {
	for k, exp := range s.items {
		if !now.Before(exp) {
			delete(s.items, k)
		}
	}
}
