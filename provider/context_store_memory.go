package provider

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps documents in process memory. It backs the "memory"
// persistence backend and the tests; nothing survives a restart.
type MemoryStore[C any] struct {
	mu    sync.RWMutex
	items map[string]memEntry[C]
}

type memEntry[C any] struct {
	val       C
	expiresAt time.Time // zero means no expiration
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore[C any]() *MemoryStore[C] {
	return &MemoryStore[C]{
		items: make(map[string]memEntry[C]),
	}
}

// Name returns "memory".
func (s *MemoryStore[C]) Name() string { return "memory" }

// IsAvailable always reports true.
func (s *MemoryStore[C]) IsAvailable(context.Context) bool { return true }

// Load returns a copy of the stored value, or (nil, nil) when the key is
// missing or expired.
func (s *MemoryStore[C]) Load(_ context.Context, key string) (*C, error) {
	s.mu.RLock()
	entry, ok := s.items[key]
	s.mu.RUnlock()

	if !ok {
		return nil, nil
	}
	if !entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt) {
		s.mu.Lock()
		delete(s.items, key)
		s.mu.Unlock()
		return nil, nil
	}
	v := entry.val
	return &v, nil
}

// Save stores a copy of *val. TTL of 0 means no expiration.
func (s *MemoryStore[C]) Save(_ context.Context, key string, val *C, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := memEntry[C]{val: *val}
	if ttl > 0 {
		entry.expiresAt = time.Now().Add(ttl)
	}
	s.items[key] = entry
	return nil
}

// Delete removes state.
func (s *MemoryStore[C]) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, key)
	return nil
}

// Len returns the number of entries, expired ones included until a Load
// notices them.
func (s *MemoryStore[C]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

var _ Store[any] = (*MemoryStore[any])(nil)
