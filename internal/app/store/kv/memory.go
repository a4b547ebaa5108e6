// internal/app/store/kv/memory.go
package kv

import (
	"context"
	"sync"
	"time"
)

type memEntry struct {
	value     string
	expiresAt time.Time // zero means no expiry
}

// MemoryStore is a process-local Store. It is safe for concurrent use.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memEntry
	now     func() time.Time
}

// NewMemory returns an empty MemoryStore using the wall clock.
func NewMemory() *MemoryStore {
	return NewMemoryWithClock(time.Now)
}

// NewMemoryWithClock returns an empty MemoryStore reading time from now.
func NewMemoryWithClock(now func() time.Time) *MemoryStore {
	return &MemoryStore{entries: make(map[string]memEntry), now: now}
}

func (s *MemoryStore) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return "", ErrNotFound
	}
	if !e.expiresAt.IsZero() && !s.now().Before(e.expiresAt) {
		delete(s.entries, key)
		return "", ErrNotFound
	}
	return e.value, nil
}

func (s *MemoryStore) Set(_ context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := memEntry{value: value}
	if ttl > 0 {
		e.expiresAt = s.now().Add(ttl)
	}
	s.entries[key] = e
	return nil
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

func (s *MemoryStore) Close(context.Context) error { return nil }

// TTL returns the remaining lifetime of key, or 0 if it has none.
func (s *MemoryStore) TTL(key string) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok || e.expiresAt.IsZero() {
		return 0
	}
	return e.expiresAt.Sub(s.now())
}
