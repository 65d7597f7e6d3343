// Package cache provides the key-value store behind the sheet client's
// read cache. Freshness (TTL) is decided by the caller; a store only holds
// bytes. Store failures are swallowed: a broken cache must never fail the
// read or write it sits under.
package cache

import (
	"context"
	"sync"
)

// Store is the capability the sheet client caches through
type Store interface {
	// Get returns the stored value and whether the key was present
	Get(ctx context.Context, key string) ([]byte, bool)
	// Set stores a value; failures are silent
	Set(ctx context.Context, key string, value []byte)
	// Delete removes one key
	Delete(ctx context.Context, key string)
	// Clear removes every entry this store owns
	Clear(ctx context.Context)
}

// MemoryStore keeps entries in a process-local map. The HTTP server is
// concurrent, so access is mutex guarded.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string][]byte)}
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.entries[key]
	return v, ok
}

func (s *MemoryStore) Set(_ context.Context, key string, value []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = value
}

func (s *MemoryStore) Delete(_ context.Context, key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
}

func (s *MemoryStore) Clear(_ context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string][]byte)
}
