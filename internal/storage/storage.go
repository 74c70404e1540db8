// Package storage provides the persistent key/value slot used for the
// session record: a small string-keyed store with in-memory, JSON-file, and
// SQLite backends. Writes are last-writer-wins; there is no locking beyond
// process-local mutexes because access is single-instance.
package storage

import "sync"

// KV is a persistent key/value store. Get reports presence explicitly so an
// absent key is not confused with an empty value.
type KV interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(key string) error
}

// MemoryKV is an in-memory KV, used in tests and as a no-persistence mode.
type MemoryKV struct {
	mu sync.RWMutex
	m  map[string]string
}

// NewMemoryKV creates an empty in-memory store.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{m: make(map[string]string)}
}

// Get returns the value for key and whether it was present.
func (s *MemoryKV) Get(key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.m[key]
	return v, ok, nil
}

// Set stores value under key, replacing any previous value.
func (s *MemoryKV) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = value
	return nil
}

// Delete removes key. Deleting an absent key is a no-op.
func (s *MemoryKV) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, key)
	return nil
}
