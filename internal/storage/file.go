package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Compile-time interface check.
var _ KV = (*FileKV)(nil)

// FileKV persists keys as a single JSON object on disk. The whole map is
// loaded at open and rewritten on every mutation; the store holds only a
// handful of small records so this stays cheap.
type FileKV struct {
	mu       sync.Mutex
	m        map[string]string
	filePath string
}

// NewFileKV creates a FileKV backed by filePath, loading existing state if
// the file is present. A missing file starts the store empty; an unreadable
// or corrupt file is an error so callers can decide what to do with it.
func NewFileKV(filePath string) (*FileKV, error) {
	s := &FileKV{
		m:        make(map[string]string),
		filePath: filePath,
	}

	data, err := os.ReadFile(filePath)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", filePath, err)
	}
	if err := json.Unmarshal(data, &s.m); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filePath, err)
	}
	return s, nil
}

// Get returns the value for key and whether it was present.
func (s *FileKV) Get(key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.m[key]
	return v, ok, nil
}

// Set stores value under key and rewrites the backing file.
func (s *FileKV) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = value
	return s.flush()
}

// Delete removes key and rewrites the backing file.
func (s *FileKV) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, key)
	return s.flush()
}

// flush writes the in-memory map to disk. Must be called with mu held.
func (s *FileKV) flush() error {
	data, err := json.Marshal(s.m)
	if err != nil {
		return fmt.Errorf("marshalling store: %w", err)
	}
	if dir := filepath.Dir(s.filePath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(s.filePath, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", s.filePath, err)
	}
	return nil
}
