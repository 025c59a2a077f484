package config

import (
	"context"
	"fmt"
	"maps"
	"sync"
)

type MemoryStore struct {
	mu       sync.RWMutex
	defaults map[string]string
	values   map[string]string
}

func NewMemoryStore(values map[string]string) *MemoryStore {
	s := &MemoryStore{
		defaults: make(map[string]string),
		values:   make(map[string]string, len(values)),
	}
	maps.Copy(s.values, values)
	return s
}

func (s *MemoryStore) Value(path string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if v, ok := s.values[path]; ok {
		return v
	}
	return s.defaults[path]
}

func (s *MemoryStore) Set(_ context.Context, path, value string) error {
	if !IsKnownPath(path) {
		return fmt.Errorf("%w: %s", ErrUnknownPath, path)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[path] = value
	return nil
}

func (s *MemoryStore) Reset(_ context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, path)
	return nil
}

func (s *MemoryStore) SetDefault(path, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.defaults[path]; !ok {
		s.defaults[path] = value
	}
}

func (s *MemoryStore) All() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := maps.Clone(s.defaults)
	maps.Copy(result, s.values)
	return result
}
