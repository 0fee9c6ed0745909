package memory

import (
	"context"
	"sync"

	"ncmr/pkg/platform/sentinel"
)

// InMemory keeps values in a map. Nothing survives a restart.
type InMemory struct {
	mu     sync.RWMutex
	values map[string]string
}

func New() *InMemory {
	return &InMemory{values: make(map[string]string)}
}

func (s *InMemory) Get(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if v, ok := s.values[key]; ok {
		return v, nil
	}
	return "", sentinel.ErrNotFound
}

func (s *InMemory) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}
