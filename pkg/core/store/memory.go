package store

import (
	"context"
	"sync"
	"time"
)

type memoryStore struct {
	mu      sync.RWMutex
	entries map[string]entry
	now     func() time.Time
}

// NewMemoryStore returns a store that lives as long as the process. Every
// value shares one session.
func NewMemoryStore() Store {
	return &memoryStore{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

func (s *memoryStore) Get(ctx context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, found := s.entries[key]
	if !found || !e.visible("", s.now()) {
		return "", false, nil
	}
	return e.Value, true, nil
}

func (s *memoryStore) Set(ctx context.Context, key, value string, lifetime Lifetime) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := newEntry(value, lifetime, "", s.now())
	s.entries[key] = e
	return nil
}

func (s *memoryStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

type unavailableStore struct{}

// Unavailable returns a store whose every call fails with ErrUnavailable.
func Unavailable() Store {
	return unavailableStore{}
}

func (unavailableStore) Get(ctx context.Context, key string) (string, bool, error) {
	return "", false, ErrUnavailable
}

func (unavailableStore) Set(ctx context.Context, key, value string, lifetime Lifetime) error {
	return ErrUnavailable
}

func (unavailableStore) Delete(ctx context.Context, key string) error {
	return ErrUnavailable
}
