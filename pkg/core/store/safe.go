package store

import (
	"context"
	"encoding/json"

	"github.com/apex/log"
)

// Safe wraps a Store so that a failing or missing backend behaves like an
// empty one: reads are absent, writes are dropped, and errors are logged
// instead of returned. Empty values read as absent.
type Safe struct {
	backend Store
	logger  *log.Entry
}

// NewSafe wraps backend. A nil backend is treated as unavailable.
func NewSafe(backend Store) *Safe {
	if backend == nil {
		backend = Unavailable()
	}
	return &Safe{
		backend: backend,
		logger:  log.WithField("module", "store"),
	}
}

// Get returns the value at key.
func (s *Safe) Get(ctx context.Context, key string) (string, bool) {
	value, ok, err := s.backend.Get(ctx, key)
	if err != nil {
		s.logger.Debugf("get %s: %v", key, err)
		return "", false
	}
	if !ok || value == "" {
		return "", false
	}
	return value, true
}

// Set writes value at key. An empty value deletes the key.
func (s *Safe) Set(ctx context.Context, key, value string, lifetime Lifetime) {
	if value == "" {
		s.Delete(ctx, key)
		return
	}
	if err := s.backend.Set(ctx, key, value, lifetime); err != nil {
		s.logger.Debugf("set %s: %v", key, err)
	}
}

// Delete removes key.
func (s *Safe) Delete(ctx context.Context, key string) {
	if err := s.backend.Delete(ctx, key); err != nil {
		s.logger.Debugf("delete %s: %v", key, err)
	}
}

// GetJSON decodes the JSON value at key into v. It returns false when the
// key is absent or holds malformed JSON.
func (s *Safe) GetJSON(ctx context.Context, key string, v interface{}) bool {
	raw, ok := s.Get(ctx, key)
	if !ok {
		return false
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		s.logger.Warnf("malformed value at %s: %v", key, err)
		return false
	}
	return true
}

// SetJSON encodes v as JSON and writes it at key.
func (s *Safe) SetJSON(ctx context.Context, key string, v interface{}, lifetime Lifetime) {
	data, err := json.Marshal(v)
	if err != nil {
		s.logger.Errorf("encode value for %s: %v", key, err)
		return
	}
	s.Set(ctx, key, string(data), lifetime)
}
