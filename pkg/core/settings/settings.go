// Package settings resolves the client configuration kept in the store.
package settings

import (
	"context"
	"strings"

	"com.aviebrantz.radar-client/pkg/core/store"
	"github.com/apex/log"
)

const (
	DefaultHost     = "https://api.radar.io"
	DefaultBasePath = "v1"
)

// ClientConfig is the per-request configuration of the client.
type ClientConfig struct {
	PublishableKey string
	Host           string
	BasePath       string
	CustomHeaders  map[string]string
}

// Settings reads and writes ClientConfig through a store.
type Settings struct {
	store  *store.Safe
	logger *log.Entry
}

func New(s *store.Safe) *Settings {
	return &Settings{
		store:  s,
		logger: log.WithField("module", "settings"),
	}
}

// Initialize stores the publishable key. An empty key clears it, so later
// requests fail with a publishable key error.
func (s *Settings) Initialize(ctx context.Context, publishableKey string) {
	publishableKey = strings.TrimSpace(publishableKey)
	if publishableKey == "" {
		s.logger.Error("initialize was called without a publishable key")
	}
	s.store.Set(ctx, store.KeyPublishableKey, publishableKey, store.Long)
}

// SetHost overrides the API host for the current session and the base path.
// Empty values restore the defaults.
func (s *Settings) SetHost(ctx context.Context, host, basePath string) {
	s.store.Set(ctx, store.KeyHost, strings.TrimRight(strings.TrimSpace(host), "/"), store.Session)
	s.store.Set(ctx, store.KeyBaseAPIPath, strings.Trim(strings.TrimSpace(basePath), "/"), store.Long)
}

// SetRequestHeaders replaces the custom headers sent with every request.
// An empty map removes them.
func (s *Settings) SetRequestHeaders(ctx context.Context, headers map[string]string) {
	if len(headers) == 0 {
		s.store.Delete(ctx, store.KeyCustomHeaders)
		return
	}
	s.store.SetJSON(ctx, store.KeyCustomHeaders, headers, store.Long)
}

// Config returns the current configuration with defaults applied.
func (s *Settings) Config(ctx context.Context) ClientConfig {
	cfg := ClientConfig{
		Host:     DefaultHost,
		BasePath: DefaultBasePath,
	}

	if key, ok := s.store.Get(ctx, store.KeyPublishableKey); ok {
		cfg.PublishableKey = key
	}
	if host, ok := s.store.Get(ctx, store.KeyHost); ok {
		cfg.Host = host
	}
	if basePath, ok := s.store.Get(ctx, store.KeyBaseAPIPath); ok {
		cfg.BasePath = basePath
	}

	var headers map[string]string
	if s.store.GetJSON(ctx, store.KeyCustomHeaders, &headers) {
		cfg.CustomHeaders = headers
	}

	return cfg
}
