package settings

import (
	"context"
	"testing"

	"com.aviebrantz.radar-client/pkg/core/store"
	"github.com/stretchr/testify/assert"
)

func TestConfigDefaults(t *testing.T) {
	s := New(store.NewSafe(store.NewMemoryStore()))

	cfg := s.Config(context.Background())
	assert.Empty(t, cfg.PublishableKey)
	assert.Equal(t, DefaultHost, cfg.Host)
	assert.Equal(t, DefaultBasePath, cfg.BasePath)
	assert.Nil(t, cfg.CustomHeaders)
}

func TestInitializeAndSetHost(t *testing.T) {
	ctx := context.Background()
	s := New(store.NewSafe(store.NewMemoryStore()))

	s.Initialize(ctx, " prj_test_pk_123 ")
	s.SetHost(ctx, "https://api-staging.radar.io/", "/v2/")

	cfg := s.Config(ctx)
	assert.Equal(t, "prj_test_pk_123", cfg.PublishableKey)
	assert.Equal(t, "https://api-staging.radar.io", cfg.Host)
	assert.Equal(t, "v2", cfg.BasePath)

	s.SetHost(ctx, "", "")
	cfg = s.Config(ctx)
	assert.Equal(t, DefaultHost, cfg.Host)
	assert.Equal(t, DefaultBasePath, cfg.BasePath)
}

func TestInitializeWithoutKeyClearsIt(t *testing.T) {
	ctx := context.Background()
	s := New(store.NewSafe(store.NewMemoryStore()))

	s.Initialize(ctx, "prj_test_pk")
	s.Initialize(ctx, "")

	assert.Empty(t, s.Config(ctx).PublishableKey)
}

func TestSetRequestHeaders(t *testing.T) {
	ctx := context.Background()
	s := New(store.NewSafe(store.NewMemoryStore()))

	s.SetRequestHeaders(ctx, map[string]string{"X-Tenant": "acme"})
	assert.Equal(t, map[string]string{"X-Tenant": "acme"}, s.Config(ctx).CustomHeaders)

	s.SetRequestHeaders(ctx, nil)
	assert.Nil(t, s.Config(ctx).CustomHeaders)
}
