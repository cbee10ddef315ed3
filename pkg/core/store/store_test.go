package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	bolt "go.etcd.io/bbolt"
	"gocloud.dev/docstore"

	_ "gocloud.dev/docstore/memdocstore"
)

func openBolt(t *testing.T) *bolt.DB {
	t.Helper()
	db, err := bolt.Open(filepath.Join(t.TempDir(), "radar.db"), 0600, nil)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func openCollection(t *testing.T) *docstore.Collection {
	t.Helper()
	coll, err := docstore.OpenCollection(context.Background(), "mem://radar/key")
	require.NoError(t, err)
	t.Cleanup(func() { coll.Close() })
	return coll
}

func backends(t *testing.T) map[string]Store {
	return map[string]Store{
		"memory":   NewMemoryStore(),
		"local":    NewLocalStore(openBolt(t)),
		"docstore": NewDocStore(openCollection(t)),
	}
}

func TestRoundTrip(t *testing.T) {
	ctx := context.Background()

	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			for _, lifetime := range []Lifetime{Long, Session} {
				require.NoError(t, s.Set(ctx, KeyUserID, "user-42", lifetime))

				value, ok, err := s.Get(ctx, KeyUserID)
				require.NoError(t, err)
				assert.True(t, ok)
				assert.Equal(t, "user-42", value)
			}
		})
	}
}

func TestOverwriteAndDelete(t *testing.T) {
	ctx := context.Background()

	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Set(ctx, KeyDescription, "first", Long))
			require.NoError(t, s.Set(ctx, KeyDescription, "second", Long))

			value, ok, err := s.Get(ctx, KeyDescription)
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, "second", value)

			require.NoError(t, s.Delete(ctx, KeyDescription))
			_, ok, err = s.Get(ctx, KeyDescription)
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestDeleteMissingKey(t *testing.T) {
	ctx := context.Background()

	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			assert.NoError(t, s.Delete(ctx, "never-written"))
		})
	}
}

func TestLongLifetimeExpires(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore().(*memoryStore)

	written := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return written }
	require.NoError(t, s.Set(ctx, KeyDeviceID, "abc", Long))

	s.now = func() time.Time { return written.Add(LongLifetime - time.Hour) }
	_, ok, _ := s.Get(ctx, KeyDeviceID)
	assert.True(t, ok)

	s.now = func() time.Time { return written.Add(LongLifetime) }
	_, ok, _ = s.Get(ctx, KeyDeviceID)
	assert.False(t, ok)
}

func TestSessionValuesEndWithSession(t *testing.T) {
	ctx := context.Background()
	db := openBolt(t)

	first := NewLocalStore(db)
	require.NoError(t, first.Set(ctx, KeyHost, "https://staging.example.com", Session))
	require.NoError(t, first.Set(ctx, KeyPublishableKey, "prj_test_pk", Long))

	second := NewLocalStore(db)
	_, ok, err := second.Get(ctx, KeyHost)
	require.NoError(t, err)
	assert.False(t, ok, "session value leaked into a new session")

	value, ok, err := second.Get(ctx, KeyPublishableKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "prj_test_pk", value)
}

func TestDocStoreSessionsAreIsolated(t *testing.T) {
	ctx := context.Background()
	coll := openCollection(t)

	first := NewDocStore(coll)
	require.NoError(t, first.Set(ctx, KeyHost, "https://staging.example.com", Session))

	_, ok, err := NewDocStore(coll).Get(ctx, KeyHost)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSafeToleratesUnavailableBackend(t *testing.T) {
	ctx := context.Background()

	for name, s := range map[string]*Safe{
		"unavailable": NewSafe(Unavailable()),
		"nil":         NewSafe(nil),
	} {
		t.Run(name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				s.Set(ctx, KeyUserID, "user", Long)
				s.SetJSON(ctx, KeyMetadata, map[string]string{"a": "b"}, Long)
				s.Delete(ctx, KeyUserID)
			})

			_, ok := s.Get(ctx, KeyUserID)
			assert.False(t, ok)

			var v map[string]string
			assert.False(t, s.GetJSON(ctx, KeyMetadata, &v))
		})
	}
}

func TestSafeJSON(t *testing.T) {
	ctx := context.Background()
	s := NewSafe(NewMemoryStore())

	s.SetJSON(ctx, KeyCustomHeaders, map[string]string{"X-Tenant": "acme"}, Long)

	var headers map[string]string
	require.True(t, s.GetJSON(ctx, KeyCustomHeaders, &headers))
	assert.Equal(t, map[string]string{"X-Tenant": "acme"}, headers)

	s.Set(ctx, KeyMetadata, "{not json", Long)
	var metadata map[string]interface{}
	assert.False(t, s.GetJSON(ctx, KeyMetadata, &metadata))
}

func TestSafeEmptyValueDeletes(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryStore()
	s := NewSafe(backend)

	s.Set(ctx, KeyUserID, "user", Long)
	s.Set(ctx, KeyUserID, "", Long)

	_, ok, err := backend.Get(ctx, KeyUserID)
	require.NoError(t, err)
	assert.False(t, ok)
}
