package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Helper function to create test storage.
func createTestStorage(t *testing.T) (*SQLiteStorage, func()) {
	t.Helper()
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := NewSQLiteStorage(dbPath)
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		t.Fatalf("Failed to migrate: %v", err)
	}

	return store, func() { _ = store.Close() }
}

func testKV(t *testing.T) map[string]KV {
	t.Helper()
	sqlite, cleanup := createTestStorage(t)
	t.Cleanup(cleanup)

	memory, err := NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	require.NoError(t, memory.Migrate(context.Background()))
	t.Cleanup(func() { _ = memory.Close() })

	return map[string]KV{
		"sqlite":        sqlite,
		"sqlite-memory": memory,
		"memory":        NewMemoryStorage(),
	}
}

func TestKVGetSet(t *testing.T) {
	ctx := context.Background()

	for name, store := range testKV(t) {
		t.Run(name, func(t *testing.T) {
			_, ok, err := store.Get(ctx, "quota.guest")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, store.Set(ctx, "quota.guest", `{"count":1}`))
			require.NoError(t, store.Set(ctx, "quota.guest", `{"count":2}`))

			value, ok, err := store.Get(ctx, "quota.guest")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, `{"count":2}`, value)

			require.NoError(t, store.Delete(ctx, "quota.guest"))
			_, ok, err = store.Get(ctx, "quota.guest")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, store.Delete(ctx, "missing"))
		})
	}
}

func TestKVKeys(t *testing.T) {
	ctx := context.Background()

	for name, store := range testKV(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Set(ctx, "quota.guest", "a"))
			require.NoError(t, store.Set(ctx, "quota.authenticated", "b"))
			require.NoError(t, store.Set(ctx, "pref.language", "c"))
			require.NoError(t, store.Set(ctx, "quota_x", "d"))

			keys, err := store.Keys(ctx, "quota.")
			require.NoError(t, err)
			assert.Equal(t, []string{"quota.authenticated", "quota.guest"}, keys)
		})
	}
}

func TestKVRejectsInvalidKeys(t *testing.T) {
	ctx := context.Background()

	for name, store := range testKV(t) {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, store.Set(ctx, "", "v"), ErrEmptyString)
			assert.ErrorIs(t, store.Set(ctx, "has space", "v"), ErrInvalidKey)

			//nolint:staticcheck // exercising nil context validation
			_, _, err := store.Get(nil, "key")
			assert.ErrorIs(t, err, ErrNilContext)
		})
	}
}

func TestSQLiteStoragePersistsAcrossReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "hscode.db")
	ctx := context.Background()

	store, err := NewSQLiteStorage(dbPath)
	require.NoError(t, err)
	require.NoError(t, store.Migrate(ctx))
	require.NoError(t, store.Set(ctx, "pref.language", "ja"))
	require.NoError(t, store.Close())

	reopened, err := NewSQLiteStorage(dbPath)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()
	require.NoError(t, reopened.Migrate(ctx))

	value, ok, err := reopened.Get(ctx, "pref.language")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "ja", value)
}

func TestNewSQLiteStorageRejectsEmptyPath(t *testing.T) {
	_, err := NewSQLiteStorage("  ")
	assert.ErrorIs(t, err, ErrEmptyString)
}
