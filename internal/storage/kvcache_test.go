package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheGetSetExists(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()
	key := "сула-308с_2_понедельник"

	_, hit, err := db.CacheGet(ctx, key)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, db.CacheSet(ctx, key, "Понедельник\n\tВремя: 08:00\n\n"))

	value, hit, err := db.CacheGet(ctx, key)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, "Понедельник\n\tВремя: 08:00\n\n", value)

	exists, err := db.CacheExists(ctx, key)
	require.NoError(t, err)
	assert.True(t, exists)

	// Overwrite races are last-write-wins.
	require.NoError(t, db.CacheSet(ctx, key, "updated"))
	value, _, err = db.CacheGet(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "updated", value)
}

func TestCacheExpiry(t *testing.T) {
	t.Parallel()

	// A tiny TTL makes entries expire immediately.
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := New(dbPath, time.Nanosecond)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	require.NoError(t, db.CacheSet(ctx, "k", "v"))
	time.Sleep(1100 * time.Millisecond) // cached_at has second resolution

	_, hit, err := db.CacheGet(ctx, "k")
	require.NoError(t, err)
	assert.False(t, hit, "expired entries must read as misses")

	deleted, err := db.CacheCleanup(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, deleted)
}

func TestCacheFlush(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.CacheSet(ctx, "a", "1"))
	require.NoError(t, db.CacheSet(ctx, "b", "2"))
	require.NoError(t, db.CacheFlush(ctx))

	for _, key := range []string{"a", "b"} {
		_, hit, err := db.CacheGet(ctx, key)
		require.NoError(t, err)
		assert.False(t, hit)
	}
}
