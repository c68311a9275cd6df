package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// The rendered-text cache is a flat string-keyed store (§ cache key rules in
// the timetable package). Entries expire after the configured TTL; expired
// rows are invisible to readers and reaped by the cleanup job.

// CacheGet returns the cached rendering for a key. The second return value
// is false on a miss or an expired entry.
func (db *DB) CacheGet(ctx context.Context, key string) (string, bool, error) {
	query := `SELECT value FROM render_cache WHERE key = ? AND cached_at > ?`

	var value string
	err := db.conn.QueryRowContext(ctx, query, key, db.cacheCutoff(time.Now())).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("cache get: %w", err)
	}
	return value, true, nil
}

// CacheSet stores a rendering under a key. Concurrent writers to the same
// key race; last write wins, which is fine for deterministic renderings.
func (db *DB) CacheSet(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO render_cache (key, value, cached_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			cached_at = excluded.cached_at
	`
	if _, err := db.conn.ExecContext(ctx, query, key, value, time.Now().Unix()); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// CacheExists reports whether a live entry exists for the key.
func (db *DB) CacheExists(ctx context.Context, key string) (bool, error) {
	query := `SELECT 1 FROM render_cache WHERE key = ? AND cached_at > ?`

	var one int
	err := db.conn.QueryRowContext(ctx, query, key, db.cacheCutoff(time.Now())).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cache exists: %w", err)
	}
	return true, nil
}

// CacheCleanup deletes expired cache rows, returning how many were removed.
func (db *DB) CacheCleanup(ctx context.Context) (int64, error) {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM render_cache WHERE cached_at <= ?`, db.cacheCutoff(time.Now()))
	if err != nil {
		return 0, fmt.Errorf("cache cleanup: %w", err)
	}
	return result.RowsAffected()
}

// CacheFlush removes every cache entry. The schedule refresh job flushes
// after persisting fresh schedules so stale renderings never outlive them.
func (db *DB) CacheFlush(ctx context.Context) error {
	if _, err := db.conn.ExecContext(ctx, `DELETE FROM render_cache`); err != nil {
		return fmt.Errorf("cache flush: %w", err)
	}
	return nil
}
