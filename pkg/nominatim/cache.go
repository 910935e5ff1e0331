package nominatim

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

func sha256Sum(s string) [32]byte {
	return sha256.Sum256([]byte(s))
}

// SQLiteCache is a TTL-bounded geocode response cache backed by
// modernc.org/sqlite. It stores raw provider responses keyed by request hash;
// resolved regions are never persisted.
type SQLiteCache struct {
	db  *sql.DB
	ttl time.Duration
}

const cacheMigration = `
CREATE TABLE IF NOT EXISTS geocode_cache (
	request_hash TEXT PRIMARY KEY,
	response     BLOB NOT NULL,
	cached_at    INTEGER NOT NULL
);
`

// NewSQLiteCache opens (or creates) the cache database at dsn with the given
// entry TTL.
func NewSQLiteCache(dsn string, ttl time.Duration) (*SQLiteCache, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "nominatim: open cache")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "nominatim: exec %s", pragma)
		}
	}
	if _, err := db.Exec(cacheMigration); err != nil {
		db.Close()
		return nil, eris.Wrap(err, "nominatim: migrate cache")
	}
	return &SQLiteCache{db: db, ttl: ttl}, nil
}

// Get returns the cached response for key if present and unexpired.
func (c *SQLiteCache) Get(ctx context.Context, key string) ([]byte, bool) {
	var response []byte
	var cachedAt int64
	err := c.db.QueryRowContext(ctx,
		"SELECT response, cached_at FROM geocode_cache WHERE request_hash = ?", key,
	).Scan(&response, &cachedAt)
	if err != nil {
		return nil, false
	}
	if c.ttl > 0 && time.Since(time.Unix(cachedAt, 0)) > c.ttl {
		return nil, false
	}
	return response, true
}

// Set stores a response for key, replacing any prior entry.
func (c *SQLiteCache) Set(ctx context.Context, key string, value []byte) {
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO geocode_cache (request_hash, response, cached_at)
		VALUES (?, ?, ?)
		ON CONFLICT (request_hash) DO UPDATE SET
			response = excluded.response,
			cached_at = excluded.cached_at`,
		key, value, time.Now().Unix(),
	)
	if err != nil {
		zap.L().Warn("nominatim: cache write failed", zap.Error(err))
	}
}

// Prune deletes expired entries. Returns the number removed.
func (c *SQLiteCache) Prune(ctx context.Context) (int64, error) {
	if c.ttl <= 0 {
		return 0, nil
	}
	cutoff := time.Now().Add(-c.ttl).Unix()
	res, err := c.db.ExecContext(ctx, "DELETE FROM geocode_cache WHERE cached_at < ?", cutoff)
	if err != nil {
		return 0, eris.Wrap(err, "nominatim: prune cache")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, eris.Wrap(err, "nominatim: prune rows affected")
	}
	return n, nil
}

// Close closes the underlying database.
func (c *SQLiteCache) Close() error {
	return c.db.Close()
}
