// Package cache stores catalog search responses in SQLite so repeated
// queries skip the remote catalog until they expire.
package cache

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/adrg/xdg"
	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"

	"github.com/llehouerou/sentence2songs/internal/catalog"
	"github.com/llehouerou/sentence2songs/internal/db"
	"github.com/llehouerou/sentence2songs/internal/track"
)

const (
	appName    = "sentence2songs"
	dbFileName = "catalog.db"
)

// DefaultPath returns the cache database location under $XDG_CACHE_HOME.
func DefaultPath() (string, error) {
	return xdg.CacheFile(appName + "/" + dbFileName)
}

// Cache wraps a catalog client with a SQLite response cache.
// Failed searches are never stored.
type Cache struct {
	db      *sql.DB
	inner   catalog.Client
	backend string
	ttl     time.Duration
	now     func() time.Time
	log     *log.Logger
}

var _ catalog.Client = (*Cache)(nil)

// New creates a cache for responses of inner. backend namespaces the rows so
// that several catalogs can share one database.
func New(conn *sql.DB, inner catalog.Client, backend string, ttlDays int, logger *log.Logger) (*Cache, error) {
	if err := initSchema(conn); err != nil {
		return nil, fmt.Errorf("init cache schema: %w", err)
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Cache{
		db:      conn,
		inner:   inner,
		backend: backend,
		ttl:     time.Duration(ttlDays) * 24 * time.Hour,
		now:     time.Now,
		log:     logger,
	}, nil
}

func initSchema(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE TABLE IF NOT EXISTS catalog_queries (
			backend TEXT NOT NULL,
			query TEXT NOT NULL,
			fetched_at INTEGER NOT NULL,
			PRIMARY KEY (backend, query)
		);

		CREATE TABLE IF NOT EXISTS catalog_responses (
			backend TEXT NOT NULL,
			query TEXT NOT NULL,
			position INTEGER NOT NULL,
			title TEXT NOT NULL,
			locator TEXT NOT NULL,
			PRIMARY KEY (backend, query, position)
		);
	`)
	return err
}

// isExpired checks if a cached entry is expired.
func (c *Cache) isExpired(fetchedAt int64) bool {
	return fetchedAt < c.now().Add(-c.ttl).Unix()
}

// Search returns the cached response for query when it is fresh, and asks the
// wrapped client otherwise. A cache that cannot be read or written degrades
// to a pass-through.
func (c *Cache) Search(ctx context.Context, query string) ([]track.Track, error) {
	tracks, ok, err := c.get(ctx, query)
	if err != nil {
		c.log.Warn("cache read failed", "query", query, "err", err)
	}
	if ok {
		return tracks, nil
	}

	tracks, err = c.inner.Search(ctx, query)
	if err != nil {
		return nil, err
	}

	if err := c.set(ctx, query, tracks); err != nil {
		c.log.Warn("cache write failed", "query", query, "err", err)
	}
	return tracks, nil
}

// Cached returns the fresh cached response for query without calling the
// wrapped client. A read error counts as a miss.
func (c *Cache) Cached(ctx context.Context, query string) ([]track.Track, bool) {
	tracks, ok, err := c.get(ctx, query)
	if err != nil {
		c.log.Warn("cache read failed", "query", query, "err", err)
		return nil, false
	}
	return tracks, ok
}

func (c *Cache) get(ctx context.Context, query string) ([]track.Track, bool, error) {
	var fetchedAt int64
	err := c.db.QueryRowContext(ctx, `
		SELECT fetched_at FROM catalog_queries WHERE backend = ? AND query = ?
	`, c.backend, query).Scan(&fetchedAt)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if c.isExpired(fetchedAt) {
		c.log.Debug("cache entry expired", "query", query,
			"fetched", humanize.RelTime(time.Unix(fetchedAt, 0), c.now(), "ago", "from now"))
		return nil, false, nil
	}

	rows, err := c.db.QueryContext(ctx, `
		SELECT title, locator FROM catalog_responses
		WHERE backend = ? AND query = ?
		ORDER BY position ASC
	`, c.backend, query)
	if err != nil {
		return nil, false, err
	}
	defer rows.Close()

	tracks := []track.Track{}
	for rows.Next() {
		var title, locator string
		if err := rows.Scan(&title, &locator); err != nil {
			return nil, false, err
		}
		tracks = append(tracks, track.New(title, locator))
	}
	if err := rows.Err(); err != nil {
		return nil, false, err
	}
	return tracks, true, nil
}

func (c *Cache) set(ctx context.Context, query string, tracks []track.Track) error {
	return db.WithTx(ctx, c.db, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`
			DELETE FROM catalog_responses WHERE backend = ? AND query = ?
		`, c.backend, query); err != nil {
			return err
		}

		if _, err := tx.Exec(`
			INSERT INTO catalog_queries (backend, query, fetched_at)
			VALUES (?, ?, ?)
			ON CONFLICT(backend, query) DO UPDATE SET fetched_at = excluded.fetched_at
		`, c.backend, query, c.now().Unix()); err != nil {
			return err
		}

		stmt, err := tx.Prepare(`
			INSERT INTO catalog_responses (backend, query, position, title, locator)
			VALUES (?, ?, ?, ?, ?)
		`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for i, t := range tracks {
			if _, err := stmt.Exec(c.backend, query, i, t.Title(), t.Locator()); err != nil {
				return err
			}
		}
		return nil
	})
}

// Purge deletes every expired entry and returns the number of queries removed.
func (c *Cache) Purge(ctx context.Context) (int64, error) {
	cutoff := c.now().Add(-c.ttl).Unix()
	var removed int64
	err := db.WithTx(ctx, c.db, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`
			DELETE FROM catalog_responses
			WHERE backend = ? AND query IN (
				SELECT query FROM catalog_queries WHERE backend = ? AND fetched_at < ?
			)
		`, c.backend, c.backend, cutoff); err != nil {
			return err
		}
		res, err := tx.Exec(`
			DELETE FROM catalog_queries WHERE backend = ? AND fetched_at < ?
		`, c.backend, cutoff)
		if err != nil {
			return err
		}
		removed, err = res.RowsAffected()
		return err
	})
	return removed, err
}
