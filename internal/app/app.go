// Package app wires configuration into a ready-to-use segmenter: catalog
// backend, response cache, rate limiter, fetcher pool and metrics.
package app

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/llehouerou/sentence2songs/internal/catalog"
	"github.com/llehouerou/sentence2songs/internal/catalog/cache"
	"github.com/llehouerou/sentence2songs/internal/catalog/lastfm"
	"github.com/llehouerou/sentence2songs/internal/catalog/musicbrainz"
	"github.com/llehouerou/sentence2songs/internal/config"
	"github.com/llehouerou/sentence2songs/internal/db"
	"github.com/llehouerou/sentence2songs/internal/fetch"
	"github.com/llehouerou/sentence2songs/internal/logger"
	"github.com/llehouerou/sentence2songs/internal/metrics"
	"github.com/llehouerou/sentence2songs/internal/segment"
	"github.com/llehouerou/sentence2songs/internal/titleindex"
)

// ErrUnknownBackend is returned for a catalog backend name that is not supported.
var ErrUnknownBackend = errors.New("unknown catalog backend")

// Options override configuration values, typically from command-line flags.
type Options struct {
	Backend string // overrides catalog.backend when set
	Workers int    // overrides fetch.workers when > 0
	NoCache bool   // disables the response cache

	// MusicBrainzURL points the MusicBrainz backend at another web service root.
	MusicBrainzURL string
}

// App holds the long-lived components of a run.
type App struct {
	Backend   string
	Catalog   catalog.Client
	Limiter   *fetch.Limiter
	Fetcher   *fetch.Fetcher
	Segmenter *segment.Segmenter
	Registry  *prometheus.Registry
	Cache     *cache.Cache

	cacheDB *sql.DB
	log     *log.Logger
}

// Open builds every component from cfg. Close must be called on the result.
func Open(cfg *config.Config, opts Options) (*App, error) {
	catCfg := cfg.GetCatalogConfigFor(opts.Backend)
	fetchCfg := cfg.GetFetchConfig()
	if opts.Workers > 0 {
		fetchCfg.Workers = opts.Workers
	}

	a := &App{
		Backend:  catCfg.Backend,
		Limiter:  fetch.NewLimiterPerSecond(catCfg.RatePerSecond),
		Registry: prometheus.NewRegistry(),
		log:      logger.New("app"),
	}

	client, err := NewCatalog(cfg, catCfg, a.Limiter, opts.MusicBrainzURL)
	if err != nil {
		return nil, err
	}
	a.Catalog = client

	if cfg.CacheEnabled() && !opts.NoCache {
		if err := a.openCache(cfg.GetCacheConfig()); err != nil {
			return nil, err
		}
	}

	m := metrics.New(a.Registry)
	a.Fetcher = fetch.New(a.Catalog, a.Limiter,
		fetch.WithWorkers(fetchCfg.Workers),
		fetch.WithMinQueryLen(fetchCfg.MinQueryLen),
		fetch.WithMetrics(m),
	)
	a.Segmenter = segment.New(titleindex.New(), a.Fetcher, segment.WithMetrics(m))

	a.log.Debug("ready",
		"backend", a.Backend,
		"workers", a.Fetcher.Workers(),
		"interval", a.Limiter.Interval(),
		"cache", a.Cache != nil)
	return a, nil
}

// NewCatalog creates the backend named by catCfg.Backend. limiter spaces the
// retries of backends that retry on their own.
func NewCatalog(cfg *config.Config, catCfg config.CatalogConfig, limiter *fetch.Limiter, mbURL string) (catalog.Client, error) {
	switch catCfg.Backend {
	case config.BackendMusicBrainz:
		opts := []musicbrainz.Option{
			musicbrainz.WithLimit(catCfg.Limit),
			musicbrainz.WithTimeout(catCfg.Timeout()),
			musicbrainz.WithLimiter(limiter),
		}
		if mbURL != "" {
			opts = append(opts, musicbrainz.WithBaseURL(mbURL))
		}
		return musicbrainz.NewClient(opts...), nil
	case config.BackendLastfm:
		client, err := lastfm.New(cfg.Lastfm.APIKey, cfg.Lastfm.APISecret, catCfg.Limit)
		if err != nil {
			return nil, fmt.Errorf("create lastfm client: %w", err)
		}
		return client, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, catCfg.Backend)
	}
}

func (a *App) openCache(cfg config.CacheConfig) error {
	path := cfg.Path
	if path == "" {
		var err error
		path, err = cache.DefaultPath()
		if err != nil {
			return fmt.Errorf("resolve cache path: %w", err)
		}
	}

	conn, err := db.Open(path)
	if err != nil {
		return fmt.Errorf("open cache database: %w", err)
	}

	c, err := cache.New(conn, a.Catalog, a.Backend, cfg.TTLDays, logger.New("cache"))
	if err != nil {
		conn.Close()
		return err
	}

	a.cacheDB = conn
	a.Cache = c
	a.Catalog = c
	a.log.Debug("response cache", "path", path, "ttl", time.Duration(cfg.TTLDays)*24*time.Hour)
	return nil
}

// Close stops the fetcher pool and closes the cache database.
func (a *App) Close() error {
	if a.Fetcher != nil {
		a.Fetcher.Close()
	}
	if a.cacheDB != nil {
		return a.cacheDB.Close()
	}
	return nil
}
