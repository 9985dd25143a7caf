package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Catalog backends.
const (
	BackendMusicBrainz = "musicbrainz"
	BackendLastfm      = "lastfm"
)

// DefaultRatePerSecond returns the request rate a backend tolerates.
// MusicBrainz allows one request per second per client.
func DefaultRatePerSecond(backend string) int {
	if backend == BackendMusicBrainz {
		return 1
	}
	return 10
}

type Config struct {
	LogLevel string `koanf:"log_level"` // "debug", "info", "warn", "error"

	// Catalog queried for song titles
	Catalog CatalogConfig `koanf:"catalog"`

	// On-disk response cache
	Cache CacheConfig `koanf:"cache"`

	// Batch fetcher
	Fetch FetchConfig `koanf:"fetch"`

	// Last.fm credentials (required by the lastfm backend)
	Lastfm LastfmConfig `koanf:"lastfm"`

	// Prometheus endpoint
	Metrics MetricsConfig `koanf:"metrics"`
}

// CatalogConfig selects and tunes the catalog backend.
type CatalogConfig struct {
	Backend        string `koanf:"backend"`         // "musicbrainz" or "lastfm" (default: "musicbrainz")
	RatePerSecond  int    `koanf:"rate_per_second"` // catalog calls per second (default: per backend)
	TimeoutSeconds int    `koanf:"timeout_seconds"` // per-request HTTP timeout (default: 30)
	Limit          int    `koanf:"limit"`           // results per query (1-100, default: 50)
}

// Timeout returns the request timeout as a duration.
func (c CatalogConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// CacheConfig holds the response cache settings.
type CacheConfig struct {
	Enabled *bool  `koanf:"enabled"`  // default: true
	Path    string `koanf:"path"`     // empty means the XDG cache file
	TTLDays int    `koanf:"ttl_days"` // default: 7
}

// FetchConfig holds the batch fetcher settings.
type FetchConfig struct {
	Workers     int `koanf:"workers"`       // 0 means twice the number of CPUs
	MinQueryLen int `koanf:"min_query_len"` // shorter words are merged forward (default: 3)
}

// LastfmConfig holds Last.fm API credentials.
type LastfmConfig struct {
	APIKey    string `koanf:"api_key"`
	APISecret string `koanf:"api_secret"`
}

// MetricsConfig holds the metrics endpoint settings.
type MetricsConfig struct {
	Addr string `koanf:"addr"` // e.g. ":9090"; empty disables the endpoint
}

// Load reads the default config files.
func Load() (*Config, error) {
	return LoadFrom("")
}

// LoadFrom reads the default config files, then extra if it is not empty.
// Unlike the default locations, an explicit file must exist.
func LoadFrom(extra string) (*Config, error) {
	k := koanf.New(".")

	// Try config files in order of priority (last wins)
	for _, path := range getConfigPaths() {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, err
			}
		}
	}
	if extra != "" {
		if err := k.Load(file.Provider(expandPath(extra)), toml.Parser()); err != nil {
			return nil, err
		}
	}

	cfg := &Config{
		LogLevel: "info",
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	cfg.Catalog.Backend = strings.ToLower(strings.TrimSpace(cfg.Catalog.Backend))

	// Expand ~ in cache path
	if cfg.Cache.Path != "" {
		cfg.Cache.Path = expandPath(cfg.Cache.Path)
	}

	return cfg, nil
}

func getConfigPaths() []string {
	paths := []string{}

	// 1. ~/.config/sentence2songs/config.toml
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "sentence2songs", "config.toml"))
	}

	// 2. ./config.toml (pwd, highest priority)
	paths = append(paths, "config.toml")

	return paths
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// HasLastfmConfig returns true if Last.fm credentials are configured.
func (c *Config) HasLastfmConfig() bool {
	return c.Lastfm.APIKey != "" && c.Lastfm.APISecret != ""
}

// GetCatalogConfig returns the catalog configuration with defaults applied.
func (c *Config) GetCatalogConfig() CatalogConfig {
	return c.GetCatalogConfigFor("")
}

// GetCatalogConfigFor is GetCatalogConfig with the backend replaced by
// backend when it is not empty. The default rate depends on the backend.
func (c *Config) GetCatalogConfigFor(backend string) CatalogConfig {
	cfg := c.Catalog

	if backend != "" {
		cfg.Backend = strings.ToLower(strings.TrimSpace(backend))
	}
	if cfg.Backend == "" {
		cfg.Backend = BackendMusicBrainz
	}
	if cfg.RatePerSecond <= 0 {
		cfg.RatePerSecond = DefaultRatePerSecond(cfg.Backend)
	}
	if cfg.TimeoutSeconds <= 0 {
		cfg.TimeoutSeconds = 30
	}
	if cfg.Limit <= 0 || cfg.Limit > 100 {
		cfg.Limit = 50
	}

	return cfg
}

// GetCacheConfig returns the cache configuration with defaults applied.
func (c *Config) GetCacheConfig() CacheConfig {
	cfg := c.Cache

	if cfg.Enabled == nil {
		enabled := true
		cfg.Enabled = &enabled
	}
	if cfg.TTLDays <= 0 {
		cfg.TTLDays = 7
	}

	return cfg
}

// CacheEnabled reports whether the response cache is on.
func (c *Config) CacheEnabled() bool {
	return *c.GetCacheConfig().Enabled
}

// GetFetchConfig returns the fetcher configuration with defaults applied.
// A zero worker count is kept: the fetcher picks its own default.
func (c *Config) GetFetchConfig() FetchConfig {
	cfg := c.Fetch

	if cfg.Workers < 0 {
		cfg.Workers = 0
	}
	if cfg.MinQueryLen <= 0 {
		cfg.MinQueryLen = 3
	}

	return cfg
}
