package fetch

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/llehouerou/sentence2songs/internal/catalog"
	"github.com/llehouerou/sentence2songs/internal/logger"
	"github.com/llehouerou/sentence2songs/internal/metrics"
	"github.com/llehouerou/sentence2songs/internal/track"
)

// job is one catalog query submitted to the pool.
type job struct {
	ctx     context.Context
	query   string
	results chan<- []track.Track
}

// cachedSearcher is implemented by clients that can answer some queries
// locally. Those answers skip the Limiter.
type cachedSearcher interface {
	Cached(ctx context.Context, query string) ([]track.Track, bool)
}

// Fetcher runs catalog queries on a fixed pool of workers. Every call that
// reaches the remote catalog first passes the shared Limiter.
type Fetcher struct {
	client  catalog.Client
	limiter *Limiter
	workers int
	minLen  int
	log     *log.Logger
	metrics *metrics.Metrics

	jobs      chan job
	done      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithWorkers sets the pool size. n <= 0 keeps the default of twice the
// number of CPUs.
func WithWorkers(n int) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.workers = n
		}
	}
}

// WithMinQueryLen sets the length below which words are merged forward.
func WithMinQueryLen(n int) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.minLen = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(f *Fetcher) { f.log = l }
}

// WithMetrics records query outcomes and limiter waits.
func WithMetrics(m *metrics.Metrics) Option {
	return func(f *Fetcher) { f.metrics = m }
}

// DefaultWorkers returns the default pool size.
func DefaultWorkers() int {
	return 2 * runtime.NumCPU()
}

// New starts a fetcher. Close must be called to stop its workers.
func New(client catalog.Client, limiter *Limiter, opts ...Option) *Fetcher {
	f := &Fetcher{
		client:  client,
		limiter: limiter,
		workers: DefaultWorkers(),
		minLen:  DefaultMinQueryLen,
		jobs:    make(chan job),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.limiter == nil {
		f.limiter = NewLimiter(DefaultInterval)
	}
	if f.log == nil {
		f.log = logger.New("fetch")
	}

	for range f.workers {
		f.wg.Go(f.work)
	}
	return f
}

// Workers returns the pool size.
func (f *Fetcher) Workers() int {
	return f.workers
}

// Fetch queries the catalog for every query built from words and returns all
// tracks found, in no particular order. It blocks until each query has either
// answered or failed; a failed query contributes no tracks.
func (f *Fetcher) Fetch(ctx context.Context, words []string) []track.Track {
	queries := Queries(words, f.minLen)
	if len(queries) == 0 {
		return nil
	}

	results := make(chan []track.Track, len(queries))
	for _, q := range queries {
		j := job{ctx: ctx, query: q, results: results}
		select {
		case f.jobs <- j:
		case <-f.done:
			results <- nil
		}
	}

	var tracks []track.Track
	for range queries {
		tracks = append(tracks, <-results...)
	}

	f.log.Debug("batch fetched", "queries", len(queries), "tracks", len(tracks))
	return tracks
}

// Close stops the workers and waits for in-flight queries to finish.
// Queries submitted afterwards return no tracks.
func (f *Fetcher) Close() {
	f.closeOnce.Do(func() {
		close(f.done)
	})
	f.wg.Wait()
}

func (f *Fetcher) work() {
	for {
		select {
		case j := <-f.jobs:
			j.results <- f.run(j.ctx, j.query)
		case <-f.done:
			return
		}
	}
}

// run executes one query. Every failure degrades to an empty result.
func (f *Fetcher) run(ctx context.Context, query string) []track.Track {
	if c, ok := f.client.(cachedSearcher); ok {
		if tracks, hit := c.Cached(ctx, query); hit {
			f.log.Debug("cached query", "query", query, "tracks", len(tracks))
			f.metrics.ObserveQuery(metrics.OutcomeCached, len(tracks))
			return tracks
		}
	}

	start := time.Now()
	if err := f.limiter.Wait(ctx); err != nil {
		f.log.Warn("query not admitted", "query", query, "err", err)
		f.metrics.ObserveQuery(metrics.OutcomeError, 0)
		return nil
	}
	f.metrics.ObserveLimiterWait(time.Since(start))

	tracks, err := f.client.Search(ctx, query)
	if err != nil {
		f.log.Warn("catalog query failed", "query", query, "err", err)
		f.metrics.ObserveQuery(metrics.OutcomeError, 0)
		return nil
	}

	f.log.Debug("catalog query", "query", query, "tracks", len(tracks))
	f.metrics.ObserveQuery(metrics.OutcomeOK, len(tracks))
	return tracks
}
