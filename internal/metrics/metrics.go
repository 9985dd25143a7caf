// Package metrics exposes Prometheus collectors for catalog fetching and
// sentence segmentation. A nil *Metrics is valid and records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Query outcomes.
const (
	OutcomeOK     = "ok"
	OutcomeCached = "cached"
	OutcomeError  = "error"
)

// Segment kinds.
const (
	KindMatched     = "matched"
	KindBacktracked = "backtracked"
	KindUnmatched   = "unmatched"
)

// Metrics holds the collectors.
type Metrics struct {
	queries     *prometheus.CounterVec
	tracks      prometheus.Counter
	limiterWait prometheus.Histogram
	segments    *prometheus.CounterVec
}

// New registers the collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		queries: f.NewCounterVec(prometheus.CounterOpts{
			Name: "s2s_fetch_queries_total",
			Help: "Catalog queries by outcome",
		}, []string{"outcome"}),
		tracks: f.NewCounter(prometheus.CounterOpts{
			Name: "s2s_fetch_tracks_total",
			Help: "Tracks returned by catalog queries",
		}),
		limiterWait: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "s2s_limiter_wait_seconds",
			Help:    "Time spent waiting for the catalog rate limiter",
			Buckets: []float64{0, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		segments: f.NewCounterVec(prometheus.CounterOpts{
			Name: "s2s_segment_tracks_total",
			Help: "Tracks emitted by the segmenter by kind",
		}, []string{"kind"}),
	}
}

// ObserveQuery records one finished catalog query.
func (m *Metrics) ObserveQuery(outcome string, tracks int) {
	if m == nil {
		return
	}
	m.queries.WithLabelValues(outcome).Inc()
	m.tracks.Add(float64(tracks))
}

// ObserveLimiterWait records the time a worker waited for admission.
func (m *Metrics) ObserveLimiterWait(d time.Duration) {
	if m == nil {
		return
	}
	m.limiterWait.Observe(d.Seconds())
}

// ObserveSegment records one emitted track.
func (m *Metrics) ObserveSegment(kind string) {
	if m == nil {
		return
	}
	m.segments.WithLabelValues(kind).Inc()
}
