package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Observe(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveQuery(OutcomeOK, 3)
	m.ObserveQuery(OutcomeOK, 2)
	m.ObserveQuery(OutcomeError, 0)
	m.ObserveSegment(KindMatched)
	m.ObserveSegment(KindUnmatched)
	m.ObserveSegment(KindUnmatched)
	m.ObserveLimiterWait(50 * time.Millisecond)

	assert.InDelta(t, 2, testutil.ToFloat64(m.queries.WithLabelValues(OutcomeOK)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.queries.WithLabelValues(OutcomeError)), 0)
	assert.InDelta(t, 5, testutil.ToFloat64(m.tracks), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(m.segments.WithLabelValues(KindUnmatched)), 0)
	assert.Equal(t, 1, testutil.CollectAndCount(m.limiterWait))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveQuery(OutcomeOK, 1)
		m.ObserveLimiterWait(time.Second)
		m.ObserveSegment(KindMatched)
	})
}
