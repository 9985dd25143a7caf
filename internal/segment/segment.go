// Package segment spells sentences as sequences of known titles.
package segment

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/llehouerou/sentence2songs/internal/logger"
	"github.com/llehouerou/sentence2songs/internal/metrics"
	"github.com/llehouerou/sentence2songs/internal/text"
	"github.com/llehouerou/sentence2songs/internal/titleindex"
	"github.com/llehouerou/sentence2songs/internal/track"
)

// Fetcher supplies candidate tracks for the words of a sentence.
type Fetcher interface {
	Fetch(ctx context.Context, words []string) []track.Track
}

// Segmenter feeds the title index from a Fetcher and cuts sentences into the
// longest known titles. Sentences are processed one at a time against the
// shared index.
type Segmenter struct {
	mu      sync.Mutex
	index   *titleindex.Index
	fetcher Fetcher
	log     *log.Logger
	metrics *metrics.Metrics
}

// Option configures a Segmenter.
type Option func(*Segmenter)

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Segmenter) { s.log = l }
}

// WithMetrics records emitted tracks by kind.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Segmenter) { s.metrics = m }
}

// New creates a segmenter over index.
func New(index *titleindex.Index, fetcher Fetcher, opts ...Option) *Segmenter {
	s := &Segmenter{index: index, fetcher: fetcher}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logger.New("segment")
	}
	return s
}

// SegmentSentence sanitizes a raw sentence and segments its words.
// It fails only when the sentence is not valid text.
func (s *Segmenter) SegmentSentence(ctx context.Context, sentence string) ([]track.Track, error) {
	clean, err := text.Sanitize(sentence)
	if err != nil {
		return nil, fmt.Errorf("sanitize sentence: %w", err)
	}
	return s.Segment(ctx, text.Words(clean)), nil
}

// Segment fetches titles for words, imports them, and returns the sentence as
// an ordered list of tracks covering every word. Words that no known title
// covers come back as unmatched placeholders.
func (s *Segmenter) Segment(ctx context.Context, words []string) []track.Track {
	if len(words) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Always refetch: the catalog layer owns response caching.
	fetched := s.fetcher.Fetch(ctx, words)
	s.index.ImportAll(fetched)
	s.log.Debug("index updated", "fetched", len(fetched), "tracks", s.index.Len(), "nodes", s.index.Nodes())

	var result []track.Track
	for len(words) > 0 {
		t, n, kind := s.next(words)
		result = append(result, t)
		s.metrics.ObserveSegment(kind)
		words = words[n:]
	}
	return result
}

// next decides the track covering the head of words and how many words it
// consumes (always at least one).
func (s *Segmenter) next(words []string) (track.Track, int, string) {
	m, ok := s.index.LongestPrefix(words)
	switch {
	case !ok || !m.Found():
		return track.Unmatched(words[0]), 1, metrics.KindUnmatched
	case m.End != nil:
		return *m.End, m.Words, metrics.KindMatched
	default:
		return *m.Checkpoint, m.CheckpointWords, metrics.KindBacktracked
	}
}
