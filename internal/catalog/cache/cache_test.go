package cache

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/sentence2songs/internal/catalog"
	"github.com/llehouerou/sentence2songs/internal/db"
	"github.com/llehouerou/sentence2songs/internal/track"
)

// stubClient counts searches and answers from a fixed table.
type stubClient struct {
	calls   map[string]int
	answers map[string][]track.Track
	err     error
}

func newStubClient() *stubClient {
	return &stubClient{
		calls:   make(map[string]int),
		answers: make(map[string][]track.Track),
	}
}

func (s *stubClient) Search(_ context.Context, query string) ([]track.Track, error) {
	s.calls[query]++
	if s.err != nil {
		return nil, s.err
	}
	return s.answers[query], nil
}

func setupCache(t *testing.T, inner catalog.Client) *Cache {
	t.Helper()
	conn, err := db.Open(db.Memory)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	c, err := New(conn, inner, "test", 7, log.New(io.Discard))
	require.NoError(t, err)
	return c
}

func TestCache_MissThenHit(t *testing.T) {
	inner := newStubClient()
	inner.answers["let it"] = []track.Track{
		track.New("let it be", "loc:1"),
		track.New("let it go", "loc:2"),
	}
	c := setupCache(t, inner)
	ctx := context.Background()

	first, err := c.Search(ctx, "let it")
	require.NoError(t, err)
	second, err := c.Search(ctx, "let it")
	require.NoError(t, err)

	assert.Equal(t, 1, inner.calls["let it"], "second search must be served from cache")
	require.Len(t, second, 2)
	assert.Equal(t, first, second, "cached order must match the original response")
}

func TestCache_EmptyResponseIsCached(t *testing.T) {
	inner := newStubClient()
	c := setupCache(t, inner)
	ctx := context.Background()

	tracks, err := c.Search(ctx, "zzzz")
	require.NoError(t, err)
	assert.Empty(t, tracks)

	tracks, err = c.Search(ctx, "zzzz")
	require.NoError(t, err)
	assert.Empty(t, tracks)
	assert.Equal(t, 1, inner.calls["zzzz"])
}

func TestCache_ErrorsAreNotCached(t *testing.T) {
	inner := newStubClient()
	inner.err = errors.New("network down")
	c := setupCache(t, inner)
	ctx := context.Background()

	_, err := c.Search(ctx, "help")
	require.Error(t, err)

	inner.err = nil
	inner.answers["help"] = []track.Track{track.New("help", "loc:1")}

	tracks, err := c.Search(ctx, "help")
	require.NoError(t, err)
	require.Len(t, tracks, 1)
	assert.Equal(t, 2, inner.calls["help"])
}

func TestCache_ExpiredEntryRefetches(t *testing.T) {
	inner := newStubClient()
	inner.answers["help"] = []track.Track{track.New("help", "loc:old")}
	c := setupCache(t, inner)
	ctx := context.Background()

	now := time.Now()
	c.now = func() time.Time { return now }
	_, err := c.Search(ctx, "help")
	require.NoError(t, err)

	inner.answers["help"] = []track.Track{track.New("help", "loc:new")}
	c.now = func() time.Time { return now.AddDate(0, 0, 8) }

	tracks, err := c.Search(ctx, "help")
	require.NoError(t, err)
	require.Len(t, tracks, 1)
	assert.Equal(t, "loc:new", tracks[0].Locator())
	assert.Equal(t, 2, inner.calls["help"])

	// The refreshed entry replaced the old rows.
	tracks, err = c.Search(ctx, "help")
	require.NoError(t, err)
	require.Len(t, tracks, 1)
	assert.Equal(t, "loc:new", tracks[0].Locator())
}

func TestCache_CachedNeverCallsInner(t *testing.T) {
	inner := newStubClient()
	inner.answers["help"] = []track.Track{track.New("help", "loc:help")}
	c := setupCache(t, inner)
	ctx := context.Background()

	now := time.Now()
	c.now = func() time.Time { return now }

	_, ok := c.Cached(ctx, "help")
	assert.False(t, ok, "nothing stored yet")

	_, err := c.Search(ctx, "help")
	require.NoError(t, err)

	tracks, ok := c.Cached(ctx, "help")
	require.True(t, ok)
	require.Len(t, tracks, 1)
	assert.Equal(t, "loc:help", tracks[0].Locator())

	c.now = func() time.Time { return now.AddDate(0, 0, 8) }
	_, ok = c.Cached(ctx, "help")
	assert.False(t, ok, "expired entry is a miss")

	assert.Equal(t, 1, inner.calls["help"])
}

func TestCache_Purge(t *testing.T) {
	inner := newStubClient()
	inner.answers["old"] = []track.Track{track.New("old", "loc:1")}
	inner.answers["new"] = []track.Track{track.New("new", "loc:2")}
	c := setupCache(t, inner)
	ctx := context.Background()

	now := time.Now()
	c.now = func() time.Time { return now.AddDate(0, 0, -10) }
	_, err := c.Search(ctx, "old")
	require.NoError(t, err)

	c.now = func() time.Time { return now }
	_, err = c.Search(ctx, "new")
	require.NoError(t, err)

	removed, err := c.Purge(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	var rows int
	require.NoError(t, c.db.QueryRow(`SELECT COUNT(*) FROM catalog_responses`).Scan(&rows))
	assert.Equal(t, 1, rows)
}

func TestCache_BackendsAreSeparate(t *testing.T) {
	conn, err := db.Open(db.Memory)
	require.NoError(t, err)
	defer conn.Close()

	a := newStubClient()
	a.answers["q"] = []track.Track{track.New("q", "a:1")}
	b := newStubClient()
	b.answers["q"] = []track.Track{track.New("q", "b:1")}

	ca, err := New(conn, a, "a", 7, log.New(io.Discard))
	require.NoError(t, err)
	cb, err := New(conn, b, "b", 7, log.New(io.Discard))
	require.NoError(t, err)

	ctx := context.Background()
	_, err = ca.Search(ctx, "q")
	require.NoError(t, err)

	tracks, err := cb.Search(ctx, "q")
	require.NoError(t, err)
	require.Len(t, tracks, 1)
	assert.Equal(t, "b:1", tracks[0].Locator())
	assert.Equal(t, 1, b.calls["q"])
}
