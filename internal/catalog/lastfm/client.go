// Package lastfm searches Last.fm tracks by title.
package lastfm

import (
	"context"
	"errors"
	"fmt"

	"github.com/shkh/lastfm-go/lastfm"

	"github.com/llehouerou/sentence2songs/internal/catalog"
	"github.com/llehouerou/sentence2songs/internal/track"
)

const defaultLimit = 50

// ErrNoCredentials is returned when the API key or secret is missing.
var ErrNoCredentials = errors.New("last.fm api key and secret are required")

// match is a single track.search hit.
type match struct {
	Name string
	URL  string
}

type searchFunc func(query string, limit int) ([]match, error)

// Client wraps the Last.fm API for track search.
type Client struct {
	search searchFunc
	limit  int
}

var _ catalog.Client = (*Client)(nil)

// New creates a new Last.fm client with the given API credentials.
func New(apiKey, apiSecret string, limit int) (*Client, error) {
	if apiKey == "" || apiSecret == "" {
		return nil, ErrNoCredentials
	}
	api := lastfm.New(apiKey, apiSecret)
	return newClient(apiSearch(api), limit), nil
}

func newClient(search searchFunc, limit int) *Client {
	if limit <= 0 {
		limit = defaultLimit
	}
	return &Client{search: search, limit: limit}
}

// apiSearch adapts track.search of the Last.fm API.
func apiSearch(api *lastfm.Api) searchFunc {
	return func(query string, limit int) ([]match, error) {
		result, err := api.Track.Search(lastfm.P{
			"track": query,
			"limit": limit,
		})
		if err != nil {
			return nil, err
		}
		matches := make([]match, 0, len(result.Tracks))
		for _, t := range result.Tracks {
			matches = append(matches, match{Name: t.Name, URL: t.Url})
		}
		return matches, nil
	}
}

// Search looks up tracks matching query. The Last.fm library does not take a
// context, so cancellation is only honoured before the request starts.
func (c *Client) Search(ctx context.Context, query string) ([]track.Track, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	matches, err := c.search(query, c.limit)
	if err != nil {
		return nil, fmt.Errorf("search tracks: %w", err)
	}

	tracks := make([]track.Track, 0, len(matches))
	for _, m := range matches {
		if t, ok := catalog.NewTrack(m.Name, m.URL); ok {
			tracks = append(tracks, t)
		}
	}
	return tracks, nil
}
