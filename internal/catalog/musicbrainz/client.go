package musicbrainz

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/llehouerou/sentence2songs/internal/catalog"
	"github.com/llehouerou/sentence2songs/internal/track"
)

const (
	defaultBaseURL = "https://musicbrainz.org/ws/2"
	userAgent      = "sentence2songs/0.1 (https://github.com/llehouerou/sentence2songs)"
	defaultLimit   = 50
	defaultTimeout = 30 * time.Second

	// Retry configuration
	maxRetries   = 3
	initialDelay = 2 * time.Second
	maxDelay     = 30 * time.Second

	// LocatorPrefix prefixes the recording MBID in track locators.
	LocatorPrefix = "musicbrainz:recording:"
)

// Waiter blocks until the next request may be sent.
type Waiter interface {
	Wait(ctx context.Context) error
}

// Client searches MusicBrainz recordings.
type Client struct {
	httpClient *http.Client
	baseURL    string
	limit      int
	limiter    Waiter
}

var _ catalog.Client = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithBaseURL points the client at another web service root.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimSuffix(u, "/") }
}

// WithLimit sets the maximum number of recordings requested per search.
func WithLimit(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.limit = n
		}
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithLimiter makes retries wait on the shared limiter before resending.
// The first attempt of a search is expected to be admitted by the caller.
func WithLimiter(w Waiter) Option {
	return func(c *Client) { c.limiter = w }
}

// NewClient creates a new MusicBrainz client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		baseURL:    defaultBaseURL,
		limit:      defaultLimit,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Search looks up recordings whose title contains the query phrase.
func (c *Client) Search(ctx context.Context, query string) ([]track.Track, error) {
	params := url.Values{}
	params.Set("query", "recording:"+quote(query))
	params.Set("fmt", "json")
	params.Set("limit", strconv.Itoa(c.limit))

	reqURL := fmt.Sprintf("%s/recording?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.doRequestWithRetry(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("API status %d: %s", resp.StatusCode, string(body))
	}

	var result recordingSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return convertRecordings(result.Recordings), nil
}

// quote wraps q as a Lucene phrase.
func quote(q string) string {
	q = strings.ReplaceAll(q, `\`, `\\`)
	q = strings.ReplaceAll(q, `"`, `\"`)
	return `"` + q + `"`
}

// doRequestWithRetry executes an HTTP request with exponential backoff retry.
// Retries on 5xx errors and network errors.
func (c *Client) doRequestWithRetry(req *http.Request) (*http.Response, error) {
	var lastErr error
	delay := initialDelay

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			if err := sleepCtx(req.Context(), delay); err != nil {
				return nil, err
			}
			delay = min(delay*2, maxDelay)
			if c.limiter != nil {
				if err := c.limiter.Wait(req.Context()); err != nil {
					return nil, err
				}
			}
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if req.Context().Err() != nil {
				return nil, err
			}
			lastErr = err
			continue
		}

		// Success or client error (4xx) - don't retry
		if resp.StatusCode < 500 {
			return resp, nil
		}

		// Server error (5xx) - retry
		resp.Body.Close()
		lastErr = fmt.Errorf("server returned status %d", resp.StatusCode)
	}

	return nil, fmt.Errorf("request failed after %d retries: %w", maxRetries+1, lastErr)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// convertRecordings converts raw recordings to tracks, skipping recordings
// whose title cleans to nothing.
func convertRecordings(results []recordingResult) []track.Track {
	tracks := make([]track.Track, 0, len(results))
	for i := range results {
		r := &results[i]
		if r.ID == "" {
			continue
		}
		if t, ok := catalog.NewTrack(r.Title, LocatorPrefix+r.ID); ok {
			tracks = append(tracks, t)
		}
	}
	return tracks
}
