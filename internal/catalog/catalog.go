// Package catalog defines the contract for remote song catalogs and the title
// cleaning shared by every backend.
package catalog

import (
	"context"
	"strings"

	"github.com/llehouerou/sentence2songs/internal/text"
	"github.com/llehouerou/sentence2songs/internal/track"
)

// Client searches a catalog for tracks whose titles match query.
// Returned titles are cleaned with CleanTitle.
type Client interface {
	Search(ctx context.Context, query string) ([]track.Track, error)
}

// Func adapts a plain function to Client.
type Func func(ctx context.Context, query string) ([]track.Track, error)

// Search calls f.
func (f Func) Search(ctx context.Context, query string) ([]track.Track, error) {
	return f(ctx, query)
}

// CleanTitle turns a catalog track name into a sentence-comparable title.
// Suffixes such as " - Remastered 2009" and "(feat. Someone)" are cut before
// sanitizing. Names that are not valid UTF-8 clean to "".
func CleanTitle(name string) string {
	if i := strings.Index(name, " -"); i != -1 {
		name = name[:i]
	}
	if i := strings.Index(name, "("); i != -1 {
		name = name[:i]
	}
	title, err := text.Sanitize(name)
	if err != nil {
		return ""
	}
	return title
}

// NewTrack builds a track from a raw catalog name, reporting false when
// nothing usable is left after cleaning or the locator is missing.
func NewTrack(name, locator string) (track.Track, bool) {
	title := CleanTitle(name)
	if title == "" || locator == "" {
		return track.Track{}, false
	}
	return track.New(title, locator), true
}
