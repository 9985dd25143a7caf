// Package track defines the value emitted for each piece of a solved sentence.
package track

import "strings"

// Track is a catalog title paired with a locator (a URI or URL pointing at the
// song in the catalog). A Track with an empty locator is an unmatched
// placeholder standing for a single input word.
type Track struct {
	title   string
	locator string
}

// New creates a track. The title is expected to be cleaned already.
func New(title, locator string) Track {
	return Track{title: title, locator: locator}
}

// Unmatched returns the placeholder for a word no known title covers.
func Unmatched(word string) Track {
	return Track{title: word}
}

// Title returns the track title.
func (t Track) Title() string {
	return t.title
}

// Locator returns the catalog locator, empty for placeholders.
func (t Track) Locator() string {
	return t.locator
}

// IsUnmatched reports whether t is a placeholder.
func (t Track) IsUnmatched() bool {
	return t.locator == ""
}

// Words splits the title on whitespace.
func (t Track) Words() []string {
	return strings.Fields(t.title)
}

func (t Track) String() string {
	if t.IsUnmatched() {
		return t.title
	}
	return t.title + " <" + t.locator + ">"
}
