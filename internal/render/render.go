// Package render formats segmented sentences for the terminal.
package render

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"

	"github.com/llehouerou/sentence2songs/internal/track"
)

// LocatorWidth is the column the locator is right-aligned in.
const LocatorWidth = 36

var (
	titleStyle     = lipgloss.NewStyle()
	unmatchedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Italic(true)
	summaryStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// Sentence renders one line per track: a tab, the locator right-aligned in
// LocatorWidth columns, a space and the title. Unmatched placeholders get a
// blank locator and a dimmed title.
func Sentence(tracks []track.Track) string {
	var b strings.Builder
	for _, t := range tracks {
		b.WriteString(Line(t))
		b.WriteByte('\n')
	}
	return b.String()
}

// Line renders a single track.
func Line(t track.Track) string {
	locator := runewidth.FillLeft(Truncate(t.Locator(), LocatorWidth), LocatorWidth)
	style := titleStyle
	if t.IsUnmatched() {
		style = unmatchedStyle
	}
	return "\t" + locator + " " + style.Render(Sanitize(t.Title()))
}

// Stats counts what a run produced.
type Stats struct {
	Sentences int
	Failed    int
	Matched   int
	Unmatched int
}

// Add accounts for one segmented sentence.
func (s *Stats) Add(tracks []track.Track) {
	s.Sentences++
	for _, t := range tracks {
		if t.IsUnmatched() {
			s.Unmatched++
		} else {
			s.Matched++
		}
	}
}

// Summary renders the run counts on one line.
func Summary(s Stats) string {
	line := fmt.Sprintf("%s %s, %s matched, %s unmatched",
		humanize.Comma(int64(s.Sentences)), plural(s.Sentences, "sentence", "sentences"),
		humanize.Comma(int64(s.Matched)), humanize.Comma(int64(s.Unmatched)))
	if s.Failed > 0 {
		line += fmt.Sprintf(", %s failed", humanize.Comma(int64(s.Failed)))
	}
	return summaryStyle.Render(line)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// Sanitize removes control characters (except tab) and invalid UTF-8 bytes,
// so catalog metadata cannot break the terminal.
func Sanitize(s string) string {
	if !needsSanitize(s) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		switch {
		case r == utf8.RuneError && size <= 1:
		case r != '\t' && unicode.IsControl(r):
		case r == '\u00a0':
			b.WriteByte(' ')
		default:
			b.WriteString(s[i : i+size])
		}
		i += size
	}
	return b.String()
}

func needsSanitize(s string) bool {
	if !utf8.ValidString(s) {
		return true
	}
	for _, r := range s {
		if (r != '\t' && unicode.IsControl(r)) || r == '\u00a0' {
			return true
		}
	}
	return false
}

// Truncate shortens s to maxWidth columns, ending with an ellipsis when cut.
func Truncate(s string, maxWidth int) string {
	return runewidth.Truncate(Sanitize(s), maxWidth, "...")
}
