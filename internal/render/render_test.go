package render

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/sentence2songs/internal/track"
)

func TestLine_RightAlignsLocator(t *testing.T) {
	const loc = "musicbrainz:recording:abc"
	line := Line(track.New("let it be", loc))

	prefix := "\t" + strings.Repeat(" ", LocatorWidth-len(loc)) + loc + " "
	require.True(t, strings.HasPrefix(line, prefix), "got %q", line)
	assert.Contains(t, strings.TrimPrefix(line, prefix), "let it be")
}

func TestLine_LocatorColumnIsFixedWidth(t *testing.T) {
	for _, loc := range []string{"a", "https://www.last.fm/music/x/_/y", strings.Repeat("z", 80)} {
		t.Run(loc, func(t *testing.T) {
			line := Line(track.New("song", loc))
			col := strings.TrimPrefix(line, "\t")
			assert.Equal(t, LocatorWidth, runewidth.StringWidth(col[:strings.LastIndex(col, " ")]))
		})
	}
}

func TestLine_Unmatched(t *testing.T) {
	line := Line(track.Unmatched("baby"))

	assert.Equal(t, strings.Repeat(" ", LocatorWidth), line[1:1+LocatorWidth])
	assert.Contains(t, line, "baby")
}

func TestSentence(t *testing.T) {
	out := Sentence([]track.Track{
		track.New("let it be", "loc:1"),
		track.Unmatched("mary"),
	})

	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "loc:1")
	assert.Contains(t, lines[1], "mary")
	assert.Empty(t, Sentence(nil))
}

func TestStatsAndSummary(t *testing.T) {
	var s Stats
	s.Add([]track.Track{track.New("a", "loc:a"), track.Unmatched("b")})
	s.Add([]track.Track{track.New("c", "loc:c")})
	s.Failed = 1

	assert.Equal(t, Stats{Sentences: 2, Failed: 1, Matched: 2, Unmatched: 1}, s)

	summary := Summary(s)
	assert.Contains(t, summary, "2 sentences, 2 matched, 1 unmatched, 1 failed")
	assert.Equal(t, lipgloss.Width(summary), len("2 sentences, 2 matched, 1 unmatched, 1 failed"))
}

func TestSummary_LargeCounts(t *testing.T) {
	summary := Summary(Stats{Sentences: 1, Matched: 12345})
	assert.Contains(t, summary, "1 sentence, 12,345 matched, 0 unmatched")
	assert.NotContains(t, summary, "failed")
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"clean string unchanged", "let it be", "let it be"},
		{"control characters removed", "let\x1b it\x07 be", "let it be"},
		{"tab kept", "a\tb", "a\tb"},
		{"invalid bytes removed", "bad\xffbyte", "badbyte"},
		{"nbsp becomes space", "a\u00a0b", "a b"},
		{"wide characters kept", "東京", "東京"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Sanitize(tt.input); got != tt.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxWidth int
		want     string
	}{
		{"no truncation needed", "hello", 10, "hello"},
		{"exact fit", "hello", 5, "hello"},
		{"truncation with ellipsis", "hello world", 8, "hello..."},
		{"empty string", "", 10, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Truncate(tt.input, tt.maxWidth); got != tt.want {
				t.Errorf("Truncate(%q, %d) = %q, want %q", tt.input, tt.maxWidth, got, tt.want)
			}
		})
	}
}
