package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/sentence2songs/internal/logger"
	"github.com/llehouerou/sentence2songs/internal/segment"
	"github.com/llehouerou/sentence2songs/internal/titleindex"
	"github.com/llehouerou/sentence2songs/internal/track"
)

type fixedFetcher []track.Track

func (f fixedFetcher) Fetch(context.Context, []string) []track.Track { return f }

func newTestSegmenter(tracks ...track.Track) *segment.Segmenter {
	return segment.New(titleindex.New(), fixedFetcher(tracks), segment.WithLogger(logger.Discard()))
}

func TestProcess(t *testing.T) {
	seg := newTestSegmenter(track.New("let it be", "loc:lib"))
	in := strings.NewReader("Let it be\n\n   \nlet it snow\n")
	var out, errOut bytes.Buffer

	stats := process(context.Background(), in, &out, &errOut, seg)

	assert.Equal(t, 2, stats.Sentences)
	assert.Equal(t, 1, stats.Matched)
	assert.Equal(t, 3, stats.Unmatched)
	assert.Zero(t, stats.Failed)
	assert.Empty(t, errOut.String())

	blocks := strings.Split(strings.TrimRight(out.String(), "\n"), "\n\n")
	require.Len(t, blocks, 2, "one block per non-blank sentence")
	assert.Contains(t, blocks[0], "loc:lib")
	assert.Len(t, strings.Split(blocks[1], "\n"), 3)
}

func TestProcess_MalformedLineIsSkipped(t *testing.T) {
	seg := newTestSegmenter(track.New("help", "loc:help"))
	in := strings.NewReader("bad \xff line\nhelp\n")
	var out, errOut bytes.Buffer

	stats := process(context.Background(), in, &out, &errOut, seg)

	assert.Equal(t, 1, stats.Failed)
	assert.Equal(t, 1, stats.Sentences)
	assert.Contains(t, errOut.String(), "Failed to segment sentence")
	assert.Contains(t, out.String(), "loc:help")
}

func TestProcess_StopsWhenCancelled(t *testing.T) {
	seg := newTestSegmenter()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var out, errOut bytes.Buffer

	stats := process(ctx, strings.NewReader("one\ntwo\n"), &out, &errOut, seg)

	assert.Zero(t, stats.Sentences)
	assert.Empty(t, out.String())
}

func TestProcess_LongLineIsSkipped(t *testing.T) {
	seg := newTestSegmenter(track.New("help", "loc:help"))
	in := strings.NewReader(strings.Repeat("a", maxLineSize+1) + "\nhelp\n")
	var out, errOut bytes.Buffer

	stats := process(context.Background(), in, &out, &errOut, seg)

	assert.Equal(t, 1, stats.Failed)
	assert.Equal(t, 1, stats.Sentences, "the line after the long one is still read")
	assert.Contains(t, errOut.String(), "Failed to read input: line too long")
	assert.Contains(t, out.String(), "loc:help")
}

func TestProcess_LineAtLimitIsKept(t *testing.T) {
	line := strings.Repeat("a", maxLineSize)
	var got string
	seg := segmenterFunc(func(_ context.Context, sentence string) ([]track.Track, error) {
		got = sentence
		return []track.Track{track.Unmatched(sentence)}, nil
	})
	var out, errOut bytes.Buffer

	stats := process(context.Background(), strings.NewReader(line), &out, &errOut, seg)

	assert.Zero(t, stats.Failed)
	assert.Equal(t, 1, stats.Sentences)
	assert.Equal(t, line, got, "last line without newline is read whole")
}

// segmenterFunc adapts a function to sentenceSegmenter.
type segmenterFunc func(ctx context.Context, sentence string) ([]track.Track, error)

func (f segmenterFunc) SegmentSentence(ctx context.Context, sentence string) ([]track.Track, error) {
	return f(ctx, sentence)
}

func TestProcess_InterruptedSentenceIsDropped(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	calls := 0
	seg := segmenterFunc(func(_ context.Context, sentence string) ([]track.Track, error) {
		calls++
		cancel()
		// Fetches fail once the context is cancelled, leaving only placeholders.
		return []track.Track{track.Unmatched(sentence)}, nil
	})
	var out, errOut bytes.Buffer

	stats := process(ctx, strings.NewReader("first\nsecond\n"), &out, &errOut, seg)

	assert.Equal(t, 1, calls, "no sentence is started after cancellation")
	assert.Zero(t, stats.Sentences)
	assert.Zero(t, stats.Unmatched)
	assert.Empty(t, out.String())
}
