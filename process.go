package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/llehouerou/sentence2songs/internal/errmsg"
	"github.com/llehouerou/sentence2songs/internal/render"
	"github.com/llehouerou/sentence2songs/internal/track"
)

// maxLineSize bounds a single input sentence.
const maxLineSize = 1024 * 1024

var errLineTooLong = errors.New("line too long")

type sentenceSegmenter interface {
	SegmentSentence(ctx context.Context, sentence string) ([]track.Track, error)
}

// process segments every line of in and writes the rendered result to out.
// A sentence that fails, too long ones included, is reported on errOut and
// skipped. Processing stops at the end of input or when ctx is cancelled; a
// sentence interrupted by cancellation is dropped.
func process(ctx context.Context, in io.Reader, out, errOut io.Writer, seg sentenceSegmenter) render.Stats {
	var stats render.Stats

	r := bufio.NewReaderSize(in, 64*1024)
	for ctx.Err() == nil {
		line, err := readLine(r)
		if errors.Is(err, io.EOF) {
			break
		}
		if errors.Is(err, errLineTooLong) {
			stats.Failed++
			fmt.Fprintln(errOut, errmsg.Format(errmsg.OpReadInput, err))
			continue
		}
		if err != nil {
			fmt.Fprintln(errOut, errmsg.Format(errmsg.OpReadInput, err))
			break
		}
		if strings.TrimSpace(line) == "" {
			continue
		}

		tracks, err := seg.SegmentSentence(ctx, line)
		if ctx.Err() != nil {
			break
		}
		if err != nil {
			stats.Failed++
			fmt.Fprintln(errOut, errmsg.Format(errmsg.OpSegmentSentence, err))
			continue
		}
		stats.Add(tracks)
		fmt.Fprintln(out, render.Sentence(tracks))
	}

	return stats
}

// readLine returns the next line without its terminator. A line longer than
// maxLineSize is consumed entirely and reported as errLineTooLong.
func readLine(r *bufio.Reader) (string, error) {
	var buf []byte
	tooLong := false
	for {
		chunk, isPrefix, err := r.ReadLine()
		if err != nil {
			return "", err
		}
		if !tooLong {
			if len(buf)+len(chunk) > maxLineSize {
				tooLong = true
				buf = nil
			} else {
				buf = append(buf, chunk...)
			}
		}
		if !isPrefix {
			break
		}
	}
	if tooLong {
		return "", errLineTooLong
	}
	return string(buf), nil
}
