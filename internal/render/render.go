// Package render produces the typing effect used to reveal generated text.
// The full text is already in memory; the effect is pure sequencing.
package render

import (
	"context"
	"iter"
	"strings"
	"time"
)

// WordsPerChunk is the batch size of the typing effect.
const WordsPerChunk = 3

// Chunks splits text on whitespace and yields groups of size words, each
// followed by a single trailing space. The sequence may be ranged over
// any number of times.
func Chunks(text string, size int) iter.Seq[string] {
	if size <= 0 {
		size = WordsPerChunk
	}
	words := strings.Fields(text)
	return func(yield func(string) bool) {
		for start := 0; start < len(words); start += size {
			end := start + size
			if end > len(words) {
				end = len(words)
			}
			if !yield(strings.Join(words[start:end], " ") + " ") {
				return
			}
		}
	}
}

// Sink receives rendered chunks in order.
type Sink interface {
	// Reset clears whatever was displayed before a new text starts.
	Reset()
	// Append adds one chunk to the display.
	Append(chunk string) error
}

// Typewriter plays chunk sequences into a sink with a fixed pause between
// chunks.
type Typewriter struct {
	Delay     time.Duration
	BatchSize int
}

// Play resets sink and appends every chunk of text. It stops early when ctx
// is done or the sink fails.
func (t Typewriter) Play(ctx context.Context, text string, sink Sink) error {
	sink.Reset()
	first := true
	for chunk := range Chunks(text, t.BatchSize) {
		if !first && t.Delay > 0 {
			timer := time.NewTimer(t.Delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}
		first = false
		if err := sink.Append(chunk); err != nil {
			return err
		}
	}
	return nil
}
