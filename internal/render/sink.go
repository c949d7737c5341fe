package render

import (
	"io"
	"net/http"
	"strings"
)

// Buffer collects chunks in memory.
type Buffer struct {
	chunks []string
}

func (b *Buffer) Reset() { b.chunks = b.chunks[:0] }

func (b *Buffer) Append(chunk string) error {
	b.chunks = append(b.chunks, chunk)
	return nil
}

// Chunks returns the appended chunks in order.
func (b *Buffer) Chunks() []string { return append([]string(nil), b.chunks...) }

// String returns the displayed text.
func (b *Buffer) String() string { return strings.Join(b.chunks, "") }

// Discard drops every chunk.
var Discard Sink = discard{}

type discard struct{}

func (discard) Reset()                {}
func (discard) Append(_ string) error { return nil }

// WriterSink writes chunks to w, flushing after each one when w supports it.
type WriterSink struct {
	w io.Writer
}

// NewWriterSink wraps w.
func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{w: w}
}

// Reset is a no-op; a stream cannot take back written text.
func (s *WriterSink) Reset() {}

func (s *WriterSink) Append(chunk string) error {
	if _, err := io.WriteString(s.w, chunk); err != nil {
		return err
	}
	if f, ok := s.w.(http.Flusher); ok {
		f.Flush()
	}
	return nil
}
