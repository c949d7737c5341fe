// Package extract turns a page handle into the readable text of its main region.
package extract

import (
	"context"
	"errors"
)

// MainSelector picks the region treated as the page's main content.
const MainSelector = `article, [role="main"], main`

// ErrNoContent is returned when a page yields no readable text.
var ErrNoContent = errors.New("no readable content")

// Source identifies what to read. The first non-empty field wins in the
// order Text, HTML, URL.
type Source struct {
	URL  string
	HTML string
	Text string
}

// IsZero reports whether src names nothing.
func (s Source) IsZero() bool {
	return s.URL == "" && s.HTML == "" && s.Text == ""
}

// Extractor returns the visible text of a page or selection.
type Extractor interface {
	Extract(ctx context.Context, src Source) (string, error)
}
