package extract

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestExtractor() *HTTPExtractor {
	return NewHTTPExtractor(slog.New(slog.NewTextHandler(io.Discard, nil)), 5*time.Second, 1<<20)
}

func TestTextFromHTML(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{
			name: "article wins over body",
			html: `<html><body><nav>Menu</nav><article><h1>Title</h1><p>Body text.</p></article><footer>Foot</footer></body></html>`,
			want: "TitleBody text.",
		},
		{
			name: "role main",
			html: `<body><div>skip</div><div role="main"> Main content </div></body>`,
			want: "Main content",
		},
		{
			name: "main element",
			html: `<body><header>Head</header><main>Inside main</main></body>`,
			want: "Inside main",
		},
		{
			name: "first match in document order",
			html: `<body><main>first</main><article>second</article></body>`,
			want: "first",
		},
		{
			name: "falls back to body",
			html: `<html><head><title>T</title></head><body><p>Just a body</p></body></html>`,
			want: "Just a body",
		},
		{
			name: "skips scripts and styles",
			html: `<body><script>var x = 1;</script><style>p{}</style><p>Visible</p><!-- hidden --></body>`,
			want: "Visible",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := textFromHTML(tt.html)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractSources(t *testing.T) {
	e := newTestExtractor()
	ctx := context.Background()

	text, err := e.Extract(ctx, Source{Text: "  selected words \n"})
	require.NoError(t, err)
	assert.Equal(t, "selected words", text)

	text, err = e.Extract(ctx, Source{HTML: "<main>hi</main>", Text: "wins"})
	require.NoError(t, err)
	assert.Equal(t, "wins", text, "text takes precedence over html")

	_, err = e.Extract(ctx, Source{})
	assert.Error(t, err)

	_, err = e.Extract(ctx, Source{HTML: "<body><script>x()</script></body>"})
	assert.True(t, errors.Is(err, ErrNoContent))
}

func TestExtractFetchesURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/page":
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = w.Write([]byte(`<html><body><article>Fetched article</article></body></html>`))
		case "/plain":
			w.Header().Set("Content-Type", "text/plain")
			_, _ = w.Write([]byte("  plain text  "))
		case "/broken.pdf":
			w.Header().Set("Content-Type", "application/pdf")
			_, _ = w.Write([]byte("not a pdf"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	e := newTestExtractor()
	ctx := context.Background()

	text, err := e.Extract(ctx, Source{URL: srv.URL + "/page"})
	require.NoError(t, err)
	assert.Equal(t, "Fetched article", text)

	text, err = e.Extract(ctx, Source{URL: srv.URL + "/plain"})
	require.NoError(t, err)
	assert.Equal(t, "plain text", text)

	_, err = e.Extract(ctx, Source{URL: srv.URL + "/missing"})
	assert.ErrorContains(t, err, "404")

	_, err = e.Extract(ctx, Source{URL: srv.URL + "/broken.pdf"})
	assert.ErrorContains(t, err, "failed to read pdf")
}

func TestSourceIsZero(t *testing.T) {
	assert.True(t, Source{}.IsZero())
	assert.False(t, Source{URL: "https://example.com"}.IsZero())
}

func TestFileSource(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		want    Source
		wantErr bool
	}{
		{name: "html", file: "Page.HTML", content: "<main>x</main>", want: Source{HTML: "<main>x</main>"}},
		{name: "text", file: "notes.txt", content: "notes", want: Source{Text: "notes"}},
		{name: "no extension", file: "README", content: "readme", want: Source{Text: "readme"}},
		{name: "bad pdf", file: "paper.pdf", content: "not a pdf", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FileSource(tt.file, []byte(tt.content))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
