package extract

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"
	"time"
)

// HTTPExtractor fetches pages itself and parses the returned document.
type HTTPExtractor struct {
	log      *slog.Logger
	client   *http.Client
	maxBytes int64
}

// NewHTTPExtractor builds an extractor reading at most maxBytes per page.
func NewHTTPExtractor(log *slog.Logger, timeout time.Duration, maxBytes int64) *HTTPExtractor {
	if maxBytes <= 0 {
		maxBytes = 10 << 20
	}
	return &HTTPExtractor{
		log:      log,
		client:   &http.Client{Timeout: timeout},
		maxBytes: maxBytes,
	}
}

func (e *HTTPExtractor) Extract(ctx context.Context, src Source) (string, error) {
	var (
		text string
		err  error
	)
	switch {
	case src.Text != "":
		text = strings.TrimSpace(src.Text)
	case src.HTML != "":
		text, err = textFromHTML(src.HTML)
	case src.URL != "":
		text, err = e.fetch(ctx, src.URL)
	default:
		return "", fmt.Errorf("empty source")
	}
	if err != nil {
		return "", err
	}
	if text == "" {
		return "", ErrNoContent
	}
	return text, nil
}

func (e *HTTPExtractor) fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("invalid page url: %w", err)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/pdf;q=0.9,text/plain;q=0.8")

	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("failed to fetch page: %s", resp.Status)
	}
	content, err := io.ReadAll(io.LimitReader(resp.Body, e.maxBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read page: %w", err)
	}

	mediaType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	switch {
	case mediaType == "application/pdf" || strings.HasSuffix(strings.ToLower(req.URL.Path), ".pdf"):
		text, err := textFromPDF(content)
		if err != nil {
			e.log.Warn("pdf extraction failed", "err", err, "url", url)
			return "", fmt.Errorf("failed to read pdf: %w", err)
		}
		return text, nil
	case mediaType == "text/plain":
		return strings.TrimSpace(string(content)), nil
	default:
		return textFromHTML(string(content))
	}
}
