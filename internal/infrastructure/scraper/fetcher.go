package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"SpendScout/internal/domain"
	"SpendScout/internal/ports"
)

// HTTPFetcher performs single-attempt GET requests with a browser-like
// User-Agent. Every failure mode maps to domain.ErrFetchFailed so callers can
// skip the affected unit of work without inspecting transport details.
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
}

var _ ports.Fetcher = (*HTTPFetcher)(nil)

// NewHTTPFetcher wires an HTTP client; the timeout defaults to 10s.
func NewHTTPFetcher(client *http.Client, userAgent string) *HTTPFetcher {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &HTTPFetcher{client: client, userAgent: userAgent}
}

// Fetch issues one GET and returns the body, or domain.ErrFetchFailed on
// non-2xx status, timeout, or transport error. No retries.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", domain.ErrFetchFailed, err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("%w: status %s for %s", domain.ErrFetchFailed, resp.Status, url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", domain.ErrFetchFailed, err)
	}

	return body, nil
}
