// ABOUTME: Page-fetch collaborator for link resolution and page-signal checks
// ABOUTME: Follows redirects with or without downloading the body, under a fixed timeout
package fetch

import (
	"fmt"
	"io"
	"net/http"
	"time"
)

const userAgent = "chollosync/1.0"

// maxBodyBytes caps how much of a page we read for link extraction and
// signal probes.
const maxBodyBytes = 1 << 20

// Fetcher performs outbound page fetches. All methods block with the
// client's timeout; a timeout surfaces as a transport error.
type Fetcher struct {
	http *http.Client
}

// NewFetcher creates a fetcher with the given request timeout.
func NewFetcher(timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Fetcher{
		http: &http.Client{Timeout: timeout},
	}
}

// Expand follows redirects and returns the final URL without downloading
// the body. Already-final URLs come back unchanged.
func (f *Fetcher) Expand(rawURL string) (string, error) {
	req, err := http.NewRequest(http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.http.Do(req)
	if err != nil {
		return "", err
	}
	// Body intentionally not read; only the final URL matters here.
	_ = resp.Body.Close()

	return resp.Request.URL.String(), nil
}

// Page fetches a URL following redirects and returns the final URL plus
// the (size-capped) body.
func (f *Fetcher) Page(rawURL string) (finalURL, body string, err error) {
	req, err := http.NewRequest(http.MethodGet, rawURL, nil)
	if err != nil {
		return "", "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.http.Do(req)
	if err != nil {
		return "", "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", "", fmt.Errorf("fetch of %s returned %d", rawURL, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", "", fmt.Errorf("failed to read body: %w", err)
	}
	return resp.Request.URL.String(), string(data), nil
}
