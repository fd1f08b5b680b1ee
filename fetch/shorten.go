// ABOUTME: URL shortener collaborator (YOURLS-style endpoint)
// ABOUTME: Best-effort: any failure yields an empty string, never an error
package fetch

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Shortener calls a YOURLS-compatible endpoint. A zero-value endpoint
// disables shortening entirely.
type Shortener struct {
	endpoint  string
	signature string
	http      *http.Client
}

// NewShortener creates a shortener client. endpoint may be empty.
func NewShortener(endpoint, signature string, timeout time.Duration) *Shortener {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Shortener{
		endpoint:  endpoint,
		signature: signature,
		http:      &http.Client{Timeout: timeout},
	}
}

// Shorten returns the short URL for longURL, or "" on any failure. The
// rest of the pipeline never blocks on a missing short link.
func (s *Shortener) Shorten(longURL string) string {
	if s == nil || s.endpoint == "" || longURL == "" {
		return ""
	}

	form := url.Values{}
	form.Set("action", "shorturl")
	form.Set("format", "json")
	form.Set("url", longURL)
	if s.signature != "" {
		form.Set("signature", s.signature)
	}

	resp, err := s.http.PostForm(s.endpoint, form)
	if err != nil {
		log.Printf("shortener unreachable: %v", err)
		return ""
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Printf("shortener returned %d for %s", resp.StatusCode, longURL)
		return ""
	}

	var out struct {
		ShortURL string `json:"shorturl"`
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return ""
	}
	if err := json.Unmarshal(data, &out); err != nil {
		// Some deployments answer format=simple regardless; accept a bare URL.
		trimmed := strings.TrimSpace(string(data))
		if strings.HasPrefix(trimmed, "http") && !strings.ContainsAny(trimmed, " \n") {
			return trimmed
		}
		return ""
	}
	return out.ShortURL
}
