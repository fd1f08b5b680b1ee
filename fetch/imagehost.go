// ABOUTME: Image re-hosting collaborator (imgbb-style upload-by-URL API)
// ABOUTME: Best-effort: failures yield an empty string so callers can degrade
package fetch

import (
	"encoding/json"
	"log"
	"net/http"
	"net/url"
	"time"
)

// ImageHost re-hosts source images through an upload-by-URL API so the
// catalog never hotlinks merchant CDNs.
type ImageHost struct {
	endpoint string
	key      string
	http     *http.Client
}

// NewImageHost creates an image host client. endpoint may be empty,
// which disables re-hosting.
func NewImageHost(endpoint, key string, timeout time.Duration) *ImageHost {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ImageHost{
		endpoint: endpoint,
		key:      key,
		http:     &http.Client{Timeout: timeout},
	}
}

// Rehost uploads the image at srcURL and returns the hosted URL, or ""
// on any failure.
func (h *ImageHost) Rehost(srcURL string) string {
	if h == nil || h.endpoint == "" || srcURL == "" {
		return ""
	}

	form := url.Values{}
	form.Set("image", srcURL)
	if h.key != "" {
		form.Set("key", h.key)
	}

	resp, err := h.http.PostForm(h.endpoint, form)
	if err != nil {
		log.Printf("image host unreachable: %v", err)
		return ""
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Printf("image host returned %d for %s", resp.StatusCode, srcURL)
		return ""
	}

	var out struct {
		Data struct {
			URL string `json:"url"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return ""
	}
	return out.Data.URL
}
