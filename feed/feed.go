// ABOUTME: Offer feed collaborator delivering freshly scraped RawOffers
// ABOUTME: JSON feed implementation over HTTP or a local file; extraction itself lives upstream
package feed

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/harperreed/chollosync/models"
)

// Source delivers the current set of scraped offers. The scraping and
// HTML extraction layer sits behind it.
type Source interface {
	Offers() ([]models.RawOffer, error)
}

// JSONFeed reads a JSON array of RawOffers from an HTTP(S) URL or a
// local file path.
type JSONFeed struct {
	url  string
	http *http.Client
}

// NewJSONFeed creates a feed reader for url (http(s):// or a file path).
func NewJSONFeed(url string, timeout time.Duration) *JSONFeed {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &JSONFeed{
		url:  url,
		http: &http.Client{Timeout: timeout},
	}
}

// Offers fetches and decodes the feed.
func (f *JSONFeed) Offers() ([]models.RawOffer, error) {
	data, err := f.read()
	if err != nil {
		return nil, err
	}

	var offers []models.RawOffer
	if err := json.Unmarshal(data, &offers); err != nil {
		return nil, fmt.Errorf("failed to decode feed: %w", err)
	}
	return offers, nil
}

func (f *JSONFeed) read() ([]byte, error) {
	if strings.HasPrefix(f.url, "http://") || strings.HasPrefix(f.url, "https://") {
		resp, err := f.http.Get(f.url)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch feed: %w", err)
		}
		defer func() { _ = resp.Body.Close() }()

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return nil, fmt.Errorf("feed returned %d", resp.StatusCode)
		}
		return io.ReadAll(resp.Body)
	}

	data, err := os.ReadFile(f.url)
	if err != nil {
		return nil, fmt.Errorf("failed to read feed file: %w", err)
	}
	return data, nil
}
