package feed

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleFeed = `[
  {"name": "Xiaomi 17\nPRO MAX", "ram": "12GB", "storage": "512GB",
   "price": "799,00 €", "source": "Amazon",
   "link": "https://amzn.to/abc", "image": "https://cdn.example.com/x17.jpg"},
  {"name": "Vivo iQ90 5G", "price": "449,00 €",
   "link": "https://s.click.aliexpress.com/e/xyz",
   "body": "8GB+256GB Cupón: VIVO50"}
]`

func TestOffersFromHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, sampleFeed)
	}))
	defer srv.Close()

	f := NewJSONFeed(srv.URL, 5*time.Second)
	offers, err := f.Offers()
	require.NoError(t, err)
	require.Len(t, offers, 2)
	assert.Equal(t, "Xiaomi 17\nPRO MAX", offers[0].Name)
	assert.Equal(t, "12GB", offers[0].RAM)
	assert.Equal(t, "799,00 €", offers[0].PriceText)
	assert.Contains(t, offers[1].Body, "Cupón")
}

func TestOffersFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feed.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleFeed), 0644))

	f := NewJSONFeed(path, 5*time.Second)
	offers, err := f.Offers()
	require.NoError(t, err)
	assert.Len(t, offers, 2)
}

func TestOffersHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	f := NewJSONFeed(srv.URL, 5*time.Second)
	_, err := f.Offers()
	assert.Error(t, err)
}

func TestOffersBadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feed.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	f := NewJSONFeed(path, 5*time.Second)
	_, err := f.Offers()
	assert.Error(t, err)
}
