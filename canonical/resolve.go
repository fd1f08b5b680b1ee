// ABOUTME: Purchase-link resolution for landing pages and redirector domains
// ABOUTME: Idempotent: an already-final URL resolves to itself
package canonical

import (
	"net/url"
	"regexp"
	"strings"
)

// PageFetcher is the page-fetch collaborator the resolver needs.
type PageFetcher interface {
	// Expand follows redirects without downloading the body.
	Expand(rawURL string) (string, error)
	// Page fetches a URL and returns the final URL and body.
	Page(rawURL string) (finalURL, body string, err error)
}

// Resolver turns a raw scraped link into the true outbound purchase URL.
type Resolver struct {
	fetcher PageFetcher

	// landingHost is the feed site's own host; links into its /go/
	// pages are internal landing pages hiding the real merchant link.
	landingHost string
}

// NewResolver creates a resolver. feedURL (may be empty) identifies the
// feed's own landing-page host.
func NewResolver(fetcher PageFetcher, feedURL string) *Resolver {
	r := &Resolver{fetcher: fetcher}
	if u, err := url.Parse(feedURL); err == nil {
		r.landingHost = strings.ToLower(u.Host)
	}
	return r
}

var anchorRe = regexp.MustCompile(`(?is)<a\b[^>]*href="([^"]+)"[^>]*>(.*?)</a>`)

// Markers identifying the purchase button on a landing page.
var purchaseMarkers = []string{
	"boton-comprar",
	"btn-oferta",
	"comprar",
	"ir a la oferta",
}

// Resolve returns the final outbound purchase URL for a raw link.
// Landing pages are fetched and their outbound link extracted;
// redirector links are expanded; final URLs pass through unchanged.
func (r *Resolver) Resolve(rawLink string) (string, error) {
	if r.isLandingPage(rawLink) {
		return r.resolveLanding(rawLink)
	}
	if IsRedirector(rawLink) {
		return r.fetcher.Expand(rawLink)
	}
	return rawLink, nil
}

func (r *Resolver) isLandingPage(rawLink string) bool {
	if r.landingHost == "" {
		return false
	}
	u, err := url.Parse(rawLink)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Host, r.landingHost) && strings.HasPrefix(u.Path, "/go/")
}

// resolveLanding fetches an internal landing page and extracts the true
// outbound link: first anchor matching a purchase-button marker, else
// the first anchor pointing at a known merchant.
func (r *Resolver) resolveLanding(link string) (string, error) {
	_, body, err := r.fetcher.Page(link)
	if err != nil {
		return "", err
	}

	anchors := anchorRe.FindAllStringSubmatch(body, -1)

	for _, a := range anchors {
		hay := strings.ToLower(a[0])
		for _, marker := range purchaseMarkers {
			if strings.Contains(hay, marker) {
				return r.finalize(a[1])
			}
		}
	}

	for _, a := range anchors {
		if _, ok := DetectStrategy(a[1]); ok {
			return r.finalize(a[1])
		}
	}

	// No outbound link found; the landing URL is all we have.
	return link, nil
}

// finalize expands extracted links that are themselves redirectors.
func (r *Resolver) finalize(link string) (string, error) {
	if IsRedirector(link) {
		return r.fetcher.Expand(link)
	}
	return link, nil
}
