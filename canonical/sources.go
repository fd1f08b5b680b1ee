// ABOUTME: Per-source strategy table for source detection, URL cleaning and affiliate insertion
// ABOUTME: One {detect, canonical, affiliate} triple per merchant, looked up after resolution
package canonical

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/harperreed/chollosync/models"
)

// Strategy bundles the per-merchant rules. Detection runs on the final
// (post-resolution) URL; a generic landing domain never decides the
// source.
type Strategy struct {
	Label  string
	Origin string

	detect    func(host string) bool
	canonical func(u *url.URL) string
	affiliate func(canonicalURL, token string) string
}

var (
	amazonProductRe = regexp.MustCompile(`/(?:dp|gp/product)/([A-Z0-9]{10})`)
	aliItemRe       = regexp.MustCompile(`/item/(\d+)\.html`)
	miraviaItemRe   = regexp.MustCompile(`/p/([A-Za-z0-9\-]+)`)
)

var strategies = []Strategy{
	{
		Label:  models.SourceAmazon,
		Origin: models.OriginSpain,
		detect: func(host string) bool { return strings.Contains(host, "amazon.") },
		canonical: func(u *url.URL) string {
			if m := amazonProductRe.FindStringSubmatch(u.Path); m != nil {
				return u.Scheme + "://" + u.Host + "/dp/" + m[1]
			}
			return stripQuery(u)
		},
		affiliate: func(canonicalURL, token string) string {
			return insertQueryParam(canonicalURL, "tag", token)
		},
	},
	{
		Label:  models.SourceAliExpress,
		Origin: models.OriginChina,
		detect: func(host string) bool { return strings.Contains(host, "aliexpress.") },
		canonical: func(u *url.URL) string {
			if m := aliItemRe.FindStringSubmatch(u.Path); m != nil {
				return u.Scheme + "://" + u.Host + "/item/" + m[1] + ".html"
			}
			return stripQuery(u)
		},
		affiliate: func(canonicalURL, token string) string {
			return insertQueryParam(canonicalURL, "aff_fcid", token)
		},
	},
	{
		Label:  models.SourceMiravia,
		Origin: models.OriginSpain,
		detect: func(host string) bool { return strings.Contains(host, "miravia.") },
		canonical: func(u *url.URL) string {
			if m := miraviaItemRe.FindStringSubmatch(u.Path); m != nil {
				return u.Scheme + "://" + u.Host + "/p/" + m[1]
			}
			return stripQuery(u)
		},
		affiliate: appendAffiliateSuffix,
	},
	{
		Label:  models.SourceMediaMarkt,
		Origin: models.OriginSpain,
		detect: func(host string) bool { return strings.Contains(host, "mediamarkt.") },
		canonical: func(u *url.URL) string {
			return stripQuery(u)
		},
		affiliate: func(canonicalURL, token string) string {
			return insertQueryParam(canonicalURL, "rmid", token)
		},
	},
}

// DetectStrategy finds the merchant strategy for a URL, if any.
func DetectStrategy(rawURL string) (*Strategy, bool) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, false
	}
	host := strings.ToLower(u.Host)
	for i := range strategies {
		if strategies[i].detect(host) {
			return &strategies[i], true
		}
	}
	return nil, false
}

// CanonicalURL applies the strategy's cleaning rule. It is a pure
// function of the resolved URL and idempotent under re-application.
func (s *Strategy) CanonicalURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	return s.canonical(u)
}

// AffiliateURL inserts this deployment's tracking token using the
// strategy's insertion syntax. Re-applying it never double-inserts.
func (s *Strategy) AffiliateURL(canonicalURL, token string) string {
	if token == "" {
		return canonicalURL
	}
	return s.affiliate(canonicalURL, token)
}

// OriginForSource returns the shipping origin a source label implies,
// or OriginUnknown for labels without a strategy.
func OriginForSource(label string) string {
	for i := range strategies {
		if strings.EqualFold(strategies[i].Label, label) {
			return strategies[i].Origin
		}
	}
	return models.OriginUnknown
}

// redirectorHosts are link-shortening domains resolved with a
// redirect-following fetch, no body download.
var redirectorHosts = map[string]bool{
	"amzn.to":                true,
	"s.click.aliexpress.com": true,
	"bit.ly":                 true,
}

// IsRedirector reports whether a URL points at a known redirector host.
func IsRedirector(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return redirectorHosts[strings.ToLower(u.Host)]
}

// GenericCanonical strips the query string for merchants without a
// dedicated strategy.
func GenericCanonical(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	return stripQuery(u)
}

func stripQuery(u *url.URL) string {
	c := *u
	c.RawQuery = ""
	c.Fragment = ""
	return c.String()
}

// insertQueryParam adds key=value to a URL, checking before insert so a
// second application is a no-op.
func insertQueryParam(rawURL, key, value string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	q := u.Query()
	if q.Has(key) {
		return rawURL
	}
	q.Set(key, value)
	u.RawQuery = q.Encode()
	return u.String()
}

// appendAffiliateSuffix adds the path-style token ("/af/<token>") used
// by suffix-syntax merchants, skipping URLs that already carry one.
func appendAffiliateSuffix(canonicalURL, token string) string {
	u, err := url.Parse(canonicalURL)
	if err != nil {
		return canonicalURL
	}
	if strings.Contains(u.Path, "/af/") {
		return canonicalURL
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/af/" + token
	return u.String()
}
