// ABOUTME: Canonicalization pipeline turning RawOffers into reconciler-ready Offers
// ABOUTME: Name/brand normalization, rejection rules, URL identity and price derivation
package canonical

import (
	"log"
	"strings"

	"github.com/harperreed/chollosync/models"
)

// RejectReason explains why an offer was discarded. Rejections are
// expected outcomes, not errors.
type RejectReason string

const (
	// Accepted means the offer survived canonicalization.
	Accepted RejectReason = ""
	// RejectExcluded marks offers in an excluded product category.
	RejectExcluded RejectReason = "excluded-category"
	// RejectNoMemory marks offers whose RAM/storage could not be found.
	RejectNoMemory RejectReason = "memory-spec-missing"
	// RejectNoLink marks offers without a purchase link.
	RejectNoLink RejectReason = "missing-link"
)

// Tablet-class and wearable keywords that disqualify an offer.
var excludedKeywords = []string{
	"tablet", "tab ", "pad ", "ipad", "matepad", "redmi pad",
	"smartwatch", "watch",
}

// Shortener is the best-effort URL shortening collaborator.
type Shortener interface {
	Shorten(longURL string) string
}

// Canonicalizer derives the stable identity of each scraped offer.
type Canonicalizer struct {
	resolver  *Resolver
	shortener Shortener

	affiliateToken string
	markup         float64
}

// New creates a canonicalizer. shortener may be nil.
func New(resolver *Resolver, shortener Shortener, affiliateToken string, markup float64) *Canonicalizer {
	if markup <= 0 {
		markup = 1.20
	}
	return &Canonicalizer{
		resolver:       resolver,
		shortener:      shortener,
		affiliateToken: affiliateToken,
		markup:         markup,
	}
}

// Canonicalize turns a RawOffer into an Offer, or rejects it. The
// canonical URL is a pure function of the resolved source and raw link,
// so re-running a pass yields the same identity.
func (c *Canonicalizer) Canonicalize(raw models.RawOffer) (*models.Offer, RejectReason) {
	name, brand := NormalizeName(raw.Name)
	if name == "" {
		return nil, RejectExcluded
	}

	lowerName := " " + strings.ToLower(name) + " "
	for _, kw := range excludedKeywords {
		if strings.Contains(lowerName, kw) {
			return nil, RejectExcluded
		}
	}

	ram, storage, ok := c.memorySpec(raw)
	if !ok {
		return nil, RejectNoMemory
	}

	if strings.TrimSpace(raw.Link) == "" {
		return nil, RejectNoLink
	}

	expanded, err := c.resolver.Resolve(raw.Link)
	if err != nil || expanded == "" {
		// Resolution is best-effort; fall back to the raw link so the
		// offer still gets a stable identity this pass.
		log.Printf("link resolution failed for %q: %v", name, err)
		expanded = raw.Link
	}

	offer := &models.Offer{
		Name:     name,
		Brand:    brand,
		RAM:      ram,
		Storage:  storage,
		RawLink:  raw.Link,
		ImageURL: raw.ImageURL,
		Coupon:   ExtractCoupon(raw.Body),
	}
	offer.ExpandedURL = expanded

	// Source detection runs on the final URL: a landing domain never
	// decides the source, the merchant domain does.
	if strategy, found := DetectStrategy(expanded); found {
		offer.Source = strategy.Label
		offer.ShippingOrigin = strategy.Origin
		offer.CanonicalURL = strategy.CanonicalURL(expanded)
		offer.AffiliateURL = strategy.AffiliateURL(offer.CanonicalURL, c.affiliateToken)
	} else {
		offer.Source = strings.TrimSpace(raw.Source)
		offer.ShippingOrigin = models.OriginUnknown
		offer.CanonicalURL = GenericCanonical(expanded)
		offer.AffiliateURL = offer.CanonicalURL
	}

	offer.Price = ParsePrice(raw.PriceText)
	offer.ListPrice = DeriveListPrice(offer.Price, raw.StrikeText, c.markup)

	if c.shortener != nil {
		offer.ShortURL = c.shortener.Shorten(offer.AffiliateURL)
	}

	return offer, Accepted
}

// memorySpec prefers the feed's explicit RAM/storage fields, falling
// back to extraction from the name and body text.
func (c *Canonicalizer) memorySpec(raw models.RawOffer) (ram, storage string, ok bool) {
	if strings.TrimSpace(raw.RAM) != "" && strings.TrimSpace(raw.Storage) != "" {
		return NormalizeCapacity(raw.RAM), NormalizeCapacity(raw.Storage), true
	}
	return ExtractMemory(raw.Name + " " + raw.Body)
}

// CanonicalizeAll runs the pipeline over a scrape batch, dropping
// rejected offers silently (they are expected, not failures).
func (c *Canonicalizer) CanonicalizeAll(raws []models.RawOffer) []models.Offer {
	offers := make([]models.Offer, 0, len(raws))
	rejected := 0
	for _, raw := range raws {
		offer, reason := c.Canonicalize(raw)
		if reason != Accepted {
			rejected++
			continue
		}
		offers = append(offers, *offer)
	}
	if rejected > 0 {
		log.Printf("canonicalization dropped %d of %d offers", rejected, len(raws))
	}
	return offers
}
