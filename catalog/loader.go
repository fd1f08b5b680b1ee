// ABOUTME: Inventory snapshot loader for the remote catalog
// ABOUTME: Full pagination, provenance filtering and metadata projection
package catalog

import (
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/harperreed/chollosync/models"
	"github.com/harperreed/chollosync/store"
)

// Loader materializes the engine-owned slice of the remote catalog into
// LocalEntry records for one pass.
type Loader struct {
	store    Store
	pageSize int

	// legacyProvenance is the historical marker value (the feed URL an
	// older importer stamped). Entries carrying it are adopted and
	// migrated to the canonical value in place.
	legacyProvenance string

	// readOnly suppresses the in-place provenance migration. Legacy
	// entries are still adopted for the pass.
	readOnly bool
}

// NewLoader creates a snapshot loader. legacyProvenance may be empty.
// A read-only loader issues no writes while paginating.
func NewLoader(st Store, pageSize int, legacyProvenance string, readOnly bool) *Loader {
	if pageSize <= 0 {
		pageSize = 100
	}
	return &Loader{
		store:            st,
		pageSize:         pageSize,
		legacyProvenance: legacyProvenance,
		readOnly:         readOnly,
	}
}

// Load paginates the remote catalog and returns the entries this engine
// owns, in remote pagination order.
func (l *Loader) Load() ([]models.LocalEntry, error) {
	var entries []models.LocalEntry

	for page := 1; ; page++ {
		products, err := l.store.ListProducts(page, l.pageSize, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to load catalog page %d: %w", page, err)
		}

		for i := range products {
			p := &products[i]
			owned, migrate := l.classify(p)
			if !owned {
				continue
			}
			if migrate && !l.readOnly {
				l.migrateProvenance(p)
			}
			entries = append(entries, projectEntry(p))
		}

		if len(products) < l.pageSize {
			break
		}
	}

	return entries, nil
}

// classify reports whether the product belongs to this engine and
// whether its provenance marker still uses the legacy format.
func (l *Loader) classify(p *store.Product) (owned, migrate bool) {
	switch v := p.MetaValue(models.MetaProvenance); {
	case v == models.ProvenanceValue:
		return true, false
	case v != "" && v == l.legacyProvenance:
		return true, true
	default:
		return false, false
	}
}

// migrateProvenance rewrites a legacy marker to the canonical value.
// Running it twice changes nothing after the first rewrite. Best-effort:
// a failed rewrite leaves the entry adopted for this pass and retried
// next pass.
func (l *Loader) migrateProvenance(p *store.Product) {
	_, err := l.store.UpdateProduct(p.ID, store.ProductInput{
		MetaData: []store.Meta{{Key: models.MetaProvenance, Value: models.ProvenanceValue}},
	})
	if err != nil {
		log.Printf("provenance migration failed for entry %d: %v", p.ID, err)
		return
	}
	fmt.Printf("→ Migrated provenance: %s\n", p.Name)
}

// projectEntry maps a wire product onto the fields the reconciler needs,
// with defaults for missing metadata.
func projectEntry(p *store.Product) models.LocalEntry {
	entry := models.LocalEntry{
		ID:             p.ID,
		Name:           p.Name,
		Price:          parseStorePrice(p.SalePrice, p.RegularPrice),
		ListPrice:      parseStorePrice(p.RegularPrice, ""),
		Source:         p.MetaValue(models.MetaSource),
		RAM:            p.MetaValue(models.MetaRAM),
		Storage:        p.MetaValue(models.MetaStorage),
		ShippingOrigin: p.MetaValue(models.MetaOrigin),
		Coupon:         p.MetaValue(models.MetaCoupon),
		RawLink:        p.MetaValue(models.MetaRawURL),
		ExpandedURL:    p.MetaValue(models.MetaExpandedURL),
		CanonicalURL:   p.MetaValue(models.MetaCanonicalURL),
		AffiliateURL:   p.MetaValue(models.MetaAffiliateURL),
		ShortURL:       p.MetaValue(models.MetaShortURL),
		Permalink:      p.Permalink,
		CreatedAt:      parseStoreDate(p.DateCreated),
	}

	if entry.ShippingOrigin == "" {
		entry.ShippingOrigin = models.OriginUnknown
	}
	if entry.Coupon == "" {
		entry.Coupon = models.CouponNone
	}
	if entry.AffiliateURL == "" {
		entry.AffiliateURL = p.ExternalURL
	}

	return entry
}

// parseStorePrice parses a wire price string, falling back to a second
// field when the first is empty. Store prices use a plain dot decimal.
func parseStorePrice(primary, fallback string) float64 {
	s := primary
	if s == "" {
		s = fallback
	}
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// parseStoreDate parses the store's creation timestamp. A zero time is
// returned for missing or unparseable values, which disables any
// age-based protection for that entry.
func parseStoreDate(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
