// ABOUTME: Fill-only backfill pass over reconciled entries
// ABOUTME: Infers missing shipping origins from static rules and page signals
package catalog

import (
	"log"
	"strings"

	"github.com/harperreed/chollosync/canonical"
	"github.com/harperreed/chollosync/models"
	"github.com/harperreed/chollosync/store"
)

// Some AliExpress listings ship from Spanish warehouses; their product
// pages carry this literal.
const plazaMarker = "Desde España"

// PageProber fetches a page for signal detection. fetch.Fetcher
// satisfies it.
type PageProber interface {
	Page(rawURL string) (finalURL, body string, err error)
}

// Backfiller fills missing inferable attributes on existing entries. It
// never overwrites a present value and never touches price or identity
// fields.
type Backfiller struct {
	store  Store
	prober PageProber
	dryRun bool
}

// NewBackfiller creates a backfill pass. prober may be nil, which
// disables page-signal probes.
func NewBackfiller(st Store, prober PageProber, dryRun bool) *Backfiller {
	return &Backfiller{store: st, prober: prober, dryRun: dryRun}
}

// Backfill runs the fill-only pass over entries that survived
// reconciliation.
func (b *Backfiller) Backfill(entries []models.LocalEntry) *models.BackfillSummary {
	summary := &models.BackfillSummary{}

	for i := range entries {
		entry := &entries[i]
		if entry.ShippingOrigin != "" && entry.ShippingOrigin != models.OriginUnknown {
			continue
		}
		summary.Checked++

		origin := b.inferOrigin(entry)
		if origin == models.OriginUnknown {
			continue
		}

		if b.dryRun {
			summary.Filled = append(summary.Filled, entry.Name)
			continue
		}
		if b.fillOrigin(entry, origin) {
			summary.Filled = append(summary.Filled, entry.Name)
		} else {
			summary.Errors++
		}
	}

	return summary
}

// inferOrigin applies the static source rule, refined for AliExpress by
// probing the product page for the Spanish-warehouse marker. The first
// candidate URL carrying the signal wins.
func (b *Backfiller) inferOrigin(entry *models.LocalEntry) string {
	origin := canonical.OriginForSource(entry.Source)

	if entry.Source == models.SourceAliExpress && b.prober != nil {
		for _, candidate := range []string{entry.CanonicalURL, entry.ExpandedURL, entry.RawLink} {
			if candidate == "" {
				continue
			}
			_, body, err := b.prober.Page(candidate)
			if err != nil {
				log.Printf("origin probe failed for %s: %v", candidate, err)
				continue
			}
			if strings.Contains(body, plazaMarker) {
				return models.OriginSpain
			}
			break
		}
	}

	return origin
}

// fillOrigin persists the origin code and its label as independent
// partial updates, so a failure on one field never blocks the other.
func (b *Backfiller) fillOrigin(entry *models.LocalEntry, origin string) bool {
	ok := true
	fields := []store.Meta{
		{Key: models.MetaOrigin, Value: origin},
		{Key: models.MetaOriginLabel, Value: models.OriginLabel(origin)},
	}
	for _, field := range fields {
		_, err := b.store.UpdateProduct(entry.ID, store.ProductInput{
			MetaData: []store.Meta{field},
		})
		if err != nil {
			log.Printf("backfill update failed for %q (%s): %v", entry.Name, field.Key, err)
			ok = false
		}
	}
	if ok {
		entry.ShippingOrigin = origin
	}
	return ok
}
