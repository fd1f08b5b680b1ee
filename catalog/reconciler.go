// ABOUTME: Core reconciliation algorithm for one pass
// ABOUTME: Classifies entries as existing/updated/deleted and creates unmatched offers with bounded retry
package catalog

import (
	"fmt"
	"log"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/harperreed/chollosync/canonical"
	"github.com/harperreed/chollosync/models"
	"github.com/harperreed/chollosync/store"
)

const buttonText = "Ver oferta"

// Options bound the reconciler's behavior for one pass.
type Options struct {
	PriceTolerance float64
	CreateAttempts int
	CreateDelay    time.Duration

	// DeleteGraceDays protects entries younger than this many days from
	// deletion. 0 disables the protection (unmatched entries are deleted
	// unconditionally).
	DeleteGraceDays int

	// DryRun runs the full decision procedure without remote mutations.
	DryRun bool
}

// Reconciler applies the per-pass decision procedure: match offers to
// entries, update drifted prices, delete unmatched entries and create
// unmatched offers. It returns a Summary instead of accumulating state.
type Reconciler struct {
	store      Store
	categories *Provisioner
	shortener  canonical.Shortener
	opts       Options
}

// NewReconciler creates a reconciler. shortener may be nil.
func NewReconciler(st Store, categories *Provisioner, shortener canonical.Shortener, opts Options) *Reconciler {
	if opts.PriceTolerance <= 0 {
		opts.PriceTolerance = 0.01
	}
	if opts.CreateAttempts <= 0 {
		opts.CreateAttempts = 10
	}
	return &Reconciler{
		store:      st,
		categories: categories,
		shortener:  shortener,
		opts:       opts,
	}
}

// Reconcile runs one pass over the scraped offers and the loaded
// snapshot. Entries are evaluated in load order; offers are consumed
// first-match-wins.
func (r *Reconciler) Reconcile(offers []models.Offer, entries []models.LocalEntry) *models.Summary {
	summary := &models.Summary{
		PassID:    ulid.Make().String(),
		StartedAt: time.Now(),
		DryRun:    r.opts.DryRun,
	}
	defer func() { summary.Duration = time.Since(summary.StartedAt) }()

	if len(offers) == 0 {
		// An empty scrape is treated as a transient failure, not "delete
		// everything": no destructive action this pass.
		log.Printf("ALERT: offer list is empty, skipping deletions and updates")
		summary.SnapshotEmpty = true
		return summary
	}

	matcher := NewOfferMatcher(offers)

	// Keys already held by a catalog entry or created this pass. Repeat
	// scrapes and post-correction collisions collapse against it.
	knownKeys := make(map[models.MatchKey]bool, len(entries))
	for i := range entries {
		knownKeys[entries[i].Key()] = true
	}

	for i := range entries {
		entry := &entries[i]
		offer, matched := matcher.Take(entry.Key())
		if !matched {
			r.deleteEntry(entry, summary)
			continue
		}

		if r.pricesEqual(entry, offer) {
			summary.Existing++
			continue
		}
		r.updateEntry(entry, offer, summary)
	}

	for _, offer := range matcher.Unconsumed() {
		r.createEntry(offer, knownKeys, summary)
	}

	return summary
}

func (r *Reconciler) pricesEqual(entry *models.LocalEntry, offer *models.Offer) bool {
	return math.Abs(entry.Price-offer.Price) <= r.opts.PriceTolerance &&
		math.Abs(entry.ListPrice-offer.ListPrice) <= r.opts.PriceTolerance
}

// updateEntry rewrites the prices (and the purchase link they travel
// with) in place. Best-effort: a failure is logged and left for the
// next pass.
func (r *Reconciler) updateEntry(entry *models.LocalEntry, offer *models.Offer, summary *models.Summary) {
	diff := fmt.Sprintf("price %s → %s, list %s → %s",
		canonical.FormatPrice(entry.Price), canonical.FormatPrice(offer.Price),
		canonical.FormatPrice(entry.ListPrice), canonical.FormatPrice(offer.ListPrice))

	if !r.opts.DryRun {
		input := store.ProductInput{
			RegularPrice: canonical.FormatPrice(offer.ListPrice),
			SalePrice:    canonical.FormatPrice(offer.Price),
			ExternalURL:  offer.AffiliateURL,
			MetaData: []store.Meta{
				{Key: models.MetaAffiliateURL, Value: offer.AffiliateURL},
			},
		}
		if _, err := r.store.UpdateProduct(entry.ID, input); err != nil {
			log.Printf("update failed for %q: %v", entry.Name, err)
			summary.Failed++
			return
		}
	}

	fmt.Printf("→ Updated: %s (%s)\n", entry.Name, diff)
	summary.Updated = append(summary.Updated, models.Change{
		EntryID: entry.ID,
		Name:    entry.Name,
		Diff:    diff,
	})
}

// deleteEntry removes an entry whose offer disappeared from the feed,
// unless a grace period protects it. Best-effort, not retried.
func (r *Reconciler) deleteEntry(entry *models.LocalEntry, summary *models.Summary) {
	if r.opts.DeleteGraceDays > 0 && !entry.CreatedAt.IsZero() {
		age := time.Since(entry.CreatedAt)
		if age < time.Duration(r.opts.DeleteGraceDays)*24*time.Hour {
			fmt.Printf("→ Protected: %s (%.0fh old, grace %dd)\n",
				entry.Name, age.Hours(), r.opts.DeleteGraceDays)
			return
		}
	}

	if !r.opts.DryRun {
		if err := r.store.DeleteProduct(entry.ID, true); err != nil {
			log.Printf("delete failed for %q: %v", entry.Name, err)
			summary.Failed++
			return
		}
	}

	fmt.Printf("✗ Deleted: %s\n", entry.Name)
	summary.Deleted = append(summary.Deleted, entry.Name)
	summary.DeletedIDs = append(summary.DeletedIDs, entry.ID)
}

// createEntry provisions categories and creates the catalog entry with
// bounded retry. knownKeys guards against duplicates: an offer whose key
// is already held, before or after the slug-derived name correction,
// never creates a second entry.
func (r *Reconciler) createEntry(offer *models.Offer, knownKeys map[models.MatchKey]bool, summary *models.Summary) {
	if offer.Source == models.SourceAliExpress {
		if name, brand := slugName(offer.ExpandedURL); name != "" && name != offer.Name {
			fmt.Printf("→ Corrected name: %s → %s\n", offer.Name, name)
			offer.Name = name
			offer.Brand = brand
		}
	}

	if knownKeys[offer.Key()] {
		summary.Existing++
		return
	}

	if r.opts.DryRun {
		fmt.Printf("✓ Would create: %s (%s €)\n", offer.Name, canonical.FormatPrice(offer.Price))
		summary.Created = append(summary.Created, offer.Name)
		knownKeys[offer.Key()] = true
		return
	}

	parentID, childID, imageURL, err := r.categories.Provision(offer.Brand, offer.Name, offer.ImageURL)
	if err != nil {
		log.Printf("category provisioning failed for %q: %v", offer.Name, err)
		summary.Failed++
		return
	}

	input := buildProductInput(offer, parentID, childID, imageURL)
	created, err := r.createWithRetry(input)
	if err != nil {
		log.Printf("create exhausted for %q: %v", offer.Name, err)
		summary.Failed++
		return
	}

	r.shortenEntryLink(created)

	fmt.Printf("✓ Created: %s (%s €)\n", offer.Name, canonical.FormatPrice(offer.Price))
	summary.Created = append(summary.Created, offer.Name)
	knownKeys[offer.Key()] = true
}

// createWithRetry retries transient store failures with a fixed delay
// after failed attempts only.
func (r *Reconciler) createWithRetry(input store.ProductInput) (*store.Product, error) {
	var lastErr error
	for attempt := 1; attempt <= r.opts.CreateAttempts; attempt++ {
		created, err := r.store.CreateProduct(input)
		if err == nil {
			return created, nil
		}
		lastErr = err
		if attempt < r.opts.CreateAttempts {
			log.Printf("create attempt %d/%d failed for %q: %v",
				attempt, r.opts.CreateAttempts, input.Name, err)
			time.Sleep(r.opts.CreateDelay)
		}
	}
	return nil, lastErr
}

// shortenEntryLink derives a short link to the entry's own catalog page
// and persists it. Best-effort.
func (r *Reconciler) shortenEntryLink(created *store.Product) {
	if r.shortener == nil || created.Permalink == "" {
		return
	}
	short := r.shortener.Shorten(created.Permalink)
	if short == "" {
		return
	}
	_, err := r.store.UpdateProduct(created.ID, store.ProductInput{
		MetaData: []store.Meta{{Key: models.MetaEntryShortURL, Value: short}},
	})
	if err != nil {
		log.Printf("short link persist failed for %q: %v", created.Name, err)
	}
}

// buildProductInput maps an offer onto the store's wire format,
// including the full metadata schema storefront tooling depends on.
func buildProductInput(offer *models.Offer, parentID, childID int64, imageURL string) store.ProductInput {
	input := store.ProductInput{
		Name:         offer.Name,
		Type:         "external",
		RegularPrice: canonical.FormatPrice(offer.ListPrice),
		SalePrice:    canonical.FormatPrice(offer.Price),
		ExternalURL:  offer.AffiliateURL,
		ButtonText:   buttonText,
		Categories:   []store.CategoryRef{{ID: parentID}, {ID: childID}},
		MetaData: []store.Meta{
			{Key: models.MetaProvenance, Value: models.ProvenanceValue},
			{Key: models.MetaSource, Value: offer.Source},
			{Key: models.MetaRAM, Value: offer.RAM},
			{Key: models.MetaStorage, Value: offer.Storage},
			{Key: models.MetaOrigin, Value: offer.ShippingOrigin},
			{Key: models.MetaOriginLabel, Value: models.OriginLabel(offer.ShippingOrigin)},
			{Key: models.MetaRawURL, Value: offer.RawLink},
			{Key: models.MetaExpandedURL, Value: offer.ExpandedURL},
			{Key: models.MetaCanonicalURL, Value: offer.CanonicalURL},
			{Key: models.MetaAffiliateURL, Value: offer.AffiliateURL},
			{Key: models.MetaShortURL, Value: offer.ShortURL},
			{Key: models.MetaCoupon, Value: offer.Coupon},
			{Key: models.MetaCreatedDate, Value: time.Now().Format("2006-01-02")},
		},
	}
	if imageURL != "" {
		input.Images = []store.Image{{Src: imageURL}}
	}
	return input
}

// Old-style item URLs carry a human-readable slug before the numeric id.
var slugRe = regexp.MustCompile(`/item/([A-Za-z][A-Za-z0-9]*(?:-[A-Za-z0-9]+)+)/\d+\.html`)

// slugName recovers a product name from the expanded URL's slug segment.
// Returns "" when the URL has no usable slug.
func slugName(expandedURL string) (name, brand string) {
	m := slugRe.FindStringSubmatch(expandedURL)
	if m == nil {
		return "", ""
	}
	return canonical.NormalizeName(strings.ReplaceAll(m[1], "-", " "))
}
