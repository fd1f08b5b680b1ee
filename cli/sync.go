// ABOUTME: The sync command: one full reconciliation pass
// ABOUTME: Wires feed, canonicalization, snapshot load and the reconciler from config
package cli

import (
	"flag"
	"fmt"
	"log"

	"github.com/harperreed/chollosync/canonical"
	"github.com/harperreed/chollosync/catalog"
	"github.com/harperreed/chollosync/config"
	"github.com/harperreed/chollosync/feed"
	"github.com/harperreed/chollosync/fetch"
	"github.com/harperreed/chollosync/models"
	"github.com/harperreed/chollosync/store"
)

// SyncCommand runs one reconciliation pass: scrape feed, canonicalize,
// load the snapshot, reconcile, report.
func SyncCommand(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("sync", flag.ExitOnError)
	dryRun := fs.Bool("dry-run", false, "Decide everything, mutate nothing")
	skipBackfill := fs.Bool("skip-backfill", false, "Skip the origin backfill pass")
	_ = fs.Parse(args)

	st := store.NewClient(cfg.StoreURL, cfg.ConsumerKey, cfg.ConsumerSecret, cfg.RequestTimeout)
	fetcher := fetch.NewFetcher(cfg.RequestTimeout)
	shortener := fetch.NewShortener(cfg.ShortenerURL, cfg.ShortenerSignature, cfg.RequestTimeout)
	images := fetch.NewImageHost(cfg.ImageHostURL, cfg.ImageHostKey, cfg.RequestTimeout)

	offers := loadOffers(cfg, fetcher, shortener)

	loader := catalog.NewLoader(st, cfg.PageSize, cfg.FeedURL, *dryRun)
	entries, err := loader.Load()
	if err != nil {
		return fmt.Errorf("failed to load catalog snapshot: %w", err)
	}
	fmt.Printf("→ Snapshot: %d owned entries, %d offers\n", len(entries), len(offers))

	provisioner := catalog.NewProvisioner(st, images, cfg.PageSize, cfg.ImageAttempts, cfg.ImageDelay)
	if err := provisioner.Load(); err != nil {
		return fmt.Errorf("failed to load categories: %w", err)
	}

	reconciler := catalog.NewReconciler(st, provisioner, shortener, catalog.Options{
		PriceTolerance:  cfg.PriceTolerance,
		CreateAttempts:  cfg.CreateAttempts,
		CreateDelay:     cfg.CreateDelay,
		DeleteGraceDays: cfg.DeleteGraceDays,
		DryRun:          *dryRun,
	})
	summary := reconciler.Reconcile(offers, entries)

	fmt.Println(catalog.RenderSummary(summary))
	log.Printf("%s", summary.String())

	if !*skipBackfill && !summary.SnapshotEmpty {
		backfiller := catalog.NewBackfiller(st, fetcher, *dryRun)
		fmt.Println(catalog.RenderBackfill(backfiller.Backfill(survivors(entries, summary))))
	}

	return nil
}

// loadOffers reads the feed and canonicalizes it. A total scrape failure
// degrades to an empty offer list, which the reconciler treats as
// no-destructive-action.
func loadOffers(cfg *config.Config, fetcher *fetch.Fetcher, shortener *fetch.Shortener) []models.Offer {
	source := feed.NewJSONFeed(cfg.FeedURL, cfg.RequestTimeout)
	raws, err := source.Offers()
	if err != nil {
		log.Printf("ALERT: feed unavailable: %v", err)
		return nil
	}

	canonicalizer := canonical.New(
		canonical.NewResolver(fetcher, cfg.FeedURL),
		shortener, cfg.AffiliateToken, cfg.MarkupFactor)
	return canonicalizer.CanonicalizeAll(raws)
}

// survivors filters out the entries deleted during the pass, so the
// backfill never touches a removed entry. Keyed by ID: names repeat
// across memory specs.
func survivors(entries []models.LocalEntry, summary *models.Summary) []models.LocalEntry {
	deleted := make(map[int64]bool, len(summary.DeletedIDs))
	for _, id := range summary.DeletedIDs {
		deleted[id] = true
	}

	var rest []models.LocalEntry
	for i := range entries {
		if !deleted[entries[i].ID] {
			rest = append(rest, entries[i])
		}
	}
	return rest
}
