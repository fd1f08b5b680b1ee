// ABOUTME: The backfill command: fill-only pass over existing entries
// ABOUTME: Infers missing shipping origins without reconciling prices
package cli

import (
	"flag"
	"fmt"

	"github.com/harperreed/chollosync/catalog"
	"github.com/harperreed/chollosync/config"
	"github.com/harperreed/chollosync/fetch"
	"github.com/harperreed/chollosync/store"
)

// BackfillCommand runs the standalone fill-only pass.
func BackfillCommand(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("backfill", flag.ExitOnError)
	dryRun := fs.Bool("dry-run", false, "Decide everything, mutate nothing")
	_ = fs.Parse(args)

	st := store.NewClient(cfg.StoreURL, cfg.ConsumerKey, cfg.ConsumerSecret, cfg.RequestTimeout)

	entries, err := catalog.NewLoader(st, cfg.PageSize, cfg.FeedURL, *dryRun).Load()
	if err != nil {
		return fmt.Errorf("failed to load catalog snapshot: %w", err)
	}
	fmt.Printf("→ Snapshot: %d owned entries\n", len(entries))

	backfiller := catalog.NewBackfiller(st, fetch.NewFetcher(cfg.RequestTimeout), *dryRun)
	fmt.Println(catalog.RenderBackfill(backfiller.Backfill(entries)))

	return nil
}
