// ABOUTME: The report command: read-only breakdown of owned entries
// ABOUTME: Prints per-source and per-origin counts without reconciling
package cli

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/harperreed/chollosync/catalog"
	"github.com/harperreed/chollosync/config"
	"github.com/harperreed/chollosync/models"
	"github.com/harperreed/chollosync/store"
)

// ReportCommand prints the current owned-catalog breakdown.
func ReportCommand(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("report", flag.ExitOnError)
	verbose := fs.Bool("verbose", false, "List every entry")
	_ = fs.Parse(args)

	st := store.NewClient(cfg.StoreURL, cfg.ConsumerKey, cfg.ConsumerSecret, cfg.RequestTimeout)

	// The report never writes, so the loader runs read-only.
	entries, err := catalog.NewLoader(st, cfg.PageSize, cfg.FeedURL, true).Load()
	if err != nil {
		return fmt.Errorf("failed to load catalog snapshot: %w", err)
	}

	fmt.Printf("Owned entries: %d\n\n", len(entries))

	bySource := map[string]int{}
	byOrigin := map[string]int{}
	for i := range entries {
		bySource[entries[i].Source]++
		byOrigin[entries[i].ShippingOrigin]++
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SOURCE\tCOUNT")
	for _, source := range sortedKeys(bySource) {
		fmt.Fprintf(w, "%s\t%d\n", source, bySource[source])
	}
	fmt.Fprintln(w, "\nORIGIN\tCOUNT")
	for _, origin := range sortedKeys(byOrigin) {
		fmt.Fprintf(w, "%s (%s)\t%d\n", origin, models.OriginLabel(origin), byOrigin[origin])
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if *verbose {
		fmt.Println()
		vw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(vw, "ID\tNAME\tSOURCE\tPRICE")
		for i := range entries {
			e := &entries[i]
			fmt.Fprintf(vw, "%d\t%s\t%s\t%.2f\n", e.ID, e.Name, e.Source, e.Price)
		}
		if err := vw.Flush(); err != nil {
			return err
		}
	}

	return nil
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
