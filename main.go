// ABOUTME: Entry point for the chollosync catalog reconciliation engine
// ABOUTME: Routes to sync, backfill and report commands based on arguments
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/harperreed/chollosync/cli"
	"github.com/harperreed/chollosync/config"
)

const version = "0.2.1"

func main() {
	// Global flags
	showVersion := flag.Bool("version", false, "Show version and exit")
	envPath := flag.String("env", "", "Path to .env file (default: ~/.config/chollosync/.env)")

	// Parsing stops at the first non-flag argument, so the subcommand
	// and its flags remain in flag.Args(). ExitOnError handles failures.
	flag.CommandLine.Parse(os.Args[1:])

	if *showVersion {
		fmt.Printf("chollosync version %s\n", version)
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(0)
	}

	cfg, err := config.Load(*envPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Configuration invalid: %v", err)
	}

	command := args[0]
	commandArgs := args[1:]

	switch command {
	case "sync":
		if err := cli.SyncCommand(cfg, commandArgs); err != nil {
			log.Fatalf("Sync failed: %v", err)
		}

	case "backfill":
		if err := cli.BackfillCommand(cfg, commandArgs); err != nil {
			log.Fatalf("Backfill failed: %v", err)
		}

	case "report":
		if err := cli.ReportCommand(cfg, commandArgs); err != nil {
			log.Fatalf("Report failed: %v", err)
		}

	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Printf(`chollosync v%s - Catalog reconciliation engine

USAGE:
  chollosync [global flags] <command> [flags]

GLOBAL FLAGS:
  --version              Show version and exit
  --env <path>           Path to .env file (default: ~/.config/chollosync/.env)

COMMANDS:
  sync                   Run one full reconciliation pass
    --dry-run              Decide everything, mutate nothing
    --skip-backfill        Skip the origin backfill after reconciling

  backfill               Fill missing shipping origins on existing entries
    --dry-run              Decide everything, mutate nothing

  report                 Print the owned-catalog breakdown
    --verbose              List every entry

CONFIGURATION (env or .env file):
  STORE_URL              Remote store base URL (required)
  STORE_CONSUMER_KEY     Store API consumer key (required)
  STORE_CONSUMER_SECRET  Store API consumer secret (required)
  FEED_URL               Offer feed URL or file path (required)
  AFFILIATE_TOKEN        Tracking token inserted into purchase URLs
  SHORTENER_URL          YOURLS-style shortener endpoint (optional)
  SHORTENER_SIGNATURE    Shortener API signature (optional)
  IMAGE_HOST_URL         Image re-hosting endpoint (optional)
  IMAGE_HOST_KEY         Image host API key (optional)
  DELETE_GRACE_DAYS      Protect entries younger than N days (default: 0)
  MARKUP_FACTOR          List-price markup without strikethrough (default: 1.20)

EXAMPLES:
  # Run a pass against the configured store
  chollosync sync

  # See what a pass would do without touching the store
  chollosync sync --dry-run

  # Fill missing shipping origins only
  chollosync backfill

`, version)
}
