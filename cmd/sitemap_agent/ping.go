package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/sitemap-creator/internal/observability"
	"github.com/jonathan/sitemap-creator/internal/ping"
	"github.com/jonathan/sitemap-creator/internal/pipeline"
)

var pingCmd = &cobra.Command{
	Use:   "ping [sitemap-index-url]",
	Short: "Notify search engines of a sitemap index",
	Long: `Sends one GET request per configured search engine with the sitemap index URL appended
to the engine's ping URL. Without an argument the index URL is derived from the site
configuration.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPing,
}

var pingFlags configFlags

func init() {
	pingFlags.register(pingCmd)
	rootCmd.AddCommand(pingCmd)
}

func runPing(cmd *cobra.Command, args []string) error {
	cfg, err := pingFlags.resolve(cmd)
	if err != nil {
		return err
	}

	target := ""
	if len(args) == 1 {
		target = args[0]
	} else {
		target, err = cfg.SitemapURLFor("index")
		if err != nil {
			return fmt.Errorf("no sitemap URL given and none derivable from config: %w", err)
		}
	}
	if len(cfg.Engines) == 0 {
		return fmt.Errorf("no search engines configured")
	}

	fmt.Printf("Pinging %d search engine(s) with %s...\n", len(cfg.Engines), target)
	client := ping.NewClient(&ping.Options{UserAgent: ping.DefaultUserAgent, Verbose: cfg.Verbose})
	results := pipeline.PingAll(context.Background(), client, cfg.Engines, target, pipeline.PingSettings{
		MaxRedirects: cfg.MaxRedirects,
		Timeout:      cfg.PingTimeout(),
		PhaseTimeout: cfg.PingPhaseTimeout(),
	})

	names := make([]string, len(cfg.Engines))
	for i, e := range cfg.Engines {
		names[i] = e.Name
	}
	observability.NewPrinter(os.Stdout).PrintPingResults(names, results)

	failed := 0
	for _, r := range results {
		if !r.OK() {
			failed++
		}
	}
	if failed == len(results) {
		return fmt.Errorf("all %d pings failed", failed)
	}
	return nil
}
