// Package main provides the sitemap_agent command line: generate sitemaps from discovered
// pages, notify search engines, and serve the results.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "sitemap_agent",
	Short: "Sitemap generator and search engine notifier",
	Long: `sitemap_agent turns an ordered list of discovered pages into sitemap documents and a
sitemap index, then pings search engines with the index location.`,
	SilenceUsage: true,
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
