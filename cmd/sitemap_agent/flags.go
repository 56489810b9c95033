package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/sitemap-creator/internal/config"
	"github.com/jonathan/sitemap-creator/internal/storage"
)

// configFlags are the configuration overrides shared by every command.
type configFlags struct {
	path              string
	site              string
	sitemapURL        string
	dataDir           string
	priorityMode      string
	minPriority       float64
	frequencyMode     string
	minFrequency      string
	entriesPerSitemap int
	gzip              bool
	maxRedirects      int
	pingTimeout       int
	dbURL             string
	verbose           bool
}

func (f *configFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.path, "config", "", "Path to a JSON or YAML config file (values can be overridden by other flags)")
	fs.StringVarP(&f.site, "site", "s", "", "Site root URL")
	fs.StringVar(&f.sitemapURL, "sitemap-url", "", "Public URL prefix of generated documents (default derived from --site)")
	fs.StringVar(&f.dataDir, "data-dir", "", "Parent directory of per-site sitemap directories (defaults to SITEMAP_DATA_DIR)")
	fs.StringVar(&f.priorityMode, "priority-mode", "", "Priority mode: disabled, crawled_first, url_structure")
	fs.Float64Var(&f.minPriority, "min-priority", 0, "Lowest priority assigned to any page")
	fs.StringVar(&f.frequencyMode, "frequency-mode", "", "Change frequency mode: disabled, last_modified, priority")
	fs.StringVar(&f.minFrequency, "min-frequency", "", "Least frequent change frequency assigned to any page")
	fs.IntVar(&f.entriesPerSitemap, "entries-per-sitemap", 0, "Maximum entries per sitemap document")
	fs.BoolVar(&f.gzip, "gzip", false, "Store documents gzip-compressed")
	fs.IntVar(&f.maxRedirects, "max-redirects", 0, "Redirects followed per ping")
	fs.IntVar(&f.pingTimeout, "ping-timeout", 0, "Per-request ping timeout in seconds")
	fs.StringVar(&f.dbURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "Print detailed debug information")
}

// resolve loads the config file, applies flags that were set, fills defaults and validates.
func (f *configFlags) resolve(cmd *cobra.Command) (config.Config, error) {
	var cfg config.Config
	if f.path != "" {
		loaded, err := config.LoadConfig(f.path)
		if err != nil {
			return cfg, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = *loaded
		if f.verbose {
			fmt.Printf("Loaded config from: %s\n", f.path)
		}
	}

	changed := cmd.Flags().Changed
	if changed("site") {
		cfg.Site = f.site
	}
	if changed("sitemap-url") {
		cfg.SitemapURL = f.sitemapURL
	}
	if changed("data-dir") {
		cfg.DataDir = f.dataDir
	}
	if changed("priority-mode") {
		cfg.PriorityMode = f.priorityMode
	}
	if changed("min-priority") {
		cfg.MinPriority = f.minPriority
	}
	if changed("frequency-mode") {
		cfg.FrequencyMode = f.frequencyMode
	}
	if changed("min-frequency") {
		cfg.MinFrequency = f.minFrequency
	}
	if changed("entries-per-sitemap") {
		cfg.EntriesPerSitemap = f.entriesPerSitemap
	}
	if changed("gzip") {
		cfg.UseGzip = f.gzip
	}
	if changed("max-redirects") {
		cfg.MaxRedirects = f.maxRedirects
	}
	if changed("ping-timeout") {
		cfg.PingTimeoutSeconds = f.pingTimeout
	}
	if changed("db-url") {
		cfg.DatabaseURL = f.dbURL
	}
	if changed("verbose") {
		cfg.Verbose = f.verbose
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DataDir == "" {
		cfg.DataDir = os.Getenv("SITEMAP_DATA_DIR")
	}

	cfg = cfg.MergeWithDefaults(config.Default())
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// documentStore is a store whose documents can also be listed and removed.
type documentStore interface {
	storage.Store
	storage.Remover
}

// openStore opens the site's sitemap directory, compressing documents when configured.
func openStore(cfg config.Config) (documentStore, string, error) {
	dir, err := cfg.SitemapsDir()
	if err != nil {
		return nil, "", err
	}
	fs, err := storage.NewFileStore(dir, cfg.FileExt())
	if err != nil {
		return nil, "", err
	}
	if cfg.UseGzip {
		return storage.NewGzipStore(fs), dir, nil
	}
	return fs, dir, nil
}
