package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jonathan/sitemap-creator/internal/config"
	"github.com/jonathan/sitemap-creator/internal/db"
	"github.com/jonathan/sitemap-creator/internal/ingestion"
	"github.com/jonathan/sitemap-creator/internal/observability"
	"github.com/jonathan/sitemap-creator/internal/pipeline"
	"github.com/jonathan/sitemap-creator/internal/report"
	"github.com/jonathan/sitemap-creator/internal/storage"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate sitemaps and the sitemap index, then ping search engines",
	Long: `Reads the discovered pages of a site (an entries file or the crawled_pages table), scores
them, writes numbered sitemap documents plus an index, and notifies every configured search
engine of the index URL.

Configuration can be loaded from a JSON or YAML file using --config. Command-line arguments
override config file values.`,
	RunE: runGenerate,
}

var (
	generateFlags   configFlags
	generateEntries string
	generateFromDB  bool
	generateNoPing  bool
	generateReport  string
)

func init() {
	generateFlags.register(generateCmd)
	generateCmd.Flags().StringVarP(&generateEntries, "entries", "e", "", "Entries file (default <sitemap dir>/entries.csv)")
	generateCmd.Flags().BoolVar(&generateFromDB, "from-db", false, "Read pages from the database instead of an entries file")
	generateCmd.Flags().BoolVar(&generateNoPing, "no-ping", false, "Skip search engine notification")
	generateCmd.Flags().StringVar(&generateReport, "report", "", "Also write the scored entries to this .xlsx file")

	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := generateFlags.resolve(cmd)
	if err != nil {
		return err
	}

	store, dir, err := openStore(cfg)
	if err != nil {
		return err
	}

	var database *db.DB
	if cfg.DatabaseURL != "" {
		database, err = db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			if generateFromDB {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			fmt.Printf("Warning: Failed to connect to database, run history disabled: %v\n", err)
			database = nil
		} else {
			defer database.Close()
		}
	}

	source, err := recordSource(cfg, dir, database)
	if err != nil {
		return err
	}

	opts := generateOptions(cfg, source, store, database)
	opts.SkipPing = generateNoPing
	res, err := pipeline.Run(ctx, opts)
	if err != nil {
		return err
	}

	observability.NewPrinter(os.Stdout).PrintRunSummary(runSummary(cfg, dir, res))

	if generateReport != "" {
		if err := writeReport(generateReport, res, cfg.EntriesPerSitemap); err != nil {
			return err
		}
		fmt.Printf("Report written to %s\n", generateReport)
	}

	if !generateNoPing && len(res.Pings) > 0 {
		for _, e := range cfg.Engines {
			if r, ok := res.Pings[e.Name]; ok {
				fmt.Println(pipeline.FormatPingResult(e.Name, r))
			}
		}
	}
	return nil
}

// recordSource picks the database or the entries file as the page source.
func recordSource(cfg config.Config, dir string, database *db.DB) (ingestion.Source, error) {
	if generateFromDB {
		if database == nil {
			return nil, fmt.Errorf("--from-db requires DATABASE_URL or --db-url")
		}
		return &ingestion.DBSource{DB: database, Site: cfg.Site, Verbose: cfg.Verbose}, nil
	}
	path := generateEntries
	if path == "" {
		path = filepath.Join(dir, ingestion.DefaultEntriesFile)
	}
	return &ingestion.FileSource{Path: path, Verbose: cfg.Verbose}, nil
}

// generateOptions builds pipeline options; a nil database disables run history.
func generateOptions(cfg config.Config, source ingestion.Source, store storage.Store, database *db.DB) pipeline.RunOptions {
	opts := pipeline.RunOptions{
		Config:  cfg,
		Source:  source,
		Store:   store,
		Verbose: cfg.Verbose,
	}
	if database != nil {
		opts.Recorder = database
	}
	return opts
}

func runSummary(cfg config.Config, dir string, res *pipeline.RunResult) observability.RunSummary {
	s := observability.RunSummary{
		Site:     cfg.Site,
		Records:  len(res.Records),
		Batches:  res.Batches,
		Entries:  res.Entries,
		Skipped:  res.Skipped,
		IndexURL: res.IndexURL,
		Dir:      dir,
	}
	if res.RunID != uuid.Nil {
		s.RunID = res.RunID.String()
	}
	return s
}

func writeReport(path string, res *pipeline.RunResult, capacity int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}
	if err := report.WriteXLSX(f, res.Records, capacity); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
