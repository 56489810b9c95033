package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/sitemap-creator/internal/db"
	"github.com/jonathan/sitemap-creator/internal/ingestion"
	"github.com/jonathan/sitemap-creator/internal/report"
)

var (
	exportFlags configFlags
	exportOut   string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a site's crawled pages from the database",
	Long: `Writes the crawled_pages of a site as an entries file (tab-separated) or, when --out ends
in .xlsx, as a spreadsheet. Without --out the entries file is written to stdout.`,
	RunE: runExport,
}

var (
	importFlags configFlags
	importIn    string
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Replace a site's crawled pages in the database with an entries file",
	RunE:  runImport,
}

var migrateFlags configFlags

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the database tables",
	RunE:  runMigrate,
}

func init() {
	exportFlags.register(exportCmd)
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Output file (.tsv, .csv or .xlsx); stdout when empty")
	rootCmd.AddCommand(exportCmd)

	importFlags.register(importCmd)
	importCmd.Flags().StringVarP(&importIn, "in", "i", "", "Entries file (default <sitemap dir>/entries.csv)")
	rootCmd.AddCommand(importCmd)

	migrateFlags.register(migrateCmd)
	rootCmd.AddCommand(migrateCmd)
}

// connect opens the configured database; the caller closes it.
func connect(ctx context.Context, databaseURL string) (*db.DB, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable or --db-url flag is required")
	}
	database, err := db.Connect(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return database, nil
}

func runExport(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()
	cfg, err := exportFlags.resolve(cmd)
	if err != nil {
		return err
	}
	if cfg.Site == "" {
		return fmt.Errorf("--site is required (via flag or config)")
	}

	database, err := connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer database.Close()

	records, err := database.ListPageRecords(ctx, cfg.Site)
	if err != nil {
		return err
	}

	var out io.Writer = os.Stdout
	if exportOut != "" {
		f, err := os.Create(exportOut)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", exportOut, err)
		}
		defer func() { _ = f.Close() }()
		out = f
	}

	if strings.EqualFold(filepath.Ext(exportOut), ".xlsx") {
		err = report.WriteXLSX(out, records, cfg.EntriesPerSitemap)
	} else {
		err = ingestion.WriteTSV(out, records)
	}
	if err != nil {
		return err
	}
	if exportOut != "" {
		fmt.Printf("Exported %d page(s) to %s\n", len(records), exportOut)
	}
	return nil
}

func runImport(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()
	cfg, err := importFlags.resolve(cmd)
	if err != nil {
		return err
	}
	if cfg.Site == "" {
		return fmt.Errorf("--site is required (via flag or config)")
	}

	path := importIn
	if path == "" {
		dir, err := cfg.SitemapsDir()
		if err != nil {
			return err
		}
		path = filepath.Join(dir, ingestion.DefaultEntriesFile)
	}
	records, err := (&ingestion.FileSource{Path: path, Verbose: cfg.Verbose}).Records(ctx)
	if err != nil {
		return err
	}

	database, err := connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer database.Close()

	n, err := database.ReplacePageRecords(ctx, cfg.Site, records)
	if err != nil {
		return err
	}
	fmt.Printf("Imported %d page(s) for %s\n", n, cfg.Site)
	return nil
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()
	cfg, err := migrateFlags.resolve(cmd)
	if err != nil {
		return err
	}

	database, err := connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := database.Migrate(ctx); err != nil {
		return err
	}
	fmt.Println("Database schema is up to date")
	return nil
}
