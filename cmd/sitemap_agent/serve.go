package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jonathan/sitemap-creator/internal/db"
	"github.com/jonathan/sitemap-creator/internal/ingestion"
	"github.com/jonathan/sitemap-creator/internal/pipeline"
	"github.com/jonathan/sitemap-creator/internal/server"
)

var (
	serveFlags configFlags
	serveAddr  string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve stored sitemaps over HTTP",
	Long: `Start an HTTP server that serves the site's sitemap documents under /sitemaps/{name}.
With a database configured it also exposes the run history under /runs and accepts
POST /runs to regenerate the sitemaps from the crawled_pages table.`,
	RunE: runServe,
}

func init() {
	serveFlags.register(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Address to listen on (default :8080)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := serveFlags.resolve(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("addr") {
		cfg.ListenAddr = serveAddr
	}

	store, dir, err := openStore(cfg)
	if err != nil {
		return err
	}

	srvCfg := server.Config{
		Addr:  cfg.ListenAddr,
		Site:  cfg.Site,
		Store: store,
	}

	var source ingestion.Source = &ingestion.FileSource{Path: filepath.Join(dir, ingestion.DefaultEntriesFile), Verbose: cfg.Verbose}
	var database *db.DB
	if cfg.DatabaseURL != "" {
		database, err = db.Connect(context.Background(), cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer database.Close()
		srvCfg.History = database
		source = &ingestion.DBSource{DB: database, Site: cfg.Site, Verbose: cfg.Verbose}
	}

	srvCfg.Generate = func(ctx context.Context, onProgress pipeline.ProgressCallback) (*pipeline.RunResult, error) {
		opts := generateOptions(cfg, source, store, database)
		opts.OnProgress = onProgress
		return pipeline.Run(ctx, opts)
	}

	srv, err := server.New(srvCfg)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}
	return srv.Start()
}
