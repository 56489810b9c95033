package ingestion

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/jonathan/sitemap-creator/internal/types"
)

// Source yields the ordered page records of one run. Order is discovery order: the first
// record is the site root.
type Source interface {
	Records(ctx context.Context) ([]types.PageRecord, error)
}

// FileSource reads records from an entries file.
type FileSource struct {
	Path    string
	Verbose bool
}

// Records implements Source.
func (s *FileSource) Records(_ context.Context) ([]types.PageRecord, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open entries file: %w", err)
	}
	defer func() { _ = f.Close() }()

	records, err := ReadTSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.Path, err)
	}
	if s.Verbose {
		log.Printf("[VERBOSE] Read %d entries from %s", len(records), s.Path)
	}
	return records, nil
}

// PageLister lists the crawled pages of a site in discovery order.
type PageLister interface {
	ListPageRecords(ctx context.Context, site string) ([]types.PageRecord, error)
}

// DBSource reads records for one site from a PageLister such as *db.DB.
type DBSource struct {
	DB      PageLister
	Site    string
	Verbose bool
}

// Records implements Source.
func (s *DBSource) Records(ctx context.Context) ([]types.PageRecord, error) {
	records, err := s.DB.ListPageRecords(ctx, s.Site)
	if err != nil {
		return nil, fmt.Errorf("failed to list pages for %s: %w", s.Site, err)
	}
	if s.Verbose {
		log.Printf("[VERBOSE] Loaded %d crawled pages for %s", len(records), s.Site)
	}
	return records, nil
}

// SliceSource serves a fixed record slice.
type SliceSource []types.PageRecord

// Records implements Source.
func (s SliceSource) Records(_ context.Context) ([]types.PageRecord, error) {
	out := make([]types.PageRecord, len(s))
	for i, rec := range s {
		out[i] = rec.Clone()
	}
	return out, nil
}
