package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jonathan/sitemap-creator/internal/types"
)

// ListPageRecords returns the crawled pages of site in discovery order.
func (db *DB) ListPageRecords(ctx context.Context, site string) ([]types.PageRecord, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT url, last_modified, priority, COALESCE(change_frequency, '')
		 FROM crawled_pages WHERE site = $1 ORDER BY position`,
		site,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list crawled pages: %w", err)
	}
	defer rows.Close()

	var records []types.PageRecord
	for rows.Next() {
		var rec types.PageRecord
		var lastModified *time.Time
		var freq string
		if err := rows.Scan(&rec.URL, &lastModified, &rec.Priority, &freq); err != nil {
			return nil, fmt.Errorf("failed to scan crawled page: %w", err)
		}
		if lastModified != nil {
			t := lastModified.UTC()
			rec.LastModified = &t
		}
		rec.ChangeFrequency = types.ChangeFrequency(freq)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate crawled pages: %w", err)
	}
	return records, nil
}

// ReplacePageRecords stores records as the complete page list of site, replacing any
// previous list. Positions follow slice order.
func (db *DB) ReplacePageRecords(ctx context.Context, site string, records []types.PageRecord) (int64, error) {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM crawled_pages WHERE site = $1`, site); err != nil {
		return 0, fmt.Errorf("failed to clear crawled pages: %w", err)
	}

	n, err := tx.CopyFrom(ctx,
		pgx.Identifier{"crawled_pages"},
		[]string{"site", "position", "url", "last_modified", "priority", "change_frequency"},
		pgx.CopyFromSlice(len(records), func(i int) ([]any, error) {
			rec := records[i]
			var freq *string
			if rec.ChangeFrequency.IsSet() {
				s := rec.ChangeFrequency.String()
				freq = &s
			}
			return []any{site, i, rec.URL, rec.LastModified, rec.Priority, freq}, nil
		}),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to copy crawled pages: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit crawled pages: %w", err)
	}
	return n, nil
}

// CountPages returns the number of stored pages for site.
func (db *DB) CountPages(ctx context.Context, site string) (int, error) {
	var n int
	err := db.pool.QueryRow(ctx, `SELECT COUNT(*) FROM crawled_pages WHERE site = $1`, site).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count crawled pages: %w", err)
	}
	return n, nil
}
