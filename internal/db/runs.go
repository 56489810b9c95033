package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// CreateRun creates a new sitemap run record and returns its ID
func (db *DB) CreateRun(ctx context.Context, site string) (uuid.UUID, error) {
	var id uuid.UUID
	err := db.pool.QueryRow(ctx,
		`INSERT INTO sitemap_runs (site, status)
		 VALUES ($1, $2)
		 RETURNING id`,
		site, RunStatusRunning,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create run: %w", err)
	}
	return id, nil
}

// CompleteRun records the final state of a run
func (db *DB) CompleteRun(ctx context.Context, runID uuid.UUID, c RunCompletion) error {
	tag, err := db.pool.Exec(ctx,
		`UPDATE sitemap_runs
		 SET status = $1, batches = $2, entries = $3, index_url = $4, error = $5, completed_at = NOW()
		 WHERE id = $6`,
		c.Status, c.Batches, c.Entries, c.IndexURL, c.Error, runID,
	)
	if err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("run not found: %s", runID)
	}
	return nil
}

// GetRun retrieves a run by ID
func (db *DB) GetRun(ctx context.Context, runID uuid.UUID) (*Run, error) {
	var run Run
	err := db.pool.QueryRow(ctx,
		`SELECT id, site, status, batches, entries, index_url, error, created_at, completed_at
		 FROM sitemap_runs WHERE id = $1`,
		runID,
	).Scan(&run.ID, &run.Site, &run.Status, &run.Batches, &run.Entries, &run.IndexURL, &run.Error, &run.CreatedAt, &run.CompletedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return &run, nil
}

// ListRuns retrieves the most recent runs for site
func (db *DB) ListRuns(ctx context.Context, site string, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.pool.Query(ctx,
		`SELECT id, site, status, batches, entries, index_url, error, created_at, completed_at
		 FROM sitemap_runs WHERE site = $1 ORDER BY created_at DESC LIMIT $2`,
		site, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		if err := rows.Scan(&run.ID, &run.Site, &run.Status, &run.Batches, &run.Entries, &run.IndexURL, &run.Error, &run.CreatedAt, &run.CompletedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// SavePingResult stores the outcome of pinging one engine. A second result for the same
// engine in the same run replaces the first.
func (db *DB) SavePingResult(ctx context.Context, runID uuid.UUID, p PingRecord) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO ping_results (run_id, engine, request_url, status_code, error_kind, error_message, summary, redirects, duration_ms)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (run_id, engine) DO UPDATE SET
		     request_url = $3, status_code = $4, error_kind = $5, error_message = $6,
		     summary = $7, redirects = $8, duration_ms = $9, created_at = NOW()`,
		runID, p.Engine, p.RequestURL, p.StatusCode, p.ErrorKind, p.ErrorMessage, p.Summary, p.Redirects, p.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("failed to save ping result for %s: %w", p.Engine, err)
	}
	return nil
}

// ListPingResults returns the ping outcomes of a run ordered by engine name
func (db *DB) ListPingResults(ctx context.Context, runID uuid.UUID) ([]PingRecord, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, run_id, engine, request_url, status_code, error_kind, error_message, summary, redirects, duration_ms, created_at
		 FROM ping_results WHERE run_id = $1 ORDER BY engine`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list ping results: %w", err)
	}
	defer rows.Close()

	var out []PingRecord
	for rows.Next() {
		var p PingRecord
		var durationMS int64
		if err := rows.Scan(&p.ID, &p.RunID, &p.Engine, &p.RequestURL, &p.StatusCode, &p.ErrorKind, &p.ErrorMessage, &p.Summary, &p.Redirects, &durationMS, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan ping result: %w", err)
		}
		p.Duration = time.Duration(durationMS) * time.Millisecond
		out = append(out, p)
	}
	return out, rows.Err()
}
