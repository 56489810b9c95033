// Package pipeline provides the high-level orchestration of a sitemap run: load records,
// score them, write batches and the index, then notify search engines.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/sitemap-creator/internal/config"
	"github.com/jonathan/sitemap-creator/internal/db"
	"github.com/jonathan/sitemap-creator/internal/ingestion"
	"github.com/jonathan/sitemap-creator/internal/observability"
	"github.com/jonathan/sitemap-creator/internal/ping"
	"github.com/jonathan/sitemap-creator/internal/scoring"
	"github.com/jonathan/sitemap-creator/internal/sitemap"
	"github.com/jonathan/sitemap-creator/internal/storage"
	"github.com/jonathan/sitemap-creator/internal/types"
)

// ErrInvalidInput is returned when the record sequence cannot produce a sitemap.
var ErrInvalidInput = errors.New("invalid input")

// Progress steps
const (
	StepLoad    = "load_records"
	StepScore   = "score_records"
	StepBatches = "write_batches"
	StepIndex   = "write_index"
	StepPing    = "ping_engines"
)

// Progress categories
const (
	CategoryIngestion = "ingestion"
	CategoryAssembly  = "assembly"
	CategoryNotify    = "notify"
)

// ProgressEvent represents a progress update during pipeline execution
type ProgressEvent struct {
	Step     string `json:"step"`
	Category string `json:"category"`
	Message  string `json:"message"`
	RunID    string `json:"run_id,omitempty"`
	Content  any    `json:"content,omitempty"`
}

// ProgressCallback is called when pipeline progress occurs
type ProgressCallback func(event ProgressEvent)

// Recorder persists run history. *db.DB satisfies it.
type Recorder interface {
	CreateRun(ctx context.Context, site string) (uuid.UUID, error)
	CompleteRun(ctx context.Context, runID uuid.UUID, c db.RunCompletion) error
	SavePingResult(ctx context.Context, runID uuid.UUID, p db.PingRecord) error
}

// RunOptions holds configuration for running the pipeline
type RunOptions struct {
	Config     config.Config
	Source     ingestion.Source
	Store      storage.Store
	Now        time.Time // generation time; zero means time.Now()
	Pinger     Pinger    // nil uses a default ping.Client
	Recorder   Recorder  // optional
	SkipPing   bool
	Verbose    bool
	OnProgress ProgressCallback
}

// RunResult summarizes a completed run.
type RunResult struct {
	RunID    uuid.UUID
	Records  []types.PageRecord // scored records, in input order
	Batches  int
	Entries  int
	Skipped  int
	IndexURL string
	Pings    map[string]ping.Result
}

// emitProgress sends a progress event if a callback is registered
func emitProgress(opts *RunOptions, runID uuid.UUID, step, category, message string, content any) {
	if opts.OnProgress == nil {
		return
	}
	event := ProgressEvent{
		Step:     step,
		Category: category,
		Message:  message,
		Content:  content,
	}
	if runID != uuid.Nil {
		event.RunID = runID.String()
	}
	opts.OnProgress(event)
}

// Run executes one sitemap run. Batches already stored stay in place when a later step
// fails; the index is written only after every batch succeeded.
func Run(ctx context.Context, opts RunOptions) (*RunResult, error) {
	if opts.Source == nil {
		return nil, fmt.Errorf("%w: no record source", ErrInvalidInput)
	}
	if opts.Store == nil {
		return nil, fmt.Errorf("%w: no sitemap store", ErrInvalidInput)
	}

	cfg := opts.Config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	scoringOpts, err := cfg.ScoringOptions()
	if err != nil {
		return nil, err
	}
	prefix, err := cfg.ResolvedSitemapURL()
	if err != nil {
		return nil, err
	}
	capacity := cfg.EntriesPerSitemap
	if capacity == 0 {
		capacity = config.DefaultEntriesPerSitemap
	}
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	result := &RunResult{}
	if opts.Recorder != nil {
		runID, err := opts.Recorder.CreateRun(ctx, cfg.Site)
		if err != nil {
			fmt.Printf("Warning: Failed to create database run: %v\n", err)
		} else {
			result.RunID = runID
			if opts.Verbose {
				log.Printf("[VERBOSE] Created database run: %s", runID)
			}
		}
	}

	if err := assemble(ctx, &opts, cfg, scoringOpts, prefix, capacity, now, result); err != nil {
		completeRun(ctx, &opts, result, err)
		return result, err
	}

	if opts.SkipPing || len(cfg.Engines) == 0 {
		fmt.Printf("Step 5/5: Skipping search engine notification\n")
	} else {
		fmt.Printf("Step 5/5: Notifying %d search engine(s)...\n", len(cfg.Engines))
		pinger := opts.Pinger
		if pinger == nil {
			pinger = ping.NewClient(&ping.Options{UserAgent: ping.DefaultUserAgent, Verbose: opts.Verbose})
		}
		result.Pings = PingAll(ctx, pinger, cfg.Engines, result.IndexURL, PingSettings{
			MaxRedirects: cfg.MaxRedirects,
			Timeout:      cfg.PingTimeout(),
			PhaseTimeout: cfg.PingPhaseTimeout(),
		})
		recordPings(ctx, &opts, result, cfg.Engines)
		if opts.Verbose {
			names := make([]string, len(cfg.Engines))
			for i, e := range cfg.Engines {
				names[i] = e.Name
			}
			observability.NewPrinter(os.Stdout).PrintPingResults(names, result.Pings)
		}
		emitProgress(&opts, result.RunID, StepPing, CategoryNotify,
			fmt.Sprintf("Pinged %d engine(s), %d succeeded", len(result.Pings), countOK(result.Pings)), result.Pings)
	}

	completeRun(ctx, &opts, result, nil)
	return result, nil
}

func assemble(ctx context.Context, opts *RunOptions, cfg config.Config, scoringOpts scoring.Options,
	prefix string, capacity int, now time.Time, result *RunResult) error {
	fmt.Printf("Step 1/5: Loading page records...\n")
	records, err := opts.Source.Records(ctx)
	if err != nil {
		return fmt.Errorf("loading page records failed: %w", err)
	}
	if len(records) == 0 {
		return fmt.Errorf("%w: no page records", ErrInvalidInput)
	}
	if records[0].URL == "" {
		return fmt.Errorf("%w: first page record has no URL", ErrInvalidInput)
	}
	emitProgress(opts, result.RunID, StepLoad, CategoryIngestion,
		fmt.Sprintf("Loaded %d page records", len(records)), nil)

	fmt.Printf("Step 2/5: Scoring %d records...\n", len(records))
	policy := scoring.New(scoringOpts, now)
	scored := make([]types.PageRecord, len(records))
	for i := range records {
		if records[i].URL == "" {
			scored[i] = records[i].Clone()
			continue
		}
		rec, err := policy.Score(records, i, len(records))
		if errors.Is(err, scoring.ErrInvalidRecord) {
			if opts.Verbose {
				log.Printf("[VERBOSE] Record %d left unscored: %v", i, err)
			}
			rec = records[i].Clone()
		} else if err != nil {
			return fmt.Errorf("scoring record %d failed: %w", i, err)
		}
		scored[i] = rec
	}
	result.Records = scored
	if opts.Verbose {
		observability.NewPrinter(os.Stdout).PrintScoredRecords(scored)
	}
	emitProgress(opts, result.RunID, StepScore, CategoryAssembly,
		fmt.Sprintf("Scored %d records", len(scored)), nil)

	if err := ctx.Err(); err != nil {
		return err
	}

	fmt.Printf("Step 3/5: Writing sitemap batches of up to %d entries...\n", capacity)
	w, err := sitemap.NewWriter(opts.Store, capacity)
	if err != nil {
		return err
	}
	for _, rec := range scored {
		if err := w.Append(rec); err != nil {
			result.Batches = w.Produced()
			return fmt.Errorf("writing sitemap %s failed: %w", sitemap.BatchName(w.Produced()+1), err)
		}
	}
	if err := w.Flush(); err != nil {
		result.Batches = w.Produced()
		return fmt.Errorf("writing sitemap %s failed: %w", sitemap.BatchName(w.Produced()+1), err)
	}
	result.Batches = w.Produced()
	result.Entries = w.Written()
	result.Skipped = w.Skipped()
	if opts.Verbose {
		log.Printf("[VERBOSE] Wrote %d batches (%d entries, %d skipped)", result.Batches, result.Entries, result.Skipped)
	}
	emitProgress(opts, result.RunID, StepBatches, CategoryAssembly,
		fmt.Sprintf("Wrote %d sitemap(s) with %d entries", result.Batches, result.Entries), nil)

	fmt.Printf("Step 4/5: Writing sitemap index...\n")
	ext := cfg.FileExt()
	resolve := func(seq int) string {
		return prefix + sitemap.BatchName(seq) + ext
	}
	if err := w.WriteIndex(resolve, now); err != nil {
		return fmt.Errorf("writing sitemap index failed: %w", err)
	}
	result.IndexURL = prefix + sitemap.IndexName + ext
	emitProgress(opts, result.RunID, StepIndex, CategoryAssembly,
		fmt.Sprintf("Wrote index %s", result.IndexURL), result.IndexURL)
	return nil
}

func completeRun(ctx context.Context, opts *RunOptions, result *RunResult, runErr error) {
	if opts.Recorder == nil || result.RunID == uuid.Nil {
		return
	}
	c := db.RunCompletion{
		Status:   db.RunStatusCompleted,
		Batches:  result.Batches,
		Entries:  result.Entries,
		IndexURL: result.IndexURL,
	}
	if runErr != nil {
		c.Status = db.RunStatusFailed
		c.Error = runErr.Error()
	}
	if err := opts.Recorder.CompleteRun(ctx, result.RunID, c); err != nil {
		fmt.Printf("Warning: Failed to complete database run: %v\n", err)
	}
}

func recordPings(ctx context.Context, opts *RunOptions, result *RunResult, engines []config.Engine) {
	if opts.Recorder == nil || result.RunID == uuid.Nil {
		return
	}
	for _, e := range engines {
		res, ok := result.Pings[e.Name]
		if !ok {
			continue
		}
		rec := PingRecordFor(e, result.IndexURL, res)
		if err := opts.Recorder.SavePingResult(ctx, result.RunID, rec); err != nil {
			fmt.Printf("Warning: Failed to save ping result for %s: %v\n", e.Name, err)
		}
	}
}

// PingRecordFor converts a ping result into its stored form.
func PingRecordFor(e config.Engine, target string, res ping.Result) db.PingRecord {
	rec := db.PingRecord{
		Engine:     e.Name,
		RequestURL: ping.RequestURL(e.URL, target),
		StatusCode: res.StatusCode,
		Summary:    res.Summary,
		Redirects:  res.Redirects,
		Duration:   res.Duration,
	}
	if res.Err != nil {
		rec.ErrorMessage = res.Err.Error()
		rec.ErrorKind = "error"
		var pe *ping.Error
		if errors.As(res.Err, &pe) {
			rec.ErrorKind = pe.Kind.Error()
		}
	}
	return rec
}

func countOK(results map[string]ping.Result) int {
	n := 0
	for _, r := range results {
		if r.OK() {
			n++
		}
	}
	return n
}
