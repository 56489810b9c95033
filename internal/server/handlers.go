package server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/jonathan/sitemap-creator/internal/db"
	"github.com/jonathan/sitemap-creator/internal/pipeline"
	"github.com/jonathan/sitemap-creator/internal/sitemap"
	"github.com/jonathan/sitemap-creator/internal/storage"
)

// maxRunsLimit caps the limit query parameter of GET /runs.
const maxRunsLimit = 500

// documentName maps a requested file name such as "3.xml" or "index.xml.gz" to the
// stored document name.
func documentName(file string) (string, bool) {
	name := strings.TrimSuffix(file, storage.GzipExt)
	if name == file {
		name = strings.TrimSuffix(file, storage.DefaultExt)
	}
	return name, sitemap.ValidName(name)
}

// handleSitemap serves one stored document as XML.
func (s *Server) handleSitemap(w http.ResponseWriter, r *http.Request) {
	name, ok := documentName(r.PathValue("name"))
	if !ok {
		s.errorResponse(w, http.StatusNotFound, "sitemap not found")
		return
	}

	data, err := s.store.Read(name)
	if err != nil {
		status := HTTPStatus(err)
		if status == http.StatusInternalServerError {
			log.Printf("[server] Failed to read sitemap %s: %v", name, err)
			s.errorResponse(w, status, "failed to read sitemap")
			return
		}
		s.errorResponse(w, status, "sitemap not found")
		return
	}

	w.Header().Set("Content-Type", "text/xml; charset=utf-8")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	if r.Method != http.MethodHead {
		_, _ = w.Write(data)
	}
}

// RunDetail is a run with its ping outcomes.
type RunDetail struct {
	db.Run
	Pings []db.PingRecord `json:"pings"`
}

// handleListRuns returns the most recent runs for the configured site.
func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		s.errorResponse(w, HTTPStatus(ErrNotConfigured), "run history requires a database")
		return
	}

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxRunsLimit {
			s.errorResponse(w, http.StatusBadRequest, "limit must be between 1 and 500")
			return
		}
		limit = n
	}
	site := r.URL.Query().Get("site")
	if site == "" {
		site = s.site
	}

	runs, err := s.history.ListRuns(r.Context(), site, limit)
	if err != nil {
		log.Printf("[server] Failed to list runs: %v", err)
		s.errorResponse(w, http.StatusInternalServerError, "failed to list runs")
		return
	}
	if runs == nil {
		runs = []db.Run{}
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"runs": runs, "count": len(runs)})
}

// handleGetRun returns one run with its ping results.
func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		s.errorResponse(w, HTTPStatus(ErrNotConfigured), "run history requires a database")
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid run ID")
		return
	}

	run, err := s.history.GetRun(r.Context(), id)
	if err != nil {
		log.Printf("[server] Failed to get run %s: %v", id, err)
		s.errorResponse(w, http.StatusInternalServerError, "failed to get run")
		return
	}
	if run == nil {
		s.errorResponse(w, http.StatusNotFound, "run not found")
		return
	}

	pings, err := s.history.ListPingResults(r.Context(), id)
	if err != nil {
		log.Printf("[server] Failed to list pings of run %s: %v", id, err)
		s.errorResponse(w, http.StatusInternalServerError, "failed to get run")
		return
	}
	if pings == nil {
		pings = []db.PingRecord{}
	}
	s.jsonResponse(w, http.StatusOK, RunDetail{Run: *run, Pings: pings})
}

// PingResponse is one engine's outcome in a RunResponse.
type PingResponse struct {
	OK         bool   `json:"ok"`
	StatusCode int    `json:"status_code,omitempty"`
	Redirects  int    `json:"redirects"`
	Summary    string `json:"summary,omitempty"`
	Error      string `json:"error,omitempty"`
}

// RunResponse summarizes a generation triggered over HTTP.
type RunResponse struct {
	RunID    string                  `json:"run_id,omitempty"`
	Batches  int                     `json:"batches"`
	Entries  int                     `json:"entries"`
	Skipped  int                     `json:"skipped"`
	IndexURL string                  `json:"index_url"`
	Pings    map[string]PingResponse `json:"pings,omitempty"`
}

func newRunResponse(res *pipeline.RunResult) RunResponse {
	resp := RunResponse{
		Batches:  res.Batches,
		Entries:  res.Entries,
		Skipped:  res.Skipped,
		IndexURL: res.IndexURL,
	}
	if res.RunID != uuid.Nil {
		resp.RunID = res.RunID.String()
	}
	if len(res.Pings) > 0 {
		resp.Pings = make(map[string]PingResponse, len(res.Pings))
		for name, p := range res.Pings {
			pr := PingResponse{OK: p.OK(), StatusCode: p.StatusCode, Redirects: p.Redirects, Summary: p.Summary}
			if p.Err != nil {
				pr.Error = p.Err.Error()
			}
			resp.Pings[name] = pr
		}
	}
	return resp
}

// startRun runs the pipeline unless another run holds the lock.
func (s *Server) startRun(ctx context.Context, onProgress pipeline.ProgressCallback) (*pipeline.RunResult, error) {
	if s.generate == nil {
		return nil, ErrNotConfigured
	}
	if !s.runMu.TryLock() {
		return nil, ErrRunInProgress
	}
	defer s.runMu.Unlock()
	return s.generate(ctx, onProgress)
}

// handleRun generates the sitemaps and returns the summary when done.
func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	res, err := s.startRun(r.Context(), nil)
	if err != nil {
		log.Printf("[server] Run failed: %v", err)
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, newRunResponse(res))
}

// handleRunStream generates the sitemaps and streams progress as Server-Sent Events.
func (s *Server) handleRunStream(w http.ResponseWriter, r *http.Request) {
	if s.generate == nil {
		s.errorResponse(w, HTTPStatus(ErrNotConfigured), ErrNotConfigured.Error())
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	res, err := s.startRun(r.Context(), func(e pipeline.ProgressEvent) {
		// Progress events carry the step and message only.
		e.Content = nil
		if werr := sse.WriteEvent("progress", e); werr != nil {
			log.Printf("[server] Failed to write progress event: %v", werr)
		}
	})
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		sse.WriteError(err.Error())
		return
	}
	sse.WriteComplete(newRunResponse(res))
}
