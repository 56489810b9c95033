package db

import (
	"time"

	"github.com/google/uuid"
)

// Run status values
const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// Run represents one sitemap generation run
type Run struct {
	ID          uuid.UUID  `json:"id"`
	Site        string     `json:"site"`
	Status      string     `json:"status"`
	Batches     int        `json:"batches"`
	Entries     int        `json:"entries"`
	IndexURL    string     `json:"index_url,omitempty"`
	Error       string     `json:"error,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// RunCompletion holds the final state recorded for a run
type RunCompletion struct {
	Status   string
	Batches  int
	Entries  int
	IndexURL string
	Error    string
}

// PingRecord is the stored outcome of pinging one engine during a run
type PingRecord struct {
	ID           uuid.UUID     `json:"id"`
	RunID        uuid.UUID     `json:"run_id"`
	Engine       string        `json:"engine"`
	RequestURL   string        `json:"request_url"`
	StatusCode   int           `json:"status_code,omitempty"`
	ErrorKind    string        `json:"error_kind,omitempty"`
	ErrorMessage string        `json:"error_message,omitempty"`
	Summary      string        `json:"summary,omitempty"`
	Redirects    int           `json:"redirects"`
	Duration     time.Duration `json:"duration"`
	CreatedAt    time.Time     `json:"created_at"`
}

// OK reports whether the ping succeeded.
func (p PingRecord) OK() bool {
	return p.ErrorKind == "" && p.ErrorMessage == ""
}
