package db

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSchema_DefinesTables(t *testing.T) {
	schema := Schema()

	for _, table := range []string{"crawled_pages", "sitemap_runs", "ping_results"} {
		assert.Contains(t, schema, "CREATE TABLE IF NOT EXISTS "+table, "schema should define %s", table)
	}
	assert.True(t, strings.Contains(schema, "UNIQUE (site, position)"), "page positions are unique per site")
}

func TestRunStatusConstants(t *testing.T) {
	statuses := []string{RunStatusRunning, RunStatusCompleted, RunStatusFailed}
	seen := map[string]bool{}
	for _, s := range statuses {
		assert.NotEmpty(t, s)
		assert.False(t, seen[s], "status %q is duplicated", s)
		seen[s] = true
	}
}

func TestRunType(t *testing.T) {
	run := Run{
		Site:   "http://example.com/",
		Status: RunStatusRunning,
	}

	assert.Equal(t, "http://example.com/", run.Site)
	assert.Equal(t, RunStatusRunning, run.Status)
	assert.Nil(t, run.CompletedAt)
}

func TestPingRecord_OK(t *testing.T) {
	ok := PingRecord{Engine: "Google", StatusCode: 200, Duration: 120 * time.Millisecond}
	assert.True(t, ok.OK())

	failed := PingRecord{Engine: "Bing", ErrorKind: "http_error", ErrorMessage: "HTTP error (404) Not Found"}
	assert.False(t, failed.OK())
}
