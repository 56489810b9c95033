package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/sitemap-creator/internal/config"
	"github.com/jonathan/sitemap-creator/internal/ping"
)

type blockingPinger struct{}

func (blockingPinger) Ping(ctx context.Context, endpointURL, _ string, _ int, _ time.Duration) ping.Result {
	<-ctx.Done()
	return ping.Result{Err: &ping.Error{Kind: ping.ErrTransport, URL: endpointURL, Cause: ctx.Err()}}
}

func TestPingAll_PhaseTimeout(t *testing.T) {
	engines := []config.Engine{
		{Name: "slow-1", URL: "http://one.example/?u="},
		{Name: "slow-2", URL: "http://two.example/?u="},
	}

	start := time.Now()
	results := PingAll(context.Background(), blockingPinger{}, engines, "http://example.com/index.xml", PingSettings{
		Timeout:      time.Minute,
		PhaseTimeout: 50 * time.Millisecond,
	})

	assert.Less(t, time.Since(start), 5*time.Second)
	require.Len(t, results, 2)
	for _, r := range results {
		assert.ErrorIs(t, r.Err, context.DeadlineExceeded)
	}
}

func TestPingAll_NoEngines(t *testing.T) {
	results := PingAll(context.Background(), &fakePinger{}, nil, "http://example.com/index.xml", PingSettings{})
	assert.Empty(t, results)
}

func TestPingRecordFor(t *testing.T) {
	e := config.Engine{Name: "alpha", URL: "http://alpha.example/ping?sitemap="}

	ok := PingRecordFor(e, "http://example.com/index.xml", ping.Result{Body: "x", StatusCode: 200, Redirects: 1})
	assert.True(t, ok.OK())
	assert.Equal(t, "http://alpha.example/ping?sitemap=http%3A%2F%2Fexample.com%2Findex.xml", ok.RequestURL)
	assert.Equal(t, 1, ok.Redirects)

	failed := PingRecordFor(e, "http://example.com/index.xml", ping.Result{
		Err: &ping.Error{Kind: ping.ErrDNSLookupFailed, Message: "no such host"},
	})
	assert.False(t, failed.OK())
	assert.Equal(t, "DNS lookup failure", failed.ErrorKind)
}

func TestFormatPingResult(t *testing.T) {
	assert.Equal(t, "alpha: OK (200)", FormatPingResult("alpha", ping.Result{Body: "x", StatusCode: 200}))
	assert.Equal(t, "alpha: OK (200) Welcome", FormatPingResult("alpha", ping.Result{Body: "x", StatusCode: 200, Summary: "Welcome"}))
	assert.Contains(t, FormatPingResult("beta", ping.Result{Err: &ping.Error{Kind: ping.ErrHTTPError, Code: 404, Message: "Not Found"}}), "beta: FAILED HTTP error (404) Not Found")
}
