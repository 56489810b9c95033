package pipeline

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/sitemap-creator/internal/config"
	"github.com/jonathan/sitemap-creator/internal/ping"
)

// Pinger notifies one endpoint. *ping.Client satisfies it.
type Pinger interface {
	Ping(ctx context.Context, endpointURL, targetURL string, maxRedirects int, timeout time.Duration) ping.Result
}

// PingSettings bounds the ping phase.
type PingSettings struct {
	MaxRedirects int
	Timeout      time.Duration // per request
	PhaseTimeout time.Duration // whole phase; zero means no extra bound
}

// PingAll pings every engine concurrently and returns one result per engine name. A failure
// at one engine never affects the others.
func PingAll(ctx context.Context, p Pinger, engines []config.Engine, targetURL string, s PingSettings) map[string]ping.Result {
	if s.PhaseTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.PhaseTimeout)
		defer cancel()
	}

	results := make(map[string]ping.Result, len(engines))
	var mu sync.Mutex

	// Goroutines never return errors, so one failed engine cannot cancel the rest.
	var g errgroup.Group
	for _, e := range engines {
		g.Go(func() error {
			res := p.Ping(ctx, e.URL, targetURL, s.MaxRedirects, s.Timeout)
			if res.OK() {
				log.Printf("[ping] %s: OK (%d) in %s", e.Name, res.StatusCode, res.Duration.Round(time.Millisecond))
			} else {
				log.Printf("[ping] %s: %v", e.Name, res.Err)
			}
			mu.Lock()
			results[e.Name] = res
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// FormatPingResult renders one result as a single line.
func FormatPingResult(name string, res ping.Result) string {
	if res.OK() {
		if res.Summary != "" {
			return fmt.Sprintf("%s: OK (%d) %s", name, res.StatusCode, res.Summary)
		}
		return fmt.Sprintf("%s: OK (%d)", name, res.StatusCode)
	}
	return fmt.Sprintf("%s: FAILED %v", name, res.Err)
}
