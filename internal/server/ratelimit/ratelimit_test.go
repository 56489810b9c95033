package ratelimit

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(limit int) *Config {
	return &Config{
		Enabled:       true,
		DefaultLimit:  limit,
		DefaultWindow: time.Minute,
	}
}

func TestLimiter_Allow(t *testing.T) {
	limiter := NewLimiter(testConfig(10))
	defer limiter.Stop()

	for i := 0; i < 10; i++ {
		allowed, info := limiter.Allow("127.0.0.1", "/sitemaps/1.xml", "GET")
		require.True(t, allowed, "request %d", i+1)
		assert.Equal(t, 10, info.Limit)
		assert.Equal(t, 9-i, info.Remaining)
	}

	allowed, info := limiter.Allow("127.0.0.1", "/sitemaps/1.xml", "GET")
	assert.False(t, allowed)
	assert.Equal(t, 0, info.Remaining)
	assert.Greater(t, info.RetryAfter, time.Duration(0))
	assert.True(t, info.ResetTime.After(time.Now()))
}

func TestLimiter_SeparateClients(t *testing.T) {
	limiter := NewLimiter(testConfig(1))
	defer limiter.Stop()

	allowed, _ := limiter.Allow("10.0.0.1", "/x", "GET")
	assert.True(t, allowed)
	allowed, _ = limiter.Allow("10.0.0.1", "/x", "GET")
	assert.False(t, allowed)

	allowed, _ = limiter.Allow("10.0.0.2", "/x", "GET")
	assert.True(t, allowed)
}

func TestLimiter_Refill(t *testing.T) {
	limiter := NewLimiter(&Config{Enabled: true, DefaultLimit: 20, DefaultWindow: time.Second})
	defer limiter.Stop()

	for i := 0; i < 20; i++ {
		limiter.Allow("c", "/x", "GET")
	}
	allowed, _ := limiter.Allow("c", "/x", "GET")
	require.False(t, allowed)

	time.Sleep(100 * time.Millisecond)
	allowed, _ = limiter.Allow("c", "/x", "GET")
	assert.True(t, allowed)
}

func TestLimiter_WhitelistAndBlacklist(t *testing.T) {
	cfg := testConfig(1)
	cfg.Whitelist = map[string]bool{"10.0.0.1": true}
	cfg.Blacklist = map[string]bool{"10.0.0.2": true}
	limiter := NewLimiter(cfg)
	defer limiter.Stop()

	for i := 0; i < 5; i++ {
		allowed, _ := limiter.Allow("10.0.0.1", "/x", "GET")
		assert.True(t, allowed)
	}
	allowed, _ := limiter.Allow("10.0.0.2", "/x", "GET")
	assert.False(t, allowed)
}

func TestLimiter_Disabled(t *testing.T) {
	limiter := NewLimiter(&Config{Enabled: false})
	defer limiter.Stop()

	for i := 0; i < 100; i++ {
		allowed, info := limiter.Allow("c", "/x", "GET")
		require.True(t, allowed)
		assert.Zero(t, info.Limit)
	}
}

func TestLimiter_HealthIsUnlimited(t *testing.T) {
	limiter := NewLimiter(testConfig(1))
	defer limiter.Stop()

	for i := 0; i < 10; i++ {
		allowed, _ := limiter.Allow("c", "/health", "GET")
		require.True(t, allowed)
	}
}

func TestLimiter_PrefixRuleSharesBucket(t *testing.T) {
	cfg := testConfig(100)
	cfg.EndpointConfigs = []EndpointConfig{
		{Path: "/sitemaps/", Method: "GET", Limit: 3, Window: time.Minute},
	}
	limiter := NewLimiter(cfg)
	defer limiter.Stop()

	for i := 1; i <= 3; i++ {
		allowed, info := limiter.Allow("c", fmt.Sprintf("/sitemaps/%d.xml", i), "GET")
		require.True(t, allowed)
		assert.Equal(t, 3, info.Limit)
	}
	allowed, _ := limiter.Allow("c", "/sitemaps/index.xml", "GET")
	assert.False(t, allowed)

	allowed, info := limiter.Allow("c", "/runs", "GET")
	assert.True(t, allowed)
	assert.Equal(t, 100, info.Limit)
}

func TestLimiter_Burst(t *testing.T) {
	cfg := testConfig(100)
	cfg.EndpointConfigs = []EndpointConfig{
		{Path: "/runs", Method: "GET", Limit: 60, Window: time.Minute, Burst: 2},
	}
	limiter := NewLimiter(cfg)
	defer limiter.Stop()

	allowed, _ := limiter.Allow("c", "/runs", "GET")
	assert.True(t, allowed)
	allowed, _ = limiter.Allow("c", "/runs", "GET")
	assert.True(t, allowed)
	allowed, _ = limiter.Allow("c", "/runs", "GET")
	assert.False(t, allowed)
}

func TestLimiter_Concurrent(t *testing.T) {
	limiter := NewLimiter(testConfig(50))
	defer limiter.Stop()

	var allowedCount atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := limiter.Allow("c", "/x", "GET"); ok {
				allowedCount.Add(1)
			}
		}()
	}
	wg.Wait()

	// Refill during the burst may admit one extra request.
	assert.InDelta(t, 50, allowedCount.Load(), 1)
}

func TestLimiter_CleanupBuckets(t *testing.T) {
	limiter := NewLimiter(testConfig(10))
	defer limiter.Stop()

	limiter.Allow("old", "/x", "GET")
	limiter.Allow("new", "/x", "GET")

	limiter.mu.Lock()
	limiter.buckets["old:/x:GET"].lastAccess = time.Now().Add(-2 * time.Hour)
	limiter.mu.Unlock()

	limiter.cleanupBuckets(time.Now().Add(-time.Hour))

	limiter.mu.Lock()
	defer limiter.mu.Unlock()
	assert.NotContains(t, limiter.buckets, "old:/x:GET")
	assert.Contains(t, limiter.buckets, "new:/x:GET")
}

func TestNewLimiter_NilConfig(t *testing.T) {
	limiter := NewLimiter(nil)
	defer limiter.Stop()
	limiter.Stop()

	allowed, info := limiter.Allow("c", "/x", "GET")
	assert.True(t, allowed)
	assert.Equal(t, DefaultLimit, info.Limit)
}

func TestMatchEndpoint(t *testing.T) {
	configs := DefaultEndpointConfigs()

	assert.Equal(t, "/sitemaps/", MatchEndpoint("/sitemaps/3.xml", "GET", configs).Path)
	assert.Equal(t, "/runs", MatchEndpoint("/runs", "GET", configs).Path)
	assert.Equal(t, "/runs/", MatchEndpoint("/runs/abc", "GET", configs).Path)
	assert.Nil(t, MatchEndpoint("/sitemaps/3.xml", "POST", configs))
	assert.Zero(t, MatchEndpoint("/health", "GET", configs).Limit)
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("RATE_LIMIT_DEFAULT_LIMIT", "42")
	t.Setenv("RATE_LIMIT_WHITELIST", "10.0.0.1, 10.0.0.2")

	cfg := LoadConfig()
	assert.True(t, cfg.Enabled)
	assert.Equal(t, 42, cfg.DefaultLimit)
	assert.True(t, cfg.Whitelist["10.0.0.2"])
	assert.NotEmpty(t, cfg.EndpointConfigs)

	t.Setenv("RATE_LIMIT_ENABLED", "false")
	assert.False(t, LoadConfig().Enabled)
}
