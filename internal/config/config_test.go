package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonathan/sitemap-creator/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfig_ValidJSON(t *testing.T) {
	path := writeConfig(t, "config.json", `{
		"site": "http://example.com/",
		"priority_mode": "url_structure",
		"min_priority": 0.3,
		"entries_per_sitemap": 1000,
		"use_gzip": true,
		"engines": [{"name": "Local", "url": "http://localhost:9000/ping?u="}],
		"verbose": true
	}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "http://example.com/", cfg.Site)
	assert.Equal(t, "url_structure", cfg.PriorityMode)
	assert.Equal(t, 0.3, cfg.MinPriority)
	assert.Equal(t, 1000, cfg.EntriesPerSitemap)
	assert.True(t, cfg.UseGzip)
	assert.Equal(t, []Engine{{Name: "Local", URL: "http://localhost:9000/ping?u="}}, cfg.Engines)
	assert.True(t, cfg.Verbose)
}

func TestLoadConfig_ValidYAML(t *testing.T) {
	path := writeConfig(t, "config.yaml", `
site: http://example.com/blog/index.php
frequency_mode: priority
min_frequency: weekly
max_redirects: 2
engines:
  - name: Google
    url: http://www.google.com/webmasters/sitemaps/ping?sitemap=
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "http://example.com/blog/index.php", cfg.Site)
	assert.Equal(t, "priority", cfg.FrequencyMode)
	assert.Equal(t, "weekly", cfg.MinFrequency)
	assert.Equal(t, 2, cfg.MaxRedirects)
	require.Len(t, cfg.Engines, 1)
	assert.Equal(t, "Google", cfg.Engines[0].Name)
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	path := writeConfig(t, "config.json", `{ invalid json }`)

	cfg, err := LoadConfig(path)
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to parse config JSON")
}

func TestLoadConfig_SchemaViolation(t *testing.T) {
	path := writeConfig(t, "config.json", `{"entries_per_sitemap": 60000}`)

	cfg, err := LoadConfig(path)
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "does not match schema")
	assert.Contains(t, err.Error(), "entries_per_sitemap")
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "config.yml", "site: [unterminated")

	cfg, err := LoadConfig(path)
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to parse config YAML")
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/config.json")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	cfg, err := LoadConfig("")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "config path is empty")
}

func TestValidate_Defaults(t *testing.T) {
	cfg := Default()
	assert.NoError(t, cfg.Validate())
}

func TestValidate_OutOfRange(t *testing.T) {
	tests := []struct {
		name  string
		cfg   Config
		field string
	}{
		{"priority above one", Config{MinPriority: 1.2}, "min_priority"},
		{"negative priority", Config{MinPriority: -0.1}, "min_priority"},
		{"too many entries", Config{EntriesPerSitemap: 50001}, "entries_per_sitemap"},
		{"negative entries", Config{EntriesPerSitemap: -5}, "entries_per_sitemap"},
		{"unknown priority mode", Config{PriorityMode: "alphabetical"}, "priority_mode"},
		{"unknown frequency", Config{MinFrequency: "fortnightly"}, "min_frequency"},
		{"relative site", Config{Site: "example.com"}, "site"},
		{"engine without url", Config{Engines: []Engine{{Name: "Google"}}}, "engines[0].url"},
		{"negative redirects", Config{MaxRedirects: -1}, "max_redirects"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			require.Error(t, err)

			var cfgErr *ConfigError
			require.True(t, errors.As(err, &cfgErr), "expected ConfigError, got %T", err)
			assert.Equal(t, tt.field, cfgErr.Field)
			assert.Contains(t, err.Error(), "config error")
		})
	}
}

func TestValidate_DuplicateEngines(t *testing.T) {
	cfg := Config{Engines: []Engine{
		{Name: "Google", URL: "http://a.com/?s="},
		{Name: "google", URL: "http://b.com/?s="},
	}}

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate engine")
}

func TestMergeWithDefaults(t *testing.T) {
	cfg := &Config{
		Site:              "http://example.com/",
		EntriesPerSitemap: 100,
		UseGzip:           true,
	}

	merged := cfg.MergeWithDefaults(Default())

	assert.Equal(t, "http://example.com/", merged.Site)
	assert.Equal(t, 100, merged.EntriesPerSitemap, "explicit values are kept")
	assert.Equal(t, "crawled_first", merged.PriorityMode)
	assert.Equal(t, "last_modified", merged.FrequencyMode)
	assert.Equal(t, "never", merged.MinFrequency)
	assert.Equal(t, DefaultMaxRedirects, merged.MaxRedirects)
	assert.Equal(t, DefaultEngines(), merged.Engines)
	assert.True(t, merged.UseGzip)

	assert.Empty(t, cfg.PriorityMode, "receiver is not modified")
}

func TestScoringOptions(t *testing.T) {
	cfg := Config{PriorityMode: "url_structure", MinPriority: 0.2, FrequencyMode: "priority", MinFrequency: "monthly"}

	opts, err := cfg.ScoringOptions()
	require.NoError(t, err)
	assert.Equal(t, types.PriorityURLStructure, opts.PriorityMode)
	assert.Equal(t, 0.2, opts.MinPriority)
	assert.Equal(t, types.FrequencyPriority, opts.FrequencyMode)
	assert.Equal(t, types.FrequencyMonthly, opts.MinFrequency)

	empty := Config{}
	opts, err = empty.ScoringOptions()
	require.NoError(t, err)
	assert.Equal(t, types.PriorityCrawledFirst, opts.PriorityMode)
	assert.Equal(t, types.FrequencyLastModified, opts.FrequencyMode)
	assert.Equal(t, types.FrequencyNever, opts.MinFrequency)

	bad := Config{PriorityMode: "nope"}
	_, err = bad.ScoringOptions()
	assert.Error(t, err)
}

func TestResolvedSitemapURL(t *testing.T) {
	tests := []struct {
		site string
		want string
	}{
		{"http://example.com/1/index.php", "http://example.com/1/sitemap.php?s="},
		{"http://example.com/", "http://example.com/sitemap.php?s="},
		{"http://example.com", "http://example.com/sitemap.php?s="},
		{"https://example.com:8443/blog/", "https://example.com:8443/blog/sitemap.php?s="},
	}
	for _, tt := range tests {
		t.Run(tt.site, func(t *testing.T) {
			cfg := Config{Site: tt.site}
			got, err := cfg.ResolvedSitemapURL()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	explicit := Config{Site: "http://example.com/", SitemapURL: "http://cdn.example.com/maps/"}
	got, err := explicit.ResolvedSitemapURL()
	require.NoError(t, err)
	assert.Equal(t, "http://cdn.example.com/maps/", got)

	none := Config{}
	_, err = none.ResolvedSitemapURL()
	assert.Error(t, err)
}

func TestSitemapURLFor(t *testing.T) {
	cfg := Config{Site: "http://example.com/"}
	got, err := cfg.SitemapURLFor("index")
	require.NoError(t, err)
	assert.Equal(t, "http://example.com/sitemap.php?s=index.xml", got)

	cfg.UseGzip = true
	got, err = cfg.SitemapURLFor("3")
	require.NoError(t, err)
	assert.Equal(t, "http://example.com/sitemap.php?s=3.xml.gz", got)
}

func TestDirName(t *testing.T) {
	cfg := Config{Site: "http://example.com/"}
	assert.Equal(t, "http_example_com_", cfg.DirName())

	cfg.DataDir = "/srv/data/"
	dir, err := cfg.SitemapsDir()
	require.NoError(t, err)
	assert.Equal(t, "/srv/data/http_example_com_", dir)

	_, err = (&Config{}).SitemapsDir()
	assert.Error(t, err)
}

func TestTimeouts(t *testing.T) {
	cfg := Config{}
	assert.Equal(t, DefaultPingTimeout, cfg.PingTimeout())
	assert.Equal(t, DefaultPingPhaseTimeout, cfg.PingPhaseTimeout())

	cfg.PingTimeoutSeconds = 3
	cfg.PingPhaseTimeoutSeconds = 9
	assert.Equal(t, 3*time.Second, cfg.PingTimeout())
	assert.Equal(t, 9*time.Second, cfg.PingPhaseTimeout())
}
