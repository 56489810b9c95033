// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/jonathan/sitemap-creator/internal/schemas"
	"github.com/jonathan/sitemap-creator/internal/scoring"
	"github.com/jonathan/sitemap-creator/internal/storage"
	"github.com/jonathan/sitemap-creator/internal/types"
	configschema "github.com/jonathan/sitemap-creator/schemas"
	"gopkg.in/yaml.v3"
)

// Defaults
const (
	DefaultEntriesPerSitemap = 50000
	DefaultMaxRedirects      = 5
	DefaultPingTimeout       = 15 * time.Second
	DefaultPingPhaseTimeout  = 60 * time.Second
	DefaultListenAddr        = ":8080"
)

// Engine is a search engine ping endpoint. The sitemap URL is query-escaped and appended
// to URL.
type Engine struct {
	Name string `json:"name" yaml:"name" validate:"required"`
	URL  string `json:"url" yaml:"url" validate:"required,url"`
}

// DefaultEngines returns the built-in ping endpoints.
func DefaultEngines() []Engine {
	return []Engine{
		{Name: "Google", URL: "http://www.google.com/webmasters/sitemaps/ping?sitemap="},
		{Name: "Bing", URL: "http://www.bing.com/webmaster/ping.aspx?siteMap="},
	}
}

// Config represents the CLI configuration that can be loaded from a JSON or YAML file.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	// Site
	Site       string `json:"site,omitempty" yaml:"site,omitempty" validate:"omitempty,url"`               // Site root URL
	SitemapURL string `json:"sitemap_url,omitempty" yaml:"sitemap_url,omitempty" validate:"omitempty,url"` // Public URL prefix for documents
	DataDir    string `json:"data_dir,omitempty" yaml:"data_dir,omitempty"`                                // Parent of the per-site sitemap directory

	// Scoring
	PriorityMode  string  `json:"priority_mode,omitempty" yaml:"priority_mode,omitempty" validate:"omitempty,oneof=disabled crawled_first url_structure"`
	MinPriority   float64 `json:"min_priority,omitempty" yaml:"min_priority,omitempty" validate:"gte=0,lte=1"`
	FrequencyMode string  `json:"frequency_mode,omitempty" yaml:"frequency_mode,omitempty" validate:"omitempty,oneof=disabled last_modified priority"`
	MinFrequency  string  `json:"min_frequency,omitempty" yaml:"min_frequency,omitempty" validate:"omitempty,oneof=always hourly daily weekly monthly yearly never"`

	// Output
	EntriesPerSitemap int  `json:"entries_per_sitemap,omitempty" yaml:"entries_per_sitemap,omitempty" validate:"omitempty,min=1,max=50000"`
	UseGzip           bool `json:"use_gzip,omitempty" yaml:"use_gzip,omitempty"`

	// Ping
	Engines                 []Engine `json:"engines,omitempty" yaml:"engines,omitempty" validate:"omitempty,dive"`
	MaxRedirects            int      `json:"max_redirects,omitempty" yaml:"max_redirects,omitempty" validate:"gte=0,lte=20"`
	PingTimeoutSeconds      int      `json:"ping_timeout_seconds,omitempty" yaml:"ping_timeout_seconds,omitempty" validate:"gte=0"`
	PingPhaseTimeoutSeconds int      `json:"ping_phase_timeout_seconds,omitempty" yaml:"ping_phase_timeout_seconds,omitempty" validate:"gte=0"`

	// Behavior
	ListenAddr  string `json:"listen_addr,omitempty" yaml:"listen_addr,omitempty"`   // Address for the serve command
	DatabaseURL string `json:"database_url,omitempty" yaml:"database_url,omitempty"` // PostgreSQL connection URL
	Verbose     bool   `json:"verbose,omitempty" yaml:"verbose,omitempty"`           // Print detailed debug information
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		DataDir:                 os.TempDir(),
		PriorityMode:            types.PriorityCrawledFirst.String(),
		FrequencyMode:           types.FrequencyLastModified.String(),
		MinFrequency:            types.FrequencyNever.String(),
		EntriesPerSitemap:       DefaultEntriesPerSitemap,
		Engines:                 DefaultEngines(),
		MaxRedirects:            DefaultMaxRedirects,
		PingTimeoutSeconds:      int(DefaultPingTimeout / time.Second),
		PingPhaseTimeoutSeconds: int(DefaultPingPhaseTimeout / time.Second),
		ListenAddr:              DefaultListenAddr,
	}
}

// LoadConfig loads configuration from a JSON or YAML file, chosen by extension.
// JSON files are checked against the configuration schema before decoding.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	default:
		if !json.Valid(data) {
			return nil, fmt.Errorf("failed to parse config JSON: invalid JSON in %s", path)
		}
		if err := schemas.ValidateDocument(configschema.SitemapConfig, data); err != nil {
			return nil, fmt.Errorf("config file %s does not match schema: %w", path, err)
		}
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	}

	return &cfg, nil
}

// MergeWithDefaults returns a new Config with zero-valued fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.Site == "" {
		result.Site = defaults.Site
	}
	if result.SitemapURL == "" {
		result.SitemapURL = defaults.SitemapURL
	}
	if result.DataDir == "" {
		result.DataDir = defaults.DataDir
	}
	if result.PriorityMode == "" {
		result.PriorityMode = defaults.PriorityMode
	}
	if result.FrequencyMode == "" {
		result.FrequencyMode = defaults.FrequencyMode
	}
	if result.MinFrequency == "" {
		result.MinFrequency = defaults.MinFrequency
	}
	if result.ListenAddr == "" {
		result.ListenAddr = defaults.ListenAddr
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}

	// Int fields: use default if zero
	if result.EntriesPerSitemap == 0 {
		result.EntriesPerSitemap = defaults.EntriesPerSitemap
	}
	if result.MaxRedirects == 0 {
		result.MaxRedirects = defaults.MaxRedirects
	}
	if result.PingTimeoutSeconds == 0 {
		result.PingTimeoutSeconds = defaults.PingTimeoutSeconds
	}
	if result.PingPhaseTimeoutSeconds == 0 {
		result.PingPhaseTimeoutSeconds = defaults.PingPhaseTimeoutSeconds
	}

	// Float fields
	if result.MinPriority == 0 {
		result.MinPriority = defaults.MinPriority
	}

	if len(result.Engines) == 0 {
		result.Engines = append([]Engine(nil), defaults.Engines...)
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

// ScoringOptions converts the scoring fields. Call Validate first.
func (c *Config) ScoringOptions() (scoring.Options, error) {
	pm, err := types.ParsePriorityMode(c.PriorityMode)
	if err != nil {
		return scoring.Options{}, &ConfigError{Field: "priority_mode", Message: err.Error()}
	}
	fm, err := types.ParseFrequencyMode(c.FrequencyMode)
	if err != nil {
		return scoring.Options{}, &ConfigError{Field: "frequency_mode", Message: err.Error()}
	}
	minFreq := types.FrequencyNever
	if c.MinFrequency != "" {
		minFreq, err = types.ParseChangeFrequency(c.MinFrequency)
		if err != nil {
			return scoring.Options{}, &ConfigError{Field: "min_frequency", Message: err.Error()}
		}
	}
	return scoring.Options{
		PriorityMode:  pm,
		MinPriority:   c.MinPriority,
		FrequencyMode: fm,
		MinFrequency:  minFreq,
	}, nil
}

// PingTimeout returns the per-request ping timeout.
func (c *Config) PingTimeout() time.Duration {
	if c.PingTimeoutSeconds <= 0 {
		return DefaultPingTimeout
	}
	return time.Duration(c.PingTimeoutSeconds) * time.Second
}

// PingPhaseTimeout returns the bound on the whole ping phase.
func (c *Config) PingPhaseTimeout() time.Duration {
	if c.PingPhaseTimeoutSeconds <= 0 {
		return DefaultPingPhaseTimeout
	}
	return time.Duration(c.PingPhaseTimeoutSeconds) * time.Second
}

var (
	sitemapURLPattern = regexp.MustCompile(`([^/]/)[^/]*$`)
	dirNamePattern    = regexp.MustCompile(`(?i)[^a-z]+`)
)

// NormalizeSite trims s and gives a bare host URL a root path.
func NormalizeSite(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if i := strings.Index(s, "://"); i >= 0 && !strings.Contains(s[i+3:], "/") {
		s += "/"
	}
	return s
}

// ResolvedSitemapURL returns the public URL prefix of generated documents. Without an
// explicit SitemapURL it is derived from Site by replacing the last path element:
// http://example.com/1/index.php becomes http://example.com/1/sitemap.php?s=
func (c *Config) ResolvedSitemapURL() (string, error) {
	if c.SitemapURL != "" {
		return c.SitemapURL, nil
	}
	site := NormalizeSite(c.Site)
	if site == "" {
		return "", &ConfigError{Field: "sitemap_url", Message: "either 'sitemap_url' or 'site' is required"}
	}
	return sitemapURLPattern.ReplaceAllString(site, "${1}sitemap.php?s="), nil
}

// FileExt returns the file extension of stored documents.
func (c *Config) FileExt() string {
	if c.UseGzip {
		return storage.GzipExt
	}
	return storage.DefaultExt
}

// SitemapURLFor returns the public URL of the named document ("index" or a batch number).
func (c *Config) SitemapURLFor(name string) (string, error) {
	prefix, err := c.ResolvedSitemapURL()
	if err != nil {
		return "", err
	}
	return prefix + name + c.FileExt(), nil
}

// DirName returns the per-site directory name: the site URL with every run of non-letters
// replaced by an underscore.
func (c *Config) DirName() string {
	return dirNamePattern.ReplaceAllString(NormalizeSite(c.Site), "_")
}

// SitemapsDir returns the directory holding this site's documents.
func (c *Config) SitemapsDir() (string, error) {
	if c.Site == "" {
		return "", &ConfigError{Field: "site", Message: "'site' is required to locate the sitemap directory"}
	}
	dataDir := c.DataDir
	if dataDir == "" {
		dataDir = os.TempDir()
	}
	return filepath.Join(strings.TrimRight(dataDir, "/"), c.DirName()), nil
}
