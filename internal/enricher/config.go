package enricher

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for an enrichment run.
type Config struct {
	// Files
	InputPath  string `yaml:"-"`
	OutputPath string `yaml:"-"`

	// Request options
	UserAgent       string        `yaml:"user_agent"`
	Timeout         time.Duration `yaml:"timeout"`
	MaxRedirects    int           `yaml:"max_redirects"`
	MaxResponseSize int           `yaml:"max_response_size"`

	// Pacing
	Delay       time.Duration `yaml:"delay"`
	Parallelism int           `yaml:"parallelism"`

	// Fetching
	FetcherMode    FetcherMode   `yaml:"fetcher"`
	BrowserTimeout time.Duration `yaml:"browser_timeout"`
	PageTimeout    time.Duration `yaml:"page_timeout"`

	// Console
	Verbose bool `yaml:"-"`
	NoColor bool `yaml:"-"`
}

// FetcherMode controls which fetchers the email extractor uses.
type FetcherMode string

const (
	FetcherHTTP    FetcherMode = "http"
	FetcherBrowser FetcherMode = "browser"
	FetcherAuto    FetcherMode = "auto"
)

// DefaultUserAgent is a desktop Chrome user agent; many corporate sites
// refuse obvious bots.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// DefaultConfig returns the configuration used when nothing is overridden.
func DefaultConfig() *Config {
	return &Config{
		InputPath:       "input.csv",
		OutputPath:      "output.csv",
		UserAgent:       DefaultUserAgent,
		Timeout:         10 * time.Second,
		MaxRedirects:    5,
		MaxResponseSize: 4194304, // 4MB
		Delay:           time.Second,
		Parallelism:     1,
		FetcherMode:     FetcherHTTP,
		BrowserTimeout:  30 * time.Second,
		PageTimeout:     15 * time.Second,
	}
}

// LoadConfig overlays the YAML file at path on top of DefaultConfig.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks values that would make a run misbehave.
func (c *Config) Validate() error {
	switch c.FetcherMode {
	case FetcherHTTP, FetcherBrowser, FetcherAuto:
	default:
		return fmt.Errorf("unknown fetcher %q (want http, browser or auto)", c.FetcherMode)
	}
	if c.Parallelism < 1 {
		return fmt.Errorf("parallelism must be at least 1, got %d", c.Parallelism)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	if c.MaxRedirects < 0 {
		return fmt.Errorf("max_redirects must not be negative, got %d", c.MaxRedirects)
	}
	if c.Delay < 0 {
		return fmt.Errorf("delay must not be negative, got %s", c.Delay)
	}
	return nil
}
