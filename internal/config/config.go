// Package config loads configuration from a YAML file and environment
// variables. Environment variables win over the file.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the client configuration.
type Config struct {
	// Backend
	BackendURL     string        `yaml:"backend_url"`
	APIPrefix      string        `yaml:"api_prefix"`
	RequestTimeout time.Duration `yaml:"request_timeout"`

	// Routing
	BrowsePath     string `yaml:"browse_path"`
	BaseHref       string `yaml:"base_href"`
	TemplateMarker string `yaml:"template_marker"`
	Language       string `yaml:"language"`

	// HTTP front-end
	ListenAddr string `yaml:"listen_addr"`

	// Logging
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	// Terminal session
	StatePath string `yaml:"state_path"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		BackendURL:     "http://localhost:8000",
		APIPrefix:      "/api/v1",
		RequestTimeout: 30 * time.Second,
		BrowsePath:     "tree",
		BaseHref:       "/",
		TemplateMarker: "data-tpl",
		Language:       "en",
		ListenAddr:     ":8080",
		LogLevel:       "info",
		LogFormat:      "console",
		StatePath:      defaultStatePath(),
	}
}

// Load reads path over the defaults, then applies environment overrides.
// A missing file is not an error when path is empty or the default.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	} else if err := cfg.loadFile(DefaultPath()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.BackendURL = envOr("MEDIAWEB_BACKEND_URL", c.BackendURL)
	c.APIPrefix = envOr("MEDIAWEB_API_PREFIX", c.APIPrefix)
	c.RequestTimeout = envDuration("MEDIAWEB_REQUEST_TIMEOUT", c.RequestTimeout)
	c.BrowsePath = envOr("MEDIAWEB_BROWSE_PATH", c.BrowsePath)
	c.BaseHref = envOr("MEDIAWEB_BASE_HREF", c.BaseHref)
	c.TemplateMarker = envOr("MEDIAWEB_TEMPLATE_MARKER", c.TemplateMarker)
	c.Language = envOr("MEDIAWEB_LANGUAGE", c.Language)
	c.ListenAddr = envOr("MEDIAWEB_LISTEN_ADDR", c.ListenAddr)
	c.LogLevel = envOr("MEDIAWEB_LOG_LEVEL", c.LogLevel)
	c.LogFormat = envOr("MEDIAWEB_LOG_FORMAT", c.LogFormat)
	c.StatePath = envOr("MEDIAWEB_STATE_PATH", c.StatePath)
}

// Validate checks the fields everything else relies on.
func (c *Config) Validate() error {
	u, err := url.Parse(c.BackendURL)
	if err != nil {
		return fmt.Errorf("backend_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("backend_url: scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("backend_url: host is required")
	}
	if strings.Trim(c.BrowsePath, "/") == "" {
		return fmt.Errorf("browse_path is required")
	}
	if strings.Contains(strings.Trim(c.BrowsePath, "/"), "/") {
		return fmt.Errorf("browse_path %q: must be a single segment", c.BrowsePath)
	}
	if !strings.HasPrefix(c.BaseHref, "/") {
		return fmt.Errorf("base_href %q: must start with /", c.BaseHref)
	}
	if c.TemplateMarker == "" {
		return fmt.Errorf("template_marker is required")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive")
	}
	switch c.LogFormat {
	case "json", "console":
	default:
		return fmt.Errorf("log_format: unknown format %q", c.LogFormat)
	}
	return nil
}

// DefaultPath is where Load looks when no path is given.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "mediaweb.yaml"
	}
	return filepath.Join(dir, "mediaweb", "config.yaml")
}

func defaultStatePath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "mediaweb", "state.json")
	}
	return filepath.Join(dir, "mediaweb", "state.json")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
