package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_File(t *testing.T) {
	path := writeFile(t, `
backend_url: https://media.example.com
browse_path: /files/
request_timeout: 5s
log_format: json
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://media.example.com", cfg.BackendURL)
	assert.Equal(t, "/files/", cfg.BrowsePath)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "json", cfg.LogFormat)
	// untouched keys keep their defaults
	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.Equal(t, "data-tpl", cfg.TemplateMarker)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeFile(t, "backend_url: http://file:8000\n")
	t.Setenv("MEDIAWEB_BACKEND_URL", "http://env:9000")
	t.Setenv("MEDIAWEB_REQUEST_TIMEOUT", "2s")
	t.Setenv("MEDIAWEB_LANGUAGE", "sv")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://env:9000", cfg.BackendURL)
	assert.Equal(t, 2*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "sv", cfg.Language)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_BadYAML(t *testing.T) {
	_, err := Load(writeFile(t, "backend_url: [\n"))
	assert.ErrorContains(t, err, "failed to parse")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"defaults", func(*Config) {}, ""},
		{"no scheme", func(c *Config) { c.BackendURL = "localhost:8000" }, "scheme"},
		{"no host", func(c *Config) { c.BackendURL = "http://" }, "host"},
		{"empty browse path", func(c *Config) { c.BrowsePath = "/" }, "browse_path is required"},
		{"nested browse path", func(c *Config) { c.BrowsePath = "a/b" }, "single segment"},
		{"relative base href", func(c *Config) { c.BaseHref = "app/" }, "base_href"},
		{"zero timeout", func(c *Config) { c.RequestTimeout = 0 }, "request_timeout"},
		{"bad log format", func(c *Config) { c.LogFormat = "xml" }, "log_format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.errMsg)
		})
	}
}
