package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func statusServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/status" {
			http.NotFound(w, r)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"Ok": map[string]string{"name": "media-index", "version": "1.4.0", "welcome_title": "Home cinema"},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

// run executes the root command with in as stdin.
func run(t *testing.T, in string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("MEDIAWEB_STATE_PATH", filepath.Join(t.TempDir(), "state.json"))
	flagConfig, flagLogLevel, flagLogFormat, flagBackend = "", "", "", ""

	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(in))
	cmd.SetArgs(append(args, "--log-level", "error"))
	err := cmd.Execute()
	return out.String(), err
}

func TestStatusCommand(t *testing.T) {
	srv := statusServer(t)
	out, err := run(t, "", "status", "--backend", srv.URL)
	require.NoError(t, err)
	assert.Contains(t, out, "media-index")
	assert.Contains(t, out, "1.4.0")
	assert.Contains(t, out, "Home cinema")
}

func TestStatusCommand_BackendDown(t *testing.T) {
	srv := statusServer(t)
	srv.Close()
	_, err := run(t, "", "status", "--backend", srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to get status")
}

func TestLoadConfig_BadBackend(t *testing.T) {
	_, err := run(t, "", "status", "--backend", "ftp://example.com")
	require.Error(t, err)
}

func TestBrowseCommand_PipedInput(t *testing.T) {
	srv := statusServer(t)
	out, err := run(t, "quit\n", "browse", "/", "--backend", srv.URL)
	require.NoError(t, err)
	assert.Contains(t, out, "Home cinema")
}
