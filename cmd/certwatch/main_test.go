package main

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestConfig(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	refPath := filepath.Join(dir, "reference.html")
	require.NoError(t, os.WriteFile(refPath, []byte("CERT-BODY"), 0o644))

	cfg := fmt.Sprintf(`log_config:
  log_level: error
registry_config:
  type: json
  json_path: %s
reference_config:
  path: %s
history_config:
  enabled: true
  sqlite_path: %s
notification_config:
  senders: [log]
`, filepath.Join(dir, "registry.json"), refPath, filepath.Join(dir, "history.db"))

	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o644))
	return path, dir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCLI_TargetLifecycle(t *testing.T) {
	cfgPath, _ := writeTestConfig(t)

	out, err := execute(t, "-c", cfgPath, "list", "42")
	require.NoError(t, err)
	assert.Contains(t, out, "The list is empty.")

	out, err = execute(t, "-c", cfgPath, "add", "42", "  https://example.com/page  ")
	require.NoError(t, err)
	assert.Contains(t, out, "Target https://example.com/page added.")

	out, err = execute(t, "-c", cfgPath, "add", "42", "HTTPS://EXAMPLE.COM/PAGE")
	require.NoError(t, err)
	assert.Contains(t, out, "already on the list")

	out, err = execute(t, "-c", cfgPath, "list", "42")
	require.NoError(t, err)
	assert.Equal(t, "1. https://example.com/page\n", out)

	out, err = execute(t, "-c", cfgPath, "remove", "42", "https://example.com/other")
	require.NoError(t, err)
	assert.Contains(t, out, "is not on the list")

	out, err = execute(t, "-c", cfgPath, "remove", "42", "HTTPS://example.com/page")
	require.NoError(t, err)
	assert.Contains(t, out, "removed")

	out, err = execute(t, "-c", cfgPath, "remove", "42", "https://example.com/page")
	require.NoError(t, err)
	assert.Contains(t, out, "There are no targets to remove.")
}

func TestCLI_CheckAndHistory(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<p>CERT-BODY</p>"))
	}))
	defer server.Close()

	cfgPath, dir := writeTestConfig(t)

	_, err := execute(t, "-c", cfgPath, "add", "42", server.URL)
	require.NoError(t, err)
	_, err = execute(t, "-c", cfgPath, "add", "42", filepath.Join(dir, "missing.html"))
	require.NoError(t, err)

	out, err := execute(t, "-c", cfgPath, "check", "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "targets: 2, checked: 1")
	assert.Contains(t, out, "fetch errors: 1, alerts sent: 1")
	assert.Contains(t, out, "certificate_match: 1")

	out, err = execute(t, "-c", cfgPath, "history", "--limit", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "COMPLETED")
}

func TestCLI_MissingConfigFile(t *testing.T) {
	_, err := execute(t, "-c", filepath.Join(t.TempDir(), "nope.yaml"), "list", "42")
	assert.Error(t, err)
}

func TestCLI_HistoryDisabled(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(fmt.Sprintf(`log_config:
  log_level: error
registry_config:
  json_path: %s
history_config:
  enabled: false
`, filepath.Join(dir, "registry.json"))), 0o644))

	_, err := execute(t, "-c", path, "history")
	assert.ErrorContains(t, err, "disabled")
}
