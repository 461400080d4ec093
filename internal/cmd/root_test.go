package cmd

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecute_UnknownCommandSuggestion(t *testing.T) {
	setupTestEnvWithHandler(t, newRouteHandler())

	stderr := captureStderr(t, func() {
		err := Execute(context.Background(), []string{"logn"})
		require.Error(t, err)
		assert.Equal(t, exitUsage, ExitCode(err))
	})
	assert.Contains(t, stderr, `Did you mean "login"?`)
}

func TestExecute_UnknownFlagSuggestion(t *testing.T) {
	setupTestEnvWithHandler(t, newRouteHandler())

	stderr := captureStderr(t, func() {
		err := Execute(context.Background(), []string{"login", "--usernme", "alice"})
		require.Error(t, err)
		assert.Equal(t, exitUsage, ExitCode(err))
	})
	assert.Contains(t, stderr, `Did you mean "--username"?`)
	assert.Contains(t, stderr, "idm login --help")
}

func TestExecute_InvalidOutputFormat(t *testing.T) {
	setupTestEnvWithHandler(t, newRouteHandler())

	_ = captureStderr(t, func() {
		err := Execute(context.Background(), []string{"version", "-o", "yaml"})
		require.Error(t, err)
	})
}

func TestExecute_InvalidQuery(t *testing.T) {
	setupTestEnvWithHandler(t, newRouteHandler())

	_ = captureStderr(t, func() {
		err := Execute(context.Background(), []string{"version", "-j", "--query", ".[[["})
		require.Error(t, err)
	})
}

func TestExecute_NotConfigured(t *testing.T) {
	setupTestEnvWithHandler(t, newRouteHandler())
	t.Setenv("IDM_BASE_URL", "")

	stderr := captureStderr(t, func() {
		err := Execute(context.Background(), []string{"whoami"})
		require.Error(t, err)
		assert.Equal(t, exitConfig, ExitCode(err))
	})
	assert.Contains(t, stderr, "idm config set --base-url")
}

func TestExecute_MetricsOut(t *testing.T) {
	handler := newRouteHandler().
		On("GET", "/api/v1/idm/email/status", jsonResponse(200, `{"email_verified":true}`))
	setupTestEnvWithHandler(t, handler)
	path := filepath.Join(t.TempDir(), "idm.prom")

	_ = captureStdout(t, func() {
		err := Execute(context.Background(), []string{"email", "status", "--metrics-out", path})
		require.NoError(t, err)
	})

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "idm_client_requests_total")
	assert.Contains(t, string(data), `operation="email_status"`)
}

func TestVersionCommand(t *testing.T) {
	setupTestEnvWithHandler(t, newRouteHandler())

	output := captureStdout(t, func() {
		err := Execute(context.Background(), []string{"version"})
		require.NoError(t, err)
	})
	assert.Equal(t, "idm-cli version dev\n", output)

	output = captureStdout(t, func() {
		err := Execute(context.Background(), []string{"version", "-o", "json"})
		require.NoError(t, err)
	})
	var v map[string]string
	require.NoError(t, json.Unmarshal([]byte(output), &v))
	assert.Equal(t, "dev", v["version"])
}

func TestCacheClearCommand(t *testing.T) {
	handler := newRouteHandler().
		On("GET", "/api/v1/idm/password-reset/policy", jsonResponse(200, `{"min_length": 8}`))
	setupTestEnvWithHandler(t, handler)

	_ = captureStdout(t, func() {
		require.NoError(t, Execute(context.Background(), []string{"password-reset", "policy"}))
	})

	output := captureStdout(t, func() {
		err := Execute(context.Background(), []string{"cache", "clear"})
		require.NoError(t, err)
	})
	assert.Contains(t, output, "Removed 1 cached entries.")

	output = captureStdout(t, func() {
		err := Execute(context.Background(), []string{"cache", "clear", "-o", "json"})
		require.NoError(t, err)
	})
	var result map[string]int
	require.NoError(t, json.Unmarshal([]byte(output), &result))
	assert.Equal(t, 0, result["removed"])
}
