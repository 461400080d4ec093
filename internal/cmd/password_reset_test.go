package cmd

import (
	"context"
	"encoding/json"
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordResetInitiate(t *testing.T) {
	handler := newRouteHandler().
		On("POST", "/api/v1/idm/password-reset/initiate/email", jsonResponse(200, `{"message":"Email sent."}`)).
		On("POST", "/api/v1/idm/password-reset/initiate/username", jsonResponse(200, `{"message":"Email sent."}`))
	setupTestEnvWithHandler(t, handler)

	t.Run("by email", func(t *testing.T) {
		output := captureStdout(t, func() {
			err := Execute(context.Background(), []string{"password-reset", "initiate", "--email", "alice@example.com"})
			require.NoError(t, err)
		})
		assert.Contains(t, output, "Email sent.")
		rec, ok := handler.last("POST", "/api/v1/idm/password-reset/initiate/email")
		require.True(t, ok)
		assert.Equal(t, "alice@example.com", rec.Body["email"])
	})

	t.Run("by username", func(t *testing.T) {
		_ = captureStdout(t, func() {
			err := Execute(context.Background(), []string{"pwreset", "initiate", "--username", "alice"})
			require.NoError(t, err)
		})
		rec, ok := handler.last("POST", "/api/v1/idm/password-reset/initiate/username")
		require.True(t, ok)
		assert.Equal(t, "alice", rec.Body["username"])
	})

	t.Run("both is a usage error", func(t *testing.T) {
		err := Execute(context.Background(), []string{"password-reset", "initiate", "--email", "a@example.com", "--username", "alice"})
		require.Error(t, err)
		assert.Equal(t, exitUsage, ExitCode(err))
	})
}

func TestPasswordResetReset_TokenPolicy(t *testing.T) {
	var policyToken atomic.Value
	handler := newRouteHandler().
		On("GET", "/api/v1/idm/password-reset/policy", func(w http.ResponseWriter, r *http.Request) {
			policyToken.Store(r.URL.Query().Get("token"))
			jsonResponse(200, `{"min_length": 8}`)(w, r)
		}).
		On("POST", "/api/v1/idm/password-reset/reset", jsonResponse(200, `{"message":"Password has been reset."}`))
	setupTestEnvWithHandler(t, handler)

	withStdin(t, "long-enough-pw\n", func() {
		output := captureStdout(t, func() {
			err := Execute(context.Background(), []string{"password-reset", "reset", "--token", "tok-1", "--new-password-stdin"})
			require.NoError(t, err)
		})
		assert.Contains(t, output, "Password has been reset.")
	})

	assert.Equal(t, "tok-1", policyToken.Load())
	rec, ok := handler.last("POST", "/api/v1/idm/password-reset/reset")
	require.True(t, ok)
	assert.Equal(t, "tok-1", rec.Body["token"])
	assert.Equal(t, "long-enough-pw", rec.Body["new_password"])
}

func TestPasswordResetPolicy_Cached(t *testing.T) {
	var calls atomic.Int32
	handler := newRouteHandler().
		On("GET", "/api/v1/idm/password-reset/policy", func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			jsonResponse(200, `{"min_length": 12, "require_digit": true}`)(w, r)
		})
	setupTestEnvWithHandler(t, handler)

	output := captureStdout(t, func() {
		err := Execute(context.Background(), []string{"password-reset", "policy"})
		require.NoError(t, err)
	})
	assert.Contains(t, output, "Minimum length:")
	assert.Contains(t, output, "12")

	stderr := captureStderr(t, func() {
		output = captureStdout(t, func() {
			err := Execute(context.Background(), []string{"password-reset", "policy", "-o", "json"})
			require.NoError(t, err)
		})
	})
	assert.Contains(t, stderr, "Using cached password policy")
	var policy map[string]any
	require.NoError(t, json.Unmarshal([]byte(output), &policy))
	assert.Equal(t, float64(12), policy["min_length"])
	assert.Equal(t, int32(1), calls.Load())

	_ = captureStdout(t, func() {
		err := Execute(context.Background(), []string{"password-reset", "policy", "--no-cache"})
		require.NoError(t, err)
	})
	assert.Equal(t, int32(2), calls.Load())
}

func TestPasswordResetPolicy_TokenNotCached(t *testing.T) {
	var calls atomic.Int32
	handler := newRouteHandler().
		On("GET", "/api/v1/idm/password-reset/policy", func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			jsonResponse(200, `{"min_length": 8}`)(w, r)
		})
	setupTestEnvWithHandler(t, handler)

	for range 2 {
		_ = captureStdout(t, func() {
			err := Execute(context.Background(), []string{"password-reset", "policy", "--token", "tok"})
			require.NoError(t, err)
		})
	}
	assert.Equal(t, int32(2), calls.Load())
}

func TestPasswordResetReset_PolicyWithoutBody(t *testing.T) {
	handler := newRouteHandler().
		On("GET", "/api/v1/idm/password-reset/policy", jsonResponse(204, ``)).
		On("POST", "/api/v1/idm/password-reset/reset", jsonResponse(204, ``))
	setupTestEnvWithHandler(t, handler)

	withStdin(t, "x\n", func() {
		output := captureStdout(t, func() {
			err := Execute(context.Background(), []string{"password-reset", "reset", "--token", "tok-1", "--new-password-stdin"})
			require.NoError(t, err)
		})
		assert.Contains(t, output, "Password has been reset.")
	})
	_, ok := handler.last("POST", "/api/v1/idm/password-reset/reset")
	assert.True(t, ok)
}
