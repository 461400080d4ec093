package cmd

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idmkit/idm-cli/internal/api"
)

func TestParseTwoFactorType(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{input: "totp", want: "totp"},
		{input: "TOTP", want: "totp"},
		{input: " sms ", want: "sms"},
		{input: "em", want: "email"},
		{input: "yubikey", wantErr: true},
		{input: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseTwoFactorType(tt.input, api.TwoFactorTypes)
			if tt.wantErr {
				require.Error(t, err)
				var se *api.StructuredError
				require.ErrorAs(t, err, &se)
				assert.Equal(t, api.ErrValidation, se.Code)
				assert.Equal(t, api.TwoFactorTypes, se.AllowedValues)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTwoFAStatus(t *testing.T) {
	handler := newRouteHandler().
		On("GET", "/api/v1/idm/2fa/status", jsonResponse(200, `{
			"enabled": true,
			"count": 1,
			"methods": [{"two_factor_id":"tf-1","type":"totp","enabled":true}]
		}`))
	setupTestEnvWithHandler(t, handler)

	output := captureStdout(t, func() {
		err := Execute(context.Background(), []string{"2fa", "status"})
		require.NoError(t, err)
	})

	assert.Contains(t, output, "2FA enabled:")
	assert.Contains(t, output, "TYPE")
	assert.Contains(t, output, "totp")
	assert.Contains(t, output, "tf-1")
}

func TestTwoFAEnable(t *testing.T) {
	handler := newRouteHandler().
		On("POST", "/api/v1/idm/2fa/enable", jsonResponse(200, `{"status":"ok"}`))
	setupTestEnvWithHandler(t, handler)

	output := captureStdout(t, func() {
		err := Execute(context.Background(), []string{"mfa", "enable", "--type", "TOTP", "--code", "123456"})
		require.NoError(t, err)
	})

	assert.Contains(t, output, "Two-factor method totp enabled.")
	rec, ok := handler.last("POST", "/api/v1/idm/2fa/enable")
	require.True(t, ok)
	assert.Equal(t, "totp", rec.Body["twofa_type"])
	assert.Equal(t, "123456", rec.Body["code"])
}

func TestTwoFADisable_EscapesType(t *testing.T) {
	handler := newRouteHandler().
		On("POST", "/api/v1/idm/2fa/sms/disable", jsonResponse(200, `{"message":"SMS disabled."}`))
	setupTestEnvWithHandler(t, handler)

	output := captureStdout(t, func() {
		err := Execute(context.Background(), []string{"2fa", "disable", "SMS"})
		require.NoError(t, err)
	})
	assert.Contains(t, output, "SMS disabled.")
}

func TestTwoFASendCode_RejectsTOTP(t *testing.T) {
	handler := newRouteHandler()
	setupTestEnvWithHandler(t, handler)

	stderr := captureStderr(t, func() {
		err := Execute(context.Background(), []string{"2fa", "send-code", "--type", "totp"})
		require.Error(t, err)
		assert.Equal(t, exitUsage, ExitCode(err))
	})
	assert.Contains(t, stderr, "must be one of email, sms")
	assert.Zero(t, handler.count())
}

func TestTwoFAValidate(t *testing.T) {
	handler := newRouteHandler().
		On("POST", "/api/v1/idm/2fa/validate", jsonResponse(200, `{"status":"success","user":{"id":"u-1","username":"alice"}}`))
	setupTestEnvWithHandler(t, handler)

	output := captureStdout(t, func() {
		err := Execute(context.Background(), []string{"2fa", "validate", "--type", "email", "--code", "654321", "-o", "json"})
		require.NoError(t, err)
	})

	var resp map[string]any
	require.NoError(t, json.Unmarshal([]byte(output), &resp))
	assert.Equal(t, "success", resp["status"])

	rec, ok := handler.last("POST", "/api/v1/idm/2fa/validate")
	require.True(t, ok)
	assert.Equal(t, "email", rec.Body["twofa_type"])
	assert.Equal(t, "654321", rec.Body["passcode"])
}

func TestTwoFAValidate_NonNumericCode(t *testing.T) {
	handler := newRouteHandler()
	setupTestEnvWithHandler(t, handler)

	_ = captureStderr(t, func() {
		err := Execute(context.Background(), []string{"2fa", "validate", "--type", "totp", "--code", "abcdef"})
		require.Error(t, err)
		assert.Equal(t, exitUsage, ExitCode(err))
	})
	assert.Zero(t, handler.count())
}
