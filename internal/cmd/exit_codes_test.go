package cmd

import (
	"errors"
	"fmt"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"

	"github.com/idmkit/idm-cli/internal/api"
	"github.com/idmkit/idm-cli/internal/config"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: exitOK},
		{name: "help", err: pflag.ErrHelp, want: exitOK},
		{name: "handled", err: &handledError{err: errors.New("x"), exitCode: exitNotFound}, want: exitNotFound},
		{name: "not configured", err: config.ErrNotConfigured, want: exitConfig},
		{name: "profile not found", err: fmt.Errorf("%w: prod", config.ErrProfileNotFound), want: exitConfig},
		{name: "invalid profile", err: fmt.Errorf("%w: base_url", config.ErrInvalidProfile), want: exitConfig},
		{name: "config error", err: &api.ConfigError{Field: "auth", Reason: "prefix is empty"}, want: exitConfig},
		{name: "401", err: &api.APIError{StatusCode: 401}, want: exitAuth},
		{name: "403", err: &api.APIError{StatusCode: 403}, want: exitForbidden},
		{name: "404", err: &api.APIError{StatusCode: 404}, want: exitNotFound},
		{name: "409", err: &api.APIError{StatusCode: 409}, want: exitUsage},
		{name: "422", err: &api.APIError{StatusCode: 422}, want: exitUsage},
		{name: "429", err: &api.APIError{StatusCode: 429}, want: exitRateLimited},
		{name: "502", err: &api.APIError{StatusCode: 502}, want: exitServer},
		{name: "network", err: &api.APIError{StatusCode: 0, Message: "connection refused"}, want: exitNetwork},
		{name: "validation", err: api.NewStructuredError(api.ErrValidation, "bad"), want: exitUsage},
		{name: "required flag", err: errors.New(`required flag(s) "username" not set`), want: exitUsage},
		{name: "unknown command", err: errors.New(`unknown command "x" for "idm"`), want: exitUsage},
		{name: "generic", err: errors.New("boom"), want: exitGeneric},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}
