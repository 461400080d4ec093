package cmd

import (
	"context"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idmkit/idm-cli/internal/api"
	"github.com/idmkit/idm-cli/internal/iocontext"
)

func testCmd(in string) *cobra.Command {
	cmd := &cobra.Command{}
	ctx := iocontext.WithIO(context.Background(), &iocontext.IO{
		In:     strings.NewReader(in),
		Out:    &strings.Builder{},
		ErrOut: &strings.Builder{},
	})
	cmd.SetContext(ctx)
	return cmd
}

func TestResolveSecret(t *testing.T) {
	got, err := resolveSecret(testCmd(""), "password", "flag-value", false)
	require.NoError(t, err)
	assert.Equal(t, "flag-value", got)

	got, err = resolveSecret(testCmd("piped\r\n"), "password", "", true)
	require.NoError(t, err)
	assert.Equal(t, "piped", got)

	_, err = resolveSecret(testCmd(""), "password", "x", true)
	require.ErrorContains(t, err, "cannot be used together")

	_, err = resolveSecret(testCmd(""), "password", "", false)
	require.ErrorContains(t, err, "--password or --password-stdin is required")

	_, err = resolveSecret(testCmd("\n"), "password", "", true)
	require.ErrorContains(t, err, "empty")
}

func TestValidateInput(t *testing.T) {
	err := validateInput(api.LoginRequest{Username: "alice"})
	var se *api.StructuredError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, api.ErrValidation, se.Code)

	assert.NoError(t, validateInput(api.LoginRequest{Username: "alice", Password: "pw"}))
}

func TestPrintMessage(t *testing.T) {
	cmd := testCmd("")
	require.NoError(t, printMessage(cmd, map[string]string{"message": ""}, "", "Fallback."))
	out := iocontext.GetIO(cmd.Context()).Out.(*strings.Builder)
	assert.Equal(t, "Fallback.\n", out.String())
}

func TestDashIfEmpty(t *testing.T) {
	assert.Equal(t, "-", dashIfEmpty("  "))
	assert.Equal(t, "x", dashIfEmpty("x"))
	assert.Equal(t, "yes", boolLabel(true))
}
