package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/idmkit/idm-cli/internal/api"
	"github.com/idmkit/idm-cli/internal/dryrun"
	"github.com/idmkit/idm-cli/internal/iocontext"
	"github.com/idmkit/idm-cli/internal/outfmt"
)

// errAlreadyHandled is a sentinel error indicating the error was already printed to stderr.
// Commands using RunE return this to signal Cobra that an error occurred (for exit code)
// without Cobra printing it again (since SilenceErrors is true on root command).
var errAlreadyHandled = errors.New("error already handled")

type handledError struct {
	err      error
	exitCode int
}

func (e *handledError) Error() string {
	return e.err.Error()
}

func (e *handledError) Unwrap() error {
	return errAlreadyHandled
}

func (e *handledError) ExitCode() int {
	return e.exitCode
}

// RunE wraps a command function with enhanced error handling
func RunE(fn func(cmd *cobra.Command, args []string) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		err := fn(cmd, args)
		var skipped *dryrun.SkippedError
		if errors.As(err, &skipped) {
			return writePreview(cmd, skipped.Preview)
		}
		if err != nil {
			if isJSON(cmd) {
				if structured := api.StructuredErrorFromError(err); structured != nil {
					_ = printJSONErr(cmd, structured)
				}
			} else {
				_, _ = fmt.Fprint(cmd.ErrOrStderr(), HandleError(err))
			}
			// Keep the original error reachable for tests.
			return &handledError{err: err, exitCode: ExitCode(err)}
		}
		return nil
	}
}

// writePreview renders a request that --dry-run kept from being sent.
func writePreview(cmd *cobra.Command, preview *dryrun.Preview) error {
	if isJSON(cmd) {
		return printJSON(cmd, map[string]any{
			"dry_run":  true,
			"method":   preview.Method,
			"url":      preview.URL,
			"body":     preview.Body,
			"warnings": preview.Warnings,
		})
	}
	preview.Write(iocontext.GetIO(cmdContext(cmd)).Out)
	return nil
}

func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// isJSON checks if the command context wants JSON output
func isJSON(cmd *cobra.Command) bool {
	return outfmt.IsJSON(cmdContext(cmd))
}

func formatter(cmd *cobra.Command) *outfmt.Formatter {
	ioStreams := iocontext.GetIO(cmdContext(cmd))
	return outfmt.NewFormatter(cmdContext(cmd), ioStreams.Out, ioStreams.ErrOut)
}

// printJSON outputs data as JSON with optional query filtering
func printJSON(cmd *cobra.Command, v any) error {
	ctx := cmdContext(cmd)
	ioStreams := iocontext.GetIO(ctx)
	return outfmt.WriteJSONFiltered(ioStreams.Out, v, outfmt.GetQuery(ctx), outfmt.IsCompact(ctx))
}

// printJSONErr writes a JSON value to stderr.
func printJSONErr(cmd *cobra.Command, v any) error {
	ioStreams := iocontext.GetIO(cmdContext(cmd))
	return outfmt.WriteJSON(ioStreams.ErrOut, v)
}

// printMessage writes the server's acknowledgement: the whole response in
// JSON mode, or the message (or fallback) as one line in text mode.
func printMessage(cmd *cobra.Command, v any, message, fallback string) error {
	if isJSON(cmd) {
		return printJSON(cmd, v)
	}
	if strings.TrimSpace(message) == "" {
		message = fallback
	}
	if message == "" || outfmt.IsQuiet(cmdContext(cmd)) {
		return nil
	}
	_, _ = fmt.Fprintln(iocontext.GetIO(cmdContext(cmd)).Out, message)
	return nil
}

// validateInput runs a payload's local checks before it is sent.
func validateInput(v interface{ Validate() error }) error {
	if err := v.Validate(); err != nil {
		return api.NewStructuredError(api.ErrValidation, err.Error())
	}
	return nil
}

func validateEmail(email string) error {
	if err := api.ValidateEmail(email); err != nil {
		return api.NewStructuredError(api.ErrValidation, err.Error())
	}
	return nil
}

// resolveSecret returns the flag value, or reads it from stdin when
// fromStdin is set. Exactly one source must be given.
func resolveSecret(cmd *cobra.Command, name, value string, fromStdin bool) (string, error) {
	if fromStdin {
		if value != "" {
			return "", fmt.Errorf("--%s and --%s-stdin cannot be used together", name, name)
		}
		return iocontext.GetIO(cmdContext(cmd)).ReadSecret(name)
	}
	if value == "" {
		return "", fmt.Errorf("--%s or --%s-stdin is required", name, name)
	}
	return value, nil
}

// orZero stands in an empty value for a response that carried no payload.
func orZero[T any](v *T) *T {
	if v == nil {
		return new(T)
	}
	return v
}

func boolLabel(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

func dashIfEmpty(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
