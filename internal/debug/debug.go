// Package debug carries the --debug switch through contexts and configures
// the process logger.
package debug

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

type contextKey struct{}

// WithDebug returns a context with debug mode enabled/disabled.
func WithDebug(ctx context.Context, enabled bool) context.Context {
	return context.WithValue(ctx, contextKey{}, enabled)
}

// IsEnabled returns true if debug mode is enabled in the context.
func IsEnabled(ctx context.Context) bool {
	if ctx == nil {
		return false
	}
	if v, ok := ctx.Value(contextKey{}).(bool); ok {
		return v
	}
	return false
}

// Options controls the logger built by NewLogger.
type Options struct {
	Debug bool
	// JSON selects slog's JSON handler; used when the CLI prints JSON.
	JSON bool
}

// SetupLogger configures slog on stderr based on debug mode.
func SetupLogger(debugEnabled bool) {
	slog.SetDefault(NewLogger(os.Stderr, Options{Debug: debugEnabled}))
}

// NewLogger builds a logger that redacts credential-bearing attributes.
func NewLogger(w io.Writer, opts Options) *slog.Logger {
	level := slog.LevelWarn
	if opts.Debug {
		level = slog.LevelDebug
	}
	handlerOpts := &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: redact,
	}
	if opts.JSON {
		return slog.New(slog.NewJSONHandler(w, handlerOpts))
	}
	return slog.New(slog.NewTextHandler(w, handlerOpts))
}

var sensitiveKeys = []string{"password", "passcode", "token", "secret", "cookie"}

func redact(_ []string, a slog.Attr) slog.Attr {
	key := strings.ToLower(a.Key)
	for _, s := range sensitiveKeys {
		if key == s || strings.HasSuffix(key, "_"+s) {
			return slog.String(a.Key, "[REDACTED]")
		}
	}
	return a
}
