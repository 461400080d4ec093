package debug

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestWithDebug(t *testing.T) {
	ctx := WithDebug(context.Background(), true)
	if !IsEnabled(ctx) {
		t.Error("IsEnabled should return true when debug is enabled")
	}
}

func TestIsEnabled_DefaultFalse(t *testing.T) {
	if IsEnabled(context.Background()) {
		t.Error("IsEnabled should return false by default")
	}
}

func TestWithDebug_Disabled(t *testing.T) {
	ctx := WithDebug(context.Background(), false)
	if IsEnabled(ctx) {
		t.Error("IsEnabled should return false when debug is disabled")
	}
}

func TestSetupLogger_Levels(t *testing.T) {
	SetupLogger(true)
	if !slog.Default().Enabled(context.Background(), slog.LevelDebug) {
		t.Error("SetupLogger(true) should enable debug level logging")
	}

	SetupLogger(false)
	if slog.Default().Enabled(context.Background(), slog.LevelDebug) {
		t.Error("SetupLogger(false) should disable debug level logging")
	}
	if !slog.Default().Enabled(context.Background(), slog.LevelWarn) {
		t.Error("SetupLogger(false) should enable warn level logging")
	}
}

func TestNewLogger_Redacts(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, Options{Debug: true, JSON: true})

	logger.Debug("login", "username", "ada", "password", "hunter2", "reset_token", "abc", "op", "login")

	out := buf.String()
	if strings.Contains(out, "hunter2") || strings.Contains(out, "abc\"") {
		t.Errorf("secrets leaked: %s", out)
	}
	if !strings.Contains(out, `"username":"ada"`) {
		t.Errorf("expected username in output: %s", out)
	}
	if !strings.Contains(out, `"password":"[REDACTED]"`) {
		t.Errorf("expected redacted password: %s", out)
	}
}
