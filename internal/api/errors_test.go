package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestAPIError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *APIError
		want string
	}{
		{"http", &APIError{StatusCode: 404, Message: "Not Found"}, "API error (status 404): Not Found"},
		{"with code", &APIError{StatusCode: 409, Message: "taken", Code: "USERNAME_TAKEN"}, "API error (status 409, USERNAME_TAKEN): taken"},
		{"network", &APIError{StatusCode: 0, Message: "dial tcp: refused"}, "request failed: dial tcp: refused"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAPIError_Unwrap(t *testing.T) {
	inner := context.DeadlineExceeded
	err := newNetworkError("login", "req-1", inner)

	if !errors.Is(err, context.DeadlineExceeded) {
		t.Error("should unwrap to the cause")
	}
	if !IsTransportError(err) {
		t.Error("deadline should count as a transport error")
	}
	if err.Message != inner.Error() {
		t.Errorf("Message = %q, want %q", err.Message, inner.Error())
	}
}

func TestNewNetworkError_EmptyCause(t *testing.T) {
	err := newNetworkError("login", "", nil)
	if err.Message == "" {
		t.Error("network errors must carry a message")
	}
}

func TestErrorHelpers_Wrapped(t *testing.T) {
	unauthorized := fmt.Errorf("whoami: %w", &APIError{StatusCode: http.StatusUnauthorized})
	notFound := fmt.Errorf("policy: %w", &APIError{StatusCode: http.StatusNotFound})
	cfgErr := fmt.Errorf("new client: %w", &ConfigError{Field: "auth", Reason: "prefix is empty"})

	if !IsUnauthorized(unauthorized) || IsUnauthorized(notFound) {
		t.Error("IsUnauthorized mismatch")
	}
	if !IsNotFoundError(notFound) || IsNotFoundError(unauthorized) {
		t.Error("IsNotFoundError mismatch")
	}
	if !IsConfigError(cfgErr) || IsConfigError(notFound) {
		t.Error("IsConfigError mismatch")
	}
	if IsNetworkError(notFound) {
		t.Error("HTTP errors are not network errors")
	}
	if IsTransportError(nil) {
		t.Error("nil is not a transport error")
	}
}

func TestConfigError_Error(t *testing.T) {
	err := &ConfigError{Field: "twoFA", Value: "2fa", Reason: "prefix must start with /"}
	want := `invalid client configuration: twoFA "2fa": prefix must start with /`
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestStatusText(t *testing.T) {
	tests := []struct {
		status string
		code   int
		want   string
	}{
		{"401 Unauthorized", 401, "Unauthorized"},
		{"", 503, "Service Unavailable"},
		{"599", 599, "HTTP 599"},
	}
	for _, tt := range tests {
		got := statusText(&http.Response{Status: tt.status, StatusCode: tt.code})
		if got != tt.want {
			t.Errorf("statusText(%q) = %q, want %q", tt.status, got, tt.want)
		}
	}
}
