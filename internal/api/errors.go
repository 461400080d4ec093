package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// APIError is the single error shape returned by every client operation.
// StatusCode is 0 when the request never produced an HTTP response.
type APIError struct {
	Message    string
	StatusCode int
	Code       string
	RequestID  string
	Operation  string
	Err        error
}

func (e *APIError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("request failed: %s", e.Message)
	}
	if e.Code != "" {
		return fmt.Sprintf("API error (status %d, %s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("API error (status %d): %s", e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// ConfigError is returned by New when the resolved prefix table is invalid.
// It is never reported to an Observer.
type ConfigError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("invalid client configuration: %s %q: %s", e.Field, e.Value, e.Reason)
	}
	return fmt.Sprintf("invalid client configuration: %s: %s", e.Field, e.Reason)
}

// IsUnauthorized reports whether err is a 401 APIError.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}

// IsNotFoundError reports whether err is a 404 APIError.
func IsNotFoundError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// IsNetworkError reports whether err is an APIError raised before any HTTP
// response was received.
func IsNetworkError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == 0
}

// IsConfigError reports whether err is a ConfigError.
func IsConfigError(err error) bool {
	var cfgErr *ConfigError
	return errors.As(err, &cfgErr)
}

// IsTransportError reports whether the cause of err is a network level
// failure (DNS, refused connection, deadline) rather than a decode failure.
func IsTransportError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}

// serverError is the error body the IDM server sends; message and error are
// used interchangeably across server versions.
type serverError struct {
	Message string `json:"message"`
	Error   string `json:"error"`
	Code    string `json:"code"`
}

// statusText returns the reason phrase of an HTTP status line, e.g.
// "Unauthorized" for "401 Unauthorized".
func statusText(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	if text == "" {
		text = fmt.Sprintf("HTTP %d", resp.StatusCode)
	}
	return text
}

func newNetworkError(op string, requestID string, err error) *APIError {
	msg := "request failed"
	if err != nil && strings.TrimSpace(err.Error()) != "" {
		msg = err.Error()
	}
	return &APIError{
		Message:    msg,
		StatusCode: 0,
		RequestID:  requestID,
		Operation:  op,
		Err:        err,
	}
}
