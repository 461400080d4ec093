package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrorCode is the stable name of a failure class. idm prints it in JSON
// errors and derives its exit status from it.
type ErrorCode string

const (
	// ErrBadRequest: the IDM server rejected the payload (HTTP 400).
	ErrBadRequest ErrorCode = "bad_request"
	// ErrUnauthorized: no session cookie, or the session expired (HTTP 401).
	ErrUnauthorized ErrorCode = "unauthorized"
	// ErrForbidden: the session is valid but the account may not do this (HTTP 403).
	ErrForbidden ErrorCode = "forbidden"
	// ErrNotFound: usually a route prefix the server does not serve (HTTP 404).
	ErrNotFound ErrorCode = "not_found"
	// ErrConflict: a username, email or phone already belongs to another account (HTTP 409).
	ErrConflict ErrorCode = "conflict"
	// ErrValidation: a payload or password policy check failed, locally or as HTTP 422.
	ErrValidation ErrorCode = "validation_failed"
	// ErrRateLimited: too many login, code or reset attempts (HTTP 429).
	ErrRateLimited ErrorCode = "rate_limited"
	// ErrServerError: HTTP 5xx.
	ErrServerError ErrorCode = "server_error"
	// ErrNetwork: no HTTP response; the APIError carries status 0.
	ErrNetwork ErrorCode = "network_error"
	// ErrConfig: the profile, flags or prefix table could not build a client.
	ErrConfig ErrorCode = "config_error"
	// ErrUnknown: anything else.
	ErrUnknown ErrorCode = "unknown"
)

// IsRetryable reports whether running the same command again may succeed.
// The client itself never retries.
func (c ErrorCode) IsRetryable() bool {
	switch c {
	case ErrRateLimited, ErrServerError, ErrNetwork:
		return true
	default:
		return false
	}
}

// Suggestion is the one-line hint printed under a JSON or text error.
func (c ErrorCode) Suggestion() string {
	switch c {
	case ErrUnauthorized:
		return "Run 'idm login' to start a session"
	case ErrForbidden:
		return "This account is not allowed to perform the operation"
	case ErrNotFound:
		return "Check the route prefixes with 'idm prefixes'"
	case ErrRateLimited:
		return "Too many attempts; wait before requesting another code or login"
	case ErrValidation:
		return "Check the values against 'idm password-reset policy' and the command help"
	case ErrBadRequest:
		return "The server rejected the request; check the flags and the API version"
	case ErrConflict:
		return "That username, email or phone is already registered; choose another or sign in"
	case ErrServerError:
		return "The IDM server failed; try again later or check its logs with the request ID"
	case ErrNetwork:
		return "Check the base URL and network connectivity"
	case ErrConfig:
		return "Check the profile with 'idm config show'"
	default:
		return ""
	}
}

// ErrorCodeFromStatus maps an HTTP status code to an ErrorCode. Status 0 is
// the client's marker for failures without a response.
func ErrorCodeFromStatus(statusCode int) ErrorCode {
	switch statusCode {
	case 0:
		return ErrNetwork
	case 400:
		return ErrBadRequest
	case 401:
		return ErrUnauthorized
	case 403:
		return ErrForbidden
	case 404:
		return ErrNotFound
	case 409:
		return ErrConflict
	case 422:
		return ErrValidation
	case 429:
		return ErrRateLimited
	default:
		if statusCode >= 500 && statusCode < 600 {
			return ErrServerError
		}
		return ErrUnknown
	}
}

// StructuredError is the JSON error document written to stderr with
// --output json. Context carries the HTTP status, request ID, operation and
// server error code when they are known.
type StructuredError struct {
	Code          ErrorCode      `json:"code"`
	Message       string         `json:"message"`
	Retryable     bool           `json:"retryable"`
	Suggestion    string         `json:"suggestion,omitempty"`
	Context       map[string]any `json:"context,omitempty"`
	AllowedValues []string       `json:"allowed_values,omitempty"`
}

func (e *StructuredError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// MarshalJSON encodes the fields without recursing into this method.
func (e *StructuredError) MarshalJSON() ([]byte, error) {
	type Alias StructuredError
	return json.Marshal((*Alias)(e))
}

// NewStructuredError builds a local failure, such as a policy violation or
// "not signed in", with the code's default hint.
func NewStructuredError(code ErrorCode, message string) *StructuredError {
	return &StructuredError{
		Code:       code,
		Message:    message,
		Retryable:  code.IsRetryable(),
		Suggestion: code.Suggestion(),
	}
}

// NewValidationError reports a flag value outside a fixed set, such as a 2FA
// type, and lists the accepted values.
func NewValidationError(field string, got string, allowed []string) *StructuredError {
	return &StructuredError{
		Code:          ErrValidation,
		Message:       fmt.Sprintf("invalid %s %q: must be one of %s", field, got, strings.Join(allowed, ", ")),
		Retryable:     false,
		Suggestion:    fmt.Sprintf("Use one of: %s", strings.Join(allowed, ", ")),
		AllowedValues: allowed,
		Context:       map[string]any{"field": field, "got": got},
	}
}

// StructuredErrorFromAPIError classifies an IDM response failure by status.
func StructuredErrorFromAPIError(apiErr *APIError) *StructuredError {
	code := ErrorCodeFromStatus(apiErr.StatusCode)
	ctx := map[string]any{
		"status_code": apiErr.StatusCode,
	}
	if apiErr.RequestID != "" {
		ctx["request_id"] = apiErr.RequestID
	}
	if apiErr.Operation != "" {
		ctx["operation"] = apiErr.Operation
	}
	if apiErr.Code != "" {
		ctx["server_code"] = apiErr.Code
	}
	return &StructuredError{
		Code:       code,
		Message:    apiErr.Message,
		Retryable:  code.IsRetryable(),
		Suggestion: code.Suggestion(),
		Context:    ctx,
	}
}

// StructuredErrorFromError classifies any error returned by a command.
func StructuredErrorFromError(err error) *StructuredError {
	if err == nil {
		return nil
	}

	var se *StructuredError
	if errors.As(err, &se) {
		return se
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return StructuredErrorFromAPIError(apiErr)
	}

	var cfgErr *ConfigError
	if errors.As(err, &cfgErr) {
		return &StructuredError{
			Code:       ErrConfig,
			Message:    cfgErr.Error(),
			Retryable:  false,
			Suggestion: ErrConfig.Suggestion(),
			Context:    map[string]any{"field": cfgErr.Field},
		}
	}

	return &StructuredError{
		Code:       ErrUnknown,
		Message:    err.Error(),
		Retryable:  false,
		Suggestion: "",
	}
}
