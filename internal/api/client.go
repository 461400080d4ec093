package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/publicsuffix"

	"github.com/idmkit/idm-cli/internal/debug"
)

// DefaultTimeout is applied by New only when it builds its own http.Client.
const DefaultTimeout = 30 * time.Second

// Config is the caller-owned record New consumes. Exactly one of BasePrefix,
// APIVersion or UseLegacyPrefixes normally seeds the prefix table; Prefixes
// is merged on top of whichever tier wins.
type Config struct {
	// BaseURL is prepended to every path. Empty sends relative URLs, which
	// only a custom transport can serve.
	BaseURL           string
	BasePrefix        string
	APIVersion        string
	UseLegacyPrefixes bool
	Prefixes          map[RouteGroup]string

	Observer   Observer
	HTTPClient *http.Client
	// Headers are applied after the JSON defaults and may override them.
	Headers   http.Header
	UserAgent string
}

// Client is the IDM API client. It keeps no session state of its own: the
// server's cookies are carried by the http.Client's jar. The prefix table is
// fixed at construction so a Client is safe for concurrent use.
type Client struct {
	BaseURL   string
	HTTP      *http.Client
	UserAgent string

	headers  http.Header
	prefixes PrefixConfig
	observer Observer
}

// Compile-time interface implementation checks
var (
	_ Requester    = (*Client)(nil)
	_ PathResolver = (*Client)(nil)
	_ HTTPExecutor = (*Client)(nil)
)

// New resolves the prefix table and returns a ready client. A table that
// fails validation is reported as *ConfigError and no client is built.
func New(cfg Config) (*Client, error) {
	prefixes, err := ResolvePrefixes(PrefixOptions{
		BasePrefix:        cfg.BasePrefix,
		APIVersion:        cfg.APIVersion,
		UseLegacyPrefixes: cfg.UseLegacyPrefixes,
		Overrides:         cfg.Prefixes,
	})
	if err != nil {
		return nil, err
	}

	httpClient, err := withCookieJar(cfg.HTTPClient)
	if err != nil {
		return nil, err
	}

	observer := cfg.Observer
	if observer == nil {
		observer = noopObserver{}
	}

	return &Client{
		BaseURL:   strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		HTTP:      httpClient,
		UserAgent: cfg.UserAgent,
		headers:   cfg.Headers.Clone(),
		prefixes:  prefixes,
		observer:  observer,
	}, nil
}

// withCookieJar returns a client that always has a cookie jar. A caller's
// client is copied rather than modified.
func withCookieJar(base *http.Client) (*http.Client, error) {
	var hc http.Client
	if base != nil {
		hc = *base
	} else {
		hc.Timeout = DefaultTimeout
	}
	if hc.Jar == nil {
		jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
		if err != nil {
			return nil, fmt.Errorf("failed to create cookie jar: %w", err)
		}
		hc.Jar = jar
	}
	return &hc, nil
}

// Prefixes returns a copy of the resolved prefix table.
func (c *Client) Prefixes() PrefixConfig {
	return c.prefixes
}

// prefix returns the resolved prefix joined with path.
func (c *Client) prefix(group RouteGroup, path string) string {
	if path != "" && path[0] != '/' {
		path = "/" + path
	}
	return c.prefixes.Get(group) + path
}

// ExpandPath replaces {group} placeholders such as {auth} or {twoFA} with
// their resolved prefixes.
func (c *Client) ExpandPath(path string) string {
	for _, group := range RouteGroups {
		path = strings.ReplaceAll(path, "{"+string(group)+"}", c.prefixes.Get(group))
	}
	if path != "" && path[0] != '/' {
		path = "/" + path
	}
	return path
}

// Do sends one request to an arbitrary path, expanding {group} placeholders.
// It follows the same error and notification rules as the typed methods.
func (c *Client) Do(ctx context.Context, method, path string, body any, result any) error {
	return c.do(ctx, "raw", strings.ToUpper(method), c.ExpandPath(path), body, result)
}

// do is the single dispatch routine every operation goes through.
func (c *Client) do(ctx context.Context, op, method, path string, body any, result any) error {
	requestID := uuid.NewString()
	start := time.Now()

	status, apiErr := c.roundTrip(ctx, op, requestID, method, path, body, result)
	duration := time.Since(start)

	if debug.IsEnabled(ctx) {
		slog.Debug("request complete", "op", op, "method", method, "path", path, "status", status, "request_id", requestID, "duration", duration)
	}

	if rto, ok := c.observer.(RoundTripObserver); ok {
		rt := RoundTrip{Operation: op, Method: method, Path: path, StatusCode: status, Duration: duration}
		if apiErr != nil {
			rt.Err = apiErr
		}
		rto.OnRoundTrip(ctx, rt)
	}

	if apiErr == nil {
		return nil
	}
	if apiErr.StatusCode == http.StatusUnauthorized {
		c.observer.OnUnauthorized(ctx, apiErr)
	} else {
		c.observer.OnError(ctx, apiErr)
	}
	return apiErr
}

func (c *Client) roundTrip(ctx context.Context, op, requestID, method, path string, body any, result any) (int, *APIError) {
	var bodyReader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return 0, newNetworkError(op, requestID, fmt.Errorf("failed to marshal request body: %w", err))
		}
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, bodyReader)
	if err != nil {
		return 0, newNetworkError(op, requestID, fmt.Errorf("failed to create request: %w", err))
	}
	c.applyHeaders(ctx, req, requestID)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		if debug.IsEnabled(ctx) {
			slog.Debug("request failed", "op", op, "method", method, "path", path, "error", err)
		}
		return 0, newNetworkError(op, requestID, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return resp.StatusCode, nil
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp.StatusCode, decodeErrorResponse(op, requestID, resp)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, newNetworkError(op, requestID, fmt.Errorf("failed to read response: %w", err))
	}
	if result != nil && len(bytes.TrimSpace(data)) > 0 {
		if err := json.Unmarshal(data, result); err != nil {
			return 0, newNetworkError(op, requestID, fmt.Errorf("unexpected API response format (JSON decode failed): %w", err))
		}
	}
	return resp.StatusCode, nil
}

func (c *Client) applyHeaders(ctx context.Context, req *http.Request, requestID string) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	req.Header.Set("X-Request-Id", requestID)
	injectTraceparent(ctx, req)
	for key, values := range c.headers {
		req.Header.Del(key)
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
}

// decodeErrorResponse never fails: a body that is not JSON, or JSON without
// a message, falls back to the status line text.
func decodeErrorResponse(op, requestID string, resp *http.Response) *APIError {
	apiErr := &APIError{
		Message:    statusText(resp),
		StatusCode: resp.StatusCode,
		RequestID:  requestID,
		Operation:  op,
	}
	if id := resp.Header.Get("X-Request-Id"); id != "" {
		apiErr.RequestID = id
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil || len(bytes.TrimSpace(data)) == 0 {
		return apiErr
	}
	var body serverError
	if err := json.Unmarshal(data, &body); err != nil {
		return apiErr
	}
	switch {
	case strings.TrimSpace(body.Message) != "":
		apiErr.Message = body.Message
	case strings.TrimSpace(body.Error) != "":
		apiErr.Message = body.Error
	}
	apiErr.Code = body.Code
	return apiErr
}
