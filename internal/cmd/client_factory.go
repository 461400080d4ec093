package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/idmkit/idm-cli/internal/api"
	"github.com/idmkit/idm-cli/internal/cache"
	"github.com/idmkit/idm-cli/internal/config"
	"github.com/idmkit/idm-cli/internal/dryrun"
	"github.com/idmkit/idm-cli/internal/resolve"
	"github.com/idmkit/idm-cli/internal/validation"
)

type clientFactory struct {
	timeout   time.Duration
	userAgent string
	observer  api.Observer
	dryRun    bool
}

func newClientFactory() *clientFactory {
	observers := []api.Observer{logObserver{}}
	if clientMetrics != nil {
		observers = append(observers, clientMetrics)
	}
	return &clientFactory{
		timeout:   flags.Timeout,
		userAgent: fmt.Sprintf("idm-cli/%s", version),
		observer:  api.MultiObserver(observers...),
		dryRun:    flags.DryRun,
	}
}

// getClient resolves the connection settings and builds a client
func getClient() (*api.Client, config.ClientConfig, error) {
	return newClientFactory().client()
}

// resolveConfig merges profile, environment and flags.
func (f *clientFactory) resolveConfig() (config.ClientConfig, error) {
	overrides, err := flagOverrides()
	if err != nil {
		return config.ClientConfig{}, err
	}
	return config.Resolve(overrides)
}

func (f *clientFactory) client() (*api.Client, config.ClientConfig, error) {
	cfg, err := f.resolveConfig()
	if err != nil {
		return nil, cfg, err
	}
	if err := validation.ValidateBaseURL(cfg.BaseURL); err != nil {
		return nil, cfg, &api.ConfigError{Field: "base_url", Value: cfg.BaseURL, Reason: err.Error()}
	}

	prefixes, err := routePrefixes(cfg.Prefixes)
	if err != nil {
		return nil, cfg, err
	}

	client, err := api.New(api.Config{
		BaseURL:           cfg.BaseURL,
		BasePrefix:        cfg.BasePrefix,
		APIVersion:        cfg.APIVersion,
		UseLegacyPrefixes: cfg.LegacyPrefixes,
		Prefixes:          prefixes,
		Observer:          f.observer,
		HTTPClient:        f.httpClient(),
		UserAgent:         f.userAgent,
	})
	if err != nil {
		return nil, cfg, err
	}

	cookies, err := parseSessionCookies(flags.SessionCookies)
	if err != nil {
		return nil, cfg, err
	}
	if len(cookies) > 0 {
		u, err := url.Parse(client.BaseURL)
		if err != nil {
			return nil, cfg, fmt.Errorf("invalid base URL: %w", err)
		}
		client.HTTP.Jar.SetCookies(u, cookies)
	}
	return client, cfg, nil
}

func (f *clientFactory) httpClient() *http.Client {
	hc := &http.Client{Timeout: f.timeout}
	if f.dryRun {
		hc.Transport = &dryrun.Transport{}
	}
	return hc
}

// cacheBackend opens the backend named by the resolved settings. The
// returned close func is never nil.
func (f *clientFactory) cacheBackend(ctx context.Context, profile config.Profile) (cache.Backend, func(), error) {
	switch profile.CacheBackend {
	case "redis":
		if strings.TrimSpace(profile.RedisURL) == "" {
			return nil, func() {}, fmt.Errorf("redis cache backend is missing a URL: set %s or the profile redis_url", config.EnvRedisURL)
		}
		rb, err := cache.NewRedisBackend(ctx, profile.RedisURL)
		if err != nil {
			return nil, func() {}, err
		}
		return rb, func() { _ = rb.Close() }, nil
	default:
		dir, err := cache.DefaultDir()
		if err != nil {
			return nil, func() {}, err
		}
		return cache.NewFileBackend(dir), func() {}, nil
	}
}

func flagOverrides() (config.Overrides, error) {
	prefixes, err := parsePrefixFlags(flags.Prefixes)
	if err != nil {
		return config.Overrides{}, err
	}
	o := config.Overrides{
		Profile:      flags.Profile,
		BaseURL:      flags.BaseURL,
		BasePrefix:   flags.BasePrefix,
		APIVersion:   flags.APIVersion,
		Prefixes:     prefixes,
		CacheBackend: flags.CacheBackend,
	}
	if flags.LegacyPrefixesSet {
		legacy := flags.LegacyPrefixes
		o.LegacyPrefixes = &legacy
	}
	return o, nil
}

func routeGroupNames() []string {
	names := make([]string, len(api.RouteGroups))
	for i, g := range api.RouteGroups {
		names[i] = string(g)
	}
	return names
}

// parsePrefixFlags turns repeated group=/path values into a map keyed by
// canonical route group name.
func parsePrefixFlags(values []string) (map[string]string, error) {
	if len(values) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(values))
	for _, raw := range values {
		name, path, ok := strings.Cut(raw, "=")
		name, path = strings.TrimSpace(name), strings.TrimSpace(path)
		if !ok || name == "" || path == "" {
			return nil, fmt.Errorf("invalid --prefix %q: expected group=/path", raw)
		}
		group, ok := api.ParseRouteGroup(name)
		if !ok {
			return nil, unknownGroupError(name)
		}
		if !strings.HasPrefix(path, "/") {
			return nil, fmt.Errorf("invalid --prefix %q: path must start with /", raw)
		}
		out[string(group)] = path
	}
	return out, nil
}

// routePrefixes converts stored override keys to route groups.
func routePrefixes(stored map[string]string) (map[api.RouteGroup]string, error) {
	if len(stored) == 0 {
		return nil, nil
	}
	out := make(map[api.RouteGroup]string, len(stored))
	for name, path := range stored {
		group, ok := api.ParseRouteGroup(name)
		if !ok {
			return nil, &api.ConfigError{Field: name, Reason: "unknown route group"}
		}
		out[group] = path
	}
	return out, nil
}

func unknownGroupError(name string) error {
	names := routeGroupNames()
	reason := "unknown route group, must be one of " + strings.Join(names, ", ")
	if s := resolve.Closest(name, names); s != "" {
		reason += fmt.Sprintf(" (did you mean %q?)", s)
	}
	return &api.ConfigError{Field: "--prefix", Value: name, Reason: reason}
}

func parseSessionCookies(values []string) ([]*http.Cookie, error) {
	var cookies []*http.Cookie
	for _, raw := range values {
		parsed, err := http.ParseCookie(strings.TrimSpace(raw))
		if err != nil || len(parsed) == 0 {
			return nil, fmt.Errorf("invalid --session-cookie %q: expected name=value", raw)
		}
		cookies = append(cookies, parsed...)
	}
	return cookies, nil
}

// logObserver reports client failures at debug level.
type logObserver struct{}

func (logObserver) OnUnauthorized(_ context.Context, err *api.APIError) {
	slog.Debug("unauthorized", "op", err.Operation, "request_id", err.RequestID)
}

func (logObserver) OnError(_ context.Context, err *api.APIError) {
	slog.Debug("request error", "op", err.Operation, "status", err.StatusCode, "request_id", err.RequestID, "error", err.Message)
}
