package config

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"strconv"
	"strings"
)

// Environment variables read by Resolve.
const (
	EnvProfile        = "IDM_PROFILE"
	EnvBaseURL        = "IDM_BASE_URL"
	EnvBasePrefix     = "IDM_BASE_PREFIX"
	EnvAPIVersion     = "IDM_API_VERSION"
	EnvLegacyPrefixes = "IDM_LEGACY_PREFIXES"
	EnvCacheBackend   = "IDM_CACHE_BACKEND"
	EnvRedisURL       = "IDM_REDIS_URL"
)

// Overrides are the command-line values that take precedence over the
// environment and the stored profile. Zero values mean "not set".
type Overrides struct {
	Profile        string
	BaseURL        string
	BasePrefix     string
	APIVersion     string
	LegacyPrefixes *bool
	Prefixes       map[string]string
	CacheBackend   string
	RedisURL       string
}

// ClientConfig contains resolved client settings.
type ClientConfig struct {
	// ProfileName is the profile that was consulted, stored or not.
	ProfileName string
	// Stored reports whether the profile existed in the keyring.
	Stored bool
	Profile
}

// ResolveProfileName picks the profile: flag, then IDM_PROFILE, then the
// current profile pointer.
func ResolveProfileName(flag string) (string, error) {
	if name := strings.TrimSpace(flag); name != "" {
		return name, nil
	}
	if name := strings.TrimSpace(os.Getenv(EnvProfile)); name != "" {
		return name, nil
	}
	return CurrentProfile()
}

// Resolve merges the stored profile, IDM_* environment variables and
// overrides, in increasing precedence. A missing profile is fine as long as
// a base URL comes from somewhere.
func Resolve(o Overrides) (ClientConfig, error) {
	cfg, err := ResolveLayers(o)
	if err != nil {
		return ClientConfig{}, err
	}
	if cfg.BaseURL == "" {
		return ClientConfig{}, ErrNotConfigured
	}
	if err := cfg.Validate(); err != nil {
		return ClientConfig{}, err
	}
	return cfg, nil
}

// ResolveLayers performs the merge of Resolve without requiring a base URL
// or validating the result, for commands that only inspect settings.
func ResolveLayers(o Overrides) (ClientConfig, error) {
	name, err := ResolveProfileName(o.Profile)
	if err != nil {
		return ClientConfig{}, err
	}

	cfg := ClientConfig{ProfileName: name}
	profile, err := LoadProfile(name)
	switch {
	case err == nil:
		cfg.Profile = profile
		cfg.Stored = true
	case errors.Is(err, ErrProfileNotFound):
		if strings.TrimSpace(o.Profile) != "" {
			return ClientConfig{}, err
		}
	default:
		// An unreadable keyring must not block env/flag-only usage.
		if envOrFlag(o.BaseURL, EnvBaseURL) == "" {
			return ClientConfig{}, err
		}
	}
	cfg.Prefixes = maps.Clone(cfg.Prefixes)

	if err := applyEnv(&cfg.Profile); err != nil {
		return ClientConfig{}, err
	}
	cfg.ApplyOverrides(o)

	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	return cfg, nil
}

func envOrFlag(flag, env string) string {
	if v := strings.TrimSpace(flag); v != "" {
		return v
	}
	return strings.TrimSpace(os.Getenv(env))
}

func applyEnv(p *Profile) error {
	if v := strings.TrimSpace(os.Getenv(EnvBaseURL)); v != "" {
		p.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvBasePrefix)); v != "" {
		p.BasePrefix = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvAPIVersion)); v != "" {
		p.APIVersion = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLegacyPrefixes)); v != "" {
		legacy, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s must be a boolean, got %q", EnvLegacyPrefixes, v)
		}
		p.LegacyPrefixes = legacy
	}
	if v := strings.TrimSpace(os.Getenv(EnvCacheBackend)); v != "" {
		p.CacheBackend = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvRedisURL)); v != "" {
		p.RedisURL = v
	}
	return nil
}

// ApplyOverrides copies every set field of o onto p. Prefix overrides are
// merged into the existing map.
func (p *Profile) ApplyOverrides(o Overrides) {
	if v := strings.TrimSpace(o.BaseURL); v != "" {
		p.BaseURL = v
	}
	if v := strings.TrimSpace(o.BasePrefix); v != "" {
		p.BasePrefix = v
	}
	if v := strings.TrimSpace(o.APIVersion); v != "" {
		p.APIVersion = v
	}
	if o.LegacyPrefixes != nil {
		p.LegacyPrefixes = *o.LegacyPrefixes
	}
	if len(o.Prefixes) > 0 {
		if p.Prefixes == nil {
			p.Prefixes = make(map[string]string, len(o.Prefixes))
		}
		maps.Copy(p.Prefixes, o.Prefixes)
	}
	if v := strings.TrimSpace(o.CacheBackend); v != "" {
		p.CacheBackend = strings.ToLower(v)
	}
	if v := strings.TrimSpace(o.RedisURL); v != "" {
		p.RedisURL = v
	}
}
