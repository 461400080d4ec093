package api

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/mod/semver"
)

// RouteGroup names a family of IDM endpoints that share one URL prefix.
type RouteGroup string

const (
	GroupAuth          RouteGroup = "auth"
	GroupSignup        RouteGroup = "signup"
	GroupProfile       RouteGroup = "profile"
	GroupTwoFA         RouteGroup = "twoFA"
	GroupEmail         RouteGroup = "email"
	GroupPasswordReset RouteGroup = "passwordReset"
	GroupMagicLinks    RouteGroup = "magicLinks"
	GroupOAuth2        RouteGroup = "oauth2"
)

// RouteGroups lists every group in display order.
var RouteGroups = []RouteGroup{
	GroupAuth,
	GroupSignup,
	GroupProfile,
	GroupTwoFA,
	GroupEmail,
	GroupPasswordReset,
	GroupMagicLinks,
	GroupOAuth2,
}

// ParseRouteGroup accepts a group name case-insensitively. Dashed spellings
// such as "password-reset" and "2fa" are accepted as well.
func ParseRouteGroup(name string) (RouteGroup, bool) {
	key := strings.ToLower(strings.TrimSpace(name))
	key = strings.ReplaceAll(key, "-", "")
	key = strings.ReplaceAll(key, "_", "")
	switch key {
	case "auth", "login":
		return GroupAuth, true
	case "signup":
		return GroupSignup, true
	case "profile":
		return GroupProfile, true
	case "twofa", "2fa":
		return GroupTwoFA, true
	case "email":
		return GroupEmail, true
	case "passwordreset":
		return GroupPasswordReset, true
	case "magiclinks", "magiclink":
		return GroupMagicLinks, true
	case "oauth2":
		return GroupOAuth2, true
	}
	return "", false
}

// PrefixConfig holds the resolved path prefix of every route group.
type PrefixConfig struct {
	Auth          string `json:"auth"`
	Signup        string `json:"signup"`
	Profile       string `json:"profile"`
	TwoFA         string `json:"twoFA"`
	Email         string `json:"email"`
	PasswordReset string `json:"passwordReset"`
	MagicLinks    string `json:"magicLinks"`
	OAuth2        string `json:"oauth2"`
}

// Get returns the prefix for group.
func (p PrefixConfig) Get(group RouteGroup) string {
	if field := p.field(group); field != nil {
		return *field
	}
	return ""
}

func (p *PrefixConfig) field(group RouteGroup) *string {
	switch group {
	case GroupAuth:
		return &p.Auth
	case GroupSignup:
		return &p.Signup
	case GroupProfile:
		return &p.Profile
	case GroupTwoFA:
		return &p.TwoFA
	case GroupEmail:
		return &p.Email
	case GroupPasswordReset:
		return &p.PasswordReset
	case GroupMagicLinks:
		return &p.MagicLinks
	case GroupOAuth2:
		return &p.OAuth2
	}
	return nil
}

// Validate reports the first group whose prefix is empty or not rooted.
func (p PrefixConfig) Validate() error {
	for _, group := range RouteGroups {
		value := p.Get(group)
		if value == "" {
			return &ConfigError{Field: string(group), Reason: "prefix is empty"}
		}
		if !strings.HasPrefix(value, "/") {
			return &ConfigError{Field: string(group), Value: value, Reason: "prefix must start with /"}
		}
	}
	return nil
}

// PrefixOptions seeds prefix resolution. The zero value resolves to the
// built-in v1 table.
type PrefixOptions struct {
	BasePrefix        string
	APIVersion        string
	UseLegacyPrefixes bool
	Overrides         map[RouteGroup]string
}

// routeSegments is the single declarative segment table shared by every
// scheme. Schemes only list the groups they lay out differently.
var routeSegments = map[RouteGroup]string{
	GroupAuth:          "auth",
	GroupSignup:        "signup",
	GroupProfile:       "profile",
	GroupTwoFA:         "2fa",
	GroupEmail:         "email",
	GroupPasswordReset: "password-reset",
	GroupMagicLinks:    "auth/magic-link",
	GroupOAuth2:        "oauth2",
}

type prefixScheme struct {
	root      string
	overrides map[RouteGroup]string
}

func (s prefixScheme) build() PrefixConfig {
	var cfg PrefixConfig
	for _, group := range RouteGroups {
		value, ok := s.overrides[group]
		if !ok {
			value = s.root + "/" + routeSegments[group]
		}
		*cfg.field(group) = value
	}
	return cfg
}

const (
	DefaultAPIVersion = "v1"
	legacyScheme      = "legacy"
)

// Legacy servers mounted 2FA outside /api; the entry is kept verbatim for
// wire compatibility.
var legacyPrefixScheme = prefixScheme{
	root: "/api/idm",
	overrides: map[RouteGroup]string{
		GroupTwoFA:  "/idm/2fa",
		GroupOAuth2: "/api/oauth2",
	},
}

func versionScheme(major string) prefixScheme {
	root := "/api/" + major + "/idm"
	if major == DefaultAPIVersion {
		return prefixScheme{root: root}
	}
	return prefixScheme{
		root:      root,
		overrides: map[RouteGroup]string{GroupOAuth2: "/api/" + major + "/oauth2"},
	}
}

// NormalizeAPIVersion reduces a version such as "2", "v2" or "v2.1.0" to its
// major component ("v2").
func NormalizeAPIVersion(version string) (string, error) {
	v := strings.ToLower(strings.TrimSpace(version))
	if v == "" {
		return "", &ConfigError{Field: "apiVersion", Reason: "version is empty"}
	}
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return "", &ConfigError{Field: "apiVersion", Value: version, Reason: "not a valid version"}
	}
	return semver.Major(v), nil
}

// ResolvePrefixes computes a complete prefix table. Tiers are tried in order
// base prefix, API version, legacy, default; overrides are merged on top and
// the merged table is validated as a whole.
func ResolvePrefixes(opts PrefixOptions) (PrefixConfig, error) {
	var cfg PrefixConfig
	switch {
	case strings.TrimSpace(opts.BasePrefix) != "":
		cfg = prefixScheme{root: strings.TrimRight(strings.TrimSpace(opts.BasePrefix), "/")}.build()
	case strings.TrimSpace(opts.APIVersion) != "":
		major, err := NormalizeAPIVersion(opts.APIVersion)
		if err != nil {
			return PrefixConfig{}, err
		}
		cfg = versionScheme(major).build()
	case opts.UseLegacyPrefixes:
		cfg = legacyPrefixScheme.build()
	default:
		cfg = versionScheme(DefaultAPIVersion).build()
	}

	if err := applyOverrides(&cfg, opts.Overrides); err != nil {
		return PrefixConfig{}, err
	}
	if err := cfg.Validate(); err != nil {
		return PrefixConfig{}, err
	}
	return cfg, nil
}

func applyOverrides(cfg *PrefixConfig, overrides map[RouteGroup]string) error {
	if len(overrides) == 0 {
		return nil
	}
	groups := make([]string, 0, len(overrides))
	for group := range overrides {
		groups = append(groups, string(group))
	}
	sort.Strings(groups)
	for _, name := range groups {
		group := RouteGroup(name)
		field := cfg.field(group)
		if field == nil {
			return &ConfigError{Field: name, Reason: "unknown route group"}
		}
		*field = overrides[group]
	}
	return nil
}

// SchemeName describes which tier produced a table, for display.
func (o PrefixOptions) SchemeName() string {
	switch {
	case strings.TrimSpace(o.BasePrefix) != "":
		return fmt.Sprintf("base-prefix %s", strings.TrimRight(strings.TrimSpace(o.BasePrefix), "/"))
	case strings.TrimSpace(o.APIVersion) != "":
		if major, err := NormalizeAPIVersion(o.APIVersion); err == nil {
			return "api-version " + major
		}
		return "api-version " + o.APIVersion
	case o.UseLegacyPrefixes:
		return legacyScheme
	default:
		return "default " + DefaultAPIVersion
	}
}
