package cmd

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/idmkit/idm-cli/internal/api"
	"github.com/idmkit/idm-cli/internal/config"
	"github.com/idmkit/idm-cli/internal/resolve"
	"github.com/idmkit/idm-cli/internal/validation"
)

// ProfileSummary is one row of `idm config list`.
type ProfileSummary struct {
	Name    string `json:"name"`
	Current bool   `json:"current"`
	BaseURL string `json:"base_url,omitempty"`
}

// EffectiveConfig is the output of `idm config show`.
type EffectiveConfig struct {
	Profile        string            `json:"profile"`
	Stored         bool              `json:"stored"`
	BaseURL        string            `json:"base_url,omitempty"`
	BasePrefix     string            `json:"base_prefix,omitempty"`
	APIVersion     string            `json:"api_version,omitempty"`
	LegacyPrefixes bool              `json:"legacy_prefixes"`
	Prefixes       map[string]string `json:"prefixes,omitempty"`
	CacheBackend   string            `json:"cache_backend"`
	RedisURL       string            `json:"redis_url,omitempty"`
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "config",
		Aliases: []string{"cfg"},
		Short:   "Manage connection profiles",
		Long: `Manage named connection profiles stored in the OS keyring.

A profile holds the server URL, route prefix settings and cache backend.
Session cookies and passwords are never stored.`,
	}
	cmd.AddCommand(newConfigShowCmd())
	cmd.AddCommand(newConfigSetCmd())
	cmd.AddCommand(newConfigUseCmd())
	cmd.AddCommand(newConfigListCmd())
	cmd.AddCommand(newConfigDeleteCmd())
	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the effective settings",
		Long:  "Show the settings after merging the profile, IDM_* environment variables and flags.",
		Args:  cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			overrides, err := flagOverrides()
			if err != nil {
				return err
			}
			cfg, err := config.ResolveLayers(overrides)
			if err != nil {
				return err
			}
			eff := EffectiveConfig{
				Profile:        cfg.ProfileName,
				Stored:         cfg.Stored,
				BaseURL:        cfg.BaseURL,
				BasePrefix:     cfg.BasePrefix,
				APIVersion:     cfg.APIVersion,
				LegacyPrefixes: cfg.LegacyPrefixes,
				Prefixes:       cfg.Prefixes,
				CacheBackend:   cfg.CacheBackend,
				RedisURL:       redactURL(cfg.RedisURL),
			}
			if eff.CacheBackend == "" {
				eff.CacheBackend = "file"
			}
			if isJSON(cmd) {
				return printJSON(cmd, eff)
			}

			f := formatter(cmd)
			stored := ""
			if !eff.Stored {
				stored = " (not stored)"
			}
			f.KV("Profile", eff.Profile+stored)
			f.KV("Base URL", dashIfEmpty(eff.BaseURL))
			f.KV("Base prefix", dashIfEmpty(eff.BasePrefix))
			f.KV("API version", dashIfEmpty(eff.APIVersion))
			f.KV("Legacy prefixes", boolLabel(eff.LegacyPrefixes))
			for _, group := range sortedKeys(eff.Prefixes) {
				f.KV("Prefix "+group, eff.Prefixes[group])
			}
			f.KV("Cache backend", eff.CacheBackend)
			if eff.RedisURL != "" {
				f.KV("Redis URL", eff.RedisURL)
			}
			return f.EndTable()
		}),
	}
}

func newConfigSetCmd() *cobra.Command {
	var (
		redisURL string
		reset    bool
	)

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Store connection settings in a profile",
		Long: `Store the connection flags given on this command line in a profile and
make it current. The profile is --profile, IDM_PROFILE or the current one.

Settings not given on the command line keep their stored values unless
--reset is used.`,
		Example: `  idm config set --base-url https://idm.example.com
  idm config set --profile staging --base-url https://idm.staging.example.com --api-version v2
  idm config set --prefix oauth2=/oauth2 --cache-backend redis --redis-url redis://localhost:6379/0`,
		Args: cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			name, err := config.ResolveProfileName(flags.Profile)
			if err != nil {
				return err
			}

			var profile config.Profile
			if !reset {
				profile, err = config.LoadProfile(name)
				if err != nil && !isProfileNotFound(err) {
					return err
				}
			}

			overrides, err := flagOverrides()
			if err != nil {
				return err
			}
			overrides.RedisURL = redisURL
			profile.ApplyOverrides(overrides)

			profile.BaseURL = validation.NormalizeBaseURL(profile.BaseURL)
			if profile.BaseURL == "" {
				return api.NewStructuredError(api.ErrValidation, "--base-url is required for a new profile")
			}
			if err := validation.ValidateBaseURL(profile.BaseURL); err != nil {
				return &api.ConfigError{Field: "base_url", Value: profile.BaseURL, Reason: err.Error()}
			}
			if profile.CacheBackend == "redis" && strings.TrimSpace(profile.RedisURL) == "" {
				return api.NewStructuredError(api.ErrValidation, "--redis-url is required with --cache-backend redis")
			}

			groups, err := routePrefixes(profile.Prefixes)
			if err != nil {
				return err
			}
			if _, err := api.ResolvePrefixes(api.PrefixOptions{
				BasePrefix:        profile.BasePrefix,
				APIVersion:        profile.APIVersion,
				UseLegacyPrefixes: profile.LegacyPrefixes,
				Overrides:         groups,
			}); err != nil {
				return err
			}

			if err := config.SaveProfile(name, profile); err != nil {
				return err
			}
			return printMessage(cmd, map[string]any{
				"profile":  name,
				"base_url": profile.BaseURL,
				"current":  true,
			}, "", fmt.Sprintf("Saved profile %q (%s) and made it current.", name, profile.BaseURL))
		}),
	}
	cmd.Flags().StringVar(&redisURL, "redis-url", "", "Redis URL for --cache-backend redis")
	cmd.Flags().BoolVar(&reset, "reset", false, "Discard stored settings not given on this command line")
	return cmd
}

func newConfigUseCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "use <profile>",
		Aliases: []string{"switch"},
		Short:   "Make a stored profile current",
		Args:    cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			name := strings.TrimSpace(args[0])
			profiles, err := config.ListProfiles()
			if err != nil {
				return err
			}
			if !slices.Contains(profiles, name) {
				return profileNotFoundError(name, profiles)
			}
			if err := config.SetCurrentProfile(name); err != nil {
				return err
			}
			return printMessage(cmd, map[string]any{"profile": name, "current": true},
				"", fmt.Sprintf("Switched to profile %q.", name))
		}),
	}
}

func newConfigListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List stored profiles",
		Args:    cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			summaries, err := listProfiles()
			if err != nil {
				return err
			}
			if isJSON(cmd) {
				return printJSON(cmd, summaries)
			}
			if len(summaries) == 0 {
				formatter(cmd).Info("No profiles stored. Run 'idm config set --base-url <url>'.")
				return nil
			}
			f := formatter(cmd)
			f.StartTable([]string{"CURRENT", "PROFILE", "BASE_URL"})
			for _, s := range summaries {
				marker := ""
				if s.Current {
					marker = "*"
				}
				f.Row(marker, s.Name, dashIfEmpty(s.BaseURL))
			}
			return f.EndTable()
		}),
	}
}

func newConfigDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <profile>",
		Aliases: []string{"rm"},
		Short:   "Delete a stored profile",
		Args:    cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			name := strings.TrimSpace(args[0])
			if err := config.DeleteProfile(name); err != nil {
				if isProfileNotFound(err) {
					profiles, _ := config.ListProfiles()
					return profileNotFoundError(name, profiles)
				}
				return err
			}
			return printMessage(cmd, map[string]any{"profile": name, "deleted": true},
				"", fmt.Sprintf("Deleted profile %q.", name))
		}),
	}
}

func listProfiles() ([]ProfileSummary, error) {
	names, err := config.ListProfiles()
	if err != nil {
		return nil, err
	}
	current, err := config.CurrentProfile()
	if err != nil {
		return nil, err
	}
	summaries := make([]ProfileSummary, 0, len(names))
	for _, name := range names {
		s := ProfileSummary{Name: name, Current: name == current}
		if profile, err := config.LoadProfile(name); err == nil {
			s.BaseURL = profile.BaseURL
		}
		summaries = append(summaries, s)
	}
	return summaries, nil
}

func isProfileNotFound(err error) bool {
	return errors.Is(err, config.ErrProfileNotFound)
}

// profileNotFoundError wraps config.ErrProfileNotFound with the closest stored names.
func profileNotFoundError(name string, profiles []string) error {
	err := fmt.Errorf("%w: %s", config.ErrProfileNotFound, name)
	if suggestions := resolve.Suggest(name, profiles, 3); len(suggestions) > 0 {
		err = fmt.Errorf("%w (did you mean %s?)", err, strings.Join(quoteAll(suggestions), ", "))
	}
	return err
}

func quoteAll(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = fmt.Sprintf("%q", v)
	}
	return out
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// redactURL hides the password of a URL with userinfo.
func redactURL(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	return u.Redacted()
}
