package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/idmkit/idm-cli/internal/api"
	"github.com/idmkit/idm-cli/internal/debug"
	"github.com/idmkit/idm-cli/internal/filter"
	"github.com/idmkit/idm-cli/internal/iocontext"
	"github.com/idmkit/idm-cli/internal/metrics"
	"github.com/idmkit/idm-cli/internal/outfmt"
	"github.com/idmkit/idm-cli/internal/validation"
)

const (
	envOutput       = "IDM_OUTPUT"
	envAllowPrivate = "IDM_ALLOW_PRIVATE"
	metricsNS       = "idm"
)

type rootFlags struct {
	Output         string
	JSON           bool
	Query          string
	JQ             string
	Compact        bool
	Debug          bool
	DryRun         bool
	Quiet          bool
	AllowPrivate   bool
	Timeout        time.Duration
	Profile        string
	BaseURL        string
	BasePrefix     string
	APIVersion     string
	LegacyPrefixes bool
	Prefixes       []string
	SessionCookies []string
	CacheBackend   string
	MetricsOut     string

	LegacyPrefixesSet bool
}

var flags rootFlags

// clientMetrics collects every round trip of the current invocation and is
// written out by --metrics-out once the command returns.
var clientMetrics *metrics.ClientMetrics

func defaultOutput() string {
	value := strings.TrimSpace(os.Getenv(envOutput))
	if value == "" {
		return "text"
	}
	return strings.ToLower(value)
}

func parseBoolEnv(key string) bool {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return false
	}
	switch strings.ToLower(value) {
	case "1", "true", "yes", "y", "on":
		return true
	default:
		return false
	}
}

// getJQQuery returns the jq query from --jq or --query.
// --jq takes precedence over --query.
func getJQQuery() string {
	if flags.JQ != "" {
		return flags.JQ
	}
	return flags.Query
}

// Execute runs the root command
func Execute(ctx context.Context, args []string) error {
	flags = rootFlags{
		Output:       defaultOutput(),
		AllowPrivate: parseBoolEnv(envAllowPrivate),
		Timeout:      api.DefaultTimeout,
	}
	clientMetrics = metrics.NewClientMetrics(metricsNS)

	root := &cobra.Command{
		Use:   "idm",
		Short: "Command-line client for IDM identity servers",
		Long: `idm talks to an IDM identity server: sign in, manage your profile,
two-factor methods, email verification and password resets.

Connection settings come from the active profile (idm config), IDM_*
environment variables and flags, in increasing precedence.`,
		SilenceUsage:       true,
		SilenceErrors:      true,
		DisableSuggestions: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if flags.JSON {
				flags.Output = "json"
			}
			mode, err := outfmt.Parse(flags.Output)
			if err != nil {
				return err
			}
			ctx = outfmt.WithMode(ctx, mode)
			ctx = outfmt.WithCompact(ctx, flags.Compact)
			ctx = outfmt.WithQuiet(ctx, flags.Quiet)

			ioStreams := iocontext.DefaultIO()
			ctx = iocontext.WithIO(ctx, ioStreams)
			cmd.SetOut(ioStreams.Out)
			cmd.SetErr(ioStreams.ErrOut)

			validation.SetAllowPrivate(flags.AllowPrivate)
			if flags.AllowPrivate && !flags.Quiet {
				_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "Warning: allowing private/localhost URLs (use only with trusted targets).")
			}

			debug.SetupLogger(flags.Debug)
			ctx = debug.WithDebug(ctx, flags.Debug)

			if query := getJQQuery(); query != "" {
				if _, err := filter.Compile(query); err != nil {
					return err
				}
				ctx = outfmt.WithQuery(ctx, query)
			}

			if flags.Timeout < 0 {
				return fmt.Errorf("--timeout must be >= 0")
			}
			flags.LegacyPrefixesSet = cmd.Flags().Changed("legacy-prefixes")

			cmd.SetContext(ctx)
			return nil
		},
	}

	root.SetContext(ctx)
	root.SetArgs(args)

	pf := root.PersistentFlags()
	pf.StringVarP(&flags.Output, "output", "o", flags.Output, "Output format: text|json (env IDM_OUTPUT)")
	pf.BoolVarP(&flags.JSON, "json", "j", false, "Shorthand for --output json")
	pf.StringVarP(&flags.Query, "query", "q", "", "JQ expression to filter JSON output")
	pf.StringVar(&flags.JQ, "jq", "", "Alias for --query")
	pf.BoolVar(&flags.Compact, "compact", false, "Compact JSON output (no indentation)")
	pf.BoolVar(&flags.Debug, "debug", false, "Enable debug logging")
	pf.BoolVar(&flags.DryRun, "dry-run", false, "Preview changes without sending them")
	pf.BoolVarP(&flags.Quiet, "quiet", "Q", false, "Suppress non-essential output")
	pf.BoolVar(&flags.AllowPrivate, "allow-private", flags.AllowPrivate, "Allow private/localhost URLs (unsafe; env IDM_ALLOW_PRIVATE)")
	pf.DurationVar(&flags.Timeout, "timeout", flags.Timeout, "HTTP request timeout (e.g., 30s, 2m)")
	pf.StringVar(&flags.Profile, "profile", "", "Connection profile to use (env IDM_PROFILE)")
	pf.StringVar(&flags.BaseURL, "base-url", "", "IDM server URL (env IDM_BASE_URL)")
	pf.StringVar(&flags.BasePrefix, "base-prefix", "", "Root every route group under this prefix (env IDM_BASE_PREFIX)")
	pf.StringVar(&flags.APIVersion, "api-version", "", "API version, e.g. v1 or v2 (env IDM_API_VERSION)")
	pf.BoolVar(&flags.LegacyPrefixes, "legacy-prefixes", false, "Use the pre-versioned route layout (env IDM_LEGACY_PREFIXES)")
	pf.StringArrayVar(&flags.Prefixes, "prefix", nil, "Override one route group prefix as group=/path (repeatable)")
	pf.StringArrayVar(&flags.SessionCookies, "session-cookie", nil, "Send a session cookie as name=value (repeatable; not persisted)")
	pf.StringVar(&flags.CacheBackend, "cache-backend", "", "Cache backend: file|redis (env IDM_CACHE_BACKEND)")
	pf.StringVar(&flags.MetricsOut, "metrics-out", "", "Write request metrics in Prometheus text format to this file")

	root.AddCommand(newLoginCmd())
	root.AddCommand(newLogoutCmd())
	root.AddCommand(newTokenCmd())
	root.AddCommand(newMagicLinkCmd())
	root.AddCommand(newSignupCmd())
	root.AddCommand(newWhoamiCmd())
	root.AddCommand(newProfileCmd())
	root.AddCommand(newTwoFACmd())
	root.AddCommand(newEmailCmd())
	root.AddCommand(newPasswordResetCmd())
	root.AddCommand(newPrefixesCmd())
	root.AddCommand(newStatusCmd())
	root.AddCommand(newConfigCmd())
	root.AddCommand(newCacheCmd())
	root.AddCommand(newVersionCmd())

	targetCmd, err := root.ExecuteC()
	if path := strings.TrimSpace(flags.MetricsOut); path != "" {
		if werr := clientMetrics.WriteTextfile(path); werr != nil {
			slog.Warn("failed to write metrics", "path", path, "error", werr)
		}
	}
	if err != nil {
		if !errors.Is(err, errAlreadyHandled) {
			enhanced := enhanceUnknownError(err, root, targetCmd)
			_, _ = fmt.Fprintln(root.ErrOrStderr(), enhanced)
		}
		return err
	}
	return nil
}

// enhanceUnknownError adds "did you mean?" suggestions to unknown command/flag errors.
// targetCmd is the command Cobra resolved before the error (may be root itself).
func enhanceUnknownError(err error, root *cobra.Command, targetCmd *cobra.Command) string {
	msg := err.Error()

	if strings.Contains(msg, "unknown command") {
		unknown := extractQuoted(msg)
		if unknown != "" {
			parent := root
			if targetCmd != nil {
				parent = targetCmd
			}
			var names []string
			for _, c := range parent.Commands() {
				if c.IsAvailableCommand() || c.Name() == "help" {
					names = append(names, c.Name())
					names = append(names, c.Aliases...)
				}
			}
			if suggestion := suggestCommand(unknown, names); suggestion != "" {
				return fmt.Sprintf("%s\n\nDid you mean %q?", msg, suggestion)
			}
		}
	}

	if strings.Contains(msg, "unknown flag") || strings.Contains(msg, "unknown shorthand flag") {
		unknown := extractFlag(msg)
		if unknown != "" {
			seen := make(map[string]bool)
			var flagNames []string
			addFlags := func(fs *pflag.FlagSet) {
				fs.VisitAll(func(f *pflag.Flag) {
					name := "--" + f.Name
					if !seen[name] {
						seen[name] = true
						flagNames = append(flagNames, name)
					}
				})
			}
			helpCmd := "idm --help"
			if targetCmd != nil {
				addFlags(targetCmd.Flags())
				addFlags(targetCmd.InheritedFlags())
				helpCmd = targetCmd.CommandPath() + " --help"
			} else {
				addFlags(root.PersistentFlags())
			}
			if suggestion := suggestFlag(unknown, flagNames); suggestion != "" {
				return fmt.Sprintf("%s\n\nDid you mean %q?\nRun %q to see supported flags.", msg, suggestion, helpCmd)
			}
			return fmt.Sprintf("%s\n\nRun %q to see supported flags.", msg, helpCmd)
		}
	}

	return msg
}

// extractQuoted extracts the first double-quoted substring from s.
func extractQuoted(s string) string {
	start := strings.IndexByte(s, '"')
	if start < 0 {
		return ""
	}
	end := strings.IndexByte(s[start+1:], '"')
	if end < 0 {
		return ""
	}
	return s[start+1 : start+1+end]
}

// extractFlag extracts a flag name (e.g., "--foo") from an error message.
func extractFlag(s string) string {
	idx := strings.Index(s, "--")
	if idx < 0 {
		return ""
	}
	rest := s[idx:]
	if end := strings.IndexAny(rest, " =\n"); end >= 0 {
		rest = rest[:end]
	}
	return rest
}
