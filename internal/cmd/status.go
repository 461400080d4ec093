package cmd

import (
	"runtime"
	"sync/atomic"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/idmkit/idm-cli/internal/api"
)

// StatusInfo holds the account summary shown by `idm status`
type StatusInfo struct {
	Profile       string                  `json:"profile"`
	BaseURL       string                  `json:"base_url"`
	Authenticated bool                    `json:"authenticated"`
	User          *api.UserInfo           `json:"user,omitempty"`
	TwoFactor     *api.TwoFactorStatus    `json:"two_factor,omitempty"`
	Email         *api.VerificationStatus `json:"email,omitempty"`
	CLIVersion    string                  `json:"cli_version"`
	GoVersion     string                  `json:"go_version"`
	Platform      string                  `json:"platform"`
}

func newStatusCmd() *cobra.Command {
	var check bool

	cmd := &cobra.Command{
		Use:     "status",
		Aliases: []string{"st"},
		Short:   "Show the signed-in user, 2FA and email status",
		Long: `Show the signed-in user, 2FA and email verification status.

The three lookups run concurrently. A 401 from the server is reported as
"not signed in" rather than as an error, unless --check is given.`,
		Example: `  idm status --session-cookie 'access_token=...'
  idm status --check -o json`,
		Args: cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			client, cfg, err := getClient()
			if err != nil {
				return err
			}
			info := StatusInfo{
				Profile:    cfg.ProfileName,
				BaseURL:    cfg.BaseURL,
				CLIVersion: version,
				GoVersion:  runtime.Version(),
				Platform:   runtime.GOOS + "/" + runtime.GOARCH,
			}

			var unauthorized atomic.Bool
			// tolerate401 turns a 401 into a flag so the other lookups keep running.
			tolerate401 := func(err error) error {
				if api.IsUnauthorized(err) {
					unauthorized.Store(true)
					return nil
				}
				return err
			}

			g, ctx := errgroup.WithContext(cmdContext(cmd))
			g.Go(func() error {
				user, err := client.OAuth2().UserInfo(ctx)
				info.User = user
				return tolerate401(err)
			})
			g.Go(func() error {
				twoFA, err := client.TwoFA().Status(ctx)
				info.TwoFactor = twoFA
				return tolerate401(err)
			})
			g.Go(func() error {
				email, err := client.Email().Status(ctx)
				info.Email = email
				return tolerate401(err)
			})
			if err := g.Wait(); err != nil {
				return err
			}
			info.Authenticated = !unauthorized.Load() && info.User != nil

			if check && !info.Authenticated {
				return api.NewStructuredError(api.ErrUnauthorized, "not signed in")
			}
			if isJSON(cmd) {
				return printJSON(cmd, info)
			}
			printStatus(cmd, &info)
			return nil
		}),
	}
	cmd.Flags().BoolVar(&check, "check", false, "Exit with code 3 when not signed in")
	return cmd
}

func printStatus(cmd *cobra.Command, info *StatusInfo) {
	f := formatter(cmd)
	f.KV("Profile", info.Profile)
	f.KV("Server", info.BaseURL)
	if !info.Authenticated {
		f.KV("Signed in", "no")
		_ = f.EndTable()
		f.Info("Run 'idm login --show-session' and pass the cookies with --session-cookie.")
		return
	}
	f.KV("Signed in", "yes")
	name := info.User.PreferredUsername
	if name == "" {
		name = info.User.Email
	}
	f.KV("User", dashIfEmpty(name)+" ("+info.User.Subject+")")
	if info.Email != nil {
		f.KV("Email verified", boolLabel(info.Email.EmailVerified))
	}
	if info.TwoFactor != nil {
		f.KV("2FA enabled", boolLabel(info.TwoFactor.Enabled))
	}
	_ = f.EndTable()
}
