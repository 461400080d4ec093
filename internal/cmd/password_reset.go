package cmd

import (
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/idmkit/idm-cli/internal/api"
	"github.com/idmkit/idm-cli/internal/cache"
	"github.com/idmkit/idm-cli/internal/config"
)

const passwordPolicyResource = "password_policy"

func newPasswordResetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "password-reset",
		Aliases: []string{"pwreset"},
		Short:   "Reset a forgotten password",
	}
	cmd.AddCommand(newPasswordResetInitiateCmd())
	cmd.AddCommand(newPasswordResetResetCmd())
	cmd.AddCommand(newPasswordResetPolicyCmd())
	return cmd
}

func newPasswordResetInitiateCmd() *cobra.Command {
	var email, username string

	cmd := &cobra.Command{
		Use:   "initiate",
		Short: "Email a reset token",
		Example: `  idm password-reset initiate --email alice@example.com
  idm password-reset initiate --username alice`,
		Args: cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			email, username = strings.TrimSpace(email), strings.TrimSpace(username)
			if email != "" {
				if err := validateEmail(email); err != nil {
					return err
				}
			}

			client, _, err := getClient()
			if err != nil {
				return err
			}
			var resp *api.PasswordResetResponse
			if email != "" {
				resp, err = client.PasswordReset().InitiateByEmail(cmdContext(cmd), email)
			} else {
				resp, err = client.PasswordReset().InitiateByUsername(cmdContext(cmd), username)
			}
			if err != nil {
				return err
			}
			resp = orZero(resp)
			return printMessage(cmd, resp, resp.Message, "If the account exists, a reset link has been sent.")
		}),
	}
	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&username, "username", "", "Account username")
	cmd.MarkFlagsMutuallyExclusive("email", "username")
	cmd.MarkFlagsOneRequired("email", "username")
	return cmd
}

func newPasswordResetResetCmd() *cobra.Command {
	var (
		token            string
		newPassword      string
		newPasswordStdin bool
		skipPolicyCheck  bool
	)

	cmd := &cobra.Command{
		Use:     "reset",
		Short:   "Set a new password with the emailed token",
		Example: "  idm password-reset reset --token 3f9c... --new-password-stdin < new.txt",
		Args:    cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			secret, err := resolveSecret(cmd, "new-password", newPassword, newPasswordStdin)
			if err != nil {
				return err
			}
			req := api.ResetPasswordRequest{Token: strings.TrimSpace(token), NewPassword: secret}
			if err := validateInput(req); err != nil {
				return err
			}
			client, cfg, err := getClient()
			if err != nil {
				return err
			}
			if !skipPolicyCheck {
				if err := enforcePasswordPolicy(cmd, client, cfg, secret, req.Token, false); err != nil {
					return err
				}
			}
			resp, err := client.PasswordReset().Reset(cmdContext(cmd), req)
			if err != nil {
				return err
			}
			resp = orZero(resp)
			return printMessage(cmd, resp, resp.Message, "Password has been reset.")
		}),
	}
	cmd.Flags().StringVar(&token, "token", "", "Reset token from the email (required)")
	cmd.Flags().StringVar(&newPassword, "new-password", "", "New password")
	cmd.Flags().BoolVar(&newPasswordStdin, "new-password-stdin", false, "Read the new password from stdin")
	cmd.Flags().BoolVar(&skipPolicyCheck, "skip-policy-check", false, "Do not check the new password against the server policy")
	_ = cmd.MarkFlagRequired("token")
	return cmd
}

func newPasswordResetPolicyCmd() *cobra.Command {
	var (
		token   string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "policy",
		Short: "Show the server's password rules",
		Long: `Show the server's password rules.

Without --token the policy is cached per server and route prefix for ten
minutes (file cache by default, Redis with --cache-backend redis).`,
		Example: `  idm password-reset policy
  idm password-reset policy --token 3f9c... -o json`,
		Args: cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			client, cfg, err := getClient()
			if err != nil {
				return err
			}
			policy, cached, err := loadPasswordPolicy(cmd, client, cfg, strings.TrimSpace(token), noCache)
			if err != nil {
				return err
			}
			if cached {
				formatter(cmd).Info("Using cached password policy (--no-cache to refresh).")
			}
			if isJSON(cmd) {
				return printJSON(cmd, policy)
			}
			printPolicy(cmd, policy)
			return nil
		}),
	}
	cmd.Flags().StringVar(&token, "token", "", "Reset token, for token-specific policies")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "Bypass the policy cache")
	return cmd
}

func printPolicy(cmd *cobra.Command, p *api.PasswordPolicy) {
	f := formatter(cmd)
	f.KV("Minimum length", p.MinLength)
	f.KV("Uppercase required", boolLabel(p.RequireUppercase))
	f.KV("Lowercase required", boolLabel(p.RequireLowercase))
	f.KV("Digit required", boolLabel(p.RequireDigit))
	f.KV("Special character required", boolLabel(p.RequireSpecialChar))
	f.KV("Common passwords rejected", boolLabel(p.DisallowCommonPwds))
	if p.MaxRepeatedChars > 0 {
		f.KV("Max repeated characters", p.MaxRepeatedChars)
	}
	if p.HistoryCheckCount > 0 {
		f.KV("Previous passwords checked", p.HistoryCheckCount)
	}
	if p.ExpirationDays > 0 {
		f.KV("Expires after (days)", p.ExpirationDays)
	}
	_ = f.EndTable()
}

// loadPasswordPolicy returns the policy and whether it came from the cache.
// Token-specific policies are never cached.
func loadPasswordPolicy(cmd *cobra.Command, client *api.Client, cfg config.ClientConfig, token string, noCache bool) (*api.PasswordPolicy, bool, error) {
	ctx := cmdContext(cmd)

	var store *cache.Store
	if token == "" {
		backend, closeBackend, err := newClientFactory().cacheBackend(ctx, cfg.Profile)
		defer closeBackend()
		if err != nil {
			slog.Debug("policy cache unavailable", "error", err)
		} else {
			store = cache.NewStore(backend, passwordPolicyResource, cfg.BaseURL, client.Prefixes().PasswordReset)
		}
	}

	if store != nil && !noCache {
		var cached api.PasswordPolicy
		if store.Get(ctx, &cached) {
			return &cached, true, nil
		}
	}

	policy, err := client.PasswordReset().Policy(ctx, token)
	if err != nil {
		return nil, false, err
	}
	if policy == nil {
		return &api.PasswordPolicy{}, false, nil
	}
	if store != nil {
		if err := store.Put(ctx, policy); err != nil {
			slog.Debug("failed to cache password policy", "error", err)
		}
	}
	return policy, false, nil
}

// enforcePasswordPolicy rejects password locally when it breaks a policy
// rule. A server without a policy endpoint is not an error.
func enforcePasswordPolicy(cmd *cobra.Command, client *api.Client, cfg config.ClientConfig, password, token string, noCache bool) error {
	policy, _, err := loadPasswordPolicy(cmd, client, cfg, token, noCache)
	if err != nil {
		if api.IsNotFoundError(err) {
			formatter(cmd).Info("Password policy not available on this server; skipping local check.")
			return nil
		}
		return err
	}
	violations := policy.Check(password)
	if len(violations) == 0 {
		return nil
	}
	se := api.NewStructuredError(api.ErrValidation, "new password does not meet the password policy: "+strings.Join(violations, "; "))
	se.Context = map[string]any{"violations": violations}
	return se
}
