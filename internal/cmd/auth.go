package cmd

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"github.com/idmkit/idm-cli/internal/api"
	"github.com/idmkit/idm-cli/internal/iocontext"
)

func newLoginCmd() *cobra.Command {
	var (
		username      string
		password      string
		passwordStdin bool
		showSession   bool
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with username and password",
		Long: `Sign in with username and password.

The server answers with one of three outcomes: success, 2fa_required (finish
with 'idm 2fa validate') or multiple_users (retry with one of the listed
usernames). Session cookies live only for this invocation; use
--show-session to print them for later --session-cookie flags.`,
		Example: `  idm login --username alice --password-stdin < pass.txt
  idm login -u alice --password s3cret --show-session`,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			secret, err := resolveSecret(cmd, "password", password, passwordStdin)
			if err != nil {
				return err
			}
			req := api.LoginRequest{Username: strings.TrimSpace(username), Password: secret}
			if err := validateInput(req); err != nil {
				return err
			}

			client, _, err := getClient()
			if err != nil {
				return err
			}
			resp, err := client.Auth().Login(cmdContext(cmd), req)
			if err != nil {
				return err
			}
			resp = orZero(resp)
			if err := printLoginResponse(cmd, resp); err != nil {
				return err
			}
			if showSession {
				return printSession(cmd, client)
			}
			return nil
		}),
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "Username or email (required)")
	cmd.Flags().StringVar(&password, "password", "", "Password")
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "Read the password from stdin")
	cmd.Flags().BoolVar(&showSession, "show-session", false, "Print the session cookies set by the server")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}

// printLoginResponse renders the three login outcomes.
func printLoginResponse(cmd *cobra.Command, resp *api.LoginResponse) error {
	if isJSON(cmd) {
		return printJSON(cmd, resp)
	}
	out := iocontext.GetIO(cmdContext(cmd)).Out

	switch {
	case resp.RequiresTwoFactor():
		_, _ = fmt.Fprintln(out, "Two-factor authentication required.")
		for _, m := range resp.TwoFactorMethods {
			_, _ = fmt.Fprintf(out, "  - %s\n", m.Type)
			for _, opt := range m.DeliveryOptions {
				_, _ = fmt.Fprintf(out, "      %s (--delivery-option %s)\n", opt.DisplayValue, opt.HashedValue)
			}
		}
		_, _ = fmt.Fprintln(out, "Send a code with 'idm 2fa send-code --type TYPE' (email/sms), then run 'idm 2fa validate --type TYPE --code CODE'.")
		return nil

	case resp.RequiresUserSelection():
		_, _ = fmt.Fprintln(out, "Several accounts match these credentials. Log in again with one of these usernames:")
		f := formatter(cmd)
		f.StartTable([]string{"ID", "USERNAME", "EMAIL"})
		for _, u := range resp.Users {
			f.Row(u.ID, dashIfEmpty(u.Username), dashIfEmpty(u.Email))
		}
		return f.EndTable()
	}

	msg := "Logged in."
	if resp.User != nil {
		name := resp.User.Username
		if name == "" {
			name = resp.User.Email
		}
		msg = fmt.Sprintf("Logged in as %s (%s).", dashIfEmpty(name), resp.User.ID)
	}
	return printMessage(cmd, resp, msg, "")
}

// printSession writes the cookies held by the client's jar in a form that
// can be pasted into --session-cookie.
func printSession(cmd *cobra.Command, client *api.Client) error {
	u, err := url.Parse(client.BaseURL)
	if err != nil {
		return err
	}
	cookies := client.HTTP.Jar.Cookies(u)
	errOut := iocontext.GetIO(cmdContext(cmd)).ErrOut
	if len(cookies) == 0 {
		_, _ = fmt.Fprintln(errOut, "The server did not set any session cookies.")
		return nil
	}
	for _, c := range cookies {
		_, _ = fmt.Fprintf(errOut, "--session-cookie '%s=%s'\n", c.Name, c.Value)
	}
	return nil
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "logout",
		Short:   "End the current session",
		Example: "  idm logout --session-cookie 'access_token=...'",
		Args:    cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			client, _, err := getClient()
			if err != nil {
				return err
			}
			if err := client.Auth().Logout(cmdContext(cmd)); err != nil {
				return err
			}
			return printMessage(cmd, map[string]string{"status": "logged_out"}, "Logged out.", "")
		}),
	}
}

func newTokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage session tokens",
	}
	cmd.AddCommand(newTokenRefreshCmd())
	return cmd
}

func newTokenRefreshCmd() *cobra.Command {
	var showSession bool

	cmd := &cobra.Command{
		Use:     "refresh",
		Short:   "Rotate the session cookies",
		Example: "  idm token refresh --session-cookie 'refresh_token=...' --show-session",
		Args:    cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			client, _, err := getClient()
			if err != nil {
				return err
			}
			resp, err := client.Auth().RefreshToken(cmdContext(cmd))
			if err != nil {
				return err
			}
			resp = orZero(resp)
			if err := printMessage(cmd, resp, resp.Message, "Session refreshed."); err != nil {
				return err
			}
			if showSession {
				return printSession(cmd, client)
			}
			return nil
		}),
	}
	cmd.Flags().BoolVar(&showSession, "show-session", false, "Print the rotated session cookies")
	return cmd
}

func newMagicLinkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "magic-link",
		Aliases: []string{"ml"},
		Short:   "Passwordless login by email link",
	}
	cmd.AddCommand(newMagicLinkSendCmd())
	cmd.AddCommand(newMagicLinkValidateCmd())
	return cmd
}

func newMagicLinkSendCmd() *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:     "send",
		Short:   "Email a one-time login link",
		Example: "  idm magic-link send --email alice@example.com",
		Args:    cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			email = strings.TrimSpace(email)
			if err := validateEmail(email); err != nil {
				return err
			}
			client, _, err := getClient()
			if err != nil {
				return err
			}
			resp, err := client.Auth().RequestMagicLink(cmdContext(cmd), email)
			if err != nil {
				return err
			}
			resp = orZero(resp)
			return printMessage(cmd, resp, resp.Message, "Magic link sent.")
		}),
	}
	cmd.Flags().StringVar(&email, "email", "", "Email address (required)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newMagicLinkValidateCmd() *cobra.Command {
	var showSession bool

	cmd := &cobra.Command{
		Use:     "validate <token>",
		Short:   "Exchange a magic link token for a session",
		Example: "  idm magic-link validate 3f9c... --show-session",
		Args:    cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			token := strings.TrimSpace(args[0])
			if token == "" {
				return fmt.Errorf("token is required")
			}
			client, _, err := getClient()
			if err != nil {
				return err
			}
			resp, err := client.Auth().ValidateMagicLink(cmdContext(cmd), token)
			if err != nil {
				return err
			}
			resp = orZero(resp)
			if err := printLoginResponse(cmd, resp); err != nil {
				return err
			}
			if showSession {
				return printSession(cmd, client)
			}
			return nil
		}),
	}
	cmd.Flags().BoolVar(&showSession, "show-session", false, "Print the session cookies set by the server")
	return cmd
}

func newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "whoami",
		Aliases: []string{"me"},
		Short:   "Show the signed-in user (OIDC userinfo)",
		Args:    cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			client, _, err := getClient()
			if err != nil {
				return err
			}
			info, err := client.OAuth2().UserInfo(cmdContext(cmd))
			if err != nil {
				return err
			}
			info = orZero(info)
			if isJSON(cmd) {
				return printJSON(cmd, info)
			}
			printUserInfo(cmd, info)
			return nil
		}),
	}
}

func printUserInfo(cmd *cobra.Command, info *api.UserInfo) {
	f := formatter(cmd)
	f.KV("Subject", info.Subject)
	f.KV("Username", dashIfEmpty(info.PreferredUsername))
	f.KV("Name", dashIfEmpty(info.Name))
	f.KV("Email", dashIfEmpty(info.Email))
	f.KV("Email verified", boolLabel(info.EmailVerified))
	f.KV("Phone", dashIfEmpty(info.PhoneNumber))
	if len(info.Groups) > 0 {
		f.KV("Groups", strings.Join(info.Groups, ", "))
	}
	if len(info.Roles) > 0 {
		f.KV("Roles", strings.Join(info.Roles, ", "))
	}
	_ = f.EndTable()
}
