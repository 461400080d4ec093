package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/idmkit/idm-cli/internal/api"
	"github.com/idmkit/idm-cli/internal/validation"
)

type signupFlags struct {
	email          string
	username       string
	fullname       string
	invitationCode string
}

func (f *signupFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.email, "email", "", "Email address (required)")
	cmd.Flags().StringVar(&f.username, "username", "", "Username")
	cmd.Flags().StringVar(&f.fullname, "fullname", "", "Full name")
	cmd.Flags().StringVar(&f.invitationCode, "invitation-code", "", "Invitation code, if the server requires one")
	_ = cmd.MarkFlagRequired("email")
}

func (f *signupFlags) check() error {
	if err := validateEmail(strings.TrimSpace(f.email)); err != nil {
		return err
	}
	if err := validation.ValidateName(f.fullname); err != nil {
		return api.NewStructuredError(api.ErrValidation, err.Error())
	}
	return nil
}

func newSignupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account",
	}
	cmd.AddCommand(newSignupPasswordlessCmd())
	cmd.AddCommand(newSignupRegisterCmd())
	return cmd
}

func newSignupPasswordlessCmd() *cobra.Command {
	var f signupFlags

	cmd := &cobra.Command{
		Use:     "passwordless",
		Short:   "Create an account that signs in by magic link",
		Example: "  idm signup passwordless --email alice@example.com --fullname 'Alice Doe'",
		Args:    cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			if err := f.check(); err != nil {
				return err
			}
			req := api.PasswordlessSignupRequest{
				Email:          strings.TrimSpace(f.email),
				Username:       strings.TrimSpace(f.username),
				Fullname:       strings.TrimSpace(f.fullname),
				InvitationCode: strings.TrimSpace(f.invitationCode),
			}
			if err := validateInput(req); err != nil {
				return err
			}
			client, _, err := getClient()
			if err != nil {
				return err
			}
			resp, err := client.Signup().Passwordless(cmdContext(cmd), req)
			if err != nil {
				return err
			}
			resp = orZero(resp)
			return printSignup(cmd, resp)
		}),
	}
	f.register(cmd)
	return cmd
}

func newSignupRegisterCmd() *cobra.Command {
	var (
		f             signupFlags
		password      string
		passwordStdin bool
	)

	cmd := &cobra.Command{
		Use:     "register",
		Short:   "Create an account with a password",
		Example: "  idm signup register --email alice@example.com --password-stdin < pass.txt",
		Args:    cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			if err := f.check(); err != nil {
				return err
			}
			secret, err := resolveSecret(cmd, "password", password, passwordStdin)
			if err != nil {
				return err
			}
			req := api.RegisterRequest{
				Email:          strings.TrimSpace(f.email),
				Password:       secret,
				Username:       strings.TrimSpace(f.username),
				Fullname:       strings.TrimSpace(f.fullname),
				InvitationCode: strings.TrimSpace(f.invitationCode),
			}
			if err := validateInput(req); err != nil {
				return err
			}
			client, _, err := getClient()
			if err != nil {
				return err
			}
			resp, err := client.Signup().Register(cmdContext(cmd), req)
			if err != nil {
				return err
			}
			resp = orZero(resp)
			return printSignup(cmd, resp)
		}),
	}
	f.register(cmd)
	cmd.Flags().StringVar(&password, "password", "", "Password")
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "Read the password from stdin")
	return cmd
}

func printSignup(cmd *cobra.Command, resp *api.SignupResponse) error {
	msg := fmt.Sprintf("Account created (%s).", resp.UserID)
	if resp.Message != "" {
		msg = fmt.Sprintf("%s (%s)", resp.Message, resp.UserID)
	}
	return printMessage(cmd, resp, msg, "")
}
