package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/idmkit/idm-cli/internal/api"
	"github.com/idmkit/idm-cli/internal/validation"
)

func newProfileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Change username, phone number or password",
	}
	cmd.AddCommand(newProfileUsernameCmd())
	cmd.AddCommand(newProfilePhoneCmd())
	cmd.AddCommand(newProfilePasswordCmd())
	return cmd
}

func newProfileUsernameCmd() *cobra.Command {
	var (
		currentPassword      string
		currentPasswordStdin bool
		newUsername          string
	)

	cmd := &cobra.Command{
		Use:     "username",
		Short:   "Change the login name",
		Example: "  idm profile username --current-password-stdin --new-username alice2 < pass.txt",
		Args:    cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			secret, err := resolveSecret(cmd, "current-password", currentPassword, currentPasswordStdin)
			if err != nil {
				return err
			}
			req := api.UpdateUsernameRequest{CurrentPassword: secret, NewUsername: strings.TrimSpace(newUsername)}
			if err := validateInput(req); err != nil {
				return err
			}
			client, _, err := getClient()
			if err != nil {
				return err
			}
			resp, err := client.Profile().UpdateUsername(cmdContext(cmd), req)
			if err != nil {
				return err
			}
			resp = orZero(resp)
			return printMessage(cmd, resp, resp.Message, "Username updated.")
		}),
	}
	cmd.Flags().StringVar(&currentPassword, "current-password", "", "Current password")
	cmd.Flags().BoolVar(&currentPasswordStdin, "current-password-stdin", false, "Read the current password from stdin")
	cmd.Flags().StringVar(&newUsername, "new-username", "", "New username (required)")
	_ = cmd.MarkFlagRequired("new-username")
	return cmd
}

func newProfilePhoneCmd() *cobra.Command {
	var (
		phone  string
		region string
	)

	cmd := &cobra.Command{
		Use:   "phone",
		Short: "Change the account phone number",
		Long: `Change the account phone number.

The number is normalized to E.164 before it is sent. Numbers without a
leading + are read in the --region country.`,
		Example: `  idm profile phone --phone "+44 121 234 5678"
  idm profile phone --phone "(201) 555-0123" --region US`,
		Args: cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			normalized, err := validation.NormalizePhone(phone, region)
			if err != nil {
				return api.NewStructuredError(api.ErrValidation, err.Error())
			}
			req := api.UpdatePhoneRequest{Phone: normalized}
			if err := validateInput(req); err != nil {
				return err
			}
			client, _, err := getClient()
			if err != nil {
				return err
			}
			resp, err := client.Profile().UpdatePhone(cmdContext(cmd), req)
			if err != nil {
				return err
			}
			resp = orZero(resp)
			return printMessage(cmd, resp, resp.Message, "Phone number updated to "+normalized+".")
		}),
	}
	cmd.Flags().StringVar(&phone, "phone", "", "Phone number (required)")
	cmd.Flags().StringVar(&region, "region", validation.DefaultPhoneRegion, "Default country for numbers without +country code")
	_ = cmd.MarkFlagRequired("phone")
	return cmd
}

func newProfilePasswordCmd() *cobra.Command {
	var (
		currentPassword      string
		currentPasswordStdin bool
		newPassword          string
		skipPolicyCheck      bool
		noCache              bool
	)

	cmd := &cobra.Command{
		Use:   "password",
		Short: "Change the password of the signed-in user",
		Long: `Change the password of the signed-in user.

The new password is checked against the server's password policy before it
is sent, unless --skip-policy-check is given.`,
		Example: "  idm profile password --current-password-stdin --new-password 'N3w!passphrase' < old.txt",
		Args:    cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			secret, err := resolveSecret(cmd, "current-password", currentPassword, currentPasswordStdin)
			if err != nil {
				return err
			}
			req := api.UpdatePasswordRequest{CurrentPassword: secret, NewPassword: newPassword}
			if err := validateInput(req); err != nil {
				return err
			}
			client, cfg, err := getClient()
			if err != nil {
				return err
			}
			if !skipPolicyCheck {
				if err := enforcePasswordPolicy(cmd, client, cfg, newPassword, "", noCache); err != nil {
					return err
				}
			}
			resp, err := client.Profile().UpdatePassword(cmdContext(cmd), req)
			if err != nil {
				return err
			}
			resp = orZero(resp)
			return printMessage(cmd, resp, resp.Message, "Password updated.")
		}),
	}
	cmd.Flags().StringVar(&currentPassword, "current-password", "", "Current password")
	cmd.Flags().BoolVar(&currentPasswordStdin, "current-password-stdin", false, "Read the current password from stdin")
	cmd.Flags().StringVar(&newPassword, "new-password", "", "New password (required)")
	cmd.Flags().BoolVar(&skipPolicyCheck, "skip-policy-check", false, "Do not check the new password against the server policy")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "Fetch the password policy even if a cached copy exists")
	_ = cmd.MarkFlagRequired("new-password")
	return cmd
}
