package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/idmkit/idm-cli/internal/api"
	"github.com/idmkit/idm-cli/internal/resolve"
)

func newTwoFACmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "2fa",
		Aliases: []string{"twofa", "mfa"},
		Short:   "Manage two-factor authentication",
	}
	cmd.AddCommand(newTwoFAStatusCmd())
	cmd.AddCommand(newTwoFASetupCmd())
	cmd.AddCommand(newTwoFAEnableCmd())
	cmd.AddCommand(newTwoFADisableCmd())
	cmd.AddCommand(newTwoFASendCodeCmd())
	cmd.AddCommand(newTwoFAValidateCmd())
	return cmd
}

// parseTwoFactorType accepts a 2FA type case-insensitively or by unique
// prefix, e.g. "TOTP" or "em".
func parseTwoFactorType(input string, allowed []string) (string, error) {
	match, err := resolve.Match(strings.TrimSpace(input), allowed)
	if err != nil {
		return "", api.NewValidationError("2FA type", input, allowed)
	}
	return match, nil
}

func newTwoFAStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show configured 2FA methods",
		Args:  cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			client, _, err := getClient()
			if err != nil {
				return err
			}
			status, err := client.TwoFA().Status(cmdContext(cmd))
			if err != nil {
				return err
			}
			status = orZero(status)
			if isJSON(cmd) {
				return printJSON(cmd, status)
			}
			printTwoFAStatus(cmd, status)
			return nil
		}),
	}
}

func printTwoFAStatus(cmd *cobra.Command, status *api.TwoFactorStatus) {
	f := formatter(cmd)
	f.KV("2FA enabled", boolLabel(status.Enabled))
	_ = f.EndTable()
	if len(status.Methods) == 0 {
		return
	}
	f.StartTable([]string{"TYPE", "ENABLED", "ID"})
	for _, m := range status.Methods {
		f.Row(m.Type, boolLabel(m.Enabled), dashIfEmpty(m.TwoFactorID))
	}
	_ = f.EndTable()
}

func newTwoFASetupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Start authenticator app (TOTP) enrollment",
		Long: `Start authenticator app (TOTP) enrollment.

Add the secret or otpauth URL to an authenticator app, then confirm with
'idm 2fa enable --type totp --code CODE'.`,
		Args: cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			client, _, err := getClient()
			if err != nil {
				return err
			}
			setup, err := client.TwoFA().SetupTOTP(cmdContext(cmd))
			if err != nil {
				return err
			}
			setup = orZero(setup)
			if isJSON(cmd) {
				return printJSON(cmd, setup)
			}
			f := formatter(cmd)
			f.KV("Secret", setup.Secret)
			if setup.OTPAuthURL != "" {
				f.KV("OTPAuth URL", setup.OTPAuthURL)
			}
			_ = f.EndTable()
			f.Info("Confirm with: idm 2fa enable --type totp --code CODE")
			return nil
		}),
	}
}

func newTwoFAEnableCmd() *cobra.Command {
	var twoFactorType, code string

	cmd := &cobra.Command{
		Use:   "enable",
		Short: "Turn on a 2FA method",
		Example: `  idm 2fa enable --type totp --code 123456
  idm 2fa enable --type email`,
		Args: cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			t, err := parseTwoFactorType(twoFactorType, api.TwoFactorTypes)
			if err != nil {
				return err
			}
			req := api.EnableTwoFARequest{Type: t, Code: strings.TrimSpace(code)}
			if err := validateInput(req); err != nil {
				return err
			}
			client, _, err := getClient()
			if err != nil {
				return err
			}
			resp, err := client.TwoFA().Enable(cmdContext(cmd), req)
			if err != nil {
				return err
			}
			resp = orZero(resp)
			return printMessage(cmd, resp, resp.Message, "Two-factor method "+t+" enabled.")
		}),
	}
	cmd.Flags().StringVar(&twoFactorType, "type", "", "Method: totp|email|sms (required)")
	cmd.Flags().StringVar(&code, "code", "", "Code generated by the method (required for totp)")
	_ = cmd.MarkFlagRequired("type")
	return cmd
}

func newTwoFADisableCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "disable <type>",
		Short:   "Turn off a 2FA method",
		Example: "  idm 2fa disable totp",
		Args:    cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			t, err := parseTwoFactorType(args[0], api.TwoFactorTypes)
			if err != nil {
				return err
			}
			client, _, err := getClient()
			if err != nil {
				return err
			}
			resp, err := client.TwoFA().Disable(cmdContext(cmd), t)
			if err != nil {
				return err
			}
			resp = orZero(resp)
			return printMessage(cmd, resp, resp.Message, "Two-factor method "+t+" disabled.")
		}),
	}
}

func newTwoFASendCodeCmd() *cobra.Command {
	var twoFactorType, deliveryOption string

	cmd := &cobra.Command{
		Use:     "send-code",
		Short:   "Send a one-time code by email or SMS",
		Example: "  idm 2fa send-code --type sms --delivery-option 9b1d...",
		Args:    cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			t, err := parseTwoFactorType(twoFactorType, []string{api.TwoFactorTypeEmail, api.TwoFactorTypeSMS})
			if err != nil {
				return err
			}
			req := api.SendCodeRequest{Type: t, DeliveryOption: strings.TrimSpace(deliveryOption)}
			if err := validateInput(req); err != nil {
				return err
			}
			client, _, err := getClient()
			if err != nil {
				return err
			}
			resp, err := client.TwoFA().SendCode(cmdContext(cmd), req)
			if err != nil {
				return err
			}
			resp = orZero(resp)
			return printMessage(cmd, resp, resp.Message, "Code sent.")
		}),
	}
	cmd.Flags().StringVar(&twoFactorType, "type", "", "Method: email|sms (required)")
	cmd.Flags().StringVar(&deliveryOption, "delivery-option", "", "Hashed delivery option from the login response")
	_ = cmd.MarkFlagRequired("type")
	return cmd
}

func newTwoFAValidateCmd() *cobra.Command {
	var (
		twoFactorType string
		code          string
		showSession   bool
	)

	cmd := &cobra.Command{
		Use:     "validate",
		Short:   "Complete a login that required a second factor",
		Example: "  idm 2fa validate --type totp --code 123456 --show-session",
		Args:    cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			t, err := parseTwoFactorType(twoFactorType, api.TwoFactorTypes)
			if err != nil {
				return err
			}
			req := api.ValidateTwoFARequest{Type: t, Passcode: strings.TrimSpace(code)}
			if err := validateInput(req); err != nil {
				return err
			}
			client, _, err := getClient()
			if err != nil {
				return err
			}
			resp, err := client.TwoFA().Validate(cmdContext(cmd), req)
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
	cmd.Flags().StringVar(&twoFactorType, "type", "", "Method: totp|email|sms (required)")
	cmd.Flags().StringVar(&code, "code", "", "One-time code (required)")
	cmd.Flags().BoolVar(&showSession, "show-session", false, "Print the session cookies set by the server")
	_ = cmd.MarkFlagRequired("type")
	_ = cmd.MarkFlagRequired("code")
	return cmd
}
