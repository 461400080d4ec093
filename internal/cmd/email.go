package cmd

import (
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/idmkit/idm-cli/internal/api"
)

func newEmailCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "email",
		Short: "Verify the account email address",
	}
	cmd.AddCommand(newEmailVerifyCmd())
	cmd.AddCommand(newEmailResendCmd())
	cmd.AddCommand(newEmailStatusCmd())
	return cmd
}

func newEmailVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "verify <token>",
		Short:   "Confirm the email address with the emailed token",
		Example: "  idm email verify 3f9c...",
		Args:    cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			token := strings.TrimSpace(args[0])
			if token == "" {
				return api.NewStructuredError(api.ErrValidation, "token is required")
			}
			client, _, err := getClient()
			if err != nil {
				return err
			}
			resp, err := client.Email().Verify(cmdContext(cmd), token)
			if err != nil {
				return err
			}
			resp = orZero(resp)
			return printMessage(cmd, resp, resp.Message, "Email verified.")
		}),
	}
}

func newEmailResendCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resend",
		Short: "Send the verification email again",
		Args:  cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			client, _, err := getClient()
			if err != nil {
				return err
			}
			resp, err := client.Email().Resend(cmdContext(cmd))
			if err != nil {
				return err
			}
			resp = orZero(resp)
			return printMessage(cmd, resp, resp.Message, "Verification email sent.")
		}),
	}
}

func newEmailStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether the email address is verified",
		Args:  cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			client, _, err := getClient()
			if err != nil {
				return err
			}
			status, err := client.Email().Status(cmdContext(cmd))
			if err != nil {
				return err
			}
			status = orZero(status)
			if isJSON(cmd) {
				return printJSON(cmd, status)
			}
			printEmailStatus(cmd, status)
			return nil
		}),
	}
}

func printEmailStatus(cmd *cobra.Command, status *api.VerificationStatus) {
	f := formatter(cmd)
	f.KV("Email verified", boolLabel(status.EmailVerified))
	if status.VerifiedAt != nil {
		f.KV("Verified at", status.VerifiedAt.UTC().Format(time.RFC3339))
	}
	_ = f.EndTable()
}
