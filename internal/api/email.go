package api

import (
	"context"
	"net/http"
)

// Verify confirms the account email with the emailed token.
func (s EmailService) Verify(ctx context.Context, token string) (*EmailVerificationResponse, error) {
	return call[EmailVerificationResponse](ctx, s, "email_verify", http.MethodPost, s.prefix(GroupEmail, "/verify"), tokenRequest{Token: token})
}

// Resend sends a fresh verification email.
func (s EmailService) Resend(ctx context.Context) (*StatusResponse, error) {
	return call[StatusResponse](ctx, s, "email_resend", http.MethodPost, s.prefix(GroupEmail, "/resend"), nil)
}

// Status reports whether the signed-in user's email is verified.
func (s EmailService) Status(ctx context.Context) (*VerificationStatus, error) {
	return call[VerificationStatus](ctx, s, "email_status", http.MethodGet, s.prefix(GroupEmail, "/status"), nil)
}
