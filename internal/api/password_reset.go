package api

import (
	"context"
	"net/http"
	"net/url"
)

// InitiateByEmail starts a reset for the account with this email.
func (s PasswordResetService) InitiateByEmail(ctx context.Context, email string) (*PasswordResetResponse, error) {
	return call[PasswordResetResponse](ctx, s, "password_reset_initiate_email", http.MethodPost, s.prefix(GroupPasswordReset, "/initiate/email"), initiateByEmailRequest{Email: email})
}

// InitiateByUsername starts a reset for the account with this username.
func (s PasswordResetService) InitiateByUsername(ctx context.Context, username string) (*PasswordResetResponse, error) {
	return call[PasswordResetResponse](ctx, s, "password_reset_initiate_username", http.MethodPost, s.prefix(GroupPasswordReset, "/initiate/username"), initiateByUsernameRequest{Username: username})
}

// Reset sets a new password using the reset token.
func (s PasswordResetService) Reset(ctx context.Context, req ResetPasswordRequest) (*PasswordResetResponse, error) {
	return call[PasswordResetResponse](ctx, s, "password_reset", http.MethodPost, s.prefix(GroupPasswordReset, "/reset"), req)
}

// Policy fetches the password rules. token is optional; servers that scope
// the policy to a reset token receive it as a query parameter. A server
// that answers without a body returns a nil policy.
func (s PasswordResetService) Policy(ctx context.Context, token string) (*PasswordPolicy, error) {
	path := s.prefix(GroupPasswordReset, "/policy")
	if token != "" {
		path += "?" + url.Values{"token": {token}}.Encode()
	}
	return call[PasswordPolicy](ctx, s, "password_policy", http.MethodGet, path, nil)
}
