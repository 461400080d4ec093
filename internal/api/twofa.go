package api

import (
	"context"
	"net/http"
	"net/url"
)

// Status returns the 2FA methods configured for the signed-in user.
func (s TwoFAService) Status(ctx context.Context) (*TwoFactorStatus, error) {
	return call[TwoFactorStatus](ctx, s, "twofa_status", http.MethodGet, s.prefix(GroupTwoFA, "/status"), nil)
}

// SetupTOTP starts authenticator-app enrollment.
func (s TwoFAService) SetupTOTP(ctx context.Context) (*TOTPSetup, error) {
	return call[TOTPSetup](ctx, s, "twofa_totp_setup", http.MethodPost, s.prefix(GroupTwoFA, "/totp/setup"), nil)
}

// Enable turns on a 2FA method.
func (s TwoFAService) Enable(ctx context.Context, req EnableTwoFARequest) (*StatusResponse, error) {
	return call[StatusResponse](ctx, s, "twofa_enable", http.MethodPost, s.prefix(GroupTwoFA, "/enable"), req)
}

// Disable turns off the 2FA method of the given type.
func (s TwoFAService) Disable(ctx context.Context, twoFactorType string) (*StatusResponse, error) {
	path := s.prefix(GroupTwoFA, "/"+url.PathEscape(twoFactorType)+"/disable")
	return call[StatusResponse](ctx, s, "twofa_disable", http.MethodPost, path, nil)
}

// SendCode delivers a one-time code for an email or SMS method.
func (s TwoFAService) SendCode(ctx context.Context, req SendCodeRequest) (*StatusResponse, error) {
	return call[StatusResponse](ctx, s, "twofa_send_code", http.MethodPost, s.prefix(GroupTwoFA, "/send-code"), req)
}

// Validate completes a login that required a second factor.
func (s TwoFAService) Validate(ctx context.Context, req ValidateTwoFARequest) (*LoginResponse, error) {
	return call[LoginResponse](ctx, s, "twofa_validate", http.MethodPost, s.prefix(GroupTwoFA, "/validate"), req)
}
