package api

import (
	"context"
	"net/http"
)

// Passwordless creates an account without a password.
func (s SignupService) Passwordless(ctx context.Context, req PasswordlessSignupRequest) (*SignupResponse, error) {
	return call[SignupResponse](ctx, s, "signup_passwordless", http.MethodPost, s.prefix(GroupSignup, "/passwordless"), req)
}

// Register creates an account with a password.
func (s SignupService) Register(ctx context.Context, req RegisterRequest) (*SignupResponse, error) {
	return call[SignupResponse](ctx, s, "signup_register", http.MethodPost, s.prefix(GroupSignup, "/register"), req)
}
