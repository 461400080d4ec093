package api

import (
	"context"
	"net/http"
	"net/url"
)

// Login authenticates with username and password. On success the server
// sets the session cookies; a 2fa_required or multiple_users status means
// the login is not complete yet.
func (s AuthService) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	return call[LoginResponse](ctx, s, "login", http.MethodPost, s.prefix(GroupAuth, "/login"), req)
}

// RequestMagicLink emails a one-time login link.
func (s AuthService) RequestMagicLink(ctx context.Context, email string) (*MagicLinkResponse, error) {
	return call[MagicLinkResponse](ctx, s, "magic_link_email", http.MethodPost, s.prefix(GroupMagicLinks, "/email"), magicLinkRequest{Email: email})
}

// ValidateMagicLink exchanges a magic link token for a session.
func (s AuthService) ValidateMagicLink(ctx context.Context, token string) (*LoginResponse, error) {
	query := url.Values{"token": {token}}
	path := s.prefix(GroupMagicLinks, "/validate") + "?" + query.Encode()
	return call[LoginResponse](ctx, s, "magic_link_validate", http.MethodGet, path, nil)
}

// RefreshToken asks the server to rotate the session cookies.
func (s AuthService) RefreshToken(ctx context.Context) (*StatusResponse, error) {
	return call[StatusResponse](ctx, s, "token_refresh", http.MethodPost, s.prefix(GroupAuth, "/token/refresh"), nil)
}

// Logout ends the session.
func (s AuthService) Logout(ctx context.Context) error {
	return s.do(ctx, "logout", http.MethodPost, s.prefix(GroupAuth, "/logout"), nil, nil)
}
