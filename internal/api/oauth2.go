package api

import (
	"context"
	"net/http"
)

// UserInfo returns the OIDC claims of the signed-in user.
func (s OAuth2Service) UserInfo(ctx context.Context) (*UserInfo, error) {
	return call[UserInfo](ctx, s, "userinfo", http.MethodGet, s.prefix(GroupOAuth2, "/userinfo"), nil)
}
