package api

import (
	"context"
	"net/http"
)

// UpdateUsername changes the login name of the signed-in user.
func (s ProfileService) UpdateUsername(ctx context.Context, req UpdateUsernameRequest) (*ProfileUpdateResponse, error) {
	return s.put(ctx, "profile_username", "/username", req)
}

// UpdatePhone changes the phone number of the signed-in user.
func (s ProfileService) UpdatePhone(ctx context.Context, req UpdatePhoneRequest) (*ProfileUpdateResponse, error) {
	return s.put(ctx, "profile_phone", "/phone", req)
}

// UpdatePassword changes the password of the signed-in user.
func (s ProfileService) UpdatePassword(ctx context.Context, req UpdatePasswordRequest) (*ProfileUpdateResponse, error) {
	return s.put(ctx, "profile_password", "/password", req)
}

func (s ProfileService) put(ctx context.Context, op, path string, body any) (*ProfileUpdateResponse, error) {
	return call[ProfileUpdateResponse](ctx, s, op, http.MethodPut, s.prefix(GroupProfile, path), body)
}
