package api

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequestValidation(t *testing.T) {
	tests := []struct {
		name    string
		req     interface{ Validate() error }
		wantErr bool
	}{
		{"login ok", LoginRequest{Username: "ada", Password: "pw"}, false},
		{"login missing password", LoginRequest{Username: "ada"}, true},
		{"passwordless ok", PasswordlessSignupRequest{Email: "ada@example.com"}, false},
		{"passwordless bad email", PasswordlessSignupRequest{Email: "not-an-email"}, true},
		{"register missing password", RegisterRequest{Email: "ada@example.com"}, true},
		{"update password same", UpdatePasswordRequest{CurrentPassword: "same", NewPassword: "same"}, true},
		{"update password ok", UpdatePasswordRequest{CurrentPassword: "old", NewPassword: "new"}, false},
		{"enable bad type", EnableTwoFARequest{Type: "fax"}, true},
		{"enable totp without code", EnableTwoFARequest{Type: TwoFactorTypeTOTP}, false},
		{"enable non-digit code", EnableTwoFARequest{Type: TwoFactorTypeTOTP, Code: "12ab"}, true},
		{"send code totp", SendCodeRequest{Type: TwoFactorTypeTOTP}, true},
		{"send code sms", SendCodeRequest{Type: TwoFactorTypeSMS}, false},
		{"validate ok", ValidateTwoFARequest{Type: TwoFactorTypeEmail, Passcode: "123456"}, false},
		{"validate short", ValidateTwoFARequest{Type: TwoFactorTypeEmail, Passcode: "12"}, true},
		{"reset missing token", ResetPasswordRequest{NewPassword: "x"}, true},
		{"phone missing", UpdatePhoneRequest{}, true},
		{"username ok", UpdateUsernameRequest{CurrentPassword: "pw", NewUsername: "ada"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPasswordPolicyCheck(t *testing.T) {
	policy := PasswordPolicy{
		MinLength:          10,
		RequireUppercase:   true,
		RequireLowercase:   true,
		RequireDigit:       true,
		RequireSpecialChar: true,
		DisallowCommonPwds: true,
		MaxRepeatedChars:   2,
	}

	assert.Empty(t, policy.Check("Corr3ct-horse"))
	assert.Equal(t, []string{
		"must be at least 10 characters",
		"must contain an uppercase letter",
		"must contain a digit",
		"must contain a special character",
		"must not be a commonly used password",
	}, policy.Check("password"))
	assert.Contains(t, policy.Check("Aaaa1!bcdefg"), "must not repeat a character more than 2 times in a row")
	assert.Empty(t, PasswordPolicy{}.Check(""))
}

func TestValidateEmail_MatchesSignupPayload(t *testing.T) {
	for _, email := range []string{
		"ada@example.com",
		"",
		"not-an-email",
		"Ada <ada@example.com>",
		strings.Repeat("a", 320) + "@example.com",
	} {
		single := ValidateEmail(email)
		payload := PasswordlessSignupRequest{Email: email}.Validate()
		assert.Equal(t, single == nil, payload == nil, "email %q", email)
	}

	assert.NoError(t, ValidateEmail("ada@example.com"))
	assert.ErrorContains(t, ValidateEmail("Ada <ada@example.com>"), "must be a valid email address")
}
