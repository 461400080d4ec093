package api

import (
	"errors"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

// emailRules is the one definition of an acceptable email address, shared by
// the request payloads and ValidateEmail.
var emailRules = []validation.Rule{validation.Required, validation.Length(3, 320), is.Email}

// ValidateEmail checks a single address with the same rules the signup
// payloads use.
func ValidateEmail(email string) error {
	if err := validation.Validate(email, emailRules...); err != nil {
		return fmt.Errorf("email: %w", err)
	}
	return nil
}

// LoginRequest holds username/password credentials.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Validate will validate the payload
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required, validation.Length(1, 255)),
		validation.Field(&r.Password, validation.Required),
	)
}

type magicLinkRequest struct {
	Email string `json:"email"`
}

// PasswordlessSignupRequest registers an account that logs in by magic link.
type PasswordlessSignupRequest struct {
	Email          string `json:"email"`
	Username       string `json:"username,omitempty"`
	Fullname       string `json:"fullname,omitempty"`
	InvitationCode string `json:"invitation_code,omitempty"`
}

// Validate will validate the payload
func (r PasswordlessSignupRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, emailRules...),
		validation.Field(&r.Username, validation.Length(0, 255)),
		validation.Field(&r.Fullname, validation.Length(0, 255)),
	)
}

// RegisterRequest registers an account with a password.
type RegisterRequest struct {
	Email          string `json:"email"`
	Password       string `json:"password"`
	Username       string `json:"username,omitempty"`
	Fullname       string `json:"fullname,omitempty"`
	InvitationCode string `json:"invitation_code,omitempty"`
}

// Validate will validate the payload
func (r RegisterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, emailRules...),
		validation.Field(&r.Password, validation.Required),
		validation.Field(&r.Username, validation.Length(0, 255)),
		validation.Field(&r.Fullname, validation.Length(0, 255)),
	)
}

// UpdateUsernameRequest changes the login name.
type UpdateUsernameRequest struct {
	CurrentPassword string `json:"current_password"`
	NewUsername     string `json:"new_username"`
}

// Validate will validate the payload
func (r UpdateUsernameRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.CurrentPassword, validation.Required),
		validation.Field(&r.NewUsername, validation.Required, validation.Length(1, 255)),
	)
}

// UpdatePhoneRequest changes the account phone number.
type UpdatePhoneRequest struct {
	Phone string `json:"phone"`
}

// Validate will validate the payload
func (r UpdatePhoneRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Phone, validation.Required, validation.Length(3, 20)),
	)
}

// UpdatePasswordRequest changes the password of the signed-in user.
type UpdatePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// Validate will validate the payload
func (r UpdatePasswordRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.CurrentPassword, validation.Required),
		validation.Field(&r.NewPassword, validation.Required, validation.By(differentFrom(r.CurrentPassword))),
	)
}

// EnableTwoFARequest confirms a method with a code generated from it.
type EnableTwoFARequest struct {
	Type string `json:"twofa_type"`
	Code string `json:"code,omitempty"`
}

// Validate will validate the payload
func (r EnableTwoFARequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Type, validation.Required, validation.In(stringsToAny(TwoFactorTypes)...)),
		validation.Field(&r.Code, is.Digit),
	)
}

// SendCodeRequest asks the server to deliver a 2FA code.
type SendCodeRequest struct {
	Type           string `json:"twofa_type"`
	DeliveryOption string `json:"delivery_option,omitempty"`
}

// Validate will validate the payload
func (r SendCodeRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Type, validation.Required, validation.In(TwoFactorTypeEmail, TwoFactorTypeSMS)),
	)
}

// ValidateTwoFARequest completes a login that returned 2fa_required.
type ValidateTwoFARequest struct {
	Type     string `json:"twofa_type"`
	Passcode string `json:"passcode"`
}

// Validate will validate the payload
func (r ValidateTwoFARequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Type, validation.Required, validation.In(stringsToAny(TwoFactorTypes)...)),
		validation.Field(&r.Passcode, validation.Required, is.Digit, validation.Length(4, 10)),
	)
}

type tokenRequest struct {
	Token string `json:"token"`
}

type initiateByEmailRequest struct {
	Email string `json:"email"`
}

type initiateByUsernameRequest struct {
	Username string `json:"username"`
}

// ResetPasswordRequest completes a reset with the emailed token.
type ResetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

// Validate will validate the payload
func (r ResetPasswordRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Token, validation.Required),
		validation.Field(&r.NewPassword, validation.Required),
	)
}

func differentFrom(other string) validation.RuleFunc {
	return func(value interface{}) error {
		s, _ := value.(string)
		if s != "" && s == other {
			return errors.New("must differ from the current password")
		}
		return nil
	}
}

func stringsToAny(values []string) []interface{} {
	out := make([]interface{}, 0, len(values))
	for _, v := range values {
		out = append(out, strings.ToLower(v))
	}
	return out
}
