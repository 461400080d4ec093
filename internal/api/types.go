package api

import "time"

// Login outcomes reported in LoginResponse.Status.
const (
	LoginStatusSuccess       = "success"
	LoginStatusTwoFARequired = "2fa_required"
	LoginStatusMultipleUsers = "multiple_users"
)

// Two-factor method types understood by the server.
const (
	TwoFactorTypeTOTP  = "totp"
	TwoFactorTypeEmail = "email"
	TwoFactorTypeSMS   = "sms"
)

// TwoFactorTypes lists the accepted values of a 2FA type argument.
var TwoFactorTypes = []string{TwoFactorTypeTOTP, TwoFactorTypeEmail, TwoFactorTypeSMS}

// User is the account summary embedded in login responses.
type User struct {
	ID       string   `json:"id"`
	Username string   `json:"username,omitempty"`
	Name     string   `json:"name,omitempty"`
	Email    string   `json:"email,omitempty"`
	Roles    []string `json:"roles,omitempty"`
}

// DeliveryOption is one destination a 2FA code can be sent to.
type DeliveryOption struct {
	DisplayValue string `json:"display_value"`
	HashedValue  string `json:"hashed_value"`
}

// TwoFactorMethod describes a 2FA method offered during login.
type TwoFactorMethod struct {
	Type            string           `json:"type"`
	DeliveryOptions []DeliveryOption `json:"delivery_options,omitempty"`
}

// LoginResponse covers the success, 2fa_required and multiple_users shapes.
type LoginResponse struct {
	Status           string            `json:"status"`
	Message          string            `json:"message,omitempty"`
	User             *User             `json:"user,omitempty"`
	Users            []User            `json:"users,omitempty"`
	TempToken        string            `json:"temp_token,omitempty"`
	TwoFactorMethods []TwoFactorMethod `json:"two_factor_methods,omitempty"`
}

// RequiresTwoFactor reports whether login must be completed with a 2FA code.
func (r *LoginResponse) RequiresTwoFactor() bool {
	return r != nil && r.Status == LoginStatusTwoFARequired
}

// RequiresUserSelection reports whether the credentials matched several users.
func (r *LoginResponse) RequiresUserSelection() bool {
	return r != nil && r.Status == LoginStatusMultipleUsers
}

// StatusResponse is the generic acknowledgement body.
type StatusResponse struct {
	Status  string `json:"status,omitempty"`
	Message string `json:"message,omitempty"`
}

// MagicLinkResponse acknowledges a magic link request.
type MagicLinkResponse struct {
	Message string `json:"message"`
}

// SignupResponse is returned by both signup variants.
type SignupResponse struct {
	UserID  string `json:"user_id"`
	Message string `json:"message,omitempty"`
}

// UserInfo is the OIDC userinfo document.
type UserInfo struct {
	Subject             string   `json:"sub"`
	Name                string   `json:"name,omitempty"`
	PreferredUsername   string   `json:"preferred_username,omitempty"`
	Email               string   `json:"email,omitempty"`
	EmailVerified       bool     `json:"email_verified,omitempty"`
	PhoneNumber         string   `json:"phone_number,omitempty"`
	PhoneNumberVerified bool     `json:"phone_number_verified,omitempty"`
	Groups              []string `json:"groups,omitempty"`
	Roles               []string `json:"roles,omitempty"`
}

// ProfileUpdateResponse acknowledges a profile change.
type ProfileUpdateResponse struct {
	Status  string `json:"status,omitempty"`
	Message string `json:"message,omitempty"`
}

// TwoFactorMethodStatus is one configured 2FA method.
type TwoFactorMethodStatus struct {
	TwoFactorID string `json:"two_factor_id,omitempty"`
	Type        string `json:"type"`
	Enabled     bool   `json:"enabled"`
}

// TwoFactorStatus is the account's 2FA summary.
type TwoFactorStatus struct {
	Enabled bool                    `json:"enabled"`
	Count   int                     `json:"count"`
	Methods []TwoFactorMethodStatus `json:"methods,omitempty"`
}

// TOTPSetup carries the secret for enrolling an authenticator app.
type TOTPSetup struct {
	Secret     string `json:"secret"`
	QRCode     string `json:"qr_code,omitempty"`
	OTPAuthURL string `json:"otpauth_url,omitempty"`
}

// EmailVerificationResponse acknowledges a verification token.
type EmailVerificationResponse struct {
	Message    string     `json:"message"`
	VerifiedAt *time.Time `json:"verified_at,omitempty"`
}

// VerificationStatus reports whether the account email is verified.
type VerificationStatus struct {
	EmailVerified bool       `json:"email_verified"`
	VerifiedAt    *time.Time `json:"verified_at,omitempty"`
}

// PasswordResetResponse acknowledges a reset step.
type PasswordResetResponse struct {
	Message string `json:"message"`
}

// PasswordPolicy describes the server's password rules.
type PasswordPolicy struct {
	MinLength          int  `json:"min_length"`
	RequireUppercase   bool `json:"require_uppercase"`
	RequireLowercase   bool `json:"require_lowercase"`
	RequireDigit       bool `json:"require_digit"`
	RequireSpecialChar bool `json:"require_special_char"`
	DisallowCommonPwds bool `json:"disallow_common_pwds"`
	MaxRepeatedChars   int  `json:"max_repeated_chars"`
	HistoryCheckCount  int  `json:"history_check_count"`
	ExpirationDays     int  `json:"expiration_days"`
}
