package api

// Service accessors group the typed operations by route group. Each service
// holds the client's Requester so tests can substitute it.

type AuthService struct{ Requester }

type SignupService struct{ Requester }

type OAuth2Service struct{ Requester }

type ProfileService struct{ Requester }

type TwoFAService struct{ Requester }

type EmailService struct{ Requester }

type PasswordResetService struct{ Requester }

func (c *Client) Auth() AuthService {
	return AuthService{c}
}

func (c *Client) Signup() SignupService {
	return SignupService{c}
}

func (c *Client) OAuth2() OAuth2Service {
	return OAuth2Service{c}
}

func (c *Client) Profile() ProfileService {
	return ProfileService{c}
}

func (c *Client) TwoFA() TwoFAService {
	return TwoFAService{c}
}

func (c *Client) Email() EmailService {
	return EmailService{c}
}

func (c *Client) PasswordReset() PasswordResetService {
	return PasswordResetService{c}
}
