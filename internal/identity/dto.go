package identity

import (
	"github.com/mart-ng/mart-backend/internal/users"
)

// RegisterRequest contains the payload required for onboarding a vendor.
type RegisterRequest struct {
	FirstName      string `json:"first_name" validate:"required,max=150"`
	LastName       string `json:"last_name" validate:"required,max=150"`
	Username       string `json:"username" validate:"required,max=150"`
	Email          string `json:"email" validate:"required,email"`
	Password       string `json:"password" validate:"required,min=8"`
	AcceptedPolicy bool   `json:"accepted_policy"`
}

// RegisterResponse is returned after a successful registration.
type RegisterResponse struct {
	User    *users.UserDTO `json:"user"`
	Message string         `json:"message"`
}

// VerifyEmailResult reports the outcome of a verification attempt.
type VerifyEmailResult struct {
	Email           string `json:"email"`
	AlreadyVerified bool   `json:"already_verified"`
}

// EmailRequest carries a bare email payload for resend and status checks.
type EmailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ActivationStatus reports where an account sits in the verification flow,
// including how long a still-valid token blocks a resend.
type ActivationStatus struct {
	Email              string `json:"email"`
	IsEmailVerified    bool   `json:"is_email_verified"`
	TokenExists        bool   `json:"token_exists"`
	IsExpired          bool   `json:"is_expired"`
	MaxAttemptsReached bool   `json:"max_attempts_reached"`
	CooldownSeconds    int    `json:"cooldown_time"`
}

// VerificationSettings describes the verification policy exposed to clients.
type VerificationSettings struct {
	MaxResendAttempts int `json:"max_resend_attempts"`
	CooldownSeconds   int `json:"cooldown_time"`
}
