package auth

import (
	"github.com/google/uuid"

	"github.com/mart-ng/mart-backend/internal/users"
)

// LoginRequest carries the credentials posted to the token endpoint.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// StoreSummary is the minimal storefront data embedded in a login response.
type StoreSummary struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Slug     string    `json:"slug"`
	IsActive bool      `json:"is_active"`
}

// LoginResponse contains the token pair and the authenticated identity.
type LoginResponse struct {
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"-"`
	User         *users.UserDTO `json:"user"`
	Store        *StoreSummary  `json:"store,omitempty"`
}

// RefreshResponse contains the rotated token pair.
type RefreshResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"-"`
}
