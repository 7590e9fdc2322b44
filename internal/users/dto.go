package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/mart-ng/mart-backend/pkg/db/models"
)

// UserDTO is the transport shape that omits sensitive credentials.
type UserDTO struct {
	ID              uuid.UUID `json:"id"`
	Email           string    `json:"email"`
	FirstName       string    `json:"first_name"`
	LastName        string    `json:"last_name"`
	Username        string    `json:"username"`
	IsVendor        bool      `json:"is_vendor"`
	IsEmailVerified bool      `json:"is_email_verified"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// UpdateProfileRequest carries a partial profile update. The vendor flag and
// email are not editable through the public API.
type UpdateProfileRequest struct {
	FirstName *string `json:"first_name" validate:"omitempty,max=150"`
	LastName  *string `json:"last_name" validate:"omitempty,max=150"`
	Username  *string `json:"username" validate:"omitempty,max=150"`
	Password  *string `json:"password" validate:"omitempty,min=8"`
}

// CreateUserDTO holds the data required by the repo to persist a new user.
type CreateUserDTO struct {
	Email         string
	PasswordHash  string
	FirstName     string
	LastName      string
	Username      string
	AcceptedTerms bool
}

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}
	return &UserDTO{
		ID:              u.ID,
		Email:           u.Email,
		FirstName:       u.FirstName,
		LastName:        u.LastName,
		Username:        u.Username,
		IsVendor:        u.IsVendor,
		IsEmailVerified: u.IsEmailVerified,
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
	}
}

func (c CreateUserDTO) ToModel() *models.User {
	return &models.User{
		Email:         c.Email,
		PasswordHash:  c.PasswordHash,
		FirstName:     c.FirstName,
		LastName:      c.LastName,
		Username:      c.Username,
		IsVendor:      true,
		AcceptedTerms: c.AcceptedTerms,
	}
}
