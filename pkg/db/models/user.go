package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User represents the canonical identity entity.
type User struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email           string    `gorm:"type:text;not null;uniqueIndex"`
	PasswordHash    string    `gorm:"column:password_hash;not null"`
	FirstName       string    `gorm:"column:first_name;not null"`
	LastName        string    `gorm:"column:last_name;not null"`
	Username        string    `gorm:"column:username;not null"`
	IsVendor        bool      `gorm:"column:is_vendor;not null;default:true"`
	IsEmailVerified bool      `gorm:"column:is_email_verified;not null;default:false"`
	AcceptedTerms   bool      `gorm:"column:accepted_terms;not null;default:false"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
