package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EmailVerificationToken is the single live verification token for a user.
type EmailVerificationToken struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex"`
	User      *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Token     string    `gorm:"column:token;not null;uniqueIndex"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	ExpiresAt time.Time `gorm:"column:expires_at;not null"`
	Attempts  int       `gorm:"column:attempts;not null;default:0"`
}

func (t *EmailVerificationToken) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// IsExpired reports whether the token is past its expiry at the given instant.
func (t *EmailVerificationToken) IsExpired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// MaxAttemptsReached reports whether the attempt budget is used up.
func (t *EmailVerificationToken) MaxAttemptsReached(max int) bool {
	return t.Attempts >= max
}

// TermsAcceptance records the timestamp a user accepted the terms.
type TermsAcceptance struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID     uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex"`
	User       *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	AcceptedAt time.Time `gorm:"column:accepted_at;not null"`
}

func (t *TermsAcceptance) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
