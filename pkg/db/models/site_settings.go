package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SingletonKey is the well-known value guarding the single settings row.
const SingletonKey = "default"

// SiteSettings is the single global configuration record. The unique
// singleton_key column keeps the table at one row.
type SiteSettings struct {
	ID                 uuid.UUID    `gorm:"type:uuid;primaryKey"`
	SingletonKey       string       `gorm:"column:singleton_key;not null;uniqueIndex;default:'default'"`
	SiteName           string       `gorm:"column:site_name;not null"`
	LogoURL            *string      `gorm:"column:logo_url"`
	Tagline            *string      `gorm:"column:tagline"`
	ContactEmail       string       `gorm:"column:contact_email;not null"`
	ContactPhone       string       `gorm:"column:contact_phone;not null"`
	Address            string       `gorm:"column:address;not null"`
	AboutUs            string       `gorm:"column:about_us;not null"`
	TermsAndConditions string       `gorm:"column:terms_and_conditions;not null"`
	PrivacyPolicy      string       `gorm:"column:privacy_policy;not null"`
	SocialLinks        []SocialLink `gorm:"foreignKey:SiteSettingsID;constraint:OnDelete:CASCADE"`
	CreatedAt          time.Time    `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time    `gorm:"column:updated_at;autoUpdateTime"`
}

func (s *SiteSettings) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.SingletonKey == "" {
		s.SingletonKey = SingletonKey
	}
	return nil
}

// SocialLink is a social profile attached to the site settings.
type SocialLink struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	SiteSettingsID uuid.UUID `gorm:"column:site_settings_id;type:uuid;not null;index"`
	Platform       string    `gorm:"column:platform;not null"`
	URL            string    `gorm:"column:url;not null"`
	Icon           *string   `gorm:"column:icon"`
}

func (s *SocialLink) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
