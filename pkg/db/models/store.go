package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Store represents a vendor storefront. Each vendor owns exactly one.
type Store struct {
	ID             uuid.UUID    `gorm:"type:uuid;primaryKey"`
	OwnerID        uuid.UUID    `gorm:"column:owner_id;type:uuid;not null;uniqueIndex"`
	Owner          *User        `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE"`
	Name           string       `gorm:"column:name;not null"`
	Slug           string       `gorm:"column:slug;not null;uniqueIndex"`
	TagLine        *string      `gorm:"column:tag_line"`
	Location       string       `gorm:"column:location;not null"`
	ContactEmail   string       `gorm:"column:contact_email;not null"`
	ContactPhone   string       `gorm:"column:contact_phone;not null"`
	BannerURL      *string      `gorm:"column:banner_url"`
	PrimaryColor   *string      `gorm:"column:primary_color"`
	SecondaryColor *string      `gorm:"column:secondary_color"`
	AccentColor    *string      `gorm:"column:accent_color"`
	IsActive       bool         `gorm:"column:is_active;not null;default:false"`
	BankDetails    []BankDetail `gorm:"foreignKey:StoreID;constraint:OnDelete:CASCADE"`
	CreatedAt      time.Time    `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time    `gorm:"column:updated_at;autoUpdateTime"`
}

func (s *Store) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// BankDetail holds one settlement account for a store.
type BankDetail struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	StoreID       uuid.UUID `gorm:"column:store_id;type:uuid;not null;index"`
	BankName      string    `gorm:"column:bank_name;not null"`
	AccountNumber string    `gorm:"column:account_number;not null"`
	AccountName   string    `gorm:"column:account_name;not null"`
}

func (b *BankDetail) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}
