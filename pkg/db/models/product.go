package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product represents a catalog listing owned by a store.
type Product struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	StoreID     uuid.UUID       `gorm:"column:store_id;type:uuid;not null;index"`
	Store       *Store          `gorm:"foreignKey:StoreID;constraint:OnDelete:CASCADE"`
	Name        string          `gorm:"column:name;not null"`
	Description string          `gorm:"column:description;not null"`
	Price       decimal.Decimal `gorm:"column:price;type:numeric(10,2);not null"`
	Quantity    int             `gorm:"column:quantity;not null;default:0"`
	ImageURL    *string         `gorm:"column:image_url"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
