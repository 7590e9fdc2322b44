package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mart-ng/mart-backend/pkg/enums"
)

// Order captures a customer purchase against a store.
type Order struct {
	ID              uuid.UUID         `gorm:"type:uuid;primaryKey"`
	StoreID         uuid.UUID         `gorm:"column:store_id;type:uuid;not null;index"`
	Store           *Store            `gorm:"foreignKey:StoreID;constraint:OnDelete:CASCADE"`
	CustomerName    string            `gorm:"column:customer_name;not null"`
	CustomerEmail   string            `gorm:"column:customer_email;not null"`
	CustomerPhone   string            `gorm:"column:customer_phone;not null"`
	CustomerAddress string            `gorm:"column:customer_address;not null"`
	TotalAmount     decimal.Decimal   `gorm:"column:total_amount;type:numeric(10,2);not null"`
	Status          enums.OrderStatus `gorm:"column:status;not null;default:'pending'"`
	TrackingNumber  string            `gorm:"column:tracking_number;not null;uniqueIndex:uq_orders_tracking_number"`
	PaymentProofURL *string           `gorm:"column:payment_proof_url"`
	Items           []OrderItem       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// OrderItem snapshots a purchased product line. Price is frozen at order time.
type OrderItem struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OrderID   uuid.UUID       `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID uuid.UUID       `gorm:"column:product_id;type:uuid;not null"`
	Product   *Product        `gorm:"foreignKey:ProductID"`
	Quantity  int             `gorm:"column:quantity;not null"`
	Price     decimal.Decimal `gorm:"column:price;type:numeric(10,2);not null"`
}

func (i *OrderItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
