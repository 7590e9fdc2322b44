package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mart-ng/mart-backend/pkg/db/models"
	"github.com/mart-ng/mart-backend/pkg/enums"
)

// OrderItemRequest is one purchased line in a checkout payload.
type OrderItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,gt=0"`
}

// PlaceOrderRequest is the public checkout payload. Any client-supplied total
// is ignored; the total is always recomputed from current prices.
type PlaceOrderRequest struct {
	CustomerName    string             `json:"customer_name" validate:"required,max=200"`
	CustomerEmail   string             `json:"customer_email" validate:"required,email"`
	CustomerPhone   string             `json:"customer_phone" validate:"required,max=32"`
	CustomerAddress string             `json:"customer_address" validate:"required"`
	Items           []OrderItemRequest `json:"items" validate:"required,min=1,dive"`
}

// UpdateStatusRequest moves an order to a new lifecycle state.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// OrderItemDTO is one line on an order projection.
type OrderItemDTO struct {
	ID        uuid.UUID       `json:"id"`
	ProductID uuid.UUID       `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// OrderDTO is the full order projection returned to store owners and, for
// tracking lookups, to the customer holding the tracking number.
type OrderDTO struct {
	ID              uuid.UUID         `json:"id"`
	StoreID         uuid.UUID         `json:"store_id"`
	CustomerName    string            `json:"customer_name"`
	CustomerEmail   string            `json:"customer_email"`
	CustomerPhone   string            `json:"customer_phone"`
	CustomerAddress string            `json:"customer_address"`
	TotalAmount     decimal.Decimal   `json:"total_amount"`
	Status          enums.OrderStatus `json:"status"`
	TrackingNumber  string            `json:"tracking_number"`
	PaymentProofURL *string           `json:"payment_proof_url,omitempty"`
	Items           []OrderItemDTO    `json:"items"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// OrderPage is one cursor page of a store's orders.
type OrderPage struct {
	Orders     []OrderDTO `json:"orders"`
	NextCursor string     `json:"next_cursor,omitempty"`
}

func fromModel(order *models.Order) OrderDTO {
	dto := OrderDTO{
		ID:              order.ID,
		StoreID:         order.StoreID,
		CustomerName:    order.CustomerName,
		CustomerEmail:   order.CustomerEmail,
		CustomerPhone:   order.CustomerPhone,
		CustomerAddress: order.CustomerAddress,
		TotalAmount:     order.TotalAmount,
		Status:          order.Status,
		TrackingNumber:  order.TrackingNumber,
		PaymentProofURL: order.PaymentProofURL,
		Items:           make([]OrderItemDTO, 0, len(order.Items)),
		CreatedAt:       order.CreatedAt,
		UpdatedAt:       order.UpdatedAt,
	}
	for _, item := range order.Items {
		dto.Items = append(dto.Items, OrderItemDTO{
			ID:        item.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
		})
	}
	return dto
}
