package products

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mart-ng/mart-backend/pkg/db/models"
)

// ProductDTO is the owner-facing projection of a catalog listing.
type ProductDTO struct {
	ID          uuid.UUID       `json:"id"`
	StoreID     uuid.UUID       `json:"store_id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	ImageURL    *string         `json:"image_url,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// CreateProductRequest adds a listing to the owner's store.
type CreateProductRequest struct {
	Name        string          `json:"name" validate:"required,min=2,max=200"`
	Description string          `json:"description" validate:"required"`
	Price       decimal.Decimal `json:"price" validate:"required"`
	Quantity    int             `json:"quantity"`
	ImageURL    *string         `json:"image_url" validate:"omitempty,url"`
}

// UpdateProductRequest carries a partial listing update.
type UpdateProductRequest struct {
	Name        *string          `json:"name" validate:"omitempty,min=2,max=200"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Quantity    *int             `json:"quantity"`
	ImageURL    *string          `json:"image_url" validate:"omitempty,url"`
}

// UpdateQuantityRequest sets the stocked quantity on a listing.
type UpdateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

func fromModel(product *models.Product) ProductDTO {
	return ProductDTO{
		ID:          product.ID,
		StoreID:     product.StoreID,
		Name:        product.Name,
		Description: product.Description,
		Price:       product.Price,
		Quantity:    product.Quantity,
		ImageURL:    product.ImageURL,
		CreatedAt:   product.CreatedAt,
		UpdatedAt:   product.UpdatedAt,
	}
}
