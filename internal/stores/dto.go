package stores

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mart-ng/mart-backend/pkg/db/models"
)

// StoreDTO is the owner-facing projection of a store.
type StoreDTO struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Slug           string    `json:"slug"`
	TagLine        *string   `json:"tag_line,omitempty"`
	Location       string    `json:"location"`
	ContactEmail   string    `json:"contact_email"`
	ContactPhone   string    `json:"contact_phone"`
	BannerURL      *string   `json:"banner_url,omitempty"`
	PrimaryColor   *string   `json:"primary_color,omitempty"`
	SecondaryColor *string   `json:"secondary_color,omitempty"`
	AccentColor    *string   `json:"accent_color,omitempty"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// SetupStoreRequest creates the vendor's single store.
type SetupStoreRequest struct {
	Name           string  `json:"name" validate:"required,min=2,max=120"`
	TagLine        *string `json:"tag_line" validate:"omitempty,max=255"`
	Location       string  `json:"location" validate:"required,max=255"`
	ContactEmail   string  `json:"contact_email" validate:"required,email"`
	ContactPhone   string  `json:"contact_phone" validate:"required,max=32"`
	BannerURL      *string `json:"banner_url" validate:"omitempty,url"`
	PrimaryColor   *string `json:"primary_color" validate:"omitempty,hexcolor"`
	SecondaryColor *string `json:"secondary_color" validate:"omitempty,hexcolor"`
	AccentColor    *string `json:"accent_color" validate:"omitempty,hexcolor"`
}

// UpdateStoreRequest carries a partial update. The slug is re-derived only
// when a new name is supplied.
type UpdateStoreRequest struct {
	Name           *string `json:"name" validate:"omitempty,min=2,max=120"`
	TagLine        *string `json:"tag_line" validate:"omitempty,max=255"`
	Location       *string `json:"location" validate:"omitempty,max=255"`
	ContactEmail   *string `json:"contact_email" validate:"omitempty,email"`
	ContactPhone   *string `json:"contact_phone" validate:"omitempty,max=32"`
	BannerURL      *string `json:"banner_url" validate:"omitempty,url"`
	PrimaryColor   *string `json:"primary_color" validate:"omitempty,hexcolor"`
	SecondaryColor *string `json:"secondary_color" validate:"omitempty,hexcolor"`
	AccentColor    *string `json:"accent_color" validate:"omitempty,hexcolor"`
	IsActive       *bool   `json:"is_active"`
}

// BankDetailDTO is one settlement account on a store.
type BankDetailDTO struct {
	ID            uuid.UUID `json:"id"`
	BankName      string    `json:"bank_name"`
	AccountNumber string    `json:"account_number"`
	AccountName   string    `json:"account_name"`
}

// CreateBankDetailRequest adds a settlement account.
type CreateBankDetailRequest struct {
	BankName      string `json:"bank_name" validate:"required,max=120"`
	AccountNumber string `json:"account_number" validate:"required,max=32"`
	AccountName   string `json:"account_name" validate:"required,max=120"`
}

// UpdateBankDetailRequest carries a partial bank detail update.
type UpdateBankDetailRequest struct {
	BankName      *string `json:"bank_name" validate:"omitempty,max=120"`
	AccountNumber *string `json:"account_number" validate:"omitempty,max=32"`
	AccountName   *string `json:"account_name" validate:"omitempty,max=120"`
}

// StorefrontProduct is the public projection of a listed product.
type StorefrontProduct struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	ImageURL    *string         `json:"image_url,omitempty"`
}

// StorefrontDTO is the public storefront view: the store plus its catalog.
type StorefrontDTO struct {
	Store    StoreDTO            `json:"store"`
	Products []StorefrontProduct `json:"products"`
}

func storeFromModel(store *models.Store) StoreDTO {
	return StoreDTO{
		ID:             store.ID,
		Name:           store.Name,
		Slug:           store.Slug,
		TagLine:        store.TagLine,
		Location:       store.Location,
		ContactEmail:   store.ContactEmail,
		ContactPhone:   store.ContactPhone,
		BannerURL:      store.BannerURL,
		PrimaryColor:   store.PrimaryColor,
		SecondaryColor: store.SecondaryColor,
		AccentColor:    store.AccentColor,
		IsActive:       store.IsActive,
		CreatedAt:      store.CreatedAt,
		UpdatedAt:      store.UpdatedAt,
	}
}

func bankDetailFromModel(detail *models.BankDetail) BankDetailDTO {
	return BankDetailDTO{
		ID:            detail.ID,
		BankName:      detail.BankName,
		AccountNumber: detail.AccountNumber,
		AccountName:   detail.AccountName,
	}
}

func storefrontProductFromModel(product *models.Product) StorefrontProduct {
	return StorefrontProduct{
		ID:          product.ID,
		Name:        product.Name,
		Description: product.Description,
		Price:       product.Price,
		Quantity:    product.Quantity,
		ImageURL:    product.ImageURL,
	}
}
