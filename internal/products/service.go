package products

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mart-ng/mart-backend/internal/stores"
	"github.com/mart-ng/mart-backend/pkg/db"
	"github.com/mart-ng/mart-backend/pkg/db/models"
	pkgerrors "github.com/mart-ng/mart-backend/pkg/errors"
)

// Service manages the catalog of the caller's store. Every operation resolves
// the store from the owner id so listings can never cross store boundaries.
type Service interface {
	Create(ctx context.Context, ownerID uuid.UUID, req CreateProductRequest) (*ProductDTO, error)
	List(ctx context.Context, ownerID uuid.UUID) ([]ProductDTO, error)
	Get(ctx context.Context, ownerID, productID uuid.UUID) (*ProductDTO, error)
	Update(ctx context.Context, ownerID, productID uuid.UUID, req UpdateProductRequest) (*ProductDTO, error)
	Delete(ctx context.Context, ownerID, productID uuid.UUID) error
	UpdateQuantity(ctx context.Context, ownerID, productID uuid.UUID, quantity int) (*ProductDTO, error)
}

// ServiceParams packages the dependencies for the product service.
type ServiceParams struct {
	DB *db.Client
}

type service struct {
	db *db.Client
}

// NewService builds the product service.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("database client is required")
	}
	return &service{db: params.DB}, nil
}

func (s *service) Create(ctx context.Context, ownerID uuid.UUID, req CreateProductRequest) (*ProductDTO, error) {
	if req.Price.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
	}
	if req.Quantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity cannot be negative")
	}

	var created *models.Product
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		store, err := ownerStore(ctx, tx, ownerID)
		if err != nil {
			return err
		}

		product := &models.Product{
			StoreID:     store.ID,
			Name:        req.Name,
			Description: req.Description,
			Price:       req.Price,
			Quantity:    req.Quantity,
			ImageURL:    req.ImageURL,
		}
		if err := NewRepository(tx).Create(ctx, product); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create product")
		}
		created = product
		return nil
	})
	if err != nil {
		return nil, err
	}

	dto := fromModel(created)
	return &dto, nil
}

func (s *service) List(ctx context.Context, ownerID uuid.UUID) ([]ProductDTO, error) {
	store, err := ownerStore(ctx, s.db.DB(), ownerID)
	if err != nil {
		return nil, err
	}

	listings, err := NewRepository(s.db.DB()).ListByStore(ctx, store.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list products")
	}

	dtos := make([]ProductDTO, 0, len(listings))
	for i := range listings {
		dtos = append(dtos, fromModel(&listings[i]))
	}
	return dtos, nil
}

func (s *service) Get(ctx context.Context, ownerID, productID uuid.UUID) (*ProductDTO, error) {
	store, err := ownerStore(ctx, s.db.DB(), ownerID)
	if err != nil {
		return nil, err
	}

	product, err := NewRepository(s.db.DB()).FindByStoreAndID(ctx, store.ID, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}

	dto := fromModel(product)
	return &dto, nil
}

func (s *service) Update(ctx context.Context, ownerID, productID uuid.UUID, req UpdateProductRequest) (*ProductDTO, error) {
	if req.Price != nil && req.Price.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
	}
	if req.Quantity != nil && *req.Quantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity cannot be negative")
	}

	var updated *models.Product
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		store, err := ownerStore(ctx, tx, ownerID)
		if err != nil {
			return err
		}

		repo := NewRepository(tx)
		product, err := repo.FindByStoreAndID(ctx, store.ID, productID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
		}

		if req.Name != nil {
			product.Name = *req.Name
		}
		if req.Description != nil {
			product.Description = *req.Description
		}
		if req.Price != nil {
			product.Price = *req.Price
		}
		if req.Quantity != nil {
			product.Quantity = *req.Quantity
		}
		if req.ImageURL != nil {
			product.ImageURL = req.ImageURL
		}

		if err := repo.Update(ctx, product); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update product")
		}
		updated = product
		return nil
	})
	if err != nil {
		return nil, err
	}

	dto := fromModel(updated)
	return &dto, nil
}

func (s *service) Delete(ctx context.Context, ownerID, productID uuid.UUID) error {
	return s.db.WithTx(ctx, func(tx *gorm.DB) error {
		store, err := ownerStore(ctx, tx, ownerID)
		if err != nil {
			return err
		}

		if err := NewRepository(tx).Delete(ctx, store.ID, productID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete product")
		}
		return nil
	})
}

func (s *service) UpdateQuantity(ctx context.Context, ownerID, productID uuid.UUID, quantity int) (*ProductDTO, error) {
	if quantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity cannot be negative")
	}

	var updated *models.Product
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		store, err := ownerStore(ctx, tx, ownerID)
		if err != nil {
			return err
		}

		repo := NewRepository(tx)
		product, err := repo.FindByStoreAndID(ctx, store.ID, productID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
		}

		product.Quantity = quantity
		if err := repo.Update(ctx, product); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update product quantity")
		}
		updated = product
		return nil
	})
	if err != nil {
		return nil, err
	}

	dto := fromModel(updated)
	return &dto, nil
}

func ownerStore(ctx context.Context, conn *gorm.DB, ownerID uuid.UUID) (*models.Store, error) {
	store, err := stores.NewRepository(conn).FindByOwnerID(ctx, ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no store configured for this account")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load store")
	}
	return store, nil
}
