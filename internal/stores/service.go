package stores

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mart-ng/mart-backend/pkg/db"
	"github.com/mart-ng/mart-backend/pkg/db/models"
	pkgerrors "github.com/mart-ng/mart-backend/pkg/errors"
)

// slugAttempts bounds the suffix search when de-duplicating store slugs.
const slugAttempts = 50

// Service manages vendor storefronts and their settlement accounts.
type Service interface {
	Setup(ctx context.Context, ownerID uuid.UUID, req SetupStoreRequest) (*StoreDTO, error)
	GetDetail(ctx context.Context, ownerID uuid.UUID) (*StoreDTO, error)
	UpdateDetail(ctx context.Context, ownerID uuid.UUID, req UpdateStoreRequest) (*StoreDTO, error)
	Storefront(ctx context.Context, slug string) (*StorefrontDTO, error)
	AddBankDetail(ctx context.Context, ownerID uuid.UUID, req CreateBankDetailRequest) (*BankDetailDTO, error)
	ListBankDetails(ctx context.Context, ownerID uuid.UUID) ([]BankDetailDTO, error)
	GetBankDetail(ctx context.Context, ownerID, detailID uuid.UUID) (*BankDetailDTO, error)
	UpdateBankDetail(ctx context.Context, ownerID, detailID uuid.UUID, req UpdateBankDetailRequest) (*BankDetailDTO, error)
	DeleteBankDetail(ctx context.Context, ownerID, detailID uuid.UUID) error
}

// ServiceParams packages the dependencies for the store service.
type ServiceParams struct {
	DB *db.Client
}

type service struct {
	db *db.Client
}

// NewService builds the store service.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("database client is required")
	}
	return &service{db: params.DB}, nil
}

func (s *service) Setup(ctx context.Context, ownerID uuid.UUID, req SetupStoreRequest) (*StoreDTO, error) {
	var created *models.Store
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := NewRepository(tx)

		if _, err := repo.FindByOwnerID(ctx, ownerID); err == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "a store already exists for this account")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check existing store")
		}

		slug, err := s.uniqueSlug(ctx, repo, req.Name, uuid.Nil)
		if err != nil {
			return err
		}

		store := &models.Store{
			OwnerID:        ownerID,
			Name:           req.Name,
			Slug:           slug,
			TagLine:        req.TagLine,
			Location:       req.Location,
			ContactEmail:   req.ContactEmail,
			ContactPhone:   req.ContactPhone,
			BannerURL:      req.BannerURL,
			PrimaryColor:   req.PrimaryColor,
			SecondaryColor: req.SecondaryColor,
			AccentColor:    req.AccentColor,
			IsActive:       true,
		}
		if err := repo.Create(ctx, store); err != nil {
			if db.IsUniqueViolation(err, "uq_stores_owner") {
				return pkgerrors.New(pkgerrors.CodeConflict, "a store already exists for this account")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create store")
		}
		created = store
		return nil
	})
	if err != nil {
		return nil, err
	}

	dto := storeFromModel(created)
	return &dto, nil
}

func (s *service) GetDetail(ctx context.Context, ownerID uuid.UUID) (*StoreDTO, error) {
	store, err := s.ownerStore(ctx, NewRepository(s.db.DB()), ownerID)
	if err != nil {
		return nil, err
	}
	dto := storeFromModel(store)
	return &dto, nil
}

func (s *service) UpdateDetail(ctx context.Context, ownerID uuid.UUID, req UpdateStoreRequest) (*StoreDTO, error) {
	var updated *models.Store
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := NewRepository(tx)

		store, err := s.ownerStore(ctx, repo, ownerID)
		if err != nil {
			return err
		}

		if req.Name != nil && *req.Name != store.Name {
			store.Name = *req.Name
			slug, err := s.uniqueSlug(ctx, repo, store.Name, store.ID)
			if err != nil {
				return err
			}
			store.Slug = slug
		}
		if req.TagLine != nil {
			store.TagLine = req.TagLine
		}
		if req.Location != nil {
			store.Location = *req.Location
		}
		if req.ContactEmail != nil {
			store.ContactEmail = *req.ContactEmail
		}
		if req.ContactPhone != nil {
			store.ContactPhone = *req.ContactPhone
		}
		if req.BannerURL != nil {
			store.BannerURL = req.BannerURL
		}
		if req.PrimaryColor != nil {
			store.PrimaryColor = req.PrimaryColor
		}
		if req.SecondaryColor != nil {
			store.SecondaryColor = req.SecondaryColor
		}
		if req.AccentColor != nil {
			store.AccentColor = req.AccentColor
		}
		if req.IsActive != nil {
			store.IsActive = *req.IsActive
		}

		if err := repo.Update(ctx, store); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update store")
		}
		updated = store
		return nil
	})
	if err != nil {
		return nil, err
	}

	dto := storeFromModel(updated)
	return &dto, nil
}

func (s *service) Storefront(ctx context.Context, slug string) (*StorefrontDTO, error) {
	repo := NewRepository(s.db.DB())

	store, err := repo.FindActiveBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "store not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load storefront")
	}

	products, err := repo.ListProducts(ctx, store.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load storefront products")
	}

	result := &StorefrontDTO{
		Store:    storeFromModel(store),
		Products: make([]StorefrontProduct, 0, len(products)),
	}
	for i := range products {
		result.Products = append(result.Products, storefrontProductFromModel(&products[i]))
	}
	return result, nil
}

func (s *service) AddBankDetail(ctx context.Context, ownerID uuid.UUID, req CreateBankDetailRequest) (*BankDetailDTO, error) {
	var created *models.BankDetail
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := NewRepository(tx)

		store, err := s.ownerStore(ctx, repo, ownerID)
		if err != nil {
			return err
		}

		detail := &models.BankDetail{
			StoreID:       store.ID,
			BankName:      req.BankName,
			AccountNumber: req.AccountNumber,
			AccountName:   req.AccountName,
		}
		if err := repo.CreateBankDetail(ctx, detail); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create bank detail")
		}
		created = detail
		return nil
	})
	if err != nil {
		return nil, err
	}

	dto := bankDetailFromModel(created)
	return &dto, nil
}

func (s *service) ListBankDetails(ctx context.Context, ownerID uuid.UUID) ([]BankDetailDTO, error) {
	repo := NewRepository(s.db.DB())

	store, err := s.ownerStore(ctx, repo, ownerID)
	if err != nil {
		return nil, err
	}

	details, err := repo.ListBankDetails(ctx, store.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list bank details")
	}

	dtos := make([]BankDetailDTO, 0, len(details))
	for i := range details {
		dtos = append(dtos, bankDetailFromModel(&details[i]))
	}
	return dtos, nil
}

func (s *service) GetBankDetail(ctx context.Context, ownerID, detailID uuid.UUID) (*BankDetailDTO, error) {
	repo := NewRepository(s.db.DB())

	store, err := s.ownerStore(ctx, repo, ownerID)
	if err != nil {
		return nil, err
	}

	detail, err := repo.FindBankDetail(ctx, store.ID, detailID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "bank detail not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load bank detail")
	}

	dto := bankDetailFromModel(detail)
	return &dto, nil
}

func (s *service) UpdateBankDetail(ctx context.Context, ownerID, detailID uuid.UUID, req UpdateBankDetailRequest) (*BankDetailDTO, error) {
	var updated *models.BankDetail
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := NewRepository(tx)

		store, err := s.ownerStore(ctx, repo, ownerID)
		if err != nil {
			return err
		}

		detail, err := repo.FindBankDetail(ctx, store.ID, detailID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "bank detail not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load bank detail")
		}

		if req.BankName != nil {
			detail.BankName = *req.BankName
		}
		if req.AccountNumber != nil {
			detail.AccountNumber = *req.AccountNumber
		}
		if req.AccountName != nil {
			detail.AccountName = *req.AccountName
		}

		if err := repo.UpdateBankDetail(ctx, detail); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update bank detail")
		}
		updated = detail
		return nil
	})
	if err != nil {
		return nil, err
	}

	dto := bankDetailFromModel(updated)
	return &dto, nil
}

func (s *service) DeleteBankDetail(ctx context.Context, ownerID, detailID uuid.UUID) error {
	return s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := NewRepository(tx)

		store, err := s.ownerStore(ctx, repo, ownerID)
		if err != nil {
			return err
		}

		if err := repo.DeleteBankDetail(ctx, store.ID, detailID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "bank detail not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete bank detail")
		}
		return nil
	})
}

func (s *service) ownerStore(ctx context.Context, repo *Repository, ownerID uuid.UUID) (*models.Store, error) {
	store, err := repo.FindByOwnerID(ctx, ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no store configured for this account")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load store")
	}
	return store, nil
}

// uniqueSlug derives the slug from the name and appends a numeric suffix
// until no other store claims it.
func (s *service) uniqueSlug(ctx context.Context, repo *Repository, name string, excludeID uuid.UUID) (string, error) {
	base := Slugify(name)
	if base == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "store name must contain letters or digits")
	}

	candidate := base
	for i := 2; i <= slugAttempts; i++ {
		taken, err := repo.SlugExists(ctx, candidate, excludeID)
		if err != nil {
			return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check slug availability")
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
	return "", pkgerrors.New(pkgerrors.CodeConflict, "could not derive a unique store slug")
}
