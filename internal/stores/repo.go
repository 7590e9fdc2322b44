package stores

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mart-ng/mart-backend/pkg/db/models"
)

// Repository provides store persistence on top of gorm.
type Repository struct {
	db *gorm.DB
}

func NewRepository(conn *gorm.DB) *Repository {
	return &Repository{db: conn}
}

func (r *Repository) Create(ctx context.Context, store *models.Store) error {
	if err := r.db.WithContext(ctx).Create(store).Error; err != nil {
		return fmt.Errorf("creating store: %w", err)
	}
	return nil
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Store, error) {
	var store models.Store
	if err := r.db.WithContext(ctx).First(&store, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &store, nil
}

func (r *Repository) FindByOwnerID(ctx context.Context, ownerID uuid.UUID) (*models.Store, error) {
	var store models.Store
	if err := r.db.WithContext(ctx).First(&store, "owner_id = ?", ownerID).Error; err != nil {
		return nil, err
	}
	return &store, nil
}

// FindActiveBySlug resolves the public storefront. Inactive stores are
// indistinguishable from missing ones.
func (r *Repository) FindActiveBySlug(ctx context.Context, slug string) (*models.Store, error) {
	var store models.Store
	err := r.db.WithContext(ctx).
		First(&store, "slug = ? AND is_active = ?", slug, true).Error
	if err != nil {
		return nil, err
	}
	return &store, nil
}

func (r *Repository) SlugExists(ctx context.Context, slug string, excludeID uuid.UUID) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.Store{}).Where("slug = ?", slug)
	if excludeID != uuid.Nil {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, fmt.Errorf("checking slug %q: %w", slug, err)
	}
	return count > 0, nil
}

func (r *Repository) Update(ctx context.Context, store *models.Store) error {
	if err := r.db.WithContext(ctx).Save(store).Error; err != nil {
		return fmt.Errorf("updating store %s: %w", store.ID, err)
	}
	return nil
}

func (r *Repository) ListProducts(ctx context.Context, storeID uuid.UUID) ([]models.Product, error) {
	var products []models.Product
	err := r.db.WithContext(ctx).
		Where("store_id = ?", storeID).
		Order("created_at DESC").
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("listing store products: %w", err)
	}
	return products, nil
}

func (r *Repository) CreateBankDetail(ctx context.Context, detail *models.BankDetail) error {
	if err := r.db.WithContext(ctx).Create(detail).Error; err != nil {
		return fmt.Errorf("creating bank detail: %w", err)
	}
	return nil
}

func (r *Repository) ListBankDetails(ctx context.Context, storeID uuid.UUID) ([]models.BankDetail, error) {
	var details []models.BankDetail
	err := r.db.WithContext(ctx).
		Where("store_id = ?", storeID).
		Order("bank_name ASC").
		Find(&details).Error
	if err != nil {
		return nil, fmt.Errorf("listing bank details: %w", err)
	}
	return details, nil
}

func (r *Repository) FindBankDetail(ctx context.Context, storeID, id uuid.UUID) (*models.BankDetail, error) {
	var detail models.BankDetail
	err := r.db.WithContext(ctx).
		First(&detail, "id = ? AND store_id = ?", id, storeID).Error
	if err != nil {
		return nil, err
	}
	return &detail, nil
}

func (r *Repository) UpdateBankDetail(ctx context.Context, detail *models.BankDetail) error {
	if err := r.db.WithContext(ctx).Save(detail).Error; err != nil {
		return fmt.Errorf("updating bank detail %s: %w", detail.ID, err)
	}
	return nil
}

func (r *Repository) DeleteBankDetail(ctx context.Context, storeID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND store_id = ?", id, storeID).
		Delete(&models.BankDetail{})
	if result.Error != nil {
		return fmt.Errorf("deleting bank detail %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
