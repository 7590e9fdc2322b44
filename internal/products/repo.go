package products

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mart-ng/mart-backend/pkg/db/models"
)

// Repository provides product persistence on top of gorm.
type Repository struct {
	db *gorm.DB
}

func NewRepository(conn *gorm.DB) *Repository {
	return &Repository{db: conn}
}

func (r *Repository) Create(ctx context.Context, product *models.Product) error {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return fmt.Errorf("creating product: %w", err)
	}
	return nil
}

func (r *Repository) ListByStore(ctx context.Context, storeID uuid.UUID) ([]models.Product, error) {
	var products []models.Product
	err := r.db.WithContext(ctx).
		Where("store_id = ?", storeID).
		Order("created_at DESC").
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	return products, nil
}

func (r *Repository) FindByStoreAndID(ctx context.Context, storeID, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		First(&product, "id = ? AND store_id = ?", id, storeID).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *Repository) Update(ctx context.Context, product *models.Product) error {
	if err := r.db.WithContext(ctx).Save(product).Error; err != nil {
		return fmt.Errorf("updating product %s: %w", product.ID, err)
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, storeID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND store_id = ?", id, storeID).
		Delete(&models.Product{})
	if result.Error != nil {
		return fmt.Errorf("deleting product %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
