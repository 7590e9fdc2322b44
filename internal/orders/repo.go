package orders

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mart-ng/mart-backend/pkg/db/models"
	"github.com/mart-ng/mart-backend/pkg/pagination"
)

// Repository provides order persistence on top of gorm.
type Repository struct {
	db *gorm.DB
}

func NewRepository(conn *gorm.DB) *Repository {
	return &Repository{db: conn}
}

// Create inserts the order together with its item rows. Unique-violation
// errors on the tracking number bubble up untouched so the caller can retry
// with a fresh number.
func (r *Repository) Create(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		First(&order, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *Repository) FindByTrackingNumber(ctx context.Context, trackingNumber string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		First(&order, "tracking_number = ?", trackingNumber).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// ListByStore walks a store's orders newest-first. The cursor excludes rows
// at or after its position using (created_at, id) as a composite key.
func (r *Repository) ListByStore(ctx context.Context, storeID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.Order, error) {
	query := r.db.WithContext(ctx).
		Preload("Items").
		Where("store_id = ?", storeID).
		Order("created_at DESC, id DESC").
		Limit(limit)
	if cursor != nil {
		query = query.Where(
			"created_at < ? OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var rows []models.Order
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}
	return rows, nil
}

func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	result := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", id).
		UpdateColumn("status", status)
	if result.Error != nil {
		return fmt.Errorf("updating order status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *Repository) SetPaymentProofURL(ctx context.Context, id uuid.UUID, url string) error {
	result := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", id).
		UpdateColumn("payment_proof_url", url)
	if result.Error != nil {
		return fmt.Errorf("saving payment proof reference: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, storeID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND store_id = ?", id, storeID).
		Delete(&models.Order{})
	if result.Error != nil {
		return fmt.Errorf("deleting order %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
