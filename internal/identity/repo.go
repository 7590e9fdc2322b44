package identity

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mart-ng/mart-backend/pkg/db/models"
)

// VerificationRepository persists email verification tokens and terms records.
type VerificationRepository struct {
	db *gorm.DB
}

// NewVerificationRepository binds the repo to the provided GORM DB.
func NewVerificationRepository(db *gorm.DB) *VerificationRepository {
	return &VerificationRepository{db: db}
}

// CreateToken inserts a fresh verification token for the user.
func (r *VerificationRepository) CreateToken(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) (*models.EmailVerificationToken, error) {
	record := &models.EmailVerificationToken{
		UserID:    userID,
		Token:     token,
		ExpiresAt: expiresAt,
	}
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return nil, err
	}
	return record, nil
}

// FindByToken loads a verification token by its opaque value.
func (r *VerificationRepository) FindByToken(ctx context.Context, token string) (*models.EmailVerificationToken, error) {
	var record models.EmailVerificationToken
	if err := r.db.WithContext(ctx).Where("token = ?", token).First(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

// FindByUserID loads the user's current verification token, if any.
func (r *VerificationRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*models.EmailVerificationToken, error) {
	var record models.EmailVerificationToken
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

// IncrementAttempts bumps the attempt counter for the token.
func (r *VerificationRepository) IncrementAttempts(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.EmailVerificationToken{}).
		Where("id = ?", id).
		UpdateColumn("attempts", gorm.Expr("attempts + 1")).Error
}

// DeleteByUserID drops any verification token held by the user.
func (r *VerificationRepository) DeleteByUserID(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.EmailVerificationToken{}).Error
}

// RecordTermsAcceptance stores the moment a user accepted the terms.
func (r *VerificationRepository) RecordTermsAcceptance(ctx context.Context, userID uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).Create(&models.TermsAcceptance{
		UserID:     userID,
		AcceptedAt: at,
	}).Error
}
