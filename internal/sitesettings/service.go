package sitesettings

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/mart-ng/mart-backend/pkg/db"
	"github.com/mart-ng/mart-backend/pkg/db/models"
	pkgerrors "github.com/mart-ng/mart-backend/pkg/errors"
)

// Service reads and replaces the single global site configuration row.
type Service interface {
	Get(ctx context.Context) (*SettingsDTO, error)
	Upsert(ctx context.Context, req UpsertSettingsRequest) (*SettingsDTO, error)
}

// ServiceParams packages the dependencies for the site settings service.
type ServiceParams struct {
	DB *db.Client
}

type service struct {
	db *db.Client
}

// NewService builds the site settings service.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("database client is required")
	}
	return &service{db: params.DB}, nil
}

func (s *service) Get(ctx context.Context) (*SettingsDTO, error) {
	var settings models.SiteSettings
	err := s.db.DB().WithContext(ctx).
		Preload("SocialLinks").
		First(&settings, "singleton_key = ?", models.SingletonKey).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "site settings are not configured")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load site settings")
	}

	dto := fromModel(&settings)
	return &dto, nil
}

func (s *service) Upsert(ctx context.Context, req UpsertSettingsRequest) (*SettingsDTO, error) {
	var saved *models.SiteSettings
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		var settings models.SiteSettings
		err := tx.WithContext(ctx).
			First(&settings, "singleton_key = ?", models.SingletonKey).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			settings = models.SiteSettings{SingletonKey: models.SingletonKey}
		case err != nil:
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load site settings")
		}

		settings.SiteName = req.SiteName
		settings.LogoURL = req.LogoURL
		settings.Tagline = req.Tagline
		settings.ContactEmail = req.ContactEmail
		settings.ContactPhone = req.ContactPhone
		settings.Address = req.Address
		settings.AboutUs = req.AboutUs
		settings.TermsAndConditions = req.TermsAndConditions
		settings.PrivacyPolicy = req.PrivacyPolicy
		settings.SocialLinks = nil

		if err := tx.WithContext(ctx).Save(&settings).Error; err != nil {
			if db.IsUniqueViolation(err, "uq_site_settings_singleton") {
				return pkgerrors.New(pkgerrors.CodeConflict, "site settings already exist")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save site settings")
		}

		// Replace the link set wholesale.
		err = tx.WithContext(ctx).
			Where("site_settings_id = ?", settings.ID).
			Delete(&models.SocialLink{}).Error
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clear social links")
		}
		for _, link := range req.SocialLinks {
			row := models.SocialLink{
				SiteSettingsID: settings.ID,
				Platform:       link.Platform,
				URL:            link.URL,
				Icon:           link.Icon,
			}
			if err := tx.WithContext(ctx).Create(&row).Error; err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create social link")
			}
			settings.SocialLinks = append(settings.SocialLinks, row)
		}

		saved = &settings
		return nil
	})
	if err != nil {
		return nil, err
	}

	dto := fromModel(saved)
	return &dto, nil
}
