package sitesettings

import (
	"time"

	"github.com/mart-ng/mart-backend/pkg/db/models"
)

// SocialLinkDTO is one social profile on the site settings.
type SocialLinkDTO struct {
	Platform string  `json:"platform" validate:"required,max=50"`
	URL      string  `json:"url" validate:"required,url"`
	Icon     *string `json:"icon" validate:"omitempty,max=100"`
}

// SettingsDTO is the public projection of the global site configuration.
type SettingsDTO struct {
	SiteName           string          `json:"site_name"`
	LogoURL            *string         `json:"logo_url,omitempty"`
	Tagline            *string         `json:"tagline,omitempty"`
	ContactEmail       string          `json:"contact_email"`
	ContactPhone       string          `json:"contact_phone"`
	Address            string          `json:"address"`
	AboutUs            string          `json:"about_us"`
	TermsAndConditions string          `json:"terms_and_conditions"`
	PrivacyPolicy      string          `json:"privacy_policy"`
	SocialLinks        []SocialLinkDTO `json:"social_links"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// UpsertSettingsRequest replaces the global configuration. Social links are
// replaced wholesale with the submitted set.
type UpsertSettingsRequest struct {
	SiteName           string          `json:"site_name" validate:"required,max=200"`
	LogoURL            *string         `json:"logo_url" validate:"omitempty,url"`
	Tagline            *string         `json:"tagline" validate:"omitempty,max=255"`
	ContactEmail       string          `json:"contact_email" validate:"required,email"`
	ContactPhone       string          `json:"contact_phone" validate:"required,max=32"`
	Address            string          `json:"address" validate:"required"`
	AboutUs            string          `json:"about_us" validate:"required"`
	TermsAndConditions string          `json:"terms_and_conditions" validate:"required"`
	PrivacyPolicy      string          `json:"privacy_policy" validate:"required"`
	SocialLinks        []SocialLinkDTO `json:"social_links" validate:"dive"`
}

func fromModel(settings *models.SiteSettings) SettingsDTO {
	dto := SettingsDTO{
		SiteName:           settings.SiteName,
		LogoURL:            settings.LogoURL,
		Tagline:            settings.Tagline,
		ContactEmail:       settings.ContactEmail,
		ContactPhone:       settings.ContactPhone,
		Address:            settings.Address,
		AboutUs:            settings.AboutUs,
		TermsAndConditions: settings.TermsAndConditions,
		PrivacyPolicy:      settings.PrivacyPolicy,
		SocialLinks:        make([]SocialLinkDTO, 0, len(settings.SocialLinks)),
		UpdatedAt:          settings.UpdatedAt,
	}
	for _, link := range settings.SocialLinks {
		dto.SocialLinks = append(dto.SocialLinks, SocialLinkDTO{
			Platform: link.Platform,
			URL:      link.URL,
			Icon:     link.Icon,
		})
	}
	return dto
}
