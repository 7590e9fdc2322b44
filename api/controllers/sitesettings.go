package controllers

import (
	"net/http"

	"github.com/mart-ng/mart-backend/api/responses"
	"github.com/mart-ng/mart-backend/api/validators"
	"github.com/mart-ng/mart-backend/internal/sitesettings"
	"github.com/mart-ng/mart-backend/pkg/logger"
)

// SiteSettingsGet is the public read of the global site configuration.
func SiteSettingsGet(svc sitesettings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		settings, err := svc.Get(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, settings)
	}
}

// SiteSettingsUpsert replaces the global site configuration.
func SiteSettingsUpsert(svc sitesettings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body sitesettings.UpsertSettingsRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		settings, err := svc.Upsert(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, settings)
	}
}
