package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/mart-ng/mart-backend/api/responses"
	"github.com/mart-ng/mart-backend/api/validators"
	"github.com/mart-ng/mart-backend/internal/auth"
	"github.com/mart-ng/mart-backend/pkg/config"
	pkgerrors "github.com/mart-ng/mart-backend/pkg/errors"
	"github.com/mart-ng/mart-backend/pkg/logger"
)

const (
	refreshCookieName = "refresh_token"
	// accessTokenHeader mirrors the response body for clients that read
	// credentials from headers.
	accessTokenHeader = "X-Mart-Token"
)

func parseBearerToken(r *http.Request) string {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if strings.HasPrefix(strings.ToLower(raw), "bearer ") {
		return strings.TrimSpace(raw[7:])
	}
	return raw
}

func setRefreshCookie(w http.ResponseWriter, token string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	})
}

func clearRefreshCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	})
}

// Login exchanges credentials for an access token and a refresh cookie.
func Login(svc auth.Service, cfg config.JWTConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body auth.LoginRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resp, err := svc.Login(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		setRefreshCookie(w, resp.RefreshToken, cfg.RefreshTokenTTL())
		w.Header().Set(accessTokenHeader, resp.AccessToken)
		responses.WriteSuccess(w, resp)
	}
}

// Refresh rotates the refresh cookie and issues a fresh access token. The
// expired access token still travels in the Authorization header so the
// session id can be recovered from its claims.
func Refresh(svc auth.Service, cfg config.JWTConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(refreshCookieName)
		if err != nil || cookie.Value == "" {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeUnauthorized, "missing refresh token"))
			return
		}

		resp, err := svc.Refresh(r.Context(), parseBearerToken(r), cookie.Value)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		setRefreshCookie(w, resp.RefreshToken, cfg.RefreshTokenTTL())
		w.Header().Set(accessTokenHeader, resp.AccessToken)
		responses.WriteSuccess(w, resp)
	}
}

// Logout revokes the session and clears the refresh cookie. The response is
// success-shaped regardless of what the client presented or whether the
// revocation store was reachable; the cookie is always deleted.
func Logout(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Logout(r.Context(), parseBearerToken(r)); err != nil && logg != nil {
			ctx := logg.WithField(r.Context(), "error", err.Error())
			logg.Warn(ctx, "session.logout.revoke_failed")
		}

		clearRefreshCookie(w)
		responses.WriteSuccess(w, map[string]string{"status": "logged_out"})
	}
}
