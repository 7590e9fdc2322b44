package controllers

import (
	"context"
	"net/http"

	"github.com/mart-ng/mart-backend/api/responses"
	"github.com/mart-ng/mart-backend/pkg/config"
	"github.com/mart-ng/mart-backend/pkg/db"
	pkgerrors "github.com/mart-ng/mart-backend/pkg/errors"
	"github.com/mart-ng/mart-backend/pkg/logger"
)

const envHeader = "X-Mart-Env"

// Pinger is the health check surface shared by the datasource clients.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthLive reports process liveness only.
func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady checks the datasource dependencies. Any failing dependency
// turns the whole response into a 503.
func HealthReady(cfg *config.Config, logg *logger.Logger, database db.Pinger, deps map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)

		checks := map[string]string{}
		healthy := true

		if database != nil {
			checks["database"] = "ok"
			if err := database.Ping(r.Context()); err != nil {
				checks["database"] = err.Error()
				healthy = false
			}
		}
		for name, dep := range deps {
			if dep == nil {
				continue
			}
			checks[name] = "ok"
			if err := dep.Ping(r.Context()); err != nil {
				checks[name] = err.Error()
				healthy = false
			}
		}

		if !healthy {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeDependency, "dependency unavailable").WithDetails(checks))
			return
		}
		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": checks})
	}
}
