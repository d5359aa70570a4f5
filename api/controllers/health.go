package controllers

import (
	"context"
	"net/http"

	"github.com/danverhoeven/adledger-backend/api/responses"
	"github.com/danverhoeven/adledger-backend/pkg/config"
	pkgerrors "github.com/danverhoeven/adledger-backend/pkg/errors"
	"github.com/danverhoeven/adledger-backend/pkg/logger"
)

type pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-AdLedger-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports ready only when the database and redis answer a ping.
func HealthReady(cfg *config.Config, logg *logger.Logger, database, cache pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-AdLedger-Env", cfg.App.Env)

		checks := map[string]string{
			"database": "skipped",
			"redis":    "skipped",
		}

		if database != nil {
			if err := database.Ping(r.Context()); err != nil {
				checks["database"] = "down"
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.Wrap(pkgerrors.CodeDependency, err, "database unavailable").WithDetails(checks))
				return
			}
			checks["database"] = "up"
		}

		if cache != nil {
			if err := cache.Ping(r.Context()); err != nil {
				checks["redis"] = "down"
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.Wrap(pkgerrors.CodeDependency, err, "redis unavailable").WithDetails(checks))
				return
			}
			checks["redis"] = "up"
		}

		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": checks})
	}
}
