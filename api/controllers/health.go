package controllers

import (
	"context"
	"net/http"

	"github.com/vijayg-dev/warehouse-listing-backend/api/responses"
	"github.com/vijayg-dev/warehouse-listing-backend/pkg/config"
	pkgerrors "github.com/vijayg-dev/warehouse-listing-backend/pkg/errors"
	"github.com/vijayg-dev/warehouse-listing-backend/pkg/logger"
)

// Pinger is anything that can report dependency liveness.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-WL-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings the hard dependencies. Redis is optional; a nil pinger is
// skipped.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP, redisP Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-WL-Env", cfg.App.Env)

		components := map[string]string{}

		if dbP != nil {
			if err := dbP.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "database unavailable"))
				return
			}
			components["database"] = "ready"
		}

		if redisP != nil {
			if err := redisP.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "redis unavailable"))
				return
			}
			components["redis"] = "ready"
		}

		responses.WriteSuccess(w, map[string]any{
			"status":     "ready",
			"components": components,
		})
	}
}
