package controllers

import (
	"context"
	"net/http"

	"github.com/pharmaeye/pharmaeye-backend/api/responses"
	"github.com/pharmaeye/pharmaeye-backend/pkg/config"
	pkgerrors "github.com/pharmaeye/pharmaeye-backend/pkg/errors"
	"github.com/pharmaeye/pharmaeye-backend/pkg/logger"
)

// Pinger is the slice of the storage surface readiness checks need.
type Pinger interface {
	Ping(ctx context.Context) error
	Backend() string
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-PharmaEye-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

func HealthReady(cfg *config.Config, gw Pinger, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-PharmaEye-Env", cfg.App.Env)

		if gw == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeDependency, "storage gateway unavailable"))
			return
		}
		if err := gw.Ping(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "storage ping failed"))
			return
		}
		responses.WriteSuccess(w, map[string]string{
			"status":  "ready",
			"backend": gw.Backend(),
		})
	}
}
