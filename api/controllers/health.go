package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/arepabuelas/arepabuelas-backend/api/responses"
	"github.com/arepabuelas/arepabuelas-backend/pkg/config"
	pkgerrors "github.com/arepabuelas/arepabuelas-backend/pkg/errors"
	"github.com/arepabuelas/arepabuelas-backend/pkg/logger"
)

// Pinger is implemented by infrastructure clients that can report liveness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthDeps lists the dependencies probed by the readiness endpoint. A nil
// entry is skipped, which keeps local setups without object storage usable.
type HealthDeps struct {
	DB      Pinger
	Redis   Pinger
	Storage Pinger
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Arepabuelas-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

func HealthReady(cfg *config.Config, deps HealthDeps, logg *logger.Logger) http.HandlerFunc {
	probes := []struct {
		name   string
		pinger Pinger
	}{
		{"database", deps.DB},
		{"redis", deps.Redis},
		{"storage", deps.Storage},
	}

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Arepabuelas-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		checks := map[string]string{}
		for _, probe := range probes {
			if probe.pinger == nil {
				continue
			}
			if err := probe.pinger.Ping(ctx); err != nil {
				checks[probe.name] = "down"
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, probe.name+" unavailable"))
				return
			}
			checks[probe.name] = "up"
		}

		responses.WriteSuccess(w, map[string]any{
			"status": "ready",
			"checks": checks,
		})
	}
}
