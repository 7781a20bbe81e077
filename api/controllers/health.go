package controllers

import (
	"net/http"

	"github.com/lovepage-app/lovepage-backend/api/responses"
	"github.com/lovepage-app/lovepage-backend/pkg/config"
	"github.com/lovepage-app/lovepage-backend/pkg/db"
	"github.com/lovepage-app/lovepage-backend/pkg/logger"
	"github.com/lovepage-app/lovepage-backend/pkg/redis"
	"github.com/lovepage-app/lovepage-backend/pkg/storage/gcs"
)

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-LovePage-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings every dependency the API needs to serve traffic. Nil
// pingers are skipped so partial wiring in tests stays green.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP db.Pinger, redisP redis.Pinger, gcsP gcs.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		w.Header().Set("X-LovePage-Env", cfg.App.Env)

		checks := map[string]string{}
		healthy := true

		if dbP != nil {
			checks["db"] = "ok"
			if err := dbP.Ping(ctx); err != nil {
				checks["db"] = "down"
				healthy = false
				if logg != nil {
					logg.Error(ctx, "db ping failed", err)
				}
			}
		}
		if redisP != nil {
			checks["redis"] = "ok"
			if err := redisP.Ping(ctx); err != nil {
				checks["redis"] = "down"
				healthy = false
				if logg != nil {
					logg.Error(ctx, "redis ping failed", err)
				}
			}
		}
		if gcsP != nil {
			checks["storage"] = "ok"
			if err := gcsP.Ping(ctx); err != nil {
				checks["storage"] = "down"
				healthy = false
				if logg != nil {
					logg.Error(ctx, "storage ping failed", err)
				}
			}
		}

		status := "ready"
		httpStatus := http.StatusOK
		if !healthy {
			status = "degraded"
			httpStatus = http.StatusServiceUnavailable
		}
		responses.WriteSuccessStatus(w, httpStatus, map[string]any{"status": status, "checks": checks})
	}
}
