package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/nyudevops/shopcarts/api/responses"
	pkgerrors "github.com/nyudevops/shopcarts/pkg/errors"
	"github.com/nyudevops/shopcarts/pkg/logger"
)

const readinessTimeout = 2 * time.Second

// Pinger is any dependency that can report its reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Healthcheck is the liveness probe used by the platform.
func Healthcheck() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteJSON(w, http.StatusOK, map[string]any{
			"status":  http.StatusOK,
			"message": "Healthy",
		})
	}
}

// HealthReady pings each named dependency and fails with 503 on the first error.
func HealthReady(logg *logger.Logger, deps map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		for name, dep := range deps {
			if dep == nil {
				continue
			}
			if err := dep.Ping(ctx); err != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.Wrap(pkgerrors.CodeDependency, err, name+" unreachable").
						WithDetails(map[string]any{"dependency": name}))
				return
			}
		}
		responses.WriteJSON(w, http.StatusOK, map[string]any{
			"status":  http.StatusOK,
			"message": "Ready",
		})
	}
}

// Index describes the service and where its collection lives.
func Index() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteJSON(w, http.StatusOK, map[string]string{
			"name":    "Shopcart REST API Service",
			"version": "1.0",
			"url":     resourceURL(r, "/shopcarts"),
		})
	}
}
