package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nyudevops/shopcarts/api/controllers"
	"github.com/nyudevops/shopcarts/api/middleware"
	"github.com/nyudevops/shopcarts/api/responses"
	"github.com/nyudevops/shopcarts/internal/shopcarts"
	"github.com/nyudevops/shopcarts/pkg/config"
	pkgerrors "github.com/nyudevops/shopcarts/pkg/errors"
	"github.com/nyudevops/shopcarts/pkg/logger"
	"github.com/nyudevops/shopcarts/pkg/metrics"
	pkgredis "github.com/nyudevops/shopcarts/pkg/redis"
)

// Deps are the collaborators the router hands to controllers. Redis and
// IdempotencyStore may be nil when no Redis endpoint is configured.
type Deps struct {
	DB               controllers.Pinger
	Redis            controllers.Pinger
	IdempotencyStore pkgredis.IdempotencyStore
	Shopcarts        shopcarts.Service
	Registry         *prometheus.Registry
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Deps) http.Handler {
	r := chi.NewRouter()

	var httpMetrics *metrics.HTTPMetrics
	if deps.Registry != nil {
		httpMetrics = metrics.NewHTTPMetrics(deps.Registry)
	}

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(httpMetrics),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		responses.WriteError(req.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "the requested resource was not found"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		responses.WriteError(req.Context(), logg, w, pkgerrors.New(pkgerrors.CodeMethodNotAllowed, req.Method+" is not allowed on "+req.URL.Path))
	})

	r.Get("/", controllers.Index())
	r.Get("/healthcheck", controllers.Healthcheck())
	r.Get("/health/ready", controllers.HealthReady(logg, map[string]controllers.Pinger{
		"database": deps.DB,
		"redis":    deps.Redis,
	}))
	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	svc := deps.Shopcarts
	requireJSON := middleware.RequireJSON(logg)

	r.Route("/shopcarts", func(r chi.Router) {
		r.Use(middleware.Idempotency(deps.IdempotencyStore, cfg.Idempotency.TTL, logg))

		r.Get("/", controllers.ShopcartList(svc, logg))
		r.With(requireJSON).Post("/", controllers.ShopcartCreate(svc, logg))

		// Registered ahead of /{id} so "items" is never parsed as a cart id.
		r.Get("/items", controllers.ItemQuery(svc, logg))

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", controllers.ShopcartGet(svc, logg))
			r.Delete("/", controllers.ShopcartDelete(svc, logg))
			r.Put("/place-order", controllers.ShopcartPlaceOrder(svc, logg))

			r.Route("/items", func(r chi.Router) {
				r.Get("/", controllers.ItemList(svc, logg))
				r.With(requireJSON).Post("/", controllers.ItemAdd(svc, logg))
				r.Get("/{item_id}", controllers.ItemGet(svc, logg))
				r.With(requireJSON).Put("/{item_id}", controllers.ItemUpdate(svc, logg))
				r.Delete("/{item_id}", controllers.ItemDelete(svc, logg))
			})
		})
	})

	return r
}
