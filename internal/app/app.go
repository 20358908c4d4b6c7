package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"BookStack/internal/catalog"
	"BookStack/internal/identity"
	"BookStack/pkg/kit"
)

const readyTimeout = 2 * time.Second

type Deps struct {
	Log      *zap.Logger
	Users    identity.Registry
	Books    catalog.Store
	JWT      *identity.TokenMaker
	TokenTTL time.Duration
}

type HTTPDeps struct {
	Log      *zap.Logger
	Service  string
	Registry *prometheus.Registry

	MetricsEnabled bool
	MetricsToken   string
}

// NewHandler assembles the public API: identity routes under /auth, the
// catalog under /books, plus health/readiness and the guarded metrics
// endpoint.
func NewHandler(deps Deps, httpDeps HTTPDeps) http.Handler {
	users := &identity.Server{
		Log:      deps.Log,
		Registry: deps.Users,
		JWT:      deps.JWT,
		TokenTTL: deps.TokenTTL,
	}

	books := &catalog.Server{
		Store: deps.Books,
		Log:   deps.Log,
		Auth:  identity.RequireUser(deps.JWT),
	}

	r := chi.NewRouter()
	setupMiddleware(r, httpDeps)
	setupMetrics(r, httpDeps)

	r.Get("/healthz", healthz)
	r.Get("/readyz", readyz(deps))

	r.Mount("/auth", users.Routes())
	r.Mount("/books", books.Routes())

	return r
}

func setupMiddleware(r *chi.Mux, deps HTTPDeps) {
	r.Use(chimw.RequestID)
	r.Use(kit.Recoverer)
	r.Use(kit.Logging(deps.Log))
}

func setupMetrics(r *chi.Mux, deps HTTPDeps) {
	if deps.Registry == nil {
		return
	}

	metrics := kit.NewMetrics(deps.Registry)
	r.Use(metrics.Middleware(deps.Service, kit.ChiRoutePatternOrPath))

	if !deps.MetricsEnabled {
		return
	}

	r.With(kit.MetricsAuth(deps.MetricsToken)).
		Handle("/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
}

func healthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func readyz(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()

		if err := deps.Users.Ping(ctx); err != nil {
			if deps.Log != nil {
				deps.Log.Warn("readyz failed: users", zap.Error(err))
			}
			kit.WriteError(w, r, http.StatusServiceUnavailable, "users not ready", nil)
			return
		}

		if err := deps.Books.Ping(ctx); err != nil {
			if deps.Log != nil {
				deps.Log.Warn("readyz failed: books", zap.Error(err))
			}
			kit.WriteError(w, r, http.StatusServiceUnavailable, "books not ready", nil)
			return
		}

		w.WriteHeader(http.StatusOK)
	}
}
