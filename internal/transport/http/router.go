// Package httptransport assembles the public HTTP surface: the global
// middleware chain, the versioned lookup routes, token exchange and the
// admin plane. Handlers delegate to domain services; no business logic
// lives here.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"zipstate/internal/platform/metrics"
	"zipstate/internal/platform/middleware"
	"zipstate/internal/ratelimit"
	"zipstate/pkg/domain"
	"zipstate/pkg/platform/httputil"
)

// Config carries the router-level knobs from the server config.
type Config struct {
	AdminToken     string
	AuthRequired   bool
	RequestTimeout time.Duration
}

// HealthCheck reports the readiness of one backing dependency.
type HealthCheck func(ctx context.Context) error

// Deps bundles everything the router mounts. Construction happens in main;
// wiring happens here.
type Deps struct {
	Logger    *slog.Logger
	Metrics   *metrics.Metrics
	Gatherer  prometheus.Gatherer
	Lookups   LookupRoutes
	Auth      *AuthHandler
	Admin     *AdminHandler
	Validator middleware.JWTValidator
	RateLimit *ratelimit.Middleware
	Health    map[string]HealthCheck
}

// LookupRoutes is implemented by the lookup handler. The two registration
// methods exist so each group can sit behind its own rate limit class.
type LookupRoutes interface {
	RegisterLookups(r chi.Router)
	RegisterBatch(r chi.Router)
}

// NewRouter builds the full route tree. Ambient middleware is applied once
// at the top; the /v1 groups add version stamping, rate limiting and
// optional bearer auth on top of it.
func NewRouter(cfg Config, deps Deps) chi.Router {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}
	limiter := deps.RateLimit
	if limiter == nil {
		limiter = ratelimit.NewMiddleware(nil, deps.Logger, ratelimit.WithDisabled(true))
	}

	r := chi.NewRouter()
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.ClientMetadata)
	r.Use(middleware.Logger(deps.Logger))
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.LatencyMiddleware(deps.Metrics))

	r.Get("/healthz", handleHealthz)
	r.Get("/readyz", handleReadyz(deps.Health))
	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/v1", func(v1 chi.Router) {
		v1.Use(middleware.ExtractVersion(domain.APIVersionV1))
		v1.Use(middleware.ContentTypeJSON)

		if deps.Auth != nil {
			v1.Group(func(g chi.Router) {
				g.Use(limiter.RateLimit(ratelimit.ClassAuth))
				deps.Auth.Register(g)
			})
		}

		if deps.Lookups != nil {
			v1.Group(func(g chi.Router) {
				g.Use(limiter.RateLimit(ratelimit.ClassLookup))
				if cfg.AuthRequired {
					g.Use(middleware.RequireAuth(deps.Validator, deps.Logger))
				}
				deps.Lookups.RegisterLookups(g)
			})

			v1.Group(func(g chi.Router) {
				g.Use(limiter.RateLimit(ratelimit.ClassBatch))
				if cfg.AuthRequired {
					g.Use(middleware.RequireAuth(deps.Validator, deps.Logger))
				}
				deps.Lookups.RegisterBatch(g)
			})
		}
	})

	if deps.Admin != nil {
		r.Route("/admin", func(ar chi.Router) {
			ar.Use(middleware.RequireAdminToken(cfg.AdminToken, deps.Logger))
			ar.Use(middleware.ContentTypeJSON)
			deps.Admin.Register(ar)
		})
	}

	return r
}

func handleHealthz(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// readyzResponse reports per-dependency readiness for /readyz.
type readyzResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func handleReadyz(checks map[string]HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		resp := readyzResponse{Status: "ok"}
		if len(checks) > 0 {
			resp.Checks = make(map[string]string, len(checks))
		}
		status := http.StatusOK
		for name, check := range checks {
			if err := check(ctx); err != nil {
				resp.Checks[name] = err.Error()
				resp.Status = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[name] = "ok"
		}
		httputil.WriteJSON(w, status, resp)
	}
}
