package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/atinyakov/GophReport/internal/middleware"
)

// RouterDeps bundles everything NewRouter mounts.
type RouterDeps struct {
	Auth          *AuthHandler
	Users         *UserHandler
	Complaints    *ComplaintHandler
	Authenticator *middleware.Authenticator
	Metrics       *middleware.Metrics
	// Gatherer backs GET /metrics. Nil disables the endpoint.
	Gatherer prometheus.Gatherer
	Logger   *zap.Logger
	// LoginRateLimit is the number of login attempts allowed per IP and minute.
	// Zero disables limiting.
	LoginRateLimit int
}

// NewRouter constructs the GophReport API handler.
//
// Routes:
//
//	POST   /api/auth/register               → Auth.Register
//	POST   /api/auth/login                  → Auth.Login (rate limited per IP)
//	GET    /api/users/me                    → Auth.Me (principal required)
//	POST   /api/users/me/deactivate         → Users.DeactivateSelf (principal required)
//	PUT    /api/admin/users/{email}/role    → Users.ChangeRole (admin)
//	POST   /api/admin/users/{email}/deactivate → Users.DeactivateUser (admin)
//	GET    /api/complaints                  → Complaints.List
//	GET    /api/complaints/{id}             → Complaints.Get
//	GET    /api/complaints/export           → Complaints.Export (principal required)
//	POST   /api/complaints                  → Complaints.Create (principal required)
//	PUT    /api/complaints/{id}             → Complaints.Update (owner or admin)
//	DELETE /api/complaints/{id}             → Complaints.Delete (owner or admin)
//
// Every /api request passes the bearer Authenticator first, so public routes
// still see the caller's principal when a valid token is sent.
func NewRouter(deps RouterDeps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(middleware.WithRequestLogging(logger))
	r.Use(chiMiddleware.Recoverer)
	r.Use(deps.Metrics.Instrument)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api", func(r chi.Router) {
		// A bad token is answered with 401 before the body is looked at.
		r.Use(deps.Authenticator.Middleware)
		// Only allow requests with Content-Type: application/json
		r.Use(chiMiddleware.AllowContentType("application/json"))

		r.Post("/auth/register", deps.Auth.Register)
		r.Group(func(r chi.Router) {
			if deps.LoginRateLimit > 0 {
				r.Use(httprate.LimitByIP(deps.LoginRateLimit, time.Minute))
			}
			r.Post("/auth/login", deps.Auth.Login)
		})

		r.Get("/complaints", deps.Complaints.List)
		r.Get("/complaints/{id}", deps.Complaints.Get)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuthenticated)

			r.Get("/users/me", deps.Auth.Me)
			r.Post("/users/me/deactivate", deps.Users.DeactivateSelf)

			r.Get("/complaints/export", deps.Complaints.Export)
			r.Post("/complaints", deps.Complaints.Create)
			r.Put("/complaints/{id}", deps.Complaints.Update)
			r.Delete("/complaints/{id}", deps.Complaints.Delete)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin)

			r.Put("/admin/users/{email}/role", deps.Users.ChangeRole)
			r.Post("/admin/users/{email}/deactivate", deps.Users.DeactivateUser)
		})
	})

	return r
}
