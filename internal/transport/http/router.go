// Package httptransport assembles the middleware chain and route groups.
package httptransport

import (
	"log/slog"
	"net/http"
	"net/netip"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	ratelimit "paam/internal/ratelimit/middleware"
	"paam/internal/ratelimit/models"
	"paam/pkg/platform/middleware/admin"
	"paam/pkg/platform/middleware/auth"
	"paam/pkg/platform/middleware/metadata"
	"paam/pkg/platform/middleware/request"
	"paam/pkg/platform/middleware/requesttime"
)

// PublicRoutes are reachable anonymously.
type PublicRoutes interface {
	RegisterPublic(r chi.Router)
}

// AdminRoutes are mounted under /admin behind the admin guard.
type AdminRoutes interface {
	RegisterAdmin(r chi.Router)
}

// Routes are handlers exposing a single Register method.
type Routes interface {
	Register(r chi.Router)
}

type adminRegister struct{ Routes }

func (a adminRegister) RegisterAdmin(r chi.Router) { a.Register(r) }

// AsAdmin mounts a Register-style handler in the admin group.
func AsAdmin(h Routes) AdminRoutes { return adminRegister{h} }

// Config carries router level settings.
type Config struct {
	CORSAllowedOrigins []string
	TrustedProxies     []netip.Prefix
	RequestTimeout     time.Duration
	MaxBodyBytes       int64
}

// Router holds everything NewRouter mounts.
type Router struct {
	Config        Config
	Logger        *slog.Logger
	Metrics       *request.Metrics
	Authenticator *auth.Authenticator
	RateLimit     *ratelimit.Middleware
	Health        Routes
	MetricsPath   http.Handler

	Public  []PublicRoutes
	Admin   []AdminRoutes
	Session []Routes
}

// NewRouter wires the middleware stack and route groups:
//
//	/health*, /metrics           probes, no auth
//	public routes                anonymous or authenticated, public rate limit
//	/admin                       ADMIN session required, api rate limit
//	session group                any authenticated user, api rate limit
func NewRouter(rt Router) http.Handler {
	logger := rt.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(request.Recovery(logger))
	r.Use(request.RequestID)
	r.Use(metadata.NewMiddleware(rt.Config.TrustedProxies).Handler)
	r.Use(requesttime.Middleware)
	r.Use(request.Logger(logger))
	r.Use(request.Latency(rt.Metrics))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: rt.Config.CORSAllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-API-Key", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	if rt.Health != nil {
		rt.Health.Register(r)
	}
	if rt.MetricsPath != nil {
		r.Method(http.MethodGet, "/metrics", rt.MetricsPath)
	}

	r.Group(func(r chi.Router) {
		if rt.Config.RequestTimeout > 0 {
			r.Use(request.Timeout(rt.Config.RequestTimeout))
		}
		if rt.Config.MaxBodyBytes > 0 {
			r.Use(request.BodyLimit(rt.Config.MaxBodyBytes))
		}
		r.Use(request.ContentTypeJSON)
		r.Use(rt.Authenticator.Identify)

		r.Group(func(r chi.Router) {
			r.Use(rt.limit(models.ClassPublic))
			for _, h := range rt.Public {
				h.RegisterPublic(r)
			}
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(admin.RequireAdmin(logger))
			r.Use(rt.limit(models.ClassAPI))
			for _, h := range rt.Admin {
				h.RegisterAdmin(r)
			}
		})

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireSession)
			r.Use(rt.limit(models.ClassAPI))
			for _, h := range rt.Session {
				h.Register(r)
			}
		})
	})

	return r
}

func (rt Router) limit(class models.Class) func(http.Handler) http.Handler {
	if rt.RateLimit == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return rt.RateLimit.Limit(class)
}

// DefaultMetricsHandler serves the default Prometheus registry.
func DefaultMetricsHandler() http.Handler {
	return promhttp.Handler()
}
