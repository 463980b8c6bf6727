// Package middleware throttles requests per caller using sliding windows.
package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"paam/internal/ratelimit/metrics"
	"paam/internal/ratelimit/models"
	"paam/pkg/platform/httputil"
	"paam/pkg/platform/privacy"
	"paam/pkg/requestcontext"
)

// Store consumes one request from a bucket.
type Store interface {
	Allow(ctx context.Context, key string, limit models.Limit) (*models.Result, error)
}

// Middleware enforces a Limit per class. Authenticated callers are keyed by
// user id, anonymous ones by client IP.
type Middleware struct {
	store   Store
	limits  map[models.Class]models.Limit
	metrics *metrics.Metrics
	logger  *slog.Logger
}

type Option func(*Middleware)

func WithMetrics(m *metrics.Metrics) Option {
	return func(mw *Middleware) { mw.metrics = m }
}

func WithLogger(logger *slog.Logger) Option {
	return func(mw *Middleware) { mw.logger = logger }
}

func New(store Store, limits map[models.Class]models.Limit, opts ...Option) *Middleware {
	mw := &Middleware{store: store, limits: limits, logger: slog.Default()}
	for _, opt := range opts {
		opt(mw)
	}
	return mw
}

// Limit returns middleware charging class. A class without a configured
// limit is not throttled. Store failures let the request through.
func (m *Middleware) Limit(class models.Class) func(http.Handler) http.Handler {
	limit, ok := m.limits[class]
	return func(next http.Handler) http.Handler {
		if !ok || limit.Requests <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			kind, identity := caller(ctx)

			result, err := m.store.Allow(ctx, models.Key(class, kind, identity), limit)
			if err != nil {
				if m.metrics != nil {
					m.metrics.IncrementStoreErrors()
				}
				m.logger.ErrorContext(ctx, "rate limit check failed",
					"error", err,
					"class", class,
					"ip_prefix", privacy.AnonymizeIP(requestcontext.ClientIP(ctx)),
				)
				next.ServeHTTP(w, r)
				return
			}
			if m.metrics != nil {
				m.metrics.RecordDecision(string(class), result.Allowed)
			}

			setHeaders(w, result)
			if !result.Allowed {
				w.Header().Set("Retry-After", strconv.Itoa(int(result.RetryAfter.Seconds())))
				httputil.WriteJSON(w, http.StatusTooManyRequests, httputil.Envelope{
					Success: false,
					Error:   "rate limit exceeded",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func caller(ctx context.Context) (kind, identity string) {
	if userID := requestcontext.UserID(ctx); !userID.IsNil() {
		return "user", userID.String()
	}
	return "ip", requestcontext.ClientIP(ctx)
}

func setHeaders(w http.ResponseWriter, result *models.Result) {
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
}
