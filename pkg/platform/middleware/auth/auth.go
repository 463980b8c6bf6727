// Package auth resolves the caller's identity from a session token or an
// API key and guards routes that need one.
package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	id "paam/pkg/domain"
	dErrors "paam/pkg/domain-errors"
	"paam/pkg/platform/httputil"
	"paam/pkg/requestcontext"
)

// APIKeyPrefix marks bearer credentials that are API keys rather than sessions.
const APIKeyPrefix = "paam_"

// APIKeyVerifier resolves a raw API key to its owner.
type APIKeyVerifier interface {
	VerifyAPIKey(ctx context.Context, raw string) (id.UserID, requestcontext.Role, error)
}

// Authenticator populates the request context with the caller's identity.
type Authenticator struct {
	sessions *Sessions
	apiKeys  APIKeyVerifier
	logger   *slog.Logger
}

// NewAuthenticator wires session validation and, when apiKeys is non-nil,
// API key validation.
func NewAuthenticator(sessions *Sessions, apiKeys APIKeyVerifier, logger *slog.Logger) *Authenticator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Authenticator{sessions: sessions, apiKeys: apiKeys, logger: logger}
}

// Identify attaches the caller's user id and role when credentials are
// present. Requests without credentials pass through anonymously; requests
// with bad credentials are rejected with 401.
func (a *Authenticator) Identify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		apiKey, token := credentials(r)

		var (
			userID id.UserID
			role   requestcontext.Role
		)
		switch {
		case apiKey != "" && a.apiKeys != nil:
			uid, rl, err := a.apiKeys.VerifyAPIKey(ctx, apiKey)
			if err != nil {
				if dErrors.HasCode(err, dErrors.CodeUnauthorized) {
					a.reject(w, r, "api key rejected", err)
					return
				}
				a.logger.ErrorContext(ctx, "api key verification failed",
					"error", err,
					"request_id", requestcontext.RequestID(ctx),
				)
				httputil.WriteError(w, err)
				return
			}
			userID, role = uid, rl
		case apiKey != "":
			a.reject(w, r, "api keys not accepted", nil)
			return
		case token != "":
			session, err := a.sessions.Parse(token, requestcontext.Now(ctx))
			if err != nil {
				a.reject(w, r, "session rejected", err)
				return
			}
			userID, role = session.UserID, session.Role
		default:
			next.ServeHTTP(w, r)
			return
		}

		ctx = requestcontext.WithUserID(ctx, userID)
		ctx = requestcontext.WithRole(ctx, role)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (a *Authenticator) reject(w http.ResponseWriter, r *http.Request, msg string, err error) {
	ctx := r.Context()
	a.logger.WarnContext(ctx, "unauthorized access - "+msg,
		"error", err,
		"request_id", requestcontext.RequestID(ctx),
	)
	httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "invalid credentials"))
}

// credentials returns an API key or a session token, in that order of
// precedence: X-API-Key, Authorization Bearer, then the session cookie.
func credentials(r *http.Request) (apiKey, token string) {
	if key := strings.TrimSpace(r.Header.Get("X-API-Key")); key != "" {
		return key, ""
	}
	if bearer, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		bearer = strings.TrimSpace(bearer)
		if strings.HasPrefix(bearer, APIKeyPrefix) {
			return bearer, ""
		}
		if bearer != "" {
			return "", bearer
		}
	}
	if cookie, err := r.Cookie(SessionCookie); err == nil && cookie.Value != "" {
		return "", cookie.Value
	}
	return "", ""
}

// RequireSession rejects anonymous requests with 401. It must run after Identify.
func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requestcontext.UserID(r.Context()).IsNil() {
			httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}
