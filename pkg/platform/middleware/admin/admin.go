// Package admin guards operator-only routes.
package admin

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	dErrors "paam/pkg/domain-errors"
	"paam/pkg/platform/httputil"
	"paam/pkg/requestcontext"
)

// SignInPath is where browser navigations without an admin session land.
const SignInPath = "/signin"

// RequireAdmin lets through only sessions with the ADMIN role. It must run
// after auth.Authenticator.Identify. Browser navigations are redirected to
// the sign-in page; API clients get 401 or 403.
func RequireAdmin(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if requestcontext.SessionRole(ctx) == requestcontext.RoleAdmin {
				next.ServeHTTP(w, r)
				return
			}

			anonymous := requestcontext.UserID(ctx).IsNil()
			logger.WarnContext(ctx, "admin access denied",
				"path", r.URL.Path,
				"anonymous", anonymous,
				"request_id", requestcontext.RequestID(ctx),
			)

			if wantsHTML(r) {
				http.Redirect(w, r, SignInPath+"?next="+url.QueryEscape(r.URL.RequestURI()), http.StatusFound)
				return
			}
			if anonymous {
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
				return
			}
			httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, "admin role required"))
		})
	}
}

func wantsHTML(r *http.Request) bool {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		return false
	}
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}
