package request

import (
	"net/http"

	"paam/pkg/platform/httputil"
)

// BodyLimit caps request bodies at maxBytes. Declared oversize bodies are
// refused with 413 up front; undeclared ones fail on read.
func BodyLimit(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxBytes {
				httputil.WriteJSON(w, http.StatusRequestEntityTooLarge, httputil.Envelope{
					Success: false,
					Error:   "request body too large",
				})
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}
