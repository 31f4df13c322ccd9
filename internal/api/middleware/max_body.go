package middleware

import (
	"net/http"

	"github.com/cloo-solutions/onboardai/internal/api"
)

// MaxBodyBytes caps request bodies at limit bytes. A declared length over
// the cap is refused before routing; a streamed body is cut off while the
// handler reads it and surfaces as *http.MaxBytesError.
func MaxBodyBytes(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limit <= 0 || r.Body == nil || r.Body == http.NoBody {
				next.ServeHTTP(w, r)
				return
			}
			if r.ContentLength > limit {
				api.BodyTooLarge(w, limit)
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, limit)
			next.ServeHTTP(w, r)
		})
	}
}
