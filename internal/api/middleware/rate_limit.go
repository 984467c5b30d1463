package middleware

import (
	"log"
	"net/http"

	"github.com/attica-health/carebot/internal/api"
	"github.com/attica-health/carebot/internal/domain"
	"github.com/attica-health/carebot/internal/limiter"
)

// RateLimit enforces a per-client request budget on the wrapped routes.
// The counter key combines the authenticated project with the client IP,
// so one noisy embedder cannot exhaust a tenant's whole budget. Limiter
// backend failures fail open; availability beats strictness here.
func RateLimit(l limiter.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := GetProjectID(r.Context())
			if key == "" {
				key = "anonymous"
			}
			key += ":" + clientIP(r)

			allowed, err := l.Allow(r.Context(), key)
			if err != nil {
				log.Printf("rate_limit: backend error, allowing request: %v", err)
				next.ServeHTTP(w, r)
				return
			}
			if !allowed {
				api.HandleError(w, domain.ErrTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
