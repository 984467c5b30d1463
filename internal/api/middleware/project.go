package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/attica-health/carebot/internal/api"
	"github.com/attica-health/carebot/internal/domain"
)

type contextKey string

// ProjectContextKey stores the authenticated project on the request context.
const ProjectContextKey contextKey = "project"

// ProjectKeyHeader carries the tenant's public widget key.
const ProjectKeyHeader = "X-Project-Key"

// ProjectResolver loads tenant configuration by public key. The server
// wires the caching variant here so hot widget traffic stays off the
// database.
type ProjectResolver interface {
	GetByKey(ctx context.Context, publicKey string) (*domain.Project, error)
}

// ProjectAuth resolves the tenant from the X-Project-Key header and
// enforces the project's origin allowlist. Requests without an Origin
// header (same-origin, curl, server-to-server) pass the origin check.
func ProjectAuth(resolver ProjectResolver, production bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := strings.TrimSpace(r.Header.Get(ProjectKeyHeader))
			if key == "" {
				key = strings.TrimSpace(r.URL.Query().Get("projectKey"))
			}
			if key == "" {
				api.HandleError(w, domain.ErrProjectKeyRequired)
				return
			}

			project, err := resolver.GetByKey(r.Context(), key)
			if err != nil {
				if errors.Is(err, domain.ErrProjectNotFound) {
					api.HandleError(w, domain.ErrProjectKeyInvalid)
					return
				}
				api.HandleError(w, err)
				return
			}

			origin := r.Header.Get("Origin")
			if !project.IsOriginAllowed(origin, production) {
				api.HandleError(w, domain.ErrOriginNotAllowed)
				return
			}

			ctx := context.WithValue(r.Context(), ProjectContextKey, project)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetProject returns the authenticated project from context.
func GetProject(ctx context.Context) *domain.Project {
	project, _ := ctx.Value(ProjectContextKey).(*domain.Project)
	return project
}

// GetProjectID returns the authenticated project's ID from context.
func GetProjectID(ctx context.Context) string {
	if p := GetProject(ctx); p != nil {
		return p.ID
	}
	return ""
}
