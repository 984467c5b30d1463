package server

import (
	"net/http"

	"github.com/attica-health/carebot/internal/api"
	"github.com/attica-health/carebot/internal/api/handlers"
	"github.com/attica-health/carebot/internal/api/middleware"
	"github.com/attica-health/carebot/internal/limiter"
	"github.com/go-chi/chi/v5"
)

// Version is stamped at build time via -ldflags.
var Version = "dev"

type RouterConfig struct {
	ProjectResolver  middleware.ProjectResolver
	RateLimiter      limiter.Limiter
	Production       bool
	ChatHandler      *handlers.ChatHandler
	KnowledgeHandler *handlers.KnowledgeHandler
	ProjectHandler   *handlers.ProjectHandler
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	const maxBodyBytes int64 = 1 * 1024 * 1024

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog)
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))

	r.Get("/v1/health", func(w http.ResponseWriter, r *http.Request) {
		api.Success(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/v1/version", func(w http.ResponseWriter, r *http.Request) {
		api.Success(w, http.StatusOK, map[string]string{"version": Version})
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.ProjectAuth(cfg.ProjectResolver, cfg.Production))
		r.Use(middleware.RateLimit(cfg.RateLimiter))

		r.Post("/v1/chat", cfg.ChatHandler.Chat)
		r.Get("/v1/projects/public-config", cfg.ProjectHandler.PublicConfig)

		r.Route("/v1/kb/sources", func(r chi.Router) {
			r.Post("/", cfg.KnowledgeHandler.Create)
			r.Get("/", cfg.KnowledgeHandler.List)
			r.Delete("/{sourceID}", cfg.KnowledgeHandler.Delete)
		})
	})

	return r
}
