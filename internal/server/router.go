package server

import (
	"net/http"

	"github.com/cloo-solutions/onboardai/internal/api/handlers"
	"github.com/cloo-solutions/onboardai/internal/api/middleware"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

const maxBodyBytes int64 = 1 << 20

type RouterConfig struct {
	Logger           *zap.Logger
	AdminToken       string
	HealthHandler    *handlers.HealthHandler
	AssistantHandler *handlers.AssistantHandler
	SyncHandler      *handlers.SyncHandler
	IntelHandler     *handlers.IntelHandler
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog(cfg.Logger))
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))

	r.Get("/health", cfg.HealthHandler.Health)

	r.Route("/api", func(r chi.Router) {
		r.Post("/ask", cfg.AssistantHandler.Ask)

		r.Route("/brief", func(r chi.Router) {
			r.Get("/", cfg.AssistantHandler.Brief)
			r.Post("/", cfg.AssistantHandler.Brief)
			r.Get("/latest", cfg.AssistantHandler.LatestBrief)
		})

		r.Get("/sync/status", cfg.SyncHandler.Status)
		r.Get("/intel/feed", cfg.IntelHandler.Feed)
		r.Get("/intel/search", cfg.IntelHandler.Search)

		r.Group(func(r chi.Router) {
			r.Use(middleware.AdminToken(cfg.AdminToken))
			r.Post("/sync/trigger", cfg.SyncHandler.Trigger)
			r.Post("/intel/refresh", cfg.IntelHandler.Refresh)
		})
	})

	return r
}
