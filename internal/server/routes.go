package server

import (
	"net/http"

	"github.com/Lutefd/tasas-board/internal/commons"
	"github.com/Lutefd/tasas-board/internal/handler"
	api_middleware "github.com/Lutefd/tasas-board/internal/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func (s *Server) registerRoutes(dashboard *handler.DashboardHandler) {
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	refreshLimiter := api_middleware.NewRateLimiter(s.config.RefreshRPS, commons.RefreshBurst)

	router.Get("/healthz", dashboard.Readiness)
	router.Get("/", dashboard.Page)
	router.Get("/grid", dashboard.Grid)
	router.With(refreshLimiter.Limit).Post("/refresh", dashboard.Refresh)
	router.Route("/api", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.config.CORSAllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}))
		r.Get("/board", dashboard.Board)
	})
	s.router = router
}
