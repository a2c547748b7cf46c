package app

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/emdili/docrag/internal/api/handlers"
	"github.com/emdili/docrag/internal/api/middlewares"
	"github.com/emdili/docrag/internal/config"
	"github.com/emdili/docrag/internal/core"
	"github.com/emdili/docrag/internal/core/ratelimit"
)

// Server wraps the HTTP server instance and its handlers.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer builds and wires all routes.
func NewServer(cfg *config.Config, users core.UserStore, docs handlers.DocumentService, composer handlers.AnswerService, limiter *ratelimit.Limiter, logger *slog.Logger) *Server {
	authHandler := handlers.NewAuthHandler(users, cfg.JWTSecret)
	docHandler := handlers.NewDocumentHandler(docs)
	ragHandler := handlers.NewRAGHandler(composer)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(api chi.Router) {
		// public endpoints
		api.Post("/signup", authHandler.Signup)
		api.Post("/login", authHandler.Login)

		// protected endpoints; the rate limit keys on the
		// authenticated owner, so it runs after JWT
		api.Group(func(protected chi.Router) {
			protected.Use(middlewares.JWT(cfg.JWTSecret))
			protected.Use(middlewares.RateLimit(limiter))
			protected.Post("/documents", docHandler.Upload)
			protected.Get("/documents", docHandler.List)
			protected.Delete("/documents/{document_id}", docHandler.Delete)
			protected.Post("/rag/query", ragHandler.Query)
		})
	})

	httpSrv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	return &Server{httpServer: httpSrv, logger: logger}
}

// Start runs the HTTP server until it is shut down.
func (s *Server) Start() error {
	s.logger.Info("HTTP server listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}
