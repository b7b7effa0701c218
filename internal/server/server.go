// Package server sets up the HTTP server, router, and all route definitions.
//
// This is the composition root: the database, services, and handlers are all
// wired together in New/setupRoutes rather than scattered across packages.
// Each layer only receives what it needs — handlers get services, services
// get repository interfaces, and nothing below this package touches chi.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/mdewit/quoter/internal/auth"
	"github.com/mdewit/quoter/internal/handler"
	"github.com/mdewit/quoter/internal/middleware"
	sqliteRepo "github.com/mdewit/quoter/internal/repository/sqlite"
	"github.com/mdewit/quoter/internal/service"
)

// Config holds server configuration.
type Config struct {
	Port            int
	TemplateDir     string
	StaticDir       string
	DBPath          string
	SessionSecret   string        // HMAC key for the identity cookie token
	SessionLifetime time.Duration // how long sign-in sessions stay valid
}

// Server owns the router and the database connection; the connection is
// closed during graceful shutdown.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New creates a Server: opens the database, wires the dependency chain, and
// registers all routes.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// setupRoutes configures middleware and route handlers.
//
// Route map:
//
//	GET  /                     → quote listing (optional ?error= banner)
//	GET  /quotes/{id}          → quote detail + comments
//	POST /quotes               → create quote (form), 303 → /#bottom
//	POST /quotes/{id}/comments → create comment (form), 303 → /quotes/{id}#bottom
//	POST /signin               → sign in / register-on-demand, sets cookie
//	GET  /signout              → clear session
//	GET  /static/*             → static files
//
// Middleware order: RequestID and RealIP first so the access log can use
// them, Recoverer so a panicking handler becomes a 500, then the access
// logger, then identity resolution — which runs once per request, before any
// handler, and never rejects a request.
func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	tokens, err := auth.NewTokenService(s.config.SessionSecret)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	s.router.Use(auth.Identity(tokens, s.db))

	fileServer := http.FileServer(http.Dir(s.config.StaticDir))
	s.router.Handle("/static/*", http.StripPrefix("/static/", fileServer))

	renderer, err := handler.NewRenderer(s.config.TemplateDir, s.logger)
	if err != nil {
		return fmt.Errorf("creating renderer: %w", err)
	}

	quoteService := service.NewQuoteService(s.db, s.logger)
	authService := service.NewAuthService(
		s.db, s.db, tokens, auth.NewPasswordService(), s.config.SessionLifetime, s.logger,
	)

	quoteHandler := handler.NewQuoteHandler(quoteService, renderer, s.logger)
	authHandler := handler.NewAuthHandler(authService, s.logger)

	s.router.Get("/", quoteHandler.HandleIndex)
	s.router.Get("/quotes/{id}", quoteHandler.HandleQuote)
	s.router.Post("/quotes", quoteHandler.HandleCreateQuote)
	s.router.Post("/quotes/{id}/comments", quoteHandler.HandleCreateComment)
	s.router.Post("/signin", authHandler.HandleSignIn)
	s.router.Get("/signout", authHandler.HandleSignOut)

	return nil
}

// Handler exposes the configured router, mainly for tests that drive the
// full request pipeline through httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases the server's resources without serving. Start does this
// itself; Close exists for callers (tests) that never call Start.
func (s *Server) Close() error {
	return s.db.Close()
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully: stop accepting connections, give in-flight requests 30s to
// finish, close the database.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
