// Package server sets up the HTTP server, router, and all route definitions.
//
// SERVER ARCHITECTURE:
// This package is the "wiring" layer. It connects handlers, middleware and
// routes, and decides:
//   - which URL patterns map to which handler functions
//   - which routes need a session, which accept one, and which are public
//   - how the server starts and stops gracefully
//
// DEPENDENCY INJECTION FLOW:
// main.go loads a config.Config and calls New. New opens the store and
// hands it to NewWithStore, which assembles:
//
//	store (sqlite or postgres) ─┬─ BookmarkService ─ BookmarkHandler
//	                            ├─ LabelService ×2 ─ LabelHandler ×2
//	                            ├─ InterestService ─ InterestsHandler
//	                            └─ StatsService ─── StatsHandler
//	llm.Client + opengraph.Scraper ─ enrich.Enricher ─ EnrichService ─ EnrichHandler
//	TokenService ─ SessionService ─ AuthHandler (+ GitHubProvider when configured)
//
// This is the "composition root" pattern: every dependency is wired in one
// place rather than scattered across the codebase.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/savebox/internal/auth"
	"github.com/sakif/savebox/internal/config"
	"github.com/sakif/savebox/internal/enrich"
	"github.com/sakif/savebox/internal/handler"
	"github.com/sakif/savebox/internal/llm"
	"github.com/sakif/savebox/internal/middleware"
	"github.com/sakif/savebox/internal/model"
	"github.com/sakif/savebox/internal/opengraph"
	"github.com/sakif/savebox/internal/repository"
	"github.com/sakif/savebox/internal/repository/postgres"
	sqliteRepo "github.com/sakif/savebox/internal/repository/sqlite"
	"github.com/sakif/savebox/internal/service"
	"github.com/sakif/savebox/internal/validation"
)

const shutdownTimeout = 30 * time.Second

// Server represents the HTTP server and all its dependencies.
//
// RESOURCE MANAGEMENT:
// The Server owns the store. Start closes it after the HTTP server has
// drained, so in-flight saves finish before the connection pool goes away.
type Server struct {
	router *chi.Mux
	config *config.Config
	logger *slog.Logger
	store  repository.Store
}

// New opens the configured store and wires the server around it.
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	store, err := openStore(cfg)
	if err != nil {
		return nil, err
	}

	s, err := NewWithStore(cfg, store, logger)
	if err != nil {
		store.Close()
		return nil, err
	}
	return s, nil
}

func openStore(cfg *config.Config) (repository.Store, error) {
	switch cfg.DBDriver {
	case "postgres":
		db, err := postgres.New(cfg.DatabaseURL, cfg.AIEmbeddingDims)
		if err != nil {
			return nil, fmt.Errorf("opening postgres: %w", err)
		}
		return db, nil
	default:
		if cfg.DBPath != ":memory:" {
			// 0755 = owner can read/write/execute, others can read/execute.
			if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
				return nil, fmt.Errorf("creating database directory: %w", err)
			}
		}
		db, err := sqliteRepo.New(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("opening sqlite: %w", err)
		}
		return db, nil
	}
}

// NewWithStore wires the server around an already opened store. The
// server takes ownership of store and closes it on shutdown.
func NewWithStore(cfg *config.Config, store repository.Store, logger *slog.Logger) (*Server, error) {
	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		store:  store,
	}

	if err := s.setupRoutes(); err != nil {
		return nil, fmt.Errorf("setting up routes: %w", err)
	}
	return s, nil
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupRoutes configures all middleware and route handlers.
//
// ROUTE STRUCTURE:
//
//	session required   POST /api/bookmarks, GET|POST /api/tags, GET|POST /api/collections,
//	                   GET|POST /api/interests, GET /api/statistics, POST /api/notes, GET /api/me
//	session optional   GET /api/library
//	public             POST /api/bookmarks/summary, POST /api/images/analyze,
//	                   POST /api/metadata, POST /api/social-media/verify,
//	                   GET /healthz, /auth/github/*, POST /auth/logout
//
// MIDDLEWARE ORDER MATTERS:
// RequestID runs first so the Logger can print it. Recoverer sits inside
// the Logger so a panic is logged as a 500. Timeout bounds every handler;
// it is generous because enrichment calls a remote model.
func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(chimiddleware.Timeout(s.config.HandlerTimeout))

	tokens, err := auth.NewTokenService(s.config.JWTSecret)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}

	// === Enrichment ===
	// One client serves the text, vision and embedding roles.
	client := llm.NewClient(llm.Config{
		BaseURL:        s.config.AIBaseURL,
		APIKey:         s.config.AIAPIKey,
		ChatModel:      s.config.AIChatModel,
		VisionModel:    s.config.AIVisionModel,
		EmbeddingModel: s.config.AIEmbeddingModel,
		Dimensions:     s.config.AIEmbeddingDims,
		Timeout:        s.config.AIRequestTimeout,
		RatePerSecond:  s.config.AIRatePerSecond,
		RateBurst:      s.config.AIRateBurst,
	}, s.logger)
	enricher := enrich.New(client, client, client, opengraph.NewScraper(nil), s.logger)

	// === Services ===
	// Each service receives only the repository interface it needs.
	v := validation.New()
	bookmarks := service.NewBookmarkService(s.store, enricher, v, s.logger)
	tags := service.NewLabelService(model.KindTag, s.store, v, s.logger)
	collections := service.NewLabelService(model.KindCollection, s.store, v, s.logger)
	interests := service.NewInterestService(s.store, v, s.logger)
	stats := service.NewStatsService(s.store)
	enrichSvc := service.NewEnrichService(enricher, v, s.logger)
	sessions := service.NewSessionService(tokens, s.logger)

	// === Handlers ===
	bookmarkHandler := handler.NewBookmarkHandler(bookmarks, s.logger)
	tagHandler := handler.NewLabelHandler(tags, s.logger)
	collectionHandler := handler.NewLabelHandler(collections, s.logger)
	interestsHandler := handler.NewInterestsHandler(interests, s.logger)
	statsHandler := handler.NewStatsHandler(stats, s.logger)
	enrichHandler := handler.NewEnrichHandler(enrichSvc, s.config.MaxImageBytes, s.logger)
	healthHandler := handler.NewHealthHandler(s.store, s.logger)

	// A nil *GitHubProvider stored in the interface would not compare equal
	// to nil, so the interface stays untyped nil when sign-in is disabled.
	var github handler.GitHubExchanger
	if s.config.GitHubEnabled() {
		github = auth.NewGitHubProvider(s.config.GitHubClientID, s.config.GitHubClientSecret, s.config.GitHubCallbackURL)
	} else {
		s.logger.Warn("GitHub sign-in is not configured; /auth/github routes are disabled")
	}
	authHandler := handler.NewAuthHandler(github, sessions, s.config.SecureCookies, s.logger)

	s.router.Get("/healthz", healthHandler.HandleHealth)

	s.router.Route("/auth", func(r chi.Router) {
		r.Get("/github/login", authHandler.HandleGitHubLogin)
		r.Get("/github/callback", authHandler.HandleGitHubCallback)
		r.Post("/logout", authHandler.HandleLogout)
	})

	s.router.Route("/api", func(r chi.Router) {
		// Public enrichment helpers.
		r.Post("/bookmarks/summary", bookmarkHandler.HandleSummary)
		r.Post("/images/analyze", enrichHandler.HandleAnalyzeImage)
		r.Post("/metadata", enrichHandler.HandleMetadata)
		r.Post("/social-media/verify", enrichHandler.HandleSocialMedia)

		r.Group(func(r chi.Router) {
			r.Use(auth.OptionalAuth(tokens))
			r.Use(middleware.TrackOwner)
			r.Get("/library", bookmarkHandler.HandleLibrary)
		})

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(tokens))
			r.Use(middleware.TrackOwner)

			r.Post("/bookmarks", bookmarkHandler.HandleSave)

			r.Get("/tags", tagHandler.HandleList)
			r.Post("/tags", tagHandler.HandleCreate)
			r.Get("/collections", collectionHandler.HandleList)
			r.Post("/collections", collectionHandler.HandleCreate)

			r.Get("/interests", interestsHandler.HandleGet)
			r.Post("/interests", interestsHandler.HandleSave)

			r.Get("/statistics", statsHandler.HandleGet)
			r.Post("/notes", enrichHandler.HandleNote)
			r.Get("/me", authHandler.HandleMe)
		})
	})

	return nil
}

// Start starts the HTTP server and handles graceful shutdown.
//
// GRACEFUL SHUTDOWN:
//  1. Stop accepting new HTTP connections
//  2. Wait for in-flight requests to finish (30s timeout)
//  3. Close the store
//
// The deferred Close runs even when ListenAndServe fails outright.
func (s *Server) Start() error {
	defer func() {
		if err := s.store.Close(); err != nil {
			s.logger.Error("closing store", slog.String("error", err.Error()))
		}
	}()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.config.Port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// Enrichment routes may legitimately run for minutes.
		WriteTimeout: s.config.HandlerTimeout + 10*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
			slog.String("db_driver", s.config.DBDriver),
			slog.Bool("github_sign_in", s.config.GitHubEnabled()),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
