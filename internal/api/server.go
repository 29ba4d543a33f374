// Package api provides the HTTP surface of the segmented TTS editor: thin
// chi handlers over the session controller and the project/chapter store.
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/vorojar/Qwen3-TTS/internal/http/response"
	"github.com/vorojar/Qwen3-TTS/internal/ratelimit"
	"github.com/vorojar/Qwen3-TTS/internal/session"
	"github.com/vorojar/Qwen3-TTS/internal/store"
	"github.com/vorojar/Qwen3-TTS/internal/validation"
)

// Synthesis endpoints fan out to the GPU-bound engine, so inbound traffic is
// throttled per client IP well above interactive editing speed.
const (
	synthesisRPS   = 5
	synthesisBurst = 10
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	store      *store.Store
	session    *session.Controller
	validate   *validation.Validator
	router     *chi.Mux
	synthLimit *ratelimit.KeyedRateLimiter
	logger     *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(st *store.Store, controller *session.Controller, logger *slog.Logger) *Server {
	s := &Server{
		store:      st,
		session:    controller,
		validate:   validation.New(),
		router:     chi.NewRouter(),
		synthLimit: ratelimit.New(synthesisRPS, synthesisBurst),
		logger:     logger,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Close releases server-owned resources. Safe to call more than once.
func (s *Server) Close() {
	s.synthLimit.Stop()
}

// setupMiddleware configures middleware stack. The editor frontend runs on a
// separate dev origin, so CORS stays permissive.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	// Health check.
	s.router.Get("/health", s.handleHealthCheck)

	// API v1.
	s.router.Route("/api/v1", func(r chi.Router) {
		// Project and chapter management.
		r.Route("/projects", func(r chi.Router) {
			r.Get("/", s.handleListProjects)
			r.Post("/", s.handleCreateProject)
			r.Get("/{id}", s.handleGetProject)
			r.Patch("/{id}", s.handleRenameProject)
			r.Delete("/{id}", s.handleDeleteProject)
			r.Put("/{id}/voices/{character}", s.handleSetCharacterVoice)
			r.Post("/{id}/chapters", s.handleCreateChapter)
			r.Get("/{id}/chapters", s.handleListChapters)
		})
		r.Delete("/chapters/{id}", s.handleDeleteChapter)

		// The open document.
		r.Route("/session", func(r chi.Router) {
			r.Get("/", s.handleGetSession)
			r.Post("/switch", s.handleSwitchSession)
			r.Patch("/pace", s.handleSetPace)
			r.Patch("/params", s.handleSetParams)
			r.Post("/undo", s.handleUndo)
			r.Get("/track", s.handleGetTrack)
			r.Get("/subtitles", s.handleGetSubtitles)

			r.Route("/segments", func(r chi.Router) {
				r.With(s.limitSynthesis).Post("/", s.handleInsertSegment)
				r.Patch("/{index}", s.handleEditSegment)
				r.Delete("/{index}", s.handleDeleteSegment)
				r.With(s.limitSynthesis).Post("/{index}/regenerate", s.handleRegenerateSegment)
			})
		})
	})
}

// limitSynthesis rejects requests once a client outruns the synthesis
// budget. Keyed on RemoteAddr, which RealIP has already rewritten.
func (s *Server) limitSynthesis(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.synthLimit.Allow(r.RemoteAddr) {
			response.Error(w, http.StatusTooManyRequests, "synthesis rate limit exceeded", s.logger)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// handleHealthCheck returns server health status.
func (s *Server) handleHealthCheck(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, map[string]string{
		"status": "healthy",
	}, s.logger)
}
