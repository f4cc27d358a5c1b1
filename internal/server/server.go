package server

import (
	"log/slog"
	"net/http"

	"github.com/claude/ironlog/internal/tracker"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	svc      *tracker.Service
	log      *slog.Logger
	apiKey   string
	whois    WhoIsClient
	validate *validator.Validate
	router   chi.Router
}

// New creates a new Server with all routes configured. An empty apiKey leaves
// the write endpoints open.
func New(svc *tracker.Service, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		svc:      svc,
		log:      log,
		apiKey:   apiKey,
		validate: newValidator(),
		router:   chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)
	s.router.Use(s.identity)

	s.router.Get("/api/health", s.handleHealth)
	s.router.Handle("/metrics", promhttp.Handler())

	// Read endpoints (no auth; tsnet handles access)
	s.router.Get("/api/v1/me", s.handleMe)
	s.router.Get("/api/v1/current-workout", s.handleCurrentWorkout)
	s.router.Get("/api/v1/position", s.handlePosition)
	s.router.Get("/api/v1/history", s.handleHistory)
	s.router.Get("/api/v1/template", s.handleTemplate)

	// Commands (API key required when configured)
	s.router.Group(func(r chi.Router) {
		if s.apiKey != "" {
			r.Use(APIKeyAuth(s.apiKey))
		}
		r.Post("/api/v1/sets", s.handleLogSet)
		r.Post("/api/v1/exercises/complete", s.handleCompleteExercise)
		r.Post("/api/v1/workouts/complete", s.handleCompleteWorkout)
	})
}

// SetTailscale resolves request identities through the tailnet. Without it
// every request is attributed to the local dev user.
func (s *Server) SetTailscale(lc WhoIsClient) {
	s.whois = lc
}

// MountMCP serves an MCP transport under /mcp. The MCP tools append events,
// so the transport sits behind the same API key as the command endpoints.
func (s *Server) MountMCP(h http.Handler) {
	s.router.Group(func(r chi.Router) {
		if s.apiKey != "" {
			r.Use(APIKeyAuth(s.apiKey))
		}
		r.Mount("/mcp", h)
	})
}
