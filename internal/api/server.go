package api

import (
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"doorsim/app"
	"doorsim/domain/simulation"
	"doorsim/internal/logging"
)

// Server exposes the simulation core over a JSON API with SSE progress
// streaming. It is a host collaborator around the core: it consumes the
// runner's progress/completion callbacks and the result shapes, nothing
// more.
type Server struct {
	router  *chi.Mux
	service *app.SimulationService
	hub     *SSEHub
	log     *logging.Logger

	// runs remembers terminal results by run handle so clients can fetch
	// and export a finished run while a newer one executes
	mu      sync.RWMutex
	active  string
	results map[string]*simulation.SimulationResult
}

// NewServer creates the API server
func NewServer(service *app.SimulationService, log *logging.Logger) *Server {
	if log == nil {
		log = logging.NewDefaultLogger()
	}
	s := &Server{
		router:  chi.NewRouter(),
		service: service,
		hub:     NewSSEHub(log),
		log:     log,
		results: make(map[string]*simulation.SimulationResult),
	}
	s.routes()
	return s
}

// Router returns the configured HTTP handler
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) routes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(60 * time.Second))

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/simulations", s.handleStartSimulation)
		r.Get("/simulations/{id}", s.handleGetSimulation)
		r.Post("/simulations/{id}/stop", s.handleStopSimulation)
		r.Get("/simulations/{id}/export", s.handleExportSimulation)
		r.Get("/simulations/{id}/events", s.handleSimulationEvents)
		r.Get("/lifetime", s.handleLifetimeTotals)
		r.Get("/health", s.handleHealth)
	})
}

func (s *Server) setActive(runID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = runID
}

func (s *Server) storeResult(runID string, result *simulation.SimulationResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == runID {
		s.active = ""
	}
	s.results[runID] = result
}

func (s *Server) lookup(runID string) (result *simulation.SimulationResult, isActive bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.results[runID], s.active == runID
}
