// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/okian/admitcalc/pkg/logger"
)

// maxBodyBytes bounds request bodies, imports included.
const maxBodyBytes = 1 << 20

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	HierarchyDependencies
	SelectionDependencies
	ScoreSetDependencies
	ResultDependencies
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	hierarchyHandler *HierarchyHandler
	selectionHandler *SelectionHandler
	scoreSetHandler  *ScoreSetHandler
	resultHandler    *ResultHandler

	corsOrigins    []string
	requestTimeout time.Duration
	logger         logger.Logger
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	s := &Server{
		healthHandler:    NewHealthHandler(),
		statsHandler:     NewStatsHandler(statsProvider),
		hierarchyHandler: NewHierarchyHandler(deps),
		selectionHandler: NewSelectionHandler(deps),
		scoreSetHandler:  NewScoreSetHandler(deps),
		resultHandler:    NewResultHandler(deps),
		requestTimeout:   30 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("api")
	}
	return s
}

// Register attaches all HTTP routes to r.
func (s *Server) Register(r chi.Router) {
	r.Use(middleware.RequestID, middleware.Recoverer)
	r.Use(middleware.Timeout(s.requestTimeout))
	if len(s.corsOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.corsOrigins,
			AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Content-Type"},
			ExposedHeaders: []string{"Content-Length"},
			MaxAge:         300,
		}))
	}
	r.Use(MetricsMiddleware, RequestLogger(s.logger))

	r.Get("/healthz", s.healthHandler.HandleHealth)
	r.Get("/metrics", s.healthHandler.HandleMetrics)
	r.Get("/stats", s.statsHandler.HandleStats)

	r.Get("/subjects", s.resultHandler.HandleSubjects)
	r.Get("/result", s.resultHandler.HandleResult)
	r.Get("/excluded", s.resultHandler.HandleGetExcluded)
	r.Put("/excluded", s.resultHandler.HandlePutExcluded)

	r.Get("/selection", s.selectionHandler.HandleGet)
	r.Put("/selection", s.selectionHandler.HandlePut)

	s.hierarchyHandler.register(r)
	s.scoreSetHandler.register(r)
}

// Handler returns a router with every route registered.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	s.Register(r)
	return r
}

type idResponse struct {
	ID string `json:"id"`
}

type nameRequest struct {
	Name string `json:"name"`
}

type valueRequest struct {
	Value string `json:"value"`
}

type removedResponse struct {
	RemovedTracks []string `json:"removedTracks"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// decodeBody reads a JSON request body into v.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %w", ErrBadRequest, err)
	}
	return nil
}

// readBody returns the raw request body.
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadRequest, err)
	}
	return raw, nil
}
