// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	repository "github.com/agonhq/agon/internal/adapters/repository"
	"github.com/agonhq/agon/internal/domain/dedupe"
	"github.com/agonhq/agon/internal/domain/filter"
	"github.com/agonhq/agon/internal/domain/model"
	"github.com/agonhq/agon/internal/domain/paging"
	"github.com/agonhq/agon/internal/domain/types"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	dedupe.Deduper

	// Enqueue pushes a match event for async processing.
	// Returns false on backpressure.
	Enqueue(ctx context.Context, e model.MatchEvent) bool

	// PutCompetition upserts a competition descriptor synchronously.
	PutCompetition(ctx context.Context, c model.Competition) error

	// Read operations expose the two aggregation views.
	CompetitionMatches(ctx context.Context, competitionID int64, f filter.Filter, page paging.Request) (types.CompetitionMatches, error)
	StudentMatches(ctx context.Context, studentID int64, f filter.Filter, page paging.Request) (types.StudentMatches, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler       *HealthHandler
	statsHandler        *StatsHandler
	ingestHandler       *IngestHandler
	competitionsHandler *CompetitionsHandler
	studentsHandler     *StudentsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:       NewHealthHandler(),
		statsHandler:        NewStatsHandler(statsProvider),
		ingestHandler:       NewIngestHandler(deps),
		competitionsHandler: NewCompetitionsHandler(deps),
		studentsHandler:     NewStudentsHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/matches", MetricsMiddleware(s.ingestHandler.HandlePostMatch, "matches"))
	mux.HandleFunc("/competitions", MetricsMiddleware(s.competitionsHandler.HandlePutCompetition, "competitions"))
	mux.HandleFunc("/competitions/", MetricsMiddleware(s.competitionsHandler.HandleGetMatches, "competition_matches"))
	mux.HandleFunc("/students/", MetricsMiddleware(s.studentsHandler.HandleGetMatches, "student_matches"))
}

type ackResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
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

// respondError translates pipeline errors into the documented status codes.
func respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, filter.ErrInvalidFilter),
		errors.Is(err, paging.ErrInvalidPage):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, repository.ErrUnavailable):
		writeError(w, http.StatusServiceUnavailable, "store_unavailable", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}
