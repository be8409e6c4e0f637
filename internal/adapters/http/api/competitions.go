package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/agonhq/agon/internal/domain/filter"
	"github.com/agonhq/agon/internal/domain/model"
	"github.com/agonhq/agon/internal/domain/paging"
	"github.com/agonhq/agon/internal/domain/types"
)

// CompetitionDependencies defines the interface for the competition view
// and descriptor upserts.
type CompetitionDependencies interface {
	CompetitionMatches(ctx context.Context, competitionID int64, f filter.Filter, page paging.Request) (types.CompetitionMatches, error)
	PutCompetition(ctx context.Context, c model.Competition) error
}

// CompetitionsHandler handles per-competition match requests.
type CompetitionsHandler struct {
	deps CompetitionDependencies
}

// NewCompetitionsHandler creates a new competitions handler.
func NewCompetitionsHandler(deps CompetitionDependencies) *CompetitionsHandler {
	return &CompetitionsHandler{deps: deps}
}

// HandleGetMatches handles GET /competitions/{id}/matches requests.
func (h *CompetitionsHandler) HandleGetMatches(w http.ResponseWriter, r *http.Request) {
	const op = "api.competition_matches"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	id, ok := pathID(r.URL.Path, "/competitions/")
	if !ok {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	params, err := parseQuery(r.URL.Query())
	if err != nil {
		respondError(w, err)
		return
	}
	out, err := h.deps.CompetitionMatches(r.Context(), id, params.filter, params.page)
	if err != nil {
		respondError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// HandlePutCompetition handles POST /competitions requests.
func (h *CompetitionsHandler) HandlePutCompetition(w http.ResponseWriter, r *http.Request) {
	const op = "api.put_competition"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var c model.Competition
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if c.ID < 1 || strings.TrimSpace(c.Title) == "" {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	if err := h.deps.PutCompetition(r.Context(), c); err != nil {
		respondError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": "stored"})
}
