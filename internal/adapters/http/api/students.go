package api

import (
	"context"
	"net/http"

	"github.com/agonhq/agon/internal/domain/filter"
	"github.com/agonhq/agon/internal/domain/paging"
	"github.com/agonhq/agon/internal/domain/types"
)

// StudentDependencies defines the interface for the student view.
type StudentDependencies interface {
	StudentMatches(ctx context.Context, studentID int64, f filter.Filter, page paging.Request) (types.StudentMatches, error)
}

// StudentsHandler handles per-student match requests.
type StudentsHandler struct {
	deps StudentDependencies
}

// NewStudentsHandler creates a new students handler.
func NewStudentsHandler(deps StudentDependencies) *StudentsHandler {
	return &StudentsHandler{deps: deps}
}

// HandleGetMatches handles GET /students/{id}/matches requests.
func (h *StudentsHandler) HandleGetMatches(w http.ResponseWriter, r *http.Request) {
	const op = "api.student_matches"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	id, ok := pathID(r.URL.Path, "/students/")
	if !ok {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	params, err := parseQuery(r.URL.Query())
	if err != nil {
		respondError(w, err)
		return
	}
	out, err := h.deps.StudentMatches(r.Context(), id, params.filter, params.page)
	if err != nil {
		respondError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, out)
}
