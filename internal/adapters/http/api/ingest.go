package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/agonhq/agon/internal/domain/dedupe"
	"github.com/agonhq/agon/internal/domain/model"
)

// IngestDependencies defines the interface for match event ingestion.
type IngestDependencies interface {
	dedupe.Deduper
	Enqueue(ctx context.Context, e model.MatchEvent) bool
}

// IngestHandler handles scored match event submissions.
type IngestHandler struct {
	deps IngestDependencies
}

// NewIngestHandler creates a new ingest handler.
func NewIngestHandler(deps IngestDependencies) *IngestHandler {
	return &IngestHandler{deps: deps}
}

// HandlePostMatch handles POST /matches requests.
func (h *IngestHandler) HandlePostMatch(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_match"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var e model.MatchEvent
	if err := json.NewDecoder(r.Body).Decode(&e); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := e.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if e.Recommendation.CreatedAt.IsZero() {
		e.Recommendation.CreatedAt = time.Now().UTC()
	}

	// Idempotency check - mark as seen first
	if h.deps.SeenAndRecord(r.Context(), e.EventID) {
		writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", Duplicate: true})
		return
	}

	// Try to enqueue for async processing; the service unrecords the
	// event ID itself when the queue rejects it.
	if ok := h.deps.Enqueue(r.Context(), e); !ok {
		writeError(w, http.StatusTooManyRequests, "backpressure", NewKind(op, ErrBackpressure))
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted", Duplicate: false})
}
