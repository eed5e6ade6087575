// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/armandov/sellerpulse/internal/domain/dedupe"
	"github.com/armandov/sellerpulse/internal/domain/model"
)

// IngestDependencies defines the interface for record ingestion.
type IngestDependencies interface {
	dedupe.Deduper
	Enqueue(ctx context.Context, e model.Event) bool
}

// DealsHandler handles deal ingestion requests.
type DealsHandler struct {
	deps IngestDependencies
}

// NewDealsHandler creates a new deals handler.
func NewDealsHandler(deps IngestDependencies) *DealsHandler {
	return &DealsHandler{deps: deps}
}

// HandlePostDeal handles POST /deals requests.
func (h *DealsHandler) HandlePostDeal(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_deal"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req dealRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	// Idempotency check - mark as seen first
	if h.deps.SeenAndRecord(r.Context(), req.RecordID) {
		writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", Duplicate: true})
		return
	}

	// Try to enqueue for async processing
	if ok := h.deps.Enqueue(r.Context(), req.toEvent()); !ok {
		// Rollback the "seen" status since enqueue failed
		h.deps.Unrecord(r.Context(), req.RecordID)
		writeError(w, http.StatusTooManyRequests, "backpressure", NewKind(op, ErrBackpressure))
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted", Duplicate: false})
}
