// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
	"strings"
)

// ReliabilityDependencies defines the interface for reliability operations.
type ReliabilityDependencies interface {
	Reliability(ctx context.Context, sellerID string) (float64, error)
}

// ReliabilityHandler handles reliability score requests.
type ReliabilityHandler struct {
	deps ReliabilityDependencies
}

// NewReliabilityHandler creates a new reliability handler.
func NewReliabilityHandler(deps ReliabilityDependencies) *ReliabilityHandler {
	return &ReliabilityHandler{deps: deps}
}

// HandleGetReliability handles GET /reliability/{seller_id} requests.
func (h *ReliabilityHandler) HandleGetReliability(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	// Extract path parameter after /reliability/
	path := strings.TrimPrefix(r.URL.Path, "/reliability/")
	if path == "" || strings.Contains(path, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	score, err := h.deps.Reliability(r.Context(), path)
	if err != nil {
		// If upstream exposes not-found, translate; otherwise 500
		if isNotFound(err) {
			writeError(w, http.StatusNotFound, "not_found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusOK, reliabilityResponse{SellerID: path, Score: score})
}
