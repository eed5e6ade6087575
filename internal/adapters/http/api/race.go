// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/armandov/sellerpulse/internal/domain/model"
	"github.com/armandov/sellerpulse/internal/domain/race"
)

// RaceDependencies defines the interface for race operations.
type RaceDependencies interface {
	Race(ctx context.Context, metric string, limit int) ([]race.Ranked[model.RaceEntry], error)
}

// RaceHandler handles seller race requests.
type RaceHandler struct {
	deps     RaceDependencies
	maxLimit int
}

// NewRaceHandler creates a new race handler.
func NewRaceHandler(deps RaceDependencies, maxLimit int) *RaceHandler {
	return &RaceHandler{
		deps:     deps,
		maxLimit: maxLimit,
	}
}

// HandleGetRace handles GET /race?metric=M&limit=N requests. metric defaults
// to pipeline; limit defaults to the configured maximum.
func (h *RaceHandler) HandleGetRace(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_race"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	limit := h.maxLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		n, err := strconv.Atoi(limitStr)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
			return
		}
		if n > h.maxLimit {
			writeError(w, http.StatusBadRequest, "limit_exceeded", NewKind(op, ErrBadRequest))
			return
		}
		limit = n
	}
	ranked, err := h.deps.Race(r.Context(), r.URL.Query().Get("metric"), limit)
	if err != nil {
		if isUnknownMetric(err) {
			writeError(w, http.StatusBadRequest, "unknown_metric", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, ranked)
}
