// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"

	"github.com/armandov/sellerpulse/internal/domain/analytics"
)

// AnalyticsDependencies defines the interface for correlation and postpone
// analytics.
type AnalyticsDependencies interface {
	Correlation(ctx context.Context, metricX, metricY string) (float64, error)
	PostponeBuckets(ctx context.Context) ([]analytics.PostponeBucket, error)
}

// AnalyticsHandler handles correlation and postpone requests.
type AnalyticsHandler struct {
	deps AnalyticsDependencies
}

// NewAnalyticsHandler creates a new analytics handler.
func NewAnalyticsHandler(deps AnalyticsDependencies) *AnalyticsHandler {
	return &AnalyticsHandler{deps: deps}
}

// HandleGetCorrelation handles GET /correlation?x=M1&y=M2 requests.
func (h *AnalyticsHandler) HandleGetCorrelation(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_correlation"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	metricX := r.URL.Query().Get("x")
	metricY := r.URL.Query().Get("y")
	if metricX == "" || metricY == "" {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	value, err := h.deps.Correlation(r.Context(), metricX, metricY)
	if err != nil {
		if isUnknownMetric(err) {
			writeError(w, http.StatusBadRequest, "unknown_metric", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, correlationResponse{MetricX: metricX, MetricY: metricY, Correlation: value})
}

// HandleGetPostpones handles GET /postpones requests.
func (h *AnalyticsHandler) HandleGetPostpones(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_postpones"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	buckets, err := h.deps.PostponeBuckets(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, buckets)
}
