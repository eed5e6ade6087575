// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"

	"github.com/armandov/sellerpulse/internal/domain/forecast"
)

// ForecastDependencies defines the interface for forecast operations.
type ForecastDependencies interface {
	Forecast(ctx context.Context) (forecast.Summary, error)
}

// ForecastHandler handles forecast requests.
type ForecastHandler struct {
	deps ForecastDependencies
}

// NewForecastHandler creates a new forecast handler.
func NewForecastHandler(deps ForecastDependencies) *ForecastHandler {
	return &ForecastHandler{deps: deps}
}

// HandleGetForecast handles GET /forecast requests.
func (h *ForecastHandler) HandleGetForecast(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_forecast"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	summary, err := h.deps.Forecast(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
