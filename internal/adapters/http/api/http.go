// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/armandov/sellerpulse/internal/domain/analytics"
	"github.com/armandov/sellerpulse/internal/domain/dedupe"
	"github.com/armandov/sellerpulse/internal/domain/forecast"
	"github.com/armandov/sellerpulse/internal/domain/model"
	"github.com/armandov/sellerpulse/internal/domain/race"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	dedupe.Deduper

	// Enqueue pushes a record for async processing. Returns false on backpressure.
	Enqueue(ctx context.Context, e model.Event) bool

	// Read operations expose the analytics engines.
	Forecast(ctx context.Context) (forecast.Summary, error)
	Reliability(ctx context.Context, sellerID string) (float64, error)
	Race(ctx context.Context, metric string, limit int) ([]race.Ranked[model.RaceEntry], error)
	Correlation(ctx context.Context, metricX, metricY string) (float64, error)
	PostponeBuckets(ctx context.Context) ([]analytics.PostponeBucket, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	dealsHandler       *DealsHandler
	meetingsHandler    *MeetingsHandler
	forecastHandler    *ForecastHandler
	raceHandler        *RaceHandler
	reliabilityHandler *ReliabilityHandler
	analyticsHandler   *AnalyticsHandler
}

// NewServer creates a new API server with all handlers. maxRaceLimit caps
// the limit query parameter accepted by the race endpoint.
func NewServer(deps Dependencies, statsProvider StatsProvider, maxRaceLimit int) *Server {
	return &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(statsProvider),
		dealsHandler:       NewDealsHandler(deps),
		meetingsHandler:    NewMeetingsHandler(deps),
		forecastHandler:    NewForecastHandler(deps),
		raceHandler:        NewRaceHandler(deps, maxRaceLimit),
		reliabilityHandler: NewReliabilityHandler(deps),
		analyticsHandler:   NewAnalyticsHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	// Specific paths first (most specific to least specific)
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/deals", MetricsMiddleware(s.dealsHandler.HandlePostDeal, "deals"))
	mux.HandleFunc("/meetings", MetricsMiddleware(s.meetingsHandler.HandlePostMeeting, "meetings"))
	mux.HandleFunc("/forecast", MetricsMiddleware(s.forecastHandler.HandleGetForecast, "forecast"))
	mux.HandleFunc("/race", MetricsMiddleware(s.raceHandler.HandleGetRace, "race"))
	mux.HandleFunc("/reliability/", MetricsMiddleware(s.reliabilityHandler.HandleGetReliability, "reliability"))
	mux.HandleFunc("/correlation", MetricsMiddleware(s.analyticsHandler.HandleGetCorrelation, "correlation"))
	mux.HandleFunc("/postpones", MetricsMiddleware(s.analyticsHandler.HandleGetPostpones, "postpones"))
}

// dealRequest mirrors the wire schema for POST /deals.
type dealRequest struct {
	RecordID            string  `json:"record_id"`
	DealID              string  `json:"deal_id"`
	SellerID            string  `json:"seller_id"`
	SellerName          string  `json:"seller_name"`
	Stage               string  `json:"stage"`
	EstimatedValue      float64 `json:"estimated_value"`
	Probability         int     `json:"probability"`
	ForecastProbability *int    `json:"forecast_probability,omitempty"`
	Outcome             *int    `json:"outcome,omitempty"`
	UpdatedAt           string  `json:"updated_at"`
}

func (d dealRequest) validate() error {
	switch {
	case strings.TrimSpace(d.RecordID) == "":
		return errors.New("missing record_id")
	case strings.TrimSpace(d.DealID) == "":
		return errors.New("missing deal_id")
	case strings.TrimSpace(d.SellerID) == "":
		return errors.New("missing seller_id")
	case strings.TrimSpace(d.Stage) == "":
		return errors.New("missing stage")
	case d.Probability < 0 || d.Probability > 100:
		return errors.New("probability must be between 0 and 100")
	case d.Outcome != nil && *d.Outcome != 0 && *d.Outcome != 1:
		return errors.New("outcome must be 0 or 1")
	}
	if d.UpdatedAt != "" {
		if _, err := time.Parse(time.RFC3339, d.UpdatedAt); err != nil {
			return errors.New("invalid updated_at; must be RFC3339")
		}
	}
	return nil
}

func (d dealRequest) toEvent() model.Event {
	at := time.Now()
	if d.UpdatedAt != "" {
		at, _ = time.Parse(time.RFC3339, d.UpdatedAt)
	}
	return model.Event{
		ID:   d.RecordID,
		Kind: model.KindDeal,
		Deal: &model.Deal{
			ID:                  d.DealID,
			SellerID:            d.SellerID,
			SellerName:          d.SellerName,
			Stage:               d.Stage,
			EstimatedValue:      d.EstimatedValue,
			Probability:         d.Probability,
			ForecastProbability: d.ForecastProbability,
			Outcome:             d.Outcome,
			UpdatedAt:           at,
		},
	}
}

// meetingRequest mirrors the wire schema for POST /meetings.
type meetingRequest struct {
	RecordID    string `json:"record_id"`
	MeetingID   string `json:"meeting_id"`
	SellerID    string `json:"seller_id"`
	CompanySize int    `json:"company_size"`
	Status      string `json:"status"`
	At          string `json:"at"`
}

func (m meetingRequest) validate() error {
	switch {
	case strings.TrimSpace(m.RecordID) == "":
		return errors.New("missing record_id")
	case strings.TrimSpace(m.MeetingID) == "":
		return errors.New("missing meeting_id")
	case strings.TrimSpace(m.SellerID) == "":
		return errors.New("missing seller_id")
	case strings.TrimSpace(m.Status) == "":
		return errors.New("missing status")
	case m.CompanySize < 1:
		return errors.New("company_size must be positive")
	}
	if m.At != "" {
		if _, err := time.Parse(time.RFC3339, m.At); err != nil {
			return errors.New("invalid at; must be RFC3339")
		}
	}
	return nil
}

func (m meetingRequest) toEvent() model.Event {
	at := time.Now()
	if m.At != "" {
		at, _ = time.Parse(time.RFC3339, m.At)
	}
	return model.Event{
		ID:   m.RecordID,
		Kind: model.KindMeeting,
		Meeting: &model.Meeting{
			ID:          m.MeetingID,
			SellerID:    m.SellerID,
			CompanySize: m.CompanySize,
			Status:      m.Status,
			At:          at,
		},
	}
}

type ackResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

type correlationResponse struct {
	MetricX     string  `json:"metric_x"`
	MetricY     string  `json:"metric_y"`
	Correlation float64 `json:"correlation"`
}

type reliabilityResponse struct {
	SellerID string  `json:"seller_id"`
	Score    float64 `json:"score"`
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

// isNotFound allows the API to translate upstream not-found errors to 404
// without tight coupling to the packages producing them.
func isNotFound(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "not found")
}

// isUnknownMetric spots metric-selection errors so they surface as 400
// rather than 500.
func isUnknownMetric(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "unknown metric")
}
