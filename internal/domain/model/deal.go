// Package model contains domain records passed between layers.
package model

import (
	"strings"
	"time"
)

// Deal represents a seller-owned sales opportunity.
// EstimatedValue and Probability may be absent in upstream CRM rows; absent
// numerics are represented as zero, never as NaN.
type Deal struct {
	ID         string // unique id for idempotency
	SellerID   string // owning seller identifier
	SellerName string // display name, may be empty

	Stage          string  // free-text stage label, e.g. "Negociación"
	EstimatedValue float64 // currency amount, non-negative
	Probability    int     // current forecast, integer 0-100

	// ForecastProbability is the probability frozen at evaluation time,
	// integer 0-100. Nil when the deal was never evaluated.
	ForecastProbability *int

	// Outcome is the explicitly recorded result: 1 won, 0 lost.
	// Nil when no explicit outcome was recorded.
	Outcome *int

	UpdatedAt time.Time
}

// ProbabilityChange is one row of a deal's probability history. The value is
// kept raw because upstream stores it as free text; malformed values are
// dropped during scoring, not coerced.
type ProbabilityChange struct {
	DealID      string
	Probability string // raw recorded value, e.g. "60"
	At          time.Time
}

// Meeting statuses as recorded by the calendar sync.
const (
	MeetingHeld      = "held"
	MeetingPostponed = "postponed"
	MeetingCancelled = "cancelled"
	MeetingScheduled = "scheduled"
)

// Meeting represents a scheduled customer meeting.
type Meeting struct {
	ID          string
	SellerID    string
	CompanySize int    // size bucket, small integer 1..5
	Status      string // one of the Meeting* constants
	At          time.Time
}

// RaceEntry pairs a seller with a numeric value for one race period.
type RaceEntry struct {
	SellerID string  `json:"seller_id"`
	Name     string  `json:"name"`
	Value    float64 `json:"value"`
}

// CorrelationSample is a named entity with a fixed set of numeric metrics,
// used to compute a single Pearson coefficient for a chosen metric pair.
type CorrelationSample struct {
	Name    string
	Metrics map[string]float64
}

// StagePolicy decides how free-text stage labels map onto pipeline semantics.
// Matching is substring-based, mirroring how the CRM tags closed deals
// (e.g. "Cerrado Ganado" contains the won marker "Ganado").
type StagePolicy struct {
	Negotiation string // exact negotiation stage label
	WonMarker   string // substring marking a closed-won stage
	LostMarker  string // substring marking a closed-lost stage
}

// IsWon reports whether stage marks a closed-won deal.
func (p StagePolicy) IsWon(stage string) bool {
	return p.WonMarker != "" && strings.Contains(stage, p.WonMarker)
}

// IsLost reports whether stage marks a closed-lost deal.
func (p StagePolicy) IsLost(stage string) bool {
	return p.LostMarker != "" && strings.Contains(stage, p.LostMarker)
}

// IsClosed reports whether stage marks a closed deal, won or lost.
func (p StagePolicy) IsClosed(stage string) bool {
	return p.IsWon(stage) || p.IsLost(stage)
}

// IsNegotiation reports whether stage is the negotiation stage.
func (p StagePolicy) IsNegotiation(stage string) bool {
	return stage == p.Negotiation
}
