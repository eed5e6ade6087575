// Package repository defines the CRM record store interface and errors.
package repository

import (
	"context"

	"github.com/armandov/sellerpulse/internal/domain/model"
)

// Store provides read/write access to materialized CRM records. Reads return
// copies, so callers can feed them to the pure engines without holding locks.
type Store interface {
	// UpsertDeal inserts or replaces a deal. When a replacement changes
	// the deal's probability, the previous value is appended to the
	// deal's probability history.
	UpsertDeal(ctx context.Context, deal model.Deal) error

	// RecordProbabilityChange appends one probability-history row.
	RecordProbabilityChange(ctx context.Context, change model.ProbabilityChange) error

	// AddMeeting records a meeting.
	AddMeeting(ctx context.Context, meeting model.Meeting) error

	// AllDeals returns every stored deal.
	AllDeals(ctx context.Context) []model.Deal

	// DealsBySeller returns one seller's deals.
	// Returns ErrNotFound for an unknown seller.
	DealsBySeller(ctx context.Context, sellerID string) ([]model.Deal, error)

	// Meetings returns every stored meeting.
	Meetings(ctx context.Context) []model.Meeting

	// LatestProbability returns the most recent probability-history value
	// for a deal, raw. ok is false when the deal has no history.
	LatestProbability(dealID string) (string, bool)

	// SellerCount returns the number of distinct sellers tracked.
	SellerCount(ctx context.Context) int

	// DealCount and MeetingCount report store sizes for monitoring.
	DealCount(ctx context.Context) int
	MeetingCount(ctx context.Context) int
}
