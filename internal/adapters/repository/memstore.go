package repository

import (
	"context"
	"fmt"
	"hash/fnv"
	"sort"
	"sync"

	"github.com/armandov/sellerpulse/internal/domain/model"
	"github.com/armandov/sellerpulse/pkg/metrics"
)

const defaultShardCount = 8

// shard holds one slice of the keyspace, keyed by seller id.
type shard struct {
	mu       sync.RWMutex
	deals    map[string]map[string]model.Deal // sellerID -> dealID -> deal
	meetings []model.Meeting
}

// MemStore is a sharded in-memory Store. Sellers map onto shards by FNV-1a
// hash, so one busy seller cannot serialize unrelated writes.
type MemStore struct {
	shardCount int
	shards     []*shard

	// Probability history is deal-keyed and append-only; it gets its own
	// lock instead of living inside a seller shard.
	histMu  sync.RWMutex
	history map[string][]model.ProbabilityChange
}

// NewMemStore creates an empty store with configuration options.
func NewMemStore(opts ...Option) *MemStore {
	s := &MemStore{
		shardCount: defaultShardCount,
		history:    make(map[string][]model.ProbabilityChange),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.shards = make([]*shard, s.shardCount)
	for i := range s.shards {
		s.shards[i] = &shard{deals: make(map[string]map[string]model.Deal)}
	}
	return s
}

func (s *MemStore) shardFor(sellerID string) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(sellerID))
	return s.shards[h.Sum32()%uint32(len(s.shards))]
}

// UpsertDeal inserts or replaces a deal. A probability change on replacement
// is recorded into the deal's history with the previous value, mirroring how
// the CRM keeps a probability-change trail.
func (s *MemStore) UpsertDeal(ctx context.Context, deal model.Deal) error {
	if deal.ID == "" || deal.SellerID == "" {
		return fmt.Errorf("%w: missing deal or seller id", ErrInvalidDeal)
	}

	sh := s.shardFor(deal.SellerID)
	sh.mu.Lock()
	bySeller, ok := sh.deals[deal.SellerID]
	if !ok {
		bySeller = make(map[string]model.Deal)
		sh.deals[deal.SellerID] = bySeller
	}
	prev, existed := bySeller[deal.ID]
	bySeller[deal.ID] = deal
	sh.mu.Unlock()

	if existed && prev.Probability != deal.Probability {
		return s.RecordProbabilityChange(ctx, model.ProbabilityChange{
			DealID:      deal.ID,
			Probability: fmt.Sprintf("%d", prev.Probability),
			At:          deal.UpdatedAt,
		})
	}
	return nil
}

// RecordProbabilityChange appends one history row for a deal.
func (s *MemStore) RecordProbabilityChange(_ context.Context, change model.ProbabilityChange) error {
	if change.DealID == "" {
		return fmt.Errorf("%w: missing deal id", ErrInvalidDeal)
	}
	s.histMu.Lock()
	s.history[change.DealID] = append(s.history[change.DealID], change)
	s.histMu.Unlock()
	return nil
}

// AddMeeting records a meeting on the owning seller's shard.
func (s *MemStore) AddMeeting(_ context.Context, meeting model.Meeting) error {
	sh := s.shardFor(meeting.SellerID)
	sh.mu.Lock()
	sh.meetings = append(sh.meetings, meeting)
	sh.mu.Unlock()
	return nil
}

// AllDeals returns a copy of every stored deal, ordered by seller id then
// deal id so repeated reads are deterministic.
func (s *MemStore) AllDeals(_ context.Context) []model.Deal {
	var out []model.Deal
	for _, sh := range s.shards {
		sh.mu.RLock()
		for _, bySeller := range sh.deals {
			for _, d := range bySeller {
				out = append(out, d)
			}
		}
		sh.mu.RUnlock()
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SellerID != out[j].SellerID {
			return out[i].SellerID < out[j].SellerID
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// DealsBySeller returns a copy of one seller's deals, ordered by deal id.
func (s *MemStore) DealsBySeller(_ context.Context, sellerID string) ([]model.Deal, error) {
	sh := s.shardFor(sellerID)
	sh.mu.RLock()
	bySeller, ok := sh.deals[sellerID]
	if !ok {
		sh.mu.RUnlock()
		return nil, fmt.Errorf("%w: %s", ErrNotFound, sellerID)
	}
	out := make([]model.Deal, 0, len(bySeller))
	for _, d := range bySeller {
		out = append(out, d)
	}
	sh.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Meetings returns a copy of every stored meeting.
func (s *MemStore) Meetings(_ context.Context) []model.Meeting {
	var out []model.Meeting
	for _, sh := range s.shards {
		sh.mu.RLock()
		out = append(out, sh.meetings...)
		sh.mu.RUnlock()
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// LatestProbability returns the most recent history value for a deal. This
// is the lookup the reliability scorer falls back on.
func (s *MemStore) LatestProbability(dealID string) (string, bool) {
	s.histMu.RLock()
	defer s.histMu.RUnlock()

	rows := s.history[dealID]
	if len(rows) == 0 {
		return "", false
	}
	latest := rows[0]
	for _, r := range rows[1:] {
		if r.At.After(latest.At) {
			latest = r
		}
	}
	return latest.Probability, true
}

// SellerCount returns the number of distinct sellers tracked.
func (s *MemStore) SellerCount(_ context.Context) int {
	count := 0
	for _, sh := range s.shards {
		sh.mu.RLock()
		count += len(sh.deals)
		sh.mu.RUnlock()
	}
	metrics.UpdateSellersTracked(count)
	return count
}

// DealCount returns the number of stored deals.
func (s *MemStore) DealCount(_ context.Context) int {
	count := 0
	for _, sh := range s.shards {
		sh.mu.RLock()
		for _, bySeller := range sh.deals {
			count += len(bySeller)
		}
		sh.mu.RUnlock()
	}
	metrics.UpdateDealsTracked(count)
	return count
}

// MeetingCount returns the number of stored meetings.
func (s *MemStore) MeetingCount(_ context.Context) int {
	count := 0
	for _, sh := range s.shards {
		sh.mu.RLock()
		count += len(sh.meetings)
		sh.mu.RUnlock()
	}
	metrics.UpdateMeetingsTracked(count)
	return count
}
