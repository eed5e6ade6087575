// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"sync"
	"time"

	eventqueue "github.com/armandov/sellerpulse/internal/adapters/mq/queue"
	workerpool "github.com/armandov/sellerpulse/internal/adapters/mq/worker"
	repository "github.com/armandov/sellerpulse/internal/adapters/repository"
	"github.com/armandov/sellerpulse/internal/domain/analytics"
	"github.com/armandov/sellerpulse/internal/domain/dedupe"
	"github.com/armandov/sellerpulse/internal/domain/forecast"
	"github.com/armandov/sellerpulse/internal/domain/model"
	"github.com/armandov/sellerpulse/internal/domain/race"
	"github.com/armandov/sellerpulse/internal/domain/reliability"
	"github.com/armandov/sellerpulse/pkg/logger"
	"github.com/armandov/sellerpulse/pkg/metrics"
)

// Race metrics selectable via GET /race.
const (
	RaceMetricPipeline = "pipeline"
	RaceMetricWon      = "won"
)

// Correlation metric names derivable from stored records.
var correlationMetrics = map[string]struct{}{
	"deal_count":         {},
	"won_count":          {},
	"won_value":          {},
	"pipeline_value":     {},
	"reliability":        {},
	"win_rate":           {},
	"meeting_count":      {},
	"meetings_per_close": {},
}

// storeSink adapts the repository to the worker pool's Sink.
type storeSink struct {
	store repository.Store
}

func (s *storeSink) Apply(ctx context.Context, e model.Event) error {
	switch e.Kind {
	case model.KindDeal:
		if e.Deal == nil {
			return fmt.Errorf("%w: deal event without payload", repository.ErrInvalidDeal)
		}
		return s.store.UpsertDeal(ctx, *e.Deal)
	case model.KindMeeting:
		if e.Meeting == nil {
			return fmt.Errorf("%w: meeting event without payload", repository.ErrInvalidDeal)
		}
		return s.store.AddMeeting(ctx, *e.Meeting)
	case model.KindProbabilityChange:
		if e.Change == nil {
			return fmt.Errorf("%w: change event without payload", repository.ErrInvalidDeal)
		}
		return s.store.RecordProbabilityChange(ctx, *e.Change)
	default:
		return fmt.Errorf("%w: unknown event kind %q", repository.ErrInvalidDeal, e.Kind)
	}
}

// Service wires the ingestion pipeline and the pure analytics engines.
type Service struct {
	mu sync.RWMutex

	store   repository.Store
	deduper dedupe.Deduper
	queue   eventqueue.Queue
	pool    *workerpool.Pool

	// Configuration
	workerCount int
	queueSize   int
	dedupeSize  int
	shardCount  int
	stages      []string
	policy      model.StagePolicy

	started bool

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of ingestion workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize bounds the ingestion queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the idempotency cache size.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithShardCount sets the store's shard count.
func WithShardCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.shardCount = count
		}
	}
}

// WithStages fixes the funnel stage order and the stage policy used for
// classification.
func WithStages(stages []string, policy model.StagePolicy) Option {
	return func(s *Service) {
		if len(stages) > 0 {
			s.stages = stages
		}
		s.policy = policy
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount: runtime.NumCPU() * 2,
		queueSize:   100_000,
		dedupeSize:  50_000,
		shardCount:  8,
		stages:      []string{"Prospección", "Negociación", "Cerrado Ganado", "Cerrado Perdido"},
		policy: model.StagePolicy{
			Negotiation: "Negociación",
			WonMarker:   "Ganado",
			LostMarker:  "Perdido",
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start initializes the store, queue and worker pool.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.store = repository.NewMemStore(repository.WithShardCount(s.shardCount))
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.queue = eventqueue.NewInMemoryQueue(eventqueue.WithCapacity(s.queueSize))
	s.pool = workerpool.NewPool(s.workerCount, s.queue, &storeSink{store: s.store})
	s.pool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "sellerpulse service started",
		logger.Int("workers", s.pool.Size()),
		logger.Int("queueSize", s.queueSize),
		logger.Int("shards", s.shardCount),
	)
	return nil
}

// Stop gracefully shuts the service down.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	ctx := context.Background()
	s.logger.Info(ctx, "stopping sellerpulse service...")

	if s.queue != nil {
		_ = s.queue.Close()
	}
	if s.pool != nil {
		s.pool.Stop()
	}

	s.started = false
	s.logger.Info(ctx, "sellerpulse service stopped")
}

// SeenAndRecord atomically checks whether a record id was seen and records
// it if not. Returns true if the record was already seen.
func (s *Service) SeenAndRecord(ctx context.Context, id string) bool {
	seen := s.deduper.SeenAndRecord(ctx, id)
	if seen {
		metrics.RecordDuplicate()
	}
	return seen
}

// Unrecord forgets a record id so a failed enqueue can be retried.
func (s *Service) Unrecord(ctx context.Context, id string) {
	s.deduper.Unrecord(ctx, id)
}

// Size returns the number of tracked idempotency ids.
func (s *Service) Size() int64 {
	if s.deduper == nil {
		return 0
	}
	return s.deduper.Size()
}

// Enqueue submits one ingestion event for asynchronous processing. Returns
// false on backpressure.
func (s *Service) Enqueue(ctx context.Context, e model.Event) bool {
	ok := s.queue.Enqueue(ctx, e)
	if !ok {
		s.logger.Warn(ctx, "ingestion backpressure",
			logger.String("recordID", e.ID),
			logger.String("kind", string(e.Kind)),
		)
	}
	return ok
}

// Forecast computes the risk-adjusted revenue forecast over the current
// store contents. Reliability scores are computed fresh per call from each
// seller's closed deals.
func (s *Service) Forecast(ctx context.Context) (forecast.Summary, error) {
	if !s.isStarted() {
		return forecast.Summary{}, ErrNotStarted
	}
	start := time.Now()
	defer func() {
		metrics.RecordComputeRun("forecast")
		metrics.RecordComputeLatency("forecast", float64(time.Since(start).Milliseconds()))
	}()

	deals := s.store.AllDeals(ctx)
	scores := s.reliabilityBySeller(deals)
	summary := forecast.Aggregate(deals, scores, s.stages, s.policy)
	metrics.UpdateDataWarnings(summary.DataWarnings)
	return summary, nil
}

// Reliability computes one seller's calibration score from their closed
// deals. Returns repository.ErrNotFound for an unknown seller.
func (s *Service) Reliability(ctx context.Context, sellerID string) (float64, error) {
	if !s.isStarted() {
		return 0, ErrNotStarted
	}
	start := time.Now()
	defer func() {
		metrics.RecordComputeRun("reliability")
		metrics.RecordComputeLatency("reliability", float64(time.Since(start).Milliseconds()))
	}()

	deals, err := s.store.DealsBySeller(ctx, sellerID)
	if err != nil {
		return 0, fmt.Errorf("reliability for %s: %w", sellerID, err)
	}
	closed := deals[:0:0]
	for _, d := range deals {
		if s.policy.IsClosed(d.Stage) {
			closed = append(closed, d)
		}
	}
	return reliability.Score(closed, s.store.LatestProbability, s.policy), nil
}

// Race ranks sellers by the chosen metric with competition ranking. limit
// caps the returned rows; zero or negative means no cap.
func (s *Service) Race(ctx context.Context, metric string, limit int) ([]race.Ranked[model.RaceEntry], error) {
	if !s.isStarted() {
		return nil, ErrNotStarted
	}
	if metric == "" {
		metric = RaceMetricPipeline
	}
	if metric != RaceMetricPipeline && metric != RaceMetricWon {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMetric, metric)
	}
	start := time.Now()
	defer func() {
		metrics.RecordComputeRun("race")
		metrics.RecordComputeLatency("race", float64(time.Since(start).Milliseconds()))
	}()

	entries := s.raceEntries(ctx, metric)
	ranked := race.Rank(entries, func(e model.RaceEntry) float64 { return e.Value })
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked, nil
}

// Correlation computes Pearson's r between two derived seller metrics.
func (s *Service) Correlation(ctx context.Context, metricX, metricY string) (float64, error) {
	if !s.isStarted() {
		return 0, ErrNotStarted
	}
	if _, ok := correlationMetrics[metricX]; !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownMetric, metricX)
	}
	if _, ok := correlationMetrics[metricY]; !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownMetric, metricY)
	}
	start := time.Now()
	defer func() {
		metrics.RecordComputeRun("correlation")
		metrics.RecordComputeLatency("correlation", float64(time.Since(start).Milliseconds()))
	}()

	samples := s.correlationSamples(ctx)
	pairs := analytics.MetricPairs(samples, metricX, metricY)
	return analytics.Pearson(pairs), nil
}

// PostponeBuckets computes the postpone probability per company-size bucket.
func (s *Service) PostponeBuckets(ctx context.Context) ([]analytics.PostponeBucket, error) {
	if !s.isStarted() {
		return nil, ErrNotStarted
	}
	start := time.Now()
	defer func() {
		metrics.RecordComputeRun("postpones")
		metrics.RecordComputeLatency("postpones", float64(time.Since(start).Milliseconds()))
	}()

	return analytics.PostponeBuckets(s.store.Meetings(ctx)), nil
}

// CorrelationMetrics lists the metric names accepted by Correlation.
func (s *Service) CorrelationMetrics() []string {
	names := make([]string, 0, len(correlationMetrics))
	for name := range correlationMetrics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]any{
		"started":            s.started,
		"workerCount":        s.workerCount,
		"queueSize":          s.queueSize,
		"dedupeSize":         s.dedupeSize,
		"shardCount":         s.shardCount,
		"correlationMetrics": s.CorrelationMetrics(),
	}
	if s.started {
		ctx := context.Background()
		stats["queueLength"] = s.queue.Len(ctx)
		stats["sellers"] = s.store.SellerCount(ctx)
		stats["deals"] = s.store.DealCount(ctx)
		stats["meetings"] = s.store.MeetingCount(ctx)
	}
	return stats
}

func (s *Service) isStarted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.started
}

// reliabilityBySeller scores every seller present in deals from their
// closed deals.
func (s *Service) reliabilityBySeller(deals []model.Deal) map[string]float64 {
	closedBySeller := make(map[string][]model.Deal)
	for _, d := range deals {
		if s.policy.IsClosed(d.Stage) {
			closedBySeller[d.SellerID] = append(closedBySeller[d.SellerID], d)
		}
	}
	scores := make(map[string]float64, len(closedBySeller))
	for sellerID, closed := range closedBySeller {
		scores[sellerID] = reliability.Score(closed, s.store.LatestProbability, s.policy)
	}
	return scores
}

// raceEntries builds one entry per seller for the chosen metric. Deals come
// out of the store in deterministic order, so the entry order is stable.
func (s *Service) raceEntries(ctx context.Context, metric string) []model.RaceEntry {
	deals := s.store.AllDeals(ctx)

	type agg struct {
		name  string
		value float64
	}
	bySeller := make(map[string]*agg)
	order := make([]string, 0)

	for _, d := range deals {
		a, ok := bySeller[d.SellerID]
		if !ok {
			a = &agg{name: d.SellerName}
			bySeller[d.SellerID] = a
			order = append(order, d.SellerID)
		}
		if a.name == "" {
			a.name = d.SellerName
		}
		switch metric {
		case RaceMetricWon:
			if s.policy.IsWon(d.Stage) {
				a.value += d.EstimatedValue
			}
		case RaceMetricPipeline:
			if !s.policy.IsClosed(d.Stage) && s.policy.IsNegotiation(d.Stage) {
				a.value += float64(d.Probability) / 100 * d.EstimatedValue
			}
		}
	}

	entries := make([]model.RaceEntry, 0, len(order))
	for _, id := range order {
		entries = append(entries, model.RaceEntry{SellerID: id, Name: bySeller[id].name, Value: bySeller[id].value})
	}
	return entries
}

// correlationSamples derives one metric sample per seller from the store.
func (s *Service) correlationSamples(ctx context.Context) []model.CorrelationSample {
	deals := s.store.AllDeals(ctx)
	meetings := s.store.Meetings(ctx)
	scores := s.reliabilityBySeller(deals)

	type agg struct {
		name          string
		dealCount     int
		wonCount      int
		lostCount     int
		wonValue      float64
		pipelineValue float64
		meetingCount  int
	}
	bySeller := make(map[string]*agg)
	order := make([]string, 0)

	for _, d := range deals {
		a, ok := bySeller[d.SellerID]
		if !ok {
			a = &agg{name: d.SellerName}
			bySeller[d.SellerID] = a
			order = append(order, d.SellerID)
		}
		a.dealCount++
		switch {
		case s.policy.IsWon(d.Stage):
			a.wonCount++
			a.wonValue += d.EstimatedValue
		case s.policy.IsLost(d.Stage):
			a.lostCount++
		case s.policy.IsNegotiation(d.Stage):
			a.pipelineValue += float64(d.Probability) / 100 * d.EstimatedValue
		}
	}
	for _, m := range meetings {
		if a, ok := bySeller[m.SellerID]; ok {
			a.meetingCount++
		}
	}

	samples := make([]model.CorrelationSample, 0, len(order))
	for _, id := range order {
		a := bySeller[id]
		m := map[string]float64{
			"deal_count":     float64(a.dealCount),
			"won_count":      float64(a.wonCount),
			"won_value":      a.wonValue,
			"pipeline_value": a.pipelineValue,
			"reliability":    scores[id],
			"meeting_count":  float64(a.meetingCount),
		}
		if closed := a.wonCount + a.lostCount; closed > 0 {
			m["win_rate"] = float64(a.wonCount) / float64(closed)
		}
		if a.wonCount > 0 {
			m["meetings_per_close"] = float64(a.meetingCount) / float64(a.wonCount)
		}
		samples = append(samples, model.CorrelationSample{Name: a.name, Metrics: m})
	}
	return samples
}
