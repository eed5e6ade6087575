// Package forecast aggregates active pipeline into a risk-adjusted revenue
// forecast and a stage funnel.
package forecast

import (
	"sort"

	"github.com/armandov/sellerpulse/internal/domain/model"
)

const probabilityScale = 100.0

// Funnel display categories. These are a policy mapping for the UI, not a
// computed statistic.
const (
	CategoryPositive   = "positive"
	CategoryNegative   = "negative"
	CategoryInProgress = "in-progress"
	CategoryNeutral    = "neutral"
)

// SellerForecast is one seller's row in the forecast breakdown.
type SellerForecast struct {
	SellerID string  `json:"seller_id"`
	Name     string  `json:"name"`
	Pipeline float64 `json:"pipeline"`    // probability-weighted negotiation value
	Adjusted float64 `json:"adjusted"`    // pipeline scaled by reliability
	Score    float64 `json:"reliability"` // reliability score used
}

// FunnelRow is one stage of the pipeline funnel.
type FunnelRow struct {
	Stage    string  `json:"stage"`
	Count    int     `json:"count"`
	Value    float64 `json:"value"`
	Category string  `json:"category"`
}

// Summary is the aggregated forecast for the whole deal collection.
type Summary struct {
	TotalPipeline    float64          `json:"total_pipeline"`
	AdjustedForecast float64          `json:"adjusted_forecast"`
	Sellers          []SellerForecast `json:"sellers"`
	Funnel           []FunnelRow      `json:"funnel"`
	ActiveCount      int              `json:"active_count"`
	DataWarnings     int              `json:"data_warnings"`
}

// Aggregate computes the risk-adjusted forecast over all deals. scores maps
// seller id to reliability score; sellers absent from the map contribute
// zero adjusted value. stages fixes the funnel row order. Absent numeric
// fields count as zero and no input combination produces an error.
func Aggregate(deals []model.Deal, scores map[string]float64, stages []string, policy model.StagePolicy) Summary {
	var out Summary

	type sellerAgg struct {
		id       string
		name     string
		pipeline float64
	}
	bySeller := make(map[string]*sellerAgg)
	order := make([]string, 0) // first-seen order keeps grouping deterministic

	funnelIdx := make(map[string]int, len(stages))
	out.Funnel = make([]FunnelRow, len(stages))
	for i, stage := range stages {
		out.Funnel[i] = FunnelRow{Stage: stage, Category: stageCategory(stage, policy)}
		funnelIdx[stage] = i
	}

	for _, d := range deals {
		if i, ok := funnelIdx[d.Stage]; ok {
			out.Funnel[i].Count++
			out.Funnel[i].Value += d.EstimatedValue
		}
		if policy.IsClosed(d.Stage) {
			continue
		}

		// Active deal.
		out.ActiveCount++
		out.TotalPipeline += d.EstimatedValue
		if d.EstimatedValue <= 0 {
			out.DataWarnings++
		}

		agg, ok := bySeller[d.SellerID]
		if !ok {
			agg = &sellerAgg{id: d.SellerID, name: d.SellerName}
			bySeller[d.SellerID] = agg
			order = append(order, d.SellerID)
		}
		if agg.name == "" {
			agg.name = d.SellerName
		}
		if policy.IsNegotiation(d.Stage) {
			agg.pipeline += float64(d.Probability) / probabilityScale * d.EstimatedValue
		}
	}

	out.Sellers = make([]SellerForecast, 0, len(order))
	for _, id := range order {
		agg := bySeller[id]
		score := scores[id]
		out.Sellers = append(out.Sellers, SellerForecast{
			SellerID: agg.id,
			Name:     agg.name,
			Pipeline: agg.pipeline,
			Adjusted: agg.pipeline * score / probabilityScale,
			Score:    score,
		})
		out.AdjustedForecast += agg.pipeline * score / probabilityScale
	}

	// Ranking is by raw negotiation pipeline, not the adjusted value: a
	// low-reliability seller working a large pipeline should still surface
	// for manager attention.
	sort.SliceStable(out.Sellers, func(i, j int) bool {
		return out.Sellers[i].Pipeline > out.Sellers[j].Pipeline
	})

	return out
}

func stageCategory(stage string, policy model.StagePolicy) string {
	switch {
	case policy.IsWon(stage):
		return CategoryPositive
	case policy.IsLost(stage):
		return CategoryNegative
	case policy.IsNegotiation(stage):
		return CategoryInProgress
	default:
		return CategoryNeutral
	}
}
