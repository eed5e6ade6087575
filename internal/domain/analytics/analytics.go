// Package analytics provides correlation and conditional-probability
// computations over small in-memory samples.
package analytics

import (
	"math"
	"sort"

	"github.com/armandov/sellerpulse/internal/domain/model"
)

// Company-size buckets run 1..5.
const (
	minBucket = 1
	maxBucket = 5
)

// minPairs is the smallest sample that yields a meaningful coefficient.
const minPairs = 2

// Pair is one (x, y) observation.
type Pair struct {
	X float64
	Y float64
}

// Pearson computes the product-moment correlation coefficient over pairs.
// Pairs with a non-finite member are filtered out first. Degenerate input
// (fewer than two valid pairs, or a constant series) yields 0 rather than
// NaN, so dashboard callers always get a plottable number.
func Pearson(pairs []Pair) float64 {
	valid := pairs[:0:0]
	for _, p := range pairs {
		if isFinite(p.X) && isFinite(p.Y) {
			valid = append(valid, p)
		}
	}
	n := float64(len(valid))
	if len(valid) < minPairs {
		return 0
	}

	var sumX, sumY, sumXY, sumX2, sumY2 float64
	for _, p := range valid {
		sumX += p.X
		sumY += p.Y
		sumXY += p.X * p.Y
		sumX2 += p.X * p.X
		sumY2 += p.Y * p.Y
	}

	den := math.Sqrt((n*sumX2 - sumX*sumX) * (n*sumY2 - sumY*sumY))
	if den == 0 || !isFinite(den) {
		return 0
	}
	return (n*sumXY - sumX*sumY) / den
}

// MetricPairs extracts an (x, y) pair per sample for the two chosen metric
// names. Samples missing either metric are skipped.
func MetricPairs(samples []model.CorrelationSample, metricX, metricY string) []Pair {
	pairs := make([]Pair, 0, len(samples))
	for _, s := range samples {
		x, okX := s.Metrics[metricX]
		y, okY := s.Metrics[metricY]
		if okX && okY {
			pairs = append(pairs, Pair{X: x, Y: y})
		}
	}
	return pairs
}

// PostponeBucket aggregates meeting outcomes for one company-size bucket.
// Counts stay visible alongside the probability so a caller can tell
// "no signal" apart from a confirmed 0%.
type PostponeBucket struct {
	Size        int     `json:"size"`
	Total       int     `json:"total"`
	Held        int     `json:"held"`
	Postponed   int     `json:"postponed"`
	Probability float64 `json:"probability"` // percentage 0-100
}

// PostponeBuckets computes the empirical postpone-or-cancel probability per
// company-size bucket. Every bucket 1..5 is reported, even when empty;
// meetings with an out-of-range size get their own trailing bucket.
func PostponeBuckets(meetings []model.Meeting) []PostponeBucket {
	byBucket := make(map[int]*PostponeBucket)
	for size := minBucket; size <= maxBucket; size++ {
		byBucket[size] = &PostponeBucket{Size: size}
	}

	for _, m := range meetings {
		b, ok := byBucket[m.CompanySize]
		if !ok {
			b = &PostponeBucket{Size: m.CompanySize}
			byBucket[m.CompanySize] = b
		}
		b.Total++
		switch m.Status {
		case model.MeetingHeld:
			b.Held++
		case model.MeetingPostponed, model.MeetingCancelled:
			b.Postponed++
		}
	}

	out := make([]PostponeBucket, 0, len(byBucket))
	for _, b := range byBucket {
		if b.Total > 0 {
			b.Probability = float64(b.Postponed) / float64(b.Total) * 100
		}
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Size < out[j].Size })
	return out
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
