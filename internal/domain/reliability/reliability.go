// Package reliability computes a seller's calibration accuracy from
// historical forecast-vs-outcome pairs.
package reliability

import (
	"math"
	"strconv"
	"strings"

	"github.com/armandov/sellerpulse/internal/domain/model"
)

// Scoring constants.
const (
	// shrinkage is the pseudo-count added to the sample size when
	// discounting scores computed from few deals: weight = n/(n+shrinkage).
	// One deal carries 20% of its raw accuracy, twenty carry 83%.
	shrinkage = 4

	probabilityScale = 100.0
	maxScore         = 100.0
)

// LookupFunc returns the most recent recorded probability change for a deal,
// as the raw stored string. ok is false when the deal has no history.
type LookupFunc func(dealID string) (value string, ok bool)

// Sample is one resolved forecast-vs-outcome pair: predicted probability
// p in [0,1] and realized outcome y in {0,1}.
type Sample struct {
	P float64
	Y float64
}

// Resolve maps a closed deal onto a scoring sample, following the ordered
// fallback chain: frozen evaluated probability first, then the latest
// probability-history record, else exclusion. ok is false when the deal is
// uncountable; exclusion is a normal outcome, not an error.
func Resolve(deal model.Deal, lookup LookupFunc, policy model.StagePolicy) (Sample, bool) {
	y := outcome(deal, policy)

	if deal.ForecastProbability != nil {
		return Sample{P: float64(*deal.ForecastProbability) / probabilityScale, Y: y}, true
	}

	if lookup == nil {
		return Sample{}, false
	}
	raw, ok := lookup(deal.ID)
	if !ok {
		return Sample{}, false
	}
	p, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(p) || math.IsInf(p, 0) {
		// Malformed history rows are dropped from the sample so they
		// cannot corrupt the average.
		return Sample{}, false
	}
	return Sample{P: p / probabilityScale, Y: y}, true
}

// outcome determines the realized result: the explicit recorded flag wins,
// else the won/lost stage label decides.
func outcome(deal model.Deal, policy model.StagePolicy) float64 {
	if deal.Outcome != nil {
		if *deal.Outcome == 1 {
			return 1
		}
		return 0
	}
	if policy.IsWon(deal.Stage) {
		return 1
	}
	return 0
}

// Score converts one seller's closed deals into a confidence-adjusted
// calibration score. Raw accuracy is 1 minus the mean squared error of the
// resolved samples, then discounted by n/(n+shrinkage) and scaled to 0-100.
// The result is not clamped: badly miscalibrated sellers can go negative,
// and callers may treat that as a weak signal. It is always finite.
func Score(deals []model.Deal, lookup LookupFunc, policy model.StagePolicy) float64 {
	samples := make([]Sample, 0, len(deals))
	for _, d := range deals {
		if s, ok := Resolve(d, lookup, policy); ok {
			samples = append(samples, s)
		}
	}
	return ScoreSamples(samples)
}

// ScoreSamples scores already-resolved forecast-vs-outcome pairs.
func ScoreSamples(samples []Sample) float64 {
	n := len(samples)
	if n == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		e := s.Y - s.P
		sum += e * e
	}
	accuracy := 1 - sum/float64(n)
	weight := float64(n) / float64(n+shrinkage)
	return accuracy * weight * maxScore
}
