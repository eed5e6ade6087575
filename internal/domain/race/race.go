// Package race ranks scored participants with competition ranking, medal
// assignment and a shared bucket for non-positive values.
package race

import "sort"

// Medal identifies a podium position.
type Medal string

// Medal values. None marks items outside the podium.
const (
	Gold   Medal = "gold"
	Silver Medal = "silver"
	Bronze Medal = "bronze"
	None   Medal = ""
)

// unrankedFloor is the lowest rank the non-positive bucket can receive, so
// zero-activity participants never appear on the podium even when the
// positive field is small.
const unrankedFloor = 4

// Ranked decorates an item with its competition rank.
type Ranked[T any] struct {
	Item  T       `json:"item"`
	Value float64 `json:"value"`
	Rank  int     `json:"rank"`
	Medal Medal   `json:"medal,omitempty"`
	// IsZeroValue flags items with value <= 0: listed, never medaled.
	IsZeroValue bool `json:"is_zero_value"`
}

// Rank orders items descending by the extracted value and assigns standard
// competition ranks: equal values share the rank of their first occurrence
// and the next distinct value resumes at its 1-based position ("1,1,3").
// Medals follow the rank number, so a tie for gold skips silver entirely.
// Items with value <= 0 are kept at the bottom under one shared rank of
// max(4, positiveCount+1) with no medal.
func Rank[T any](items []T, value func(T) float64) []Ranked[T] {
	out := make([]Ranked[T], 0, len(items))
	for _, it := range items {
		v := value(it)
		out = append(out, Ranked[T]{Item: it, Value: v, IsZeroValue: v <= 0})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Value > out[j].Value })

	positive := 0
	for _, r := range out {
		if !r.IsZeroValue {
			positive++
		}
	}

	rank := 0
	for i := range out[:positive] {
		if i == 0 || out[i].Value != out[i-1].Value {
			rank = i + 1
		}
		out[i].Rank = rank
		out[i].Medal = medalFor(rank)
	}

	floor := positive + 1
	if floor < unrankedFloor {
		floor = unrankedFloor
	}
	for i := positive; i < len(out); i++ {
		out[i].Rank = floor
		out[i].Medal = None
	}

	return out
}

func medalFor(rank int) Medal {
	switch rank {
	case 1:
		return Gold
	case 2:
		return Silver
	case 3:
		return Bronze
	default:
		return None
	}
}
