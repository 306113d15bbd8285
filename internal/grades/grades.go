// Package grades implements the drop-lowest averaging policy as pure
// functions over loaded marks, so the numeric rules are testable without a
// database.
package grades

import (
	"math"
	"sort"
)

// Score is one assessment result. Totals that are not strictly positive are
// kept in storage but never contribute to an average.
type Score struct {
	Obtained float64
	Total    float64
}

// GroupAverage computes the group percentage: each qualifying score becomes
// 100*obtained/total, the list is sorted ascending, the dropLowest smallest
// values are discarded (clamped so at least one score always survives) and
// the rest are averaged, rounded to 2 decimals. No qualifying scores → 0.
func GroupAverage(dropLowest int, scores []Score) float64 {
	percents := make([]float64, 0, len(scores))
	for _, sc := range scores {
		if sc.Total > 0 {
			percents = append(percents, 100*sc.Obtained/sc.Total)
		}
	}
	if len(percents) == 0 {
		return 0
	}

	sort.Float64s(percents)

	toDrop := dropLowest
	if toDrop < 0 {
		toDrop = 0
	}
	if max := len(percents) - 1; toDrop > max {
		toDrop = max
	}
	kept := percents[toDrop:]

	var sum float64
	for _, p := range kept {
		sum += p
	}
	return round2(sum / float64(len(kept)))
}

// Mean is the unweighted arithmetic mean used for course rollups. Groups
// count equally regardless of how many marks they hold.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return round2(sum / float64(len(values)))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
