package domain

import (
	"fmt"
	"math"

	"github.com/paulmach/orb/planar"
	"gonum.org/v1/gonum/floats"
)

// selectedMark flags an already-selected station in the distance table.
// Real distances are never negative, so a marked entry never wins the argmax.
const selectedMark = -1.0

// Select picks k spatially spread stations by farthest-point sampling.
//
// When k equals the input size the whole input is returned in its original
// order. Otherwise the result is in selection order: the first station is
// drawn with rng, each following one is the unselected station farthest
// from its nearest selected station, with ties resolved to the lowest input
// index. For a given rng state and input order the result is deterministic.
//
// The returned set never aliases stations.
func Select(stations StationSet, k int, rng Rand) (StationSet, error) {
	n := len(stations)
	if k < 0 {
		return nil, fmt.Errorf("%w: selection count %d is negative", ErrInvalidParameter, k)
	}
	if n < k {
		return nil, &InsufficientInputError{Requested: k, Available: n}
	}
	if k == 0 {
		return StationSet{}, nil
	}
	if n == k {
		return stations.clone(), nil
	}

	points := stations.MultiPoint()

	// nearest[i] is the distance from station i to its closest selected
	// station, or selectedMark once i itself is selected.
	nearest := make([]float64, n)
	for i := range nearest {
		nearest[i] = math.Inf(1)
	}

	out := make(StationSet, 0, k)
	next := rng.IntN(n)
	for {
		out = append(out, stations[next])
		nearest[next] = selectedMark
		if len(out) == k {
			return out, nil
		}

		for i, p := range points {
			if nearest[i] == selectedMark {
				continue
			}
			if d := planar.Distance(p, points[next]); d < nearest[i] {
				nearest[i] = d
			}
		}
		next = floats.MaxIdx(nearest)
	}
}
