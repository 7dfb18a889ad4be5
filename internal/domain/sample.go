package domain

import "fmt"

// Sample draws n stations uniformly at random without replacement. The
// result is in draw order and never aliases stations.
func Sample(stations StationSet, n int, rng Rand) (StationSet, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: sample size %d is negative", ErrInvalidParameter, n)
	}
	if len(stations) < n {
		return nil, &InsufficientInputError{Requested: n, Available: len(stations)}
	}

	// Partial Fisher-Yates over an index permutation.
	idx := make([]int, len(stations))
	for i := range idx {
		idx[i] = i
	}
	out := make(StationSet, n)
	for i := range n {
		j := i + rng.IntN(len(idx)-i)
		idx[i], idx[j] = idx[j], idx[i]
		out[i] = stations[idx[i]]
	}
	return out, nil
}
