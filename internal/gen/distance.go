package gen

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// ExtremeDistances returns the maximum and minimum pairwise Euclidean
// distance within data. Cost is O(n²·D).
func ExtremeDistances(data [][]float64) (maxDist, minDist float64, err error) {
	if len(data) < 2 {
		return 0, 0, &InsufficientDataError{Points: len(data)}
	}
	if err := checkDims(data, len(data[0])); err != nil {
		return 0, 0, err
	}

	maxDist = math.Inf(-1)
	minDist = math.Inf(1)
	for i := 0; i < len(data); i++ {
		for j := i + 1; j < len(data); j++ {
			d := floats.Distance(data[i], data[j], 2)
			maxDist = math.Max(maxDist, d)
			minDist = math.Min(minDist, d)
		}
	}
	return maxDist, minDist, nil
}

// MinDistance returns the minimum Euclidean distance from point to any member
// of set. An empty set is an error; callers that want "no penalty on the
// first point" must handle that case themselves.
func MinDistance(point []float64, set [][]float64) (float64, error) {
	if len(set) == 0 {
		return 0, ErrEmptySet
	}
	if err := checkDims(set, len(point)); err != nil {
		return 0, err
	}

	best := math.Inf(1)
	for _, v := range set {
		best = math.Min(best, floats.Distance(point, v, 2))
	}
	return best, nil
}

func checkDims(data [][]float64, dim int) error {
	for i, v := range data {
		if len(v) != dim {
			return &DimensionError{Index: i, Expected: dim, Actual: len(v)}
		}
	}
	return nil
}
