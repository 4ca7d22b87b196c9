package rank

import (
	"sort"
)

// Average converts values to ranks (1-based), assigning tied values the mean of their positions
func Average(data []float64) []float64 {
	n := len(data)
	if n == 0 {
		return []float64{}
	}

	type pair struct {
		value float64
		index int
	}

	pairs := make([]pair, n)
	for i, val := range data {
		pairs[i] = pair{value: val, index: i}
	}

	sort.SliceStable(pairs, func(i, j int) bool {
		return pairs[i].value < pairs[j].value
	})

	ranks := make([]float64, n)

	i := 0
	for i < n {
		j := i + 1
		for j < n && pairs[j].value == pairs[i].value {
			j++
		}

		groupSize := j - i
		avgRank := float64(i+1) + float64(groupSize-1)/2.0
		for k := i; k < j; k++ {
			ranks[pairs[k].index] = avgRank
		}

		i = j
	}

	return ranks
}

// TieSizes returns the size of every run of equal values with more than one member
func TieSizes(data []float64) []int {
	if len(data) < 2 {
		return nil
	}
	sorted := make([]float64, len(data))
	copy(sorted, data)
	sort.Float64s(sorted)

	var sizes []int
	run := 1
	for i := 1; i <= len(sorted); i++ {
		if i < len(sorted) && sorted[i] == sorted[i-1] {
			run++
			continue
		}
		if run > 1 {
			sizes = append(sizes, run)
		}
		run = 1
	}
	return sizes
}

// TieTerm is Σ(t³ − t) over all tie groups, the quantity both rank tests correct for
func TieTerm(data []float64) float64 {
	sum := 0.0
	for _, t := range TieSizes(data) {
		ft := float64(t)
		sum += ft*ft*ft - ft
	}
	return sum
}
