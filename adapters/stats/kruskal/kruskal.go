package kruskal

import (
	"math"

	"glycostat/adapters/stats/dist"
	"glycostat/adapters/stats/rank"
	"glycostat/domain/stats"
)

// Method is the name recorded on every result
const Method = "kruskal-wallis"

// Invalid reasons
const (
	ReasonTooFewGroups = "fewer than 2 non-empty groups"
	ReasonDegenerate   = "statistic is not finite (all measurements tied)"
)

// Tester runs the tie-corrected Kruskal-Wallis H test
type Tester struct{}

// NewTester creates a Kruskal-Wallis tester
func NewTester() *Tester {
	return &Tester{}
}

// Run computes H over the global ranks of all observations.
// The result is invalid with a NaN p-value when fewer than two groups exist
// or when every observation is tied.
func (t *Tester) Run(ds *stats.GroupedDataset) stats.OmnibusResult {
	groups := ds.Groups()
	res := stats.OmnibusResult{
		Method:    Method,
		Statistic: math.NaN(),
		PValue:    math.NaN(),
		N:         ds.Len(),
	}
	if len(groups) < 2 {
		res.InvalidReason = ReasonTooFewGroups
		return res
	}

	obs := ds.All()
	values := make([]float64, len(obs))
	for i, o := range obs {
		values[i] = o.Value
	}
	ranks := rank.Average(values)

	rankSums := make(map[string]float64, len(groups))
	sizes := make(map[string]int, len(groups))
	for i, o := range obs {
		rankSums[o.Group] += ranks[i]
		sizes[o.Group]++
	}

	n := float64(len(obs))
	sum := 0.0
	for _, g := range groups {
		r := rankSums[g]
		sum += r * r / float64(sizes[g])
	}
	h := 12.0/(n*(n+1))*sum - 3*(n+1)

	correction := 1 - rank.TieTerm(values)/(n*n*n-n)
	h /= correction

	res.DF = len(groups) - 1
	if math.IsNaN(h) || math.IsInf(h, 0) {
		res.InvalidReason = ReasonDegenerate
		return res
	}
	if h < 0 {
		// rounding on near-identical rank means
		h = 0
	}

	res.Statistic = h
	res.PValue = dist.ChiSquareUpper(h, res.DF)
	res.Valid = true
	res.Significant = res.PValue <= stats.Alpha
	return res
}
