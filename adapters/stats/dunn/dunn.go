package dunn

import (
	"math"

	"glycostat/adapters/stats/dist"
	"glycostat/adapters/stats/fdr"
	"glycostat/adapters/stats/rank"
	"glycostat/domain/stats"
	"glycostat/internal/errors"
)

// rank variances below this are treated as collapsed by ties
const varianceFloor = 1e-9

// Correction adjusts a family of raw p-values, keeping input order
type Correction func(pvalues []float64) ([]float64, error)

// Engine runs Dunn's pairwise rank test with a multiple-comparison correction
type Engine struct {
	correct Correction
}

// NewEngine creates an engine using Benjamini-Hochberg FDR correction
func NewEngine() *Engine {
	return &Engine{correct: fdr.BenjaminiHochberg}
}

// NewEngineWithCorrection creates an engine with a custom correction
func NewEngineWithCorrection(c Correction) *Engine {
	return &Engine{correct: c}
}

// Run compares every unordered pair of groups using the global tie-averaged ranks.
// Pairs whose statistic cannot be computed carry NaN p-values; if every pair is
// like that the result is empty. The result is in canonical display order.
func (e *Engine) Run(ds *stats.GroupedDataset, omnibus stats.OmnibusResult) ([]stats.PairwiseComparison, error) {
	if !omnibus.Valid || !omnibus.Significant {
		return nil, errors.PreconditionFailed("post-hoc comparisons require a valid, significant omnibus result")
	}

	groups := ds.Groups()
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
	base := n*(n+1)/12 - rank.TieTerm(values)/(12*(n-1))

	var comps []stats.PairwiseComparison
	var raw []float64
	computed := 0
	for i := 0; i < len(groups); i++ {
		for j := i + 1; j < len(groups); j++ {
			a, b := groups[i], groups[j]
			na, nb := float64(sizes[a]), float64(sizes[b])

			c := stats.PairwiseComparison{GroupA: a, GroupB: b, Code: stats.CodeNS}
			variance := base * (1/na + 1/nb)
			z := (rankSums[a]/na - rankSums[b]/nb) / math.Sqrt(variance)
			if variance <= varianceFloor || math.IsNaN(z) || math.IsInf(z, 0) {
				c.Z, c.RawP, c.AdjustedP = math.NaN(), math.NaN(), math.NaN()
			} else {
				c.Z = z
				c.RawP = dist.NormalTwoSided(z)
				computed++
			}
			comps = append(comps, c)
			raw = append(raw, c.RawP)
		}
	}

	if computed == 0 {
		return []stats.PairwiseComparison{}, nil
	}

	adjusted, err := e.correct(raw)
	if err != nil {
		return nil, errors.PosthocFailed(ds.Metric(), err)
	}
	if len(adjusted) != len(raw) {
		return nil, errors.PosthocFailed(ds.Metric(),
			errors.Newf(errors.CodeInternalError, "correction returned %d values for %d pairs", len(adjusted), len(raw)))
	}

	for i := range comps {
		if math.IsNaN(comps[i].RawP) {
			continue
		}
		comps[i].AdjustedP = adjusted[i]
		comps[i].Code = stats.CodeFor(adjusted[i])
	}

	stats.SortCanonical(comps, groups)
	return comps, nil
}
