package stats

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
)

// Alpha is the fixed significance threshold for the omnibus test
const Alpha = 0.05

// OmnibusResult is the outcome of the rank-based one-way comparison over all groups.
// PValue is NaN whenever Valid is false.
type OmnibusResult struct {
	Method        string  `json:"method"`
	Statistic     float64 `json:"statistic"`
	DF            int     `json:"df"`
	PValue        float64 `json:"p_value"`
	N             int     `json:"n"`
	Valid         bool    `json:"is_valid"`
	Significant   bool    `json:"is_significant"`
	InvalidReason string  `json:"invalid_reason,omitempty"`
}

// MarshalJSON writes non-finite numbers as null
func (r OmnibusResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Method        string   `json:"method"`
		Statistic     *float64 `json:"statistic"`
		DF            int      `json:"df"`
		PValue        *float64 `json:"p_value"`
		N             int      `json:"n"`
		Valid         bool     `json:"is_valid"`
		Significant   bool     `json:"is_significant"`
		InvalidReason string   `json:"invalid_reason,omitempty"`
	}{r.Method, finiteOrNil(r.Statistic), r.DF, finiteOrNil(r.PValue), r.N, r.Valid, r.Significant, r.InvalidReason})
}

// SignificanceCode is the shorthand symbol for an adjusted p-value range
type SignificanceCode string

const (
	CodeNS   SignificanceCode = "ns"
	Code05   SignificanceCode = "*"
	Code01   SignificanceCode = "**"
	Code001  SignificanceCode = "***"
	Code0001 SignificanceCode = "****"
)

// CodeFor maps an adjusted p-value to its significance code. NaN maps to "ns".
func CodeFor(p float64) SignificanceCode {
	switch {
	case math.IsNaN(p):
		return CodeNS
	case p <= 0.0001:
		return Code0001
	case p <= 0.001:
		return Code001
	case p <= 0.01:
		return Code01
	case p <= 0.05:
		return Code05
	default:
		return CodeNS
	}
}

// PairwiseComparison is one post-hoc rank-sum comparison between two groups.
// A pair whose statistic could not be computed carries NaN p-values and CodeNS.
type PairwiseComparison struct {
	GroupA    string           `json:"group_a"`
	GroupB    string           `json:"group_b"`
	Z         float64          `json:"z"`
	RawP      float64          `json:"raw_p"`
	AdjustedP float64          `json:"adjusted_p"`
	Code      SignificanceCode `json:"significance_code"`
}

// Label returns "A vs B"
func (c PairwiseComparison) Label() string {
	return fmt.Sprintf("%s vs %s", c.GroupA, c.GroupB)
}

// Computed reports whether the pair produced a usable p-value
func (c PairwiseComparison) Computed() bool {
	return !math.IsNaN(c.RawP) && !math.IsNaN(c.AdjustedP)
}

// Significant reports whether the adjusted p-value earned a non-"ns" code
func (c PairwiseComparison) Significant() bool {
	return c.Computed() && c.Code != CodeNS
}

// MarshalJSON writes non-finite numbers as null
func (c PairwiseComparison) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		GroupA    string           `json:"group_a"`
		GroupB    string           `json:"group_b"`
		Z         *float64         `json:"z"`
		RawP      *float64         `json:"raw_p"`
		AdjustedP *float64         `json:"adjusted_p"`
		Code      SignificanceCode `json:"significance_code"`
	}{c.GroupA, c.GroupB, finiteOrNil(c.Z), finiteOrNil(c.RawP), finiteOrNil(c.AdjustedP), c.Code})
}

// SortCanonical orders comparisons by the display index of GroupA, then of GroupB.
// Labels missing from order sort after known ones, alphabetically.
func SortCanonical(comps []PairwiseComparison, order []string) {
	idx := make(map[string]int, len(order))
	for i, g := range order {
		idx[g] = i
	}
	pos := func(g string) int {
		if i, ok := idx[g]; ok {
			return i
		}
		return len(order)
	}
	sort.SliceStable(comps, func(i, j int) bool {
		ai, aj := pos(comps[i].GroupA), pos(comps[j].GroupA)
		if ai != aj {
			return ai < aj
		}
		if comps[i].GroupA != comps[j].GroupA {
			return comps[i].GroupA < comps[j].GroupA
		}
		bi, bj := pos(comps[i].GroupB), pos(comps[j].GroupB)
		if bi != bj {
			return bi < bj
		}
		return comps[i].GroupB < comps[j].GroupB
	})
}

func finiteOrNil(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
