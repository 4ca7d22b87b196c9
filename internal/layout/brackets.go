package layout

import (
	"glycostat/domain/chart"
	"glycostat/domain/stats"
)

// Policy selects how the bracket stack and the axis accommodate each other
type Policy int

const (
	// PolicyExpand grows the axis until the top bracket fits (boxplots)
	PolicyExpand Policy = iota
	// PolicyClamp adds fixed headroom once and keeps brackets below 95% of it (barplots)
	PolicyClamp
)

func (p Policy) String() string {
	if p == PolicyClamp {
		return "clamp"
	}
	return "expand"
}

const (
	bracketHeightFraction = 0.3
	clampHeadroom         = 1.5
	clampCeiling          = 0.95
)

// bracketBand holds the stack start and increment as fractions of the data maximum
type bracketBand struct {
	upper float64
	start float64
	step  float64
}

var bracketBands = []bracketBand{
	{70, 1.30, 0.60},
	{100, 1.25, 0.45},
	{500, 1.20, 0.30},
	{1000, 1.15, 0.20},
	{2000, 1.10, 0.15},
	{0, 1.08, 0.10},
}

// Layout is the bracket stack of one chart together with the axis it was fitted to
type Layout struct {
	Axis       chart.AxisSpec
	Placements []chart.BracketPlacement
}

// Brackets stacks significance brackets above the data
type Brackets struct {
	scaler *Scaler
}

// NewBrackets creates a bracket layout that uses scaler for axis expansion
func NewBrackets(scaler *Scaler) *Brackets {
	if scaler == nil {
		scaler = NewScaler(false)
	}
	return &Brackets{scaler: scaler}
}

// Layout places comps, in the order given, from the band start upwards.
// Placements never overlap and never sit above the returned axis max.
func (b *Brackets) Layout(comps []stats.PairwiseComparison, dataMax float64, axis chart.AxisSpec, policy Policy) Layout {
	if len(comps) == 0 {
		return Layout{Axis: axis, Placements: []chart.BracketPlacement{}}
	}

	base := dataMax
	if base <= 0 {
		base = axis.Max / clampHeadroom
	}
	band := bandFor(base)
	start := band.start * base
	step := band.step * base

	switch policy {
	case PolicyClamp:
		max := axis.Max * clampHeadroom
		axis = chart.AxisSpec{Min: 0, Max: max, Step: axis.Step, Ticks: Ticks(max, axis.Step)}
		ceiling := clampCeiling * max
		if start >= ceiling {
			start = ceiling / 2
		}
		n := float64(len(comps))
		if stackTop(start, step, len(comps)) > ceiling {
			step = (ceiling - start) / n
		}
	default:
		axis = b.scaler.ExpandTo(axis, stackTop(start, step, len(comps)))
	}

	placements := make([]chart.BracketPlacement, len(comps))
	for i, c := range comps {
		placements[i] = chart.BracketPlacement{
			Comparison: c,
			Y:          start + float64(i)*step,
			Height:     bracketHeightFraction * step,
		}
	}
	return Layout{Axis: axis, Placements: placements}
}

// stackTop is the upper edge of the last bracket
func stackTop(start, step float64, n int) float64 {
	return start + float64(n-1)*step + bracketHeightFraction*step
}

func bandFor(v float64) bracketBand {
	for _, b := range bracketBands[:len(bracketBands)-1] {
		if v < b.upper {
			return b
		}
	}
	return bracketBands[len(bracketBands)-1]
}
