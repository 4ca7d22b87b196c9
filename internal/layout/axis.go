package layout

import (
	"math"

	"glycostat/domain/chart"
)

// padBand pads data maxima below upper with fn
type padBand struct {
	upper float64
	fn    func(float64) float64
}

var padBands = []padBand{
	{70, func(x float64) float64 { return x * 1.5 }},
	{100, func(x float64) float64 { return x * 1.4 }},
	{500, func(x float64) float64 { return x * 1.3 }},
	{1000, func(x float64) float64 { return x + 200 }},
	{2000, func(x float64) float64 { return x + 300 }},
	{math.Inf(1), func(x float64) float64 { return x + 400 }},
}

// minAxisMax keeps an all-zero metric drawable
const minAxisMax = 10

// Scaler derives the value axis of a chart from the largest observation
type Scaler struct {
	FineTicks bool
}

// NewScaler creates a scaler. fineTicks selects step 2 instead of 5 for small ranges.
func NewScaler(fineTicks bool) *Scaler {
	return &Scaler{FineTicks: fineTicks}
}

// Scale pads dataMax, rounds it to a nice boundary and lays ticks from 0 to the result
func (s *Scaler) Scale(dataMax float64) chart.AxisSpec {
	if dataMax < 0 || math.IsNaN(dataMax) {
		dataMax = 0
	}
	max := RoundNice(Pad(dataMax))
	step := s.StepFor(dataMax)
	return chart.AxisSpec{Min: 0, Max: max, Step: step, Ticks: Ticks(max, step)}
}

// ExpandTo grows axis so that top fits, re-rounding and regenerating ticks.
// An axis that already covers top is returned unchanged.
func (s *Scaler) ExpandTo(axis chart.AxisSpec, top float64) chart.AxisSpec {
	if top <= axis.Max {
		return axis
	}
	max := RoundNice(top)
	step := math.Max(axis.Step, s.StepFor(max))
	return chart.AxisSpec{Min: 0, Max: max, Step: step, Ticks: Ticks(max, step)}
}

// StepFor picks the tick step for a value range
func (s *Scaler) StepFor(v float64) float64 {
	switch {
	case v <= 20:
		if s.FineTicks {
			return 2
		}
		return 5
	case v <= 50:
		return 5
	case v <= 100:
		return 10
	case v <= 500:
		return 50
	case v <= 1000:
		return 100
	case v <= 5000:
		return 500
	default:
		return 1000
	}
}

// Pad applies the magnitude band padding. A band never pads below what the
// previous band reaches at its upper edge, so the result is monotone in x.
func Pad(x float64) float64 {
	floor := 0.0
	for _, b := range padBands {
		if x < b.upper {
			return math.Max(floor, b.fn(x))
		}
		floor = math.Max(floor, b.fn(b.upper))
	}
	return floor
}

// RoundNice rounds up to 10, then cumulatively to 50 above 100, 100 above 500 and 500 above 1000
func RoundNice(v float64) float64 {
	v = ceilTo(v, 10)
	if v > 100 {
		v = ceilTo(v, 50)
	}
	if v > 500 {
		v = ceilTo(v, 100)
	}
	if v > 1000 {
		v = ceilTo(v, 500)
	}
	if v < minAxisMax {
		v = minAxisMax
	}
	return v
}

// Ticks returns 0, step, 2·step, ... up to and never beyond max
func Ticks(max, step float64) []float64 {
	if step <= 0 || max <= 0 {
		return []float64{0}
	}
	k := int(math.Floor(max/step + 1e-9))
	ticks := make([]float64, k+1)
	for i := range ticks {
		ticks[i] = float64(i) * step
	}
	return ticks
}

func ceilTo(v, unit float64) float64 {
	return math.Ceil(v/unit-1e-9) * unit
}
