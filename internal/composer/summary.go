package composer

import (
	"sort"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"

	"glycostat/domain/chart"
)

// whiskerReach is the Tukey fence multiplier on the interquartile range
const whiskerReach = 1.5

// summarize computes the box and bar geometry of one group
func summarize(label string, data []float64) (chart.GroupSummary, error) {
	s := chart.GroupSummary{Label: label, N: len(data)}

	mean, err := stats.Mean(data)
	if err != nil {
		return s, err
	}

	sd := 0.0
	if len(data) > 1 {
		sd, err = stats.StandardDeviationSample(data)
		if err != nil {
			return s, err
		}
	}

	min, err := stats.Min(data)
	if err != nil {
		return s, err
	}

	max, err := stats.Max(data)
	if err != nil {
		return s, err
	}

	median, err := stats.Median(data)
	if err != nil {
		return s, err
	}

	sorted := make([]float64, len(data))
	copy(sorted, data)
	sort.Float64s(sorted)
	q1 := stat.Quantile(0.25, stat.LinInterp, sorted, nil)
	q3 := stat.Quantile(0.75, stat.LinInterp, sorted, nil)

	s.Mean = mean
	s.SD = sd
	s.Min = min
	s.Max = max
	s.Median = median
	s.Q1 = q1
	s.Q3 = q3

	// whiskers end at the most extreme points inside the fences
	iqr := q3 - q1
	lowFence, highFence := q1-whiskerReach*iqr, q3+whiskerReach*iqr
	s.WhiskerLow, s.WhiskerHigh = q1, q3
	for _, v := range sorted {
		if v >= lowFence {
			s.WhiskerLow = v
			break
		}
	}
	for i := len(sorted) - 1; i >= 0; i-- {
		if sorted[i] <= highFence {
			s.WhiskerHigh = sorted[i]
			break
		}
	}

	s.Points = make([]float64, len(data))
	copy(s.Points, data)
	return s, nil
}
