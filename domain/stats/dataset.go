package stats

import (
	"fmt"
	"math"
	"strings"

	"glycostat/internal/errors"
)

// Observation is a single measurement tagged with its group label
type Observation struct {
	Group string
	Value float64
}

// GroupedDataset is an immutable view of one measurement over one categorical grouping.
// Group order is supplied by the caller and never inferred from the data.
type GroupedDataset struct {
	metric   string
	grouping string
	order    []string
	values   map[string][]float64
	n        int
}

// NewGroupedDataset validates observations against the display order and builds the dataset.
// Groups listed in order without observations are dropped, so every exposed group is non-empty.
func NewGroupedDataset(metric, grouping string, order []string, obs []Observation) (*GroupedDataset, error) {
	if strings.TrimSpace(metric) == "" {
		return nil, errors.InvalidInput("metric name is required")
	}

	known := make(map[string]bool, len(order))
	for _, g := range order {
		if known[g] {
			return nil, errors.Newf(errors.CodeInvalidInput, "duplicate group %q in display order", g)
		}
		known[g] = true
	}

	values := make(map[string][]float64)
	for i, o := range obs {
		if !known[o.Group] {
			return nil, errors.Newf(errors.CodeInvalidInput,
				"observation %d: group %q is not in the display order %v", i, o.Group, order)
		}
		if math.IsNaN(o.Value) || math.IsInf(o.Value, 0) || o.Value < 0 {
			return nil, errors.Newf(errors.CodeInvalidInput,
				"observation %d: measurement %v must be finite and non-negative", i, o.Value)
		}
		values[o.Group] = append(values[o.Group], o.Value)
	}

	if len(values) == 0 {
		return nil, errors.Wrapf(errors.ErrEmptyDataset, "%s by %s", metric, grouping)
	}

	present := make([]string, 0, len(values))
	for _, g := range order {
		if len(values[g]) > 0 {
			present = append(present, g)
		}
	}

	return &GroupedDataset{
		metric:   metric,
		grouping: grouping,
		order:    present,
		values:   values,
		n:        len(obs),
	}, nil
}

// Metric is the name of the measurement column
func (d *GroupedDataset) Metric() string { return d.metric }

// Grouping is the name of the categorical column
func (d *GroupedDataset) Grouping() string { return d.grouping }

// Groups returns the non-empty groups in display order
func (d *GroupedDataset) Groups() []string {
	out := make([]string, len(d.order))
	copy(out, d.order)
	return out
}

// Values returns a copy of the measurements of one group, nil for an unknown group
func (d *GroupedDataset) Values(group string) []float64 {
	v, ok := d.values[group]
	if !ok {
		return nil
	}
	out := make([]float64, len(v))
	copy(out, v)
	return out
}

// Len is the total number of observations
func (d *GroupedDataset) Len() int { return d.n }

// Index returns the display position of a group, or -1
func (d *GroupedDataset) Index(group string) int {
	for i, g := range d.order {
		if g == group {
			return i
		}
	}
	return -1
}

// All flattens the dataset in display order, preserving input order within a group
func (d *GroupedDataset) All() []Observation {
	out := make([]Observation, 0, d.n)
	for _, g := range d.order {
		for _, v := range d.values[g] {
			out = append(out, Observation{Group: g, Value: v})
		}
	}
	return out
}

// Max is the largest measurement across all groups
func (d *GroupedDataset) Max() float64 {
	max := 0.0
	for _, v := range d.values {
		for _, x := range v {
			if x > max {
				max = x
			}
		}
	}
	return max
}

func (d *GroupedDataset) String() string {
	return fmt.Sprintf("%s by %s (%d groups, n=%d)", d.metric, d.grouping, len(d.order), d.n)
}
