package chart

import (
	"glycostat/domain/stats"
)

// Kind identifies the chart family a spec is rendered as
type Kind string

const (
	KindBoxplot Kind = "boxplot"
	KindBarplot Kind = "barplot"
	KindPie     Kind = "pie"
)

// ParseKind maps a kind name to a Kind
func ParseKind(s string) (Kind, bool) {
	switch Kind(s) {
	case KindBoxplot, KindBarplot, KindPie:
		return Kind(s), true
	}
	return "", false
}

// State is the terminal state the composer reached for a spec
type State string

const (
	StateNoSignal              State = "no_signal"
	StatePosthocError          State = "posthoc_error"
	StateSignificantNoPairwise State = "significant_no_pairwise"
	StateAnnotated             State = "annotated"
	StateShares                State = "shares"
)

// Degraded reasons carried alongside the non-annotated states
const (
	ReasonInvalidOmnibus = "invalid_omnibus"
	ReasonNotSignificant = "not_significant"
	ReasonPosthocError   = "posthoc_error"
	ReasonNoPairwise     = "no_valid_pairwise"
)

// Captions for each state
const (
	CaptionInvalid        = "test invalid: omnibus statistic could not be computed"
	CaptionNotSignificant = "no significant differences"
	CaptionPosthocError   = "could not perform statistical tests"
	CaptionNoPairwise     = "omnibus significant but no valid pairwise comparisons"
)

// AxisSpec is the value axis of a chart. Min is always 0 for count data.
type AxisSpec struct {
	Min   float64   `json:"min"`
	Max   float64   `json:"max"`
	Step  float64   `json:"step"`
	Ticks []float64 `json:"ticks"`
}

// BracketPlacement positions one significance bracket on the value axis
type BracketPlacement struct {
	Comparison stats.PairwiseComparison `json:"comparison"`
	Y          float64                  `json:"y_position"`
	Height     float64                  `json:"height"`
}

// Occupies returns the closed interval [y, y+height] the bracket covers
func (b BracketPlacement) Occupies() (float64, float64) {
	return b.Y, b.Y + b.Height
}

// GroupSummary carries the per-group geometry a box or bar needs
type GroupSummary struct {
	Label       string    `json:"label"`
	N           int       `json:"n"`
	Mean        float64   `json:"mean"`
	SD          float64   `json:"sd"`
	Min         float64   `json:"min"`
	Q1          float64   `json:"q1"`
	Median      float64   `json:"median"`
	Q3          float64   `json:"q3"`
	Max         float64   `json:"max"`
	WhiskerLow  float64   `json:"whisker_low"`
	WhiskerHigh float64   `json:"whisker_high"`
	Points      []float64 `json:"points"`
}

// Slice is one sector of a pie chart. Angles are degrees clockwise from 12 o'clock.
type Slice struct {
	Category   string  `json:"category"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
	StartAngle float64 `json:"start_angle"`
	EndAngle   float64 `json:"end_angle"`
	Label      string  `json:"label,omitempty"`
	LabelX     float64 `json:"label_x,omitempty"`
	LabelY     float64 `json:"label_y,omitempty"`
}

// ChartSpec is the renderable description of one chart
type ChartSpec struct {
	Kind           Kind                 `json:"kind"`
	Title          string               `json:"title"`
	Metric         string               `json:"metric,omitempty"`
	Grouping       string               `json:"grouping,omitempty"`
	State          State                `json:"state"`
	Omnibus        *stats.OmnibusResult `json:"omnibus,omitempty"`
	Groups         []GroupSummary       `json:"groups,omitempty"`
	Slices         []Slice              `json:"slices,omitempty"`
	Axis           *AxisSpec            `json:"axis,omitempty"`
	Brackets       []BracketPlacement   `json:"brackets"`
	Caption        string               `json:"caption"`
	DegradedReason string               `json:"degraded_reason,omitempty"`
	ShowLabels     bool                 `json:"show_labels"`
	Horizontal     bool                 `json:"horizontal"`
}

// Degraded reports whether the chart ended in a non-annotated statistical state
func (s *ChartSpec) Degraded() bool {
	return s.DegradedReason != ""
}

// GroupLabels returns the category labels in the order the chart displays them
func (s *ChartSpec) GroupLabels() []string {
	out := make([]string, len(s.Groups))
	for i, g := range s.Groups {
		out[i] = g.Label
	}
	return out
}
