package composer

import (
	"fmt"
	"math"
	"sort"

	"glycostat/domain/chart"
	"glycostat/internal"
	"glycostat/internal/errors"
)

// Label geometry in units of the pie radius
const (
	labelRadius     = 1.25
	labelCharWidth  = 0.045
	labelHeight     = 0.12
	labelPadding    = 0.02
	declutterRounds = 200
	separationNudge = 1e-6
)

// Pie composes categorical share charts
type Pie struct {
	recorder Recorder
	logger   *internal.Logger
}

// NewPie creates a pie composer. recorder may be nil.
func NewPie(recorder Recorder, logger *internal.Logger) *Pie {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Pie{recorder: recorder, logger: logger.With("pie")}
}

// Compose builds a pie spec from category counts. Categories with zero or missing
// counts are left out; present categories follow order, and any category not in
// order is appended alphabetically.
func (p *Pie) Compose(title string, counts map[string]int, order []string, showLabels bool) (*chart.ChartSpec, error) {
	slices, err := shareSlices(counts, order)
	if err != nil {
		return nil, errors.Wrapf(err, "pie %q", title)
	}

	if showLabels {
		placeLabels(slices)
	}

	caption := fmt.Sprintf("n = %d", total(slices))
	spec := &chart.ChartSpec{
		Kind:       chart.KindPie,
		Title:      title,
		State:      chart.StateShares,
		Slices:     slices,
		Brackets:   []chart.BracketPlacement{},
		Caption:    caption,
		ShowLabels: showLabels,
	}
	if p.recorder != nil {
		p.recorder.ChartComposed(chart.KindPie, chart.StateShares)
	}
	p.logger.Debug("%s: %d slices", title, len(slices))
	return spec, nil
}

// ComposePair returns the unlabeled and the labeled spec. Both share slice geometry.
func (p *Pie) ComposePair(title string, counts map[string]int, order []string) (*chart.ChartSpec, *chart.ChartSpec, error) {
	plain, err := p.Compose(title, counts, order, false)
	if err != nil {
		return nil, nil, err
	}
	labeled, err := p.Compose(title, counts, order, true)
	if err != nil {
		return nil, nil, err
	}
	return plain, labeled, nil
}

func shareSlices(counts map[string]int, order []string) ([]chart.Slice, error) {
	sum := 0
	for c, n := range counts {
		if n < 0 {
			return nil, errors.Newf(errors.CodeInvalidInput, "category %q has negative count %d", c, n)
		}
		sum += n
	}
	if sum == 0 {
		return nil, errors.ErrEmptyDataset
	}

	seen := make(map[string]bool, len(order))
	cats := make([]string, 0, len(counts))
	for _, c := range order {
		if seen[c] {
			continue
		}
		seen[c] = true
		if counts[c] > 0 {
			cats = append(cats, c)
		}
	}
	var extra []string
	for c, n := range counts {
		if !seen[c] && n > 0 {
			extra = append(extra, c)
		}
	}
	sort.Strings(extra)
	cats = append(cats, extra...)

	slices := make([]chart.Slice, 0, len(cats))
	angle := 0.0
	for _, c := range cats {
		n := counts[c]
		pct := 100 * float64(n) / float64(sum)
		span := 360 * float64(n) / float64(sum)
		slices = append(slices, chart.Slice{
			Category:   c,
			Count:      n,
			Percentage: pct,
			StartAngle: angle,
			EndAngle:   angle + span,
		})
		angle += span
	}
	// absorb rounding so the last slice closes the circle
	slices[len(slices)-1].EndAngle = 360
	return slices, nil
}

func total(slices []chart.Slice) int {
	n := 0
	for _, s := range slices {
		n += s.Count
	}
	return n
}

// box is a label bounding box centered on (x, y)
type box struct {
	x, y, w, h float64
}

func (a box) overlap(b box) (float64, float64) {
	dx := (a.w+b.w)/2 + labelPadding - math.Abs(a.x-b.x)
	dy := (a.h+b.h)/2 + labelPadding - math.Abs(a.y-b.y)
	return dx, dy
}

// placeLabels writes label text and a decluttered position onto each slice.
// Labels start on a ring outside the pie and overlapping pairs are pushed apart
// along their shorter overlap axis until none overlap or the rounds run out.
func placeLabels(slices []chart.Slice) {
	boxes := make([]box, len(slices))
	for i := range slices {
		s := &slices[i]
		s.Label = fmt.Sprintf("%.1f%% (n=%d)", s.Percentage, s.Count)
		mid := (s.StartAngle + s.EndAngle) / 2 * math.Pi / 180
		boxes[i] = box{
			x: labelRadius * math.Sin(mid),
			y: labelRadius * math.Cos(mid),
			w: labelCharWidth * float64(len(s.Label)),
			h: labelHeight,
		}
	}

	for round := 0; round < declutterRounds; round++ {
		moved := false
		for i := 0; i < len(boxes); i++ {
			for j := i + 1; j < len(boxes); j++ {
				dx, dy := boxes[i].overlap(boxes[j])
				if dx <= 0 || dy <= 0 {
					continue
				}
				moved = true
				if dy <= dx {
					shift := dy/2 + separationNudge
					if boxes[i].y >= boxes[j].y {
						boxes[i].y += shift
						boxes[j].y -= shift
					} else {
						boxes[i].y -= shift
						boxes[j].y += shift
					}
				} else {
					shift := dx/2 + separationNudge
					if boxes[i].x >= boxes[j].x {
						boxes[i].x += shift
						boxes[j].x -= shift
					} else {
						boxes[i].x -= shift
						boxes[j].x += shift
					}
				}
			}
		}
		if !moved {
			break
		}
	}

	for i := range slices {
		slices[i].LabelX = boxes[i].x
		slices[i].LabelY = boxes[i].y
	}
}
