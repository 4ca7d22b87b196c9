package render

import (
	"io"
	"strconv"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"glycostat/domain/chart"
	"glycostat/internal/errors"
)

const (
	boxHalfWidth = 0.25
	barHalfWidth = 0.3
	capHalfWidth = 0.08
	pointSpread  = 0.12
	axisOffset   = 36
)

// plotter collects series in (position, value) space and swaps them onto the
// screen axes for horizontal charts
type plotter struct {
	horizontal bool
	series     []gochart.Series
}

func (p *plotter) line(style gochart.Style, pos, val []float64) {
	xs, ys := pos, val
	if p.horizontal {
		xs, ys = val, pos
	}
	p.series = append(p.series, gochart.ContinuousSeries{XValues: xs, YValues: ys, Style: style})
}

func (p *plotter) annotate(pos, val float64, label string) {
	x, y := pos, val
	if p.horizontal {
		x, y = val, pos
	}
	p.series = append(p.series, gochart.AnnotationSeries{
		Annotations: []gochart.Value2{{XValue: x, YValue: y, Label: label}},
	})
}

func strokeStyle(col drawing.Color, width float64) gochart.Style {
	return gochart.Style{StrokeColor: col, StrokeWidth: width}
}

// pointStyle renders points only, without connecting lines
func pointStyle(col drawing.Color) gochart.Style {
	return gochart.Style{
		StrokeWidth: 0,
		DotWidth:    3,
		DotColor:    col,
	}
}

func (r *PNGRenderer) renderPlot(spec *chart.ChartSpec, w io.Writer) error {
	if len(spec.Groups) == 0 {
		return errors.ErrEmptyDataset
	}
	if spec.Axis == nil {
		return errors.InvalidInput("plot spec has no axis")
	}

	p := &plotter{horizontal: spec.Horizontal}
	positions := make(map[string]float64, len(spec.Groups))
	for i, g := range spec.Groups {
		pos := float64(i + 1)
		positions[g.Label] = pos
		col := gochart.GetDefaultColor(i)
		if spec.Kind == chart.KindBarplot {
			drawBar(p, g, pos, col)
		} else {
			drawBox(p, g, pos, col)
		}
		drawPoints(p, g, pos, col)
	}
	for _, b := range spec.Brackets {
		drawBracket(p, b, positions)
	}

	valueAxis := gochart.ContinuousRange{Min: spec.Axis.Min, Max: spec.Axis.Max}
	valueTicks := make([]gochart.Tick, len(spec.Axis.Ticks))
	for i, t := range spec.Axis.Ticks {
		valueTicks[i] = gochart.Tick{Value: t, Label: strconv.FormatFloat(t, 'f', -1, 64)}
	}
	groupAxis := gochart.ContinuousRange{Min: 0.5, Max: float64(len(spec.Groups)) + 0.5}
	groupTicks := make([]gochart.Tick, len(spec.Groups))
	for i, g := range spec.Groups {
		groupTicks[i] = gochart.Tick{Value: float64(i + 1), Label: g.Label}
	}

	lines := captionLines(spec.Caption)
	ch := gochart.Chart{
		Title:  spec.Title,
		Width:  r.cfg.Width,
		Height: r.cfg.Height,
		Background: gochart.Style{Padding: gochart.Box{
			Top: 40, Left: 20, Right: 20, Bottom: axisOffset + 8 + captionLineHeight*len(lines),
		}},
		Series:   p.series,
		Elements: []gochart.Renderable{captionElement(lines, axisOffset)},
	}
	if spec.Horizontal {
		ch.XAxis = gochart.XAxis{Name: spec.Metric, Range: &valueAxis, Ticks: valueTicks}
		ch.YAxis = gochart.YAxis{Name: spec.Grouping, Range: &groupAxis, Ticks: groupTicks}
	} else {
		ch.XAxis = gochart.XAxis{Name: spec.Grouping, Range: &groupAxis, Ticks: groupTicks}
		ch.YAxis = gochart.YAxis{Name: spec.Metric, Range: &valueAxis, Ticks: valueTicks}
	}
	return ch.Render(gochart.PNG, w)
}

func drawBox(p *plotter, g chart.GroupSummary, pos float64, col drawing.Color) {
	left, right := pos-boxHalfWidth, pos+boxHalfWidth
	p.line(strokeStyle(col, 1.5),
		[]float64{left, right, right, left, left},
		[]float64{g.Q1, g.Q1, g.Q3, g.Q3, g.Q1})
	p.line(strokeStyle(drawing.ColorBlack, 2.5), []float64{left, right}, []float64{g.Median, g.Median})

	whisker := strokeStyle(col, 1)
	p.line(whisker, []float64{pos, pos}, []float64{g.Q3, g.WhiskerHigh})
	p.line(whisker, []float64{pos, pos}, []float64{g.Q1, g.WhiskerLow})
	p.line(whisker, []float64{pos - capHalfWidth, pos + capHalfWidth}, []float64{g.WhiskerHigh, g.WhiskerHigh})
	p.line(whisker, []float64{pos - capHalfWidth, pos + capHalfWidth}, []float64{g.WhiskerLow, g.WhiskerLow})
}

func drawBar(p *plotter, g chart.GroupSummary, pos float64, col drawing.Color) {
	left, right := pos-barHalfWidth, pos+barHalfWidth
	style := strokeStyle(col, 1.5)
	// area fill runs to the value-axis baseline, which is only the bar bottom when vertical
	if !p.horizontal {
		style.FillColor = col.WithAlpha(96)
	}
	p.line(style, []float64{left, left, right, right}, []float64{0, g.Mean, g.Mean, 0})

	low := g.Mean - g.SD
	if low < 0 {
		low = 0
	}
	p.line(strokeStyle(drawing.ColorBlack, 1), []float64{pos, pos}, []float64{low, g.Mean + g.SD})
}

func drawPoints(p *plotter, g chart.GroupSummary, pos float64, col drawing.Color) {
	if len(g.Points) == 0 {
		return
	}
	xs := make([]float64, len(g.Points))
	for i := range g.Points {
		// deterministic spread across the box so tied points stay visible
		xs[i] = pos
		if len(g.Points) > 1 {
			xs[i] += pointSpread * (2*float64(i)/float64(len(g.Points)-1) - 1)
		}
	}
	p.line(pointStyle(col.WithAlpha(180)), xs, g.Points)
}

func drawBracket(p *plotter, b chart.BracketPlacement, positions map[string]float64) {
	a, okA := positions[b.Comparison.GroupA]
	c, okB := positions[b.Comparison.GroupB]
	if !okA || !okB {
		return
	}
	bottom, top := b.Occupies()
	p.line(strokeStyle(drawing.ColorBlack, 1), []float64{a, a, c, c}, []float64{bottom, top, top, bottom})
	p.annotate((a+c)/2, top, string(b.Comparison.Code))
}
