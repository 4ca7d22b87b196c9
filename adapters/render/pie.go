package render

import (
	"io"
	"math"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"glycostat/domain/chart"
	"glycostat/internal/errors"
)

// labels sit at 1.25 radii plus their text, so the pie keeps this much margin
const pieMargin = 1.6

// renderPie draws slices directly on a go-chart raster renderer so slice angles
// and label positions are exactly the composed ones
func (r *PNGRenderer) renderPie(spec *chart.ChartSpec, w io.Writer) error {
	if len(spec.Slices) == 0 {
		return errors.ErrEmptyDataset
	}
	font, err := gochart.GetDefaultFont()
	if err != nil {
		return err
	}
	rend, err := gochart.PNG(r.cfg.Width, r.cfg.Height)
	if err != nil {
		return err
	}

	rend.SetFillColor(drawing.ColorWhite)
	rend.SetStrokeColor(drawing.ColorWhite)
	rend.MoveTo(0, 0)
	rend.LineTo(r.cfg.Width, 0)
	rend.LineTo(r.cfg.Width, r.cfg.Height)
	rend.LineTo(0, r.cfg.Height)
	rend.Close()
	rend.FillStroke()

	cx, cy := r.cfg.Width/2, r.cfg.Height/2+10
	radius := float64(min(r.cfg.Width, r.cfg.Height)) / 2 / pieMargin

	for i, s := range spec.Slices {
		col := gochart.GetDefaultColor(i)
		rend.SetFillColor(col)
		rend.SetStrokeColor(drawing.ColorWhite)
		rend.SetStrokeWidth(2)
		rend.MoveTo(cx, cy)
		rend.ArcTo(cx, cy, radius, radius, screenAngle(s.StartAngle), (s.EndAngle-s.StartAngle)*math.Pi/180)
		rend.LineTo(cx, cy)
		rend.Close()
		rend.FillStroke()
	}

	rend.SetFont(font)
	rend.SetFontColor(drawing.ColorBlack)

	rend.SetFontSize(14)
	tb := rend.MeasureText(spec.Title)
	rend.Text(spec.Title, cx-tb.Width()/2, 28)

	rend.SetFontSize(10)
	for i, s := range spec.Slices {
		y := 50 + i*18
		rend.SetFillColor(gochart.GetDefaultColor(i))
		rend.SetStrokeColor(gochart.GetDefaultColor(i))
		rend.MoveTo(16, y-10)
		rend.LineTo(28, y-10)
		rend.LineTo(28, y+2)
		rend.LineTo(16, y+2)
		rend.Close()
		rend.FillStroke()
		rend.Text(s.Category, 34, y)
	}

	if spec.ShowLabels {
		for _, s := range spec.Slices {
			if s.Label == "" {
				continue
			}
			lb := rend.MeasureText(s.Label)
			x := cx + int(math.Round(s.LabelX*radius)) - lb.Width()/2
			y := cy - int(math.Round(s.LabelY*radius)) + lb.Height()/2
			rend.Text(s.Label, x, y)
		}
	}

	rend.SetFontSize(9)
	rend.Text(spec.Caption, 16, r.cfg.Height-14)

	return rend.Save(w)
}

// screenAngle converts degrees clockwise from 12 o'clock to the renderer's
// radians clockwise from 3 o'clock
func screenAngle(deg float64) float64 {
	return (deg - 90) * math.Pi / 180
}
