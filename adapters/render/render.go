// Package render rasterizes chart specs to PNG files with go-chart.
package render

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"glycostat/domain/chart"
	"glycostat/internal"
	"glycostat/internal/errors"
)

// Config sets the raster size in pixels
type Config struct {
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

// DefaultConfig is the figure size used by the pipeline
func DefaultConfig() Config {
	return Config{Width: 900, Height: 700}
}

// PNGRenderer draws box, bar and pie specs
type PNGRenderer struct {
	cfg    Config
	logger *internal.Logger
}

// NewPNGRenderer creates a renderer
func NewPNGRenderer(cfg Config, logger *internal.Logger) *PNGRenderer {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &PNGRenderer{cfg: cfg, logger: logger.With("render")}
}

// Render writes spec as a PNG to path. Every failure carries RENDER_FAILED.
func (r *PNGRenderer) Render(ctx context.Context, spec *chart.ChartSpec, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if spec == nil {
		return errors.New(errors.CodeRenderFailed, "nil chart spec")
	}

	var buf bytes.Buffer
	var err error
	switch spec.Kind {
	case chart.KindBoxplot, chart.KindBarplot:
		err = r.renderPlot(spec, &buf)
	case chart.KindPie:
		err = r.renderPie(spec, &buf)
	default:
		err = fmt.Errorf("unsupported chart kind %q", spec.Kind)
	}
	if err != nil {
		return errors.WithCode(errors.CodeRenderFailed, fmt.Errorf("rendering %s: %w", spec.Title, err))
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.WithCode(errors.CodeRenderFailed, err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return errors.WithCode(errors.CodeRenderFailed, err)
	}
	r.logger.Debug("wrote %s (%d bytes)", path, buf.Len())
	return nil
}

// captionLines splits a caption into clauses and wraps long clauses at commas
func captionLines(caption string) []string {
	if caption == "" {
		return nil
	}
	var out []string
	for _, clause := range strings.SplitAfter(caption, "; ") {
		line := ""
		for _, part := range strings.SplitAfter(clause, ", ") {
			if line != "" && len(line)+len(part) > maxCaptionChars {
				out = append(out, strings.TrimSpace(line))
				line = ""
			}
			line += part
		}
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

const maxCaptionChars = 110

const captionLineHeight = 14

// captionElement draws caption lines under the plot area
func captionElement(lines []string, offset int) gochart.Renderable {
	return func(r gochart.Renderer, canvas gochart.Box, defaults gochart.Style) {
		if len(lines) == 0 {
			return
		}
		r.SetFont(defaults.GetFont())
		r.SetFontColor(drawing.ColorBlack)
		r.SetFontSize(9)
		for i, line := range lines {
			r.Text(line, canvas.Left, canvas.Bottom+offset+(i+1)*captionLineHeight)
		}
	}
}
