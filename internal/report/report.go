// Package report summarizes an analysis run as Markdown and HTML.
package report

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"glycostat/domain/chart"
	"glycostat/internal/errors"
)

// Entry is one rendered chart. Image is relative to the report, empty when rendering failed.
type Entry struct {
	Spec  *chart.ChartSpec
	Image string
}

// Report collects the charts of a run in the order they were produced
type Report struct {
	Title     string
	RunID     string
	Generated time.Time
	entries   []Entry
}

// New starts a report
func New(title, runID string) *Report {
	return &Report{Title: title, RunID: runID, Generated: time.Now().UTC()}
}

// Add appends a chart
func (r *Report) Add(spec *chart.ChartSpec, image string) {
	r.entries = append(r.entries, Entry{Spec: spec, Image: image})
}

// Len returns the number of charts
func (r *Report) Len() int { return len(r.entries) }

// Markdown renders the report source
func (r *Report) Markdown() []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "# %s\n\n", r.Title)
	fmt.Fprintf(&b, "Run `%s`, generated %s.\n\n", r.RunID, r.Generated.Format(time.RFC3339))

	var plots, pies []Entry
	for _, e := range r.entries {
		if e.Spec.Kind == chart.KindPie {
			pies = append(pies, e)
		} else {
			plots = append(plots, e)
		}
	}

	if len(plots) > 0 {
		b.WriteString("## Group comparisons\n\n")
		b.WriteString("| Metric | Grouping | Chart | State | H | p |\n")
		b.WriteString("|---|---|---|---|---|---|\n")
		for _, e := range plots {
			s := e.Spec
			h, p := "NA", "NA"
			if s.Omnibus != nil && s.Omnibus.Valid {
				h = fmt.Sprintf("%.2f", s.Omnibus.Statistic)
				p = fmt.Sprintf("%.4g", s.Omnibus.PValue)
			}
			fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s |\n", s.Metric, s.Grouping, s.Kind, s.State, h, p)
		}
		b.WriteString("\n")
		for _, e := range plots {
			writeFigure(&b, e)
		}
	}

	if len(pies) > 0 {
		b.WriteString("## PTM composition\n\n")
		for _, e := range pies {
			writeFigure(&b, e)
		}
	}
	return b.Bytes()
}

func writeFigure(b *bytes.Buffer, e Entry) {
	fmt.Fprintf(b, "### %s (%s)\n\n", e.Spec.Title, e.Spec.Kind)
	if e.Image != "" {
		fmt.Fprintf(b, "![%s](%s)\n\n", e.Spec.Title, filepath.ToSlash(e.Image))
	} else {
		b.WriteString("_figure could not be rendered_\n\n")
	}
	if e.Spec.Caption != "" {
		fmt.Fprintf(b, "%s\n\n", escape(e.Spec.Caption))
	}
}

// escape keeps significance stars literal
func escape(s string) string {
	return strings.ReplaceAll(s, "*", `\*`)
}

// HTML renders the report as a standalone page
func (r *Report) HTML() []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	renderer := html.NewRenderer(html.RendererOptions{
		Flags: html.CommonFlags | html.CompletePage,
		Title: r.Title,
	})
	return markdown.ToHTML(r.Markdown(), p, renderer)
}

// Write stores report.md and report.html in dir and returns the HTML path
func (r *Report) Write(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrapf(err, "creating %s", dir)
	}
	if err := os.WriteFile(filepath.Join(dir, "report.md"), r.Markdown(), 0o644); err != nil {
		return "", errors.Wrapf(err, "writing report.md")
	}
	path := filepath.Join(dir, "report.html")
	if err := os.WriteFile(path, r.HTML(), 0o644); err != nil {
		return "", errors.Wrapf(err, "writing report.html")
	}
	return path, nil
}
