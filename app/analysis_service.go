package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"

	"glycostat/domain/chart"
	"glycostat/domain/core"
	"glycostat/domain/stats"
	"glycostat/internal"
	"glycostat/internal/composer"
	"glycostat/internal/config"
	"glycostat/internal/counts"
	"glycostat/internal/errors"
	"glycostat/internal/metrics"
	"glycostat/internal/outdir"
	"glycostat/internal/ptm"
	"glycostat/internal/report"
	"glycostat/internal/sample"
	"glycostat/ports"
)

// AnalysisDeps are the engines and adapters an analysis runs on
type AnalysisDeps struct {
	Omnibus  ports.OmnibusTester
	Posthoc  ports.PosthocEngine
	Renderer ports.ChartRenderer
	Exporter ports.ComparisonExporter
	// Store persists the registry. Optional.
	Store     ports.ResultStore
	Collector *metrics.Collector
}

// AnalysisService compares summary metrics across groups and draws the figures
type AnalysisService struct {
	cfg      *config.Config
	layout   outdir.Layout
	deps     AnalysisDeps
	progress io.Writer
	logger   *internal.Logger
}

// AnalysisResult lists what an analysis produced
type AnalysisResult struct {
	RunID          core.RunID
	Specs          []*chart.ChartSpec
	Registry       stats.Registry
	ReportPath     string
	RenderFailures int
}

// NewAnalysisService creates an analysis service. progress may be nil.
func NewAnalysisService(cfg *config.Config, deps AnalysisDeps, progress io.Writer, logger *internal.Logger) *AnalysisService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	if progress == nil {
		progress = io.Discard
	}
	if deps.Collector == nil {
		deps.Collector = metrics.NewCollector()
	}
	return &AnalysisService{
		cfg:      cfg,
		layout:   outdir.New(cfg.Paths.OutputDir),
		deps:     deps,
		progress: progress,
		logger:   logger.With("analysis"),
	}
}

// Run analyzes the configured level's summary under runID
func (s *AnalysisService) Run(ctx context.Context, runID core.RunID) (*AnalysisResult, error) {
	level := counts.Level(s.cfg.Analysis.Level)
	grouping, err := counts.ParseGrouping(s.cfg.Analysis.Grouping)
	if err != nil {
		return nil, errors.WithCode(errors.CodeConfigInvalid, err)
	}

	table, err := counts.LoadSummaryTable(level, s.layout.SummaryFile(level, counts.SubsetAll))
	if err != nil {
		return nil, err
	}
	table, order := s.selectRows(table, grouping)

	kinds := []chart.Kind{chart.KindBoxplot}
	if s.cfg.Barplots() {
		kinds = append(kinds, chart.KindBarplot)
	}

	result := &AnalysisResult{RunID: runID, Registry: stats.Registry{}}
	plot := composer.NewPlot(s.deps.Omnibus, s.deps.Posthoc, composer.PlotConfig{
		Horizontal: s.cfg.Chart.Horizontal,
		FineTicks:  s.cfg.Chart.FineTicks,
		Registry:   result.Registry,
		Recorder:   s.deps.Collector,
		Logger:     s.logger,
	})
	rep := report.New(fmt.Sprintf("glycostat %s by %s", level, grouping), runID.String())

	bar := progressbar.NewOptions(len(counts.Metrics),
		progressbar.OptionSetDescription("Comparing metrics"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWriter(s.progress),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(s.progress)
		}),
	)

	for _, m := range counts.Metrics {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := bar.Add(1); err != nil {
			s.logger.Debug("progress: %v", err)
		}

		ds, err := table.Grouped(m, grouping, order)
		if err != nil {
			s.logger.Warn("skipping %s: %v", m.Name, err)
			continue
		}
		specs, err := plot.ComposeAll(ds, kinds)
		if err != nil {
			s.logger.Warn("skipping %s: %v", m.Name, err)
			continue
		}

		figure := ds.Metric() + "_by_" + ds.Grouping()
		for _, spec := range specs {
			rep.Add(spec, s.render(ctx, spec, s.layout.Figure(spec.Kind, figure), result))
			result.Specs = append(result.Specs, spec)
		}
		if specs[0].State == chart.StateAnnotated {
			name := stats.RegistryName(ds.Metric(), ds.Grouping())
			if _, err := s.deps.Exporter.Export(ctx, name, specs[0], result.Registry[name]); err != nil {
				s.logger.Error("exporting %s: %v", name, err)
			}
		}
	}

	if s.deps.Store != nil {
		if err := s.deps.Store.SaveRegistry(ctx, runID, result.Registry); err != nil {
			return nil, err
		}
		s.logger.Info("saved %d comparison sets for run %s", len(result.Registry), runID)
	}

	s.pies(ctx, level, rep, result)

	path, err := rep.Write(s.layout.Statistics())
	if err != nil {
		return nil, err
	}
	result.ReportPath = path

	if s.cfg.Paths.MetricsFile != "" {
		if err := s.deps.Collector.WriteFile(s.cfg.Paths.MetricsFile); err != nil {
			return nil, err
		}
	}
	s.logger.Info("run %s: %d charts, %d render failures, report at %s", runID, len(result.Specs), result.RenderFailures, path)
	return result, nil
}

// selectRows picks the rows and display order for a grouping. Techniques are
// compared over their numbered pools only, pools over every row.
func (s *AnalysisService) selectRows(t *counts.SummaryTable, g counts.Grouping) (*counts.SummaryTable, []string) {
	if g == counts.ByPool {
		return t, s.cfg.Samples.Pools
	}
	return t.Subset(counts.SubsetIndividual), s.cfg.Samples.Techniques
}

// render draws a spec and returns its path relative to the report, empty on failure.
// A failed render keeps the chart.
func (s *AnalysisService) render(ctx context.Context, spec *chart.ChartSpec, path string, result *AnalysisResult) string {
	if err := s.deps.Renderer.Render(ctx, spec, path); err != nil {
		s.logger.Error("rendering %s %s: %v", spec.Title, spec.Kind, err)
		s.deps.Collector.RenderFailed(spec.Kind)
		result.RenderFailures++
		return ""
	}
	rel, err := filepath.Rel(s.layout.Statistics(), path)
	if err != nil {
		return path
	}
	return rel
}

// pies draws the PTM composition of every technique's merged pools
func (s *AnalysisService) pies(ctx context.Context, level counts.Level, rep *report.Report, result *AnalysisResult) {
	pie := composer.NewPie(s.deps.Collector, s.logger)
	for _, tech := range s.cfg.Samples.Techniques {
		path := s.layout.PTMTypesFile(level, sample.PooledName(tech))
		if _, err := os.Stat(path); err != nil {
			s.logger.Warn("no PTM types for %s at %s", tech, path)
			continue
		}
		vcs, err := counts.LoadValueCounts(path)
		if err != nil {
			s.logger.Warn("%s: %v", tech, err)
			continue
		}
		plain, labeled, err := pie.ComposePair(tech, counts.PTMShares(vcs), ptm.OrderStrings())
		if err != nil {
			s.logger.Warn("%s pie: %v", tech, err)
			continue
		}
		rep.Add(plain, s.render(ctx, plain, filepath.Join(s.layout.Pies(false), tech+".png"), result))
		s.render(ctx, labeled, filepath.Join(s.layout.Pies(true), tech+".png"), result)
		result.Specs = append(result.Specs, plain, labeled)
	}
}
