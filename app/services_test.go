package app

import (
	"bytes"
	"context"
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"glycostat/adapters/export"
	"glycostat/adapters/render"
	"glycostat/adapters/sqlite"
	"glycostat/adapters/stats/dunn"
	"glycostat/adapters/stats/kruskal"
	"glycostat/domain/chart"
	"glycostat/domain/core"
	"glycostat/internal"
	"glycostat/internal/config"
	"glycostat/internal/counts"
	"glycostat/internal/errors"
	"glycostat/internal/metrics"
	"glycostat/internal/outdir"
	"glycostat/internal/testkit"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	root := t.TempDir()
	cfg := config.Default()
	cfg.Paths.InputDir = filepath.Join(root, "input")
	cfg.Paths.OutputDir = filepath.Join(root, "output")
	cfg.Paths.MetricsFile = filepath.Join(root, "output", "4_statistics", "metrics.prom")

	g := testkit.NewGenerator(testkit.DefaultConfig())
	_, err := g.WritePSMFiles(cfg.Paths.InputDir)
	require.NoError(t, err)
	cfg.Paths.Vesiclepedia, cfg.Paths.Glycosylation, err = g.WriteCatalogs(filepath.Join(root, "data"))
	require.NoError(t, err)
	return cfg
}

func quietLogger() *internal.Logger {
	return internal.NewLogger(internal.LogLevelError)
}

func TestPrepareService(t *testing.T) {
	cfg := testConfig(t)
	collector := metrics.NewCollector()
	res, err := NewPrepareService(cfg, collector, io.Discard, quietLogger()).Run(context.Background())
	require.NoError(t, err)

	// 16 exports plus one merged pool per technique
	assert.Len(t, res.Samples, 20)
	for _, level := range []counts.Level{counts.LevelVesiclepedia, counts.LevelGlycosylated} {
		require.Contains(t, res.Summaries, level)
		assert.Len(t, res.Summaries[level].Rows, 20)
	}

	l := outdir.New(cfg.Paths.OutputDir)
	for _, path := range []string{
		l.FilteredFile(counts.LevelVesiclepedia, "SEC_POOL_1"),
		l.FilteredFile(counts.LevelGlycosylated, "IP_CD9_NO_POOL"),
		l.ValueCountFile(counts.LevelTotal, "UC_POOLS_123", counts.ColCluster),
		l.PTMTypesFile(counts.LevelGlycosylated, "ExoGAG_POOLS_123"),
		l.SummaryFile(counts.LevelGlycosylated, counts.SubsetIndividual),
	} {
		_, err := os.Stat(path)
		assert.NoError(t, err, path)
	}

	loaded, err := counts.LoadSummaryTable(counts.LevelVesiclepedia, l.SummaryFile(counts.LevelVesiclepedia, counts.SubsetAll))
	require.NoError(t, err)
	assert.Equal(t, res.Summaries[counts.LevelVesiclepedia].Rows[0].Sample, loaded.Rows[0].Sample)

	// merged pools hold the union of their members
	var pooled, members int
	for _, r := range res.Summaries[counts.LevelVesiclepedia].Rows {
		if r.Technique != "SEC" {
			continue
		}
		switch r.Pool {
		case "POOLS_123":
			pooled = r.ProteinsTotal
		case "POOL_1", "POOL_2", "POOL_3":
			if r.ProteinsTotal > members {
				members = r.ProteinsTotal
			}
		}
	}
	assert.GreaterOrEqual(t, pooled, members)
}

func TestPrepareServiceMissingInput(t *testing.T) {
	cfg := testConfig(t)
	cfg.Paths.InputDir = filepath.Join(t.TempDir(), "nope")
	_, err := NewPrepareService(cfg, nil, nil, quietLogger()).Run(context.Background())
	assert.Equal(t, errors.CodeMissingInput, errors.GetCode(err))
}

func TestAnalysisService(t *testing.T) {
	cfg := testConfig(t)
	ctx := context.Background()
	_, err := NewPrepareService(cfg, nil, nil, quietLogger()).Run(ctx)
	require.NoError(t, err)

	store, err := sqlite.Open(filepath.Join(t.TempDir(), "registry.db"))
	require.NoError(t, err)
	defer store.Close()

	runID := core.NewRunID()
	l := outdir.New(cfg.Paths.OutputDir)
	deps := AnalysisDeps{
		Omnibus:  kruskal.NewTester(),
		Posthoc:  dunn.NewEngine(),
		Renderer: render.NewPNGRenderer(render.DefaultConfig(), quietLogger()),
		Exporter: export.NewTableExporter(l.Statistics(), runID.String()),
		Store:    store,
	}
	res, err := NewAnalysisService(cfg, deps, nil, quietLogger()).Run(ctx, runID)
	require.NoError(t, err)

	// two kinds per metric, a plain and a labeled pie per technique
	assert.Len(t, res.Specs, len(counts.Metrics)*2+4*2)
	assert.Zero(t, res.RenderFailures)
	for _, s := range res.Specs {
		assert.NotEmpty(t, s.State)
	}

	_, err = os.Stat(l.Figure(chart.KindBoxplot, "n_proteins_total_by_technique"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(l.Pies(true), "SEC.png"))
	assert.NoError(t, err)
	_, err = os.Stat(res.ReportPath)
	assert.NoError(t, err)
	_, err = os.Stat(cfg.Paths.MetricsFile)
	assert.NoError(t, err)

	runs, err := store.ListRuns(ctx)
	require.NoError(t, err)
	assert.Equal(t, []core.RunID{runID}, runs)
	saved, err := store.LoadRegistry(ctx, runID)
	require.NoError(t, err)
	assert.Equal(t, res.Registry.Names(), saved.Names())
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New(errors.CodeInternalError, "terminal gone")
}

func TestPrepareServiceLogsProgressErrors(t *testing.T) {
	cfg := testConfig(t)
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	_, err := NewPrepareService(cfg, nil, failingWriter{}, internal.NewLogger(internal.LogLevelDebug)).Run(context.Background())
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "progress: terminal gone")
}

type failingRenderer struct{}

func (failingRenderer) Render(context.Context, *chart.ChartSpec, string) error {
	return errors.New(errors.CodeRenderFailed, "no canvas")
}

func TestAnalysisServiceKeepsSpecsWhenRenderingFails(t *testing.T) {
	cfg := testConfig(t)
	cfg.Analysis.Charts = config.ChartsBoxplot
	cfg.Paths.MetricsFile = ""
	ctx := context.Background()
	_, err := NewPrepareService(cfg, nil, nil, quietLogger()).Run(ctx)
	require.NoError(t, err)

	runID := core.NewRunID()
	deps := AnalysisDeps{
		Omnibus:  kruskal.NewTester(),
		Posthoc:  dunn.NewEngine(),
		Renderer: failingRenderer{},
		Exporter: export.NewTableExporter(t.TempDir(), runID.String()),
	}
	res, err := NewAnalysisService(cfg, deps, nil, quietLogger()).Run(ctx, runID)
	require.NoError(t, err)
	assert.Len(t, res.Specs, len(counts.Metrics)+4*2)
	assert.Equal(t, len(res.Specs), res.RenderFailures)

	page, err := os.ReadFile(res.ReportPath)
	require.NoError(t, err)
	assert.Contains(t, string(page), "figure could not be rendered")
}
