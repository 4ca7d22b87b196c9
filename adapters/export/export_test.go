package export

import (
	"context"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"glycostat/adapters/excel"
	"glycostat/domain/chart"
	"glycostat/domain/stats"
	"glycostat/internal/errors"
)

func TestExportWritesWorkbookAndCSV(t *testing.T) {
	dir := t.TempDir()
	spec := &chart.ChartSpec{
		Kind: chart.KindBoxplot, Metric: "n_ptm_filtered", Grouping: "technique", State: chart.StateAnnotated,
		Omnibus: &stats.OmnibusResult{Method: "kruskal-wallis", Statistic: 13.6, DF: 3, PValue: 0.0035, N: 24, Valid: true, Significant: true},
	}
	comps := []stats.PairwiseComparison{
		{GroupA: "ExoGAG", GroupB: "SEC", Z: 0.25, RawP: 0.8, AdjustedP: 1, Code: stats.CodeNS},
		{GroupA: "ExoGAG", GroupB: "UC", Z: math.NaN(), RawP: math.NaN(), AdjustedP: math.NaN(), Code: stats.CodeNS},
	}

	path, err := NewTableExporter(dir, "run-1").Export(context.Background(), "dunn_n_ptm_filtered_by_technique", spec, comps)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "dunn_n_ptm_filtered_by_technique.xlsx"), path)

	csv, err := excel.NewDataReader(filepath.Join(dir, "dunn_n_ptm_filtered_by_technique.csv")).ReadData()
	require.NoError(t, err)
	assert.Equal(t, ComparisonHeaders, csv.Headers)
	require.Len(t, csv.Rows, 2)
	assert.Equal(t, "0.8", csv.Rows[0]["p_raw"])
	assert.Equal(t, "NA", csv.Rows[1]["p_adj"])

	cfg := excel.DefaultReaderConfig()
	cfg.Sheet = "omnibus"
	omni, err := excel.NewDataReaderWithConfig(path, cfg).ReadData()
	require.NoError(t, err)
	assert.Equal(t, "kruskal-wallis", omni.Rows[0]["method"])
	assert.Equal(t, "run-1", omni.Rows[0]["run_id"])
	assert.Equal(t, "annotated", omni.Rows[0]["state"])

	cfg.Sheet = "dunn"
	dunn, err := excel.NewDataReaderWithConfig(path, cfg).ReadData()
	require.NoError(t, err)
	assert.Len(t, dunn.Rows, 2)
	assert.Equal(t, "UC", dunn.Rows[1]["group_b"])
}

func TestExportNeedsOmnibus(t *testing.T) {
	_, err := NewTableExporter(t.TempDir(), "").Export(context.Background(), "x", &chart.ChartSpec{}, nil)
	assert.Equal(t, errors.CodeExportFailed, errors.GetCode(err))
}
