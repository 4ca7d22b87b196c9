package outdir

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"glycostat/domain/chart"
	"glycostat/internal/counts"
)

func TestCreate(t *testing.T) {
	root := filepath.Join(t.TempDir(), "output")
	l := New(root)
	require.NoError(t, l.Create())

	for _, rel := range []string{
		"1_filtered_dfs/vesiclepedia",
		"1_filtered_dfs/vesiclepedia_glycosylated",
		"2_value_counts/total/peptides",
		"2_value_counts/vesiclepedia_glycosylated/proteins",
		"3_figures/boxplots",
		"3_figures/barplots",
		"3_figures/sector_diagrams/no_text",
		"3_figures/sector_diagrams/textbox",
		"4_statistics",
	} {
		info, err := os.Stat(filepath.Join(root, rel))
		require.NoError(t, err, rel)
		assert.True(t, info.IsDir(), rel)
	}
	_, err := os.Stat(filepath.Join(root, "1_filtered_dfs", "total"))
	assert.True(t, os.IsNotExist(err))

	// idempotent
	assert.NoError(t, l.Create())
}

func TestPaths(t *testing.T) {
	l := New("out")
	assert.Equal(t, filepath.Join("out", "1_filtered_dfs", "vesiclepedia"), l.Filtered(counts.LevelVesiclepedia))
	assert.Equal(t, filepath.Join("out", "2_value_counts", "total", "proteins"), l.Proteins(counts.LevelTotal))
	assert.Equal(t, filepath.Join("out", "3_figures", "sector_diagrams", "textbox"), l.Pies(true))
}

func TestFiles(t *testing.T) {
	l := New("out")
	assert.Equal(t, filepath.Join("out", "1_filtered_dfs", "vesiclepedia", "SEC_POOL_1_filtered_vcp.csv"),
		l.FilteredFile(counts.LevelVesiclepedia, "SEC_POOL_1"))
	assert.Equal(t, filepath.Join("out", "1_filtered_dfs", "vesiclepedia_glycosylated", "UC_NO_POOL_filtered_glyc.csv"),
		l.FilteredFile(counts.LevelGlycosylated, "UC_NO_POOL"))
	assert.Equal(t, filepath.Join("out", "2_value_counts", "total", "peptides", "UC_NO_POOL_PTM cluster.csv"),
		l.ValueCountFile(counts.LevelTotal, "UC_NO_POOL", counts.ColCluster))
	assert.Equal(t, filepath.Join("out", "2_value_counts", "vesiclepedia", "proteins", "SEC_POOLS_123_PTM_types_by_protein.csv"),
		l.PTMTypesFile(counts.LevelVesiclepedia, "SEC_POOLS_123"))
	assert.Equal(t, filepath.Join("out", "1_filtered_dfs", "vesiclepedia", "summary_123nopool.csv"),
		l.SummaryFile(counts.LevelVesiclepedia, counts.Subset123NoPool))
	assert.Equal(t, filepath.Join("out", "3_figures", "barplots", "n_ptm_total_by_technique.png"),
		l.Figure(chart.KindBarplot, "n_ptm_total_by_technique"))
	assert.Equal(t, filepath.Join("out", "3_figures", "boxplots", "x.png"), l.Figure(chart.KindBoxplot, "x"))
}
