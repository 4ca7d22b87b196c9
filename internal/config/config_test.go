package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"glycostat/internal/errors"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "technique", cfg.Analysis.Grouping)
	assert.True(t, cfg.Barplots())
	assert.Equal(t, []string{"ExoGAG", "SEC", "IP_CD9", "UC"}, cfg.Samples.Techniques)
	assert.Equal(t, 900, cfg.Chart.Width)
}

func TestLoadEnvironment(t *testing.T) {
	t.Setenv("GLYCOSTAT_GROUPING", "pool")
	t.Setenv("GLYCOSTAT_CHARTS", "boxplot")
	t.Setenv("GLYCOSTAT_TECHNIQUES", "SEC, UC,")
	t.Setenv("GLYCOSTAT_HORIZONTAL", "true")
	t.Setenv("GLYCOSTAT_CHART_WIDTH", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "pool", cfg.Analysis.Grouping)
	assert.False(t, cfg.Barplots())
	assert.Equal(t, []string{"SEC", "UC"}, cfg.Samples.Techniques)
	assert.True(t, cfg.Chart.Horizontal)
	assert.Equal(t, 900, cfg.Chart.Width)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"level", "GLYCOSTAT_LEVEL", "total"},
		{"grouping", "GLYCOSTAT_GROUPING", "sample"},
		{"charts", "GLYCOSTAT_CHARTS", "pie"},
		{"workers", "GLYCOSTAT_WORKERS", "0"},
		{"height", "GLYCOSTAT_CHART_HEIGHT", "-1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			_, err := Load()
			require.Error(t, err)
			assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
		})
	}
}

func TestSaveAndLoadFile(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")
	path := filepath.Join(t.TempDir(), "conf", "glycostat.yaml")
	cfg := Default()
	cfg.Paths.InputDir = "psm"
	cfg.Paths.RegistryDB = "registry.db"
	cfg.Samples.Pools = []string{"POOL_1", "NO_POOL"}
	cfg.Chart.FineTicks = true
	require.NoError(t, cfg.SaveFile(path))

	loaded, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoadFileEnvironmentWins(t *testing.T) {
	path := filepath.Join(t.TempDir(), "glycostat.yaml")
	require.NoError(t, os.WriteFile(path, []byte("analysis:\n  grouping: pool\n"), 0o644))
	t.Setenv("GLYCOSTAT_GROUPING", "technique")

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "technique", cfg.Analysis.Grouping)
	assert.Equal(t, ChartsBoxplotBarplot, cfg.Analysis.Charts)
}

func TestLoadFileErrors(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Equal(t, errors.CodeMissingInput, errors.GetCode(err))

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("chart: [1, 2"), 0o644))
	_, err = LoadFile(path)
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
}

func TestSaveFileValidates(t *testing.T) {
	cfg := Default()
	cfg.Analysis.Grouping = ""
	err := cfg.SaveFile(filepath.Join(t.TempDir(), "x.yaml"))
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
}
