package stats

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"glycostat/internal/errors"
)

func TestNewGroupedDataset(t *testing.T) {
	order := []string{"ExoGAG", "SEC", "IP_CD9", "UC"}

	t.Run("keeps display order and drops empty groups", func(t *testing.T) {
		ds, err := NewGroupedDataset("n_proteins", "technique", order, []Observation{
			{"UC", 3}, {"ExoGAG", 1}, {"UC", 4}, {"SEC", 2},
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"ExoGAG", "SEC", "UC"}, ds.Groups())
		assert.Equal(t, []float64{3, 4}, ds.Values("UC"))
		assert.Equal(t, 4, ds.Len())
		assert.Equal(t, 4.0, ds.Max())
		assert.Equal(t, 2, ds.Index("UC"))
		assert.Equal(t, -1, ds.Index("IP_CD9"))
	})

	t.Run("accessors return copies", func(t *testing.T) {
		ds, err := NewGroupedDataset("m", "g", order, []Observation{{"SEC", 1}})
		require.NoError(t, err)
		v := ds.Values("SEC")
		v[0] = 99
		g := ds.Groups()
		g[0] = "X"
		assert.Equal(t, []float64{1}, ds.Values("SEC"))
		assert.Equal(t, []string{"SEC"}, ds.Groups())
	})

	t.Run("unknown label", func(t *testing.T) {
		_, err := NewGroupedDataset("m", "g", order, []Observation{{"Ultra", 1}})
		require.Error(t, err)
		assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
	})

	t.Run("negative or non-finite measurement", func(t *testing.T) {
		for _, v := range []float64{-1, math.NaN(), math.Inf(1)} {
			_, err := NewGroupedDataset("m", "g", order, []Observation{{"SEC", v}})
			assert.Error(t, err)
		}
	})

	t.Run("duplicate order entry", func(t *testing.T) {
		_, err := NewGroupedDataset("m", "g", []string{"A", "A"}, nil)
		assert.Error(t, err)
	})

	t.Run("no observations is fatal", func(t *testing.T) {
		_, err := NewGroupedDataset("m", "g", order, nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, errors.ErrEmptyDataset)
	})
}

func TestCodeFor(t *testing.T) {
	tests := []struct {
		p    float64
		want SignificanceCode
	}{
		{0.00001, Code0001},
		{0.0001, Code0001},
		{0.0005, Code001},
		{0.001, Code001},
		{0.005, Code01},
		{0.01, Code01},
		{0.03, Code05},
		{0.05, Code05},
		{0.0500001, CodeNS},
		{1, CodeNS},
		{math.NaN(), CodeNS},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CodeFor(tt.p), "p=%v", tt.p)
	}
}

func TestSortCanonical(t *testing.T) {
	order := []string{"C", "A", "B"}
	comps := []PairwiseComparison{
		{GroupA: "A", GroupB: "B"},
		{GroupA: "C", GroupB: "B"},
		{GroupA: "C", GroupB: "A"},
	}
	SortCanonical(comps, order)
	labels := []string{comps[0].Label(), comps[1].Label(), comps[2].Label()}
	assert.Equal(t, []string{"C vs A", "C vs B", "A vs B"}, labels)
}

func TestPairwiseComparisonJSONWritesNaNAsNull(t *testing.T) {
	c := PairwiseComparison{GroupA: "A", GroupB: "B", Z: math.NaN(), RawP: math.NaN(), AdjustedP: math.NaN(), Code: CodeNS}
	assert.False(t, c.Computed())
	assert.False(t, c.Significant())

	b, err := json.Marshal(c)
	require.NoError(t, err)
	assert.JSONEq(t, `{"group_a":"A","group_b":"B","z":null,"raw_p":null,"adjusted_p":null,"significance_code":"ns"}`, string(b))
}

func TestRegistryIsWriteOnce(t *testing.T) {
	reg := Registry{}
	name := RegistryName("n_proteins", "technique")
	assert.Equal(t, "dunn_n_proteins_by_technique", name)

	require.NoError(t, reg.Put(name, []PairwiseComparison{{GroupA: "A", GroupB: "B"}}))
	assert.Error(t, reg.Put(name, nil))
	assert.Len(t, reg[name], 1)
	assert.Equal(t, []string{name}, reg.Names())
}
