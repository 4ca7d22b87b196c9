package composer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"glycostat/domain/chart"
	"glycostat/internal/errors"
)

var ptmOrder = []string{"Fucosylated", "Sialylated", "Fucosialylated", "Oligomannose", "Other"}

func TestPieOmitsAbsentCategories(t *testing.T) {
	spec, err := NewPie(nil, nil).Compose("ExoGAG", map[string]int{"Fucosylated": 3, "Sialylated": 1}, ptmOrder, false)
	require.NoError(t, err)

	require.Len(t, spec.Slices, 2)
	assert.Equal(t, chart.KindPie, spec.Kind)
	assert.Nil(t, spec.Axis)
	assert.Equal(t, "Fucosylated", spec.Slices[0].Category)
	assert.InDelta(t, 75.0, spec.Slices[0].Percentage, 1e-9)
	assert.InDelta(t, 25.0, spec.Slices[1].Percentage, 1e-9)
	assert.InDelta(t, 270.0, spec.Slices[0].EndAngle, 1e-9)
	assert.Equal(t, 360.0, spec.Slices[1].EndAngle)
	assert.Empty(t, spec.Slices[0].Label)
}

func TestPieZeroCountsAndUnknownCategories(t *testing.T) {
	counts := map[string]int{"Oligomannose": 0, "Zeta": 2, "Alpha": 2, "Sialylated": 4}
	spec, err := NewPie(nil, nil).Compose("SEC", counts, ptmOrder, false)
	require.NoError(t, err)

	var cats []string
	for _, s := range spec.Slices {
		cats = append(cats, s.Category)
	}
	assert.Equal(t, []string{"Sialylated", "Alpha", "Zeta"}, cats)
}

func TestPiePairSharesGeometry(t *testing.T) {
	counts := map[string]int{"Fucosylated": 3, "Sialylated": 1, "Other": 1}
	plain, labeled, err := NewPie(nil, nil).ComposePair("UC", counts, ptmOrder)
	require.NoError(t, err)

	assert.False(t, plain.ShowLabels)
	assert.True(t, labeled.ShowLabels)
	require.Len(t, labeled.Slices, len(plain.Slices))
	for i := range plain.Slices {
		assert.Equal(t, plain.Slices[i].StartAngle, labeled.Slices[i].StartAngle)
		assert.Equal(t, plain.Slices[i].EndAngle, labeled.Slices[i].EndAngle)
	}
	assert.Equal(t, "60.0% (n=3)", labeled.Slices[0].Label)
	assert.Equal(t, "20.0% (n=1)", labeled.Slices[1].Label)
}

func TestPieLabelsDeclutter(t *testing.T) {
	// many thin slices crowd their labels onto the same arc
	counts := map[string]int{"a": 1, "b": 1, "c": 1, "d": 1, "e": 100}
	spec, err := NewPie(nil, nil).Compose("crowded", counts, nil, true)
	require.NoError(t, err)

	boxes := make([]box, len(spec.Slices))
	for i, s := range spec.Slices {
		boxes[i] = box{x: s.LabelX, y: s.LabelY, w: labelCharWidth * float64(len(s.Label)), h: labelHeight}
	}
	for i := range boxes {
		for j := i + 1; j < len(boxes); j++ {
			dx, dy := boxes[i].overlap(boxes[j])
			assert.False(t, dx > 1e-9 && dy > 1e-9, "labels %d and %d overlap", i, j)
		}
	}
}

func TestPieRejectsEmptyOrNegative(t *testing.T) {
	_, err := NewPie(nil, nil).Compose("none", map[string]int{"Other": 0}, ptmOrder, false)
	assert.ErrorIs(t, err, errors.ErrEmptyDataset)

	_, err = NewPie(nil, nil).Compose("bad", map[string]int{"Other": -1}, ptmOrder, false)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}
