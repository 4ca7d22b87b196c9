package rank

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAverage(t *testing.T) {
	tests := []struct {
		name string
		in   []float64
		want []float64
	}{
		{"empty", nil, []float64{}},
		{"distinct", []float64{30, 10, 20}, []float64{3, 1, 2}},
		{"ties averaged", []float64{5, 1, 5, 3}, []float64{3.5, 1, 3.5, 2}},
		{"all equal", []float64{7, 7, 7}, []float64{2, 2, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Average(tt.in))
		})
	}
}

func TestTieTerm(t *testing.T) {
	assert.Equal(t, 0.0, TieTerm([]float64{1, 2, 3}))
	// one pair (6) and one triple (24)
	assert.Equal(t, 30.0, TieTerm([]float64{1, 1, 2, 3, 3, 3}))
	assert.Equal(t, []int{2, 3}, TieSizes([]float64{3, 1, 3, 1, 3}))
}
