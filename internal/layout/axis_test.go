package layout

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"glycostat/domain/chart"
)

func TestScaleDataMax45(t *testing.T) {
	axis := NewScaler(false).Scale(45)

	assert.Equal(t, 0.0, axis.Min)
	assert.Equal(t, 70.0, axis.Max)
	assert.Equal(t, 5.0, axis.Step)
	require.Len(t, axis.Ticks, 15)
	assert.Equal(t, 0.0, axis.Ticks[0])
	assert.Equal(t, 70.0, axis.Ticks[14])
}

func TestScaleBands(t *testing.T) {
	tests := []struct {
		dataMax float64
		max     float64
		step    float64
	}{
		{0, 10, 5},
		{4, 10, 5},
		{20, 30, 5},
		{69, 150, 10},  // 103.5 rounds to 110 then 150
		{70, 150, 10},  // floored at the <70 band edge, 105
		{99, 150, 10},  // 138.6
		{100, 150, 10}, // floored at 140
		{400, 600, 50},
		{1000, 1500, 100},
		{1800, 2500, 500},
		{6000, 6500, 1000},
	}
	s := NewScaler(false)
	for _, tt := range tests {
		axis := s.Scale(tt.dataMax)
		assert.Equal(t, tt.max, axis.Max, "dataMax=%v", tt.dataMax)
		assert.Equal(t, tt.step, axis.Step, "dataMax=%v", tt.dataMax)
	}
}

func TestScaleFineTicks(t *testing.T) {
	axis := NewScaler(true).Scale(8)
	assert.Equal(t, 2.0, axis.Step)
	assert.Equal(t, 20.0, axis.Max)
	assert.Len(t, axis.Ticks, 11)
}

// max never decreases as dataMax grows and always covers dataMax
func TestScaleMonotone(t *testing.T) {
	s := NewScaler(false)
	prev := s.Scale(0)
	for x := 0.5; x <= 12000; x += 0.5 {
		cur := s.Scale(x)
		require.GreaterOrEqual(t, cur.Max, prev.Max, "dataMax=%v", x)
		require.GreaterOrEqual(t, cur.Max, x, "dataMax=%v", x)
		prev = cur
	}

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 2000; i++ {
		a, b := rng.Float64()*5000, rng.Float64()*5000
		if a > b {
			a, b = b, a
		}
		assert.LessOrEqual(t, s.Scale(a).Max, s.Scale(b).Max)
	}
}

func TestTickCoverage(t *testing.T) {
	for _, fine := range []bool{false, true} {
		s := NewScaler(fine)
		for x := 0.0; x <= 8000; x += 7.3 {
			assertTicks(t, s.Scale(x))
		}
	}
}

func assertTicks(t *testing.T, axis chart.AxisSpec) {
	t.Helper()
	require.NotEmpty(t, axis.Ticks)
	require.Greater(t, axis.Step, 0.0)
	assert.Equal(t, 0.0, axis.Ticks[0])
	assert.LessOrEqual(t, axis.Ticks[len(axis.Ticks)-1], axis.Max)
	for i := 1; i < len(axis.Ticks); i++ {
		assert.InDelta(t, axis.Step, axis.Ticks[i]-axis.Ticks[i-1], 1e-9)
	}
}

func TestTicksDoNotOvershoot(t *testing.T) {
	assert.Equal(t, []float64{0, 50, 100}, Ticks(120, 50))
	assert.Equal(t, []float64{0}, Ticks(0, 5))
	assert.Equal(t, []float64{0}, Ticks(10, 0))
}

func TestRoundNiceIsCumulative(t *testing.T) {
	assert.Equal(t, 70.0, RoundNice(67.5))
	assert.Equal(t, 100.0, RoundNice(100))
	assert.Equal(t, 150.0, RoundNice(101))
	assert.Equal(t, 600.0, RoundNice(510))
	assert.Equal(t, 1500.0, RoundNice(1001))
	assert.Equal(t, 10.0, RoundNice(0))
}

func TestExpandTo(t *testing.T) {
	s := NewScaler(false)
	axis := s.Scale(45)

	assert.Equal(t, axis, s.ExpandTo(axis, 60))

	grown := s.ExpandTo(axis, 93)
	assert.Equal(t, 100.0, grown.Max)
	assert.Equal(t, 10.0, grown.Step)
	assertTicks(t, grown)
}
