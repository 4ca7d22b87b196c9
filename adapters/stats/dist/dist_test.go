package dist

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChiSquareUpper(t *testing.T) {
	// critical value of chi2(1) at alpha 0.05
	assert.InDelta(t, 0.05, ChiSquareUpper(3.841459, 1), 1e-5)
	assert.InDelta(t, 1.0, ChiSquareUpper(0, 3), 1e-12)
	assert.Equal(t, 1.0, ChiSquareUpper(5, 0))
}

func TestNormalTwoSided(t *testing.T) {
	assert.InDelta(t, 0.05, NormalTwoSided(1.959964), 1e-5)
	assert.InDelta(t, NormalTwoSided(-2), NormalTwoSided(2), 1e-15)
	assert.Equal(t, 1.0, NormalTwoSided(0))
	assert.True(t, math.IsNaN(NormalTwoSided(math.NaN())))
}
