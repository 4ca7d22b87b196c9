package dist

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// ChiSquareUpper returns P(X ≥ x) for a chi-squared variable with df degrees of freedom.
// Non-positive df gives 1.
func ChiSquareUpper(x float64, df int) float64 {
	if df <= 0 {
		return 1.0
	}
	chiDist := distuv.ChiSquared{K: float64(df)}
	p := 1 - chiDist.CDF(x)
	return clampProb(p)
}

// NormalTwoSided returns the two-sided standard normal p-value of z
func NormalTwoSided(z float64) float64 {
	if math.IsNaN(z) {
		return math.NaN()
	}
	p := 2 * (1 - distuv.UnitNormal.CDF(math.Abs(z)))
	return clampProb(p)
}

func clampProb(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}
