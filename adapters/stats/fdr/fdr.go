package fdr

import (
	"fmt"
	"math"
	"sort"
)

// BenjaminiHochberg returns step-up adjusted p-values in the input order.
// NaN entries are excluded from the family and stay NaN. Any other value
// outside [0, 1] is an error.
func BenjaminiHochberg(pvalues []float64) ([]float64, error) {
	adjusted := make([]float64, len(pvalues))

	type entry struct {
		p     float64
		index int
	}
	family := make([]entry, 0, len(pvalues))
	for i, p := range pvalues {
		if math.IsNaN(p) {
			adjusted[i] = math.NaN()
			continue
		}
		if p < 0 || p > 1 || math.IsInf(p, 0) {
			return nil, fmt.Errorf("p-value %v at position %d is outside [0, 1]", p, i)
		}
		family = append(family, entry{p: p, index: i})
	}

	m := len(family)
	if m == 0 {
		return adjusted, nil
	}

	sort.SliceStable(family, func(i, j int) bool {
		return family[i].p < family[j].p
	})

	// q_(i) = min over j >= i of p_(j) * m / j
	running := 1.0
	for k := m - 1; k >= 0; k-- {
		rank := k + 1
		// p*m/m can round one ulp below p, so never adjust below the raw value
		q := math.Max(family[k].p, family[k].p*(float64(m)/float64(rank)))
		if q < running {
			running = q
		}
		adjusted[family[k].index] = running
	}

	return adjusted, nil
}
