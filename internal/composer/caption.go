package composer

import (
	"fmt"
	"math"
	"strings"

	"glycostat/domain/chart"
	"glycostat/domain/stats"
)

// FormatP renders a p-value with four decimals, switching to scientific notation below 1e-4
func FormatP(p float64) string {
	switch {
	case math.IsNaN(p):
		return "NA"
	case p < 0.0001:
		return fmt.Sprintf("%.2e", p)
	default:
		return fmt.Sprintf("%.4f", p)
	}
}

func omnibusLine(r stats.OmnibusResult) string {
	return fmt.Sprintf("Kruskal-Wallis H = %.2f, df = %d, p = %s", r.Statistic, r.DF, FormatP(r.PValue))
}

// annotatedCaption lists every comparison's adjusted p-value in the order given
func annotatedCaption(r stats.OmnibusResult, comps []stats.PairwiseComparison) string {
	var b strings.Builder
	b.WriteString(omnibusLine(r))
	b.WriteString("; Dunn (BH):")
	for i, c := range comps {
		if i > 0 {
			b.WriteString(",")
		}
		fmt.Fprintf(&b, " %s p.adj = %s (%s)", c.Label(), FormatP(c.AdjustedP), c.Code)
	}
	return b.String()
}

func notSignificantCaption(r stats.OmnibusResult) string {
	return fmt.Sprintf("%s (%s)", chart.CaptionNotSignificant, omnibusLine(r))
}
