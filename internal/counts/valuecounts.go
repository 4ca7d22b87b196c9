package counts

import (
	"sort"
	"strconv"

	"glycostat/adapters/excel"
	"glycostat/internal/errors"
	"glycostat/internal/ptm"
)

// ValueCountHeaders is the column layout of written value-count tables
var ValueCountHeaders = []string{"Value", "Count", "Percentage"}

// ValueCount is one row of a frequency table
type ValueCount struct {
	Value      string
	Count      int
	Percentage float64
}

// ValueCounts tallies the non-empty values of a column, most frequent first.
// Ties are broken by value so output is stable.
func ValueCounts(recs []Record, col string) []ValueCount {
	tally := make(map[string]int)
	for _, r := range recs {
		if v := r.field(col); v != "" {
			tally[v]++
		}
	}
	return frequencies(tally)
}

// PTMTypesByProtein counts, for each PTM cluster, the proteins carrying it at least once
func PTMTypesByProtein(recs []Record) []ValueCount {
	pairs := make(map[[2]string]struct{})
	for _, r := range recs {
		if r.ProtName == "" {
			continue
		}
		pairs[[2]string{r.ProtName, string(r.Cluster)}] = struct{}{}
	}
	tally := make(map[string]int)
	for p := range pairs {
		tally[p[1]]++
	}
	return frequencies(tally)
}

func frequencies(tally map[string]int) []ValueCount {
	total := 0
	out := make([]ValueCount, 0, len(tally))
	for v, n := range tally {
		out = append(out, ValueCount{Value: v, Count: n})
		total += n
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Value < out[j].Value
	})
	for i := range out {
		out[i].Percentage = percent(out[i].Count, total)
	}
	return out
}

// ValueCountRecords renders a frequency table for writing
func ValueCountRecords(vcs []ValueCount) [][]string {
	out := make([][]string, len(vcs))
	for i, v := range vcs {
		out[i] = []string{v.Value, strconv.Itoa(v.Count), strconv.FormatFloat(v.Percentage, 'f', -1, 64)}
	}
	return out
}

// LoadValueCounts reads a frequency table written with ValueCountHeaders
func LoadValueCounts(path string) ([]ValueCount, error) {
	table, err := excel.NewDataReader(path).ReadData()
	if err != nil {
		return nil, err
	}
	if err := excel.RequireColumns(table, path, ValueCountHeaders...); err != nil {
		return nil, err
	}
	out := make([]ValueCount, 0, len(table.Rows))
	for i, raw := range table.Rows {
		p := rowParser{raw: raw}
		v := ValueCount{Value: raw["Value"], Count: p.atoi("Count"), Percentage: p.atof("Percentage")}
		if p.err != nil {
			return nil, errors.Wrapf(errors.WithCode(errors.CodeSchemaMismatch, p.err), "%s row %d", path, i+2)
		}
		out = append(out, v)
	}
	return out, nil
}

// PTMShares turns a PTM-types table into pie counts, dropping proteins without a PTM
func PTMShares(vcs []ValueCount) map[string]int {
	shares := make(map[string]int, len(vcs))
	for _, v := range vcs {
		if v.Value == string(ptm.NoPTM) {
			continue
		}
		shares[v.Value] += v.Count
	}
	return shares
}
