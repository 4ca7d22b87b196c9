package counts

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"

	"glycostat/adapters/excel"
	"glycostat/domain/stats"
	"glycostat/internal/errors"
	"glycostat/internal/sample"
)

// SummaryRow holds the distinct counts of one sample before and after a filter
type SummaryRow struct {
	Sample           string
	Technique        string
	Pool             string
	ProteinsTotal    int
	PTMTotal         int
	PeptidesTotal    int
	ProteinsFiltered int
	PTMFiltered      int
	PeptidesFiltered int
	ProteinRatio     float64 // % of proteins kept
	PeptideRatio     float64 // % of peptides kept
}

// SummaryHeaders is the column layout of written summary tables
var SummaryHeaders = []string{
	"Sample", "Technique", "Pool",
	"n Proteins Total", "n PTM Total", "n Peptides Total",
	"n Proteins Filtered", "n PTM Filtered", "n Peptides Filtered",
	"% Proteins with PTM / Total", "% Peptides with PTM / Total",
}

// Summarize compares a sample's records before and after a filter
func Summarize(s sample.Sample, before, after []Record) SummaryRow {
	row := SummaryRow{
		Sample:           s.Name,
		Technique:        s.Technique,
		Pool:             s.Pool,
		ProteinsTotal:    distinct(before, ColProtName),
		PTMTotal:         distinct(before, ColPTM),
		PeptidesTotal:    distinct(before, ColPeptideSequence),
		ProteinsFiltered: distinct(after, ColProtName),
		PTMFiltered:      distinct(after, ColPTM),
		PeptidesFiltered: distinct(after, ColPeptideSequence),
	}
	row.ProteinRatio = percent(row.ProteinsFiltered, row.ProteinsTotal)
	row.PeptideRatio = percent(row.PeptidesFiltered, row.PeptidesTotal)
	return row
}

func percent(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return 100 * float64(part) / float64(whole)
}

// Subset names a slice of a summary table by pool
type Subset string

const (
	SubsetAll        Subset = "all"
	SubsetPools123   Subset = "pools_123"
	Subset123NoPool  Subset = "123nopool"
	SubsetIndividual Subset = "individual_pools"
)

// Subsets in the order they are written
var Subsets = []Subset{SubsetAll, SubsetPools123, Subset123NoPool, SubsetIndividual}

// FileName is the summary file a subset is written to
func (s Subset) FileName() string {
	return "summary_" + string(s) + ".csv"
}

func (s Subset) keeps(pool string) bool {
	switch s {
	case SubsetPools123:
		return pool == sample.Pooled
	case Subset123NoPool:
		return pool == sample.Pooled || pool == sample.NoPool
	case SubsetIndividual:
		return pool != sample.Pooled && pool != sample.NoPool
	default:
		return true
	}
}

// SummaryTable is the summary of every sample at one level
type SummaryTable struct {
	Level Level
	Rows  []SummaryRow
}

// NewSummaryTable sorts rows by technique then pool
func NewSummaryTable(level Level, rows []SummaryRow) *SummaryTable {
	sorted := append([]SummaryRow(nil), rows...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Technique != sorted[j].Technique {
			return sorted[i].Technique < sorted[j].Technique
		}
		return sorted[i].Pool < sorted[j].Pool
	})
	return &SummaryTable{Level: level, Rows: sorted}
}

// Subset returns the rows a subset keeps
func (t *SummaryTable) Subset(s Subset) *SummaryTable {
	out := &SummaryTable{Level: t.Level}
	for _, r := range t.Rows {
		if s.keeps(r.Pool) {
			out.Rows = append(out.Rows, r)
		}
	}
	return out
}

// Records renders the rows in SummaryHeaders order
func (t *SummaryTable) Records() [][]string {
	out := make([][]string, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = []string{
			r.Sample, r.Technique, r.Pool,
			strconv.Itoa(r.ProteinsTotal), strconv.Itoa(r.PTMTotal), strconv.Itoa(r.PeptidesTotal),
			strconv.Itoa(r.ProteinsFiltered), strconv.Itoa(r.PTMFiltered), strconv.Itoa(r.PeptidesFiltered),
			strconv.FormatFloat(r.ProteinRatio, 'f', -1, 64), strconv.FormatFloat(r.PeptideRatio, 'f', -1, 64),
		}
	}
	return out
}

// Write writes every subset of the table into dir
func (t *SummaryTable) Write(dir string) error {
	for _, s := range Subsets {
		path := filepath.Join(dir, s.FileName())
		if err := excel.WriteCSV(path, SummaryHeaders, t.Subset(s).Records()); err != nil {
			return errors.Wrapf(err, "writing %s summary", s)
		}
	}
	return nil
}

// LoadSummaryTable reads a summary file written by Write
func LoadSummaryTable(level Level, path string) (*SummaryTable, error) {
	table, err := excel.NewDataReader(path).ReadData()
	if err != nil {
		return nil, err
	}
	if err := excel.RequireColumns(table, path, SummaryHeaders...); err != nil {
		return nil, err
	}

	rows := make([]SummaryRow, 0, len(table.Rows))
	for i, raw := range table.Rows {
		p := rowParser{raw: raw}
		r := SummaryRow{
			Sample:           raw["Sample"],
			Technique:        raw["Technique"],
			Pool:             raw["Pool"],
			ProteinsTotal:    p.atoi("n Proteins Total"),
			PTMTotal:         p.atoi("n PTM Total"),
			PeptidesTotal:    p.atoi("n Peptides Total"),
			ProteinsFiltered: p.atoi("n Proteins Filtered"),
			PTMFiltered:      p.atoi("n PTM Filtered"),
			PeptidesFiltered: p.atoi("n Peptides Filtered"),
			ProteinRatio:     p.atof("% Proteins with PTM / Total"),
			PeptideRatio:     p.atof("% Peptides with PTM / Total"),
		}
		if p.err != nil {
			return nil, errors.Wrapf(errors.WithCode(errors.CodeSchemaMismatch, p.err), "%s row %d", path, i+2)
		}
		rows = append(rows, r)
	}
	return NewSummaryTable(level, rows), nil
}

type rowParser struct {
	raw excel.RawRowData
	err error
}

func (p *rowParser) atoi(col string) int {
	if p.err != nil {
		return 0
	}
	v, err := strconv.Atoi(p.raw[col])
	if err != nil {
		p.err = fmt.Errorf("column %q: %w", col, err)
	}
	return v
}

func (p *rowParser) atof(col string) float64 {
	if p.err != nil {
		return 0
	}
	v, err := strconv.ParseFloat(p.raw[col], 64)
	if err != nil {
		p.err = fmt.Errorf("column %q: %w", col, err)
	}
	return v
}

// Metric selects one numeric column of a summary row
type Metric struct {
	Name  string
	Value func(SummaryRow) float64
}

// Metrics compared across groups, in chart order
var Metrics = []Metric{
	{"n_proteins_total", func(r SummaryRow) float64 { return float64(r.ProteinsTotal) }},
	{"n_ptm_total", func(r SummaryRow) float64 { return float64(r.PTMTotal) }},
	{"n_peptides_total", func(r SummaryRow) float64 { return float64(r.PeptidesTotal) }},
	{"n_proteins_filtered", func(r SummaryRow) float64 { return float64(r.ProteinsFiltered) }},
	{"n_ptm_filtered", func(r SummaryRow) float64 { return float64(r.PTMFiltered) }},
	{"n_peptides_filtered", func(r SummaryRow) float64 { return float64(r.PeptidesFiltered) }},
	{"pct_proteins_filtered", func(r SummaryRow) float64 { return r.ProteinRatio }},
	{"pct_peptides_filtered", func(r SummaryRow) float64 { return r.PeptideRatio }},
}

// MetricByName looks up a metric selector
func MetricByName(name string) (Metric, bool) {
	for _, m := range Metrics {
		if m.Name == name {
			return m, true
		}
	}
	return Metric{}, false
}

// Grouping selects the label a row is grouped under
type Grouping string

const (
	ByTechnique Grouping = "technique"
	ByPool      Grouping = "pool"
)

// ParseGrouping validates a grouping mode
func ParseGrouping(s string) (Grouping, error) {
	switch Grouping(s) {
	case ByTechnique, ByPool:
		return Grouping(s), nil
	}
	return "", errors.Newf(errors.CodeInvalidInput, "unknown grouping %q (want technique or pool)", s)
}

func (g Grouping) label(r SummaryRow) string {
	if g == ByPool {
		return r.Pool
	}
	return r.Technique
}

// Grouped builds the dataset comparing a metric across groups in the given display order
func (t *SummaryTable) Grouped(m Metric, g Grouping, order []string) (*stats.GroupedDataset, error) {
	obs := make([]stats.Observation, 0, len(t.Rows))
	for _, r := range t.Rows {
		obs = append(obs, stats.Observation{Group: g.label(r), Value: m.Value(r)})
	}
	ds, err := stats.NewGroupedDataset(m.Name, string(g), order, obs)
	if err != nil {
		return nil, errors.Wrapf(err, "%s level", t.Level)
	}
	return ds, nil
}
