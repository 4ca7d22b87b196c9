// Package export writes omnibus and pairwise test results next to the figures.
package export

import (
	"context"
	"math"
	"path/filepath"
	"strconv"

	"glycostat/adapters/excel"
	"glycostat/domain/chart"
	"glycostat/domain/stats"
	"glycostat/internal/errors"
)

// ComparisonHeaders is the column layout of exported pairwise tables
var ComparisonHeaders = []string{"group_a", "group_b", "z", "p_raw", "p_adj", "significance"}

var omnibusHeaders = []string{"metric", "grouping", "method", "statistic", "df", "p_value", "n", "is_valid", "is_significant", "state", "invalid_reason"}

// TableExporter writes one workbook (omnibus and dunn sheets) and one CSV of the
// pairwise table per exported metric
type TableExporter struct {
	dir   string
	runID string
}

// NewTableExporter writes into dir. runID tags every omnibus row.
func NewTableExporter(dir, runID string) *TableExporter {
	return &TableExporter{dir: dir, runID: runID}
}

// Export writes <name>.xlsx and <name>.csv and returns the workbook path
func (e *TableExporter) Export(ctx context.Context, name string, spec *chart.ChartSpec, comps []stats.PairwiseComparison) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if spec == nil || spec.Omnibus == nil {
		return "", errors.Newf(errors.CodeExportFailed, "%s: spec carries no omnibus result", name)
	}

	records := comparisonRecords(comps)
	csvPath := filepath.Join(e.dir, name+".csv")
	if err := excel.WriteCSV(csvPath, ComparisonHeaders, records); err != nil {
		return "", errors.WithCode(errors.CodeExportFailed, err)
	}

	o := spec.Omnibus
	omnibus := excel.Sheet{
		Name:    "omnibus",
		Headers: append(append([]string(nil), omnibusHeaders...), "run_id"),
		Rows: [][]interface{}{{
			spec.Metric, spec.Grouping, o.Method, cell(o.Statistic), o.DF, cell(o.PValue), o.N,
			o.Valid, o.Significant, string(spec.State), o.InvalidReason, e.runID,
		}},
	}
	dunn := excel.Sheet{Name: "dunn", Headers: ComparisonHeaders}
	for _, c := range comps {
		dunn.Rows = append(dunn.Rows, []interface{}{c.GroupA, c.GroupB, cell(c.Z), cell(c.RawP), cell(c.AdjustedP), string(c.Code)})
	}

	xlsxPath := filepath.Join(e.dir, name+".xlsx")
	if err := excel.WriteXLSX(xlsxPath, []excel.Sheet{omnibus, dunn}); err != nil {
		return "", errors.WithCode(errors.CodeExportFailed, err)
	}
	return xlsxPath, nil
}

func comparisonRecords(comps []stats.PairwiseComparison) [][]string {
	out := make([][]string, len(comps))
	for i, c := range comps {
		out[i] = []string{c.GroupA, c.GroupB, num(c.Z), num(c.RawP), num(c.AdjustedP), string(c.Code)}
	}
	return out
}

// num formats a float for CSV, writing NA for values that were not computed
func num(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "NA"
	}
	return strconv.FormatFloat(v, 'g', 10, 64)
}

// cell keeps spreadsheet cells numeric where possible
func cell(v float64) interface{} {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "NA"
	}
	return v
}
