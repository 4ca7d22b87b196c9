// Package counts turns PSM tables into per-sample records, filters them through
// the reference catalogs and aggregates the distinct counts the charts compare.
package counts

import (
	"glycostat/adapters/excel"
	"glycostat/internal/catalog"
	"glycostat/internal/ptm"
)

// Column names shared by input exports and written tables
const (
	ColAccession       = "Accession"
	ColProtName        = "Prot Name"
	ColPTM             = "PTM"
	ColPeptide         = "Peptide"
	ColPeptideSequence = "Peptide Sequence"
	ColCluster         = "PTM cluster"
)

// FilteredColumns is the column order of written filtered tables
var FilteredColumns = []string{ColPeptideSequence, ColProtName, ColPTM, ColAccession, ColPeptide, ColCluster}

// CountedColumns are the columns value counts are produced for
var CountedColumns = []string{ColProtName, ColPTM, ColPeptideSequence, ColCluster}

// Level is a filtering stage of the pipeline
type Level string

const (
	LevelTotal        Level = "total"
	LevelVesiclepedia Level = "vesiclepedia"
	LevelGlycosylated Level = "vesiclepedia_glycosylated"
)

// Levels in pipeline order
var Levels = []Level{LevelTotal, LevelVesiclepedia, LevelGlycosylated}

// Record is one peptide-spectrum match attributed to one protein accession
type Record struct {
	Accession       string
	ProtName        string
	PTM             string
	Peptide         string
	PeptideSequence string
	Cluster         ptm.Category
}

func (r Record) field(col string) string {
	switch col {
	case ColAccession:
		return r.Accession
	case ColProtName:
		return r.ProtName
	case ColPTM:
		return r.PTM
	case ColPeptide:
		return r.Peptide
	case ColPeptideSequence:
		return r.PeptideSequence
	case ColCluster:
		return string(r.Cluster)
	}
	return ""
}

// FromTable builds records from a raw PSM export. A row listing several
// accessions yields one record per accession; a row without any keeps a single
// record with an empty protein name so it still counts towards peptides.
func FromTable(t *excel.Table, path string) ([]Record, error) {
	if err := excel.RequireColumns(t, path, ColAccession, ColPeptide, ColPTM); err != nil {
		return nil, err
	}
	out := make([]Record, 0, len(t.Rows))
	for _, row := range t.Rows {
		base := Record{
			Accession:       row[ColAccession],
			PTM:             row[ColPTM],
			Peptide:         row[ColPeptide],
			PeptideSequence: ptm.CleanPeptide(row[ColPeptide]),
			Cluster:         ptm.Classify(row[ColPTM]),
		}
		names := ptm.ExtractAccessions(base.Accession)
		if len(names) == 0 {
			out = append(out, base)
			continue
		}
		for _, n := range names {
			r := base
			r.ProtName = n
			out = append(out, r)
		}
	}
	return out, nil
}

// FilterVesiclepedia keeps records whose protein is in the catalog
func FilterVesiclepedia(recs []Record, vesiclepedia *catalog.Set) []Record {
	return filter(recs, func(r Record) bool { return vesiclepedia.Contains(r.ProtName) })
}

// FilterGlycosylated keeps records whose raw PTM is one of the glycosylations of interest
func FilterGlycosylated(recs []Record, glycosylations *catalog.Set) []Record {
	return filter(recs, func(r Record) bool { return glycosylations.Contains(r.PTM) })
}

func filter(recs []Record, keep func(Record) bool) []Record {
	out := make([]Record, 0, len(recs))
	for _, r := range recs {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

// Merge concatenates record sets in order, as when pools are combined
func Merge(sets ...[]Record) []Record {
	n := 0
	for _, s := range sets {
		n += len(s)
	}
	out := make([]Record, 0, n)
	for _, s := range sets {
		out = append(out, s...)
	}
	return out
}

// Table renders records with FilteredColumns for writing
func Table(recs []Record) *excel.Table {
	t := &excel.Table{Headers: append([]string(nil), FilteredColumns...)}
	t.Rows = make([]excel.RawRowData, len(recs))
	for i, r := range recs {
		row := make(excel.RawRowData, len(FilteredColumns))
		for _, c := range FilteredColumns {
			row[c] = r.field(c)
		}
		t.Rows[i] = row
	}
	return t
}

// distinct counts the distinct non-empty values of a column
func distinct(recs []Record, col string) int {
	seen := make(map[string]struct{})
	for _, r := range recs {
		if v := r.field(col); v != "" {
			seen[v] = struct{}{}
		}
	}
	return len(seen)
}
