// Package outdir lays out the pipeline's output tree.
package outdir

import (
	"os"
	"path/filepath"

	"glycostat/domain/chart"
	"glycostat/internal/counts"
	"glycostat/internal/errors"
)

// Layout resolves every output location under one root
type Layout struct {
	Root string
}

// New returns the layout rooted at root
func New(root string) Layout {
	return Layout{Root: root}
}

// Filtered holds the filtered sample tables of a level and the summaries of the
// filter that produced it. The total level has none.
func (l Layout) Filtered(level counts.Level) string {
	return filepath.Join(l.Root, "1_filtered_dfs", string(level))
}

// Peptides holds per-column value counts of a level
func (l Layout) Peptides(level counts.Level) string {
	return filepath.Join(l.Root, "2_value_counts", string(level), "peptides")
}

// Proteins holds PTM types by protein of a level
func (l Layout) Proteins(level counts.Level) string {
	return filepath.Join(l.Root, "2_value_counts", string(level), "proteins")
}

// Boxplots holds boxplot images
func (l Layout) Boxplots() string { return filepath.Join(l.Root, "3_figures", "boxplots") }

// Barplots holds barplot images
func (l Layout) Barplots() string { return filepath.Join(l.Root, "3_figures", "barplots") }

// Pies holds sector diagrams, with or without labels
func (l Layout) Pies(labeled bool) string {
	if labeled {
		return filepath.Join(l.Root, "3_figures", "sector_diagrams", "textbox")
	}
	return filepath.Join(l.Root, "3_figures", "sector_diagrams", "no_text")
}

// Statistics holds exported test results and the report
func (l Layout) Statistics() string { return filepath.Join(l.Root, "4_statistics") }

// filtered file suffix per level
var filteredSuffix = map[counts.Level]string{
	counts.LevelVesiclepedia: "filtered_vcp",
	counts.LevelGlycosylated: "filtered_glyc",
}

// FilteredFile is the filtered table of one sample
func (l Layout) FilteredFile(level counts.Level, sampleName string) string {
	return filepath.Join(l.Filtered(level), sampleName+"_"+filteredSuffix[level]+".csv")
}

// ValueCountFile is the value count table of one column of a sample
func (l Layout) ValueCountFile(level counts.Level, sampleName, column string) string {
	return filepath.Join(l.Peptides(level), sampleName+"_"+column+".csv")
}

// PTMTypesFile is the PTM types by protein table of a sample
func (l Layout) PTMTypesFile(level counts.Level, sampleName string) string {
	return filepath.Join(l.Proteins(level), sampleName+"_PTM_types_by_protein.csv")
}

// SummaryFile is the summary of a filter level for one subset
func (l Layout) SummaryFile(level counts.Level, subset counts.Subset) string {
	return filepath.Join(l.Filtered(level), subset.FileName())
}

// Figure is the image path of a chart
func (l Layout) Figure(kind chart.Kind, name string) string {
	switch kind {
	case chart.KindBarplot:
		return filepath.Join(l.Barplots(), name+".png")
	case chart.KindPie:
		return filepath.Join(l.Pies(false), name+".png")
	default:
		return filepath.Join(l.Boxplots(), name+".png")
	}
}

// Dirs lists every directory of the layout
func (l Layout) Dirs() []string {
	dirs := []string{}
	for _, lv := range counts.Levels {
		if lv != counts.LevelTotal {
			dirs = append(dirs, l.Filtered(lv))
		}
		dirs = append(dirs, l.Peptides(lv), l.Proteins(lv))
	}
	return append(dirs, l.Boxplots(), l.Barplots(), l.Pies(false), l.Pies(true), l.Statistics())
}

// Create makes every directory of the layout
func (l Layout) Create() error {
	for _, d := range l.Dirs() {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return errors.Wrapf(err, "creating %s", d)
		}
	}
	return nil
}
