// Package testkit generates seeded synthetic inputs: PSM exports, reference
// catalogs and summary tables shaped like the real ones.
package testkit

import (
	"fmt"
	"math/rand"
	"path/filepath"
	"strings"

	"glycostat/adapters/excel"
	"glycostat/internal/counts"
	"glycostat/internal/sample"
)

// Modifications used in generated PSM rows, one per category plus an empty one
var Modifications = []string{
	"N-Glycan HexNAc(4)Hex(5)dHex(1)",
	"N-Glycan HexNAc(4)Hex(5)NeuAc(2)",
	"N-Glycan HexNAc(4)Hex(5)dHex(1)NeuAc(1)",
	"N-Glycan HexNAc(2)Hex(9)",
	"Oxidation (M)",
	"",
}

var residues = []byte("ACDEFGHIKLMNPQRSTVWY")

// Config configures the generator
type Config struct {
	Techniques []string
	Pools      []string // POOL_n and NO_POOL; POOLS_123 is derived
	Proteins   int
	PSMs       int // rows per sample file
	Seed       int64
}

// DefaultConfig returns a small but complete input set
func DefaultConfig() Config {
	return Config{
		Techniques: append([]string(nil), sample.DefaultTechniques...),
		Pools:      []string{sample.Pool1, sample.Pool2, sample.Pool3, sample.NoPool},
		Proteins:   40,
		PSMs:       60,
		Seed:       42,
	}
}

// Generator produces deterministic synthetic data for a seed
type Generator struct {
	config   Config
	rng      *rand.Rand
	proteins []string
	peptides []string
}

// NewGenerator creates a generator
func NewGenerator(config Config) *Generator {
	g := &Generator{config: config, rng: rand.New(rand.NewSource(config.Seed))}
	for i := 0; i < config.Proteins; i++ {
		g.proteins = append(g.proteins, fmt.Sprintf("P%05d", 10000+i))
	}
	for i := 0; i < config.Proteins*3; i++ {
		g.peptides = append(g.peptides, g.peptide())
	}
	return g
}

// Proteins returns the generated accession universe
func (g *Generator) Proteins() []string {
	return append([]string(nil), g.proteins...)
}

func (g *Generator) peptide() string {
	n := 7 + g.rng.Intn(8)
	b := make([]byte, n)
	for i := range b {
		b[i] = residues[g.rng.Intn(len(residues))]
	}
	return string(b)
}

// FileName is the export name a sample is written under. NO_POOL samples carry no pool marker.
func FileName(technique, pool string) string {
	if pool == sample.NoPool {
		return "DB search psm " + technique + ".csv"
	}
	return "DB search psm " + technique + "_" + pool + ".csv"
}

// WritePSMFiles writes one export per technique and pool into dir and returns their paths
func (g *Generator) WritePSMFiles(dir string) ([]string, error) {
	headers := []string{counts.ColAccession, counts.ColPeptide, counts.ColPTM, "Score"}
	var paths []string
	for ti, tech := range g.config.Techniques {
		for _, pool := range g.config.Pools {
			// later techniques see more of the protein universe
			span := len(g.proteins) * (ti + 2) / (len(g.config.Techniques) + 1)
			if span < 1 {
				span = 1
			}
			records := make([][]string, 0, g.config.PSMs)
			for i := 0; i < g.config.PSMs; i++ {
				records = append(records, g.psm(span))
			}
			path := filepath.Join(dir, FileName(tech, pool))
			if err := excel.WriteCSV(path, headers, records); err != nil {
				return nil, err
			}
			paths = append(paths, path)
		}
	}
	return paths, nil
}

func (g *Generator) psm(span int) []string {
	acc := g.proteins[g.rng.Intn(span)]
	if g.rng.Float64() < 0.15 {
		acc += ";" + g.proteins[g.rng.Intn(span)]
	}
	pep := g.peptides[g.rng.Intn(len(g.peptides))]
	mod := Modifications[g.rng.Intn(len(Modifications))]
	if mod != "" {
		cut := 1 + g.rng.Intn(len(pep)-1)
		pep = pep[:cut] + "(+203.08)" + pep[cut:]
	}
	return []string{acc, pep, mod, fmt.Sprintf("%.1f", 20+g.rng.Float64()*80)}
}

// WriteCatalogs writes a Vesiclepedia export holding roughly three quarters of
// the proteins and a glycosylation list of the glycan modifications
func (g *Generator) WriteCatalogs(dir string) (vesiclepedia, glycosylations string, err error) {
	var rows [][]string
	for i, p := range g.proteins {
		if i%4 != 3 {
			rows = append(rows, []string{p, "Homo sapiens"})
		}
	}
	vesiclepedia = filepath.Join(dir, "vesiclepedia.csv")
	if err = excel.WriteCSV(vesiclepedia, []string{"Accession", "Species"}, rows); err != nil {
		return "", "", err
	}

	var glycans [][]string
	for _, m := range Modifications {
		if strings.HasPrefix(m, "N-Glycan") {
			glycans = append(glycans, []string{m})
		}
	}
	glycosylations = filepath.Join(dir, "glycosylation_list.csv")
	if err = excel.WriteCSV(glycosylations, []string{"PTM"}, glycans); err != nil {
		return "", "", err
	}
	return vesiclepedia, glycosylations, nil
}

// SummaryTable fabricates a summary table where every technique sits on its own
// level, so a Kruskal-Wallis test over techniques comes out significant
func (g *Generator) SummaryTable(level counts.Level) *counts.SummaryTable {
	pools := append([]string(nil), g.config.Pools...)
	pools = append(pools, sample.Pooled)

	var rows []counts.SummaryRow
	for ti, tech := range g.config.Techniques {
		base := 20 + 25*ti
		for _, pool := range pools {
			r := counts.SummaryRow{
				Sample:        tech + "_" + pool,
				Technique:     tech,
				Pool:          pool,
				ProteinsTotal: base + g.rng.Intn(5),
				PTMTotal:      5 + ti + g.rng.Intn(3),
				PeptidesTotal: 2*base + g.rng.Intn(9),
			}
			r.ProteinsFiltered = r.ProteinsTotal * 3 / 4
			r.PTMFiltered = r.PTMTotal / 2
			r.PeptidesFiltered = r.PeptidesTotal * 2 / 3
			r.ProteinRatio = 100 * float64(r.ProteinsFiltered) / float64(r.ProteinsTotal)
			r.PeptideRatio = 100 * float64(r.PeptidesFiltered) / float64(r.PeptidesTotal)
			rows = append(rows, r)
		}
	}
	return counts.NewSummaryTable(level, rows)
}
