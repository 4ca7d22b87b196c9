// Package ptm classifies post-translational modification strings from PSM tables
// and cleans the peptide and accession columns they come with.
package ptm

import (
	"regexp"
	"strings"
)

// Category is a glycan class assigned to a PTM description
type Category string

const (
	Fucosialylated Category = "Fucosialylated"
	Fucosylated    Category = "Fucosylated"
	Sialylated     Category = "Sialylated"
	Oligomannose   Category = "Oligomannose"
	NoPTM          Category = "No PTM"
	Other          Category = "Other"
)

// Order is the fixed display order of categories in charts and tables
var Order = []Category{Fucosylated, Sialylated, Fucosialylated, Oligomannose, Other, NoPTM}

// OrderStrings returns Order as plain labels
func OrderStrings() []string {
	out := make([]string, len(Order))
	for i, c := range Order {
		out[i] = string(c)
	}
	return out
}

var (
	fucoseMarkers = regexp.MustCompile(`dHex|Fucos|Biantennary`)
	sialicMarkers = regexp.MustCompile(`NeuGc|NeuAc|Kdn|Neuraminic`)
	coreMarkers   = regexp.MustCompile(`HexNAc|N-linked\sglycan\score`)

	annotation = regexp.MustCompile(`\([^)]*\)`)
	accession  = regexp.MustCompile(`([A-Z]\d[A-Z0-9]{3}[0-9]-?\d*|[A-NR-Z][0-9][A-Z][A-Z0-9]{2}[0-9][A-Z]?[A-Z0-9]+[0-9])`)
)

// Classify assigns a category to a raw PTM description. Fucose and sialic acid
// markers take precedence; a core marker alone means oligomannose.
func Classify(mod string) Category {
	if isEmpty(mod) {
		return NoPTM
	}
	fuc := fucoseMarkers.MatchString(mod)
	sia := sialicMarkers.MatchString(mod)
	switch {
	case fuc && sia:
		return Fucosialylated
	case fuc:
		return Fucosylated
	case sia:
		return Sialylated
	case coreMarkers.MatchString(mod):
		return Oligomannose
	default:
		return Other
	}
}

// isEmpty matches the blank spellings exported tables use for a missing PTM
func isEmpty(mod string) bool {
	switch mod {
	case "", " ", "nan", "NaN":
		return true
	}
	return false
}

// CleanPeptide removes parenthesised modification annotations from a peptide string
func CleanPeptide(peptide string) string {
	return annotation.ReplaceAllString(peptide, "")
}

// ExtractAccessions returns every protein accession found in s, in order of appearance
func ExtractAccessions(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return accession.FindAllString(s, -1)
}
