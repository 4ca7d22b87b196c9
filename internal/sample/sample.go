// Package sample derives sample identity (technique and pool) from PSM export file names.
package sample

import (
	"path/filepath"
	"regexp"
	"strings"

	"glycostat/internal/errors"
)

// Pool labels
const (
	Pool1  = "POOL_1"
	Pool2  = "POOL_2"
	Pool3  = "POOL_3"
	NoPool = "NO_POOL"
	Pooled = "POOLS_123"
)

const exportPrefix = "DB_search_psm_"

// DefaultTechniques and DefaultPools are the study's isolation techniques and pools in display order
var (
	DefaultTechniques = []string{"ExoGAG", "SEC", "IP_CD9", "UC"}
	DefaultPools      = []string{Pool1, Pool2, Pool3, NoPool, Pooled}
)

// known misnamed exports, applied after simplification
var renames = map[string]string{
	"ID_CD9_NO_POOL": "IP_CD9_NO_POOL",
}

// individualPool matches a single numbered pool file, never the merged POOLS file
var individualPool = regexp.MustCompile(`POOL_\d$`)

// Sample identifies one PSM table
type Sample struct {
	Name      string // simplified file stem
	Technique string
	Pool      string
	Path      string
}

// IsIndividualPool reports whether the sample is one of the numbered pools
func (s Sample) IsIndividualPool() bool {
	return s.Pool == Pool1 || s.Pool == Pool2 || s.Pool == Pool3
}

// Simplify normalizes an export file stem: spaces become underscores, doubled
// underscores collapse and the export prefix is removed
func Simplify(stem string) string {
	s := strings.ReplaceAll(stem, " ", "_")
	for strings.Contains(s, "__") {
		s = strings.ReplaceAll(s, "__", "_")
	}
	s = strings.TrimPrefix(s, exportPrefix)
	if fixed, ok := renames[s]; ok {
		s = fixed
	}
	return s
}

// Parse identifies a sample from its file path. A name without any pool marker
// is treated as NO_POOL. The first matching technique and pool in the given
// lists win, so more specific labels must come first.
func Parse(path string, techniques, pools []string) (Sample, error) {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	name := Simplify(stem)
	if !strings.Contains(name, "POOL") {
		name += "_" + NoPool
	}

	s := Sample{Name: name, Path: path}
	for _, t := range techniques {
		if strings.Contains(name, t) {
			s.Technique = t
			break
		}
	}
	for _, p := range pools {
		if strings.Contains(name, p) {
			s.Pool = p
			break
		}
	}
	if s.Technique == "" {
		return s, errors.Newf(errors.CodeInvalidInput, "no known technique in sample name %q", name)
	}
	if s.Pool == "" {
		return s, errors.Newf(errors.CodeInvalidInput, "no known pool in sample name %q", name)
	}
	return s, nil
}

// IsPoolFile reports whether a simplified name is one of the numbered pools that get merged
func IsPoolFile(name string) bool {
	return individualPool.MatchString(name)
}

// PooledName is the sample name of a technique's merged pools
func PooledName(technique string) string {
	return technique + "_" + Pooled
}
