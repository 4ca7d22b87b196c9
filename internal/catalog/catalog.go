// Package catalog holds the reference lists samples are filtered against: the
// Vesiclepedia protein catalog and the glycosylations of interest.
package catalog

import (
	"sort"
	"strings"

	"glycostat/adapters/excel"
	"glycostat/internal/errors"
)

// AccessionColumn is the Vesiclepedia column holding protein accessions
const AccessionColumn = "Accession"

// Set is an immutable string membership set
type Set struct {
	members map[string]struct{}
}

// NewSet builds a set from values, ignoring blanks and duplicates
func NewSet(values []string) *Set {
	s := &Set{members: make(map[string]struct{}, len(values))}
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		s.members[v] = struct{}{}
	}
	return s
}

// Contains reports membership
func (s *Set) Contains(v string) bool {
	if s == nil {
		return false
	}
	_, ok := s.members[v]
	return ok
}

// Len returns the number of distinct members
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.members)
}

// Values returns the members sorted
func (s *Set) Values() []string {
	out := make([]string, 0, s.Len())
	if s == nil {
		return out
	}
	for v := range s.members {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// LoadVesiclepedia reads the Accession column of a Vesiclepedia protein export
func LoadVesiclepedia(path string) (*Set, error) {
	table, err := excel.NewDataReader(path).ReadData()
	if err != nil {
		return nil, errors.Wrapf(err, "loading Vesiclepedia catalog")
	}
	if err := excel.RequireColumns(table, path, AccessionColumn); err != nil {
		return nil, err
	}
	col, _ := table.Column(AccessionColumn)
	return NewSet(col), nil
}

// LoadGlycosylations reads the first column of a ';'-separated list of PTM names
func LoadGlycosylations(path string) (*Set, error) {
	cfg := excel.DefaultReaderConfig()
	cfg.Delimiter = excel.OutputDelimiter
	table, err := excel.NewDataReaderWithConfig(path, cfg).ReadData()
	if err != nil {
		return nil, errors.Wrapf(err, "loading glycosylation list")
	}
	if len(table.Headers) == 0 {
		return nil, errors.SchemaMismatch(path + " has no columns")
	}
	col, _ := table.Column(table.Headers[0])
	return NewSet(col), nil
}
