package stats

import (
	"sort"

	"glycostat/internal/errors"
)

// Registry maps a generated result name to the post-hoc comparisons of one run.
// It is owned by the caller; each name may be written once.
type Registry map[string][]PairwiseComparison

// RegistryName builds the key under which a metric's comparisons are stored
func RegistryName(metric, grouping string) string {
	return "dunn_" + metric + "_by_" + grouping
}

// Put stores a copy of comps under name
func (r Registry) Put(name string, comps []PairwiseComparison) error {
	if r == nil {
		return errors.InternalError("registry is nil")
	}
	if _, exists := r[name]; exists {
		return errors.Newf(errors.CodeInvalidInput, "registry entry %q already written", name)
	}
	cp := make([]PairwiseComparison, len(comps))
	copy(cp, comps)
	r[name] = cp
	return nil
}

// Names returns the stored names in sorted order
func (r Registry) Names() []string {
	names := make([]string, 0, len(r))
	for k := range r {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
