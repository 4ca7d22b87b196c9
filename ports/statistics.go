package ports

import (
	"glycostat/domain/stats"
)

// OmnibusTester decides whether any group of a dataset differs from another
type OmnibusTester interface {
	Run(ds *stats.GroupedDataset) stats.OmnibusResult
}

// PosthocEngine runs the corrected pairwise comparisons that follow a significant omnibus.
// An error means the correction could not be performed for the whole run.
type PosthocEngine interface {
	Run(ds *stats.GroupedDataset, omnibus stats.OmnibusResult) ([]stats.PairwiseComparison, error)
}
