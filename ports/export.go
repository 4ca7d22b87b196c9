package ports

import (
	"context"

	"glycostat/domain/chart"
	"glycostat/domain/core"
	"glycostat/domain/stats"
)

// ComparisonExporter writes the post-hoc comparisons of a metric to a tabular side file
type ComparisonExporter interface {
	Export(ctx context.Context, name string, spec *chart.ChartSpec, comps []stats.PairwiseComparison) (string, error)
}

// ResultStore persists the named registry of a run for later inspection
type ResultStore interface {
	SaveRegistry(ctx context.Context, runID core.RunID, reg stats.Registry) error
	LoadRegistry(ctx context.Context, runID core.RunID) (stats.Registry, error)
	ListRuns(ctx context.Context) ([]core.RunID, error)
	Close() error
}
