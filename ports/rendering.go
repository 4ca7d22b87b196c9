package ports

import (
	"context"

	"glycostat/domain/chart"
)

// ChartRenderer rasterizes a spec to an image file at path
type ChartRenderer interface {
	Render(ctx context.Context, spec *chart.ChartSpec, path string) error
}
