// Package metrics counts pipeline outcomes on a private Prometheus registry
// and dumps them in the text exposition format at the end of a run.
package metrics

import (
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"

	"glycostat/domain/chart"
	"glycostat/internal/errors"
)

// Collector implements composer.Recorder and the pipeline counters
type Collector struct {
	registry *prometheus.Registry

	charts          *prometheus.CounterVec
	posthocFailures *prometheus.CounterVec
	renderFailures  *prometheus.CounterVec
	samples         *prometheus.CounterVec
}

// NewCollector creates a collector with its own registry
func NewCollector() *Collector {
	c := &Collector{registry: prometheus.NewRegistry()}

	c.charts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "glycostat_charts_total",
			Help: "Chart specs composed, by kind and terminal state",
		},
		[]string{"kind", "state"},
	)
	c.posthocFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "glycostat_posthoc_failures_total",
			Help: "Post-hoc tests that failed and degraded their chart",
		},
		[]string{"metric"},
	)
	c.renderFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "glycostat_render_failures_total",
			Help: "Chart specs that could not be rendered",
		},
		[]string{"kind"},
	)
	c.samples = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "glycostat_samples_processed_total",
			Help: "Sample tables processed, by filter level",
		},
		[]string{"level"},
	)

	c.registry.MustRegister(c.charts, c.posthocFailures, c.renderFailures, c.samples)
	return c
}

// Registry exposes the underlying registry
func (c *Collector) Registry() *prometheus.Registry { return c.registry }

func (c *Collector) ChartComposed(kind chart.Kind, state chart.State) {
	c.charts.WithLabelValues(string(kind), string(state)).Inc()
}

func (c *Collector) PosthocFailed(metric string) {
	c.posthocFailures.WithLabelValues(metric).Inc()
}

func (c *Collector) RenderFailed(kind chart.Kind) {
	c.renderFailures.WithLabelValues(string(kind)).Inc()
}

func (c *Collector) SampleProcessed(level string) {
	c.samples.WithLabelValues(level).Inc()
}

// WriteFile dumps every metric to path
func (c *Collector) WriteFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrapf(err, "creating metrics directory")
	}
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return errors.Wrapf(err, "writing metrics to %s", path)
	}
	return nil
}
