package composer

import (
	"fmt"

	"glycostat/domain/chart"
	"glycostat/domain/stats"
	"glycostat/internal"
	"glycostat/internal/errors"
	"glycostat/internal/layout"
	"glycostat/ports"
)

// Recorder receives composer outcomes for metrics. Implementations must tolerate
// being called once per composed spec.
type Recorder interface {
	ChartComposed(kind chart.Kind, state chart.State)
	PosthocFailed(metric string)
}

// PlotConfig configures a Plot composer
type PlotConfig struct {
	Horizontal bool
	FineTicks  bool
	// Registry receives the comparisons of annotated datasets. Optional.
	Registry stats.Registry
	Recorder Recorder
	Logger   *internal.Logger
}

// Plot turns a grouped dataset into box and bar chart specs, stepping through
// the omnibus and post-hoc decisions and downgrading to a captioned spec when
// either cannot support annotations.
type Plot struct {
	omnibus  ports.OmnibusTester
	posthoc  ports.PosthocEngine
	scaler   *layout.Scaler
	brackets *layout.Brackets
	cfg      PlotConfig
	logger   *internal.Logger
}

// NewPlot creates a plot composer
func NewPlot(omnibus ports.OmnibusTester, posthoc ports.PosthocEngine, cfg PlotConfig) *Plot {
	scaler := layout.NewScaler(cfg.FineTicks)
	logger := cfg.Logger
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Plot{
		omnibus:  omnibus,
		posthoc:  posthoc,
		scaler:   scaler,
		brackets: layout.NewBrackets(scaler),
		cfg:      cfg,
		logger:   logger.With("composer"),
	}
}

// outcome is the statistical decision for one dataset, shared by every kind composed from it
type outcome struct {
	state   chart.State
	reason  string
	caption string
	omnibus stats.OmnibusResult
	comps   []stats.PairwiseComparison
}

// Compose builds a single spec
func (p *Plot) Compose(ds *stats.GroupedDataset, kind chart.Kind) (*chart.ChartSpec, error) {
	specs, err := p.ComposeAll(ds, []chart.Kind{kind})
	if err != nil {
		return nil, err
	}
	return specs[0], nil
}

// ComposeAll runs the tests once and builds one spec per requested kind.
// Only a structurally unusable dataset is reported as an error.
func (p *Plot) ComposeAll(ds *stats.GroupedDataset, kinds []chart.Kind) ([]*chart.ChartSpec, error) {
	if ds == nil || len(ds.Groups()) == 0 {
		return nil, errors.ErrEmptyDataset
	}
	for _, k := range kinds {
		if k != chart.KindBoxplot && k != chart.KindBarplot {
			return nil, errors.Newf(errors.CodeInvalidInput, "plot composer cannot build %q charts", k)
		}
	}

	groups, err := p.summaries(ds)
	if err != nil {
		return nil, errors.Wrapf(err, "summarizing %s", ds)
	}

	out := p.decide(ds)
	if out.state == chart.StateAnnotated && p.cfg.Registry != nil {
		if err := p.cfg.Registry.Put(stats.RegistryName(ds.Metric(), ds.Grouping()), out.comps); err != nil {
			p.logger.Warn("%v", err)
		}
	}

	dataMax := ds.Max()
	specs := make([]*chart.ChartSpec, 0, len(kinds))
	for _, kind := range kinds {
		spec := &chart.ChartSpec{
			Kind:           kind,
			Title:          fmt.Sprintf("%s by %s", ds.Metric(), ds.Grouping()),
			Metric:         ds.Metric(),
			Grouping:       ds.Grouping(),
			State:          out.state,
			Omnibus:        &out.omnibus,
			Groups:         groups,
			Brackets:       []chart.BracketPlacement{},
			Caption:        out.caption,
			DegradedReason: out.reason,
			Horizontal:     p.cfg.Horizontal,
		}

		axis := p.scaler.Scale(dataMax)
		if out.state == chart.StateAnnotated {
			bracketed, policy := bracketSet(kind, out.comps)
			l := p.brackets.Layout(bracketed, dataMax, axis, policy)
			axis = l.Axis
			spec.Brackets = l.Placements
		}
		spec.Axis = &axis

		if p.cfg.Recorder != nil {
			p.cfg.Recorder.ChartComposed(kind, spec.State)
		}
		p.logger.Debug("%s %s: %s", ds, kind, spec.State)
		specs = append(specs, spec)
	}
	return specs, nil
}

// decide walks the omnibus and post-hoc steps to a terminal state
func (p *Plot) decide(ds *stats.GroupedDataset) outcome {
	omni := p.omnibus.Run(ds)
	out := outcome{omnibus: omni}

	if !omni.Valid {
		out.state = chart.StateNoSignal
		out.reason = chart.ReasonInvalidOmnibus
		out.caption = chart.CaptionInvalid
		return out
	}
	if !omni.Significant {
		out.state = chart.StateNoSignal
		out.reason = chart.ReasonNotSignificant
		out.caption = notSignificantCaption(omni)
		return out
	}

	comps, err := p.posthoc.Run(ds, omni)
	if err != nil {
		p.logger.Warn("post-hoc comparisons for %s by %s failed: %v", ds.Metric(), ds.Grouping(), err)
		if p.cfg.Recorder != nil {
			p.cfg.Recorder.PosthocFailed(ds.Metric())
		}
		out.state = chart.StatePosthocError
		out.reason = chart.ReasonPosthocError
		out.caption = chart.CaptionPosthocError
		return out
	}

	computed := make([]stats.PairwiseComparison, 0, len(comps))
	for _, c := range comps {
		if c.Computed() {
			computed = append(computed, c)
		}
	}
	if len(computed) == 0 {
		out.state = chart.StateSignificantNoPairwise
		out.reason = chart.ReasonNoPairwise
		out.caption = chart.CaptionNoPairwise
		return out
	}

	ordered := make([]stats.PairwiseComparison, len(comps))
	copy(ordered, comps)
	stats.SortCanonical(ordered, ds.Groups())

	out.state = chart.StateAnnotated
	out.comps = ordered
	out.caption = annotatedCaption(omni, ordered)
	return out
}

// bracketSet picks the comparisons a chart kind annotates and the layout policy it uses
func bracketSet(kind chart.Kind, comps []stats.PairwiseComparison) ([]stats.PairwiseComparison, layout.Policy) {
	var set []stats.PairwiseComparison
	for _, c := range comps {
		if !c.Computed() {
			continue
		}
		if kind == chart.KindBoxplot && !c.Significant() {
			continue
		}
		set = append(set, c)
	}
	if kind == chart.KindBarplot {
		return set, layout.PolicyClamp
	}
	return set, layout.PolicyExpand
}

func (p *Plot) summaries(ds *stats.GroupedDataset) ([]chart.GroupSummary, error) {
	labels := ds.Groups()
	if p.cfg.Horizontal {
		for i, j := 0, len(labels)-1; i < j; i, j = i+1, j-1 {
			labels[i], labels[j] = labels[j], labels[i]
		}
	}
	out := make([]chart.GroupSummary, 0, len(labels))
	for _, g := range labels {
		s, err := summarize(g, ds.Values(g))
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}
