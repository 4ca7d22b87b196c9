package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/sync/errgroup"

	"glycostat/adapters/excel"
	"glycostat/internal"
	"glycostat/internal/catalog"
	"glycostat/internal/config"
	"glycostat/internal/counts"
	"glycostat/internal/errors"
	"glycostat/internal/outdir"
	"glycostat/internal/sample"
)

// SampleRecorder counts processed samples per level
type SampleRecorder interface {
	SampleProcessed(level string)
}

// PrepareService turns the raw PSM exports into filtered tables, value counts and summaries
type PrepareService struct {
	cfg      *config.Config
	layout   outdir.Layout
	recorder SampleRecorder
	progress io.Writer
	logger   *internal.Logger
}

// PrepareResult lists what a preparation produced
type PrepareResult struct {
	Samples   []sample.Sample
	Summaries map[counts.Level]*counts.SummaryTable
}

// NewPrepareService creates a prepare service. recorder and progress may be nil.
func NewPrepareService(cfg *config.Config, recorder SampleRecorder, progress io.Writer, logger *internal.Logger) *PrepareService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	if progress == nil {
		progress = io.Discard
	}
	return &PrepareService{
		cfg:      cfg,
		layout:   outdir.New(cfg.Paths.OutputDir),
		recorder: recorder,
		progress: progress,
		logger:   logger.With("prepare"),
	}
}

type loadedSample struct {
	sample  sample.Sample
	records []counts.Record
}

// Run executes the preparation
func (s *PrepareService) Run(ctx context.Context) (*PrepareResult, error) {
	vesiclepedia, err := catalog.LoadVesiclepedia(s.cfg.Paths.Vesiclepedia)
	if err != nil {
		return nil, err
	}
	glycosylations, err := catalog.LoadGlycosylations(s.cfg.Paths.Glycosylation)
	if err != nil {
		return nil, err
	}
	s.logger.Info("catalogs: %d Vesiclepedia proteins, %d glycosylations", vesiclepedia.Len(), glycosylations.Len())

	samples, err := s.discover()
	if err != nil {
		return nil, err
	}
	loaded, err := s.load(ctx, samples)
	if err != nil {
		return nil, err
	}
	loaded = s.mergePools(loaded)

	if err := s.layout.Create(); err != nil {
		return nil, err
	}

	rows := map[counts.Level][]counts.SummaryRow{}
	result := &PrepareResult{Summaries: map[counts.Level]*counts.SummaryTable{}}
	for _, ls := range loaded {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		byLevel := map[counts.Level][]counts.Record{counts.LevelTotal: ls.records}
		byLevel[counts.LevelVesiclepedia] = counts.FilterVesiclepedia(ls.records, vesiclepedia)
		byLevel[counts.LevelGlycosylated] = counts.FilterGlycosylated(byLevel[counts.LevelVesiclepedia], glycosylations)

		for _, level := range counts.Levels {
			if err := s.writeLevel(level, ls.sample, byLevel[level]); err != nil {
				return nil, err
			}
			if s.recorder != nil {
				s.recorder.SampleProcessed(string(level))
			}
		}

		rows[counts.LevelVesiclepedia] = append(rows[counts.LevelVesiclepedia],
			counts.Summarize(ls.sample, byLevel[counts.LevelTotal], byLevel[counts.LevelVesiclepedia]))
		rows[counts.LevelGlycosylated] = append(rows[counts.LevelGlycosylated],
			counts.Summarize(ls.sample, byLevel[counts.LevelVesiclepedia], byLevel[counts.LevelGlycosylated]))

		s.logger.Debug("%s: %d records, %d in Vesiclepedia, %d glycosylated", ls.sample.Name,
			len(ls.records), len(byLevel[counts.LevelVesiclepedia]), len(byLevel[counts.LevelGlycosylated]))
		result.Samples = append(result.Samples, ls.sample)
	}

	for _, level := range []counts.Level{counts.LevelVesiclepedia, counts.LevelGlycosylated} {
		table := counts.NewSummaryTable(level, rows[level])
		if err := table.Write(s.layout.Filtered(level)); err != nil {
			return nil, errors.Wrapf(err, "writing %s summaries", level)
		}
		result.Summaries[level] = table
	}
	s.logger.Info("prepared %d samples into %s", len(result.Samples), s.layout.Root)
	return result, nil
}

// discover lists the exports of the input directory and identifies their samples
func (s *PrepareService) discover() ([]sample.Sample, error) {
	entries, err := os.ReadDir(s.cfg.Paths.InputDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.MissingInput(s.cfg.Paths.InputDir)
		}
		return nil, errors.Wrapf(err, "listing %s", s.cfg.Paths.InputDir)
	}

	var samples []sample.Sample
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.Contains(name, "summary") {
			continue
		}
		switch strings.ToLower(filepath.Ext(name)) {
		case ".csv", ".xlsx", ".xlsm":
		default:
			continue
		}
		smp, err := sample.Parse(filepath.Join(s.cfg.Paths.InputDir, name), s.cfg.Samples.Techniques, s.cfg.Samples.Pools)
		if err != nil {
			return nil, errors.Wrapf(err, "input file %s", name)
		}
		samples = append(samples, smp)
	}
	if len(samples) == 0 {
		return nil, errors.Newf(errors.CodeMissingInput, "no PSM exports in %s", s.cfg.Paths.InputDir)
	}
	return samples, nil
}

// load reads every export with at most Workers files open at once
func (s *PrepareService) load(ctx context.Context, samples []sample.Sample) ([]loadedSample, error) {
	bar := progressbar.NewOptions(len(samples),
		progressbar.OptionSetDescription("Loading PSM exports"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWriter(s.progress),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(s.progress)
		}),
	)

	out := make([]loadedSample, len(samples))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Samples.Workers)
	for i, smp := range samples {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			table, err := excel.NewDataReader(smp.Path).ReadData()
			if err != nil {
				return errors.Wrapf(err, "reading %s", smp.Name)
			}
			recs, err := counts.FromTable(table, smp.Path)
			if err != nil {
				return err
			}
			out[i] = loadedSample{sample: smp, records: recs}
			if err := bar.Add(1); err != nil {
				s.logger.Debug("progress: %v", err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// mergePools appends one POOLS_123 sample per technique combining its numbered pools.
// A technique that already ships a POOLS_123 export is left alone.
func (s *PrepareService) mergePools(loaded []loadedSample) []loadedSample {
	pools := map[string][]loadedSample{}
	shipped := map[string]bool{}
	var techniques []string
	for _, ls := range loaded {
		t := ls.sample.Technique
		if ls.sample.Pool == sample.Pooled {
			shipped[t] = true
		}
		if !ls.sample.IsIndividualPool() {
			continue
		}
		if _, seen := pools[t]; !seen {
			techniques = append(techniques, t)
		}
		pools[t] = append(pools[t], ls)
	}

	for _, t := range techniques {
		if shipped[t] {
			s.logger.Debug("%s already has a %s export", t, sample.Pooled)
			continue
		}
		members := pools[t]
		sort.Slice(members, func(i, j int) bool { return members[i].sample.Pool < members[j].sample.Pool })
		if len(members) < 3 {
			s.logger.Warn("%s: merging only %d numbered pools", t, len(members))
		}
		sets := make([][]counts.Record, len(members))
		for i, m := range members {
			sets[i] = m.records
		}
		loaded = append(loaded, loadedSample{
			sample:  sample.Sample{Name: sample.PooledName(t), Technique: t, Pool: sample.Pooled},
			records: counts.Merge(sets...),
		})
	}
	return loaded
}

// writeLevel writes the filtered table and value counts of one sample at one level
func (s *PrepareService) writeLevel(level counts.Level, smp sample.Sample, recs []counts.Record) error {
	if level != counts.LevelTotal {
		if err := excel.WriteTable(s.layout.FilteredFile(level, smp.Name), counts.Table(recs)); err != nil {
			return err
		}
	}
	for _, col := range counts.CountedColumns {
		vcs := counts.ValueCounts(recs, col)
		if err := excel.WriteCSV(s.layout.ValueCountFile(level, smp.Name, col), counts.ValueCountHeaders, counts.ValueCountRecords(vcs)); err != nil {
			return err
		}
	}
	types := counts.PTMTypesByProtein(recs)
	return excel.WriteCSV(s.layout.PTMTypesFile(level, smp.Name), counts.ValueCountHeaders, counts.ValueCountRecords(types))
}
