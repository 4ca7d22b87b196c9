package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"glycostat/adapters/export"
	"glycostat/adapters/render"
	"glycostat/adapters/sqlite"
	"glycostat/adapters/stats/dunn"
	"glycostat/adapters/stats/kruskal"
	"glycostat/app"
	"glycostat/domain/core"
	"glycostat/internal"
	"glycostat/internal/composer"
	"glycostat/internal/config"
	"glycostat/internal/metrics"
	"glycostat/internal/outdir"
)

// options holds the global flags. Only flags set on the command line override the configuration.
type options struct {
	configPath string
	inputDir   string
	outputDir  string
	level      string
	grouping   string
	charts     string
	registry   string
	metrics    string
	logLevel   string
	workers    int
	horizontal bool
	fineTicks  bool
}

func main() {
	// .env is optional
	_ = godotenv.Load()

	opts := &options{}
	rootCmd := &cobra.Command{
		Use:   "glycostat",
		Short: "PTM detection and group comparison for extracellular vesicle proteomics",
		Long: `glycostat classifies post-translational modifications of PSM exports,
filters them through Vesiclepedia and a glycosylation list, and compares the
resulting counts across isolation techniques or pools with Kruskal-Wallis and
Dunn tests, drawing annotated box, bar and sector charts.`,
		SilenceUsage: true,
	}

	f := rootCmd.PersistentFlags()
	f.StringVarP(&opts.configPath, "config", "c", "", "YAML configuration file")
	f.StringVar(&opts.inputDir, "input", "", "directory of PSM exports")
	f.StringVar(&opts.outputDir, "output", "", "output directory")
	f.StringVar(&opts.level, "level", "", "summary level to analyze (vesiclepedia|vesiclepedia_glycosylated)")
	f.StringVar(&opts.grouping, "grouping", "", "compare by technique or pool")
	f.StringVar(&opts.charts, "charts", "", "boxplot or boxplot+barplot")
	f.StringVar(&opts.registry, "registry", "", "SQLite file the comparison registry is saved to")
	f.StringVar(&opts.metrics, "metrics", "", "file Prometheus metrics are written to")
	f.StringVar(&opts.logLevel, "log-level", "", "ERROR, WARN, INFO, DEBUG or TRACE")
	f.IntVar(&opts.workers, "workers", 0, "PSM exports loaded at once")
	f.BoolVar(&opts.horizontal, "horizontal", false, "draw horizontal charts")
	f.BoolVar(&opts.fineTicks, "fine-ticks", false, "use finer value axis ticks")

	rootCmd.AddCommand(
		newPrepareCmd(opts),
		newAnalyzeCmd(opts),
		newRunCmd(opts),
		newRunsCmd(opts),
		newConfigCmd(opts),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// load resolves the configuration: defaults, then file, then environment, then flags
func (o *options) load(cmd *cobra.Command) (*config.Config, *internal.Logger, error) {
	var cfg *config.Config
	var err error
	if o.configPath != "" {
		cfg, err = config.LoadFile(o.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, nil, err
	}

	flags := cmd.Flags()
	set := func(name string, apply func()) {
		if flags.Changed(name) {
			apply()
		}
	}
	set("input", func() { cfg.Paths.InputDir = o.inputDir })
	set("output", func() { cfg.Paths.OutputDir = o.outputDir })
	set("level", func() { cfg.Analysis.Level = o.level })
	set("grouping", func() { cfg.Analysis.Grouping = o.grouping })
	set("charts", func() { cfg.Analysis.Charts = o.charts })
	set("registry", func() { cfg.Paths.RegistryDB = o.registry })
	set("metrics", func() { cfg.Paths.MetricsFile = o.metrics })
	set("log-level", func() { cfg.LogLevel = o.logLevel })
	set("workers", func() { cfg.Samples.Workers = o.workers })
	set("horizontal", func() { cfg.Chart.Horizontal = o.horizontal })
	set("fine-ticks", func() { cfg.Chart.FineTicks = o.fineTicks })

	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	return cfg, internal.NewLogger(internal.ParseLogLevel(cfg.LogLevel)), nil
}

func newPrepareCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "prepare",
		Short: "Classify, filter and count the PSM exports",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.load(cmd)
			if err != nil {
				return err
			}
			collector := metrics.NewCollector()
			if err := runPrepare(cmd.Context(), cfg, collector, logger); err != nil {
				return err
			}
			return writeMetrics(cfg, collector)
		},
	}
}

func newAnalyzeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "analyze",
		Short: "Compare summary metrics across groups and draw the figures",
		Long: `Compare every summary metric of the prepared level across groups.

Each metric gets a Kruskal-Wallis test; significant ones are followed by Dunn
tests with Benjamini-Hochberg correction and annotated with brackets. Writes
figures to 3_figures, comparison tables and report.html to 4_statistics.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.load(cmd)
			if err != nil {
				return err
			}
			return runAnalyze(cmd.Context(), cfg, metrics.NewCollector(), logger)
		},
	}
}

func newRunCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Prepare then analyze",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.load(cmd)
			if err != nil {
				return err
			}
			collector := metrics.NewCollector()
			if err := runPrepare(cmd.Context(), cfg, collector, logger); err != nil {
				return err
			}
			return runAnalyze(cmd.Context(), cfg, collector, logger)
		},
	}
}

func runPrepare(ctx context.Context, cfg *config.Config, collector *metrics.Collector, logger *internal.Logger) error {
	res, err := app.NewPrepareService(cfg, collector, os.Stderr, logger).Run(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Prepared %d samples into %s\n", len(res.Samples), cfg.Paths.OutputDir)
	return nil
}

func runAnalyze(ctx context.Context, cfg *config.Config, collector *metrics.Collector, logger *internal.Logger) (err error) {
	runID := core.NewRunID()
	layout := outdir.New(cfg.Paths.OutputDir)
	deps := app.AnalysisDeps{
		Omnibus:   kruskal.NewTester(),
		Posthoc:   dunn.NewEngine(),
		Renderer:  render.NewPNGRenderer(render.Config{Width: cfg.Chart.Width, Height: cfg.Chart.Height}, logger),
		Exporter:  export.NewTableExporter(layout.Statistics(), runID.String()),
		Collector: collector,
	}
	if cfg.Paths.RegistryDB != "" {
		store, openErr := sqlite.Open(cfg.Paths.RegistryDB)
		if openErr != nil {
			return openErr
		}
		defer closeStore(store, &err)
		deps.Store = store
	}

	res, err := app.NewAnalysisService(cfg, deps, os.Stderr, logger).Run(ctx, runID)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CHART\tKIND\tSTATE\tH\tP")
	for _, s := range res.Specs {
		h, p := "-", "-"
		if s.Omnibus != nil && s.Omnibus.Valid {
			h = fmt.Sprintf("%.2f", s.Omnibus.Statistic)
			p = composer.FormatP(s.Omnibus.PValue)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", s.Title, s.Kind, s.State, h, p)
	}
	w.Flush()
	fmt.Printf("\nRun %s: %d charts, %d render failures\nReport: %s\n", res.RunID, len(res.Specs), res.RenderFailures, res.ReportPath)
	return nil
}

// closeStore closes the registry database, reporting its error unless one is already set
func closeStore(store *sqlite.RegistryStore, err *error) {
	if cerr := store.Close(); cerr != nil && *err == nil {
		*err = fmt.Errorf("closing registry: %w", cerr)
	}
}

func writeMetrics(cfg *config.Config, collector *metrics.Collector) error {
	if cfg.Paths.MetricsFile == "" {
		return nil
	}
	return collector.WriteFile(cfg.Paths.MetricsFile)
}

func newRunsCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs [run-id]",
		Short: "List saved runs, or print the comparisons of one run",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			cfg, _, err := opts.load(cmd)
			if err != nil {
				return err
			}
			if cfg.Paths.RegistryDB == "" {
				return fmt.Errorf("no registry database configured (use --registry or GLYCOSTAT_REGISTRY_DB)")
			}
			store, err := sqlite.Open(cfg.Paths.RegistryDB)
			if err != nil {
				return err
			}
			defer closeStore(store, &err)

			if len(args) == 0 {
				runs, err := store.ListRuns(cmd.Context())
				if err != nil {
					return err
				}
				for _, r := range runs {
					fmt.Println(r)
				}
				return nil
			}

			runID, err := core.ParseRunID(args[0])
			if err != nil {
				return err
			}
			reg, err := store.LoadRegistry(cmd.Context(), runID)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tCOMPARISON\tZ\tP.ADJ\tCODE")
			for _, name := range reg.Names() {
				for _, c := range reg[name] {
					fmt.Fprintf(w, "%s\t%s\t%.3f\t%s\t%s\n", name, c.Label(), c.Z, composer.FormatP(c.AdjustedP), c.Code)
				}
			}
			return w.Flush()
		},
	}
	return cmd
}

func newConfigCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or save the resolved configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the resolved configuration as YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := opts.load(cmd)
			if err != nil {
				return err
			}
			fmt.Print(cfg.String())
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "save <path>",
		Short: "Write the resolved configuration to a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := opts.load(cmd)
			if err != nil {
				return err
			}
			if err := cfg.SaveFile(args[0]); err != nil {
				return err
			}
			fmt.Printf("Configuration saved to %s\n", args[0])
			return nil
		},
	})
	return cmd
}
