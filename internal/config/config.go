package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"glycostat/internal/counts"
	"glycostat/internal/errors"
	"glycostat/internal/sample"
)

// Chart modes
const (
	ChartsBoxplot        = "boxplot"
	ChartsBoxplotBarplot = "boxplot+barplot"
)

// Config represents the complete run configuration
type Config struct {
	Paths    PathConfig     `yaml:"paths"`
	Samples  SampleConfig   `yaml:"samples"`
	Analysis AnalysisConfig `yaml:"analysis"`
	Chart    ChartConfig    `yaml:"chart"`
	LogLevel string         `yaml:"log_level"`
}

// PathConfig holds file system paths
type PathConfig struct {
	InputDir      string `yaml:"input_dir"`
	OutputDir     string `yaml:"output_dir"`
	Vesiclepedia  string `yaml:"vesiclepedia"`
	Glycosylation string `yaml:"glycosylation_list"`
	RegistryDB    string `yaml:"registry_db,omitempty"`
	MetricsFile   string `yaml:"metrics_file,omitempty"`
}

// SampleConfig lists the techniques and pools recognized in file names
type SampleConfig struct {
	Techniques []string `yaml:"techniques"`
	Pools      []string `yaml:"pools"`
	Workers    int      `yaml:"workers"`
}

// AnalysisConfig selects what the analysis compares
type AnalysisConfig struct {
	Level    string `yaml:"level"`
	Grouping string `yaml:"grouping"`
	Charts   string `yaml:"charts"`
}

// ChartConfig holds rendering settings
type ChartConfig struct {
	Width      int  `yaml:"width"`
	Height     int  `yaml:"height"`
	FineTicks  bool `yaml:"fine_ticks"`
	Horizontal bool `yaml:"horizontal"`
}

// Default returns the configuration used when nothing overrides it
func Default() *Config {
	return &Config{
		Paths: PathConfig{
			InputDir:      "input",
			OutputDir:     "output",
			Vesiclepedia:  filepath.Join("data", "VESICLEPEDIA_PROTEIN_GENE_MAPPING_5.1.csv"),
			Glycosylation: filepath.Join("data", "glycosylation_list.csv"),
		},
		Samples: SampleConfig{
			Techniques: append([]string(nil), sample.DefaultTechniques...),
			Pools:      append([]string(nil), sample.DefaultPools...),
			Workers:    4,
		},
		Analysis: AnalysisConfig{
			Level:    string(counts.LevelGlycosylated),
			Grouping: "technique",
			Charts:   ChartsBoxplotBarplot,
		},
		Chart:    ChartConfig{Width: 900, Height: 700},
		LogLevel: "INFO",
	}
}

// Load reads configuration from environment variables on top of the defaults and validates it
func Load() (*Config, error) {
	cfg := Default()
	applyEnv(cfg)
	if err := validateConfig(cfg); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return cfg, nil
}

// LoadFile reads a YAML configuration. Environment variables still take precedence.
func LoadFile(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.MissingInput(path)
		}
		return nil, errors.Wrapf(err, "failed to read config %s", path)
	}

	cfg := Default()
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, errors.WithCode(errors.CodeConfigInvalid, errors.Wrapf(err, "failed to parse config %s", path))
	}
	applyEnv(cfg)
	if err := validateConfig(cfg); err != nil {
		return nil, errors.Wrapf(err, "configuration in %s is invalid", path)
	}
	return cfg, nil
}

// SaveFile writes the configuration as YAML
func (c *Config) SaveFile(path string) error {
	if err := validateConfig(c); err != nil {
		return err
	}
	raw, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "failed to encode config")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrapf(err, "failed to create %s", dir)
		}
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return errors.Wrapf(err, "failed to write config %s", path)
	}
	return nil
}

// String renders the configuration as YAML
func (c *Config) String() string {
	raw, err := yaml.Marshal(c)
	if err != nil {
		return err.Error()
	}
	return string(raw)
}

// Validate checks a configuration assembled by hand or from flags
func (c *Config) Validate() error {
	return validateConfig(c)
}

// Barplots reports whether bar charts are drawn next to box plots
func (c *Config) Barplots() bool {
	return c.Analysis.Charts == ChartsBoxplotBarplot
}

func applyEnv(c *Config) {
	c.Paths.InputDir = getEnvOrDefault("GLYCOSTAT_INPUT_DIR", c.Paths.InputDir)
	c.Paths.OutputDir = getEnvOrDefault("GLYCOSTAT_OUTPUT_DIR", c.Paths.OutputDir)
	c.Paths.Vesiclepedia = getEnvOrDefault("GLYCOSTAT_VESICLEPEDIA", c.Paths.Vesiclepedia)
	c.Paths.Glycosylation = getEnvOrDefault("GLYCOSTAT_GLYCOSYLATION_LIST", c.Paths.Glycosylation)
	c.Paths.RegistryDB = getEnvOrDefault("GLYCOSTAT_REGISTRY_DB", c.Paths.RegistryDB)
	c.Paths.MetricsFile = getEnvOrDefault("GLYCOSTAT_METRICS_FILE", c.Paths.MetricsFile)

	c.Samples.Techniques = getEnvListOrDefault("GLYCOSTAT_TECHNIQUES", c.Samples.Techniques)
	c.Samples.Pools = getEnvListOrDefault("GLYCOSTAT_POOLS", c.Samples.Pools)
	c.Samples.Workers = getEnvIntOrDefault("GLYCOSTAT_WORKERS", c.Samples.Workers)

	c.Analysis.Level = getEnvOrDefault("GLYCOSTAT_LEVEL", c.Analysis.Level)
	c.Analysis.Grouping = getEnvOrDefault("GLYCOSTAT_GROUPING", c.Analysis.Grouping)
	c.Analysis.Charts = getEnvOrDefault("GLYCOSTAT_CHARTS", c.Analysis.Charts)

	c.Chart.Width = getEnvIntOrDefault("GLYCOSTAT_CHART_WIDTH", c.Chart.Width)
	c.Chart.Height = getEnvIntOrDefault("GLYCOSTAT_CHART_HEIGHT", c.Chart.Height)
	c.Chart.FineTicks = getEnvBoolOrDefault("GLYCOSTAT_FINE_TICKS", c.Chart.FineTicks)
	c.Chart.Horizontal = getEnvBoolOrDefault("GLYCOSTAT_HORIZONTAL", c.Chart.Horizontal)

	c.LogLevel = getEnvOrDefault("LOG_LEVEL", c.LogLevel)
}

func validateConfig(c *Config) error {
	if c.Paths.InputDir == "" {
		return errors.ConfigInvalid("input directory is required")
	}
	if c.Paths.OutputDir == "" {
		return errors.ConfigInvalid("output directory is required")
	}
	if len(c.Samples.Techniques) == 0 {
		return errors.ConfigInvalid("at least one technique is required")
	}
	if len(c.Samples.Pools) == 0 {
		return errors.ConfigInvalid("at least one pool is required")
	}
	if c.Samples.Workers < 1 {
		return errors.ConfigInvalid("workers must be positive")
	}
	switch counts.Level(c.Analysis.Level) {
	case counts.LevelVesiclepedia, counts.LevelGlycosylated:
	default:
		return errors.ConfigInvalid("level must be vesiclepedia or vesiclepedia_glycosylated, got " + strconv.Quote(c.Analysis.Level))
	}
	switch c.Analysis.Grouping {
	case "technique", "pool":
	default:
		return errors.ConfigInvalid("grouping must be technique or pool, got " + strconv.Quote(c.Analysis.Grouping))
	}
	switch c.Analysis.Charts {
	case ChartsBoxplot, ChartsBoxplotBarplot:
	default:
		return errors.ConfigInvalid("charts must be boxplot or boxplot+barplot, got " + strconv.Quote(c.Analysis.Charts))
	}
	if c.Chart.Width <= 0 || c.Chart.Height <= 0 {
		return errors.ConfigInvalid("chart size must be positive")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// comma-separated
func getEnvListOrDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
