package config

import (
	"github.com/AndreyAkinshin/paramsweep/internal/report"
	"github.com/AndreyAkinshin/paramsweep/internal/settings"
	"github.com/AndreyAkinshin/paramsweep/internal/sweep"
	"github.com/AndreyAkinshin/paramsweep/internal/verdict"
)

// Default configuration values.
const (
	DefaultBinary      = "ellipticMain"
	DefaultWorkDir     = "."
	DefaultHistoryPath = ".paramsweep/history.db"
	DefaultJobs        = 1
)

// Default returns the configuration used when no file exists.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// applyDefaults fills in default values for unset configuration fields.
func applyDefaults(cfg *Config) {
	applySolverDefaults(cfg)
	applyDeviceDefaults(cfg)
	applyArtifactDefaults(cfg)
	applyComparisonDefaults(cfg)
	applySweepDefaults(cfg)
	applySuiteDefaults(cfg)

	if cfg.WorkDir == "" {
		cfg.WorkDir = DefaultWorkDir
	}
	if cfg.History == nil {
		cfg.History = &HistoryConfig{}
	}
	if cfg.History.Path == "" {
		cfg.History.Path = DefaultHistoryPath
	}
}

func applySolverDefaults(cfg *Config) {
	if cfg.Solver == nil {
		cfg.Solver = &SolverConfig{}
	}
	if cfg.Solver.Binary == "" {
		cfg.Solver.Binary = DefaultBinary
	}
	if cfg.Solver.Directory == "" {
		cfg.Solver.Directory = "."
	}
}

func applyDeviceDefaults(cfg *Config) {
	if cfg.Device == nil {
		cfg.Device = &DeviceConfig{}
	}
	if cfg.Device.ThreadModel == "" {
		cfg.Device.ThreadModel = settings.DefaultThreadModel
	}
	if cfg.Device.PlatformNumber == nil {
		n := settings.DefaultPlatformNumber
		cfg.Device.PlatformNumber = &n
	}
	if cfg.Device.DeviceNumber == nil {
		n := settings.DefaultDeviceNumber
		cfg.Device.DeviceNumber = &n
	}
}

func applyArtifactDefaults(cfg *Config) {
	if cfg.Artifacts == nil {
		cfg.Artifacts = &ArtifactsConfig{}
	}
	if len(cfg.Artifacts.Patterns) == 0 {
		cfg.Artifacts.Patterns = []string{report.DefaultArtifactPattern}
	}
}

func applyComparisonDefaults(cfg *Config) {
	if cfg.Comparison == nil {
		cfg.Comparison = &ComparisonConfig{}
	}
	if cfg.Comparison.Tolerance == nil {
		tol := verdict.DefaultTolerance
		cfg.Comparison.Tolerance = &tol
	}
	if cfg.Comparison.Mode == "" {
		cfg.Comparison.Mode = string(verdict.ModeAbsolute)
	}
	if cfg.Comparison.ArrayOrder == "" {
		cfg.Comparison.ArrayOrder = string(ArrayOrderStrict)
	}
}

func applySweepDefaults(cfg *Config) {
	if cfg.Sweep == nil {
		cfg.Sweep = &SweepConfig{}
	}
	if cfg.Sweep.Jobs == 0 {
		cfg.Sweep.Jobs = DefaultJobs
	}
	if cfg.Sweep.ResourceBudget == 0 {
		cfg.Sweep.ResourceBudget = sweep.DefaultBudget
	}
}

func applySuiteDefaults(cfg *Config) {
	for i := range cfg.Suites {
		for j := range cfg.Suites[i].Axes {
			b := cfg.Suites[i].Axes[j].Bound
			if b == nil {
				continue
			}
			if b.Budget == 0 {
				b.Budget = cfg.Sweep.ResourceBudget
			}
			if b.Min == 0 {
				b.Min = sweep.DefaultMinResolution
			}
			if b.Max == 0 {
				b.Max = sweep.DefaultMaxResolution
			}
		}
	}
}
