// Package config provides loading and validation for the paramsweep
// configuration file (.paramsweep/config.json or config.yaml).
package config

// Config represents the complete configuration file.
type Config struct {
	Solver     *SolverConfig     `json:"solver,omitempty"`
	Device     *DeviceConfig     `json:"device,omitempty"`
	WorkDir    string            `json:"work_dir,omitempty"`
	Artifacts  *ArtifactsConfig  `json:"artifacts,omitempty"`
	Comparison *ComparisonConfig `json:"comparison,omitempty"`
	Sweep      *SweepConfig      `json:"sweep,omitempty"`
	History    *HistoryConfig    `json:"history,omitempty"`
	Suites     []SuiteConfig     `json:"suites,omitempty"`
}

// SolverConfig locates the solver and describes how to launch it.
type SolverConfig struct {
	Binary    string            `json:"binary,omitempty"`
	Directory string            `json:"directory,omitempty"` // Solver source root holding data/ and the map kernels
	Launcher  []string          `json:"launcher,omitempty"`  // e.g. ["mpirun", "-np", "1"]
	Env       map[string]string `json:"env,omitempty"`
	Timeout   string            `json:"timeout,omitempty"` // Go duration, e.g. "10m"
}

// DeviceConfig selects the compute device passed to every case.
type DeviceConfig struct {
	ThreadModel    string `json:"thread_model,omitempty"`
	PlatformNumber *int   `json:"platform_number,omitempty"`
	DeviceNumber   *int   `json:"device_number,omitempty"`
}

// ArtifactsConfig configures cleanup of solver output files.
type ArtifactsConfig struct {
	Patterns []string `json:"patterns,omitempty"`
	Keep     bool     `json:"keep,omitempty"`
}

// ComparisonConfig defines how measured values are compared to references.
type ComparisonConfig struct {
	Tolerance         *float64 `json:"tolerance,omitempty"` // nil means verdict.DefaultTolerance
	Mode              string   `json:"mode,omitempty"`      // "absolute", "relative", or "ulp"
	DiagnosticPattern string   `json:"diagnostic_pattern,omitempty"`
	ArrayOrder        string   `json:"array_order,omitempty"` // "strict" or "unordered"; report checks only
	NaNEqualsNaN      bool     `json:"nan_equals_nan,omitempty"`
}

// SweepConfig configures execution of a sweep.
type SweepConfig struct {
	Jobs           int     `json:"jobs,omitempty"`
	ResourceBudget float64 `json:"resource_budget,omitempty"`
	Suite          string  `json:"suite,omitempty"` // Suite run when none is named on the command line
}

// HistoryConfig configures the run history database.
type HistoryConfig struct {
	Path string `json:"path,omitempty"`
}

// SuiteConfig declares a suite: fixed setting overrides plus the axes swept.
type SuiteConfig struct {
	Name      string         `json:"name"`
	Reference *float64       `json:"reference"`
	Settings  map[string]any `json:"settings,omitempty"`
	Axes      []AxisConfig   `json:"axes,omitempty"`
}

// AxisConfig declares one sweep axis. Exactly one of Range and Values is set.
type AxisConfig struct {
	Name   string       `json:"name"`
	Keys   []string     `json:"keys"`
	Kind   string       `json:"kind,omitempty"`  // "int" or "float"; defaults to the kind of the first key
	Range  string       `json:"range,omitempty"` // "start:stop:step", stop exclusive
	Values []float64    `json:"values,omitempty"`
	Bound  *BoundConfig `json:"bound,omitempty"`
}

// BoundConfig caps the axis range stop at the resolution bound computed from
// an outer axis.
type BoundConfig struct {
	DependsOn string  `json:"depends_on"`
	Budget    float64 `json:"budget,omitempty"`
	Min       int     `json:"min,omitempty"`
	Max       int     `json:"max,omitempty"`
}

// ArrayOrder represents how array elements are compared.
type ArrayOrder string

const (
	// ArrayOrderStrict requires elements to match in order.
	ArrayOrderStrict ArrayOrder = "strict"
	// ArrayOrderUnordered allows elements to match in any order (set comparison).
	ArrayOrderUnordered ArrayOrder = "unordered"
)
