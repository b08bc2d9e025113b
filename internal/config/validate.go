package config

import (
	"fmt"
	"math"
	"regexp"

	"github.com/AndreyAkinshin/paramsweep/internal/harness"
	"github.com/AndreyAkinshin/paramsweep/internal/suite"
)

// Suite names become file name prefixes for every case, so they are kept
// to a portable character set.
var suiteNamePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_.-]*$`)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks a configuration with defaults applied for errors and
// returns warnings for non-fatal issues.
func Validate(cfg *Config) (warnings []string, err error) {
	if err := validateSolver(cfg); err != nil {
		return nil, err
	}
	if err := validateDevice(cfg); err != nil {
		return nil, err
	}
	if _, err := cfg.ComparisonOptions(); err != nil {
		return nil, err
	}
	if _, err := cfg.Runner(""); err != nil {
		return nil, err
	}
	if err := validateSweep(cfg); err != nil {
		return nil, err
	}
	return validateSuites(cfg)
}

func validateSolver(cfg *Config) error {
	if cfg.Solver.Binary == "" {
		return &ValidationError{Field: "solver.binary", Message: "is required"}
	}
	if _, err := cfg.Timeout(); err != nil {
		return err
	}
	return nil
}

func validateDevice(cfg *Config) error {
	if *cfg.Device.PlatformNumber < 0 {
		return &ValidationError{Field: "device.platform_number", Message: "must not be negative"}
	}
	if *cfg.Device.DeviceNumber < 0 {
		return &ValidationError{Field: "device.device_number", Message: "must not be negative"}
	}
	return nil
}

func validateSweep(cfg *Config) error {
	if cfg.Sweep.Jobs > harness.MaxJobs {
		return &ValidationError{
			Field:   "sweep.jobs",
			Message: fmt.Sprintf("must be at most %d", harness.MaxJobs),
		}
	}
	b := cfg.Sweep.ResourceBudget
	if !(b > 0) || math.IsInf(b, 0) {
		return &ValidationError{Field: "sweep.resource_budget", Message: "must be a positive number"}
	}
	return nil
}

func validateSuites(cfg *Config) ([]string, error) {
	var warnings []string
	seen := make(map[string]bool)
	for i, sc := range cfg.Suites {
		field := fmt.Sprintf("suites[%d].name", i)
		if err := ValidateSuiteName(sc.Name); err != nil {
			return nil, &ValidationError{Field: field, Message: err.(*ValidationError).Message}
		}
		if seen[sc.Name] {
			return nil, &ValidationError{Field: field, Message: fmt.Sprintf("duplicate suite %q", sc.Name)}
		}
		seen[sc.Name] = true
		if sc.Name == suite.BuiltinName {
			warnings = append(warnings, fmt.Sprintf("suite %q replaces the built-in suite", sc.Name))
		}
	}

	set, err := cfg.SuiteSet()
	if err != nil {
		return nil, err
	}
	env := cfg.Environment("")
	for _, s := range set {
		if err := s.Validate(env); err != nil {
			return nil, &ValidationError{Field: "suites", Message: err.Error()}
		}
	}

	if cfg.Sweep.Suite != "" {
		if _, ok := set.Lookup(cfg.Sweep.Suite); !ok {
			return nil, &ValidationError{
				Field:   "sweep.suite",
				Message: fmt.Sprintf("unknown suite %q", cfg.Sweep.Suite),
			}
		}
	}
	return warnings, nil
}

// ValidateSuiteName checks if a suite name is valid.
func ValidateSuiteName(name string) error {
	if name == "" {
		return &ValidationError{Field: "suite name", Message: "is required"}
	}
	if len(name) > 128 {
		return &ValidationError{Field: "suite name", Message: "must be 128 characters or less"}
	}
	if !suiteNamePattern.MatchString(name) {
		return &ValidationError{
			Field:   "suite name",
			Message: "must match pattern ^[A-Za-z][A-Za-z0-9_.-]*$",
		}
	}
	return nil
}
