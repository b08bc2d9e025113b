package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/AndreyAkinshin/paramsweep/internal/report"
	"github.com/AndreyAkinshin/paramsweep/internal/runner"
	"github.com/AndreyAkinshin/paramsweep/internal/settings"
	"github.com/AndreyAkinshin/paramsweep/internal/suite"
	"github.com/AndreyAkinshin/paramsweep/internal/sweep"
	"github.com/AndreyAkinshin/paramsweep/internal/verdict"
)

// resolve makes path absolute against root unless it already is.
func resolve(root, path string) string {
	if path == "" || filepath.IsAbs(path) || root == "" {
		return path
	}
	return filepath.Join(root, path)
}

// Environment returns the solver environment with relative paths resolved
// against root.
func (c *Config) Environment(root string) settings.Environment {
	env := settings.DefaultEnvironment()
	env.SolverDir = resolve(root, c.Solver.Directory)
	env.Binary = c.binaryPath(root)
	env.WorkDir = resolve(root, c.WorkDir)
	env.ThreadModel = c.Device.ThreadModel
	env.PlatformNumber = *c.Device.PlatformNumber
	env.DeviceNumber = *c.Device.DeviceNumber
	return env
}

// binaryPath resolves a binary given as a path against root. A bare name
// is left for PATH lookup.
func (c *Config) binaryPath(root string) string {
	b := c.Solver.Binary
	if !strings.ContainsRune(b, '/') && !strings.ContainsRune(b, filepath.Separator) {
		return b
	}
	return resolve(root, b)
}

// Timeout returns the per-case timeout; zero means none.
func (c *Config) Timeout() (time.Duration, error) {
	if c.Solver.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Solver.Timeout)
	if err != nil {
		return 0, &ValidationError{Field: "solver.timeout", Message: err.Error()}
	}
	if d < 0 {
		return 0, &ValidationError{Field: "solver.timeout", Message: "must not be negative"}
	}
	return d, nil
}

// Runner returns a process runner for the configured solver.
func (c *Config) Runner(root string) (*runner.ProcessRunner, error) {
	timeout, err := c.Timeout()
	if err != nil {
		return nil, err
	}
	pattern, err := runner.CompileDiagnostic(c.Comparison.DiagnosticPattern)
	if err != nil {
		return nil, &ValidationError{Field: "comparison.diagnostic_pattern", Message: err.Error()}
	}
	env := c.Environment(root)
	r := runner.NewProcessRunner(env.Binary, env.WorkDir)
	r.Launcher = c.Solver.Launcher
	r.Env = c.Solver.Env
	r.Timeout = timeout
	r.Pattern = pattern
	return r, nil
}

// ComparisonOptions returns the verdict options.
func (c *Config) ComparisonOptions() (verdict.Options, error) {
	mode, err := verdict.ParseMode(c.Comparison.Mode)
	if err != nil {
		return verdict.Options{}, &ValidationError{Field: "comparison.mode", Message: err.Error()}
	}
	tol := verdict.DefaultTolerance
	if c.Comparison.Tolerance != nil {
		tol = *c.Comparison.Tolerance
	}
	opts := verdict.Options{
		Tolerance:    tol,
		Mode:         mode,
		NaNEqualsNaN: c.Comparison.NaNEqualsNaN,
		Unordered:    ArrayOrder(c.Comparison.ArrayOrder) == ArrayOrderUnordered,
	}
	if err := opts.Validate(); err != nil {
		return verdict.Options{}, &ValidationError{Field: "comparison.tolerance", Message: err.Error()}
	}
	return opts, nil
}

// Cleaner returns the artifact cleaner for the work directory, or nil when
// artifacts are kept.
func (c *Config) Cleaner(root string) *report.Cleaner {
	if c.Artifacts.Keep {
		return nil
	}
	cl := report.NewCleaner(resolve(root, c.WorkDir))
	cl.Patterns = append([]string(nil), c.Artifacts.Patterns...)
	return cl
}

// HistoryPath returns the history database path resolved against root.
func (c *Config) HistoryPath(root string) string {
	return resolve(root, c.History.Path)
}

// SuiteSet returns the built-in suite followed by the configured ones. A
// configured suite named like the built-in one replaces it.
func (c *Config) SuiteSet() (suite.Set, error) {
	builtin := suite.Builtin()
	builtin.Space = sweep.EllipticQuadSpace(c.Sweep.ResourceBudget)

	set := suite.Set{builtin}
	for i, sc := range c.Suites {
		s, err := sc.Suite(c.Sweep.ResourceBudget)
		if err != nil {
			return nil, &ValidationError{Field: fmt.Sprintf("suites[%d]", i), Message: err.Error()}
		}
		if s.Name == suite.BuiltinName {
			set[0] = s
			continue
		}
		set = append(set, s)
	}
	return set, nil
}

// Suite converts the declaration. Without axes the suite sweeps the default
// elliptic space under budget.
func (sc SuiteConfig) Suite(budget float64) (suite.Suite, error) {
	if sc.Reference == nil {
		return suite.Suite{}, fmt.Errorf("suite %q: reference is required", sc.Name)
	}
	s := suite.Suite{
		Name:      sc.Name,
		Reference: *sc.Reference,
		Overrides: sc.Settings,
	}
	if len(sc.Axes) == 0 {
		s.Space = sweep.EllipticQuadSpace(budget)
		return s, nil
	}
	for _, ac := range sc.Axes {
		a, err := ac.Axis()
		if err != nil {
			return suite.Suite{}, fmt.Errorf("suite %q: %w", sc.Name, err)
		}
		s.Space.Axes = append(s.Space.Axes, a)
	}
	return s, nil
}

// Axis converts the declaration.
func (ac AxisConfig) Axis() (sweep.Axis, error) {
	a := sweep.Axis{
		Name:   ac.Name,
		Keys:   ac.Keys,
		Values: ac.Values,
	}

	switch ac.Kind {
	case "int":
		a.Kind = settings.KindInt
	case "float":
		a.Kind = settings.KindFloat
	case "":
		if len(ac.Keys) == 0 {
			return sweep.Axis{}, fmt.Errorf("axis %q drives no settings keys", ac.Name)
		}
		k, ok := settings.KeyKind(ac.Keys[0])
		if !ok {
			return sweep.Axis{}, fmt.Errorf("axis %q drives unknown setting %q", ac.Name, ac.Keys[0])
		}
		a.Kind = k
	default:
		return sweep.Axis{}, fmt.Errorf("axis %q: kind must be \"int\" or \"float\", got %q", ac.Name, ac.Kind)
	}

	switch {
	case ac.Range != "" && len(ac.Values) > 0:
		return sweep.Axis{}, fmt.Errorf("axis %q: range and values are mutually exclusive", ac.Name)
	case ac.Range != "":
		r, err := sweep.ParseRange(ac.Range)
		if err != nil {
			return sweep.Axis{}, fmt.Errorf("axis %q: %w", ac.Name, err)
		}
		a.Range = r
	case len(ac.Values) == 0:
		return sweep.Axis{}, fmt.Errorf("axis %q: one of range or values is required", ac.Name)
	}

	if ac.Bound != nil {
		a.Bound = &sweep.Bound{
			DependsOn: ac.Bound.DependsOn,
			Budget:    ac.Bound.Budget,
			Min:       ac.Bound.Min,
			Max:       ac.Bound.Max,
		}
	}
	return a, nil
}
