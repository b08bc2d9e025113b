package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/AndreyAkinshin/paramsweep/internal/settings"
	"github.com/AndreyAkinshin/paramsweep/internal/suite"
	"github.com/AndreyAkinshin/paramsweep/internal/sweep"
	"github.com/AndreyAkinshin/paramsweep/internal/verdict"
)

// clearEnv blanks the override variables for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	t.Setenv(EnvSolver, "")
	t.Setenv(EnvDevice, "")
	t.Setenv(EnvJobs, "")
}

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

const fullJSON = `{
	"solver": {
		"binary": "bin/ellipticMain",
		"directory": "solvers/elliptic",
		"launcher": ["mpirun", "-np", "1"],
		"env": {"OCCA_CACHE_DIR": "/tmp/occa"},
		"timeout": "90s"
	},
	"device": {"thread_model": "Serial", "platform_number": 0, "device_number": 0},
	"work_dir": "run",
	"artifacts": {"patterns": ["*.vtu", "*.dat"]},
	"comparison": {"tolerance": 1e-8, "mode": "relative"},
	"sweep": {"jobs": 4, "resource_budget": 1e6},
	"history": {"path": "runs.db"},
	"suites": [{
		"name": "hexSmall",
		"reference": 0.25,
		"settings": {"ELEMENT TYPE": 12, "MESH DIMENSION": 3},
		"axes": [
			{"name": "degree", "keys": ["POLYNOMIAL DEGREE"], "range": "1:3:1"},
			{"name": "nx", "keys": ["BOX NX", "BOX NY", "BOX NZ"], "range": "6:200:6",
			 "bound": {"depends_on": "degree"}}
		]
	}]
}`

const fullYAML = `
solver:
  binary: bin/ellipticMain
  directory: solvers/elliptic
  launcher: [mpirun, -np, "1"]
  env:
    OCCA_CACHE_DIR: /tmp/occa
  timeout: 90s
device:
  thread_model: Serial
  platform_number: 0
  device_number: 0
work_dir: run
artifacts:
  patterns: ["*.vtu", "*.dat"]
comparison:
  tolerance: 1.0e-8
  mode: relative
sweep:
  jobs: 4
  resource_budget: 1000000
history:
  path: runs.db
suites:
  - name: hexSmall
    reference: 0.25
    settings:
      ELEMENT TYPE: 12
      MESH DIMENSION: 3
    axes:
      - name: degree
        keys: [POLYNOMIAL DEGREE]
        range: "1:3:1"
      - name: nx
        keys: [BOX NX, BOX NY, BOX NZ]
        range: "6:200:6"
        bound:
          depends_on: degree
`

func TestLoadAndValidate_JSONAndYAMLAgree(t *testing.T) {
	clearEnv(t)

	tests := []struct {
		file    string
		content string
	}{
		{"config.json", fullJSON},
		{"config.yaml", fullYAML},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			cfg, warnings, err := LoadAndValidate(writeConfig(t, tt.file, tt.content))
			if err != nil {
				t.Fatalf("LoadAndValidate() error = %v", err)
			}
			if len(warnings) != 0 {
				t.Errorf("warnings = %v, want none", warnings)
			}

			if got := strings.Join(cfg.Solver.Launcher, " "); got != "mpirun -np 1" {
				t.Errorf("Launcher = %q", got)
			}
			if cfg.Solver.Env["OCCA_CACHE_DIR"] != "/tmp/occa" {
				t.Errorf("Env = %v", cfg.Solver.Env)
			}
			if cfg.Sweep.Jobs != 4 || cfg.Sweep.ResourceBudget != 1e6 {
				t.Errorf("Sweep = %+v", *cfg.Sweep)
			}
			if *cfg.Device.DeviceNumber != 0 {
				t.Errorf("DeviceNumber = %d, want explicit 0 kept", *cfg.Device.DeviceNumber)
			}

			set, err := cfg.SuiteSet()
			if err != nil {
				t.Fatalf("Suites() error = %v", err)
			}
			if got := set.Names(); len(got) != 2 || got[0] != suite.BuiltinName || got[1] != "hexSmall" {
				t.Fatalf("Names() = %v", got)
			}
			hex, _ := set.Lookup("hexSmall")
			if hex.Overrides["ELEMENT TYPE"] == nil {
				t.Errorf("Overrides = %v", hex.Overrides)
			}
			nx := hex.Space.Axes[1]
			if nx.Kind != settings.KindInt || nx.Bound == nil || nx.Bound.Budget != 1e6 {
				t.Errorf("nx axis = %+v", nx)
			}
			// degree 1: sqrt(1e6/4) = 500 -> clamped to 200 -> nx 6..198 (33);
			// degree 2: sqrt(1e6/9) = 333 -> 33 again.
			if got := hex.Space.Count(); got != 66 {
				t.Errorf("Count() = %d, want 66", got)
			}
		})
	}
}

func TestConfig_Converters(t *testing.T) {
	clearEnv(t)

	cfg, _, err := LoadAndValidate(writeConfig(t, "config.json", fullJSON))
	if err != nil {
		t.Fatal(err)
	}
	root := "/proj"

	env := cfg.Environment(root)
	if env.SolverDir != "/proj/solvers/elliptic" || env.Binary != "/proj/bin/ellipticMain" || env.WorkDir != "/proj/run" {
		t.Errorf("Environment() = %+v", env)
	}
	if env.ThreadModel != "Serial" || env.DeviceNumber != 0 {
		t.Errorf("device = %s/%d", env.ThreadModel, env.DeviceNumber)
	}

	r, err := cfg.Runner(root)
	if err != nil {
		t.Fatalf("Runner() error = %v", err)
	}
	if r.Binary != "/proj/bin/ellipticMain" || r.WorkDir != "/proj/run" || r.Timeout != 90*time.Second {
		t.Errorf("Runner() = %+v", r)
	}
	if r.Pattern == nil {
		t.Error("Runner().Pattern is nil")
	}

	opts, err := cfg.ComparisonOptions()
	if err != nil {
		t.Fatal(err)
	}
	if opts.Mode != verdict.ModeRelative || opts.Tolerance != 1e-8 {
		t.Errorf("ComparisonOptions() = %+v", opts)
	}

	cl := cfg.Cleaner(root)
	if cl == nil || cl.Dir != "/proj/run" || len(cl.Patterns) != 2 {
		t.Errorf("Cleaner() = %+v", cl)
	}
	cfg.Artifacts.Keep = true
	if cfg.Cleaner(root) != nil {
		t.Error("Cleaner() with keep = non-nil")
	}

	if got := cfg.HistoryPath(root); got != "/proj/runs.db" {
		t.Errorf("HistoryPath() = %q", got)
	}
}

func TestDefault(t *testing.T) {
	t.Parallel()
	cfg := Default()

	if cfg.Solver.Binary != DefaultBinary {
		t.Errorf("Solver.Binary = %q, want %q", cfg.Solver.Binary, DefaultBinary)
	}
	if *cfg.Comparison.Tolerance != verdict.DefaultTolerance || cfg.Comparison.Mode != "absolute" {
		t.Errorf("Comparison = %+v", *cfg.Comparison)
	}
	if cfg.Sweep.ResourceBudget != sweep.DefaultBudget || cfg.Sweep.Jobs != DefaultJobs {
		t.Errorf("Sweep = %+v", *cfg.Sweep)
	}
	if *cfg.Device.DeviceNumber != settings.DefaultDeviceNumber {
		t.Errorf("DeviceNumber = %d", *cfg.Device.DeviceNumber)
	}
	if _, err := Validate(cfg); err != nil {
		t.Errorf("Validate(Default()) = %v", err)
	}

	// A bare binary name is left for PATH lookup.
	if got := cfg.Environment("/proj").Binary; got != DefaultBinary {
		t.Errorf("Environment().Binary = %q, want %q", got, DefaultBinary)
	}

	set, err := cfg.SuiteSet()
	if err != nil {
		t.Fatal(err)
	}
	if len(set) != 1 || set[0].Space.Count() != 8910 {
		t.Errorf("default suites = %v", set.Names())
	}
}

func TestLoad_Errors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		file    string
		content string
		want    string
	}{
		{"missing file", "", "", "failed to read config file"},
		{"bad json", "config.json", `{"solver": `, "failed to parse config file"},
		{"bad yaml", "config.yaml", "solver: [unclosed", "failed to parse config file"},
		{"non-string yaml key", "config.yml", "suites:\n  - name: s\n    settings:\n      1: 2\n", "not a string"},
		{"wrong type", "config.json", `{"sweep": {"jobs": "many"}}`, "failed to parse config file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			path := filepath.Join(t.TempDir(), "absent.json")
			if tt.file != "" {
				path = writeConfig(t, tt.file, tt.content)
			}
			_, err := Load(path)
			if err == nil {
				t.Fatal("Load() expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want to contain %q", err, tt.want)
			}
		})
	}
}

func TestLoad_EmptyYAML(t *testing.T) {
	t.Parallel()
	cfg, err := LoadWithDefaults(writeConfig(t, "config.yaml", "# nothing yet\n"))
	if err != nil {
		t.Fatalf("LoadWithDefaults() error = %v", err)
	}
	if cfg.Solver.Binary != DefaultBinary {
		t.Errorf("Solver.Binary = %q", cfg.Solver.Binary)
	}
}

func TestLoadAndValidate_SchemaError(t *testing.T) {
	clearEnv(t)
	_, _, err := LoadAndValidate(writeConfig(t, "config.json", `{"comparison": {"mode": "fuzzy"}}`))
	if err == nil || !strings.Contains(err.Error(), "config validation failed") {
		t.Errorf("LoadAndValidate() error = %v, want schema failure", err)
	}
}

func TestLoadAndValidate_ExplicitZeroToleranceKept(t *testing.T) {
	clearEnv(t)
	for _, tt := range []struct{ file, content string }{
		{"config.json", `{"comparison": {"tolerance": 0}}`},
		{"config.yaml", "comparison:\n  tolerance: 0\n"},
	} {
		cfg, _, err := LoadAndValidate(writeConfig(t, tt.file, tt.content))
		if err != nil {
			t.Fatalf("%s: LoadAndValidate() error = %v", tt.file, err)
		}
		if cfg.Comparison.Tolerance == nil || *cfg.Comparison.Tolerance != 0 {
			t.Errorf("%s: Comparison.Tolerance = %v, want 0", tt.file, cfg.Comparison.Tolerance)
		}
		opts, err := cfg.ComparisonOptions()
		if err != nil {
			t.Fatal(err)
		}
		if opts.Tolerance != 0 {
			t.Errorf("%s: ComparisonOptions().Tolerance = %v, want 0", tt.file, opts.Tolerance)
		}
	}
}

func TestApplyEnv(t *testing.T) {
	t.Parallel()
	vars := map[string]string{
		EnvSolver: "/opt/solver/ellipticMain",
		EnvDevice: "3",
		EnvJobs:   "8",
	}
	cfg := Default()
	if err := ApplyEnv(cfg, func(k string) string { return vars[k] }); err != nil {
		t.Fatal(err)
	}
	if cfg.Solver.Binary != "/opt/solver/ellipticMain" || *cfg.Device.DeviceNumber != 3 || cfg.Sweep.Jobs != 8 {
		t.Errorf("after ApplyEnv: binary=%q device=%d jobs=%d", cfg.Solver.Binary, *cfg.Device.DeviceNumber, cfg.Sweep.Jobs)
	}

	bad := []map[string]string{
		{EnvDevice: "gpu"},
		{EnvDevice: "-1"},
		{EnvJobs: "all"},
	}
	for _, b := range bad {
		err := ApplyEnv(Default(), func(k string) string { return b[k] })
		var ve *ValidationError
		if !errors.As(err, &ve) {
			t.Errorf("ApplyEnv(%v) = %v, want ValidationError", b, err)
		}
	}
}

func TestLoadAndValidate_EnvOverride(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvJobs, "2")
	cfg, _, err := LoadAndValidate(writeConfig(t, "config.json", fullJSON))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Sweep.Jobs != 2 {
		t.Errorf("Jobs = %d, want 2 from %s", cfg.Sweep.Jobs, EnvJobs)
	}
}
