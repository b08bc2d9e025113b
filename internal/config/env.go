package config

import (
	"strconv"
	"strings"
)

// Environment variables that override the configuration file.
const (
	EnvSolver = "PARAMSWEEP_SOLVER"
	EnvDevice = "PARAMSWEEP_DEVICE"
	EnvJobs   = "PARAMSWEEP_JOBS"
)

// ApplyEnv overrides the solver binary, device number and job count from
// the environment. getenv is usually os.Getenv. Empty variables are ignored.
func ApplyEnv(cfg *Config, getenv func(string) string) error {
	if v := strings.TrimSpace(getenv(EnvSolver)); v != "" {
		if cfg.Solver == nil {
			cfg.Solver = &SolverConfig{}
		}
		cfg.Solver.Binary = v
	}

	if v := strings.TrimSpace(getenv(EnvDevice)); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return &ValidationError{Field: EnvDevice, Message: "must be a non-negative integer"}
		}
		if cfg.Device == nil {
			cfg.Device = &DeviceConfig{}
		}
		cfg.Device.DeviceNumber = &n
	}

	if v := strings.TrimSpace(getenv(EnvJobs)); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return &ValidationError{Field: EnvJobs, Message: "must be an integer"}
		}
		if cfg.Sweep == nil {
			cfg.Sweep = &SweepConfig{}
		}
		cfg.Sweep.Jobs = n
	}
	return nil
}
