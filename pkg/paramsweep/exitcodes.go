// Package paramsweep provides public constants and utilities for CI systems
// integrating with the paramsweep CLI.
package paramsweep

// Exit codes returned by the paramsweep CLI.
//
// A sweep exits with the number of failed cases, so the low range is
// reserved for failure counts. Harness-level errors use the top of the
// byte range where a failure count can never land.
const (
	// ExitSuccess indicates every case in the sweep passed.
	ExitSuccess = 0

	// MaxFailureExit is the largest exit status used for a failure count.
	// Counts above it are reported as MaxFailureExit so that they never
	// wrap modulo 256 into a passing status.
	MaxFailureExit = 250

	// ExitConfigError indicates a configuration error (invalid config, bad suite, etc.).
	ExitConfigError = 251

	// ExitEnvError indicates an environment error (solver binary missing, unwritable work dir, etc.).
	ExitEnvError = 252

	// ExitRuntimeError indicates the harness itself failed before producing a result.
	ExitRuntimeError = 253
)

// FailureExitCode maps a failed-case count to the process exit status.
func FailureExitCode(failed int) int {
	switch {
	case failed <= 0:
		return ExitSuccess
	case failed > MaxFailureExit:
		return MaxFailureExit
	default:
		return failed
	}
}

// IsFailureCount reports whether an exit status carries a failure count
// rather than a harness error.
func IsFailureCount(code int) bool {
	return code >= 1 && code <= MaxFailureExit
}
