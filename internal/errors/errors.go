// Package errors provides structured error types and exit codes for paramsweep.
package errors

import (
	stderrors "errors"
	"fmt"

	"github.com/AndreyAkinshin/paramsweep/pkg/paramsweep"
)

// Exit codes for harness-level failures. Failed cases use the range
// 1..paramsweep.MaxFailureExit and never come from this package.
const (
	ExitSuccess          = paramsweep.ExitSuccess
	ExitConfigError      = paramsweep.ExitConfigError
	ExitEnvironmentError = paramsweep.ExitEnvError
	ExitRuntimeError     = paramsweep.ExitRuntimeError
)

// ErrorKind represents the type of error.
type ErrorKind int

const (
	KindRuntime ErrorKind = iota
	KindConfig
	KindNotFound
	KindValidation
	KindEnvironment
)

// SweepError is the base error type for paramsweep.
type SweepError struct {
	Kind    ErrorKind
	Message string
	Suite   string // Suite name if applicable
	Case    string // Case name if applicable
	Cause   error  // Underlying error
}

func (e *SweepError) Error() string {
	msg := e.Message
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	if e.Suite != "" && e.Case != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Suite, e.Case, msg)
	}
	if e.Suite != "" {
		return fmt.Sprintf("[%s] %s", e.Suite, msg)
	}
	return msg
}

func (e *SweepError) Unwrap() error {
	return e.Cause
}

// ExitCode returns the appropriate exit code for this error.
func (e *SweepError) ExitCode() int {
	switch e.Kind {
	case KindConfig, KindNotFound, KindValidation:
		return ExitConfigError
	case KindEnvironment:
		return ExitEnvironmentError
	default:
		return ExitRuntimeError
	}
}

// New creates a new runtime error.
func New(message string) *SweepError {
	return &SweepError{
		Kind:    KindRuntime,
		Message: message,
	}
}

// Newf creates a new runtime error with formatting.
func Newf(format string, args ...interface{}) *SweepError {
	return New(fmt.Sprintf(format, args...))
}

// Config creates a new configuration error.
func Config(message string) *SweepError {
	return &SweepError{
		Kind:    KindConfig,
		Message: message,
	}
}

// Configf creates a new configuration error with formatting.
func Configf(format string, args ...interface{}) *SweepError {
	return Config(fmt.Sprintf(format, args...))
}

// Environment creates a new environment error.
func Environment(message string) *SweepError {
	return &SweepError{
		Kind:    KindEnvironment,
		Message: message,
	}
}

// Environmentf creates a new environment error with formatting.
func Environmentf(format string, args ...interface{}) *SweepError {
	return Environment(fmt.Sprintf(format, args...))
}

// Validation wraps a validation failure so it maps to the config exit code.
func Validation(err error, message string) *SweepError {
	return &SweepError{
		Kind:    KindValidation,
		Message: message,
		Cause:   err,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) *SweepError {
	return &SweepError{
		Kind:    KindRuntime,
		Message: message,
		Cause:   err,
	}
}

// SuiteError creates an error for a specific suite and case.
func SuiteError(suite, caseName, message string) *SweepError {
	return &SweepError{
		Kind:    KindRuntime,
		Suite:   suite,
		Case:    caseName,
		Message: message,
	}
}

// NotFound creates a not found error.
func NotFound(what, name string) *SweepError {
	return &SweepError{
		Kind:    KindNotFound,
		Message: fmt.Sprintf("%s not found: %s", what, name),
	}
}

// GetExitCode returns the exit code for an error.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var se *SweepError
	if stderrors.As(err, &se) {
		return se.ExitCode()
	}
	return ExitRuntimeError
}
