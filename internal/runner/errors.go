package runner

import (
	"context"
	"errors"
	"fmt"
)

// ErrorKind classifies case failures.
type ErrorKind int

const (
	// KindLaunch means the solver could not be started or its input could
	// not be written.
	KindLaunch ErrorKind = iota
	// KindExit means the solver exited with a non-zero status.
	KindExit
	// KindTimeout means the per-case timeout expired.
	KindTimeout
	// KindMissing means the output had no diagnostic line.
	KindMissing
	// KindMalformed means the diagnostic could not be parsed or was NaN.
	KindMalformed
	// KindCanceled means the sweep was canceled while the case ran.
	KindCanceled
	// KindPanic means the runner itself panicked.
	KindPanic
	// KindInvalid means the case configuration could not be built.
	KindInvalid
)

func (k ErrorKind) String() string {
	switch k {
	case KindLaunch:
		return "launch"
	case KindExit:
		return "exit"
	case KindTimeout:
		return "timeout"
	case KindMissing:
		return "missing diagnostic"
	case KindMalformed:
		return "malformed diagnostic"
	case KindCanceled:
		return "canceled"
	case KindPanic:
		return "panic"
	case KindInvalid:
		return "invalid configuration"
	default:
		return "unknown"
	}
}

// RunError is a case-level failure.
type RunError struct {
	Kind     ErrorKind
	Case     string
	ExitCode int // Only meaningful for KindExit
	Cause    error
}

func (e *RunError) Error() string {
	msg := fmt.Sprintf("case %s: %s", e.Case, e.Kind)
	if e.Kind == KindExit {
		msg += fmt.Sprintf(" status %d", e.ExitCode)
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *RunError) Unwrap() error {
	return e.Cause
}

// KindOf returns the kind of a *RunError in err's chain.
func KindOf(err error) (ErrorKind, bool) {
	var re *RunError
	if errors.As(err, &re) {
		return re.Kind, true
	}
	return 0, false
}

// IsCanceled reports whether err stems from canceling the sweep rather than
// from the case itself.
func IsCanceled(err error) bool {
	if k, ok := KindOf(err); ok && k == KindCanceled {
		return true
	}
	return errors.Is(err, context.Canceled)
}
