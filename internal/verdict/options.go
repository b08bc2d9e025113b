// Package verdict decides whether a measured diagnostic matches its
// reference value.
package verdict

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats/scalar"
)

// Mode is how a tolerance is applied.
type Mode string

const (
	// ModeAbsolute passes when |measured-reference| <= tolerance.
	ModeAbsolute Mode = "absolute"
	// ModeRelative passes when the difference is within tolerance times the
	// larger magnitude of the two values.
	ModeRelative Mode = "relative"
	// ModeULP passes when the values are at most tolerance representable
	// doubles apart. The tolerance is truncated to an integer.
	ModeULP Mode = "ulp"
)

// DefaultTolerance is the absolute tolerance used when none is configured.
const DefaultTolerance = 1e-6

// Options configures comparisons.
type Options struct {
	Tolerance float64
	Mode      Mode

	// NaNEqualsNaN only affects Compare; a NaN measurement never passes Judge.
	NaNEqualsNaN bool
	// Unordered makes Compare match array elements in any order.
	Unordered bool
}

// DefaultOptions returns an absolute tolerance of 1e-6.
func DefaultOptions() Options {
	return Options{
		Tolerance: DefaultTolerance,
		Mode:      ModeAbsolute,
	}
}

// ParseMode converts a configuration string to a Mode. The empty string
// selects ModeAbsolute.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeAbsolute:
		return ModeAbsolute, nil
	case ModeRelative, ModeULP:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("invalid tolerance mode %q (must be \"absolute\", \"relative\", or \"ulp\")", s)
	}
}

// Validate checks the tolerance and mode.
func (o Options) Validate() error {
	if _, err := ParseMode(string(o.Mode)); err != nil {
		return err
	}
	if math.IsNaN(o.Tolerance) || o.Tolerance < 0 {
		return fmt.Errorf("tolerance must be a non-negative number, got %v", o.Tolerance)
	}
	return nil
}

// Within reports whether actual matches expected under the options. Equal
// infinities match; NaN never does.
func (o Options) Within(expected, actual float64) bool {
	if math.IsNaN(expected) || math.IsNaN(actual) {
		return false
	}
	if math.IsInf(expected, 0) || math.IsInf(actual, 0) {
		return expected == actual
	}
	switch o.Mode {
	case ModeRelative:
		if expected == 0 {
			return math.Abs(actual) <= o.Tolerance
		}
		return scalar.EqualWithinRel(expected, actual, o.Tolerance)
	case ModeULP:
		return scalar.EqualWithinULP(expected, actual, uint(o.Tolerance))
	default:
		return scalar.EqualWithinAbs(expected, actual, o.Tolerance)
	}
}

func (o Options) String() string {
	mode := o.Mode
	if mode == "" {
		mode = ModeAbsolute
	}
	return fmt.Sprintf("%v %s", o.Tolerance, mode)
}
