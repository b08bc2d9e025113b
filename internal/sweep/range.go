// Package sweep enumerates the combinatorial parameter spaces that a
// regression suite runs over.
package sweep

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/AndreyAkinshin/paramsweep/internal/settings"
)

// rangeEpsilon absorbs accumulated floating point error when counting the
// values of a float range, so [0.1, 1.1) with step 0.1 yields ten values.
const rangeEpsilon = 1e-9

// Range is the half-open interval [Start, Stop) walked in steps of Step.
type Range struct {
	Start float64
	Stop  float64
	Step  float64
}

// ParseRange parses a "start:stop:step" string into a Range.
func ParseRange(s string) (Range, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return Range{}, fmt.Errorf("invalid range format %q: expected start:stop:step", s)
	}

	start, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return Range{}, fmt.Errorf("invalid start value %q: %w", parts[0], err)
	}

	stop, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return Range{}, fmt.Errorf("invalid stop value %q: %w", parts[1], err)
	}

	step, err := strconv.ParseFloat(strings.TrimSpace(parts[2]), 64)
	if err != nil {
		return Range{}, fmt.Errorf("invalid step value %q: %w", parts[2], err)
	}

	r := Range{Start: start, Stop: stop, Step: step}
	if err := r.Validate(); err != nil {
		return Range{}, err
	}
	return r, nil
}

// Validate checks that the range has a positive, finite step and finite ends.
// An empty range is not an error here; Space.Validate decides whether that
// is acceptable for a given axis.
func (r Range) Validate() error {
	for _, v := range []float64{r.Start, r.Stop, r.Step} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("range %s: values must be finite", r)
		}
	}
	if r.Step <= 0 {
		return fmt.Errorf("range %s: step must be positive, got %v", r, r.Step)
	}
	return nil
}

// Len returns the number of values in the range.
func (r Range) Len() int {
	if r.Step <= 0 || r.Stop <= r.Start {
		return 0
	}
	n := math.Ceil((r.Stop-r.Start)/r.Step - rangeEpsilon)
	if n <= 0 {
		return 0
	}
	return int(n)
}

// Value returns the i-th value of the range, computed from Start rather than
// accumulated, and snapped to 12 decimals.
func (r Range) Value(i int) float64 {
	return settings.Snap(r.Start + float64(i)*r.Step)
}

// Values materializes the range.
func (r Range) Values() []float64 {
	n := r.Len()
	out := make([]float64, n)
	for i := range n {
		out[i] = r.Value(i)
	}
	return out
}

// WithStop returns a copy of r ending at stop.
func (r Range) WithStop(stop float64) Range {
	r.Stop = stop
	return r
}

func (r Range) String() string {
	return fmt.Sprintf("%s:%s:%s",
		settings.FormatFloat(r.Start), settings.FormatFloat(r.Stop), settings.FormatFloat(r.Step))
}
