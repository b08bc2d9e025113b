package runner

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
)

// DefaultDiagnosticPattern matches lines such as "solution norm = 0.4999"
// or "norm: 4.99e-01". The first capture group is the value.
const DefaultDiagnosticPattern = `(?i)\bnorm\s*[=:]\s*([-+]?(?:\d+\.?\d*|\.\d+)(?:[eE][-+]?\d+)?|[-+]?inf(?:inity)?|nan)`

var defaultDiagnostic = regexp.MustCompile(DefaultDiagnosticPattern)

var (
	// ErrNoDiagnostic is returned when the output has no diagnostic line.
	ErrNoDiagnostic = errors.New("no diagnostic in solver output")
	// ErrBadDiagnostic is returned when the diagnostic is not a usable number.
	ErrBadDiagnostic = errors.New("malformed diagnostic")
)

// CompileDiagnostic compiles a diagnostic pattern. An empty pattern selects
// DefaultDiagnosticPattern. The pattern must have at least one capture group.
func CompileDiagnostic(pattern string) (*regexp.Regexp, error) {
	if pattern == "" {
		return defaultDiagnostic, nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid diagnostic pattern: %w", err)
	}
	if re.NumSubexp() < 1 {
		return nil, fmt.Errorf("diagnostic pattern %q has no capture group", pattern)
	}
	return re, nil
}

// ParseDiagnostic extracts the scalar diagnostic from solver output. When
// the solver prints several matching lines the last one wins, as it
// reports the final state. A nil pattern uses the default.
func ParseDiagnostic(output string, pattern *regexp.Regexp) (float64, error) {
	if pattern == nil {
		pattern = defaultDiagnostic
	}
	matches := pattern.FindAllStringSubmatch(output, -1)
	if len(matches) == 0 {
		return 0, ErrNoDiagnostic
	}
	last := matches[len(matches)-1]
	if len(last) < 2 {
		return 0, fmt.Errorf("%w: pattern has no capture group", ErrBadDiagnostic)
	}
	v, err := strconv.ParseFloat(last[1], 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrBadDiagnostic, last[1])
	}
	if math.IsNaN(v) {
		return 0, fmt.Errorf("%w: NaN", ErrBadDiagnostic)
	}
	return v, nil
}
