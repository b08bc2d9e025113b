// Package suite ties a sweep space to the solver parameters it varies and
// the reference value every case is compared against.
package suite

import (
	"fmt"
	"iter"
	"math"
	"strconv"

	"github.com/AndreyAkinshin/paramsweep/internal/settings"
	"github.com/AndreyAkinshin/paramsweep/internal/sweep"
)

// BuiltinName is the name of the built-in mapped quad suite.
const BuiltinName = "testEllipticQuad_C0"

// BuiltinReference is the expected diagnostic norm of the built-in suite.
const BuiltinReference = 0.499999999969716

// Suite is a named sweep whose cases share one reference value.
type Suite struct {
	Name      string
	Reference float64
	Overrides map[string]any // Fixed settings applied before each point
	Space     sweep.Space
}

// Case is one enumerated point with its materialized configuration. When
// the point could not be built, Err is set and Configuration carries only
// the case name and reference.
type Case struct {
	Index         int
	Point         sweep.Point
	Configuration *settings.Configuration
	Err           error
}

// CaseName returns the name of the case at index.
func (s Suite) CaseName(index int) string {
	return s.Name + "_" + strconv.Itoa(index)
}

// Validate checks everything that could fail while building configurations,
// so that a sweep never stops halfway because of a bad suite definition.
func (s Suite) Validate(env settings.Environment) error {
	if s.Name == "" {
		return fmt.Errorf("suite name is required")
	}
	if err := s.Space.Validate(); err != nil {
		return fmt.Errorf("suite %q: %w", s.Name, err)
	}
	base := settings.DefaultParams(env)
	if err := base.Apply(s.Overrides); err != nil {
		return fmt.Errorf("suite %q: %w", s.Name, err)
	}
	for _, a := range s.Space.Axes {
		if err := checkAxisKeys(a); err != nil {
			return fmt.Errorf("suite %q: %w", s.Name, err)
		}
	}
	// The first point exercises every axis key with a real value.
	if p, ok := s.Space.At(0); ok {
		if err := p.Apply(&base); err != nil {
			return fmt.Errorf("suite %q: %w", s.Name, err)
		}
	}
	return nil
}

// Build materializes the configuration for one point.
func (s Suite) Build(env settings.Environment, index int, p sweep.Point) (*settings.Configuration, error) {
	params := settings.DefaultParams(env)
	if err := params.Apply(s.Overrides); err != nil {
		return nil, err
	}
	if err := p.Apply(&params); err != nil {
		return nil, err
	}
	return settings.Build(s.CaseName(index), s.Reference, params), nil
}

// Configurations lazily enumerates the cases of the suite. Build errors
// cannot occur for a suite that passed Validate; should one occur anyway,
// the case is still yielded with Err set so that it is counted.
func (s Suite) Configurations(env settings.Environment) iter.Seq2[int, Case] {
	return func(yield func(int, Case) bool) {
		for i, p := range s.Space.Points() {
			c := Case{Index: i, Point: p}
			c.Configuration, c.Err = s.Build(env, i, p)
			if c.Err != nil {
				c.Configuration = settings.NewConfiguration(s.CaseName(i), s.Reference)
			}
			if !yield(i, c) {
				return
			}
		}
	}
}

// checkAxisKeys verifies that every key driven by the axis exists and can
// hold every value the axis produces. A float axis may drive an integer
// key only when all its values are integral; for a range that holds
// exactly when its start and step are.
func checkAxisKeys(a sweep.Axis) error {
	for _, key := range a.Keys {
		kind, ok := settings.KeyKind(key)
		if !ok {
			return fmt.Errorf("axis %q drives unknown setting %q", a.Name, key)
		}
		if kind != settings.KindInt || a.Kind == settings.KindInt {
			continue
		}
		if v, ok := firstFractional(a); ok {
			return fmt.Errorf("axis %q: float value %v does not fit integer setting %q", a.Name, v, key)
		}
	}
	return nil
}

func firstFractional(a sweep.Axis) (float64, bool) {
	candidates := a.Values
	if len(candidates) == 0 {
		candidates = []float64{a.Range.Start, a.Range.Step}
	}
	for _, v := range candidates {
		if v != math.Trunc(v) {
			return v, true
		}
	}
	return 0, false
}

// Builtin returns the mapped quad suite: quadrilateral elements in two
// dimensions with a multigrid preconditioner, swept over the default
// elliptic space.
func Builtin() Suite {
	return Suite{
		Name:      BuiltinName,
		Reference: BuiltinReference,
		Overrides: map[string]any{
			"ELEMENT TYPE":   4,
			"MESH DIMENSION": 2,
			"PRECONDITIONER": "MULTIGRID",
		},
		Space: sweep.EllipticQuadSpace(sweep.DefaultBudget),
	}
}

// Set is a collection of suites addressable by name.
type Set []Suite

// Lookup finds a suite by name.
func (ss Set) Lookup(name string) (Suite, bool) {
	for _, s := range ss {
		if s.Name == name {
			return s, true
		}
	}
	return Suite{}, false
}

// Names returns suite names in declaration order.
func (ss Set) Names() []string {
	names := make([]string, len(ss))
	for i, s := range ss {
		names[i] = s.Name
	}
	return names
}
