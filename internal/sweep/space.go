package sweep

import (
	"fmt"
	"iter"
	"math"

	"github.com/AndreyAkinshin/paramsweep/internal/settings"
)

// MaxCases caps the size of any sweep space.
const MaxCases = 1_000_000

// Axis is one dimension of a sweep space. It enumerates Values when set,
// otherwise Range. A non-nil Bound replaces the range stop with a limit
// computed from an outer axis.
type Axis struct {
	Name   string
	Keys   []string // Settings keys driven by this axis
	Kind   settings.Kind
	Range  Range
	Values []float64
	Bound  *Bound
}

// values returns the axis values given the assignments of the outer axes.
func (a Axis) values(outer Point) []float64 {
	if len(a.Values) > 0 {
		return a.Values
	}
	return a.effectiveRange(outer).Values()
}

func (a Axis) effectiveRange(outer Point) Range {
	if a.Bound == nil {
		return a.Range
	}
	degree, _ := outer.Lookup(a.Bound.DependsOn)
	return a.boundedRange(float64(a.Bound.Limit(degree)))
}

// boundedRange never leaves the range empty: a stop at or below Start is
// raised so that Start itself is still visited.
func (a Axis) boundedRange(stop float64) Range {
	if stop < a.Range.Start+a.Range.Step {
		stop = a.Range.Start + a.Range.Step
	}
	return a.Range.WithStop(stop)
}

// maxLen is an upper bound on the number of values the axis can produce.
func (a Axis) maxLen() int {
	if len(a.Values) > 0 {
		return len(a.Values)
	}
	if a.Bound != nil {
		return a.boundedRange(float64(a.Bound.Max)).Len()
	}
	return a.Range.Len()
}

// Space is an ordered list of axes. Enumeration varies the last axis
// fastest.
type Space struct {
	Axes []Axis
}

// Validate checks the space before any enumeration happens.
func (s Space) Validate() error {
	if len(s.Axes) == 0 {
		return fmt.Errorf("sweep space has no axes")
	}
	seen := make(map[string]int, len(s.Axes))
	for i, a := range s.Axes {
		if a.Name == "" {
			return fmt.Errorf("axis %d: name is required", i)
		}
		if _, dup := seen[a.Name]; dup {
			return fmt.Errorf("axis %q: duplicate name", a.Name)
		}
		seen[a.Name] = i
		if len(a.Keys) == 0 {
			return fmt.Errorf("axis %q: drives no settings keys", a.Name)
		}
		if a.Kind != settings.KindInt && a.Kind != settings.KindFloat {
			return fmt.Errorf("axis %q: kind must be int or float, got %s", a.Name, a.Kind)
		}
		if err := a.validateValues(); err != nil {
			return fmt.Errorf("axis %q: %w", a.Name, err)
		}
		if a.Bound != nil {
			if err := a.Bound.Validate(); err != nil {
				return fmt.Errorf("axis %q: %w", a.Name, err)
			}
			j, ok := seen[a.Bound.DependsOn]
			if !ok || j >= i {
				return fmt.Errorf("axis %q: bound depends on %q, which is not an outer axis", a.Name, a.Bound.DependsOn)
			}
		}
	}

	total := 1
	for _, a := range s.Axes {
		total *= a.maxLen()
		if total > MaxCases {
			return fmt.Errorf("sweep space may produce more than %d cases", MaxCases)
		}
	}
	return nil
}

func (a Axis) validateValues() error {
	if len(a.Values) > 0 {
		if a.Bound != nil {
			return fmt.Errorf("an explicit value list cannot be bounded")
		}
		for _, v := range a.Values {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("value %v is not finite", v)
			}
			if a.Kind == settings.KindInt && v != math.Trunc(v) {
				return fmt.Errorf("value %v is not an integer", v)
			}
		}
		return nil
	}
	if err := a.Range.Validate(); err != nil {
		return err
	}
	if a.Kind == settings.KindInt && (a.Range.Start != math.Trunc(a.Range.Start) || a.Range.Step != math.Trunc(a.Range.Step)) {
		return fmt.Errorf("range %s: integer axis needs integral start and step", a.Range)
	}
	if a.Bound == nil && a.Range.Len() == 0 {
		return fmt.Errorf("range %s is empty", a.Range)
	}
	return nil
}

// Points lazily enumerates the space. The sequence is deterministic and can
// be ranged over any number of times; each yielded Point is owned by the
// caller. The index is the 0-based generation index.
func (s Space) Points() iter.Seq2[int, Point] {
	return func(yield func(int, Point) bool) {
		if len(s.Axes) == 0 {
			return
		}
		index := 0
		cur := make(Point, 0, len(s.Axes))
		var walk func(depth int) bool
		walk = func(depth int) bool {
			if depth == len(s.Axes) {
				p := make(Point, len(cur))
				copy(p, cur)
				ok := yield(index, p)
				index++
				return ok
			}
			a := s.Axes[depth]
			for _, v := range a.values(cur) {
				cur = append(cur, Assignment{Axis: a.Name, Keys: a.Keys, Value: v, Kind: a.Kind})
				ok := walk(depth + 1)
				cur = cur[:depth]
				if !ok {
					return false
				}
			}
			return true
		}
		walk(0)
	}
}

// Count returns the number of points without materializing them.
func (s Space) Count() int {
	if len(s.Axes) == 0 {
		return 0
	}
	cur := make(Point, 0, len(s.Axes))
	var count func(depth int) int
	count = func(depth int) int {
		a := s.Axes[depth]
		vals := a.values(cur)
		if depth == len(s.Axes)-1 {
			return len(vals)
		}
		n := 0
		for _, v := range vals {
			cur = append(cur, Assignment{Axis: a.Name, Value: v})
			n += count(depth + 1)
			cur = cur[:depth]
		}
		return n
	}
	return count(0)
}

// At replays the enumeration up to index and returns that point.
func (s Space) At(index int) (Point, bool) {
	if index < 0 {
		return nil, false
	}
	for i, p := range s.Points() {
		if i == index {
			return p, true
		}
	}
	return nil, false
}
