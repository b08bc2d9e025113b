package sweep

import (
	"fmt"
	"math"
)

// Default resolution bound parameters for the mapped quad suite.
const (
	DefaultBudget        = 4e6
	DefaultMinResolution = 6
	DefaultMaxResolution = 200
)

// Bound replaces the static stop of an axis range with a limit derived from
// the current value of an outer axis, keeping the per-case work roughly
// constant as the polynomial degree grows.
type Bound struct {
	DependsOn string  // Name of the outer axis whose value is the degree
	Budget    float64 // Total degrees of freedom allowed per case
	Min       int
	Max       int
}

// MaxResolution returns clamp(floor(sqrt(budget/(degree+1)^2)), min, max).
// The result never increases with degree and always lies in [min, max].
func MaxResolution(degree int, budget float64, min, max int) int {
	d := float64(degree + 1)
	r := math.Floor(math.Sqrt(budget / (d * d)))
	switch {
	case math.IsNaN(r) || r < float64(min):
		return min
	case r > float64(max):
		return max
	default:
		return int(r)
	}
}

// Limit evaluates the bound for the given value of the driving axis.
func (b Bound) Limit(degree float64) int {
	return MaxResolution(int(math.Round(degree)), b.Budget, b.Min, b.Max)
}

// Validate checks the bound parameters in isolation.
func (b Bound) Validate() error {
	if b.DependsOn == "" {
		return fmt.Errorf("bound must name the axis it depends on")
	}
	if !(b.Budget > 0) || math.IsInf(b.Budget, 0) {
		return fmt.Errorf("bound budget must be positive and finite, got %v", b.Budget)
	}
	if b.Min > b.Max {
		return fmt.Errorf("bound min %d exceeds max %d", b.Min, b.Max)
	}
	return nil
}
