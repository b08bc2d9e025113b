package sweep

import (
	"fmt"
	"math"
	"strings"

	"github.com/AndreyAkinshin/paramsweep/internal/settings"
)

// Assignment binds one axis to a value for a single point.
type Assignment struct {
	Axis  string
	Keys  []string
	Value float64
	Kind  settings.Kind
}

// SettingValue returns the assignment as a typed settings value.
func (a Assignment) SettingValue() settings.Value {
	if a.Kind == settings.KindInt {
		return settings.IntValue(int(math.Round(a.Value)))
	}
	return settings.FloatValue(a.Value)
}

// Point is one element of a sweep space: an assignment per axis, outermost
// axis first.
type Point []Assignment

// Lookup returns the value assigned to the named axis.
func (p Point) Lookup(axis string) (float64, bool) {
	for _, a := range p {
		if a.Axis == axis {
			return a.Value, true
		}
	}
	return 0, false
}

// Apply writes every assignment into params, one Set per driven key.
func (p Point) Apply(params *settings.Params) error {
	for _, a := range p {
		v := a.SettingValue()
		for _, key := range a.Keys {
			if err := params.Set(key, v); err != nil {
				return fmt.Errorf("axis %s: %w", a.Axis, err)
			}
		}
	}
	return nil
}

// String renders the point as "axis=value" pairs.
func (p Point) String() string {
	parts := make([]string, len(p))
	for i, a := range p {
		parts[i] = a.Axis + "=" + a.SettingValue().String()
	}
	return strings.Join(parts, " ")
}
