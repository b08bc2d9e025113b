// Package settings builds the ordered key/value configurations consumed by
// the solver and encodes them in its settings-file format.
package settings

import (
	"fmt"
	"math"
	"strconv"
)

// Kind is the type of a setting value.
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindFloat
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	default:
		return "unknown"
	}
}

// Value is a typed setting value.
type Value struct {
	kind Kind
	s    string
	i    int
	f    float64
}

// StringValue returns a string value.
func StringValue(s string) Value { return Value{kind: KindString, s: s} }

// IntValue returns an integer value.
func IntValue(i int) Value { return Value{kind: KindInt, i: i} }

// FloatValue returns a float value.
func FloatValue(f float64) Value { return Value{kind: KindFloat, f: f} }

// BoolValue returns the solver's boolean spelling, TRUE or FALSE.
func BoolValue(b bool) Value {
	if b {
		return StringValue("TRUE")
	}
	return StringValue("FALSE")
}

// Kind returns the value's type.
func (v Value) Kind() Kind { return v.kind }

// Int returns the integer payload; ok is false for other kinds.
func (v Value) Int() (int, bool) { return v.i, v.kind == KindInt }

// Float returns the value as float64 for int and float kinds.
func (v Value) Float() (float64, bool) {
	switch v.kind {
	case KindFloat:
		return v.f, true
	case KindInt:
		return float64(v.i), true
	default:
		return 0, false
	}
}

// Str returns the string payload; ok is false for other kinds.
func (v Value) Str() (string, bool) { return v.s, v.kind == KindString }

// String renders the value as it appears in a settings file.
func (v Value) String() string {
	switch v.kind {
	case KindInt:
		return strconv.Itoa(v.i)
	case KindFloat:
		return FormatFloat(v.f)
	default:
		return v.s
	}
}

// Equal reports whether two values have the same kind and payload.
func (v Value) Equal(o Value) bool {
	return v == o
}

// GoString keeps test failure output readable.
func (v Value) GoString() string {
	return fmt.Sprintf("%s(%s)", v.kind, v.String())
}

// FormatFloat renders f with at most 15 significant digits, which is exact
// for any decimal literal and hides the accumulation error of stepped
// values (0.1+0.2 prints as 0.3).
func FormatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', 15, 64)
}

// Snap rounds f to 12 decimal places. Values too large for that to matter
// are returned unchanged.
func Snap(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) || math.Abs(f) >= 1e6 {
		return f
	}
	return math.Round(f*1e12) / 1e12
}
