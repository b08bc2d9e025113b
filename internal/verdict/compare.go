package verdict

import (
	"fmt"
	"math"
	"reflect"
	"sort"
)

// Compare compares decoded JSON values, applying the float options to every
// number. Non-finite floats may be spelled as the strings "NaN",
// "Infinity", "+Infinity" and "-Infinity", which is how reports store them.
// It returns false and a path-qualified description of the first mismatch.
func Compare(expected, actual any, opts Options) (bool, string) {
	return compareValues(expected, actual, opts, "")
}

func compareValues(expected, actual any, opts Options, path string) (bool, string) {
	if expected == nil && actual == nil {
		return true, ""
	}
	if expected == nil || actual == nil {
		return false, fmt.Sprintf("%s: expected %v, got %v", pathStr(path), expected, actual)
	}

	if str, ok := expected.(string); ok && isSpecialFloat(str) {
		return compareSpecialFloat(str, actual, opts, path)
	}

	switch exp := expected.(type) {
	case float64:
		return compareFloats(exp, actual, opts, path)
	case int:
		return compareFloats(float64(exp), actual, opts, path)
	case string:
		if act, ok := actual.(string); ok && exp == act {
			return true, ""
		}
		return false, fmt.Sprintf("%s: expected %q, got %v", pathStr(path), exp, actual)
	case bool:
		if act, ok := actual.(bool); ok && exp == act {
			return true, ""
		}
		return false, fmt.Sprintf("%s: expected %v, got %v", pathStr(path), exp, actual)
	case map[string]any:
		return compareMaps(exp, actual, opts, path)
	case []any:
		return compareArrays(exp, actual, opts, path)
	default:
		if reflect.DeepEqual(expected, actual) {
			return true, ""
		}
		return false, fmt.Sprintf("%s: expected %v (%T), got %v (%T)", pathStr(path), expected, expected, actual, actual)
	}
}

func compareFloats(expected float64, actual any, opts Options, path string) (bool, string) {
	act, ok := toFloat(actual)
	if !ok {
		return false, fmt.Sprintf("%s: expected number, got %T", pathStr(path), actual)
	}
	if math.IsNaN(expected) && math.IsNaN(act) {
		if opts.NaNEqualsNaN {
			return true, ""
		}
		return false, fmt.Sprintf("%s: NaN != NaN", pathStr(path))
	}
	if opts.Within(expected, act) {
		return true, ""
	}
	return false, fmt.Sprintf("%s: expected %v, got %v (tolerance: %s)", pathStr(path), expected, act, opts)
}

func compareMaps(expected map[string]any, actual any, opts Options, path string) (bool, string) {
	actMap, ok := actual.(map[string]any)
	if !ok {
		return false, fmt.Sprintf("%s: expected object, got %T", pathStr(path), actual)
	}

	for _, key := range SortedKeys(expected) {
		if _, ok := actMap[key]; !ok {
			return false, fmt.Sprintf("%s: missing key %q", pathStr(path), key)
		}
	}
	for _, key := range SortedKeys(actMap) {
		if _, ok := expected[key]; !ok {
			return false, fmt.Sprintf("%s: unexpected key %q", pathStr(path), key)
		}
	}

	for _, key := range SortedKeys(expected) {
		keyPath := key
		if path != "" {
			keyPath = path + "." + key
		}
		if ok, diff := compareValues(expected[key], actMap[key], opts, keyPath); !ok {
			return false, diff
		}
	}
	return true, ""
}

func compareArrays(expected []any, actual any, opts Options, path string) (bool, string) {
	actArr, ok := actual.([]any)
	if !ok {
		return false, fmt.Sprintf("%s: expected array, got %T", pathStr(path), actual)
	}
	if len(expected) != len(actArr) {
		return false, fmt.Sprintf("%s: expected %d elements, got %d", pathStr(path), len(expected), len(actArr))
	}

	if opts.Unordered {
		matched := make([]bool, len(actArr))
		for i, exp := range expected {
			found := false
			for j, act := range actArr {
				if matched[j] {
					continue
				}
				if ok, _ := compareValues(exp, act, opts, ""); ok {
					matched[j] = true
					found = true
					break
				}
			}
			if !found {
				return false, fmt.Sprintf("%s[%d]: no matching element found for %v", pathStr(path), i, exp)
			}
		}
		return true, ""
	}

	for i := range expected {
		if ok, diff := compareValues(expected[i], actArr[i], opts, fmt.Sprintf("%s[%d]", path, i)); !ok {
			return false, diff
		}
	}
	return true, ""
}

func compareSpecialFloat(expected string, actual any, opts Options, path string) (bool, string) {
	act, ok := toFloat(actual)
	if !ok {
		return false, fmt.Sprintf("%s: expected %s, got %T", pathStr(path), expected, actual)
	}
	want := ParseSpecialFloat(expected)
	if math.IsNaN(want) {
		if math.IsNaN(act) && opts.NaNEqualsNaN {
			return true, ""
		}
		return false, fmt.Sprintf("%s: expected NaN, got %v", pathStr(path), act)
	}
	if want == act {
		return true, ""
	}
	return false, fmt.Sprintf("%s: expected %s, got %v", pathStr(path), expected, act)
}

func isSpecialFloat(s string) bool {
	return s == "NaN" || s == "Infinity" || s == "+Infinity" || s == "-Infinity"
}

// ParseSpecialFloat decodes the string spelling of a non-finite float. It
// returns NaN for anything it does not recognize.
func ParseSpecialFloat(s string) float64 {
	switch s {
	case "Infinity", "+Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	default:
		return math.NaN()
	}
}

// FormatSpecialFloat returns the string spelling of a non-finite float and
// false for finite values.
func FormatSpecialFloat(f float64) (string, bool) {
	switch {
	case math.IsNaN(f):
		return "NaN", true
	case math.IsInf(f, 1):
		return "Infinity", true
	case math.IsInf(f, -1):
		return "-Infinity", true
	default:
		return "", false
	}
}

func toFloat(v any) (float64, bool) {
	switch f := v.(type) {
	case float64:
		return f, true
	case int:
		return float64(f), true
	case string:
		if isSpecialFloat(f) {
			return ParseSpecialFloat(f), true
		}
	}
	return 0, false
}

func pathStr(path string) string {
	if path == "" {
		return "root"
	}
	return path
}

// SortedKeys returns the keys of m in sorted order.
func SortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
