package config

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// LoadWithWarnings parses JSON config data and returns any unknown field
// warnings. path is used only for messages.
func LoadWithWarnings(path string, data []byte) (*Config, []string, error) {
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	// Detect unknown fields
	warnings := detectUnknownFields(data)

	return &cfg, warnings, nil
}

// sections maps each object-valued root key to the struct it decodes into.
var sections = map[string]reflect.Type{
	"solver":     reflect.TypeOf(SolverConfig{}),
	"device":     reflect.TypeOf(DeviceConfig{}),
	"artifacts":  reflect.TypeOf(ArtifactsConfig{}),
	"comparison": reflect.TypeOf(ComparisonConfig{}),
	"sweep":      reflect.TypeOf(SweepConfig{}),
	"history":    reflect.TypeOf(HistoryConfig{}),
}

// detectUnknownFields compares raw JSON with known struct fields.
// Note: Since this is called after successful Config parsing, a parse failure
// here would indicate an unexpected internal inconsistency.
func detectUnknownFields(data []byte) []string {
	var warnings []string

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		// This should never happen since the data was already parsed successfully.
		// Return a warning so the condition is visible rather than silently ignored.
		return []string{"internal: failed to re-parse config for unknown field detection"}
	}

	knownTopLevel := getJSONFields(reflect.TypeOf(Config{}))
	for _, key := range sortedKeys(raw) {
		if key == "$schema" {
			continue // $schema is explicitly allowed and ignored
		}
		if !knownTopLevel[key] {
			warnings = append(warnings, fmt.Sprintf("unknown field %q at root level (ignored)", key))
			continue
		}
		if t, ok := sections[key]; ok {
			warnings = append(warnings, checkObject(raw[key], t, key)...)
		}
	}

	if suitesRaw, ok := raw["suites"]; ok {
		warnings = append(warnings, checkSuitesUnknownFields(suitesRaw)...)
	}

	return warnings
}

func checkSuitesUnknownFields(data json.RawMessage) []string {
	var warnings []string

	var suites []json.RawMessage
	if err := json.Unmarshal(data, &suites); err != nil {
		// Should not happen since Config.Suites parsed successfully.
		return []string{"internal: failed to re-parse suites for unknown field detection"}
	}

	for i, suiteRaw := range suites {
		where := fmt.Sprintf("suites[%d]", i)
		warnings = append(warnings, checkObject(suiteRaw, reflect.TypeOf(SuiteConfig{}), where)...)

		var suite struct {
			Axes []json.RawMessage `json:"axes"`
		}
		if err := json.Unmarshal(suiteRaw, &suite); err != nil {
			continue
		}
		for j, axisRaw := range suite.Axes {
			axisWhere := fmt.Sprintf("%s.axes[%d]", where, j)
			warnings = append(warnings, checkObject(axisRaw, reflect.TypeOf(AxisConfig{}), axisWhere)...)

			var axis struct {
				Bound json.RawMessage `json:"bound"`
			}
			if err := json.Unmarshal(axisRaw, &axis); err != nil || len(axis.Bound) == 0 {
				continue
			}
			warnings = append(warnings, checkObject(axis.Bound, reflect.TypeOf(BoundConfig{}), axisWhere+".bound")...)
		}
	}

	return warnings
}

// checkObject reports keys of a JSON object that t does not declare.
func checkObject(data json.RawMessage, t reflect.Type, where string) []string {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil
	}
	known := getJSONFields(t)
	var warnings []string
	for _, key := range sortedKeys(fields) {
		if !known[key] {
			warnings = append(warnings, fmt.Sprintf("unknown field %q in %s (ignored)", key, where))
		}
	}
	return warnings
}

// getJSONFields returns a map of known JSON field names for a struct type.
func getJSONFields(t reflect.Type) map[string]bool {
	fields := make(map[string]bool)
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("json")
		if tag == "" || tag == "-" {
			continue
		}
		// Extract field name from tag (before comma)
		name := strings.Split(tag, ",")[0]
		if name != "" {
			fields[name] = true
		}
	}
	return fields
}

func sortedKeys(m map[string]json.RawMessage) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
