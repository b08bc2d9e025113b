package schema

import (
	"encoding/json"
	"slices"
	"testing"
)

func loadConfigSchema(t *testing.T) map[string]any {
	t.Helper()
	data, err := FS.ReadFile("config.schema.json")
	if err != nil {
		t.Fatalf("config.schema.json not embedded: %v", err)
	}
	var s map[string]any
	if err := json.Unmarshal(data, &s); err != nil {
		t.Fatalf("config.schema.json is not valid JSON: %v", err)
	}
	return s
}

func object(t *testing.T, m map[string]any, key string) map[string]any {
	t.Helper()
	v, ok := m[key].(map[string]any)
	if !ok {
		t.Fatalf("%q is not an object", key)
	}
	return v
}

func TestConfigSchema_Sections(t *testing.T) {
	t.Parallel()

	s := loadConfigSchema(t)
	if s["$schema"] != "https://json-schema.org/draft/2020-12/schema" {
		t.Errorf("$schema = %v, want draft 2020-12", s["$schema"])
	}

	props := object(t, s, "properties")
	for _, section := range []string{"solver", "device", "work_dir", "artifacts", "comparison", "sweep", "history", "suites"} {
		if _, ok := props[section]; !ok {
			t.Errorf("missing top-level property %q", section)
		}
	}

	defs := object(t, s, "$defs")
	for _, def := range []string{"suite", "axis", "bound"} {
		if _, ok := defs[def]; !ok {
			t.Errorf("missing definition %q", def)
		}
	}
}

func TestConfigSchema_ThreadModels(t *testing.T) {
	t.Parallel()

	device := object(t, object(t, loadConfigSchema(t), "properties"), "device")
	threadModel := object(t, object(t, device, "properties"), "thread_model")
	enum, _ := threadModel["enum"].([]any)
	for _, want := range []string{"CUDA", "HIP", "OpenCL", "OpenMP", "Serial"} {
		if !slices.Contains(enum, any(want)) {
			t.Errorf("thread_model enum lacks %q", want)
		}
	}
}

// Unknown fields are reported as warnings by the loader, so the schema must
// not reject them.
func TestConfigSchema_AllowsUnknownFields(t *testing.T) {
	t.Parallel()

	s := loadConfigSchema(t)
	if v, ok := s["additionalProperties"]; ok && v == false {
		t.Error("root forbids additional properties")
	}
	props := object(t, s, "properties")
	for name, p := range props {
		if m, ok := p.(map[string]any); ok && m["additionalProperties"] == false {
			t.Errorf("section %q forbids additional properties", name)
		}
	}
}
