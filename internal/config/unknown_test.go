package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func containsWarning(warnings []string, parts ...string) bool {
	for _, w := range warnings {
		ok := true
		for _, p := range parts {
			if !strings.Contains(w, p) {
				ok = false
				break
			}
		}
		if ok {
			return true
		}
	}
	return false
}

func TestLoadWithWarnings_UnknownRootField(t *testing.T) {
	t.Parallel()
	data := []byte(`{
		"solver": {"binary": "ellipticMain"},
		"unknown_field": "value"
	}`)

	cfg, warnings, err := LoadWithWarnings("test.json", data)
	if err != nil {
		t.Fatalf("LoadWithWarnings() error = %v", err)
	}
	if cfg.Solver.Binary != "ellipticMain" {
		t.Errorf("Solver.Binary = %q, want %q", cfg.Solver.Binary, "ellipticMain")
	}
	if !containsWarning(warnings, "unknown_field", "root level") {
		t.Errorf("Expected warning about unknown_field, got %v", warnings)
	}
}

func TestLoadWithWarnings_SchemaFieldIgnored(t *testing.T) {
	t.Parallel()
	data := []byte(`{
		"$schema": "../schema/config.schema.json",
		"work_dir": "run"
	}`)

	_, warnings, err := LoadWithWarnings("test.json", data)
	if err != nil {
		t.Fatalf("LoadWithWarnings() error = %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("warnings = %v, want none", warnings)
	}
}

func TestLoadWithWarnings_NestedUnknownFields(t *testing.T) {
	t.Parallel()
	data := []byte(`{
		"solver": {"binary": "x", "retries": 3},
		"comparison": {"tolerence": 1e-6},
		"suites": [{
			"name": "hex",
			"reference": 0.5,
			"owner": "ci",
			"axes": [{
				"name": "nx",
				"keys": ["BOX NX"],
				"range": "6:200:6",
				"step": 6,
				"bound": {"depends_on": "degree", "cap": 10}
			}]
		}]
	}`)

	_, warnings, err := LoadWithWarnings("test.json", data)
	if err != nil {
		t.Fatalf("LoadWithWarnings() error = %v", err)
	}

	tests := [][]string{
		{`"retries"`, "solver"},
		{`"tolerence"`, "comparison"},
		{`"owner"`, "suites[0]"},
		{`"step"`, "suites[0].axes[0]"},
		{`"cap"`, "suites[0].axes[0].bound"},
	}
	for _, parts := range tests {
		if !containsWarning(warnings, parts...) {
			t.Errorf("missing warning containing %v in %v", parts, warnings)
		}
	}
	if len(warnings) != len(tests) {
		t.Errorf("got %d warnings, want %d: %v", len(warnings), len(tests), warnings)
	}
}

func TestLoadAndValidate_WithUnknownFields(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	content := `{
		"solver": {"binary": "./ellipticMain"},
		"future_feature": true
	}`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, warnings, err := LoadAndValidate(path)
	if err != nil {
		t.Fatalf("LoadAndValidate() error = %v", err)
	}
	if cfg.Solver.Binary != "./ellipticMain" {
		t.Errorf("Solver.Binary = %q, want %q", cfg.Solver.Binary, "./ellipticMain")
	}
	if !containsWarning(warnings, "future_feature") {
		t.Errorf("Expected warning for unknown field, got %v", warnings)
	}
}
