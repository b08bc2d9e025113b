package schema

import (
	"strings"
	"testing"
)

func TestValidateConfig_Valid(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		json string
	}{
		{"empty", `{}`},
		{"with $schema", `{"$schema": "../schema/config.schema.json"}`},
		{"solver", `{"solver": {"binary": "./ellipticMain", "launcher": ["mpirun", "-np", "1"], "timeout": "10m"}}`},
		{"device", `{"device": {"thread_model": "Serial", "platform_number": 0, "device_number": 2}}`},
		{"comparison", `{"comparison": {"tolerance": 1e-8, "mode": "relative"}}`},
		{"parallel sweep", `{"sweep": {"jobs": -1, "resource_budget": 1e6}}`},
		{"suite with range axis", `{"suites": [{"name": "hex", "reference": 0.5,
			"settings": {"ELEMENT TYPE": 12, "PRECONDITIONER": "JACOBI", "VERBOSE": false},
			"axes": [{"name": "degree", "keys": ["POLYNOMIAL DEGREE"], "range": "1:4:1"}]}]}`},
		{"suite with values axis", `{"suites": [{"name": "s", "reference": 1,
			"axes": [{"name": "y", "keys": ["BOX DIMY"], "kind": "float", "values": [0.5, 1]}]}]}`},
		{"unknown fields are left to warnings", `{"solver": {"binary": "x", "retries": 3}, "extra": true}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if err := ValidateConfig([]byte(tt.json)); err != nil {
				t.Errorf("ValidateConfig() = %v, want nil", err)
			}
		})
	}
}

func TestValidateConfig_Invalid(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		json string
	}{
		{"binary not a string", `{"solver": {"binary": 3}}`},
		{"empty binary", `{"solver": {"binary": ""}}`},
		{"bad timeout", `{"solver": {"timeout": "soon"}}`},
		{"bad thread model", `{"device": {"thread_model": "TPU"}}`},
		{"negative device", `{"device": {"device_number": -1}}`},
		{"bad mode", `{"comparison": {"mode": "fuzzy"}}`},
		{"negative tolerance", `{"comparison": {"tolerance": -1}}`},
		{"too many jobs", `{"sweep": {"jobs": 1000}}`},
		{"zero budget", `{"sweep": {"resource_budget": 0}}`},
		{"suite without reference", `{"suites": [{"name": "s"}]}`},
		{"suite bad name", `{"suites": [{"name": "1st", "reference": 0}]}`},
		{"axis without keys", `{"suites": [{"name": "s", "reference": 0, "axes": [{"name": "a", "range": "1:2:1"}]}]}`},
		{"axis with range and values", `{"suites": [{"name": "s", "reference": 0,
			"axes": [{"name": "a", "keys": ["BOX NX"], "range": "1:2:1", "values": [1]}]}]}`},
		{"axis with neither", `{"suites": [{"name": "s", "reference": 0, "axes": [{"name": "a", "keys": ["BOX NX"]}]}]}`},
		{"bound without depends_on", `{"suites": [{"name": "s", "reference": 0,
			"axes": [{"name": "a", "keys": ["BOX NX"], "range": "6:200:6", "bound": {"budget": 1}}]}]}`},
		{"setting with array value", `{"suites": [{"name": "s", "reference": 0, "settings": {"BOX NX": [1]}}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := ValidateConfig([]byte(tt.json))
			if err == nil {
				t.Fatal("ValidateConfig() = nil, want error")
			}
			if !strings.Contains(err.Error(), "config validation failed") {
				t.Errorf("error = %q, want schema failure", err)
			}
		})
	}
}

func TestValidateConfig_MalformedJSON(t *testing.T) {
	t.Parallel()
	err := ValidateConfig([]byte(`{"solver": `))
	if err == nil {
		t.Fatal("ValidateConfig() = nil, want error")
	}
	if !strings.Contains(err.Error(), "invalid JSON") {
		t.Errorf("error = %q, want to contain 'invalid JSON'", err)
	}
}
