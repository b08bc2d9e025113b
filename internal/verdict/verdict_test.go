package verdict

import (
	"errors"
	"math"
	"testing"
	"time"
)

const reference = 0.499999999969716

func TestJudge(t *testing.T) {
	t.Parallel()
	opts := DefaultOptions()

	tests := []struct {
		name     string
		measured float64
		err      error
		pass     bool
		diff     float64
	}{
		{"exact", reference, nil, true, 0},
		{"within tolerance", reference + 5e-7, nil, true, 5e-7},
		{"just outside", reference + DefaultTolerance + 1e-9, nil, false, -1},
		{"below reference", reference - 2e-6, nil, false, -1},
		{"nan", math.NaN(), nil, false, math.Inf(1)},
		{"inf", math.Inf(1), nil, false, math.Inf(1)},
		{"error", 0, errors.New("solver crashed"), false, math.Inf(1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ref := reference
			v := Judge(Outcome{Index: 3, Case: "c_3", Measured: tt.measured, Err: tt.err, Duration: time.Second}, ref, opts)
			if v.Passed != tt.pass {
				t.Errorf("Judge().Passed = %v, want %v (diff %v)", v.Passed, tt.pass, v.Diff)
			}
			if tt.diff >= 0 && math.Abs(v.Diff-tt.diff) > 1e-15 && !(math.IsInf(tt.diff, 1) && math.IsInf(v.Diff, 1)) {
				t.Errorf("Judge().Diff = %v, want %v", v.Diff, tt.diff)
			}
			if v.Index != 3 || v.Case != "c_3" || v.Reference != ref || v.Duration != time.Second {
				t.Errorf("Judge() did not carry identity fields: %+v", v)
			}
			if tt.err != nil && !errors.Is(v.Err, tt.err) {
				t.Errorf("Judge().Err = %v, want %v", v.Err, tt.err)
			}
		})
	}
}

func TestJudge_SelfPasses(t *testing.T) {
	t.Parallel()

	for _, x := range []float64{0, 1, -3.5, reference, 1e300, 1e-300} {
		for _, mode := range []Mode{ModeAbsolute, ModeRelative, ModeULP} {
			opts := Options{Tolerance: 0, Mode: mode}
			if !Judge(Outcome{Measured: x}, x, opts).Passed {
				t.Errorf("Judge(%v, %v) with %s failed", x, x, opts)
			}
		}
	}
}

func TestOptions_Within(t *testing.T) {
	t.Parallel()

	next := math.Nextafter(1, 2)
	tests := []struct {
		name     string
		opts     Options
		expected float64
		actual   float64
		want     bool
	}{
		{"relative within", Options{Tolerance: 1e-9, Mode: ModeRelative}, 1e6, 1e6 + 1e-4, true},
		{"relative outside", Options{Tolerance: 1e-9, Mode: ModeRelative}, 1, 1.1, false},
		{"relative zero reference", Options{Tolerance: 1e-9, Mode: ModeRelative}, 0, 1e-10, true},
		{"ulp one apart", Options{Tolerance: 1, Mode: ModeULP}, 1, next, true},
		{"ulp zero apart required", Options{Tolerance: 0, Mode: ModeULP}, 1, next, false},
		{"ulp truncates tolerance", Options{Tolerance: 1.9, Mode: ModeULP}, 1, math.Nextafter(next, 2), false},
		{"empty mode is absolute", Options{Tolerance: 0.5}, 1, 1.4, true},
		{"equal infinities", DefaultOptions(), math.Inf(-1), math.Inf(-1), true},
		{"opposite infinities", DefaultOptions(), math.Inf(-1), math.Inf(1), false},
		{"nan never within", Options{Tolerance: math.Inf(1)}, math.NaN(), math.NaN(), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.opts.Within(tt.expected, tt.actual); got != tt.want {
				t.Errorf("Within(%v, %v) = %v, want %v", tt.expected, tt.actual, got, tt.want)
			}
		})
	}
}

func TestOptions_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		opts    Options
		wantErr bool
	}{
		{"default", DefaultOptions(), false},
		{"empty mode", Options{Tolerance: 1}, false},
		{"bad mode", Options{Tolerance: 1, Mode: "fuzzy"}, true},
		{"negative", Options{Tolerance: -1, Mode: ModeAbsolute}, true},
		{"nan", Options{Tolerance: math.NaN(), Mode: ModeAbsolute}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.opts.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
