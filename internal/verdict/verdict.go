package verdict

import (
	"math"
	"time"
)

// Outcome is what running one case produced: a measured value, or an error
// standing in for one.
type Outcome struct {
	Index    int
	Case     string
	Measured float64
	Duration time.Duration
	Err      error
}

// Verdict is the judged result of one case.
type Verdict struct {
	Index     int
	Case      string
	Passed    bool
	Measured  float64
	Reference float64
	Diff      float64 // |Measured-Reference|, +Inf when the case produced no value
	Duration  time.Duration
	Err       error
}

// Failed reports whether the case failed.
func (v Verdict) Failed() bool { return !v.Passed }

// Judge compares an outcome against the reference. An outcome carrying an
// error always fails with an infinite difference. It has no side effects.
func Judge(o Outcome, reference float64, opts Options) Verdict {
	v := Verdict{
		Index:     o.Index,
		Case:      o.Case,
		Reference: reference,
		Duration:  o.Duration,
	}
	if o.Err != nil {
		v.Measured = math.NaN()
		v.Diff = math.Inf(1)
		v.Err = o.Err
		return v
	}
	v.Measured = o.Measured
	v.Diff = math.Abs(o.Measured - reference)
	if math.IsNaN(v.Diff) {
		v.Diff = math.Inf(1)
	}
	v.Passed = opts.Within(reference, o.Measured)
	return v
}
