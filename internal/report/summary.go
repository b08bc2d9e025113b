package report

import (
	"math"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/AndreyAkinshin/paramsweep/internal/verdict"
)

// Summary is the outcome of a sweep.
type Summary struct {
	RunID    string
	Suite    string
	Total    int
	Passed   int
	Failed   int
	Errored  int     // Failed cases that produced no value
	MaxDiff  float64 // Over cases that produced a finite difference
	MeanDiff float64
	Started  time.Time
	Duration time.Duration
	Removed  []string // Artifact files deleted by cleanup
}

// Summarize computes counts and difference statistics for verdicts.
func Summarize(verdicts []verdict.Verdict) Summary {
	s := Summary{Total: len(verdicts)}
	diffs := make([]float64, 0, len(verdicts))
	for _, v := range verdicts {
		if v.Passed {
			s.Passed++
		} else {
			s.Failed++
			if v.Err != nil {
				s.Errored++
			}
		}
		if !math.IsInf(v.Diff, 0) && !math.IsNaN(v.Diff) {
			diffs = append(diffs, v.Diff)
		}
	}
	if len(diffs) > 0 {
		s.MaxDiff = floats.Max(diffs)
		s.MeanDiff = stat.Mean(diffs, nil)
	}
	return s
}

// OK reports whether every case passed.
func (s Summary) OK() bool {
	return s.Failed == 0
}
