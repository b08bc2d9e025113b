// Package report accumulates case verdicts for one sweep, summarizes them
// and writes them out in machine-readable forms.
package report

import (
	"slices"
	"sync"
	"time"

	"github.com/AndreyAkinshin/paramsweep/internal/verdict"
)

// Report collects the verdicts of one sweep. It is safe for concurrent use.
type Report struct {
	RunID     string
	Suite     string
	Reference float64
	Options   verdict.Options
	Started   time.Time

	mu       sync.Mutex
	verdicts []verdict.Verdict
	failures int
	sorted   bool
}

// New creates an empty report.
func New(runID, suite string, reference float64, opts verdict.Options) *Report {
	return &Report{
		RunID:     runID,
		Suite:     suite,
		Reference: reference,
		Options:   opts,
		Started:   time.Now(),
		sorted:    true,
	}
}

// Record appends a verdict. Verdicts may arrive out of index order.
func (r *Report) Record(v verdict.Verdict) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n := len(r.verdicts); n > 0 && r.verdicts[n-1].Index > v.Index {
		r.sorted = false
	}
	r.verdicts = append(r.verdicts, v)
	if !v.Passed {
		r.failures++
	}
}

// Failures returns the number of failed cases recorded so far.
func (r *Report) Failures() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.failures
}

// Total returns the number of recorded cases.
func (r *Report) Total() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.verdicts)
}

// Verdicts returns a copy of the verdicts in case index order.
func (r *Report) Verdicts() []verdict.Verdict {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.sorted {
		slices.SortStableFunc(r.verdicts, func(a, b verdict.Verdict) int { return a.Index - b.Index })
		r.sorted = true
	}
	return slices.Clone(r.verdicts)
}

// FailedVerdicts returns the failed verdicts in case index order.
func (r *Report) FailedVerdicts() []verdict.Verdict {
	var failed []verdict.Verdict
	for _, v := range r.Verdicts() {
		if !v.Passed {
			failed = append(failed, v)
		}
	}
	return failed
}

// Finalize runs the cleaner, if any, and summarizes the sweep. Call it once
// every case has completed.
func (r *Report) Finalize(c *Cleaner) Summary {
	var removed []string
	if c != nil {
		removed = c.Clean()
	}
	s := Summarize(r.Verdicts())
	s.RunID = r.RunID
	s.Suite = r.Suite
	s.Started = r.Started
	s.Duration = time.Since(r.Started)
	s.Removed = removed
	return s
}
