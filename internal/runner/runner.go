// Package runner executes one solver case and extracts its diagnostic.
package runner

import (
	"context"
	"time"

	"github.com/AndreyAkinshin/paramsweep/internal/settings"
)

// Measurement is the successful result of running one case.
type Measurement struct {
	Value    float64
	Output   string
	Duration time.Duration
}

// CaseRunner runs the solver for one configuration. Failures are returned
// as *RunError and never abort a sweep.
type CaseRunner interface {
	Run(ctx context.Context, cfg *settings.Configuration) (Measurement, error)
}

// Func adapts a function to the CaseRunner interface.
type Func func(ctx context.Context, cfg *settings.Configuration) (Measurement, error)

// Run calls f.
func (f Func) Run(ctx context.Context, cfg *settings.Configuration) (Measurement, error) {
	return f(ctx, cfg)
}
