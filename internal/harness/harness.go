// Package harness drives a sweep: it enumerates the cases of a suite, runs
// each one, judges the result and aggregates the verdicts into a report.
package harness

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"slices"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	sweeperrors "github.com/AndreyAkinshin/paramsweep/internal/errors"
	"github.com/AndreyAkinshin/paramsweep/internal/report"
	"github.com/AndreyAkinshin/paramsweep/internal/runner"
	"github.com/AndreyAkinshin/paramsweep/internal/settings"
	"github.com/AndreyAkinshin/paramsweep/internal/suite"
	"github.com/AndreyAkinshin/paramsweep/internal/verdict"
)

// MaxJobs caps the number of concurrently running cases.
const MaxJobs = 256

// Options configures a sweep.
type Options struct {
	// Jobs is the number of cases run concurrently. Zero or one runs the
	// cases strictly one after another; a negative value uses one job per CPU.
	Jobs int

	// From skips cases with a lower index. Limit, when positive, stops after
	// that many cases. Only, when non-empty, runs exactly the listed indices
	// and overrides From and Limit.
	From  int
	Limit int
	Only  []int

	Runner     runner.CaseRunner
	Comparison verdict.Options
	Cleaner    *report.Cleaner // Nil disables artifact cleanup
	Logger     *slog.Logger
	RunID      string // Generated when empty

	// OnVerdict is called once per judged case. Calls are serialized but,
	// with Jobs > 1, not in index order.
	OnVerdict func(verdict.Verdict)
}

// Jobs resolves the requested job count to the number of workers to use.
func Jobs(requested int) int {
	switch {
	case requested < 0:
		return min(max(1, runtime.NumCPU()), MaxJobs)
	case requested == 0:
		return 1
	default:
		return min(requested, MaxJobs)
	}
}

// Run executes the sweep. The returned error covers only problems detected
// before any case runs; case failures are verdicts in the report. Artifact
// cleanup runs after every started case has completed, including when ctx
// is canceled. Cases that never started are not counted.
func Run(ctx context.Context, s suite.Suite, env settings.Environment, opts Options) (*report.Report, report.Summary, error) {
	if opts.Runner == nil {
		return nil, report.Summary{}, sweeperrors.New("no case runner configured")
	}
	if err := opts.Comparison.Validate(); err != nil {
		return nil, report.Summary{}, sweeperrors.Validation(err, "invalid comparison options")
	}
	if err := s.Validate(env); err != nil {
		return nil, report.Summary{}, sweeperrors.Validation(err, "invalid suite")
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	runID := opts.RunID
	if runID == "" {
		runID = uuid.NewString()
	}
	logger = logger.With("run", runID, "suite", s.Name)

	rep := report.New(runID, s.Name, s.Reference, opts.Comparison)
	d := &driver{
		suite:  s,
		opts:   opts,
		logger: logger,
		report: rep,
		sel:    newSelection(opts),
	}

	jobs := Jobs(opts.Jobs)
	logger.Info("sweep started", "jobs", jobs)
	if jobs == 1 {
		d.runSequential(ctx, env)
	} else {
		d.runParallel(ctx, env, jobs)
	}

	var cleaner *report.Cleaner
	if opts.Cleaner != nil {
		c := *opts.Cleaner
		if c.Logger == nil {
			c.Logger = logger
		}
		cleaner = &c
	}
	summary := rep.Finalize(cleaner)
	logger.Info("sweep finished",
		"total", summary.Total,
		"failed", summary.Failed,
		"max_diff", summary.MaxDiff,
		"duration", summary.Duration,
		"artifacts_removed", len(summary.Removed))
	return rep, summary, nil
}

type driver struct {
	suite  suite.Suite
	opts   Options
	logger *slog.Logger
	report *report.Report
	sel    selection

	mu sync.Mutex // serializes OnVerdict
}

func (d *driver) runSequential(ctx context.Context, env settings.Environment) {
	for i, c := range d.suite.Configurations(env) {
		if ctx.Err() != nil {
			return
		}
		switch d.sel.decide(i) {
		case skip:
			continue
		case stop:
			return
		}
		d.record(runCase(ctx, d.opts.Runner, c))
	}
}

// runParallel bounds concurrency with an errgroup limit. Enumeration stays
// lazy: g.Go blocks until a worker slot frees up.
func (d *driver) runParallel(ctx context.Context, env settings.Environment, jobs int) {
	var g errgroup.Group
	g.SetLimit(jobs)

	for i, c := range d.suite.Configurations(env) {
		if ctx.Err() != nil {
			break
		}
		decision := d.sel.decide(i)
		if decision == stop {
			break
		}
		if decision == skip {
			continue
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			d.record(runCase(ctx, d.opts.Runner, c))
			return nil
		})
	}
	_ = g.Wait()
}

func (d *driver) record(o verdict.Outcome) {
	if o.Err != nil && runner.IsCanceled(o.Err) {
		d.logger.Debug("case canceled", "case", o.Case, "index", o.Index)
		return
	}

	v := verdict.Judge(o, d.suite.Reference, d.opts.Comparison)
	d.report.Record(v)

	if v.Passed {
		d.logger.Debug("case passed", "case", v.Case, "index", v.Index, "diff", v.Diff, "passed", true)
	} else {
		attrs := []any{"case", v.Case, "index", v.Index, "diff", v.Diff, "passed", false}
		if v.Err != nil {
			attrs = append(attrs, "error", v.Err)
		} else {
			attrs = append(attrs, "measured", v.Measured, "reference", v.Reference)
		}
		d.logger.Warn("case failed", attrs...)
	}

	if d.opts.OnVerdict != nil {
		d.mu.Lock()
		d.opts.OnVerdict(v)
		d.mu.Unlock()
	}
}

// runCase runs one case and converts a runner panic into a failure of that
// case alone.
func runCase(ctx context.Context, r runner.CaseRunner, c suite.Case) (o verdict.Outcome) {
	o = verdict.Outcome{Index: c.Index, Case: c.Configuration.Name}
	if c.Err != nil {
		o.Err = &runner.RunError{Kind: runner.KindInvalid, Case: o.Case, Cause: c.Err}
		return o
	}
	defer func() {
		if p := recover(); p != nil {
			o.Err = &runner.RunError{Kind: runner.KindPanic, Case: o.Case, Cause: fmt.Errorf("%v", p)}
		}
	}()

	m, err := r.Run(ctx, c.Configuration)
	o.Measured = m.Value
	o.Duration = m.Duration
	o.Err = err
	return o
}

type decision int

const (
	run decision = iota
	skip
	stop
)

// selection decides which enumerated cases run. It is only used from the
// enumerating goroutine.
type selection struct {
	only  []int // Sorted, deduplicated
	from  int
	limit int
	taken int
}

func newSelection(opts Options) selection {
	only := slices.Clone(opts.Only)
	slices.Sort(only)
	only = slices.Compact(only)
	return selection{only: only, from: opts.From, limit: opts.Limit}
}

func (s *selection) decide(index int) decision {
	if len(s.only) > 0 {
		if index > s.only[len(s.only)-1] {
			return stop
		}
		if _, found := slices.BinarySearch(s.only, index); !found {
			return skip
		}
		return run
	}
	if index < s.from {
		return skip
	}
	if s.limit > 0 && s.taken >= s.limit {
		return stop
	}
	s.taken++
	return run
}
