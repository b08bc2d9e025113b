package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	sweeperrors "github.com/AndreyAkinshin/paramsweep/internal/errors"
	"github.com/AndreyAkinshin/paramsweep/internal/harness"
	"github.com/AndreyAkinshin/paramsweep/internal/history"
	"github.com/AndreyAkinshin/paramsweep/internal/project"
	"github.com/AndreyAkinshin/paramsweep/internal/report"
	"github.com/AndreyAkinshin/paramsweep/internal/settings"
	"github.com/AndreyAkinshin/paramsweep/internal/suite"
	"github.com/AndreyAkinshin/paramsweep/internal/verdict"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Suite         string
	Jobs          int
	From          int
	Limit         int
	Cases         []int
	Timeout       time.Duration
	JSON          string
	CSV           string
	Chart         string
	Metrics       string
	History       string
	RerunFailed   bool
	KeepArtifacts bool
	KeepInput     bool
	Stream        bool
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a sweep and exit with the number of failed cases",
		Long: `Run every case of a suite through the solver and compare each diagnostic
with the suite's reference value.

The exit status is the number of failed cases, capped at 250. Statuses 251,
252 and 253 report configuration, environment and runtime errors.

Example:
  paramsweep run
  paramsweep run --jobs 8 --json report.json --history runs.db
  paramsweep run --case 34 --case 1024 --verbose
  paramsweep run --rerun-failed --history runs.db`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSweep(cmd.Context(), opts, cmd.Flags().Changed("jobs"))
		},
	}

	cmd.Flags().StringVarP(&opts.Suite, "suite", "s", "", "suite to run (default: sweep.suite or the built-in suite)")
	cmd.Flags().IntVarP(&opts.Jobs, "jobs", "j", 1, "cases run concurrently; -1 uses one per CPU")
	cmd.Flags().IntVar(&opts.From, "from", 0, "skip cases with a lower index")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "run at most this many cases")
	cmd.Flags().IntSliceVar(&opts.Cases, "case", nil, "run only these case indices (repeatable)")
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", 0, "per-case timeout (overrides solver.timeout)")
	cmd.Flags().StringVar(&opts.JSON, "json", "", "write the report as JSON to this file")
	cmd.Flags().StringVar(&opts.CSV, "csv", "", "write per-case results as CSV to this file")
	cmd.Flags().StringVar(&opts.Chart, "chart", "", "write an HTML chart of per-case differences to this file")
	cmd.Flags().StringVar(&opts.Metrics, "metrics", "", "write Prometheus metrics in textfile format to this file")
	cmd.Flags().StringVar(&opts.History, "history", "", "record the run in this history database")
	cmd.Flags().BoolVar(&opts.RerunFailed, "rerun-failed", false, "run only the cases that failed in the latest recorded run")
	cmd.Flags().BoolVar(&opts.KeepArtifacts, "keep-artifacts", false, "do not delete solver output files after the sweep")
	cmd.Flags().BoolVar(&opts.KeepInput, "keep-input", false, "keep the settings file written for each case")
	cmd.Flags().BoolVar(&opts.Stream, "stream", false, "copy solver output to stderr while it runs")

	return cmd
}

func runSweep(ctx context.Context, opts *RunOptions, jobsSet bool) error {
	p, err := opts.loadProject()
	if err != nil {
		return err
	}
	s, err := selectSuite(p, opts.Suite)
	if err != nil {
		return err
	}

	env := p.Config.Environment(p.Root)
	if err := project.CheckEnvironment(env); err != nil {
		return err
	}

	r, err := p.Config.Runner(p.Root)
	if err != nil {
		return sweeperrors.Validation(err, "invalid solver configuration")
	}
	if opts.Timeout > 0 {
		r.Timeout = opts.Timeout
	}
	r.KeepInput = opts.KeepInput
	if opts.Stream {
		r.Stream = opts.out.Err()
	}

	cmp, err := p.Config.ComparisonOptions()
	if err != nil {
		return sweeperrors.Validation(err, "invalid comparison options")
	}

	jobs := p.Config.Sweep.Jobs
	if jobsSet {
		jobs = opts.Jobs
	}

	historyPath := opts.History
	if historyPath == "" && opts.RerunFailed {
		historyPath = p.Config.HistoryPath(p.Root)
	}
	var store *history.Store
	if historyPath != "" {
		store, err = history.Open(historyPath, opts.logger)
		if err != nil {
			return sweeperrors.Environmentf("history %s: %v", historyPath, err)
		}
		defer store.Close()
	}

	only := opts.Cases
	if opts.RerunFailed {
		only, err = failedIndices(ctx, store, s.Name)
		if err != nil {
			return err
		}
		if len(only) == 0 {
			opts.out.FinalSuccess("No failed cases to rerun for %s.", s.Name)
			return nil
		}
		opts.out.Info("Rerunning %s failed cases of %s", opts.out.Count(len(only)), s.Name)
	}

	hopts := harness.Options{
		Jobs:       jobs,
		From:       opts.From,
		Limit:      opts.Limit,
		Only:       only,
		Runner:     r,
		Comparison: cmp,
		Logger:     opts.logger,
		OnVerdict:  opts.printVerdict,
	}
	if !opts.KeepArtifacts {
		hopts.Cleaner = p.Config.Cleaner(p.Root)
	}

	opts.out.Section(fmt.Sprintf("%s: %s cases, reference %s", s.Name, opts.out.Count(s.Space.Count()), settings.FormatFloat(s.Reference)))
	rep, sum, err := harness.Run(ctx, s, env, hopts)
	if err != nil {
		return err
	}

	if err := writeOutputs(opts, rep, sum); err != nil {
		return err
	}
	if store != nil {
		if err := store.SaveRun(context.WithoutCancel(ctx), sum, rep.Verdicts()); err != nil {
			return sweeperrors.Wrap(err, "failed to record run")
		}
	}

	printSummary(opts.RootOptions, s, sum)

	if ctx.Err() != nil {
		return sweeperrors.SuiteError(s.Name, "", fmt.Sprintf("sweep interrupted after %d cases", sum.Total))
	}
	if sum.Failed > 0 {
		return &FailuresError{Failed: sum.Failed}
	}
	return nil
}

// failedIndices returns the failed case indices of the latest recorded
// run of a suite.
func failedIndices(ctx context.Context, store *history.Store, suiteName string) ([]int, error) {
	run, ok, err := store.LatestRun(ctx, suiteName)
	if err != nil {
		return nil, sweeperrors.Wrap(err, "failed to read history")
	}
	if !ok {
		return nil, sweeperrors.NotFound("recorded run of suite", suiteName)
	}
	rows, err := store.FailedCases(ctx, run.ID)
	if err != nil {
		return nil, sweeperrors.Wrap(err, "failed to read history")
	}
	indices := make([]int, len(rows))
	for i, row := range rows {
		indices[i] = row.Index
	}
	return indices, nil
}

func (o *RunOptions) printVerdict(v verdict.Verdict) {
	if v.Passed {
		if o.Verbose {
			o.out.CasePassed(v.Case, "diff="+settings.FormatFloat(v.Diff))
		}
		return
	}
	if v.Err != nil {
		o.out.CaseFailed(v.Case, v.Err.Error())
		return
	}
	o.out.CaseFailed(v.Case, fmt.Sprintf("measured=%s diff=%s",
		settings.FormatFloat(v.Measured), settings.FormatFloat(v.Diff)))
}

func writeOutputs(opts *RunOptions, rep *report.Report, sum report.Summary) error {
	files := []struct {
		path  string
		write func(io.Writer) error
	}{
		{opts.JSON, func(w io.Writer) error { return rep.WriteJSON(w, sum) }},
		{opts.CSV, rep.WriteCSV},
		{opts.Chart, func(w io.Writer) error { return rep.WriteChart(w, sum) }},
	}
	for _, f := range files {
		if f.path == "" {
			continue
		}
		if err := writeFile(f.path, f.write); err != nil {
			return sweeperrors.Wrap(err, "failed to write "+f.path)
		}
	}
	if opts.Metrics != "" {
		if err := rep.WriteMetrics(opts.Metrics, sum); err != nil {
			return sweeperrors.Wrap(err, "failed to write "+opts.Metrics)
		}
	}
	return nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func printSummary(opts *RootOptions, s suite.Suite, sum report.Summary) {
	out := opts.out
	out.SummaryHeader("Summary")
	out.SummaryItem("Run", sum.RunID)
	out.SummaryItem("Cases", out.Count(sum.Total))
	out.SummaryPassed("Passed", out.Count(sum.Passed))
	if sum.Failed > 0 {
		out.SummaryFailed("Failed", fmt.Sprintf("%s (%s without a value)", out.Count(sum.Failed), out.Count(sum.Errored)))
	} else {
		out.SummaryItem("Failed", "0")
	}
	out.SummaryItem("Max diff", settings.FormatFloat(sum.MaxDiff))
	out.SummaryItem("Mean diff", settings.FormatFloat(sum.MeanDiff))
	out.SummaryItem("Duration", sum.Duration.Round(time.Millisecond).String())
	if len(sum.Removed) > 0 {
		out.SummaryItem("Artifacts removed", out.Count(len(sum.Removed)))
	}

	if sum.OK() {
		out.FinalSuccess("All %s cases of %s passed.", out.Count(sum.Total), s.Name)
	} else {
		out.FinalFailure("%s of %s cases of %s failed.", out.Count(sum.Failed), out.Count(sum.Total), s.Name)
	}
}
