package harness

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sweeperrors "github.com/AndreyAkinshin/paramsweep/internal/errors"
	"github.com/AndreyAkinshin/paramsweep/internal/report"
	"github.com/AndreyAkinshin/paramsweep/internal/runner"
	"github.com/AndreyAkinshin/paramsweep/internal/settings"
	"github.com/AndreyAkinshin/paramsweep/internal/suite"
	"github.com/AndreyAkinshin/paramsweep/internal/sweep"
	"github.com/AndreyAkinshin/paramsweep/internal/testing/mocks"
	"github.com/AndreyAkinshin/paramsweep/internal/verdict"
	"github.com/AndreyAkinshin/paramsweep/pkg/paramsweep"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

// smallSuite has 12 cases named small_0 .. small_11.
func smallSuite() suite.Suite {
	return suite.Suite{
		Name:      "small",
		Reference: 0.5,
		Space: sweep.Space{Axes: []sweep.Axis{
			{Name: "degree", Keys: []string{"POLYNOMIAL DEGREE"}, Kind: settings.KindInt, Range: sweep.Range{Start: 1, Stop: 4, Step: 1}},
			{Name: "nx", Keys: []string{"BOX NX", "BOX NY"}, Kind: settings.KindInt, Range: sweep.Range{Start: 6, Stop: 30, Step: 6}},
		}},
	}
}

func options(r runner.CaseRunner) Options {
	return Options{
		Runner:     r,
		Comparison: verdict.DefaultOptions(),
		Logger:     quiet,
	}
}

func passed(rep *report.Report) []bool {
	var out []bool
	for _, v := range rep.Verdicts() {
		out = append(out, v.Passed)
	}
	return out
}

func TestRun_BuiltinAllPass(t *testing.T) {
	t.Parallel()

	s := suite.Builtin()
	mock := mocks.NewCaseRunner(suite.BuiltinReference)

	rep, summary, err := Run(context.Background(), s, settings.DefaultEnvironment(), options(mock))
	require.NoError(t, err)
	assert.Equal(t, 8910, summary.Total)
	assert.Equal(t, 0, summary.Failed)
	assert.Equal(t, paramsweep.ExitSuccess, paramsweep.FailureExitCode(rep.Failures()))
	assert.EqualValues(t, 8910, mock.RunCount())

	cfg, ok := mock.Config("testEllipticQuad_C0_0")
	require.True(t, ok)
	nx, _ := cfg.Get("BOX NX")
	assert.Equal(t, "6", nx.String())
}

func TestRun_InjectedFailureOnlyAffectsItsCase(t *testing.T) {
	t.Parallel()

	s := smallSuite()
	env := settings.DefaultEnvironment()

	base, _, err := Run(context.Background(), s, env, options(mocks.NewCaseRunner(0.5)))
	require.NoError(t, err)

	for _, k := range []int{0, 5, 11} {
		name := s.CaseName(k)
		tests := []struct {
			label string
			mock  *mocks.CaseRunner
		}{
			{"error", mocks.NewCaseRunner(0.5).WithFailure(name, &runner.RunError{Kind: runner.KindExit, Case: name, ExitCode: 1})},
			{"off reference", mocks.NewCaseRunner(0.5).WithValue(name, 0.75)},
			{"panic", mocks.NewCaseRunner(0.5).WithPanic(name, "solver wrapper bug")},
		}
		for _, tt := range tests {
			rep, summary, err := Run(context.Background(), s, env, options(tt.mock))
			require.NoError(t, err)
			assert.Equal(t, 1, summary.Failed, "%s at %d", tt.label, k)

			want := passed(base)
			want[k] = false
			assert.Equal(t, want, passed(rep), "%s at %d", tt.label, k)
		}
	}
}

func TestRun_PanicBecomesRunError(t *testing.T) {
	t.Parallel()

	s := smallSuite()
	mock := mocks.NewCaseRunner(0.5).WithPanic(s.CaseName(3), "boom")

	rep, _, err := Run(context.Background(), s, settings.DefaultEnvironment(), options(mock))
	require.NoError(t, err)

	v := rep.Verdicts()[3]
	kind, ok := runner.KindOf(v.Err)
	require.True(t, ok)
	assert.Equal(t, runner.KindPanic, kind)
	assert.Contains(t, v.Err.Error(), "boom")
	assert.EqualValues(t, 12, mock.RunCount(), "later cases must still run")
}

func TestRun_ParallelMatchesSequential(t *testing.T) {
	t.Parallel()

	s := smallSuite()
	env := settings.DefaultEnvironment()
	failing := func() *mocks.CaseRunner {
		return mocks.NewCaseRunner(0.5).
			WithValue(s.CaseName(2), 0.6).
			WithFailure(s.CaseName(7), errors.New("crash"))
	}

	seq, seqSummary, err := Run(context.Background(), s, env, options(failing()))
	require.NoError(t, err)

	mock := failing()
	opts := options(mock)
	opts.Jobs = 4
	var calls int
	opts.OnVerdict = func(verdict.Verdict) { calls++ }
	par, parSummary, err := Run(context.Background(), s, env, opts)
	require.NoError(t, err)

	assert.Equal(t, passed(seq), passed(par))
	assert.Equal(t, seqSummary.Failed, parSummary.Failed)
	assert.Equal(t, 12, calls)
	assert.LessOrEqual(t, mock.PeakConcurrency(), int32(4))
	for i, v := range par.Verdicts() {
		assert.Equal(t, i, v.Index)
	}
}

func TestRun_Selection(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		opts func(*Options)
		want []string
	}{
		{"from", func(o *Options) { o.From = 9 }, []string{"small_9", "small_10", "small_11"}},
		{"limit", func(o *Options) { o.Limit = 2 }, []string{"small_0", "small_1"}},
		{"from and limit", func(o *Options) { o.From = 4; o.Limit = 3 }, []string{"small_4", "small_5", "small_6"}},
		{"only", func(o *Options) { o.Only = []int{7, 2, 7, 40}; o.From = 9 }, []string{"small_2", "small_7"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			mock := mocks.NewCaseRunner(0.5)
			opts := options(mock)
			tt.opts(&opts)

			rep, summary, err := Run(context.Background(), smallSuite(), settings.DefaultEnvironment(), opts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, mock.RunOrder())
			assert.Equal(t, len(tt.want), summary.Total)
			assert.Equal(t, len(tt.want), rep.Total())
		})
	}
}

func TestRun_CancelStopsScheduling(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	opts := options(mocks.NewCaseRunner(0.5))
	opts.OnVerdict = func(v verdict.Verdict) {
		if v.Index == 4 {
			cancel()
		}
	}

	rep, summary, err := Run(ctx, smallSuite(), settings.DefaultEnvironment(), opts)
	require.NoError(t, err)
	assert.Equal(t, 5, summary.Total)
	assert.Equal(t, 0, rep.Failures())
}

func TestRun_CleanupAfterAllCases(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "mesh.msh"), nil, 0o644))

	s := smallSuite()
	mock := mocks.NewCaseRunner(0.5).WithRunFunc(func(ctx context.Context, cfg *settings.Configuration) (runner.Measurement, error) {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return runner.Measurement{}, err
		}
		// Artifacts of earlier cases must still be present.
		if len(entries) < 2 && cfg.Name != s.CaseName(0) {
			return runner.Measurement{}, errors.New("artifacts removed mid-sweep")
		}
		path := filepath.Join(dir, cfg.Name+"_0000_00000.vtu")
		return runner.Measurement{Value: 0.5}, os.WriteFile(path, nil, 0o644)
	})

	opts := options(mock)
	opts.Cleaner = report.NewCleaner(dir)
	_, summary, err := Run(context.Background(), s, settings.DefaultEnvironment(), opts)
	require.NoError(t, err)

	assert.Equal(t, 0, summary.Failed)
	assert.Len(t, summary.Removed, 12)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "mesh.msh", entries[0].Name())
}

func TestRun_FailureCountExitStatus(t *testing.T) {
	t.Parallel()

	s := suite.Builtin()
	mock := mocks.NewCaseRunner(s.Reference + 1e-3)
	opts := options(mock)
	opts.Jobs = 8

	rep, summary, err := Run(context.Background(), s, settings.DefaultEnvironment(), opts)
	require.NoError(t, err)
	assert.Equal(t, summary.Total, summary.Failed)
	assert.Equal(t, 8910, rep.Failures())
	assert.Equal(t, paramsweep.MaxFailureExit, paramsweep.FailureExitCode(rep.Failures()))
}

func TestRun_PreSweepErrors(t *testing.T) {
	t.Parallel()

	env := settings.DefaultEnvironment()

	_, _, err := Run(context.Background(), smallSuite(), env, Options{Comparison: verdict.DefaultOptions()})
	require.Error(t, err)

	bad := smallSuite()
	bad.Overrides = map[string]any{"NOT A KEY": 1}
	_, _, err = Run(context.Background(), bad, env, options(mocks.NewCaseRunner(0.5)))
	require.Error(t, err)
	assert.Equal(t, paramsweep.ExitConfigError, sweeperrors.GetExitCode(err))

	opts := options(mocks.NewCaseRunner(0.5))
	opts.Comparison.Mode = "fuzzy"
	_, _, err = Run(context.Background(), smallSuite(), env, opts)
	assert.Equal(t, paramsweep.ExitConfigError, sweeperrors.GetExitCode(err))
}

func TestRun_FractionalAxisRejectedBeforeSweep(t *testing.T) {
	t.Parallel()

	s := suite.Suite{
		Name:      "fractional",
		Reference: 0.5,
		Space: sweep.Space{Axes: []sweep.Axis{
			{Name: "nx", Keys: []string{"BOX NX"}, Kind: settings.KindFloat, Range: sweep.Range{Start: 6, Stop: 12, Step: 1.5}},
		}},
	}
	mock := mocks.NewCaseRunner(0.5)

	_, _, err := Run(context.Background(), s, settings.DefaultEnvironment(), options(mock))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BOX NX")
	assert.Equal(t, paramsweep.ExitConfigError, sweeperrors.GetExitCode(err))
	assert.Zero(t, mock.RunCount())
}

func TestRunCase_BuildErrorFailsCase(t *testing.T) {
	t.Parallel()

	mock := mocks.NewCaseRunner(0.5)
	c := suite.Case{
		Index:         3,
		Configuration: settings.NewConfiguration("broken_3", 0.5),
		Err:           errors.New(`setting "BOX NX": expected integer, got 7.5`),
	}

	o := runCase(context.Background(), mock, c)
	assert.Equal(t, 3, o.Index)
	assert.Equal(t, "broken_3", o.Case)
	kind, ok := runner.KindOf(o.Err)
	require.True(t, ok)
	assert.Equal(t, runner.KindInvalid, kind)
	assert.Contains(t, o.Err.Error(), "expected integer")
	assert.Zero(t, mock.RunCount())

	v := verdict.Judge(o, 0.5, verdict.DefaultOptions())
	assert.False(t, v.Passed)
}

func TestJobs(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 1, Jobs(0))
	assert.Equal(t, 1, Jobs(1))
	assert.Equal(t, 6, Jobs(6))
	assert.Equal(t, MaxJobs, Jobs(10_000))
	assert.GreaterOrEqual(t, Jobs(-1), 1)
}
