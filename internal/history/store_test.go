package history

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AndreyAkinshin/paramsweep/internal/report"
	"github.com/AndreyAkinshin/paramsweep/internal/verdict"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func openStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "history.db")
	s, err := Open(path, quiet)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, path
}

func sampleRun(id, suite string, started time.Time) (report.Summary, []verdict.Verdict) {
	opts := verdict.DefaultOptions()
	verdicts := []verdict.Verdict{
		verdict.Judge(verdict.Outcome{Index: 0, Case: suite + "_0", Measured: 0.5, Duration: 1500 * time.Millisecond}, 0.5, opts),
		verdict.Judge(verdict.Outcome{Index: 1, Case: suite + "_1", Measured: 0.7}, 0.5, opts),
		verdict.Judge(verdict.Outcome{Index: 2, Case: suite + "_2", Err: errors.New("exit status 139")}, 0.5, opts),
	}
	sum := report.Summarize(verdicts)
	sum.RunID = id
	sum.Suite = suite
	sum.Started = started
	sum.Duration = 2 * time.Second
	return sum, verdicts
}

func TestOpen_MigratesOnce(t *testing.T) {
	t.Parallel()

	s, path := openStore(t)
	version, dirty, err := s.SchemaVersion()
	require.NoError(t, err)
	assert.EqualValues(t, 1, version)
	assert.False(t, dirty)

	again, err := Open(path, quiet)
	require.NoError(t, err)
	defer again.Close()
	version, _, err = again.SchemaVersion()
	require.NoError(t, err)
	assert.EqualValues(t, 1, version)
}

func TestStore_SaveAndQuery(t *testing.T) {
	t.Parallel()

	s, _ := openStore(t)
	ctx := context.Background()
	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i, id := range []string{"run-a", "run-b", "run-c"} {
		suite := "quad"
		if id == "run-c" {
			suite = "hex"
		}
		sum, verdicts := sampleRun(id, suite, t0.Add(time.Duration(i)*time.Hour))
		require.NoError(t, s.SaveRun(ctx, sum, verdicts))
	}

	runs, err := s.ListRuns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, []string{"run-c", "run-b", "run-a"}, []string{runs[0].ID, runs[1].ID, runs[2].ID})
	assert.Equal(t, 3, runs[0].Total)
	assert.Equal(t, 2, runs[0].Failed)
	assert.True(t, runs[0].StartedAt.Equal(t0.Add(2*time.Hour)))
	assert.True(t, runs[0].FinishedAt.Equal(t0.Add(2*time.Hour+2*time.Second)))

	limited, err := s.ListRuns(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	latest, ok, err := s.LatestRun(ctx, "quad")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "run-b", latest.ID)

	_, ok, err = s.LatestRun(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	failed, err := s.FailedCases(ctx, "run-b")
	require.NoError(t, err)
	require.Len(t, failed, 2)
	assert.Equal(t, 1, failed[0].Index)
	assert.InDelta(t, 0.7, failed[0].Measured, 1e-12)
	assert.InDelta(t, 0.2, failed[0].Diff, 1e-12)
	assert.Equal(t, 2, failed[1].Index)
	assert.True(t, math.IsNaN(failed[1].Measured))
	assert.True(t, math.IsInf(failed[1].Diff, 1))
	assert.Equal(t, "exit status 139", failed[1].Error)
}

func TestStore_DuplicateRunRollsBack(t *testing.T) {
	t.Parallel()

	s, _ := openStore(t)
	ctx := context.Background()
	sum, verdicts := sampleRun("dup", "quad", time.Now())

	require.NoError(t, s.SaveRun(ctx, sum, verdicts))
	require.Error(t, s.SaveRun(ctx, sum, verdicts))

	failed, err := s.FailedCases(ctx, "dup")
	require.NoError(t, err)
	assert.Len(t, failed, 2)
}
