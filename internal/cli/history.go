package cli

import (
	"context"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	sweeperrors "github.com/AndreyAkinshin/paramsweep/internal/errors"
	"github.com/AndreyAkinshin/paramsweep/internal/history"
	"github.com/AndreyAkinshin/paramsweep/internal/settings"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Limit  int
	DB     string
	Failed string
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded runs",
		Long: `List the runs recorded with "run --history", most recent first.

With --failed, list the failed cases of one run instead.

Example:
  paramsweep history --limit 5
  paramsweep history --failed 4f1c2a9e-...`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd.Context(), opts)
		},
	}

	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 20, "number of runs to list; 0 lists all")
	cmd.Flags().StringVar(&opts.DB, "db", "", "history database (default: history.path from the configuration)")
	cmd.Flags().StringVar(&opts.Failed, "failed", "", "list the failed cases of this run")

	return cmd
}

func runHistory(ctx context.Context, opts *HistoryOptions) error {
	path := opts.DB
	if path == "" {
		p, err := opts.loadProject()
		if err != nil {
			return err
		}
		path = p.Config.HistoryPath(p.Root)
	}

	store, err := history.Open(path, opts.logger)
	if err != nil {
		return sweeperrors.Environmentf("history %s: %v", path, err)
	}
	defer store.Close()

	if opts.Failed != "" {
		return listFailed(ctx, opts, store)
	}

	runs, err := store.ListRuns(ctx, opts.Limit)
	if err != nil {
		return sweeperrors.Wrap(err, "failed to read history")
	}
	if len(runs) == 0 {
		opts.out.Info("No recorded runs in %s", path)
		return nil
	}

	rows := make([][]string, len(runs))
	for i, r := range runs {
		rows[i] = []string{
			r.ID,
			r.Suite,
			r.StartedAt.Local().Format(time.DateTime),
			r.FinishedAt.Sub(r.StartedAt).Round(time.Second).String(),
			opts.out.Count(r.Total),
			opts.out.Count(r.Failed),
			settings.FormatFloat(r.MaxDiff),
		}
	}
	opts.out.Table([]string{"RUN", "SUITE", "STARTED", "DURATION", "CASES", "FAILED", "MAX DIFF"}, rows)
	return nil
}

func listFailed(ctx context.Context, opts *HistoryOptions, store *history.Store) error {
	cases, err := store.FailedCases(ctx, opts.Failed)
	if err != nil {
		return sweeperrors.Wrap(err, "failed to read history")
	}
	if len(cases) == 0 {
		opts.out.Info("No failed cases recorded for run %s", opts.Failed)
		return nil
	}

	rows := make([][]string, len(cases))
	for i, c := range cases {
		rows[i] = []string{
			strconv.Itoa(c.Index),
			c.Name,
			settings.FormatFloat(c.Measured),
			settings.FormatFloat(c.Diff),
			c.Error,
		}
	}
	opts.out.Table([]string{"INDEX", "CASE", "MEASURED", "DIFF", "ERROR"}, rows)
	return nil
}
