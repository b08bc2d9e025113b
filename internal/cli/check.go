package cli

import (
	"github.com/spf13/cobra"

	sweeperrors "github.com/AndreyAkinshin/paramsweep/internal/errors"
	"github.com/AndreyAkinshin/paramsweep/internal/report"
	"github.com/AndreyAkinshin/paramsweep/internal/verdict"
)

// CheckOptions holds flags for the check command.
type CheckOptions struct {
	*RootOptions
	Tolerance float64
	Mode      string
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CheckOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "check <report.json> <baseline.json>",
		Short: "Compare a saved report against a baseline report",
		Long: `Compare the measured value of every baseline case with the case of the
same name in a report written by "run --json". The comparison options come
from the configuration unless overridden by flags.

The exit status is the number of differing cases, capped at 250.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(opts, args[0], args[1], cmd.Flags().Changed("tolerance"), cmd.Flags().Changed("mode"))
		},
	}

	cmd.Flags().Float64Var(&opts.Tolerance, "tolerance", verdict.DefaultTolerance, "comparison tolerance")
	cmd.Flags().StringVar(&opts.Mode, "mode", string(verdict.ModeAbsolute), "tolerance mode: absolute, relative or ulp")

	return cmd
}

func runCheck(opts *CheckOptions, reportPath, baselinePath string, toleranceSet, modeSet bool) error {
	p, err := opts.loadProject()
	if err != nil {
		return err
	}
	cmp, err := p.Config.ComparisonOptions()
	if err != nil {
		return sweeperrors.Validation(err, "invalid comparison options")
	}
	if toleranceSet {
		cmp.Tolerance = opts.Tolerance
	}
	if modeSet {
		if cmp.Mode, err = verdict.ParseMode(opts.Mode); err != nil {
			return sweeperrors.Validation(err, "invalid --mode")
		}
	}
	if err := cmp.Validate(); err != nil {
		return sweeperrors.Validation(err, "invalid comparison options")
	}

	current, err := report.LoadDocument(reportPath)
	if err != nil {
		return sweeperrors.Environmentf("cannot read report %s: %v", reportPath, err)
	}
	baseline, err := report.LoadDocument(baselinePath)
	if err != nil {
		return sweeperrors.Environmentf("cannot read baseline %s: %v", baselinePath, err)
	}

	mismatches := report.CompareDocuments(current, baseline, cmp)
	for _, m := range mismatches {
		opts.out.CaseFailed(m.Name, m.Detail)
	}
	if len(mismatches) > 0 {
		opts.out.FinalFailure("%s of %s baseline cases differ (%s).",
			opts.out.Count(len(mismatches)), opts.out.Count(len(baseline.Cases)), cmp)
		return &FailuresError{Failed: len(mismatches)}
	}
	opts.out.FinalSuccess("All %s baseline cases match (%s).", opts.out.Count(len(baseline.Cases)), cmp)
	return nil
}
