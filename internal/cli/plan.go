package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	sweeperrors "github.com/AndreyAkinshin/paramsweep/internal/errors"
	"github.com/AndreyAkinshin/paramsweep/internal/settings"
	"github.com/AndreyAkinshin/paramsweep/internal/suite"
	"github.com/AndreyAkinshin/paramsweep/internal/sweep"
)

// PlanOptions holds flags for the plan command.
type PlanOptions struct {
	*RootOptions
	Suite        string
	ShowSettings bool
	From         int
	Limit        int
}

// NewPlanCommand creates the plan command.
func NewPlanCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PlanOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "List the cases of a suite without running them",
		Long: `Print the axes of a suite and every case it enumerates, in run order.

Example:
  paramsweep plan
  paramsweep plan --from 100 --limit 5 --show-settings`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlan(opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Suite, "suite", "s", "", "suite to list (default: sweep.suite or the built-in suite)")
	cmd.Flags().BoolVar(&opts.ShowSettings, "show-settings", false, "print the settings file of every listed case")
	cmd.Flags().IntVar(&opts.From, "from", 0, "skip cases with a lower index")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "list at most this many cases")

	return cmd
}

func runPlan(opts *PlanOptions) error {
	p, err := opts.loadProject()
	if err != nil {
		return err
	}
	s, err := selectSuite(p, opts.Suite)
	if err != nil {
		return err
	}
	env := p.Config.Environment(p.Root)
	if err := s.Validate(env); err != nil {
		return sweeperrors.Validation(err, "invalid suite")
	}

	out := opts.out
	out.DryRunStart()
	out.Println("Suite: %s", s.Name)
	out.Println("Reference: %s", settings.FormatFloat(s.Reference))
	out.Println("")
	out.Table([]string{"AXIS", "KIND", "VALUES", "KEYS"}, axisRows(s.Space))
	out.Println("")

	listed := 0
	for i, c := range s.Configurations(env) {
		if i < opts.From {
			continue
		}
		if opts.Limit > 0 && listed >= opts.Limit {
			break
		}
		listed++
		out.Println("%6d  %s  %s", i, c.Configuration.Name, c.Point)
		if opts.ShowSettings {
			out.Print("%s", c.Configuration.Encode())
			out.Println("")
		}
	}

	out.DryRunEnd()
	out.Println("%s of %s cases listed", out.Count(listed), out.Count(s.Space.Count()))
	return nil
}

func axisRows(space sweep.Space) [][]string {
	title := cases.Title(language.English)
	rows := make([][]string, 0, len(space.Axes))
	for _, a := range space.Axes {
		var values string
		switch {
		case len(a.Values) > 0:
			parts := make([]string, len(a.Values))
			for i, v := range a.Values {
				parts[i] = settings.FormatFloat(v)
			}
			values = "{" + strings.Join(parts, ", ") + "}"
		case a.Bound != nil:
			values = fmt.Sprintf("%s:bound(%s):%s", settings.FormatFloat(a.Range.Start), a.Bound.DependsOn, settings.FormatFloat(a.Range.Step))
		default:
			values = a.Range.String()
		}
		rows = append(rows, []string{a.Name, title.String(a.Kind.String()), values, strings.Join(a.Keys, ", ")})
	}
	return rows
}

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	var suiteName, against string

	cmd := &cobra.Command{
		Use:   "show <index>",
		Short: "Print the settings file of one case",
		Long: `Print the settings file the solver receives for one case index.

With --against, compare the case with an existing settings file instead
(for example one kept by "run --keep-input") and print the keys that differ.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[0])
			if err != nil || index < 0 {
				return sweeperrors.Configf("invalid case index %q", args[0])
			}
			return runShow(rootOpts, suiteName, index, against)
		},
	}
	cmd.Flags().StringVarP(&suiteName, "suite", "s", "", "suite the case belongs to")
	cmd.Flags().StringVar(&against, "against", "", "settings file to compare the case with")
	return cmd
}

func runShow(opts *RootOptions, suiteName string, index int, against string) error {
	p, err := opts.loadProject()
	if err != nil {
		return err
	}
	s, err := selectSuite(p, suiteName)
	if err != nil {
		return err
	}
	env := p.Config.Environment(p.Root)
	if err := s.Validate(env); err != nil {
		return sweeperrors.Validation(err, "invalid suite")
	}
	c, err := buildCase(s, env, index)
	if err != nil {
		return err
	}
	if against == "" {
		opts.out.Print("%s", c.Encode())
		return nil
	}

	f, err := os.Open(against)
	if err != nil {
		return sweeperrors.Environmentf("cannot open %s: %v", against, err)
	}
	defer f.Close()
	other, err := settings.ParseSettings(f)
	if err != nil {
		return sweeperrors.Configf("%s: %v", against, err)
	}

	diffs := diffSettings(c, other)
	for _, row := range diffs {
		opts.out.Println("%s: %s != %s", row[0], row[1], row[2])
	}
	if len(diffs) > 0 {
		return &FailuresError{Failed: len(diffs)}
	}
	opts.out.Info("%s matches %s", against, c.Name)
	return nil
}

// diffSettings returns [key, want, got] for every key whose encoded value differs
// or that only one side defines. Keys are in the order of want, then the
// extra keys of got.
func diffSettings(want, got *settings.Configuration) [][3]string {
	const missing = "<unset>"
	var rows [][3]string
	for _, s := range want.Settings() {
		v, ok := got.Get(s.Key)
		switch {
		case !ok:
			rows = append(rows, [3]string{s.Key, s.Value.String(), missing})
		case v.String() != s.Value.String():
			rows = append(rows, [3]string{s.Key, s.Value.String(), v.String()})
		}
	}
	for _, s := range got.Settings() {
		if _, ok := want.Get(s.Key); !ok {
			rows = append(rows, [3]string{s.Key, missing, s.Value.String()})
		}
	}
	return rows
}

func buildCase(s suite.Suite, env settings.Environment, index int) (*settings.Configuration, error) {
	pt, ok := s.Space.At(index)
	if !ok {
		return nil, sweeperrors.Configf("case index %d out of range: suite %s has %d cases", index, s.Name, s.Space.Count())
	}
	cfg, err := s.Build(env, index, pt)
	if err != nil {
		return nil, sweeperrors.Wrap(err, "failed to build "+s.CaseName(index))
	}
	return cfg, nil
}

// BoundOptions holds flags for the bound command.
type BoundOptions struct {
	*RootOptions
	Degree int
	Budget float64
	Min    int
	Max    int
}

// NewBoundCommand creates the bound command.
func NewBoundCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BoundOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "bound",
		Short: "Print the maximum mesh resolution for a polynomial degree",
		Long: `Print floor(sqrt(budget/(degree+1)^2)) clamped to [min, max], the exclusive
upper limit of the nx axis. Without --degree a table for degrees 1 to 9 is
printed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBound(opts, cmd.Flags().Changed("degree"))
		},
	}

	cmd.Flags().IntVarP(&opts.Degree, "degree", "d", 0, "polynomial degree")
	cmd.Flags().Float64Var(&opts.Budget, "budget", sweep.DefaultBudget, "resource budget")
	cmd.Flags().IntVar(&opts.Min, "min", sweep.DefaultMinResolution, "lower clamp")
	cmd.Flags().IntVar(&opts.Max, "max", sweep.DefaultMaxResolution, "upper clamp")

	return cmd
}

func runBound(opts *BoundOptions, degreeSet bool) error {
	b := sweep.Bound{DependsOn: "degree", Budget: opts.Budget, Min: opts.Min, Max: opts.Max}
	if err := b.Validate(); err != nil {
		return sweeperrors.Validation(err, "invalid bound")
	}
	if degreeSet {
		if opts.Degree < 0 {
			return sweeperrors.Configf("degree must be non-negative, got %d", opts.Degree)
		}
		opts.out.Println("%d", sweep.MaxResolution(opts.Degree, b.Budget, b.Min, b.Max))
		return nil
	}

	rows := make([][]string, 0, 9)
	for d := 1; d <= 9; d++ {
		rows = append(rows, []string{strconv.Itoa(d), strconv.Itoa(sweep.MaxResolution(d, b.Budget, b.Min, b.Max))})
	}
	opts.out.Table([]string{"DEGREE", "BOUND"}, rows)
	return nil
}
