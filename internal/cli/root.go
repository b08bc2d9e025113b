package cli

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	sweeperrors "github.com/AndreyAkinshin/paramsweep/internal/errors"
	"github.com/AndreyAkinshin/paramsweep/internal/logging"
	"github.com/AndreyAkinshin/paramsweep/internal/output"
	"github.com/AndreyAkinshin/paramsweep/internal/project"
	"github.com/AndreyAkinshin/paramsweep/internal/suite"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Quiet      bool
	Verbose    bool
	ConfigPath string

	out    *output.Writer
	logger *slog.Logger
}

// NewRootCommand creates the root command.
func NewRootCommand(out *output.Writer) *cobra.Command {
	opts := &RootOptions{out: out, logger: logging.Discard()}

	cmd := &cobra.Command{
		Use:   "paramsweep",
		Short: "Regression sweeps for a parametrized solver",
		Long: `paramsweep runs a solver over every point of a parameter space, compares
one scalar diagnostic per run against a reference value and exits with the
number of failed cases.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.Quiet && opts.Verbose {
				return fmt.Errorf("--quiet and --verbose are mutually exclusive")
			}
			out.SetQuiet(opts.Quiet)
			opts.logger = logging.New(out.Err(), opts.Quiet, opts.Verbose)
			return nil
		},
	}
	cmd.SetOut(out.Out())
	cmd.SetErr(out.Err())
	cmd.SetVersionTemplate("paramsweep {{.Version}}\n")

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Quiet, "quiet", "q", false, "print failures and the summary only")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "print every case and debug logs")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "configuration file (default: .paramsweep/config.json in this or a parent directory)")

	// Add subcommands
	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewPlanCommand(opts))
	cmd.AddCommand(NewShowCommand(opts))
	cmd.AddCommand(NewBoundCommand(opts))
	cmd.AddCommand(NewCheckCommand(opts))
	cmd.AddCommand(NewConfigCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))
	cmd.AddCommand(NewVersionCommand(opts))

	return cmd
}

// loadProject loads the configuration and prints its warnings.
func (o *RootOptions) loadProject() (*project.Project, error) {
	p, err := project.Load(o.ConfigPath)
	if err != nil {
		return nil, err
	}
	for _, w := range p.Warnings {
		o.out.Warning("%s", w)
	}
	return p, nil
}

// selectSuite picks the named suite, the configured default, or the
// built-in suite, in that order.
func selectSuite(p *project.Project, name string) (suite.Suite, error) {
	set, err := p.Config.SuiteSet()
	if err != nil {
		return suite.Suite{}, sweeperrors.Validation(err, "invalid suites")
	}
	if name == "" {
		name = p.Config.Sweep.Suite
	}
	if name == "" {
		name = suite.BuiltinName
	}
	s, ok := set.Lookup(name)
	if !ok {
		return suite.Suite{}, sweeperrors.Configf("unknown suite %q (available: %s)", name, strings.Join(set.Names(), ", "))
	}
	return s, nil
}
