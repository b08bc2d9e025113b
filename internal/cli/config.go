package cli

import (
	"github.com/spf13/cobra"

	sweeperrors "github.com/AndreyAkinshin/paramsweep/internal/errors"
	"github.com/AndreyAkinshin/paramsweep/internal/settings"
)

// NewConfigCommand creates the config command group.
func NewConfigCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the configuration",
	}
	cmd.AddCommand(newConfigValidateCommand(rootOpts))
	return cmd
}

func newConfigValidateCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration and every configured suite",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := opts.loadProject()
			if err != nil {
				return err
			}
			set, err := p.Config.SuiteSet()
			if err != nil {
				return sweeperrors.Validation(err, "invalid suites")
			}

			source := p.ConfigPath
			if source == "" {
				source = "built-in defaults"
			}
			opts.out.ValidationSuccess("%s is valid", source)
			for _, s := range set {
				opts.out.Println("  %s: %s cases, reference %s",
					s.Name, opts.out.Count(s.Space.Count()), settings.FormatFloat(s.Reference))
			}
			return nil
		},
	}
}
