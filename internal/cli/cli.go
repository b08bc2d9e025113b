// Package cli implements the paramsweep command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	sweeperrors "github.com/AndreyAkinshin/paramsweep/internal/errors"
	"github.com/AndreyAkinshin/paramsweep/internal/output"
	"github.com/AndreyAkinshin/paramsweep/pkg/paramsweep"
)

// Version is set at build time.
var Version = "dev"

// FailuresError reports failed cases. It carries the count that becomes
// the exit status.
type FailuresError struct {
	Failed int
}

func (e *FailuresError) Error() string {
	if e.Failed == 1 {
		return "1 case failed"
	}
	return fmt.Sprintf("%d cases failed", e.Failed)
}

// Run executes the CLI with the given arguments and returns an exit code.
// SIGINT and SIGTERM stop scheduling new cases.
func Run(args []string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return RunWith(ctx, args, output.New())
}

// RunWith executes the CLI writing through out.
func RunWith(ctx context.Context, args []string, out *output.Writer) int {
	cmd := NewRootCommand(out)
	cmd.SetArgs(args)
	return exitCode(cmd.ExecuteContext(ctx), out)
}

// exitCode maps a command error to the process exit status. Failed cases
// map to their (capped) count; errors that are not SweepErrors come from
// argument parsing and count as configuration errors.
func exitCode(err error, out *output.Writer) int {
	if err == nil {
		return paramsweep.ExitSuccess
	}

	var failures *FailuresError
	if errors.As(err, &failures) {
		return paramsweep.FailureExitCode(failures.Failed)
	}

	out.ErrorPrefix("%v", err)
	var se *sweeperrors.SweepError
	if errors.As(err, &se) {
		return se.ExitCode()
	}
	return paramsweep.ExitConfigError
}
