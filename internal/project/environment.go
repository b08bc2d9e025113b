package project

import (
	"fmt"
	"os"
	"os/exec"

	sweeperrors "github.com/AndreyAkinshin/paramsweep/internal/errors"
	"github.com/AndreyAkinshin/paramsweep/internal/settings"
)

// CheckEnvironment verifies that the solver can be started at all before a
// sweep begins: the binary resolves to an executable, and the solver and
// work directories exist. A missing work directory is created.
func CheckEnvironment(env settings.Environment) error {
	if _, err := exec.LookPath(env.Binary); err != nil {
		return sweeperrors.Environmentf("solver binary %q: %v", env.Binary, err)
	}
	if err := requireDir(env.SolverDir, "solver directory"); err != nil {
		return err
	}
	if err := os.MkdirAll(env.WorkDir, 0o755); err != nil {
		return sweeperrors.Environmentf("work directory %q: %v", env.WorkDir, err)
	}
	return requireDir(env.WorkDir, "work directory")
}

// requireDir checks that dir exists and is a directory.
func requireDir(dir, what string) error {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return sweeperrors.Environmentf("%s %q does not exist", what, dir)
	}
	if err != nil {
		return sweeperrors.Environmentf("%s %q: cannot access: %v", what, dir, err)
	}
	if !info.IsDir() {
		return sweeperrors.Environment(fmt.Sprintf("%s %q is not a directory", what, dir))
	}
	return nil
}
