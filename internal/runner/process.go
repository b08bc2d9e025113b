package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/AndreyAkinshin/paramsweep/internal/settings"
)

// InputExt is the extension of the settings file written for each case.
const InputExt = ".rc"

// waitDelay bounds how long Run waits for output pipes after the solver is
// killed, since grandchildren may still hold them open.
const waitDelay = 2 * time.Second

// ProcessRunner runs the solver as a child process: it writes the case's
// settings file into WorkDir, runs "[Launcher...] Binary <file>" there and
// parses the diagnostic from the combined output.
type ProcessRunner struct {
	Binary   string
	Launcher []string          // Optional prefix such as ["mpirun", "-np", "1"]
	WorkDir  string            // Directory the solver runs in
	Env      map[string]string // Added on top of the inherited environment
	Timeout  time.Duration     // Per-case limit; zero means none
	Pattern  *regexp.Regexp    // Diagnostic pattern; nil means the default

	// Stream, when set, receives the solver output as it is produced.
	Stream io.Writer
	// KeepInput leaves the settings file in WorkDir after the run.
	KeepInput bool
}

// NewProcessRunner creates a runner for binary executing in workDir.
func NewProcessRunner(binary, workDir string) *ProcessRunner {
	return &ProcessRunner{Binary: binary, WorkDir: workDir}
}

// InputPath returns the settings file path used for a case.
func (r *ProcessRunner) InputPath(caseName string) string {
	return filepath.Join(r.WorkDir, caseName+InputExt)
}

// Run executes one case.
func (r *ProcessRunner) Run(ctx context.Context, cfg *settings.Configuration) (Measurement, error) {
	start := time.Now()
	fail := func(kind ErrorKind, cause error) (Measurement, error) {
		return Measurement{Duration: time.Since(start)}, &RunError{Kind: kind, Case: cfg.Name, Cause: cause}
	}

	if r.Binary == "" {
		return fail(KindLaunch, errors.New("no solver binary configured"))
	}

	input := r.InputPath(cfg.Name)
	if err := os.WriteFile(input, cfg.Encode(), 0o644); err != nil {
		return fail(KindLaunch, fmt.Errorf("write settings: %w", err))
	}
	if !r.KeepInput {
		defer os.Remove(input)
	}

	runCtx := ctx
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	argv := append(append([]string{}, r.Launcher...), r.Binary, filepath.Base(input))
	cmd := exec.CommandContext(runCtx, argv[0], argv[1:]...)
	cmd.Dir = r.WorkDir
	cmd.WaitDelay = waitDelay

	// Environment precedence (highest to lowest): r.Env, then the
	// inherited process environment. Later entries win.
	cmd.Env = os.Environ()
	for k, v := range r.Env {
		cmd.Env = append(cmd.Env, k+"="+v)
	}

	// A single writer for both streams keeps writes serialized.
	var captured bytes.Buffer
	var w io.Writer = &captured
	if r.Stream != nil {
		w = io.MultiWriter(r.Stream, &captured)
	}
	cmd.Stdout = w
	cmd.Stderr = w

	err := cmd.Run()
	m := Measurement{Output: captured.String(), Duration: time.Since(start)}

	switch {
	case ctx.Err() != nil:
		return m, &RunError{Kind: KindCanceled, Case: cfg.Name, Cause: ctx.Err()}
	case runCtx.Err() != nil:
		return m, &RunError{Kind: KindTimeout, Case: cfg.Name, Cause: fmt.Errorf("exceeded %s", r.Timeout)}
	case err != nil:
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return m, &RunError{Kind: KindExit, Case: cfg.Name, ExitCode: exitErr.ExitCode(), Cause: lastLine(m.Output)}
		}
		return m, &RunError{Kind: KindLaunch, Case: cfg.Name, Cause: err}
	}

	v, err := ParseDiagnostic(m.Output, r.Pattern)
	if err != nil {
		kind := KindMalformed
		if errors.Is(err, ErrNoDiagnostic) {
			kind = KindMissing
		}
		return m, &RunError{Kind: kind, Case: cfg.Name, Cause: err}
	}
	m.Value = v
	return m, nil
}

// lastLine returns the last non-empty output line as an error, or nil when
// the output is empty.
func lastLine(output string) error {
	lines := strings.Split(strings.TrimSpace(output), "\n")
	last := strings.TrimSpace(lines[len(lines)-1])
	if last == "" {
		return nil
	}
	return errors.New(last)
}
