// Package script provides subprocess execution for candidate automation
// scripts: staging them under iteration-scoped unique paths, running them
// against the browser endpoint under a hard timeout with two-phase
// termination, and statically checking replacement candidates.
package script

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/webmend/webmend/internal/constants"
)

// Command describes one subprocess invocation.
type Command struct {
	// Name is the executable to run.
	Name string

	// Args are the arguments passed to the executable.
	Args []string

	// Env entries are appended to the inherited environment ("KEY=value").
	Env []string

	// Stdin, when non-nil, is piped to the process. Used by the syntax
	// checker to avoid writing candidate text to disk.
	Stdin io.Reader

	// GracePeriod is how long the process gets between the graceful stop
	// signal and the forced kill when its context ends. Zero means the
	// default grace of constants.TerminationGracePeriod.
	GracePeriod time.Duration
}

// CommandRunner defines the interface for executing subprocesses.
// This allows for testing by injecting mock implementations.
type CommandRunner interface {
	// Run executes the command and returns its output. A non-zero exit
	// code is not an error; err reports failures to run at all and
	// context cancellation.
	Run(ctx context.Context, cmd Command) (stdout, stderr string, exitCode int, err error)
}

// DefaultCommandRunner implements CommandRunner using os/exec.
//
// Termination is two-phase: when the context ends, the process receives
// SIGTERM, and anything still alive after GracePeriod is killed. Timeouts
// are always enforced here by the caller's context, never by the
// subprocess cooperating.
type DefaultCommandRunner struct{}

// Run executes the command with concurrent stdout/stderr capture.
func (r *DefaultCommandRunner) Run(ctx context.Context, c Command) (string, string, int, error) {
	cmd := exec.CommandContext(ctx, c.Name, c.Args...) //#nosec G204 -- command comes from validated config or staged script paths
	cmd.Env = append(os.Environ(), c.Env...)
	if c.Stdin != nil {
		cmd.Stdin = c.Stdin
	}

	// Graceful signal first, forced kill after the grace window. WaitDelay
	// zero would wait forever on a SIGTERM-ignoring process, so an unset
	// grace falls back to the default.
	cmd.Cancel = func() error {
		return cmd.Process.Signal(syscall.SIGTERM)
	}
	grace := c.GracePeriod
	if grace <= 0 {
		grace = constants.TerminationGracePeriod
	}
	cmd.WaitDelay = grace

	stdoutPipe, err := cmd.StdoutPipe()
	if err != nil {
		return "", "", 0, err
	}
	stderrPipe, err := cmd.StderrPipe()
	if err != nil {
		return "", "", 0, err
	}

	if startErr := cmd.Start(); startErr != nil {
		return "", "", 0, startErr
	}

	var stdout, stderr bytes.Buffer
	var g errgroup.Group
	g.Go(func() error {
		_, copyErr := io.Copy(&stdout, stdoutPipe)
		return copyErr
	})
	g.Go(func() error {
		_, copyErr := io.Copy(&stderr, stderrPipe)
		return copyErr
	})

	// Drain both pipes before Wait closes them.
	_ = g.Wait()
	waitErr := cmd.Wait()

	exitCode := 0
	if waitErr != nil {
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			exitCode = exitErr.ExitCode()
			// A non-zero exit is an outcome, not a runner failure.
			waitErr = nil
		} else {
			exitCode = -1
		}
	}

	return stdout.String(), stderr.String(), exitCode, waitErr
}

// Ensure DefaultCommandRunner implements CommandRunner.
var _ CommandRunner = (*DefaultCommandRunner)(nil)
