package script

import (
	"context"
	"errors"
	"regexp"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/webmend/webmend/internal/constants"
	"github.com/webmend/webmend/internal/domain"
)

// failedLinePattern matches the bash diagnostic convention "file: line N:".
var failedLinePattern = regexp.MustCompile(`: line (\d+):`)

// Executor runs a candidate script against the browser endpoint under a
// hard timeout. It performs no retries; retry policy lives in the repair
// orchestrator.
type Executor struct {
	runner  CommandRunner
	stage   *Stage
	timeout time.Duration
	grace   time.Duration
	logger  zerolog.Logger
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithExecutorLogger sets the logger for execution diagnostics.
func WithExecutorLogger(logger zerolog.Logger) ExecutorOption {
	return func(e *Executor) {
		e.logger = logger
	}
}

// WithExecutorRunner sets a custom command runner (for testing).
func WithExecutorRunner(runner CommandRunner) ExecutorOption {
	return func(e *Executor) {
		e.runner = runner
	}
}

// NewExecutor creates a script executor staging files through stage.
func NewExecutor(stage *Stage, timeout, grace time.Duration, opts ...ExecutorOption) *Executor {
	if timeout <= 0 {
		timeout = constants.DefaultExecutionTimeout
	}
	if grace <= 0 {
		grace = constants.TerminationGracePeriod
	}
	e := &Executor{
		runner:  &DefaultCommandRunner{},
		stage:   stage,
		timeout: timeout,
		grace:   grace,
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute stages and runs the script with the endpoint injected as an
// environment value, capturing output and exit state.
//
// A timeout is an outcome, not an error: the result comes back with
// TimedOut set and a nil exit code. The returned error covers staging
// failures and cancellation of the parent context only.
func (e *Executor) Execute(ctx context.Context, iteration int, scriptText, endpoint, taskHint string) (*domain.ExecutionResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path, err := e.stage.WriteIteration(iteration, scriptText)
	if err != nil {
		return nil, err
	}

	e.logger.Info().
		Int("iteration", iteration).
		Str("script_path", path).
		Dur("timeout", e.timeout).
		Msg("executing script")

	start := time.Now()

	runCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	stdout, stderr, exitCode, runErr := e.runner.Run(runCtx, Command{
		Name: "bash",
		Args: []string{path},
		Env: []string{
			constants.EndpointEnvVar + "=" + endpoint,
			constants.TaskEnvVar + "=" + taskHint,
		},
		GracePeriod: e.grace,
	})

	duration := time.Since(start)

	result := &domain.ExecutionResult{
		Stdout:     stdout,
		Stderr:     stderr,
		FailedLine: parseFailedLine(stderr),
	}

	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		result.TimedOut = true
		e.logger.Warn().
			Int("iteration", iteration).
			Dur("duration", duration).
			Msg("script execution timed out")
		return result, nil
	}

	if err := ctx.Err(); err != nil {
		return result, err
	}

	if runErr != nil {
		// Could not run at all (bash missing, pipe failure). Surface as an
		// execution result so the loop can classify and repair it.
		e.logger.Error().Err(runErr).Int("iteration", iteration).Msg("script failed to run")
		result.Stderr = result.Stderr + "\n" + runErr.Error()
		return result, nil
	}

	if exitCode >= 0 {
		result.ExitCode = &exitCode
	}

	e.logger.Info().
		Int("iteration", iteration).
		Int("exit_code", exitCode).
		Bool("timed_out", result.TimedOut).
		Dur("duration", duration).
		Msg("script execution completed")

	return result, nil
}

// parseFailedLine extracts the failing script line from interpreter
// diagnostics. Best-effort: zero when the output carries no line marker.
func parseFailedLine(stderr string) int {
	m := failedLinePattern.FindStringSubmatch(stderr)
	if m == nil {
		return 0
	}
	line, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return line
}
