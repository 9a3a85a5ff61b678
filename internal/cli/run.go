package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/webmend/webmend/internal/classify"
	"github.com/webmend/webmend/internal/config"
	"github.com/webmend/webmend/internal/constants"
	"github.com/webmend/webmend/internal/domain"
	"github.com/webmend/webmend/internal/errors"
	"github.com/webmend/webmend/internal/fixer"
	"github.com/webmend/webmend/internal/probe"
	"github.com/webmend/webmend/internal/quality"
	"github.com/webmend/webmend/internal/repair"
	"github.com/webmend/webmend/internal/script"
	"github.com/webmend/webmend/internal/signal"
)

// RunFlags holds flags specific to the run command.
type RunFlags struct {
	// Script is a path to an existing script. When empty, the initial script
	// is generated from the task description.
	Script string
	// Endpoint overrides the CDP_URL environment variable.
	Endpoint string
	// Out is where the final script is written after the session.
	Out string
	// MaxIterations overrides the configured repair budget.
	MaxIterations int
	// Timeout overrides the configured per-run execution timeout.
	Timeout string
	// Agent overrides the configured AI agent CLI.
	Agent string
	// Model overrides the configured AI model.
	Model string
	// KeepSession preserves staged script files for post-mortem inspection.
	KeepSession bool
}

// AddRunCommand adds the run command to the root command.
func AddRunCommand(root *cobra.Command, global *GlobalFlags) {
	flags := &RunFlags{}

	cmd := &cobra.Command{
		Use:   "run [task description]",
		Short: "Run a browser automation task with automatic repair",
		Long: `Run a browser automation task against the remote browser session.

Without --script, an initial bash script is generated from the task
description. The script is executed against the endpoint from CDP_URL
(or --endpoint), its failures are classified and repaired, and the loop
continues until the output passes data-quality checks or the iteration
budget is exhausted.

Examples:
  webmend run "extract the 20 top-rated laptops with prices"
  webmend run --script scrape.sh "extract laptop listings"
  webmend run --out final.sh --max-iterations 8 "collect product ratings"`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTask(cmd.Context(), cmd.OutOrStdout(), flags, global, args)
		},
		SilenceUsage: true,
	}

	cmd.Flags().StringVarP(&flags.Script, "script", "s", "", "path to an existing script (skips generation)")
	cmd.Flags().StringVar(&flags.Endpoint, "endpoint", "", "browser endpoint (defaults to $"+constants.EndpointEnvVar+")")
	cmd.Flags().StringVar(&flags.Out, "out", "", "write the final script to this path")
	cmd.Flags().IntVar(&flags.MaxIterations, "max-iterations", 0, "override the repair iteration budget")
	cmd.Flags().StringVar(&flags.Timeout, "timeout", "", "override the per-run execution timeout (e.g. 90s)")
	cmd.Flags().StringVar(&flags.Agent, "agent", "", "override the AI agent CLI")
	cmd.Flags().StringVar(&flags.Model, "model", "", "override the AI model")
	cmd.Flags().BoolVar(&flags.KeepSession, "keep-session", false, "keep staged script files after the session")

	root.AddCommand(cmd)
}

// runTask drives one repair session end to end.
func runTask(ctx context.Context, w io.Writer, flags *RunFlags, global *GlobalFlags, args []string) error {
	task := strings.TrimSpace(strings.Join(args, " "))
	if task == "" {
		return errors.Wrap(errors.ErrMissingTask, "pass the task as an argument")
	}

	endpoint := resolveEndpoint(flags.Endpoint)
	if endpoint == "" {
		return errors.Wrapf(errors.ErrMissingEndpoint, "set %s or pass --endpoint", constants.EndpointEnvVar)
	}

	cfg, err := config.LoadWithOverrides(ctx, config.Overrides{
		MaxIterations:    flags.MaxIterations,
		ExecutionTimeout: flags.Timeout,
		Agent:            flags.Agent,
		Model:            flags.Model,
	})
	if err != nil {
		return err
	}

	logger := GetLogger()

	handler := signal.NewHandler(ctx)
	defer handler.Stop()
	ctx = handler.Context()

	fix := fixer.New(cfg.AI, fixer.WithLogger(logger))

	initialScript, err := resolveInitialScript(ctx, flags.Script, task, fix)
	if err != nil {
		return err
	}

	sessionsDir, err := config.SessionsDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(sessionsDir, 0o750); err != nil {
		return errors.Wrap(err, "failed to create sessions directory")
	}

	stage, err := script.NewStage(sessionsDir)
	if err != nil {
		return err
	}
	if !flags.KeepSession {
		defer func() { _ = stage.Cleanup() }()
	}

	logger.Info().
		Str("session_id", stage.SessionID()).
		Int("max_iterations", cfg.Repair.MaxIterations).
		Msg("starting repair session")

	orchestrator := repair.New(
		probe.New(cfg.Probe, probe.WithLogger(logger)),
		script.NewExecutor(stage, cfg.Repair.ExecutionTimeout, cfg.Repair.TerminationGrace, script.WithExecutorLogger(logger)),
		classify.New(classify.WithLogger(logger)),
		quality.New(cfg.Quality, quality.WithLogger(logger)),
		script.NewSyntaxChecker(script.WithSyntaxLogger(logger)),
		fix,
		cfg.Repair,
		repair.WithLogger(logger),
	)

	outcome, err := orchestrator.Run(ctx, initialScript, task, endpoint)
	if err != nil {
		select {
		case <-handler.Interrupted():
			logger.Warn().Msg("session interrupted")
		default:
		}
		return err
	}

	if flags.Out != "" && outcome.FinalScript != "" {
		if writeErr := os.WriteFile(flags.Out, []byte(outcome.FinalScript), 0o700); writeErr != nil { //nolint:gosec // Script must stay executable
			return errors.Wrapf(writeErr, "failed to write final script to %s", flags.Out)
		}
		logger.Info().Str("path", flags.Out).Msg("final script written")
	}

	if err := renderOutcome(w, global.Output, outcome); err != nil {
		return err
	}

	return outcomeError(outcome)
}

// resolveEndpoint prefers the flag, falling back to the environment.
func resolveEndpoint(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return os.Getenv(constants.EndpointEnvVar)
}

// resolveInitialScript reads the script file when one was given, otherwise
// asks the agent to generate one from the task.
func resolveInitialScript(ctx context.Context, path, task string, fix fixer.Fixer) (string, error) {
	if path != "" {
		data, err := os.ReadFile(path) //nolint:gosec // User-supplied script path
		if err != nil {
			return "", errors.Wrapf(err, "failed to read script %s", path)
		}
		return string(data), nil
	}

	generated, err := fix.Generate(ctx, task)
	if err != nil {
		return "", err
	}
	if generated == "" {
		return "", errors.Wrap(errors.ErrNoCandidate, "agent produced no initial script")
	}
	return generated, nil
}

// outcomeError maps a failed outcome to its typed error so the process exit
// code reflects the session result.
func outcomeError(outcome *domain.RepairOutcome) error {
	switch {
	case outcome.Success:
		return nil
	case outcome.SkippedStaleEndpoint:
		return errors.Wrap(errors.ErrEndpointUnreachable, outcome.LastError)
	default:
		return errors.Wrapf(errors.ErrIterationsExhausted, "after %d iterations", outcome.Iterations)
	}
}

// renderOutcome prints the session result in the requested format.
func renderOutcome(w io.Writer, format string, outcome *domain.RepairOutcome) error {
	if format == OutputJSON {
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(outcome)
	}

	switch {
	case outcome.Success:
		fmt.Fprintf(w, "Task succeeded after %d iteration(s).\n", outcome.Iterations)
	case outcome.SkippedStaleEndpoint:
		fmt.Fprintf(w, "Session skipped: browser endpoint unreachable (%s).\n", outcome.LastError)
	default:
		fmt.Fprintf(w, "Task failed after %d iteration(s).\n", outcome.Iterations)
		if outcome.LastError != "" {
			fmt.Fprintf(w, "Last error:\n%s\n", outcome.LastError)
		}
	}
	return nil
}
