// Package fixer requests new script candidates from an AI coding agent.
//
// The agent is an external CLI (claude by default) invoked in non-interactive
// print mode. The fixer owns prompt construction and response extraction; it
// never judges whether a candidate is correct, only whether one was produced.
package fixer

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/webmend/webmend/internal/config"
	"github.com/webmend/webmend/internal/domain"
	"github.com/webmend/webmend/internal/errors"
	"github.com/webmend/webmend/internal/script"
)

// Fixer produces script candidates. An empty returned script with a nil error
// means the agent answered but offered no usable candidate.
type Fixer interface {
	// RequestFix asks for a corrected version of a failed script.
	RequestFix(ctx context.Context, req *domain.FixRequest) (string, error)

	// Generate asks for an initial script for a task, with no prior attempt.
	Generate(ctx context.Context, task string) (string, error)
}

// agentResponse mirrors the JSON envelope printed by the claude CLI in
// --output-format json mode.
type agentResponse struct {
	Type       string `json:"type"`
	IsError    bool   `json:"is_error"`
	Result     string `json:"result"`
	DurationMs int    `json:"duration_ms"`
}

// CLIFixer invokes the configured agent CLI as a subprocess, passing the
// prompt on stdin.
type CLIFixer struct {
	runner script.CommandRunner
	cfg    config.AIConfig
	logger zerolog.Logger
}

// Option configures a CLIFixer.
type Option func(*CLIFixer)

// WithLogger sets the logger for agent invocation diagnostics.
func WithLogger(logger zerolog.Logger) Option {
	return func(f *CLIFixer) {
		f.logger = logger
	}
}

// WithRunner sets a custom command runner (for testing).
func WithRunner(runner script.CommandRunner) Option {
	return func(f *CLIFixer) {
		f.runner = runner
	}
}

// New creates a CLIFixer with the given agent configuration.
func New(cfg config.AIConfig, opts ...Option) *CLIFixer {
	f := &CLIFixer{
		runner: &script.DefaultCommandRunner{},
		cfg:    cfg,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// RequestFix renders the repair prompt and extracts a candidate script from
// the agent's answer.
func (f *CLIFixer) RequestFix(ctx context.Context, req *domain.FixRequest) (string, error) {
	prompt, err := buildFixPrompt(req)
	if err != nil {
		return "", err
	}
	res, err := f.invoke(ctx, prompt)
	if err != nil {
		return "", err
	}
	return res.Script, nil
}

// Generate renders the initial-generation prompt and extracts the first
// script for the task.
func (f *CLIFixer) Generate(ctx context.Context, task string) (string, error) {
	prompt, err := buildGeneratePrompt(task)
	if err != nil {
		return "", err
	}
	res, err := f.invoke(ctx, prompt)
	if err != nil {
		return "", err
	}
	return res.Script, nil
}

// invoke runs the agent CLI once under the fix timeout and reports the
// invocation outcome for logging.
func (f *CLIFixer) invoke(ctx context.Context, prompt string) (domain.FixResult, error) {
	if err := ctx.Err(); err != nil {
		return domain.FixResult{}, err
	}

	invokeCtx := ctx
	if f.cfg.FixTimeout > 0 {
		var cancel context.CancelFunc
		invokeCtx, cancel = context.WithTimeout(ctx, f.cfg.FixTimeout)
		defer cancel()
	}

	args := []string{"-p", "--output-format", "json"}
	if f.cfg.Model != "" {
		args = append(args, "--model", f.cfg.Model)
	}

	start := time.Now()
	stdout, stderr, exitCode, runErr := f.runner.Run(invokeCtx, script.Command{
		Name:  f.agentBinary(),
		Args:  args,
		Stdin: strings.NewReader(prompt),
	})
	elapsed := time.Since(start)

	if runErr != nil {
		return domain.FixResult{}, errors.Wrapf(errors.ErrFixerInvocation, "%s: %s", f.agentBinary(), runErr.Error())
	}
	if exitCode != 0 {
		detail := strings.TrimSpace(stderr)
		if detail == "" {
			detail = strings.TrimSpace(stdout)
		}
		return domain.FixResult{}, errors.Wrapf(errors.ErrFixerInvocation, "%s exited %d: %s", f.agentBinary(), exitCode, detail)
	}

	answer := f.parseAnswer(stdout)
	result := domain.FixResult{
		Script:     extractScript(answer),
		DurationMs: elapsed.Milliseconds(),
		Model:      f.cfg.Model,
	}

	f.logger.Debug().
		Str("agent", f.agentBinary()).
		Int64("duration_ms", result.DurationMs).
		Bool("candidate", result.Script != "").
		Msg("agent invocation completed")

	return result, nil
}

// parseAnswer unwraps the CLI's JSON envelope. Agents that print plain text
// instead of the envelope are accepted as-is.
func (f *CLIFixer) parseAnswer(stdout string) string {
	var resp agentResponse
	if err := json.Unmarshal([]byte(stdout), &resp); err != nil || resp.Result == "" {
		return stdout
	}
	if resp.IsError {
		return ""
	}
	return resp.Result
}

func (f *CLIFixer) agentBinary() string {
	if f.cfg.Agent != "" {
		return f.cfg.Agent
	}
	return "claude"
}

// Compile-time check that CLIFixer implements Fixer.
var _ Fixer = (*CLIFixer)(nil)
