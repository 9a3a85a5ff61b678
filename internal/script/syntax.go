package script

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/webmend/webmend/internal/constants"
)

// SyntaxChecker statically checks a candidate script without executing it,
// using the interpreter's own parse-only mode. The candidate text is
// supplied over a stdin pipe rather than a temp file, so a script that
// never passes the check never touches the filesystem.
//
// This gate exists solely to keep the orchestrator from promoting a
// candidate that cannot even start.
type SyntaxChecker struct {
	runner  CommandRunner
	timeout time.Duration
	logger  zerolog.Logger
}

// SyntaxOption configures a SyntaxChecker.
type SyntaxOption func(*SyntaxChecker)

// WithSyntaxLogger sets the logger for syntax-check diagnostics.
func WithSyntaxLogger(logger zerolog.Logger) SyntaxOption {
	return func(c *SyntaxChecker) {
		c.logger = logger
	}
}

// WithSyntaxRunner sets a custom command runner (for testing).
func WithSyntaxRunner(runner CommandRunner) SyntaxOption {
	return func(c *SyntaxChecker) {
		c.runner = runner
	}
}

// NewSyntaxChecker creates a syntax checker.
func NewSyntaxChecker(opts ...SyntaxOption) *SyntaxChecker {
	c := &SyntaxChecker{
		runner:  &DefaultCommandRunner{},
		timeout: constants.SyntaxCheckTimeout,
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Check parses the candidate without executing it. It returns the
// interpreter's diagnostic text verbatim when the candidate is invalid and
// "" when it parses cleanly. The error covers environments where the check
// itself could not run (interpreter missing, context canceled).
func (c *SyntaxChecker) Check(ctx context.Context, scriptText string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	checkCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	_, stderr, exitCode, err := c.runner.Run(checkCtx, Command{
		Name:  "bash",
		Args:  []string{"-n"},
		Stdin: strings.NewReader(scriptText),
	})
	if err != nil {
		return "", err
	}

	if exitCode == 0 {
		return "", nil
	}

	diagnostic := strings.TrimSpace(stderr)
	if diagnostic == "" {
		diagnostic = "script failed to parse"
	}

	c.logger.Debug().
		Int("exit_code", exitCode).
		Str("diagnostic", diagnostic).
		Msg("candidate rejected by syntax check")

	return diagnostic, nil
}
