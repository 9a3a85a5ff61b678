// Package probe checks whether the remote browser endpoint is reachable
// before a repair session commits to its loop.
//
// The probe runs exactly once per session, before the first iteration. A
// mid-session endpoint death is therefore diagnosed only indirectly, via a
// CDP_CONNECTION classification after an execution failure. That trade-off
// is deliberate: re-probing every iteration would add a round-trip of
// latency to each run for a failure mode the classifier already catches.
package probe

import (
	"context"
	"regexp"
	"time"

	"github.com/rs/zerolog"

	"github.com/webmend/webmend/internal/config"
	"github.com/webmend/webmend/internal/constants"
	"github.com/webmend/webmend/internal/script"
)

// Result reports the outcome of a connectivity probe.
type Result struct {
	// Connected reports whether the endpoint answered the no-op command.
	Connected bool

	// Error describes the failure when Connected is false.
	Error string

	// Attempts is how many probe attempts ran.
	Attempts int
}

// transientPatterns match output that indicates a retryable failure: the
// endpoint exists but this attempt lost the race. Anything not matching a
// transient or fatal pattern is treated as success.
var transientPatterns = []*regexp.Regexp{ //nolint:gochecknoglobals // Package-level patterns for reuse
	regexp.MustCompile(`ECONNRESET`),
	regexp.MustCompile(`socket hang up`),
	regexp.MustCompile(`(?i)session (?:expired|closed|not found)`),
	regexp.MustCompile(`(?i)stale`),
	regexp.MustCompile(`WebSocket is not open`),
	regexp.MustCompile(`(?:Target|browser) (?:closed|has been closed)`),
}

// fatalPatterns match output for which further attempts cannot help: the
// endpoint is actively refusing connections. These short-circuit the retry
// loop without backoff.
var fatalPatterns = []*regexp.Regexp{ //nolint:gochecknoglobals // Package-level patterns for reuse
	regexp.MustCompile(`ECONNREFUSED`),
	regexp.MustCompile(`(?i)connection (?:actively )?refused`),
}

// Prober issues a trivial no-op command against the endpoint with bounded
// retries and exponential backoff.
type Prober struct {
	runner script.CommandRunner
	cfg    config.ProbeConfig
	logger zerolog.Logger
	sleep  func(context.Context, time.Duration) error
}

// Option configures a Prober.
type Option func(*Prober)

// WithLogger sets the logger for probe diagnostics.
func WithLogger(logger zerolog.Logger) Option {
	return func(p *Prober) {
		p.logger = logger
	}
}

// WithRunner sets a custom command runner (for testing).
func WithRunner(runner script.CommandRunner) Option {
	return func(p *Prober) {
		p.runner = runner
	}
}

// WithSleep overrides the backoff sleeper (for testing).
func WithSleep(sleep func(context.Context, time.Duration) error) Option {
	return func(p *Prober) {
		p.sleep = sleep
	}
}

// New creates a Prober with the given configuration.
func New(cfg config.ProbeConfig, opts ...Option) *Prober {
	p := &Prober{
		runner: &script.DefaultCommandRunner{},
		cfg:    cfg,
		logger: zerolog.Nop(),
		sleep:  sleepCtx,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Probe checks endpoint reachability. Up to MaxRetries attempts run, each
// under its own timeout, with exponential backoff between them
// (initial * 2^retry, capped at MaxBackoff). A fatal signal short-circuits
// immediately without further backoff.
func (p *Prober) Probe(ctx context.Context, endpoint string) (*Result, error) {
	result := &Result{}

	for attempt := 0; attempt < p.cfg.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		if attempt > 0 {
			if err := p.sleep(ctx, p.backoff(attempt-1)); err != nil {
				return result, err
			}
		}

		result.Attempts = attempt + 1
		outcome := p.attempt(ctx, endpoint)

		switch outcome.kind {
		case probeOK:
			p.logger.Info().Int("attempts", result.Attempts).Msg("endpoint reachable")
			result.Connected = true
			result.Error = ""
			return result, nil
		case probeFatal:
			p.logger.Warn().
				Int("attempts", result.Attempts).
				Str("reason", outcome.reason).
				Msg("endpoint refused connection, giving up")
			result.Error = outcome.reason
			return result, nil
		case probeTransient:
			p.logger.Debug().
				Int("attempt", result.Attempts).
				Str("reason", outcome.reason).
				Msg("transient probe failure, will retry")
			result.Error = outcome.reason
		}
	}

	p.logger.Warn().
		Int("attempts", result.Attempts).
		Str("reason", result.Error).
		Msg("endpoint unreachable after all probe attempts")

	return result, nil
}

type probeKind int

const (
	probeOK probeKind = iota
	probeTransient
	probeFatal
)

type probeOutcome struct {
	kind   probeKind
	reason string
}

// attempt issues the no-op command once under its own timeout.
func (p *Prober) attempt(ctx context.Context, endpoint string) probeOutcome {
	attemptCtx, cancel := context.WithTimeout(ctx, p.cfg.AttemptTimeout)
	defer cancel()

	stdout, stderr, exitCode, err := p.runner.Run(attemptCtx, script.Command{
		Name: "sh",
		Args: []string{"-c", p.cfg.Command},
		Env:  []string{constants.EndpointEnvVar + "=" + endpoint},
	})

	combined := stdout + "\n" + stderr
	if err != nil {
		combined = combined + "\n" + err.Error()
	}

	for _, pattern := range fatalPatterns {
		if pattern.MatchString(combined) {
			return probeOutcome{kind: probeFatal, reason: pattern.FindString(combined)}
		}
	}

	if attemptCtx.Err() != nil {
		return probeOutcome{kind: probeTransient, reason: "probe attempt timed out"}
	}

	for _, pattern := range transientPatterns {
		if pattern.MatchString(combined) {
			return probeOutcome{kind: probeTransient, reason: pattern.FindString(combined)}
		}
	}

	if err != nil || exitCode != 0 {
		// Unknown failure shapes are treated as success: the probe only
		// gives up on signals it positively recognizes, so an unfamiliar
		// CLI wrapper never blocks a session that might work.
		p.logger.Debug().Int("exit_code", exitCode).Msg("probe command failed without a known pattern, assuming reachable")
	}

	return probeOutcome{kind: probeOK}
}

// backoff computes the delay after a given zero-based retry.
func (p *Prober) backoff(retry int) time.Duration {
	delay := p.cfg.InitialBackoff << uint(retry)
	if delay > p.cfg.MaxBackoff || delay <= 0 {
		return p.cfg.MaxBackoff
	}
	return delay
}

// sleepCtx waits for d or until the context ends.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
