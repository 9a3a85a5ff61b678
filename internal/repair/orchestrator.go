// Package repair runs the generate-execute-classify-repair loop for one
// browser automation session.
//
// A session is sequential: one execution or one fixer request at a time, each
// blocking under its own timeout. Sessions share no mutable state, so many
// may run concurrently without coordination.
package repair

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/webmend/webmend/internal/classify"
	"github.com/webmend/webmend/internal/config"
	"github.com/webmend/webmend/internal/domain"
	"github.com/webmend/webmend/internal/fixer"
	"github.com/webmend/webmend/internal/history"
	"github.com/webmend/webmend/internal/probe"
	"github.com/webmend/webmend/internal/quality"
)

// qualityIssuePrefix marks data-quality findings inside combined error text,
// keeping them distinguishable from execution errors when the fixer reads
// the history.
const qualityIssuePrefix = "data-quality: "

// Prober reports whether the endpoint is worth starting a session against.
type Prober interface {
	Probe(ctx context.Context, endpoint string) (*probe.Result, error)
}

// Executor runs one script iteration against the endpoint.
type Executor interface {
	Execute(ctx context.Context, iteration int, scriptText, endpoint, task string) (*domain.ExecutionResult, error)
}

// SyntaxChecker reports the interpreter's parse diagnostic for a candidate,
// or "" when the candidate parses.
type SyntaxChecker interface {
	Check(ctx context.Context, scriptText string) (string, error)
}

// Orchestrator drives the repair state machine. Construct with New; the zero
// value is not usable.
type Orchestrator struct {
	prober     Prober
	executor   Executor
	classifier *classify.Classifier
	validator  *quality.Validator
	syntax     SyntaxChecker
	fixer      fixer.Fixer
	cfg        config.RepairConfig
	logger     zerolog.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger for loop progress and iteration diagnostics.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// New creates an Orchestrator from its collaborators.
func New(
	prober Prober,
	executor Executor,
	classifier *classify.Classifier,
	validator *quality.Validator,
	syntax SyntaxChecker,
	fix fixer.Fixer,
	cfg config.RepairConfig,
	opts ...Option,
) *Orchestrator {
	o := &Orchestrator{
		prober:     prober,
		executor:   executor,
		classifier: classifier,
		validator:  validator,
		syntax:     syntax,
		fixer:      fix,
		cfg:        cfg,
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run executes the repair loop for one session and returns its terminal
// outcome. Exactly one of three terminal shapes is possible: success, a
// stale-endpoint skip before any iteration, or exhaustion of the iteration
// budget. An error is returned only for infrastructure failure (context
// cancellation, staging failure), never for "the task could not be done".
func (o *Orchestrator) Run(ctx context.Context, initialScript, task, endpoint string) (*domain.RepairOutcome, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	probeResult, err := o.prober.Probe(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	if !probeResult.Connected {
		o.logger.Warn().
			Str("reason", probeResult.Error).
			Int("probe_attempts", probeResult.Attempts).
			Msg("endpoint unreachable, skipping session")
		return &domain.RepairOutcome{
			SkippedStaleEndpoint: true,
			FinalScript:          initialScript,
			LastError:            probeResult.Error,
		}, nil
	}

	hist := history.New(task)
	current := initialScript
	lastError := ""

	for iteration := 1; iteration <= o.cfg.MaxIterations; iteration++ {
		result, execErr := o.executor.Execute(ctx, iteration, current, endpoint, task)
		if execErr != nil {
			return nil, execErr
		}

		validation := o.validator.Validate(result.Stdout, task)
		if result.Succeeded() && validation.Valid {
			o.logger.Info().Int("iterations", iteration).Msg("session succeeded")
			return &domain.RepairOutcome{
				Success:     true,
				Iterations:  iteration,
				FinalScript: current,
			}, nil
		}

		classified := o.classifier.Classify(result.Stdout, result.Stderr, result.ExitCode, result.TimedOut)
		if result.Succeeded() && !validation.Valid {
			classified = mergeByConfidence(classified, classify.FromValidation(validation))
		}
		lastError = formatIterationError(result, classified, validation)

		o.logger.Info().
			Int("iteration", iteration).
			Int("max_iterations", o.cfg.MaxIterations).
			Str("top_category", topCategory(classified)).
			Msg("iteration failed")

		// Repair is never attempted past the budget.
		if iteration == o.cfg.MaxIterations {
			break
		}

		hist = hist.Append(iteration, current, lastError)

		replacement, fixErr := o.requestReplacement(ctx, current, lastError, endpoint, result.FailedLine, hist)
		if fixErr != nil {
			return nil, fixErr
		}
		if replacement != "" {
			current = replacement
		}
	}

	return &domain.RepairOutcome{
		Success:     false,
		Iterations:  o.cfg.MaxIterations,
		FinalScript: current,
		LastError:   lastError,
	}, nil
}

// requestReplacement runs the inner fix/syntax sub-loop for one iteration.
// It returns the accepted candidate, or "" when the iteration ends without a
// replacement (no candidate, or syntax retries exhausted). A broken candidate
// is never returned.
func (o *Orchestrator) requestReplacement(ctx context.Context, current, errorText, endpoint string, failedLine int, hist history.History) (string, error) {
	syntaxError := ""

	for attempt := 0; attempt <= o.cfg.MaxSyntaxRetries; attempt++ {
		req := &domain.FixRequest{
			Task:        hist.Task(),
			Script:      current,
			ErrorText:   errorText,
			FailedLine:  failedLine,
			Endpoint:    endpoint,
			SyntaxError: syntaxError,
			Attempts:    hist.Attempts(),
		}

		candidate, err := o.fixer.RequestFix(ctx, req)
		if err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			o.logger.Warn().Err(err).Msg("fixer invocation failed, keeping current script")
			return "", nil
		}
		if candidate == "" {
			o.logger.Warn().Msg("fixer produced no candidate, keeping current script")
			return "", nil
		}

		diagnostic, err := o.syntax.Check(ctx, candidate)
		if err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			o.logger.Warn().Err(err).Msg("syntax check failed to run, keeping current script")
			return "", nil
		}
		if diagnostic == "" {
			return candidate, nil
		}

		o.logger.Debug().
			Int("syntax_retry", attempt).
			Str("diagnostic", diagnostic).
			Msg("candidate rejected by syntax check")
		syntaxError = diagnostic
	}

	o.logger.Warn().
		Int("max_syntax_retries", o.cfg.MaxSyntaxRetries).
		Msg("no syntactically valid candidate this iteration, keeping current script")

	return "", nil
}

// mergeByConfidence inserts ce into the already-sorted classification list,
// keeping the descending-confidence order the classifier guarantees.
func mergeByConfidence(classified []domain.ClassifiedError, ce domain.ClassifiedError) []domain.ClassifiedError {
	at := sort.Search(len(classified), func(i int) bool {
		return classified[i].Confidence < ce.Confidence
	})
	classified = append(classified, domain.ClassifiedError{})
	copy(classified[at+1:], classified[at:])
	classified[at] = ce
	return classified
}

// formatIterationError combines classification and data-quality findings into
// the single error text recorded in history and handed to the fixer.
func formatIterationError(result *domain.ExecutionResult, classified []domain.ClassifiedError, validation domain.ValidationOutcome) string {
	var b strings.Builder

	for _, ce := range classified {
		fmt.Fprintf(&b, "[%s %.2f] %s", ce.Category, ce.Confidence, ce.Message)
		if ce.SuggestedFix != "" {
			fmt.Fprintf(&b, " (suggested: %s)", ce.SuggestedFix)
		}
		b.WriteString("\n")
	}

	for _, issue := range validation.Issues {
		b.WriteString(qualityIssuePrefix)
		b.WriteString(issue)
		b.WriteString("\n")
	}

	if detail := strings.TrimSpace(result.Stderr); detail != "" {
		b.WriteString("stderr:\n")
		b.WriteString(detail)
		b.WriteString("\n")
	}

	return strings.TrimRight(b.String(), "\n")
}

func topCategory(classified []domain.ClassifiedError) string {
	if len(classified) == 0 {
		return ""
	}
	return classified[0].Category.String()
}
