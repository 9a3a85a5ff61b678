// Package classify maps raw script output to a ranked set of categorized
// errors via a fixed, ordered table of pattern rules.
//
// The contract the orchestrator relies on: output is deduplicated by
// category (keeping the highest-confidence instance), sorted descending by
// confidence, and identical input always yields identical output.
package classify

import (
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/webmend/webmend/internal/domain"
)

// unknownConfidence is attached to the fallback classification emitted when
// no rule fired but the exit code was non-zero.
const unknownConfidence = 0.5

// Classifier evaluates the rule table against script output.
// The zero value is not usable; create one with New.
type Classifier struct {
	rules  []rule
	logger zerolog.Logger
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithLogger sets the logger for classification diagnostics.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Classifier) {
		c.logger = logger
	}
}

// New creates a Classifier with the default rule table.
func New(opts ...Option) *Classifier {
	c := &Classifier{
		rules:  defaultRules(),
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify maps the captured output of one run to an ordered list of
// categorized errors. Timeout is injected as a synthetic TIMEOUT
// classification with confidence 1.0 before rule evaluation, so it always
// outranks a pattern-matched timeout.
func (c *Classifier) Classify(stdout, stderr string, exitCode *int, timedOut bool) []domain.ClassifiedError {
	combined := stdout + "\n" + stderr

	var found []domain.ClassifiedError

	if timedOut {
		found = append(found, domain.ClassifiedError{
			Category:     domain.CategoryTimeout,
			Message:      "script execution exceeded the hard timeout and was terminated",
			Confidence:   1.0,
			SuggestedFix: "reduce the scope of one run or raise the execution timeout",
		})
	}

	ruleFired := false
	for _, r := range c.rules {
		// First matching pattern wins; a rule fires at most once.
		for _, p := range r.patterns {
			match := p.FindStringSubmatch(combined)
			if match == nil {
				continue
			}

			ce := domain.ClassifiedError{
				Category:     r.category,
				Message:      r.message,
				Confidence:   r.confidence,
				SuggestedFix: r.suggestedFix,
			}
			if r.details != nil {
				ce.Details = r.details(combined, match)
			}
			found = append(found, ce)
			ruleFired = true
			break
		}
	}

	if !ruleFired && !timedOut && exitCode != nil && *exitCode != 0 {
		found = append(found, domain.ClassifiedError{
			Category:   domain.CategoryUnknown,
			Message:    "script failed with a non-zero exit code and no recognizable error pattern",
			Confidence: unknownConfidence,
		})
	}

	result := dedupeByCategory(found)

	// Stable sort keeps insertion order among equal confidences, which keeps
	// the output deterministic for identical input.
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Confidence > result[j].Confidence
	})

	if len(result) > 0 {
		c.logger.Debug().
			Str("primary", result[0].Category.String()).
			Int("count", len(result)).
			Msg("classified run output")
	}

	return result
}

// FromValidation synthesizes a DATA_QUALITY classification from a failed
// data-quality verdict. The orchestrator merges this with execution
// classifications when building the repair prompt for a run that exited 0
// but did not accomplish the task.
func FromValidation(outcome domain.ValidationOutcome) domain.ClassifiedError {
	return domain.ClassifiedError{
		Category:   domain.CategoryDataQuality,
		Message:    "output was produced but failed data-quality checks: " + strings.Join(outcome.Issues, "; "),
		Confidence: 0.9,
		SuggestedFix: "extract the missing fields explicitly instead of relying on " +
			"default or placeholder values",
	}
}

// dedupeByCategory keeps the first occurrence per category. Rules declare at
// most one entry per category, so a duplicate only arises when the synthetic
// TIMEOUT meets the pattern-based one; the synthetic entry comes first and
// wins, which is exactly the declared-confidence ordering.
func dedupeByCategory(in []domain.ClassifiedError) []domain.ClassifiedError {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[domain.ErrorCategory]struct{}, len(in))
	out := make([]domain.ClassifiedError, 0, len(in))
	for _, ce := range in {
		if _, dup := seen[ce.Category]; dup {
			continue
		}
		seen[ce.Category] = struct{}{}
		out = append(out, ce)
	}
	return out
}
