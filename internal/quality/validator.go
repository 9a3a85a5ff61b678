// Package quality inspects successful-looking script output for semantic
// correctness: missing fields, incomplete counts, selector bugs that exit 0.
//
// The validator is deliberately asymmetric: it fails only on recognized-but-
// bad data. Output it cannot locate or parse is reported valid, so the loop
// never punishes exploratory or partial output formats it does not know.
package quality

import (
	"fmt"
	"math"
	"strings"

	"github.com/rs/zerolog"

	"github.com/webmend/webmend/internal/config"
	"github.com/webmend/webmend/internal/domain"
)

// placeholderValues are field values that look filled but carry no data.
var placeholderValues = map[string]struct{}{ //nolint:gochecknoglobals // lookup table
	"":        {},
	"n/a":     {},
	"na":      {},
	"tbd":     {},
	"-":       {},
	"null":    {},
	"unknown": {},
}

// Validator applies semantic thresholds to extracted records.
type Validator struct {
	thresholds config.QualityConfig
	logger     zerolog.Logger
}

// Option configures a Validator.
type Option func(*Validator)

// WithLogger sets the logger for validation diagnostics.
func WithLogger(logger zerolog.Logger) Option {
	return func(v *Validator) {
		v.logger = logger
	}
}

// New creates a Validator with the given thresholds.
func New(thresholds config.QualityConfig, opts ...Option) *Validator {
	v := &Validator{
		thresholds: thresholds,
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Validate inspects stdout for semantic correctness, independent of exit
// code. The task description is only used for logging today; thresholds come
// from configuration.
//
// Checks run in order and short-circuit on the first hard failure:
//  1. locate the payload (unrecognizable output => valid)
//  2. zero records => invalid, "No items extracted"
//  3. record count below the minimum => issue, non-fatal by itself
//  4. price coverage below the threshold => invalid
//  5. rating coverage below the threshold => invalid
func (v *Validator) Validate(stdout, task string) domain.ValidationOutcome {
	p := locatePayload(stdout)
	if p == nil {
		v.logger.Debug().Str("task", task).Msg("no recognizable payload in output, skipping quality checks")
		return domain.ValidationOutcome{Valid: true}
	}

	if len(p.records) == 0 {
		return domain.ValidationOutcome{
			Valid:  false,
			Issues: []string{"No items extracted"},
		}
	}

	var issues []string

	if v.thresholds.MinItemCount > 0 && len(p.records) < v.thresholds.MinItemCount {
		issues = append(issues, fmt.Sprintf("Only %d items extracted (expected at least %d)",
			len(p.records), v.thresholds.MinItemCount))
	}

	if v.thresholds.RequirePrices {
		if issue := coverageIssue(p.records, "price", v.thresholds.MinPriceRate); issue != "" {
			return domain.ValidationOutcome{Valid: false, Issues: append(issues, issue)}
		}
	}

	if v.thresholds.RequireRatings {
		if issue := coverageIssue(p.records, "rating", v.thresholds.MinRatingRate); issue != "" {
			return domain.ValidationOutcome{Valid: false, Issues: append(issues, issue)}
		}
	}

	v.logger.Debug().
		Str("task", task).
		Int("records", len(p.records)).
		Int("soft_issues", len(issues)).
		Msg("output passed data-quality checks")

	return domain.ValidationOutcome{Valid: true, Issues: issues}
}

// coverageIssue checks what fraction of records carry a real value for the
// field, returning a percentage-bearing issue string when it falls short of
// minRate and "" otherwise.
func coverageIssue(records []map[string]any, field string, minRate float64) string {
	filled := 0
	for _, rec := range records {
		if hasRealValue(rec[field]) {
			filled++
		}
	}

	rate := float64(filled) / float64(len(records))
	if rate >= minRate {
		return ""
	}

	return fmt.Sprintf("Only %d%% of items have a %s (required %d%%)",
		percent(rate), field, percent(minRate))
}

// hasRealValue reports whether a field value is present and not a placeholder.
func hasRealValue(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case string:
		_, placeholder := placeholderValues[strings.ToLower(strings.TrimSpace(v))]
		return !placeholder
	case float64:
		return true
	case bool:
		return true
	default:
		return true
	}
}

func percent(rate float64) int {
	return int(math.Round(rate * 100))
}
