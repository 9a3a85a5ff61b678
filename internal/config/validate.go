package config

import (
	"fmt"

	"github.com/webmend/webmend/internal/errors"
)

// Limits applied during validation. Values outside these ranges almost always
// indicate a typo in a config file rather than intent.
const (
	maxIterationsLimit    = 50
	maxSyntaxRetriesLimit = 10
)

// Validate checks a Config for values that cannot work at runtime.
// It returns a sentinel-wrapped error naming the offending section.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.ErrConfigNil
	}

	if err := validateAI(&cfg.AI); err != nil {
		return err
	}
	if err := validateRepair(&cfg.Repair); err != nil {
		return err
	}
	if err := validateQuality(&cfg.Quality); err != nil {
		return err
	}
	return validateProbe(&cfg.Probe)
}

func validateAI(ai *AIConfig) error {
	if ai.Agent == "" {
		return fmt.Errorf("%w: agent cannot be empty", errors.ErrConfigInvalidAI)
	}
	if ai.FixTimeout <= 0 {
		return fmt.Errorf("%w: fix_timeout must be positive, got %s", errors.ErrConfigInvalidAI, ai.FixTimeout)
	}
	return nil
}

func validateRepair(r *RepairConfig) error {
	if r.MaxIterations < 1 || r.MaxIterations > maxIterationsLimit {
		return fmt.Errorf("%w: max_iterations must be in [1, %d], got %d",
			errors.ErrConfigInvalidRepair, maxIterationsLimit, r.MaxIterations)
	}
	if r.MaxSyntaxRetries < 0 || r.MaxSyntaxRetries > maxSyntaxRetriesLimit {
		return fmt.Errorf("%w: max_syntax_retries must be in [0, %d], got %d",
			errors.ErrConfigInvalidRepair, maxSyntaxRetriesLimit, r.MaxSyntaxRetries)
	}
	if r.ExecutionTimeout <= 0 {
		return fmt.Errorf("%w: execution_timeout must be positive, got %s",
			errors.ErrConfigInvalidRepair, r.ExecutionTimeout)
	}
	if r.TerminationGrace <= 0 {
		return fmt.Errorf("%w: termination_grace must be positive, got %s",
			errors.ErrConfigInvalidRepair, r.TerminationGrace)
	}
	return nil
}

func validateQuality(q *QualityConfig) error {
	if q.MinItemCount < 0 {
		return fmt.Errorf("%w: min_item_count cannot be negative, got %d",
			errors.ErrConfigInvalidQuality, q.MinItemCount)
	}
	if q.RequirePrices && (q.MinPriceRate <= 0 || q.MinPriceRate > 1) {
		return fmt.Errorf("%w: min_price_rate must be in (0, 1], got %g",
			errors.ErrConfigInvalidQuality, q.MinPriceRate)
	}
	if q.RequireRatings && (q.MinRatingRate <= 0 || q.MinRatingRate > 1) {
		return fmt.Errorf("%w: min_rating_rate must be in (0, 1], got %g",
			errors.ErrConfigInvalidQuality, q.MinRatingRate)
	}
	return nil
}

func validateProbe(p *ProbeConfig) error {
	if p.Command == "" {
		return fmt.Errorf("%w: command cannot be empty", errors.ErrConfigInvalidProbe)
	}
	if p.MaxRetries < 1 {
		return fmt.Errorf("%w: max_retries must be at least 1, got %d",
			errors.ErrConfigInvalidProbe, p.MaxRetries)
	}
	if p.InitialBackoff <= 0 || p.MaxBackoff < p.InitialBackoff {
		return fmt.Errorf("%w: backoff window [%s, %s] is not sane",
			errors.ErrConfigInvalidProbe, p.InitialBackoff, p.MaxBackoff)
	}
	if p.AttemptTimeout <= 0 {
		return fmt.Errorf("%w: attempt_timeout must be positive, got %s",
			errors.ErrConfigInvalidProbe, p.AttemptTimeout)
	}
	return nil
}
