package config

import (
	"github.com/spf13/viper"

	"github.com/webmend/webmend/internal/constants"
)

// DefaultConfig returns a new Config with sensible default values.
// These defaults are used as the base layer that can be overridden by
// config files, environment variables, and CLI flags.
func DefaultConfig() *Config {
	return &Config{
		AI: AIConfig{
			// Agent: the claude CLI is the reference fixer implementation.
			Agent: "claude",

			// Model: "sonnet" balances repair quality against per-iteration
			// latency; a session can issue many fix requests.
			Model: "sonnet",

			FixTimeout: constants.DefaultFixRequestTimeout,
		},
		Repair: RepairConfig{
			// MaxIterations: five iterations converge for most selector and
			// navigation bugs without letting a hopeless task burn budget.
			MaxIterations: constants.DefaultMaxIterations,

			MaxSyntaxRetries: constants.DefaultMaxSyntaxRetries,
			ExecutionTimeout: constants.DefaultExecutionTimeout,
			TerminationGrace: constants.TerminationGracePeriod,
		},
		Quality: QualityConfig{
			MinItemCount: constants.DefaultMinItemCount,

			// Prices are the field extraction tasks most often silently drop,
			// so the check defaults on. Ratings are task-specific.
			RequirePrices:  true,
			MinPriceRate:   constants.DefaultMinPriceRate,
			RequireRatings: false,
			MinRatingRate:  constants.DefaultMinRatingRate,
		},
		Probe: ProbeConfig{
			Command:        "agent-browser get url",
			MaxRetries:     constants.DefaultProbeRetries,
			InitialBackoff: constants.ProbeInitialBackoff,
			MaxBackoff:     constants.ProbeMaxBackoff,
			AttemptTimeout: constants.ProbeAttemptTimeout,
		},
	}
}

// setDefaults registers the default values on a viper instance so that
// partial config files merge over a complete base layer.
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()

	v.SetDefault("ai.agent", d.AI.Agent)
	v.SetDefault("ai.model", d.AI.Model)
	v.SetDefault("ai.fix_timeout", d.AI.FixTimeout)

	v.SetDefault("repair.max_iterations", d.Repair.MaxIterations)
	v.SetDefault("repair.max_syntax_retries", d.Repair.MaxSyntaxRetries)
	v.SetDefault("repair.execution_timeout", d.Repair.ExecutionTimeout)
	v.SetDefault("repair.termination_grace", d.Repair.TerminationGrace)

	v.SetDefault("quality.min_item_count", d.Quality.MinItemCount)
	v.SetDefault("quality.require_prices", d.Quality.RequirePrices)
	v.SetDefault("quality.min_price_rate", d.Quality.MinPriceRate)
	v.SetDefault("quality.require_ratings", d.Quality.RequireRatings)
	v.SetDefault("quality.min_rating_rate", d.Quality.MinRatingRate)

	v.SetDefault("probe.command", d.Probe.Command)
	v.SetDefault("probe.max_retries", d.Probe.MaxRetries)
	v.SetDefault("probe.initial_backoff", d.Probe.InitialBackoff)
	v.SetDefault("probe.max_backoff", d.Probe.MaxBackoff)
	v.SetDefault("probe.attempt_timeout", d.Probe.AttemptTimeout)
}
