// Package config provides configuration management for webmend with layered precedence.
//
// Configuration sources are loaded in the following order (highest precedence first):
//  1. CLI flags (passed via LoadWithOverrides)
//  2. Environment variables (WEBMEND_* prefix)
//  3. Project config (.webmend/config.yaml)
//  4. Global config (~/.webmend/config.yaml)
//  5. Built-in defaults
//
// Each higher level completely overrides the lower level for the same key.
//
// IMPORTANT: This package may import internal/constants and internal/errors,
// but MUST NOT import internal/domain or other internal packages.
package config

import "time"

// Config is the root configuration structure for webmend.
// It contains all configuration sections for the application.
type Config struct {
	// AI contains settings for the LLM-driven script generator and fixer.
	AI AIConfig `yaml:"ai" mapstructure:"ai"`

	// Repair contains the repair-loop budget and timeouts.
	Repair RepairConfig `yaml:"repair" mapstructure:"repair"`

	// Quality contains the data-quality thresholds applied to script output.
	Quality QualityConfig `yaml:"quality" mapstructure:"quality"`

	// Probe contains connectivity probe settings.
	Probe ProbeConfig `yaml:"probe" mapstructure:"probe"`
}

// AIConfig contains settings for the fixer collaborator.
type AIConfig struct {
	// Agent specifies which LLM CLI to invoke for fix requests.
	// Default: "claude"
	Agent string `yaml:"agent" mapstructure:"agent"`

	// Model specifies the model to request from the agent CLI.
	// Default: "sonnet"
	Model string `yaml:"model" mapstructure:"model"`

	// FixTimeout is the maximum duration for one fix request.
	// Default: 5 minutes
	FixTimeout time.Duration `yaml:"fix_timeout" mapstructure:"fix_timeout"`
}

// RepairConfig contains the repair-loop policy. It is immutable for the
// lifetime of a session; sessions share it read-only.
type RepairConfig struct {
	// MaxIterations is the hard budget of execute-and-repair iterations per
	// session. Default: 5, valid range: 1-50.
	MaxIterations int `yaml:"max_iterations" mapstructure:"max_iterations"`

	// MaxSyntaxRetries is how many additional fix requests a single
	// iteration gets when candidates keep failing syntax validation.
	// Default: 2, valid range: 0-10.
	MaxSyntaxRetries int `yaml:"max_syntax_retries" mapstructure:"max_syntax_retries"`

	// ExecutionTimeout bounds one script run. Default: 2 minutes.
	ExecutionTimeout time.Duration `yaml:"execution_timeout" mapstructure:"execution_timeout"`

	// TerminationGrace is how long a timed-out subprocess gets between the
	// graceful stop signal and the forced kill. Default: 5 seconds.
	TerminationGrace time.Duration `yaml:"termination_grace" mapstructure:"termination_grace"`
}

// QualityConfig contains the semantic thresholds the data-quality validator
// applies to a run's extracted records.
type QualityConfig struct {
	// MinItemCount is the soft lower bound on extracted record count.
	// A shortfall is reported as an issue but is not fatal by itself.
	// Default: 5.
	MinItemCount int `yaml:"min_item_count" mapstructure:"min_item_count"`

	// RequirePrices enables the price-coverage check. Default: true.
	RequirePrices bool `yaml:"require_prices" mapstructure:"require_prices"`

	// MinPriceRate is the minimum fraction of records carrying a real
	// (non-placeholder) price. Default: 0.9, valid range: (0, 1].
	MinPriceRate float64 `yaml:"min_price_rate" mapstructure:"min_price_rate"`

	// RequireRatings enables the rating-coverage check. Default: false.
	RequireRatings bool `yaml:"require_ratings" mapstructure:"require_ratings"`

	// MinRatingRate is the rating counterpart of MinPriceRate.
	// Default: 0.8, valid range: (0, 1].
	MinRatingRate float64 `yaml:"min_rating_rate" mapstructure:"min_rating_rate"`
}

// ProbeConfig contains connectivity probe settings. The probe runs exactly
// once per session, before the loop begins.
type ProbeConfig struct {
	// Command is the trivial no-op command issued against the endpoint.
	// It runs under sh -c with the endpoint injected as CDP_URL.
	// Default: "agent-browser get url"
	Command string `yaml:"command" mapstructure:"command"`

	// MaxRetries is the maximum number of probe attempts. Default: 3.
	MaxRetries int `yaml:"max_retries" mapstructure:"max_retries"`

	// InitialBackoff is the delay before the first retry; each subsequent
	// retry doubles it. Default: 1 second.
	InitialBackoff time.Duration `yaml:"initial_backoff" mapstructure:"initial_backoff"`

	// MaxBackoff caps the exponential backoff. Default: 8 seconds.
	MaxBackoff time.Duration `yaml:"max_backoff" mapstructure:"max_backoff"`

	// AttemptTimeout bounds a single probe attempt. Default: 10 seconds.
	AttemptTimeout time.Duration `yaml:"attempt_timeout" mapstructure:"attempt_timeout"`
}
