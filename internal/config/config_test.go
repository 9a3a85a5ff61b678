package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webmend/webmend/internal/errors"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, Validate(cfg))

	assert.Equal(t, "claude", cfg.AI.Agent)
	assert.Equal(t, 5, cfg.Repair.MaxIterations)
	assert.Equal(t, 2, cfg.Repair.MaxSyntaxRetries)
	assert.Equal(t, 2*time.Minute, cfg.Repair.ExecutionTimeout)
	assert.True(t, cfg.Quality.RequirePrices)
	assert.InDelta(t, 0.9, cfg.Quality.MinPriceRate, 0.0001)
	assert.Equal(t, 3, cfg.Probe.MaxRetries)
}

func TestValidateNilConfig(t *testing.T) {
	err := Validate(nil)
	assert.ErrorIs(t, err, errors.ErrConfigNil)
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{
			name:    "zero iterations",
			mutate:  func(c *Config) { c.Repair.MaxIterations = 0 },
			wantErr: errors.ErrConfigInvalidRepair,
		},
		{
			name:    "iterations above limit",
			mutate:  func(c *Config) { c.Repair.MaxIterations = 51 },
			wantErr: errors.ErrConfigInvalidRepair,
		},
		{
			name:    "negative syntax retries",
			mutate:  func(c *Config) { c.Repair.MaxSyntaxRetries = -1 },
			wantErr: errors.ErrConfigInvalidRepair,
		},
		{
			name:    "zero execution timeout",
			mutate:  func(c *Config) { c.Repair.ExecutionTimeout = 0 },
			wantErr: errors.ErrConfigInvalidRepair,
		},
		{
			name:    "price rate above one",
			mutate:  func(c *Config) { c.Quality.MinPriceRate = 1.5 },
			wantErr: errors.ErrConfigInvalidQuality,
		},
		{
			name:    "zero price rate while required",
			mutate:  func(c *Config) { c.Quality.MinPriceRate = 0 },
			wantErr: errors.ErrConfigInvalidQuality,
		},
		{
			name:    "empty agent",
			mutate:  func(c *Config) { c.AI.Agent = "" },
			wantErr: errors.ErrConfigInvalidAI,
		},
		{
			name:    "empty probe command",
			mutate:  func(c *Config) { c.Probe.Command = "" },
			wantErr: errors.ErrConfigInvalidProbe,
		},
		{
			name:    "max backoff below initial",
			mutate:  func(c *Config) { c.Probe.MaxBackoff = c.Probe.InitialBackoff / 2 },
			wantErr: errors.ErrConfigInvalidProbe,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.ErrorIs(t, Validate(cfg), tt.wantErr)
		})
	}
}

func TestRatingRateIgnoredWhenNotRequired(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Quality.RequireRatings = false
	cfg.Quality.MinRatingRate = 0

	assert.NoError(t, Validate(cfg))
}
