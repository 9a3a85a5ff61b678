package config

import (
	"context"
	stderrors "errors"
	"os"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/webmend/webmend/internal/errors"
)

// newViperInstance creates a new Viper instance with standard webmend
// configuration: environment prefix (WEBMEND_), key replacer, and defaults.
func newViperInstance() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("WEBMEND")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// viperDecoderOption returns the decode hooks used when unmarshaling config.
// The duration hook lets config files express timeouts as "90s" or "5m".
func viperDecoderOption() viper.DecoderConfigOption {
	return viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
}

// isConfigNotFoundError returns true if the error is a viper config file not
// found error. Missing config files are expected in many scenarios.
func isConfigNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	var notFound viper.ConfigFileNotFoundError
	return stderrors.As(err, &notFound)
}

// loadGlobalConfig merges ~/.webmend/config.yaml into v when present.
// Each layer pins its exact file with SetConfigFile; a search path shared
// between layers would resolve both merges to whichever file it finds first.
func loadGlobalConfig(v *viper.Viper) error {
	path, err := GlobalConfigPath()
	if err != nil {
		// No home directory: skip the global layer rather than failing,
		// defaults and env are still in effect.
		return nil
	}
	if !fileExists(path) {
		return nil
	}

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil && !isConfigNotFoundError(err) {
		return errors.Wrap(err, "failed to read global config")
	}
	return nil
}

// loadProjectConfig merges ./.webmend/config.yaml over the global layer.
func loadProjectConfig(v *viper.Viper) error {
	path := ProjectConfigPath()
	if !fileExists(path) {
		return nil
	}

	v.SetConfigFile(path)
	if err := v.MergeInConfig(); err != nil && !isConfigNotFoundError(err) {
		return errors.Wrap(err, "failed to read project config")
	}
	return nil
}

// fileExists returns true if the file at path exists.
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// unmarshalAndValidate unmarshals viper config into Config and validates it.
func unmarshalAndValidate(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg, viperDecoderOption()); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	if err := Validate(&cfg); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return &cfg, nil
}

// Load reads configuration from all available sources with proper precedence.
// Configuration is loaded in the following order (highest precedence first):
//  1. Environment variables (WEBMEND_* prefix)
//  2. Project config (.webmend/config.yaml)
//  3. Global config (~/.webmend/config.yaml)
//  4. Built-in defaults
//
// The context parameter is accepted for API consistency; config file reads
// are fast local I/O and are not cancellable today.
func Load(_ context.Context) (*Config, error) {
	v := newViperInstance()

	if err := loadGlobalConfig(v); err != nil {
		return nil, err
	}
	if err := loadProjectConfig(v); err != nil {
		return nil, err
	}

	return unmarshalAndValidate(v)
}

// Overrides carries CLI flag values that take precedence over every config
// layer. Zero values mean "not set".
type Overrides struct {
	MaxIterations    int
	ExecutionTimeout string
	Agent            string
	Model            string
}

// LoadWithOverrides loads configuration and applies CLI flag overrides on top.
func LoadWithOverrides(ctx context.Context, o Overrides) (*Config, error) {
	v := newViperInstance()

	if err := loadGlobalConfig(v); err != nil {
		return nil, err
	}
	if err := loadProjectConfig(v); err != nil {
		return nil, err
	}

	if o.MaxIterations > 0 {
		v.Set("repair.max_iterations", o.MaxIterations)
	}
	if o.ExecutionTimeout != "" {
		v.Set("repair.execution_timeout", o.ExecutionTimeout)
	}
	if o.Agent != "" {
		v.Set("ai.agent", o.Agent)
	}
	if o.Model != "" {
		v.Set("ai.model", o.Model)
	}

	return unmarshalAndValidate(v)
}
