// Package config handles runtime configuration loading using viper.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"hydromas/internal/log"
)

// RuntimeConfig is the top-level static configuration for a hydromas
// run, maps to the `hydromas:` root key in YAML.
type RuntimeConfig struct {
	Log      log.LoggerConfig `mapstructure:"log"`
	Metrics  MetricsConfig    `mapstructure:"metrics"`
	Scenario ScenarioConfig   `mapstructure:"scenario"`
}

// MetricsConfig contains Prometheus metrics server settings.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Listen  string `mapstructure:"listen"`
	Path    string `mapstructure:"path"`
}

// ScenarioConfig points at the declarative scenario this run loads.
type ScenarioConfig struct {
	Dir      string  `mapstructure:"dir"`
	Duration float64 `mapstructure:"duration"`
	Dt       float64 `mapstructure:"dt"`
}

// configRoot is the wrapper matching the YAML structure `hydromas: ...`.
type configRoot struct {
	Hydromas RuntimeConfig `mapstructure:"hydromas"`
}

// Load reads configuration from path, applying HYDROMAS_ environment
// variable overrides and defaulting/validating the result.
func Load(path string) (*RuntimeConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	var root configRoot
	if err := v.Unmarshal(&root); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg := root.Hydromas

	if err := cfg.ValidateAndApplyDefaults(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("hydromas.log.level", "info")
	v.SetDefault("hydromas.log.pattern", "[%time] [%level] %msg")
	v.SetDefault("hydromas.log.appender", "stdout")

	v.SetDefault("hydromas.metrics.enabled", true)
	v.SetDefault("hydromas.metrics.listen", ":9091")
	v.SetDefault("hydromas.metrics.path", "/metrics")

	v.SetDefault("hydromas.scenario.dt", 1.0)
	v.SetDefault("hydromas.scenario.duration", 3600.0)
}

// ValidateAndApplyDefaults validates configuration and rejects values
// that would leave the harness unable to run.
func (cfg *RuntimeConfig) ValidateAndApplyDefaults() error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true, "trace": true}
	if !validLevels[cfg.Log.Level] {
		return fmt.Errorf("invalid log level: %s (must be trace/debug/info/warn/error)", cfg.Log.Level)
	}

	if cfg.Scenario.Dt <= 0 {
		return fmt.Errorf("scenario.dt must be positive, got %v", cfg.Scenario.Dt)
	}
	if cfg.Scenario.Duration <= 0 {
		return fmt.Errorf("scenario.duration must be positive, got %v", cfg.Scenario.Duration)
	}
	if cfg.Scenario.Dir == "" {
		return fmt.Errorf("scenario.dir is required")
	}

	return nil
}
