// Package config provides configuration management for the footy-better engine.
package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

const defaultConfigPath = "config/config.yaml"

// Load reads and parses the configuration from file and environment variables
// It expands environment variable placeholders in the YAML file (${VAR_NAME})
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = defaultConfigPath
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found at %s: %w", configPath, err)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Expand environment variables in the configuration (${VAR} syntax)
	expanded := os.ExpandEnv(string(data))

	v := newViper()
	if err := v.ReadConfig(bytes.NewBufferString(expanded)); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}

// LoadWithDefaults loads configuration with default values for optional
// fields. A missing config file is not an error; defaults and environment
// variables apply on their own.
func LoadWithDefaults(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = defaultConfigPath
	}

	v := newViper()
	setDefaults(v)

	if data, err := os.ReadFile(configPath); err == nil {
		expanded := os.ExpandEnv(string(data))
		if err := v.ReadConfig(bytes.NewBufferString(expanded)); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}

// newViper builds a viper instance bound to the FOOTY_BETTER environment
// prefix, so FOOTY_BETTER_DATABASE_PASSWORD overrides database.password.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix("FOOTY_BETTER")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "footy-better")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	v.SetDefault("feed.timeout_seconds", 10)
	v.SetDefault("feed.retry_attempts", 3)
	v.SetDefault("feed.requests_per_second", 5.0)
	v.SetDefault("feed.burst", 10)
	v.SetDefault("feed.breaker_threshold", 5)
	v.SetDefault("feed.breaker_cooldown_seconds", 60)

	v.SetDefault("stream.reconnect_delay_seconds", 5)
	v.SetDefault("stream.ping_interval_seconds", 30)

	v.SetDefault("engine.upcoming_days", 2)
	v.SetDefault("engine.min_matches", 6)
	v.SetDefault("engine.min_probability", 0.65)
	v.SetDefault("engine.kelly_fraction", 0.25)
	v.SetDefault("engine.max_stake_fraction", 0.05)
	v.SetDefault("engine.daily_stake_cap", 0.05)
	v.SetDefault("engine.competition_stake_cap", 0.03)
	v.SetDefault("engine.min_stake_fraction", 0.005)
	v.SetDefault("engine.prediction_cache_ttl_seconds", 300)
	v.SetDefault("engine.adjustment_ttl_seconds", 900)

	v.SetDefault("backtest.days_back", 60)
	v.SetDefault("backtest.model_path", "models/pick_classifier.json")
	v.SetDefault("backtest.min_train_samples", 100)

	v.SetDefault("scheduler.ingest_cron", "0 * * * *")
	v.SetDefault("scheduler.picks_cron", "30 8 * * *")
	v.SetDefault("scheduler.retrain_cron", "0 3 * * 1")

	v.SetDefault("health.port", 8081)
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.port", 9090)
	v.SetDefault("metrics.path", "/metrics")
}
