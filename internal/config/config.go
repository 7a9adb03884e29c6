// Package config provides configuration management for the footy-better engine.
package config

import (
	"fmt"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	App       AppConfig       `mapstructure:"app" validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database" validate:"required"`
	Feed      FeedConfig      `mapstructure:"feed" validate:"required"`
	Stream    StreamConfig    `mapstructure:"stream"`
	Engine    EngineConfig    `mapstructure:"engine" validate:"required"`
	Backtest  BacktestConfig  `mapstructure:"backtest" validate:"required"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Health    HealthConfig    `mapstructure:"health"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	AWS       AWSConfig       `mapstructure:"aws"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// DatabaseConfig represents database connection configuration
type DatabaseConfig struct {
	Host           string `mapstructure:"host" validate:"required"`
	Port           int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Name           string `mapstructure:"name" validate:"required"`
	User           string `mapstructure:"user" validate:"required"`
	Password       string `mapstructure:"password" validate:"required"`
	SSLMode        string `mapstructure:"ssl_mode" validate:"required,oneof=disable require verify-full"`
	MaxConnections int    `mapstructure:"max_connections" validate:"required,gt=0"`
	MinConnections int    `mapstructure:"min_connections" validate:"omitempty,gt=0"`
}

// FeedConfig represents the fixture feed HTTP client configuration
type FeedConfig struct {
	BaseURL                string  `mapstructure:"base_url" validate:"required,url"`
	APIKey                 string  `mapstructure:"api_key"`
	TimeoutSeconds         int     `mapstructure:"timeout_seconds" validate:"required,gt=0"`
	RetryAttempts          int     `mapstructure:"retry_attempts" validate:"gte=0"`
	RequestsPerSecond      float64 `mapstructure:"requests_per_second" validate:"required,gt=0"`
	Burst                  int     `mapstructure:"burst" validate:"omitempty,gt=0"`
	BreakerThreshold       int     `mapstructure:"breaker_threshold" validate:"omitempty,gt=0"`
	BreakerCooldownSeconds int     `mapstructure:"breaker_cooldown_seconds" validate:"omitempty,gt=0"`
}

// StreamConfig represents the live odds stream configuration
type StreamConfig struct {
	Enabled               bool   `mapstructure:"enabled"`
	URL                   string `mapstructure:"url" validate:"omitempty,url"`
	ReconnectDelaySeconds int    `mapstructure:"reconnect_delay_seconds" validate:"omitempty,gt=0"`
	PingIntervalSeconds   int    `mapstructure:"ping_interval_seconds" validate:"omitempty,gt=0"`
}

// EngineConfig represents the prediction and staking knobs of the live
// pick pipeline.
type EngineConfig struct {
	CompetitionIDs            []string `mapstructure:"competition_ids" validate:"required,min=1"`
	UpcomingDays              int      `mapstructure:"upcoming_days" validate:"required,gt=0"`
	MinMatches                int      `mapstructure:"min_matches" validate:"required,gt=0"`
	MinProbability            float64  `mapstructure:"min_probability" validate:"required,probability"`
	KellyFraction             float64  `mapstructure:"kelly_fraction" validate:"required,fraction"`
	MaxStakeFraction          float64  `mapstructure:"max_stake_fraction" validate:"required,fraction"`
	DailyStakeCap             float64  `mapstructure:"daily_stake_cap" validate:"required,fraction"`
	CompetitionStakeCap       float64  `mapstructure:"competition_stake_cap" validate:"required,fraction"`
	MinStakeFraction          float64  `mapstructure:"min_stake_fraction" validate:"required,fraction"`
	PredictionCacheTTLSeconds int      `mapstructure:"prediction_cache_ttl_seconds" validate:"omitempty,gt=0"`
	AdjustmentTTLSeconds      int      `mapstructure:"adjustment_ttl_seconds" validate:"omitempty,gt=0"`
}

// BacktestConfig represents historical replay configuration
type BacktestConfig struct {
	CompetitionIDs  []string `mapstructure:"competition_ids" validate:"required,min=1"`
	DaysBack        int      `mapstructure:"days_back" validate:"required,gt=0"`
	ForceRefresh    bool     `mapstructure:"force_refresh"`
	ModelPath       string   `mapstructure:"model_path" validate:"required"`
	OutputPath      string   `mapstructure:"output_path"`
	MinTrainSamples int      `mapstructure:"min_train_samples" validate:"omitempty,gt=0"`
	Seed            int64    `mapstructure:"seed"`
}

// SchedulerConfig represents the cron schedules for background jobs
type SchedulerConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	IngestCron  string `mapstructure:"ingest_cron" validate:"omitempty,cron"`
	PicksCron   string `mapstructure:"picks_cron" validate:"omitempty,cron"`
	RetrainCron string `mapstructure:"retrain_cron" validate:"omitempty,cron"`
}

// HealthConfig represents the health endpoint configuration
type HealthConfig struct {
	Port int `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	Path    string `mapstructure:"path"`
}

// AWSConfig represents the AWS Secrets Manager overlay configuration
type AWSConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Region     string `mapstructure:"region"`
	SecretName string `mapstructure:"secret_name"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsStaging checks if the application is running in staging mode
func (c *Config) IsStaging() bool {
	return c.App.Environment == "staging"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns a PostgreSQL DSN string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// FeedTimeout returns the per-request timeout for the fixture feed client
func (c *Config) FeedTimeout() time.Duration {
	return time.Duration(c.Feed.TimeoutSeconds) * time.Second
}

// PredictionCacheTTL returns the prediction cache lifetime
func (c *Config) PredictionCacheTTL() time.Duration {
	return time.Duration(c.Engine.PredictionCacheTTLSeconds) * time.Second
}

// AdjustmentTTL returns the market adjustment cache lifetime
func (c *Config) AdjustmentTTL() time.Duration {
	return time.Duration(c.Engine.AdjustmentTTLSeconds) * time.Second
}
