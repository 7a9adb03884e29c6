package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	validConfigPath       = "testdata/valid_config.yaml"
	expansionConfigPath   = "testdata/expansion_config.yaml"
	nonexistentConfigPath = "testdata/nonexistent_config.yaml"
)

func TestLoadConfigSuccess(t *testing.T) {
	cfg, err := Load(validConfigPath)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "footy-better", cfg.App.Name)
	assert.Equal(t, "development", cfg.App.Environment)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, []string{"premier-league", "championship"}, cfg.Engine.CompetitionIDs)
	assert.Equal(t, 6, cfg.Engine.MinMatches)
	assert.Equal(t, 0.65, cfg.Engine.MinProbability)
	assert.Equal(t, 0.03, cfg.Engine.CompetitionStakeCap)
	assert.Equal(t, 60, cfg.Backtest.DaysBack)
	assert.Equal(t, "models/pick_classifier.json", cfg.Backtest.ModelPath)
	assert.True(t, cfg.Stream.Enabled)
	assert.Equal(t, "wss://odds.example.test/stream", cfg.Stream.URL)
}

func TestLoadConfigFileNotFound(t *testing.T) {
	_, err := Load(nonexistentConfigPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config file not found")
}

func TestLoadConfigExpandsEnvPlaceholders(t *testing.T) {
	t.Setenv("TEST_DB_PASSWORD", "expanded_secret_value")
	t.Setenv("TEST_FEED_KEY", "expanded_feed_key")

	cfg, err := Load(expansionConfigPath)
	require.NoError(t, err)

	assert.Equal(t, "expanded_secret_value", cfg.Database.Password)
	assert.Equal(t, "expanded_feed_key", cfg.Feed.APIKey)
}

func TestLoadConfigMissingEnvPlaceholderExpandsEmpty(t *testing.T) {
	// Deliberately unset: ${TEST_DB_PASSWORD} expands to the empty string.
	t.Setenv("TEST_DB_PASSWORD", "")
	t.Setenv("TEST_FEED_KEY", "")

	cfg, err := Load(expansionConfigPath)
	require.NoError(t, err)
	assert.Empty(t, cfg.Database.Password)
}

func TestLoadConfigEnvironmentOverride(t *testing.T) {
	t.Setenv("FOOTY_BETTER_APP_NAME", "footy-better-ci")

	cfg, err := Load(validConfigPath)
	require.NoError(t, err)
	assert.Equal(t, "footy-better-ci", cfg.App.Name)
}

func TestLoadWithDefaultsMissingFile(t *testing.T) {
	cfg, err := LoadWithDefaults(nonexistentConfigPath)
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Environment)
	assert.Equal(t, "info", cfg.App.LogLevel)
	assert.Equal(t, 6, cfg.Engine.MinMatches)
	assert.Equal(t, 0.65, cfg.Engine.MinProbability)
	assert.Equal(t, 0.25, cfg.Engine.KellyFraction)
	assert.Equal(t, 60, cfg.Backtest.DaysBack)
	assert.Equal(t, 100, cfg.Backtest.MinTrainSamples)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, 8081, cfg.Health.Port)
}

func TestValidateSuccess(t *testing.T) {
	cfg, err := Load(validConfigPath)
	require.NoError(t, err)
	require.NoError(t, Validate(cfg))
}

func TestValidateInvalidEnvironment(t *testing.T) {
	cfg, err := Load(validConfigPath)
	require.NoError(t, err)

	cfg.App.Environment = "invalid"
	err = Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "development, staging, production")
}

func TestValidateInvalidLogLevel(t *testing.T) {
	cfg, err := Load(validConfigPath)
	require.NoError(t, err)

	cfg.App.LogLevel = "verbose"
	err = Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "debug, info, warn, error")
}

func TestValidateRejectsOutOfRangeFraction(t *testing.T) {
	cfg, err := Load(validConfigPath)
	require.NoError(t, err)

	cfg.Engine.KellyFraction = 1.5
	err = Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "KellyFraction")
}

func TestValidateCapOrdering(t *testing.T) {
	cfg, err := Load(validConfigPath)
	require.NoError(t, err)

	cfg.Engine.CompetitionStakeCap = 0.08
	err = Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "competition_stake_cap cannot exceed daily_stake_cap")
}

func TestValidateRejectsBadCron(t *testing.T) {
	cfg, err := Load(validConfigPath)
	require.NoError(t, err)

	cfg.Scheduler.IngestCron = "every five minutes"
	err = Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cron expression")
}

func TestValidateStreamRequiresURL(t *testing.T) {
	cfg, err := Load(validConfigPath)
	require.NoError(t, err)

	cfg.Stream.URL = ""
	err = Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stream.url")
}

func TestValidateProductionRequiresSSL(t *testing.T) {
	cfg, err := Load(validConfigPath)
	require.NoError(t, err)

	cfg.App.Environment = "production"
	err = Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SSL mode")

	cfg.Database.SSLMode = "require"
	require.NoError(t, Validate(cfg))
}

func TestValidateProductionRejectsPlaceholderFeedKey(t *testing.T) {
	cfg, err := Load(validConfigPath)
	require.NoError(t, err)

	cfg.App.Environment = "production"
	cfg.Database.SSLMode = "require"
	cfg.Feed.APIKey = "YOUR_API_KEY_HERE"
	err = Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "placeholder feed API key")
}

func TestOverlaySecretsOnConfig(t *testing.T) {
	cfg, err := Load(validConfigPath)
	require.NoError(t, err)

	overlaySecretsOnConfig(cfg, &SecretsOverlay{
		DatabasePassword: "vault-password",
		FeedAPIKey:       "vault-feed-key",
	})
	assert.Equal(t, "vault-password", cfg.Database.Password)
	assert.Equal(t, "vault-feed-key", cfg.Feed.APIKey)

	// Empty secret fields leave file values alone.
	overlaySecretsOnConfig(cfg, &SecretsOverlay{})
	assert.Equal(t, "vault-password", cfg.Database.Password)
	assert.Equal(t, "vault-feed-key", cfg.Feed.APIKey)
}

func TestGetDatabaseDSN(t *testing.T) {
	cfg, err := Load(validConfigPath)
	require.NoError(t, err)

	dsn := cfg.GetDatabaseDSN()
	assert.True(t, strings.HasPrefix(dsn, "postgres://footy:"))
	assert.Contains(t, dsn, "@localhost:5432/footy_better")
	assert.Contains(t, dsn, "sslmode=disable")
}

func TestDurationHelpers(t *testing.T) {
	cfg, err := Load(validConfigPath)
	require.NoError(t, err)

	assert.Equal(t, 10*time.Second, cfg.FeedTimeout())
	assert.Equal(t, 5*time.Minute, cfg.PredictionCacheTTL())
	assert.Equal(t, 15*time.Minute, cfg.AdjustmentTTL())
}
