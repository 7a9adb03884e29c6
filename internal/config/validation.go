// Package config provides configuration management for the footy-better engine.
package config

import (
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"
)

// CustomValidator wraps the validator with custom validation rules
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator creates a new validator with custom validation functions
func NewValidator() *CustomValidator {
	v := validator.New()

	// Registration only fails for an empty tag or nil func
	_ = v.RegisterValidation("environment", validateEnvironment)
	_ = v.RegisterValidation("loglevel", validateLogLevel)
	_ = v.RegisterValidation("probability", validateProbability)
	_ = v.RegisterValidation("fraction", validateFraction)
	_ = v.RegisterValidation("cron", validateCron)

	return &CustomValidator{validator: v}
}

// Validate validates the entire configuration
func Validate(cfg *Config) error {
	cv := NewValidator()
	return cv.Validate(cfg)
}

// Validate validates the configuration using registered validation rules
func (cv *CustomValidator) Validate(cfg *Config) error {
	err := cv.validator.Struct(cfg)
	if err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			return formatValidationErrors(validationErrors)
		}
		return fmt.Errorf("validation failed: %w", err)
	}

	return validateCrossField(cfg)
}

// validateEnvironment validates the environment field
func validateEnvironment(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "development", "staging", "production":
		return true
	default:
		return false
	}
}

// validateLogLevel validates the log level field
func validateLogLevel(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

// validateProbability accepts values in the closed interval [0, 1]
func validateProbability(fl validator.FieldLevel) bool {
	v := fl.Field().Float()
	return v >= 0 && v <= 1
}

// validateFraction accepts bankroll fractions in (0, 1]
func validateFraction(fl validator.FieldLevel) bool {
	v := fl.Field().Float()
	return v > 0 && v <= 1
}

// validateCron accepts standard five-field cron expressions and the
// @every/@daily descriptors
func validateCron(fl validator.FieldLevel) bool {
	_, err := cron.ParseStandard(fl.Field().String())
	return err == nil
}

// validateCrossField performs cross-field validations
func validateCrossField(cfg *Config) error {
	if cfg.Engine.CompetitionStakeCap > cfg.Engine.DailyStakeCap {
		return fmt.Errorf("competition_stake_cap cannot exceed daily_stake_cap")
	}

	if cfg.Engine.MinStakeFraction > cfg.Engine.MaxStakeFraction {
		return fmt.Errorf("min_stake_fraction cannot exceed max_stake_fraction")
	}

	if cfg.Database.MinConnections > cfg.Database.MaxConnections {
		return fmt.Errorf("min_connections cannot exceed max_connections")
	}

	if cfg.Stream.Enabled && cfg.Stream.URL == "" {
		return fmt.Errorf("stream.url is required when the odds stream is enabled")
	}

	if cfg.AWS.Enabled {
		if cfg.AWS.Region == "" || cfg.AWS.SecretName == "" {
			return fmt.Errorf("aws.region and aws.secret_name are required when the secrets overlay is enabled")
		}
	}

	if cfg.IsProduction() {
		if cfg.Database.SSLMode == "disable" {
			return fmt.Errorf("production environment requires SSL mode to be 'require' or 'verify-full'")
		}
		if isTestCredential(cfg.Feed.APIKey) {
			return fmt.Errorf("production environment should not use a placeholder feed API key")
		}
	}

	return nil
}

// formatValidationErrors formats validation errors into a readable string
func formatValidationErrors(validationErrors validator.ValidationErrors) error {
	var errMsg string
	for _, fieldError := range validationErrors {
		field := fieldError.StructField()
		tag := fieldError.Tag()
		value := fieldError.Value()

		switch tag {
		case "required":
			errMsg += fmt.Sprintf("- Field '%s' is required\n", field)
		case "url":
			errMsg += fmt.Sprintf("- Field '%s' must be a valid URL, got '%v'\n", field, value)
		case "min", "max":
			errMsg += fmt.Sprintf("- Field '%s' validation failed: %s constraint violated\n", field, tag)
		case "gt", "gte", "lt", "lte":
			errMsg += fmt.Sprintf("- Field '%s' validation failed: numeric constraint %s violated\n", field, tag)
		case "environment":
			errMsg += fmt.Sprintf("- Field '%s' must be one of: development, staging, production\n", field)
		case "loglevel":
			errMsg += fmt.Sprintf("- Field '%s' must be one of: debug, info, warn, error\n", field)
		case "probability":
			errMsg += fmt.Sprintf("- Field '%s' must be a probability between 0 and 1, got '%v'\n", field, value)
		case "fraction":
			errMsg += fmt.Sprintf("- Field '%s' must be a bankroll fraction in (0, 1], got '%v'\n", field, value)
		case "cron":
			errMsg += fmt.Sprintf("- Field '%s' must be a valid cron expression, got '%v'\n", field, value)
		case "oneof":
			errMsg += fmt.Sprintf("- Field '%s' has invalid value '%v'\n", field, value)
		default:
			errMsg += fmt.Sprintf("- Field '%s' failed validation: %s\n", field, tag)
		}
	}
	return fmt.Errorf("configuration validation failed:\n%s", errMsg)
}

// isTestCredential checks if a credential looks like a test credential
func isTestCredential(credential string) bool {
	testPatterns := []string{
		"test", "demo", "example", "placeholder", "YOUR_",
	}

	for _, pattern := range testPatterns {
		if match, _ := regexp.MatchString("(?i)"+pattern, credential); match {
			return true
		}
	}

	return false
}
