// Package config provides configuration management for the arb scanner.
package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/yourusername/arb-scanner/internal/models"
)

// CustomValidator wraps the validator with custom validation rules
type CustomValidator struct {
	validator *validator.Validate
}

// customValidations maps tag names to their validation functions
var customValidations = map[string]validator.Func{
	"environment":  validateEnvironment,
	"loglevel":     validateLogLevel,
	"markets":      validateMarkets,
	"sports":       validateSports,
	"dedupbackend": validateDedupBackend,
}

// NewValidator creates a new validator with custom validation functions
func NewValidator() (*CustomValidator, error) {
	v := validator.New()

	for tag, fn := range customValidations {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return nil, fmt.Errorf("failed to register %q validation: %w", tag, err)
		}
	}

	return &CustomValidator{validator: v}, nil
}

// Validate validates the entire configuration
func Validate(cfg *Config) error {
	cv, err := NewValidator()
	if err != nil {
		return err
	}
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

	// Additional cross-field validations
	if err := validateCrossField(cfg); err != nil {
		return err
	}

	return nil
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

// validateMarkets validates market configuration
func validateMarkets(fl validator.FieldLevel) bool {
	markets, ok := fl.Field().Interface().([]string)
	if !ok || len(markets) == 0 {
		return false
	}

	for _, market := range markets {
		if !models.Market(market).IsKnown() {
			return false
		}
	}
	return true
}

// validateSports checks every sport key against the supported list
func validateSports(fl validator.FieldLevel) bool {
	sports, ok := fl.Field().Interface().([]string)
	if !ok || len(sports) == 0 {
		return false
	}

	supported := make(map[string]bool, len(SupportedSports))
	for _, s := range SupportedSports {
		supported[s] = true
	}

	for _, sport := range sports {
		if !supported[sport] {
			return false
		}
	}
	return true
}

func validateDedupBackend(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case DedupBackendMemory, DedupBackendRedis, DedupBackendPostgres:
		return true
	default:
		return false
	}
}

// validateCrossField performs cross-field validations
func validateCrossField(cfg *Config) error {
	// Validate production environment requirements
	if cfg.IsProduction() && cfg.Database.SSLMode == "disable" {
		return fmt.Errorf("production environment requires SSL mode to be 'require' or 'verify-full'")
	}

	// Validate connection pool settings
	if cfg.Database.MaxIdleConnections > cfg.Database.MaxConnections {
		return fmt.Errorf("max_idle_connections cannot exceed max_connections")
	}

	if cfg.OddsAPI.RetryWaitMinSeconds > cfg.OddsAPI.RetryWaitMaxSeconds {
		return fmt.Errorf("retry_wait_min_seconds cannot exceed retry_wait_max_seconds")
	}

	if cfg.Alerts.DedupBackend == DedupBackendRedis && cfg.Alerts.RedisURL == "" {
		return fmt.Errorf("redis_url is required when dedup_backend is 'redis'")
	}

	if cfg.Alerts.PublishChannel != "" && strings.ContainsAny(cfg.Alerts.PublishChannel, " \t\n") {
		return fmt.Errorf("publish_channel must not contain whitespace")
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
		case "markets":
			errMsg += fmt.Sprintf("- Field '%s' must only contain: h2h, spreads, totals\n", field)
		case "sports":
			errMsg += fmt.Sprintf("- Field '%s' must only contain: %s\n", field, strings.Join(SupportedSports, ", "))
		case "dedupbackend":
			errMsg += fmt.Sprintf("- Field '%s' must be one of: memory, redis, postgres\n", field)
		case "oneof":
			errMsg += fmt.Sprintf("- Field '%s' has invalid value '%v'\n", field, value)
		default:
			errMsg += fmt.Sprintf("- Field '%s' failed validation: %s\n", field, tag)
		}
	}
	return fmt.Errorf("configuration validation failed:\n%s", errMsg)
}
