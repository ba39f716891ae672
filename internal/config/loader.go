// Package config provides configuration management for the arb scanner.
package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

const (
	// EnvPrefix is prepended to environment overrides, e.g. ARB_SCANNER_SCANNER_MIN_EDGE
	EnvPrefix = "ARB_SCANNER"

	// DefaultConfigPath is used when no path is supplied
	DefaultConfigPath = "config/config.yaml"
)

// Load reads and parses the configuration from file and environment variables
// It expands environment variable placeholders in the YAML file (${VAR_NAME})
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = DefaultConfigPath
	}

	// Read the configuration file
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found at %s: %w", configPath, err)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	v := newViper()

	// Read the expanded configuration
	if err := v.ReadConfig(bytes.NewBufferString(os.ExpandEnv(string(data)))); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}

// LoadWithDefaults loads configuration with default values for optional fields
// It expands environment variable placeholders in the YAML file (${VAR_NAME})
func LoadWithDefaults(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = DefaultConfigPath
	}

	v := newViper()
	setDefaults(v)

	// Read and expand the configuration file if it exists
	if data, err := os.ReadFile(configPath); err == nil {
		if err := v.ReadConfig(bytes.NewBufferString(os.ExpandEnv(string(data)))); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	// If file doesn't exist, continue with defaults and environment variables

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}

// LoadAndValidate loads the configuration, applies the AWS secrets overlay when
// AWS_SECRETS_ENABLED=true, and validates the result.
func LoadAndValidate(configPath string) (*Config, error) {
	if envPath := os.Getenv(EnvPrefix + "_CONFIG_PATH"); envPath != "" {
		configPath = envPath
	}

	cfg, err := LoadWithDefaults(configPath)
	if err != nil {
		return nil, err
	}

	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			return nil, fmt.Errorf("AWS_REGION and AWS_SECRET_NAME environment variables must be set when AWS_SECRETS_ENABLED is true")
		}
		if err := LoadSecretsFromAWS(cfg, region, secretName); err != nil {
			return nil, fmt.Errorf("failed to load secrets: %w", err)
		}
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")

	// Set environment variable prefix
	v.SetEnvPrefix(EnvPrefix)

	// Enable automatic binding of environment variables
	v.AutomaticEnv()

	// Replace dots with underscores in environment variable names
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "arb-scanner")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	v.SetDefault("database.port", 5432)
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_connections", 10)
	v.SetDefault("database.max_idle_connections", 2)

	v.SetDefault("odds_api.base_url", "https://api.the-odds-api.com/v4")
	v.SetDefault("odds_api.regions", "us")
	v.SetDefault("odds_api.odds_format", "american")
	v.SetDefault("odds_api.timeout_seconds", 30)
	v.SetDefault("odds_api.max_retries", 4)
	v.SetDefault("odds_api.retry_wait_min_seconds", 4)
	v.SetDefault("odds_api.retry_wait_max_seconds", 60)
	v.SetDefault("odds_api.rate_limit_per_second", 1.0)

	v.SetDefault("scanner.sports", SupportedSports)
	v.SetDefault("scanner.markets", []string{"h2h", "spreads"})
	v.SetDefault("scanner.min_edge", 0.002)
	v.SetDefault("scanner.total_stake", 100.0)

	v.SetDefault("alerts.dedup_backend", DedupBackendPostgres)
	v.SetDefault("alerts.dedup_ttl_minutes", 720)
	v.SetDefault("alerts.publish_channel", "arb:opportunities")

	v.SetDefault("schedule.interval_seconds", 300)
	v.SetDefault("schedule.run_on_start", true)

	v.SetDefault("api.port", 8000)
	v.SetDefault("api.cache_ttl_seconds", 15)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.port", 9090)
	v.SetDefault("metrics.path", "/metrics")
}
