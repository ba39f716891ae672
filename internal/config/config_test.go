// Package config provides configuration management for the arb scanner.
package config

import (
	"math"
	"os"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"

	"github.com/yourusername/arb-scanner/internal/models"
	"github.com/yourusername/arb-scanner/internal/pricing"
)

const (
	validConfigPath              = "testdata/valid_config.yaml"
	expansionConfigPath          = "testdata/expansion_config.yaml"
	minimalConfigPath            = "testdata/minimal_config.yaml"
	nonexistentConfigPath        = "testdata/nonexistent_config.yaml"
	expectedNoErrorLoadingConfig = "expected no error loading config, got %v"
	expectedNoErrorMsg           = "expected no error, got %v"
	expectedNonNilConfig         = "expected non-nil config"
	appName                      = "arb-scanner"
	developmentEnv               = "development"
	localhostHost                = "localhost"
	postgresPort                 = 5432
	postgresPrefix               = "postgres://"
	testAppName                  = "test-app"
	testDBPassword               = "TEST_DB_PASSWORD"
	testOddsAPIKey               = "TEST_ODDS_API_KEY"
	expandedSecretValue          = "expanded_secret_value"
)

func loadValid(t *testing.T) *Config {
	t.Helper()
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorLoadingConfig, err)
	}
	return cfg
}

// TestLoadConfigSuccess tests loading a valid configuration file
func TestLoadConfigSuccess(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorMsg, err)
	}

	if cfg == nil {
		t.Fatal(expectedNonNilConfig)
	}

	if cfg.App.Name != appName {
		t.Errorf("expected app name '%s', got '%s'", appName, cfg.App.Name)
	}

	if cfg.App.Environment != developmentEnv {
		t.Errorf("expected environment '%s', got '%s'", developmentEnv, cfg.App.Environment)
	}

	if cfg.Database.Host != localhostHost {
		t.Errorf("expected database host '%s', got '%s'", localhostHost, cfg.Database.Host)
	}

	if cfg.Database.Port != postgresPort {
		t.Errorf("expected database port %d, got %d", postgresPort, cfg.Database.Port)
	}

	if len(cfg.Scanner.Sports) != 2 {
		t.Errorf("expected 2 sports, got %v", cfg.Scanner.Sports)
	}

	if cfg.Scanner.MinEdge != 0.002 {
		t.Errorf("expected min_edge 0.002, got %v", cfg.Scanner.MinEdge)
	}
}

// TestLoadConfigFileNotFound tests handling of missing configuration file
func TestLoadConfigFileNotFound(t *testing.T) {
	_, err := Load(nonexistentConfigPath)
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
}

// TestLoadConfigEnvironmentVariables tests environment variable override
func TestLoadConfigEnvironmentVariables(t *testing.T) {
	t.Setenv("ARB_SCANNER_APP_NAME", testAppName)
	t.Setenv("ARB_SCANNER_SCANNER_MIN_EDGE", "0.01")

	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorMsg, err)
	}

	if cfg.App.Name != testAppName {
		t.Errorf("expected app name '%s' from environment, got '%s'", testAppName, cfg.App.Name)
	}

	if cfg.Scanner.MinEdge != 0.01 {
		t.Errorf("expected min_edge 0.01 from environment, got %v", cfg.Scanner.MinEdge)
	}
}

// TestLoadConfigEnvironmentVariableExpansion tests environment variable expansion in config file
func TestLoadConfigEnvironmentVariableExpansion(t *testing.T) {
	t.Setenv(testDBPassword, expandedSecretValue)
	t.Setenv(testOddsAPIKey, "odds-key-from-env")

	cfg, err := Load(expansionConfigPath)
	if err != nil {
		t.Fatalf("expected no error loading config with expansion, got %v", err)
	}

	if cfg.Database.Password != expandedSecretValue {
		t.Errorf("expected password '%s' from environment expansion, got '%s'", expandedSecretValue, cfg.Database.Password)
	}

	if cfg.OddsAPI.APIKey != "odds-key-from-env" {
		t.Errorf("expected api key from environment expansion, got '%s'", cfg.OddsAPI.APIKey)
	}
}

// TestLoadWithDefaultsFillsOptionalSections tests defaults for sections absent from the file
func TestLoadWithDefaultsFillsOptionalSections(t *testing.T) {
	cfg, err := LoadWithDefaults(minimalConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorMsg, err)
	}

	if cfg.Database.Host != "db.internal" {
		t.Errorf("expected host from file, got '%s'", cfg.Database.Host)
	}
	if cfg.Database.Port != postgresPort {
		t.Errorf("expected default port %d, got %d", postgresPort, cfg.Database.Port)
	}
	if len(cfg.Scanner.Sports) != len(SupportedSports) {
		t.Errorf("expected all supported sports by default, got %v", cfg.Scanner.Sports)
	}
	if cfg.Scanner.TotalStake != 100 {
		t.Errorf("expected default total stake 100, got %v", cfg.Scanner.TotalStake)
	}
	if cfg.Alerts.DedupBackend != DedupBackendPostgres {
		t.Errorf("expected postgres dedup backend by default, got '%s'", cfg.Alerts.DedupBackend)
	}

	if err := Validate(cfg); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
}

// TestLoadWithDefaultsMissingFile tests that a missing file falls back to defaults
func TestLoadWithDefaultsMissingFile(t *testing.T) {
	cfg, err := LoadWithDefaults(nonexistentConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorMsg, err)
	}
	if cfg.App.Name != appName {
		t.Errorf("expected default app name, got '%s'", cfg.App.Name)
	}
}

// TestValidateSuccess tests validation of a valid configuration
func TestValidateSuccess(t *testing.T) {
	cfg := loadValid(t)

	if err := Validate(cfg); err != nil {
		t.Fatalf("expected no validation error, got %v", err)
	}
}

// TestNewValidatorRegistersCustomTags checks every custom tag is usable
func TestNewValidatorRegistersCustomTags(t *testing.T) {
	cv, err := NewValidator()
	if err != nil {
		t.Fatalf(expectedNoErrorMsg, err)
	}

	for tag := range customValidations {
		t.Run(tag, func(t *testing.T) {
			defer func() {
				if r := recover(); r != nil {
					t.Fatalf("tag %q is not registered: %v", tag, r)
				}
			}()
			if err := cv.validator.Var("definitely-not-valid", tag); err == nil {
				t.Errorf("expected %q to reject an invalid value", tag)
			}
		})
	}
}

// TestValidateFieldRules tests the custom and builtin validation tags
func TestValidateFieldRules(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(cfg *Config)
		contains string
	}{
		{"invalid environment", func(c *Config) { c.App.Environment = "invalid" }, "Environment"},
		{"invalid log level", func(c *Config) { c.App.LogLevel = "trace" }, "LogLevel"},
		{"unknown market", func(c *Config) { c.Scanner.Markets = []string{"h2h", "outrights"} }, "Markets"},
		{"empty markets", func(c *Config) { c.Scanner.Markets = []string{} }, "Markets"},
		{"unknown sport", func(c *Config) { c.Scanner.Sports = []string{"cricket_ipl"} }, "Sports"},
		{"negative edge", func(c *Config) { c.Scanner.MinEdge = -0.1 }, "MinEdge"},
		{"NaN edge", func(c *Config) { c.Scanner.MinEdge = math.NaN() }, "MinEdge"},
		{"bad dedup backend", func(c *Config) { c.Alerts.DedupBackend = "sqlite" }, "DedupBackend"},
		{"bad webhook url", func(c *Config) { c.Alerts.DiscordWebhookURL = "not a url" }, "DiscordWebhookURL"},
		{"bad odds format", func(c *Config) { c.OddsAPI.OddsFormat = "decimal" }, "OddsFormat"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := loadValid(t)
			tt.mutate(cfg)

			err := Validate(cfg)
			if err == nil {
				t.Fatalf("expected validation error for %s", tt.name)
			}
			if !strings.Contains(err.Error(), tt.contains) {
				t.Errorf("expected error mentioning %q, got: %v", tt.contains, err)
			}
		})
	}
}

// TestValidateCrossField tests cross-field constraints
func TestValidateCrossField(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(cfg *Config)
		contains string
	}{
		{
			name: "production without ssl",
			mutate: func(c *Config) {
				c.App.Environment = "production"
				c.Database.SSLMode = "disable"
			},
			contains: "SSL",
		},
		{
			name:     "idle exceeds max connections",
			mutate:   func(c *Config) { c.Database.MaxIdleConnections = 50 },
			contains: "max_idle_connections",
		},
		{
			name:     "retry wait inverted",
			mutate:   func(c *Config) { c.OddsAPI.RetryWaitMinSeconds = 90 },
			contains: "retry_wait_min_seconds",
		},
		{
			name:     "redis backend without url",
			mutate:   func(c *Config) { c.Alerts.DedupBackend = DedupBackendRedis },
			contains: "redis_url",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := loadValid(t)
			tt.mutate(cfg)

			err := Validate(cfg)
			if err == nil {
				t.Fatalf("expected validation error for %s", tt.name)
			}
			if !strings.Contains(err.Error(), tt.contains) {
				t.Errorf("expected error mentioning %q, got: %v", tt.contains, err)
			}
		})
	}
}

// TestValidateAllMarkets tests that every supported market passes validation
func TestValidateAllMarkets(t *testing.T) {
	cfg := loadValid(t)
	cfg.Scanner.Markets = []string{"h2h", "spreads", "totals"}

	if err := Validate(cfg); err != nil {
		t.Fatalf("expected no error for all markets, got %v", err)
	}
}

// TestScannerOptions tests conversion to engine options
func TestScannerOptions(t *testing.T) {
	cfg := loadValid(t)

	opts := cfg.ScannerOptions()
	if opts.MinEdge != 0.002 {
		t.Errorf("expected min edge 0.002, got %v", opts.MinEdge)
	}
	if len(opts.Markets) != 2 || opts.Markets[0] != models.MarketH2H || opts.Markets[1] != models.MarketSpreads {
		t.Errorf("unexpected markets %v", opts.Markets)
	}
	if opts.TotalStake != pricing.DefaultTotalStake {
		t.Errorf("expected total stake %v, got %v", pricing.DefaultTotalStake, opts.TotalStake)
	}
	if err := opts.Validate(); err != nil {
		t.Errorf("expected options to be valid, got %v", err)
	}
}

// TestGetDatabaseDSN tests DSN generation
func TestGetDatabaseDSN(t *testing.T) {
	cfg := loadValid(t)

	dsn := cfg.GetDatabaseDSN()
	if !strings.HasPrefix(dsn, postgresPrefix) {
		t.Errorf("expected DSN to start with '%s', got '%s'", postgresPrefix, dsn)
	}
	if !strings.Contains(dsn, "sslmode=disable") {
		t.Errorf("expected DSN to carry ssl mode, got '%s'", dsn)
	}
}

// TestEnvironmentChecks tests environment check functions
func TestEnvironmentChecks(t *testing.T) {
	cfg := &Config{App: AppConfig{Environment: developmentEnv}}
	if !cfg.IsDevelopment() || cfg.IsProduction() || cfg.IsStaging() {
		t.Error("expected only IsDevelopment() to return true")
	}

	cfg.App.Environment = "production"
	if !cfg.IsProduction() || cfg.IsDevelopment() {
		t.Error("expected only IsProduction() to return true")
	}

	cfg.App.Environment = "staging"
	if !cfg.IsStaging() {
		t.Error("expected IsStaging() to return true")
	}
}

// TestDurations tests the derived schedule and dedup durations
func TestDurations(t *testing.T) {
	cfg := loadValid(t)

	if cfg.PollInterval().Seconds() != 300 {
		t.Errorf("expected 300s poll interval, got %v", cfg.PollInterval())
	}
	if cfg.DedupTTL().Hours() != 12 {
		t.Errorf("expected 12h dedup ttl, got %v", cfg.DedupTTL())
	}
}

// TestLoadAndValidateRequiresAWSSettings tests the secrets overlay guard
func TestLoadAndValidateRequiresAWSSettings(t *testing.T) {
	t.Setenv("AWS_SECRETS_ENABLED", "true")
	t.Setenv("AWS_REGION", "")
	t.Setenv("AWS_SECRET_NAME", "")

	_, err := LoadAndValidate(validConfigPath)
	if err == nil || !strings.Contains(err.Error(), "AWS_REGION") {
		t.Fatalf("expected AWS settings error, got %v", err)
	}
}

// TestLoadAndValidateConfigPathOverride tests the config path environment override
func TestLoadAndValidateConfigPathOverride(t *testing.T) {
	t.Setenv("AWS_SECRETS_ENABLED", "false")
	t.Setenv("ARB_SCANNER_CONFIG_PATH", validConfigPath)

	cfg, err := LoadAndValidate(nonexistentConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorMsg, err)
	}
	if cfg.Alerts.DedupBackend != DedupBackendMemory {
		t.Errorf("expected config from override path, got backend '%s'", cfg.Alerts.DedupBackend)
	}
}

// TestParseSecretData tests decoding of secret payloads
func TestParseSecretData(t *testing.T) {
	out := &secretsmanager.GetSecretValueOutput{
		SecretString: aws.String(`{"database_password":"pw","odds_api_key":"key","discord_webhook_url":"https://discord.com/api/webhooks/1/abc"}`),
	}

	secrets, err := parseSecretData(out)
	if err != nil {
		t.Fatalf(expectedNoErrorMsg, err)
	}

	cfg := loadValid(t)
	overlaySecretsOnConfig(cfg, secrets)

	if cfg.Database.Password != "pw" || cfg.OddsAPI.APIKey != "key" {
		t.Errorf("expected secrets to overlay config, got %+v", cfg.Database)
	}
	if cfg.Alerts.DiscordWebhookURL != "https://discord.com/api/webhooks/1/abc" {
		t.Errorf("expected webhook overlay, got '%s'", cfg.Alerts.DiscordWebhookURL)
	}
	if cfg.Alerts.RedisURL != "" {
		t.Errorf("expected empty secret to leave redis url untouched, got '%s'", cfg.Alerts.RedisURL)
	}

	if _, err := parseSecretData(&secretsmanager.GetSecretValueOutput{}); err == nil {
		t.Error("expected error for empty secret")
	}
}

func TestMain(m *testing.M) {
	os.Unsetenv("ARB_SCANNER_CONFIG_PATH")
	os.Exit(m.Run())
}
