// Package config provides configuration management for the arb scanner.
package config

import (
	"fmt"
	"time"

	"github.com/yourusername/arb-scanner/internal/models"
	"github.com/yourusername/arb-scanner/internal/pricing"
)

// Dedup backends for the alert ledger
const (
	DedupBackendMemory   = "memory"
	DedupBackendRedis    = "redis"
	DedupBackendPostgres = "postgres"
)

// SupportedSports lists the sport keys the scanner knows how to poll
var SupportedSports = []string{
	"basketball_ncaab",
	"basketball_nba",
	"americanfootball_nfl",
	"icehockey_nhl",
	"baseball_mlb",
}

// Config represents the complete application configuration
type Config struct {
	App      AppConfig      `mapstructure:"app" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	OddsAPI  OddsAPIConfig  `mapstructure:"odds_api" validate:"required"`
	Scanner  ScannerConfig  `mapstructure:"scanner" validate:"required"`
	Alerts   AlertsConfig   `mapstructure:"alerts" validate:"required"`
	Schedule ScheduleConfig `mapstructure:"schedule" validate:"required"`
	API      APIConfig      `mapstructure:"api" validate:"required"`
	Metrics  MetricsConfig  `mapstructure:"metrics" validate:"required"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// DatabaseConfig represents database connection configuration
type DatabaseConfig struct {
	Host               string `mapstructure:"host" validate:"required"`
	Port               int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Name               string `mapstructure:"name" validate:"required"`
	User               string `mapstructure:"user" validate:"required"`
	Password           string `mapstructure:"password" validate:"required"`
	SSLMode            string `mapstructure:"ssl_mode" validate:"required,oneof=disable require verify-full"`
	MaxConnections     int    `mapstructure:"max_connections" validate:"required,gt=0"`
	MaxIdleConnections int    `mapstructure:"max_idle_connections" validate:"required,gt=0"`
}

// OddsAPIConfig represents the upstream odds provider configuration
type OddsAPIConfig struct {
	BaseURL             string  `mapstructure:"base_url" validate:"required,url"`
	APIKey              string  `mapstructure:"api_key"`
	Regions             string  `mapstructure:"regions" validate:"required"`
	OddsFormat          string  `mapstructure:"odds_format" validate:"required,oneof=american"`
	TimeoutSeconds      int     `mapstructure:"timeout_seconds" validate:"required,gt=0"`
	MaxRetries          int     `mapstructure:"max_retries" validate:"gte=0"`
	RetryWaitMinSeconds int     `mapstructure:"retry_wait_min_seconds" validate:"required,gt=0"`
	RetryWaitMaxSeconds int     `mapstructure:"retry_wait_max_seconds" validate:"required,gt=0"`
	RateLimitPerSecond  float64 `mapstructure:"rate_limit_per_second" validate:"required,gt=0"`
}

// ScannerConfig represents arbitrage scan configuration
type ScannerConfig struct {
	Sports     []string `mapstructure:"sports" validate:"required,min=1,sports"`
	Markets    []string `mapstructure:"markets" validate:"required,min=1,markets"`
	MinEdge    float64  `mapstructure:"min_edge" validate:"gte=0,lt=1"`
	TotalStake float64  `mapstructure:"total_stake" validate:"required,gt=0"`
}

// AlertsConfig represents notification and dedup configuration
type AlertsConfig struct {
	DiscordWebhookURL string `mapstructure:"discord_webhook_url" validate:"omitempty,url"`
	DedupBackend      string `mapstructure:"dedup_backend" validate:"required,dedupbackend"`
	DedupTTLMinutes   int    `mapstructure:"dedup_ttl_minutes" validate:"required,gt=0"`
	RedisURL          string `mapstructure:"redis_url"`
	PublishChannel    string `mapstructure:"publish_channel"`
}

// ScheduleConfig represents the worker polling schedule
type ScheduleConfig struct {
	IntervalSeconds int  `mapstructure:"interval_seconds" validate:"required,gt=0"`
	RunOnStart      bool `mapstructure:"run_on_start"`
}

// APIConfig represents the query API server configuration
type APIConfig struct {
	Port            int      `mapstructure:"port" validate:"required,min=1,max=65535"`
	CORSOrigins     []string `mapstructure:"cors_origins"`
	CacheTTLSeconds int      `mapstructure:"cache_ttl_seconds" validate:"required,gt=0"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Path    string `mapstructure:"path" validate:"required"`
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

// ScannerOptions converts the scanner section into engine options
func (c *Config) ScannerOptions() pricing.Options {
	markets := make([]models.Market, 0, len(c.Scanner.Markets))
	for _, m := range c.Scanner.Markets {
		markets = append(markets, models.Market(m))
	}
	return pricing.Options{
		MinEdge:    c.Scanner.MinEdge,
		Markets:    markets,
		TotalStake: c.Scanner.TotalStake,
	}
}

// PollInterval returns the worker schedule interval
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Schedule.IntervalSeconds) * time.Second
}

// DedupTTL returns how long an alerted fingerprint is remembered
func (c *Config) DedupTTL() time.Duration {
	return time.Duration(c.Alerts.DedupTTLMinutes) * time.Minute
}
