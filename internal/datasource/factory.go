package datasource

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/arb-scanner/internal/config"
)

// Factory creates OddsSource implementations based on configuration
type Factory struct {
	logger *logrus.Logger
	config *config.Config
}

// NewFactory creates a new data source factory
func NewFactory(cfg *config.Config, logger *logrus.Logger) *Factory {
	return &Factory{
		logger: logger,
		config: cfg,
	}
}

// HTTPClientConfig derives the HTTP client settings from the odds_api section
func (f *Factory) HTTPClientConfig() HTTPClientConfig {
	cfg := DefaultHTTPClientConfig()
	api := f.config.OddsAPI
	if api.TimeoutSeconds > 0 {
		cfg.Timeout = time.Duration(api.TimeoutSeconds) * time.Second
	}
	cfg.MaxRetries = api.MaxRetries
	if api.RetryWaitMinSeconds > 0 {
		cfg.RetryWaitMin = time.Duration(api.RetryWaitMinSeconds) * time.Second
	}
	if api.RetryWaitMaxSeconds > 0 {
		cfg.RetryWaitMax = time.Duration(api.RetryWaitMaxSeconds) * time.Second
	}
	if api.RateLimitPerSecond > 0 {
		cfg.RateLimit = api.RateLimitPerSecond
	}
	return cfg
}

// NewOddsSource creates the configured odds provider client
func (f *Factory) NewOddsSource() (OddsSource, error) {
	if f.config == nil {
		return nil, fmt.Errorf("configuration is required")
	}
	api := f.config.OddsAPI
	if api.BaseURL == "" {
		return nil, fmt.Errorf("odds_api.base_url is required")
	}
	if api.APIKey == "" && f.logger != nil {
		f.logger.Warn("odds_api.api_key is empty; fetches will fail with authentication_failed")
	}

	httpClient := NewRateLimitedHTTPClient(f.HTTPClientConfig(), f.logger)
	return NewOddsAPIClient(httpClient, api.BaseURL, api.APIKey, api.Regions, api.OddsFormat, f.logger), nil
}
