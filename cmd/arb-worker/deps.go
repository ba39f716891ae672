package main

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/arb-scanner/internal/alert"
	"github.com/yourusername/arb-scanner/internal/config"
	"github.com/yourusername/arb-scanner/internal/database"
	"github.com/yourusername/arb-scanner/internal/datasource"
	"github.com/yourusername/arb-scanner/internal/pricing"
	"github.com/yourusername/arb-scanner/internal/repository"
	"github.com/yourusername/arb-scanner/internal/service"
)

// dependencies holds everything a worker cycle needs
type dependencies struct {
	DB      *database.DB
	Redis   *redis.Client
	Service *service.ArbService
	log     *logrus.Logger
}

func setupDependencies(ctx context.Context, cfg *config.Config, log *logrus.Logger) (*dependencies, error) {
	db, missing, err := database.Initialize(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if len(missing) > 0 {
		db.Close()
		return nil, fmt.Errorf("database schema incomplete, missing tables %v: run apply-sql first", missing)
	}
	log.Info("Database connection established")

	deps := &dependencies{DB: db, log: log}

	repos, err := repository.NewRepositories(db)
	if err != nil {
		deps.Close()
		return nil, err
	}

	if cfg.Alerts.RedisURL != "" {
		deps.Redis, err = alert.NewRedisClient(cfg.Alerts.RedisURL)
		if err != nil {
			deps.Close()
			return nil, err
		}
		if err := deps.Redis.Ping(ctx).Err(); err != nil {
			deps.Close()
			return nil, fmt.Errorf("failed to reach redis: %w", err)
		}
	}

	source, err := datasource.NewFactory(cfg, log).NewOddsSource()
	if err != nil {
		deps.Close()
		return nil, err
	}

	scanner, err := pricing.NewScanner(cfg.ScannerOptions())
	if err != nil {
		deps.Close()
		return nil, err
	}

	dispatcher, err := newDispatcher(cfg, repos.Alert, deps.Redis, log)
	if err != nil {
		deps.Close()
		return nil, err
	}

	ingestion := service.NewIngestionService(source, repos.Snapshots, nil, nil, log)
	deps.Service = service.NewArbService(ingestion, repos.Price, scanner, dispatcher, cfg.Scanner.Sports, log)

	return deps, nil
}

func newDispatcher(cfg *config.Config, alerts repository.AlertRepository, client *redis.Client, log *logrus.Logger) (*alert.Dispatcher, error) {
	var redisClient redis.UniversalClient
	if client != nil {
		redisClient = client
	}

	ledger, err := alert.NewLedger(cfg, alerts, redisClient)
	if err != nil {
		return nil, err
	}

	var sender alert.Sender
	if cfg.Alerts.DiscordWebhookURL != "" {
		discord, err := alert.NewDiscordSender(cfg.Alerts.DiscordWebhookURL)
		if err != nil {
			return nil, err
		}
		sender = discord
	} else {
		log.Warn("DISCORD_WEBHOOK_URL not set; alerts will only be logged")
	}

	var opts []alert.DispatcherOption
	if client != nil && cfg.Alerts.PublishChannel != "" {
		opts = append(opts, alert.WithPublisher(alert.NewRedisPublisher(client, cfg.Alerts.PublishChannel)))
		log.WithField("channel", cfg.Alerts.PublishChannel).Info("Publishing alerted opportunities to redis")
	}

	return alert.NewDispatcher(sender, ledger, log, opts...), nil
}

// Close releases the database pool and redis client
func (d *dependencies) Close() {
	if d.Redis != nil {
		if err := d.Redis.Close(); err != nil {
			d.log.WithError(err).Error("Failed to close redis client")
		}
	}
	if d.DB != nil {
		d.DB.Close()
	}
}
