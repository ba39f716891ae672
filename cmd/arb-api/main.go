// Package main provides the entry point for the read-only odds and arbs API.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/arb-scanner/internal/alert"
	"github.com/yourusername/arb-scanner/internal/api"
	"github.com/yourusername/arb-scanner/internal/config"
	"github.com/yourusername/arb-scanner/internal/database"
	"github.com/yourusername/arb-scanner/internal/logger"
	"github.com/yourusername/arb-scanner/internal/repository"
)

var (
	// Build information, set via -ldflags
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var (
	configPath string
	port       int
)

var rootCmd = &cobra.Command{
	Use:   "arb-api",
	Short: "Serve the latest odds snapshot and its arbitrage opportunities",
	Long: `arb-api exposes /odds/latest and /arbs/latest over the most recent stored
snapshot of each sport. When a redis publish channel is configured, alerted
opportunities are also streamed to websocket clients on /ws/arbs.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve()
	},
}

func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultConfigPath, "Path to config file")
	rootCmd.Flags().IntVarP(&port, "port", "p", 0, "Listen port (overrides api.port)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func serve() error {
	cfg, err := config.LoadAndValidate(configPath)
	if err != nil {
		return err
	}
	if port != 0 {
		cfg.API.Port = port
	}

	appLog := logger.NewLogger(cfg.App.LogLevel)
	appLog.WithFields(logrus.Fields{
		"environment": cfg.App.Environment,
		"version":     Version,
		"commit":      GitCommit,
		"port":        cfg.API.Port,
	}).Info("Arb API starting")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	db, err := database.NewDB(ctx, &cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	repos, err := repository.NewRepositories(db)
	if err != nil {
		return err
	}

	hub, closeHub, err := newHub(ctx, cfg, appLog)
	if err != nil {
		return err
	}
	defer closeHub()

	server := api.NewServer(api.Config{
		Port:        cfg.API.Port,
		Prices:      repos.Price,
		DB:          db,
		Sports:      cfg.Scanner.Sports,
		ScanOptions: cfg.ScannerOptions(),
		CacheTTL:    time.Duration(cfg.API.CacheTTLSeconds) * time.Second,
		CORSOrigins: cfg.API.CORSOrigins,
		Hub:         hub,
		Logger:      appLog,
	})

	if err := server.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	appLog.Info("Arb API shut down successfully")
	return nil
}

// newHub starts a websocket hub fed by the redis publish channel, or returns
// a nil hub when streaming is not configured.
func newHub(ctx context.Context, cfg *config.Config, appLog *logrus.Logger) (*api.Hub, func(), error) {
	noop := func() {}
	if cfg.Alerts.RedisURL == "" || cfg.Alerts.PublishChannel == "" {
		appLog.Info("Redis publish channel not configured; websocket stream disabled")
		return nil, noop, nil
	}

	client, err := alert.NewRedisClient(cfg.Alerts.RedisURL)
	if err != nil {
		return nil, noop, err
	}

	hub := api.NewHub(alert.NewRedisPublisher(client, cfg.Alerts.PublishChannel), appLog)
	go func() {
		if err := hub.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			appLog.WithError(err).Error("Websocket hub stopped")
		}
	}()

	return hub, func() {
		if err := client.Close(); err != nil {
			appLog.WithError(err).Error("Failed to close redis client")
		}
	}, nil
}
