// Package main provides a connectivity check against the configured database.
package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"

	"github.com/yourusername/arb-scanner/internal/config"
	"github.com/yourusername/arb-scanner/internal/database"
	"github.com/yourusername/arb-scanner/internal/logger"
)

var (
	configPath  string
	databaseURL string
	timeout     time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "db-ping",
	Short: "Check that the database is reachable and the schema is present",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		db, missing, err := connect(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := db.HealthCheck(ctx); err != nil {
			return err
		}
		fmt.Println("database: ok")

		if len(missing) > 0 {
			return fmt.Errorf("missing tables: %v", missing)
		}
		fmt.Println("schema: ok")
		return nil
	},
}

func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultConfigPath, "Path to config file")
	rootCmd.Flags().StringVar(&databaseURL, "url", "", "Database URL (overrides the config file)")
	rootCmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "Connection timeout")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func connect(ctx context.Context) (*database.DB, []string, error) {
	if databaseURL != "" {
		db, err := database.NewDBFromURL(ctx, databaseURL)
		if err != nil {
			return nil, nil, err
		}
		missing, err := db.MissingTables(ctx)
		if err != nil {
			db.Close()
			return nil, nil, err
		}
		return db, missing, nil
	}

	cfg, err := config.LoadAndValidate(configPath)
	if err != nil {
		return nil, nil, err
	}
	logger.NewLogger(cfg.App.LogLevel).WithField("host", cfg.Database.Host).Debug("Connecting to database")
	return database.Initialize(ctx, cfg)
}
