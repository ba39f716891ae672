// Package main applies a SQL schema file to the configured database.
package main

import (
	"context"
	"log"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/arb-scanner/internal/config"
	"github.com/yourusername/arb-scanner/internal/database"
	"github.com/yourusername/arb-scanner/internal/logger"
)

var (
	configPath string
	timeout    time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "apply-sql [path]",
	Short: "Apply a SQL file to the database in one transaction",
	Long: `apply-sql executes every statement of the given file (default
` + database.DefaultSchemaPath + `) inside a single transaction and then
reports any required tables that are still missing.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := database.DefaultSchemaPath
		if len(args) == 1 {
			path = args[0]
		}

		cfg, err := config.LoadAndValidate(configPath)
		if err != nil {
			return err
		}
		appLog := logger.NewLogger(cfg.App.LogLevel)

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		db, err := database.NewDB(ctx, &cfg.Database)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := db.ApplySQLFile(ctx, path); err != nil {
			return err
		}

		missing, err := db.MissingTables(ctx)
		if err != nil {
			return err
		}
		appLog.WithFields(logrus.Fields{
			"path":    path,
			"missing": missing,
		}).Info("SQL file applied")
		return nil
	},
}

func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultConfigPath, "Path to config file")
	rootCmd.Flags().DurationVar(&timeout, "timeout", time.Minute, "Overall timeout")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}
