// Package main provides the entry point for the arb scanning worker.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/arb-scanner/internal/config"
	"github.com/yourusername/arb-scanner/internal/health"
	"github.com/yourusername/arb-scanner/internal/logger"
	"github.com/yourusername/arb-scanner/internal/metrics"
	"github.com/yourusername/arb-scanner/internal/scheduler"
	"github.com/yourusername/arb-scanner/internal/service"
)

var (
	// Build information, set via -ldflags
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var (
	configPath string
	cfg        *config.Config
	appLog     *logrus.Logger
)

var rootCmd = &cobra.Command{
	Use:   "arb-worker",
	Short: "Poll sportsbook odds and alert on arbitrage",
	Long: `arb-worker fetches current odds for every configured sport, stores each
response as a snapshot, scans the snapshot for two-sided arbitrage and
posts newly found opportunities to Discord.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.LoadAndValidate(configPath)
		if err != nil {
			return err
		}
		appLog = logger.NewLogger(cfg.App.LogLevel)
		return nil
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the scan cycle on the configured interval",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWorker()
	},
}

var onceCmd = &cobra.Command{
	Use:   "once",
	Short: "Run a single scan cycle and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOnce()
	},
}

var versionCmd = &cobra.Command{
	Use:               "version",
	Short:             "Print build information",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("arb-worker %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultConfigPath, "Path to config file")
	rootCmd.AddCommand(runCmd, onceCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func runWorker() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	appLog.WithFields(logrus.Fields{
		"environment": cfg.App.Environment,
		"log_level":   cfg.App.LogLevel,
		"version":     Version,
		"sports":      cfg.Scanner.Sports,
		"interval":    cfg.PollInterval().String(),
	}).Info("Arb worker starting")

	deps, err := setupDependencies(ctx, cfg, appLog)
	if err != nil {
		return err
	}
	defer deps.Close()

	interval := cfg.PollInterval()
	healthServer := health.NewServer(health.Config{
		ServiceName:    "arb-worker",
		Version:        Version,
		Port:           cfg.Metrics.Port,
		Logger:         appLog,
		DB:             deps.DB,
		MaxCycleAge:    3 * interval,
		MetricsPath:    cfg.Metrics.Path,
		MetricsHandler: metricsHandler(cfg),
	})
	if err := healthServer.Start(ctx); err != nil {
		return fmt.Errorf("failed to start health server: %w", err)
	}

	sched := scheduler.NewScheduler(deps.Service, appLog, func(report *service.CycleReport, err error) {
		healthServer.RecordCycle(time.Now(), err)
	})
	if err := sched.ScheduleCycle(interval); err != nil {
		return err
	}

	healthServer.SetReady(true)

	if cfg.Schedule.RunOnStart {
		appLog.Info("Running initial cycle")
		_, _ = sched.RunNow(ctx)
	}

	if err := sched.Start(); err != nil {
		return err
	}
	appLog.WithField("next_run", sched.NextRun()).Info("Arb worker running")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	sig := <-sigChan
	appLog.WithField("signal", sig).Info("Shutdown signal received")

	healthServer.SetReady(false)
	sched.Stop()
	cancel()

	appLog.Info("Arb worker shut down successfully")
	return nil
}

func runOnce() error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	deps, err := setupDependencies(ctx, cfg, appLog)
	if err != nil {
		return err
	}
	defer deps.Close()

	report, err := deps.Service.RunOnce(ctx)
	if report != nil {
		appLog.WithFields(logrus.Fields{
			"cycle_id":      report.CycleID,
			"opportunities": len(report.Opportunities()),
			"alerts_sent":   report.Alerts.Sent,
			"duplicates":    report.Alerts.Duplicates,
			"duration":      report.Duration.String(),
		}).Info("Cycle complete")
	}
	if err != nil {
		return fmt.Errorf("cycle finished with errors: %w", err)
	}
	return nil
}

func metricsHandler(cfg *config.Config) http.Handler {
	if !cfg.Metrics.Enabled {
		return nil
	}
	return metrics.Handler()
}
