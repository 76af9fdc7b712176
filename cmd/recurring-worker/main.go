package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"plata/internal/amqp"
	"plata/internal/config"
	applog "plata/internal/log"
	"plata/internal/services"
	"plata/internal/storage"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.DefaultConfig()).WithComponent(applog.ComponentWorker)
	applog.SetDefault(logger)

	logger.Info("Starting recurring-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	store, err := storage.Open(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to open database", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer store.Close()

	var events *amqp.Client
	if cfg.AMQPURL != "" {
		events, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without events", "error", err)
			events = nil
		} else {
			defer events.Close()
		}
	}

	transactions := services.NewTransactionService(store, events)
	recurring := services.NewRecurringService(store, transactions)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("Recurring processor configured",
		"interval", cfg.RecurringInterval,
		"db", cfg.SQLiteDBPath)

	ticker := time.NewTicker(cfg.RecurringInterval)
	defer ticker.Stop()

	// Run one pass on startup so a long downtime is caught up immediately.
	process(ctx, recurring, logger)

	for {
		select {
		case <-ctx.Done():
			logger.Info("Shutdown signal received, stopping recurring-worker")
			return
		case <-ticker.C:
			process(ctx, recurring, logger)
		}
	}
}

func process(ctx context.Context, recurring *services.RecurringService, logger *applog.Logger) {
	report, err := recurring.ProcessAllUsers(ctx, time.Now().UTC())
	if err != nil {
		logger.Error("Recurring processing failed", "error", err)
		return
	}
	logger.Info("Recurring processing complete",
		"generated", report.Generated,
		"deactivated", report.Deactivated,
		"failed", len(report.FailedIDs))
}
