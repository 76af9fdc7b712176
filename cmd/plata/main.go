package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"plata/internal/amqp"
	"plata/internal/config"
	apphttp "plata/internal/http"
	"plata/internal/rates"
	"plata/internal/services"
	"plata/internal/storage"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	// Setup structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

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

	// AMQP is optional: without a URL the services run ledger-only and
	// skip event publishing.
	var events *amqp.Client
	if cfg.AMQPURL != "" {
		events, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without events", "error", err)
			events = nil
		} else {
			defer events.Close()
			logger.Info("AMQP client initialized", "exchange", cfg.AMQPExchange)
		}
	} else {
		logger.Info("AMQP disabled - ledger events will not be published")
	}

	transactions := services.NewTransactionService(store, events)
	transfers := services.NewTransferService(store, events)
	investments := services.NewInvestmentService(store)
	recurring := services.NewRecurringService(store, transactions)
	accounts := services.NewAccountService(store)
	budgets := services.NewBudgetService(store)
	goals := services.NewGoalService(store)
	reconciler := services.NewReconciler(store, events)
	ledger := services.NewLedger(store)
	rateService := rates.New(store, cfg.RateCacheTTL)

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Transactions: transactions,
		Transfers:    transfers,
		Investments:  investments,
		Recurring:    recurring,
		Accounts:     accounts,
		Budgets:      budgets,
		Goals:        goals,
		Reconciler:   reconciler,
		Ledger:       ledger,
		Rates:        rateService,

		DefaultCurrency: cfg.DefaultCurrency,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting plata server", "port", cfg.Port, "db", cfg.SQLiteDBPath)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		logger.Info("Shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
