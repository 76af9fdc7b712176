// Command reconcile recomputes every cached account balance from the
// transaction log and prints the drift it repaired. Run it after restoring
// a backup or whenever a balance looks wrong.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"plata/internal/config"
	"plata/internal/services"
	"plata/internal/storage"
)

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
	slog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "configuration error:", err)
		os.Exit(1)
	}

	store, err := storage.Open(cfg.SQLiteDBPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "open database:", err)
		os.Exit(1)
	}
	defer store.Close()

	reconciler := services.NewReconciler(store, nil)
	report, err := reconciler.RecomputeAll(context.Background())
	if err != nil {
		fmt.Fprintln(os.Stderr, "reconcile:", err)
		os.Exit(1)
	}

	fmt.Printf("checked %d accounts, repaired %d\n", report.Checked, len(report.Updated))
	for _, drift := range report.Updated {
		fmt.Printf("  %s (id %d): %d -> %d cents (delta %d)\n",
			drift.Name, drift.AccountID,
			drift.Before.Cents, drift.After.Cents, drift.Delta().Cents)
	}
}
