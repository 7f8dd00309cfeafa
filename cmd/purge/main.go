// Command purge deletes cached quotes older than the configured retention once and exits.
// It is meant for cron jobs when the server's background sweeper is not running.
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	quoteadapters "watchlist_backend/internal/feature/quotes/adapters"
	quoteusecase "watchlist_backend/internal/feature/quotes/usecase"
	"watchlist_backend/internal/platform/config"
	infradb "watchlist_backend/internal/platform/db"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := infradb.Open(infradb.LoadConfigFromEnv())
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	sweeper := quoteusecase.NewPurgeSweeper(quoteadapters.NewQuoteCache(db, cfg.Quotes.CacheTTL), cfg.Quotes.PurgeInterval, cfg.Quotes.Retention)
	n, err := sweeper.SweepOnce(ctx)
	if err != nil {
		slog.Error("purge failed", "error", err)
		os.Exit(1)
	}
	slog.Info("purge ok", "deleted", n, "retention", cfg.Quotes.Retention)
}
