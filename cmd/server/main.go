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

	"github.com/prometheus/client_golang/prometheus"
	redisv9 "github.com/redis/go-redis/v9"

	"watchlist_backend/internal/app/di"
	"watchlist_backend/internal/app/router"
	authadapters "watchlist_backend/internal/feature/auth/adapters"
	authhandler "watchlist_backend/internal/feature/auth/transport/handler"
	authusecase "watchlist_backend/internal/feature/auth/usecase"
	quotehandler "watchlist_backend/internal/feature/quotes/transport/handler"
	quoteusecase "watchlist_backend/internal/feature/quotes/usecase"
	"watchlist_backend/internal/feature/recommendation/adapters/gemini"
	rechandler "watchlist_backend/internal/feature/recommendation/transport/handler"
	recusecase "watchlist_backend/internal/feature/recommendation/usecase"
	symboladapters "watchlist_backend/internal/feature/symbolsearch/adapters"
	"watchlist_backend/internal/feature/symbolsearch/adapters/vision"
	symbolhandler "watchlist_backend/internal/feature/symbolsearch/transport/handler"
	symbolusecase "watchlist_backend/internal/feature/symbolsearch/usecase"
	watchlistadapters "watchlist_backend/internal/feature/watchlist/adapters"
	watchlisthandler "watchlist_backend/internal/feature/watchlist/transport/handler"
	watchlistusecase "watchlist_backend/internal/feature/watchlist/usecase"
	"watchlist_backend/internal/platform/config"
	infradb "watchlist_backend/internal/platform/db"
	platformhandler "watchlist_backend/internal/platform/http/handler"
	jwtmw "watchlist_backend/internal/platform/jwt"
	"watchlist_backend/internal/platform/metrics"
	infraredis "watchlist_backend/internal/platform/redis"
	"watchlist_backend/internal/shared/ratelimiter"
)

const (
	serviceName = "watchlist_backend"
	tokenTTL    = 24 * time.Hour
)

func main() {
	if err := run(); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load("")
	if err != nil {
		return err
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLevel(cfg.Server.LogLevel)})))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// db
	db, err := infradb.Open(infradb.LoadConfigFromEnv())
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer func() {
		if err := sqlDB.Close(); err != nil {
			slog.Error("failed to close database", "error", err)
		}
	}()

	// Redis
	var rdb *redisv9.Client
	if rcfg, ok := infraredis.LoadConfig(); ok {
		if tmp, err := infraredis.NewRedisClient(ctx, rcfg); err != nil {
			slog.Warn("redis unavailable, running without it", "addr", rcfg.Addr(), "error", err)
		} else {
			rdb = tmp
			defer func() {
				if err := rdb.Close(); err != nil {
					slog.Error("failed to close redis client", "error", err)
				}
			}()
		}
	}

	// Metrics
	var (
		quoteMetrics     quoteusecase.Metrics
		migrationMetrics watchlistusecase.MigrationMetrics
		metricsHandler   http.Handler
	)
	if !cfg.Metrics.Disabled {
		rec := metrics.New(prometheus.NewRegistry())
		quoteMetrics, migrationMetrics, metricsHandler = rec, rec, rec.Handler()
	}

	// Quotes
	providers := di.NewQuoteProviders(cfg.Quotes.Providers)
	if len(providers) == 0 {
		return errors.New("no quote provider configured")
	}
	fetcher := quoteusecase.NewFetcher(providers, ratelimiter.NewRateLimiter(cfg.Quotes.RateInterval), quoteMetrics)
	quoteCache := di.NewQuoteCache(db, rdb, cfg.Quotes.CacheTTL)
	quoteUC := quoteusecase.NewQuoteUsecase(fetcher, quoteCache, quoteMetrics, cfg.Quotes.MaxConcurrency)
	sweeper := quoteusecase.NewPurgeSweeper(quoteCache, cfg.Quotes.PurgeInterval, cfg.Quotes.Retention)
	go sweeper.Run(ctx)
	slog.Info("quote providers ready", "providers", fetcher.ProviderNames())

	// Watchlist
	userStore := watchlistadapters.NewEntryGorm(db)
	alertRepo := watchlistadapters.NewAlertGorm(db)
	stores := watchlistusecase.Stores{
		User:    userStore,
		Session: di.NewSessionStore(cfg.Session.Store, rdb, cfg.Session.TTL),
	}
	alertUC := watchlistusecase.NewAlertUsecase(alertRepo)
	migrator := watchlistusecase.NewMigrator(stores.Session, stores.User, alertRepo, migrationMetrics, cfg.Watchlist.Capacity)
	watchlistUC := watchlistusecase.NewWatchlistUsecase(stores, watchlistusecase.NewAggregator(quoteUC), alertUC, migrator, cfg.Watchlist.Capacity)

	// Auth
	secret := os.Getenv(jwtmw.EnvKeyJWTSecret)
	if secret == "" {
		// JWT_SECRETチェック（開発中の注意喚起）
		slog.Warn("JWT_SECRET is not set. Set a strong secret in production.")
	}
	authUC := authusecase.NewAuthUsecase(authadapters.NewUserGorm(db), jwtmw.NewGenerator(secret, tokenTTL), watchlistUC)

	// Symbol search. Logo search is disabled without Cloud Vision credentials
	var detector symbolusecase.LogoDetector
	if v, err := vision.NewVisionLogoDetector(ctx); err != nil {
		slog.Warn("logo search disabled", "error", err)
	} else {
		detector = v
		defer func() {
			if err := v.Close(); err != nil {
				slog.Error("failed to close vision client", "error", err)
			}
		}()
	}
	searchUC := symbolusecase.NewSearchUsecase(symboladapters.NewSymbolRepository(db), detector)

	// Recommendation narrative. Disabled without Gemini credentials
	var analyzer recusecase.QuoteAnalyzer
	if g, err := gemini.NewQuoteAnalyzer(ctx); err != nil {
		slog.Warn("ai analysis disabled", "error", err)
	} else {
		analyzer = g
	}
	analysisUC := recusecase.NewAnalysisUsecase(quoteUC, analyzer)

	// Health
	checks := []platformhandler.Check{{Name: "database", Ping: sqlDB.PingContext}}
	if rdb != nil {
		checks = append(checks, platformhandler.Check{Name: "redis", Ping: func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}})
	}

	// ルータ生成
	r := router.NewRouter(router.Handlers{
		Health:         platformhandler.NewHealthHandler(serviceName, checks...),
		Auth:           authhandler.NewAuthHandler(authUC),
		Quote:          quotehandler.NewQuoteHandler(quoteUC),
		Watchlist:      watchlisthandler.NewWatchlistHandler(watchlistUC),
		Alert:          watchlisthandler.NewAlertHandler(alertUC),
		Symbol:         symbolhandler.NewSymbolHandler(searchUC),
		Analysis:       rechandler.NewAnalysisHandler(analysisUC),
		Metrics:        metricsHandler,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		RequestTimeout: cfg.Quotes.RequestTimeout,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func parseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}
