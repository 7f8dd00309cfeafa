// Package db はgormによるデータベース接続とマイグレーションを提供します。
package db

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	authadapters "watchlist_backend/internal/feature/auth/adapters"
	quoteadapters "watchlist_backend/internal/feature/quotes/adapters"
	symboladapters "watchlist_backend/internal/feature/symbolsearch/adapters"
	watchlistadapters "watchlist_backend/internal/feature/watchlist/adapters"
)

// 対応するドライバー
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// DefaultConnectTimeout は起動時に接続を待つ最大時間です。
const DefaultConnectTimeout = 60 * time.Second

var retryInterval = 3 * time.Second

// Config はデータベース接続の設定です。
type Config struct {
	Driver       string // "postgres"（既定）または "sqlite"
	User         string
	Password     string
	Name         string // postgres のDB名、sqlite の場合はファイルパス
	Host         string
	Port         string
	SSLMode      string
	InstanceName string // Cloud SQL のインスタンス接続名。設定時は Host/Port より優先
}

// Opener は DSN から gorm.DB を開く関数です。テストで差し替えます。
type Opener func(dsn string) (*gorm.DB, error)

// LoadConfigFromEnv は環境変数からデータベース設定を読み込みます。
func LoadConfigFromEnv() Config {
	cfg := Config{
		Driver:       os.Getenv("DB_DRIVER"),
		User:         os.Getenv("DB_USER"),
		Password:     os.Getenv("DB_PASSWORD"),
		Name:         os.Getenv("DB_NAME"),
		Host:         os.Getenv("DB_HOST"),
		Port:         os.Getenv("DB_PORT"),
		SSLMode:      os.Getenv("DB_SSLMODE"),
		InstanceName: os.Getenv("INSTANCE_CONNECTION_NAME"),
	}
	if cfg.Driver == "" {
		cfg.Driver = DriverPostgres
	}
	return cfg
}

// BuildDSN は設定から接続文字列を組み立てます。
func BuildDSN(cfg Config) string {
	if cfg.Driver == DriverSQLite {
		return cfg.Name
	}
	sslmode := cfg.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	if cfg.InstanceName != "" {
		return fmt.Sprintf("host=/cloudsql/%s user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
			cfg.InstanceName, cfg.User, cfg.Password, cfg.Name, sslmode)
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, sslmode)
}

// OpenerFor はドライバーに応じた Opener を返します。
// 重複キーを gorm.ErrDuplicatedKey として扱えるよう TranslateError を有効にします。
func OpenerFor(driver string) (Opener, error) {
	gcfg := &gorm.Config{TranslateError: true}
	switch driver {
	case DriverPostgres, "":
		return func(dsn string) (*gorm.DB, error) { return gorm.Open(postgres.Open(dsn), gcfg) }, nil
	case DriverSQLite:
		return func(dsn string) (*gorm.DB, error) { return gorm.Open(sqlite.Open(dsn), gcfg) }, nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", driver)
	}
}

// ConnectWithRetry は timeout に達するまで一定間隔で接続を再試行します。
func ConnectWithRetry(dsn string, timeout time.Duration, open Opener) (*gorm.DB, error) {
	deadline := time.Now().Add(timeout)
	for {
		db, err := open(dsn)
		if err == nil {
			return db, nil
		}
		if time.Now().Add(retryInterval).After(deadline) {
			return nil, fmt.Errorf("db connect failed after %s: %w", timeout, err)
		}
		slog.Warn("DB connect failed, retrying", "error", err, "retry_in", retryInterval)
		time.Sleep(retryInterval)
	}
}

// Open は設定に従って接続し、RUN_MIGRATIONS=true または sqlite の場合はマイグレーションを実行します。
func Open(cfg Config) (*gorm.DB, error) {
	open, err := OpenerFor(cfg.Driver)
	if err != nil {
		return nil, err
	}
	db, err := ConnectWithRetry(BuildDSN(cfg), DefaultConnectTimeout, open)
	if err != nil {
		return nil, err
	}
	if cfg.Driver == DriverSQLite {
		// sqlite は単一ライターのため接続を1本に絞ります。
		// gorm の各ストア (users, watchlist_entries, cached_quotes など) は書き込みの直列化をこの設定に依存しており、
		// 1 より大きくすると並行書き込みで "database is locked" が発生します。:memory: も接続ごとに別DBになります。
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.SetMaxOpenConns(1)
		}
	}
	if cfg.Driver == DriverSQLite || os.Getenv("RUN_MIGRATIONS") == "true" {
		if err := AutoMigrate(db); err != nil {
			return nil, err
		}
	}
	return db, nil
}

// AutoMigrate はすべてのテーブルを作成・更新します。
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&authadapters.UserModel{},
		&quoteadapters.CachedQuoteModel{},
		&watchlistadapters.WatchlistEntryModel{},
		&watchlistadapters.PriceAlertModel{},
		&symboladapters.SymbolModel{},
	); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	return nil
}
