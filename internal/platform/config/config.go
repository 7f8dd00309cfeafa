// Package config はアプリケーション全体の設定を読み込みます。
//
// 読み込み順は YAML ファイル（任意）→ default タグ → 環境変数 → 検証 です。
// プロバイダーの API キーや DB 接続情報は各パッケージの LoadConfig が環境変数から読み込みます。
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// EnvKeyConfigPath は設定ファイルのパスを指定する環境変数です。
const EnvKeyConfigPath = "CONFIG_PATH"

// Config はサーバーの設定です。
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Quotes    QuotesConfig    `yaml:"quotes"`
	Watchlist WatchlistConfig `yaml:"watchlist"`
	Session   SessionConfig   `yaml:"session"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// ServerConfig はHTTPサーバーの設定です。
type ServerConfig struct {
	Port            string        `yaml:"port" default:"8080" validate:"required,numeric"`
	LogLevel        string        `yaml:"log_level" default:"info" validate:"oneof=debug info warn error"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s" validate:"gt=0"`
	AllowedOrigins  []string      `yaml:"allowed_origins"`
}

// QuotesConfig は株価取得とキャッシュの設定です。
type QuotesConfig struct {
	// Providers はフォールバック順のプロバイダー名です。
	Providers      []string      `yaml:"providers" default:"[\"twelvedata\",\"finnhub\",\"yahoo\"]" validate:"min=1,dive,oneof=twelvedata finnhub yahoo"`
	RateInterval   time.Duration `yaml:"rate_interval" default:"1s" validate:"gt=0"`
	MaxConcurrency int           `yaml:"max_concurrency" default:"8" validate:"gte=1,lte=64"`
	CacheTTL       time.Duration `yaml:"cache_ttl" default:"15m" validate:"gt=0"`
	Retention      time.Duration `yaml:"retention" default:"720h" validate:"gtefield=CacheTTL"`
	PurgeInterval  time.Duration `yaml:"purge_interval" default:"1h" validate:"gt=0"`
	RequestTimeout time.Duration `yaml:"request_timeout" default:"10s" validate:"gt=0"`
}

// WatchlistConfig はウォッチリストの設定です。
type WatchlistConfig struct {
	Capacity int `yaml:"capacity" default:"20" validate:"gte=1,lte=200"`
}

// SessionConfig は匿名セッションのウォッチリスト保存先の設定です。
type SessionConfig struct {
	// Store は "redis" または "memory" です。redis に接続できない場合は memory で動作します。
	Store string        `yaml:"store" default:"redis" validate:"oneof=redis memory"`
	TTL   time.Duration `yaml:"ttl" default:"720h" validate:"gt=0"`
}

// MetricsConfig は /metrics の設定です。既定で有効です。
type MetricsConfig struct {
	Disabled bool `yaml:"disabled"`
}

var validate = validator.New()

// Load は path の YAML を読み込み、既定値と環境変数を適用して検証します。
// path が空の場合は CONFIG_PATH を参照し、それも空なら既定値のみを使います。
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(EnvKeyConfigPath)
	}

	var c Config
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}
	if err := c.applyEnv(); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &c, nil
}

// Validate は設定値を検証します。
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%s: failed on %q", fe.Namespace(), fe.Tag())
		}
		return err
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("PORT"); v != "" {
		c.Server.Port = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Server.LogLevel = strings.ToLower(v)
	}
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		c.Server.AllowedOrigins = splitList(v)
	}
	if v := os.Getenv("QUOTE_PROVIDERS"); v != "" {
		c.Quotes.Providers = splitList(strings.ToLower(v))
	}
	if v := os.Getenv("SESSION_STORE"); v != "" {
		c.Session.Store = strings.ToLower(v)
	}
	if v := os.Getenv("METRICS_DISABLED"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("METRICS_DISABLED: %w", err)
		}
		c.Metrics.Disabled = b
	}
	if v := os.Getenv("WATCHLIST_CAPACITY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("WATCHLIST_CAPACITY: %w", err)
		}
		c.Watchlist.Capacity = n
	}
	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"QUOTE_CACHE_TTL", &c.Quotes.CacheTTL},
		{"QUOTE_RETENTION", &c.Quotes.Retention},
		{"QUOTE_RATE_INTERVAL", &c.Quotes.RateInterval},
		{"SESSION_TTL", &c.Session.TTL},
	}
	for _, d := range durations {
		v := os.Getenv(d.key)
		if v == "" {
			continue
		}
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", d.key, err)
		}
		*d.dst = parsed
	}
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
