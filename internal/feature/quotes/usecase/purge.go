package usecase

import (
	"context"
	"log/slog"
	"time"

	"watchlist_backend/internal/feature/quotes/domain/entity"
)

// DefaultPurgeInterval is how often the in-process sweeper runs.
const DefaultPurgeInterval = time.Hour

// PurgeSweeper は保持期間を過ぎたキャッシュ行を定期的に削除します。
type PurgeSweeper struct {
	cache     QuoteCache
	interval  time.Duration
	retention time.Duration
}

// NewPurgeSweeper は新しい PurgeSweeper を作成します。0以下の値はデフォルトに置き換えます。
func NewPurgeSweeper(cache QuoteCache, interval, retention time.Duration) *PurgeSweeper {
	if interval <= 0 {
		interval = DefaultPurgeInterval
	}
	if retention <= 0 {
		retention = entity.DefaultRetention
	}
	return &PurgeSweeper{cache: cache, interval: interval, retention: retention}
}

// SweepOnce deletes expired rows once.
func (s *PurgeSweeper) SweepOnce(ctx context.Context) (int64, error) {
	n, err := s.cache.PurgeExpired(ctx, s.retention)
	if err != nil {
		return 0, err
	}
	slog.Info("purged expired quote cache rows", "deleted", n, "retention", s.retention.String())
	return n, nil
}

// Run sweeps immediately and then on every tick until ctx is done.
// Sweep failures are logged and retried on the next tick.
func (s *PurgeSweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		if _, err := s.SweepOnce(ctx); err != nil && ctx.Err() == nil {
			slog.Error("quote cache purge failed", "error", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
