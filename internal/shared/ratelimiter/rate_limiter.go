// Package ratelimiter は外部API呼び出しの頻度をプロセス全体で制限します。
package ratelimiter

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/time/rate"
)

// DefaultInterval is the minimum gap between two outbound quote requests.
const DefaultInterval = time.Second

// logThreshold 以上待機する場合のみログを出力します。
const logThreshold = 100 * time.Millisecond

// Limiter は外部API呼び出しの頻度を制限するインターフェースです。
type Limiter interface {
	// Wait blocks until the caller may issue one request or ctx is done.
	Wait(ctx context.Context) error
}

// RateLimiter grants at most one request per interval to all callers combined.
// Grants are reserved in call order.
type RateLimiter struct {
	limiter  *rate.Limiter
	interval time.Duration
}

var _ Limiter = (*RateLimiter)(nil)

// NewRateLimiter は新しいRateLimiterのインスタンスを生成します。
// interval が0以下の場合は DefaultInterval を使用します。
func NewRateLimiter(interval time.Duration) *RateLimiter {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &RateLimiter{
		limiter:  rate.NewLimiter(rate.Every(interval), 1),
		interval: interval,
	}
}

// Interval returns the configured gap between grants.
func (rl *RateLimiter) Interval() time.Duration {
	return rl.interval
}

// Wait はレートリミットに達していれば次の枠まで待機します。
// ctx がキャンセルされた場合は予約を取り消して ctx.Err() を返します。
func (rl *RateLimiter) Wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r := rl.limiter.Reserve()
	delay := r.Delay()
	if delay <= 0 {
		return nil
	}
	if delay >= logThreshold {
		slog.Debug("rate limit reached, waiting", "delay", delay)
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		r.Cancel()
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
