// Package adapters provides persistence implementations for the quotes feature.
package adapters

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"watchlist_backend/internal/feature/quotes/domain/entity"
	"watchlist_backend/internal/feature/quotes/usecase"
)

// quoteCacheGorm は株価キャッシュをRDBに追記方式で保存します。
// 取得時は最新の1行のみを参照し、古い行は PurgeExpired で削除します。
type quoteCacheGorm struct {
	db  *gorm.DB
	ttl time.Duration
	now func() time.Time
}

var _ usecase.QuoteCache = (*quoteCacheGorm)(nil)

// NewQuoteCache creates a gorm-backed QuoteCache. A ttl of 0 or less uses entity.DefaultTTL.
func NewQuoteCache(db *gorm.DB, ttl time.Duration) *quoteCacheGorm {
	if ttl <= 0 {
		ttl = entity.DefaultTTL
	}
	return &quoteCacheGorm{db: db, ttl: ttl, now: time.Now}
}

func (r *quoteCacheGorm) Get(ctx context.Context, symbol string) (*entity.CachedQuote, error) {
	var m CachedQuoteModel
	err := r.db.WithContext(ctx).
		Where("symbol = ?", entity.NormalizeSymbol(symbol)).
		Order("cached_at DESC").
		Order("id DESC").
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return m.ToEntity()
}

func (r *quoteCacheGorm) Put(ctx context.Context, q entity.Quote) (*entity.CachedQuote, error) {
	m := cachedQuoteModelFrom(q, r.now(), r.ttl)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return nil, err
	}
	return &entity.CachedQuote{Quote: q, CachedAt: m.CachedAt, TTL: r.ttl}, nil
}

func (r *quoteCacheGorm) PurgeExpired(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := r.now().Add(-retention).UTC()
	res := r.db.WithContext(ctx).Where("cached_at < ?", cutoff).Delete(&CachedQuoteModel{})
	return res.RowsAffected, res.Error
}
