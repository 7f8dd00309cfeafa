package adapters

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"watchlist_backend/internal/feature/quotes/domain/entity"
)

// CachedQuoteModel は cached_quotes テーブルの1行です。
// 価格は精度を保つため文字列で保存します。
type CachedQuoteModel struct {
	ID            uint      `gorm:"primaryKey"`
	Symbol        string    `gorm:"size:16;not null;index:idx_cached_quotes_symbol_cached_at,priority:1"`
	CachedAt      time.Time `gorm:"not null;index:idx_cached_quotes_symbol_cached_at,priority:2;index:idx_cached_quotes_cached_at"`
	TTLSeconds    int64     `gorm:"not null"`
	Price         string    `gorm:"size:32;not null"`
	Change        string    `gorm:"size:32;not null"`
	ChangePercent string    `gorm:"size:32;not null"`
	CompanyName   string    `gorm:"size:255;not null"`
	Provider      string    `gorm:"size:32;not null"`
	CapturedAt    time.Time `gorm:"not null"`
}

func (CachedQuoteModel) TableName() string {
	return "cached_quotes"
}

func cachedQuoteModelFrom(q entity.Quote, cachedAt time.Time, ttl time.Duration) CachedQuoteModel {
	return CachedQuoteModel{
		Symbol:        q.Symbol,
		CachedAt:      cachedAt.UTC(),
		TTLSeconds:    int64(ttl / time.Second),
		Price:         q.Price.String(),
		Change:        q.Change.String(),
		ChangePercent: q.ChangePercent.String(),
		CompanyName:   q.CompanyName,
		Provider:      q.Provider,
		CapturedAt:    q.CapturedAt.UTC(),
	}
}

// ToEntity converts the row back into a CachedQuote.
func (m *CachedQuoteModel) ToEntity() (*entity.CachedQuote, error) {
	price, err := decimal.NewFromString(m.Price)
	if err != nil {
		return nil, fmt.Errorf("parse price %q: %w", m.Price, err)
	}
	change, err := decimal.NewFromString(m.Change)
	if err != nil {
		return nil, fmt.Errorf("parse change %q: %w", m.Change, err)
	}
	pct, err := decimal.NewFromString(m.ChangePercent)
	if err != nil {
		return nil, fmt.Errorf("parse change percent %q: %w", m.ChangePercent, err)
	}
	return &entity.CachedQuote{
		Quote:    entity.NewQuote(m.Symbol, price, change, pct, m.CompanyName, m.CapturedAt, m.Provider),
		CachedAt: m.CachedAt.UTC(),
		TTL:      time.Duration(m.TTLSeconds) * time.Second,
	}, nil
}
