package adapters

import (
	"time"

	"github.com/shopspring/decimal"

	"watchlist_backend/internal/feature/watchlist/domain/entity"
)

// WatchlistEntryModel はログインユーザーのウォッチリスト1行です。
// (user_id, symbol) に一意制約を持ちます。価格は文字列で保存します。
type WatchlistEntryModel struct {
	ID            uint      `gorm:"primaryKey"`
	UserID        uint      `gorm:"not null;uniqueIndex:idx_watchlist_entries_user_symbol,priority:1"`
	Symbol        string    `gorm:"size:16;not null;uniqueIndex:idx_watchlist_entries_user_symbol,priority:2"`
	AddedAt       time.Time `gorm:"not null"`
	Alias         string    `gorm:"size:64;not null;default:''"`
	TargetPrice   *string   `gorm:"size:32"`
	StopLossPrice *string   `gorm:"size:32"`
	AlertEnabled  bool      `gorm:"not null;default:false"`
	SortOrder     int       `gorm:"not null;default:0"`
}

func (WatchlistEntryModel) TableName() string {
	return "watchlist_entries"
}

// ToEntity converts the model to a domain entry.
func (m *WatchlistEntryModel) ToEntity() entity.Entry {
	return entity.Entry{
		ID:            m.ID,
		UserID:        m.UserID,
		Symbol:        m.Symbol,
		AddedAt:       m.AddedAt.UTC(),
		Alias:         m.Alias,
		TargetPrice:   decimalFromString(m.TargetPrice),
		StopLossPrice: decimalFromString(m.StopLossPrice),
		AlertEnabled:  m.AlertEnabled,
		SortOrder:     m.SortOrder,
	}
}

// EntryModelFromEntity converts a domain entry to its model.
func EntryModelFromEntity(e entity.Entry) *WatchlistEntryModel {
	return &WatchlistEntryModel{
		ID:            e.ID,
		UserID:        e.UserID,
		Symbol:        e.Symbol,
		AddedAt:       e.AddedAt.UTC(),
		Alias:         e.Alias,
		TargetPrice:   stringFromDecimal(e.TargetPrice),
		StopLossPrice: stringFromDecimal(e.StopLossPrice),
		AlertEnabled:  e.AlertEnabled,
		SortOrder:     e.SortOrder,
	}
}

func decimalFromString(s *string) *decimal.Decimal {
	if s == nil {
		return nil
	}
	d, err := decimal.NewFromString(*s)
	if err != nil {
		return nil
	}
	return &d
}

func stringFromDecimal(d *decimal.Decimal) *string {
	if d == nil {
		return nil
	}
	s := d.String()
	return &s
}
