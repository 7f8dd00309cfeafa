package adapters

import (
	"time"

	"github.com/shopspring/decimal"

	"watchlist_backend/internal/feature/watchlist/domain/entity"
)

// PriceAlertModel は価格アラート1件です。匿名セッションとユーザーのどちらか一方が所有します。
type PriceAlertModel struct {
	ID              uint      `gorm:"primaryKey"`
	SessionID       *string   `gorm:"size:64;index"`
	UserID          *uint     `gorm:"index"`
	Symbol          string    `gorm:"size:16;not null;index"`
	Type            string    `gorm:"size:16;not null"`
	Target          string    `gorm:"size:32;not null"`
	Active          bool      `gorm:"not null;default:true"`
	Message         string    `gorm:"size:255;not null;default:''"`
	CreatedAt       time.Time `gorm:"not null"`
	LastTriggeredAt *time.Time
}

func (PriceAlertModel) TableName() string {
	return "price_alerts"
}

// ToEntity converts the model to a domain alert.
func (m *PriceAlertModel) ToEntity() entity.PriceAlert {
	a := entity.PriceAlert{
		ID:              m.ID,
		Symbol:          m.Symbol,
		Type:            entity.AlertType(m.Type),
		Active:          m.Active,
		Message:         m.Message,
		CreatedAt:       m.CreatedAt.UTC(),
		LastTriggeredAt: m.LastTriggeredAt,
	}
	if m.SessionID != nil {
		a.SessionID = *m.SessionID
	}
	if m.UserID != nil {
		a.UserID = *m.UserID
	}
	if d, err := decimal.NewFromString(m.Target); err == nil {
		a.Target = d
	}
	return a
}

// AlertModelFromEntity converts a domain alert to its model.
func AlertModelFromEntity(a entity.PriceAlert) *PriceAlertModel {
	m := &PriceAlertModel{
		ID:              a.ID,
		Symbol:          a.Symbol,
		Type:            string(a.Type),
		Target:          a.Target.String(),
		Active:          a.Active,
		Message:         a.Message,
		CreatedAt:       a.CreatedAt.UTC(),
		LastTriggeredAt: a.LastTriggeredAt,
	}
	if a.UserID != 0 {
		uid := a.UserID
		m.UserID = &uid
	} else if a.SessionID != "" {
		sid := a.SessionID
		m.SessionID = &sid
	}
	return m
}
