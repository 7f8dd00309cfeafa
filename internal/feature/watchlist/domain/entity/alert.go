package entity

import (
	"time"

	"github.com/shopspring/decimal"

	quoteentity "watchlist_backend/internal/feature/quotes/domain/entity"
	"watchlist_backend/internal/feature/watchlist/domain"
)

// AlertType selects how a PriceAlert compares against a quote.
type AlertType string

const (
	// AlertAbove fires when the price is at or above Target.
	AlertAbove AlertType = "above"
	// AlertBelow fires when the price is at or below Target.
	AlertBelow AlertType = "below"
	// AlertPercentChange fires when the absolute daily percent change reaches Target.
	AlertPercentChange AlertType = "percent_change"
)

// Valid reports whether t is a known alert type.
func (t AlertType) Valid() bool {
	switch t {
	case AlertAbove, AlertBelow, AlertPercentChange:
		return true
	}
	return false
}

// PriceAlert is a user-defined threshold on a symbol. Several alerts may exist per symbol.
type PriceAlert struct {
	ID              uint
	SessionID       string
	UserID          uint
	Symbol          string
	Type            AlertType
	Target          decimal.Decimal
	Active          bool
	Message         string
	CreatedAt       time.Time
	LastTriggeredAt *time.Time
}

// Owner returns the identity that owns the alert.
func (a PriceAlert) Owner() Identity {
	return Identity{UserID: a.UserID, SessionID: a.SessionID}
}

// Validate checks the alert's type and target.
func (a PriceAlert) Validate() error {
	if !a.Type.Valid() || !a.Target.IsPositive() || !quoteentity.ValidSymbol(a.Symbol) {
		return domain.ErrInvalidAlert
	}
	return nil
}

// Triggered reports whether an active alert fires for q.
func (a PriceAlert) Triggered(q quoteentity.Quote) bool {
	if !a.Active {
		return false
	}
	switch a.Type {
	case AlertAbove:
		return q.Price.GreaterThanOrEqual(a.Target)
	case AlertBelow:
		return q.Price.LessThanOrEqual(a.Target)
	case AlertPercentChange:
		return q.ChangePercent.Abs().GreaterThanOrEqual(a.Target)
	}
	return false
}
