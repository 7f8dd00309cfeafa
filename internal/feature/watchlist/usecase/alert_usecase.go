package usecase

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	quoteentity "watchlist_backend/internal/feature/quotes/domain/entity"
	"watchlist_backend/internal/feature/watchlist/domain"
	"watchlist_backend/internal/feature/watchlist/domain/entity"
)

// AlertRepository は価格アラートの永続化レイヤーを抽象化します。
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type AlertRepository interface {
	Create(ctx context.Context, a *entity.PriceAlert) error
	ListByOwner(ctx context.Context, owner entity.Identity) ([]entity.PriceAlert, error)
	// Delete removes the owner's alert, or returns domain.ErrNotFound.
	Delete(ctx context.Context, owner entity.Identity, id uint) error
	MarkTriggered(ctx context.Context, ids []uint, at time.Time) error
	// Reassign moves every alert of sessionID to userID and returns how many moved.
	Reassign(ctx context.Context, sessionID string, userID uint) (int64, error)
}

// AlertUsecase manages price alerts and evaluates them against resolved watchlists.
type AlertUsecase struct {
	repo AlertRepository
	now  func() time.Time
}

// NewAlertUsecase は新しい AlertUsecase を作成します。
func NewAlertUsecase(repo AlertRepository) *AlertUsecase {
	return &AlertUsecase{repo: repo, now: time.Now}
}

// Create validates and stores a new active alert for owner.
func (u *AlertUsecase) Create(ctx context.Context, owner entity.Identity, symbol string, typ entity.AlertType, target decimal.Decimal, message string) (entity.PriceAlert, error) {
	if !owner.Valid() {
		return entity.PriceAlert{}, domain.ErrInvalidIdentity
	}
	a := entity.PriceAlert{
		Symbol:    quoteentity.NormalizeSymbol(symbol),
		Type:      entity.AlertType(strings.ToLower(string(typ))),
		Target:    target,
		Active:    true,
		Message:   strings.TrimSpace(message),
		CreatedAt: u.now().UTC(),
	}
	if owner.IsUser() {
		a.UserID = owner.UserID
	} else {
		a.SessionID = owner.SessionID
	}
	if err := a.Validate(); err != nil {
		return entity.PriceAlert{}, err
	}
	if err := u.repo.Create(ctx, &a); err != nil {
		return entity.PriceAlert{}, err
	}
	return a, nil
}

// List returns the owner's alerts.
func (u *AlertUsecase) List(ctx context.Context, owner entity.Identity) ([]entity.PriceAlert, error) {
	if !owner.Valid() {
		return nil, domain.ErrInvalidIdentity
	}
	return u.repo.ListByOwner(ctx, owner)
}

// Delete removes one of the owner's alerts.
func (u *AlertUsecase) Delete(ctx context.Context, owner entity.Identity, id uint) error {
	if !owner.Valid() {
		return domain.ErrInvalidIdentity
	}
	return u.repo.Delete(ctx, owner, id)
}

// Evaluate returns the owner's alerts that fire against the quotes in result and stamps
// their LastTriggeredAt. A failure to stamp is logged; the fired alerts are still returned.
func (u *AlertUsecase) Evaluate(ctx context.Context, owner entity.Identity, result entity.AggregationResult) ([]entity.PriceAlert, error) {
	alerts, err := u.repo.ListByOwner(ctx, owner)
	if err != nil || len(alerts) == 0 {
		return nil, err
	}

	quotes := make(map[string]quoteentity.Quote, len(result.Items))
	for _, it := range result.Items {
		if it.Quote != nil {
			quotes[it.Quote.Symbol] = *it.Quote
		}
	}

	now := u.now().UTC()
	var fired []entity.PriceAlert
	var ids []uint
	for _, a := range alerts {
		q, ok := quotes[a.Symbol]
		if !ok || !a.Triggered(q) {
			continue
		}
		a.LastTriggeredAt = &now
		fired = append(fired, a)
		ids = append(ids, a.ID)
	}
	if len(ids) > 0 {
		if err := u.repo.MarkTriggered(ctx, ids, now); err != nil {
			slog.Warn("failed to stamp triggered alerts", "owner", owner.String(), "count", len(ids), "error", err)
		}
	}
	return fired, nil
}

// Reassign moves a session's alerts to a user.
func (u *AlertUsecase) Reassign(ctx context.Context, sessionID string, userID uint) (int64, error) {
	return u.repo.Reassign(ctx, sessionID, userID)
}
