package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	quotedomain "watchlist_backend/internal/feature/quotes/domain"
	quoteentity "watchlist_backend/internal/feature/quotes/domain/entity"
	"watchlist_backend/internal/feature/watchlist/domain"
	"watchlist_backend/internal/feature/watchlist/domain/entity"
)

// AlertEvaluator は解決済みウォッチリストに対して価格アラートを評価します。
type AlertEvaluator interface {
	Evaluate(ctx context.Context, owner entity.Identity, result entity.AggregationResult) ([]entity.PriceAlert, error)
}

var _ AlertEvaluator = (*AlertUsecase)(nil)

// WatchlistView is a watchlist resolved for display.
type WatchlistView struct {
	Result          entity.AggregationResult
	Summary         entity.PortfolioSummary
	TriggeredAlerts []entity.PriceAlert
}

// WatchlistUsecase はウォッチリスト操作のユースケースです。
type WatchlistUsecase struct {
	stores     Stores
	aggregator *Aggregator
	alerts     AlertEvaluator
	migrator   *Migrator
	capacity   int
}

// NewWatchlistUsecase は新しい WatchlistUsecase を作成します。
// capacity が0以下の場合は entity.DefaultCapacity を使用します。alerts は nil でも構いません。
func NewWatchlistUsecase(stores Stores, aggregator *Aggregator, alerts AlertEvaluator, migrator *Migrator, capacity int) *WatchlistUsecase {
	if capacity <= 0 {
		capacity = entity.DefaultCapacity
	}
	return &WatchlistUsecase{
		stores:     stores,
		aggregator: aggregator,
		alerts:     alerts,
		migrator:   migrator,
		capacity:   capacity,
	}
}

// Capacity returns the configured maximum watchlist size.
func (u *WatchlistUsecase) Capacity() int { return u.capacity }

// GetWatchlistWithQuotes lists the owner's entries, resolves their quotes and totals them.
// Quote failures are reported inside the result; only store failures are returned as errors.
func (u *WatchlistUsecase) GetWatchlistWithQuotes(ctx context.Context, id entity.Identity) (WatchlistView, error) {
	store, err := u.stores.For(id)
	if err != nil {
		return WatchlistView{}, err
	}
	entries, err := store.List(ctx, id)
	if err != nil {
		return WatchlistView{}, fmt.Errorf("list watchlist: %w", err)
	}

	result := u.aggregator.Resolve(ctx, entries)
	view := WatchlistView{Result: result, Summary: SummarizePortfolio(result)}

	if u.alerts != nil {
		fired, err := u.alerts.Evaluate(ctx, id, result)
		if err != nil {
			slog.Warn("alert evaluation failed", "owner", id.String(), "error", err)
		}
		view.TriggeredAlerts = fired
	}
	return view, nil
}

// AddSymbol adds symbol to the owner's watchlist.
// Adding a symbol that is already present succeeds without change and created is false.
func (u *WatchlistUsecase) AddSymbol(ctx context.Context, id entity.Identity, symbol string) (entry entity.Entry, created bool, err error) {
	symbol = quoteentity.NormalizeSymbol(symbol)
	if !quoteentity.ValidSymbol(symbol) {
		return entity.Entry{}, false, fmt.Errorf("%w: %q", quotedomain.ErrInvalidSymbol, symbol)
	}
	store, err := u.stores.For(id)
	if err != nil {
		return entity.Entry{}, false, err
	}

	e := entity.Entry{Symbol: symbol}
	if id.IsUser() {
		e.UserID = id.UserID
	} else {
		e.SessionID = id.SessionID
	}

	added, err := store.Add(ctx, id, e, u.capacity)
	if errors.Is(err, domain.ErrDuplicateSymbol) {
		existing, lerr := u.find(ctx, store, id, symbol)
		if lerr != nil {
			return entity.Entry{}, false, lerr
		}
		return existing, false, nil
	}
	if err != nil {
		return entity.Entry{}, false, err
	}
	return added, true, nil
}

// RemoveSymbol removes symbol from the owner's watchlist.
func (u *WatchlistUsecase) RemoveSymbol(ctx context.Context, id entity.Identity, symbol string) error {
	store, err := u.stores.For(id)
	if err != nil {
		return err
	}
	return store.Remove(ctx, id, quoteentity.NormalizeSymbol(symbol))
}

// ClearWatchlist removes every entry of the owner.
func (u *WatchlistUsecase) ClearWatchlist(ctx context.Context, id entity.Identity) error {
	store, err := u.stores.For(id)
	if err != nil {
		return err
	}
	return store.Clear(ctx, id)
}

// ReorderSymbols moves the given symbols to the front in the given order.
func (u *WatchlistUsecase) ReorderSymbols(ctx context.Context, id entity.Identity, symbols []string) ([]entity.Entry, error) {
	store, err := u.stores.For(id)
	if err != nil {
		return nil, err
	}
	return store.Reorder(ctx, id, symbols)
}

// UpdateEntry edits the alias, target price, stop loss or alert flag of the owner's entry for symbol.
func (u *WatchlistUsecase) UpdateEntry(ctx context.Context, id entity.Identity, symbol string, patch entity.EntryPatch) (entity.Entry, error) {
	store, err := u.stores.For(id)
	if err != nil {
		return entity.Entry{}, err
	}
	return store.Update(ctx, id, quoteentity.NormalizeSymbol(symbol), patch)
}

// UpdateItem edits a signed-in user's entry by id.
func (u *WatchlistUsecase) UpdateItem(ctx context.Context, id entity.Identity, itemID uint, patch entity.EntryPatch) (entity.Entry, error) {
	if !id.IsUser() {
		return entity.Entry{}, domain.ErrInvalidIdentity
	}
	return u.stores.User.UpdateByID(ctx, id, itemID, patch)
}

// MigrateOnSignIn moves an anonymous session's watchlist into the user's.
// A *PartialMigrationError is logged and returned so callers can decide to continue.
func (u *WatchlistUsecase) MigrateOnSignIn(ctx context.Context, sessionID string, userID uint) error {
	if u.migrator == nil || sessionID == "" {
		return nil
	}
	err := u.migrator.Migrate(ctx, sessionID, userID)
	var partial *PartialMigrationError
	if errors.As(err, &partial) {
		slog.Warn("watchlist migration incomplete", "user_id", userID, "error", partial)
	}
	return err
}

func (u *WatchlistUsecase) find(ctx context.Context, store Store, id entity.Identity, symbol string) (entity.Entry, error) {
	entries, err := store.List(ctx, id)
	if err != nil {
		return entity.Entry{}, err
	}
	for _, e := range entries {
		if e.Symbol == symbol {
			return e, nil
		}
	}
	return entity.Entry{}, domain.ErrNotFound
}
