package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	quotedomain "watchlist_backend/internal/feature/quotes/domain"
	quoteentity "watchlist_backend/internal/feature/quotes/domain/entity"
	"watchlist_backend/internal/feature/watchlist/domain"
	"watchlist_backend/internal/feature/watchlist/domain/entity"
	"watchlist_backend/internal/feature/watchlist/usecase"
)

type fixture struct {
	users    *memStore
	sessions *memStore
	resolver *stubResolver
	alerts   *mockAlertRepo
	uc       *usecase.WatchlistUsecase
}

func newFixture(capacity int) *fixture {
	f := &fixture{
		users:    newMemStore(),
		sessions: newMemStore(),
		resolver: &stubResolver{quotes: map[string]quoteentity.Quote{}},
		alerts:   &mockAlertRepo{},
	}
	stores := usecase.Stores{User: f.users, Session: f.sessions}
	migrator := usecase.NewMigrator(f.sessions, f.users, f.alerts, nil, capacity)
	f.uc = usecase.NewWatchlistUsecase(stores, usecase.NewAggregator(f.resolver), usecase.NewAlertUsecase(f.alerts), migrator, capacity)
	return f
}

// TestStores_For は識別子に応じたストアが選ばれることを検証します。
func TestStores_For(t *testing.T) {
	t.Parallel()

	users, sessions := newMemStore(), newMemStore()
	stores := usecase.Stores{User: users, Session: sessions}

	s, err := stores.For(entity.Identity{UserID: 1, SessionID: "both"})
	require.NoError(t, err)
	assert.Same(t, users, s, "user wins when both are set")

	s, err = stores.For(entity.Identity{SessionID: "abc"})
	require.NoError(t, err)
	assert.Same(t, sessions, s)

	_, err = stores.For(entity.Identity{})
	assert.ErrorIs(t, err, domain.ErrInvalidIdentity)
}

func TestNewWatchlistUsecase_DefaultCapacity(t *testing.T) {
	t.Parallel()

	uc := usecase.NewWatchlistUsecase(usecase.Stores{}, nil, nil, nil, 0)
	assert.Equal(t, entity.DefaultCapacity, uc.Capacity())
}

// TestWatchlistUsecase_AddSymbol は追加時の正規化・重複・上限の扱いを検証します。
func TestWatchlistUsecase_AddSymbol(t *testing.T) {
	t.Parallel()

	f := newFixture(2)
	ctx := context.Background()

	e, created, err := f.uc.AddSymbol(ctx, session, " aapl ")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "AAPL", e.Symbol)
	assert.Equal(t, sessionID, e.SessionID)

	// 重複追加は成功扱いで何も変わりません
	again, created, err := f.uc.AddSymbol(ctx, session, "AAPL")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, e.ID, again.ID)

	_, _, err = f.uc.AddSymbol(ctx, session, "MSFT")
	require.NoError(t, err)

	// 満杯でも重複は上限エラーになりません
	_, created, err = f.uc.AddSymbol(ctx, session, "msft")
	require.NoError(t, err)
	assert.False(t, created)

	_, _, err = f.uc.AddSymbol(ctx, session, "GOOG")
	assert.ErrorIs(t, err, domain.ErrCapacityExceeded)

	_, _, err = f.uc.AddSymbol(ctx, session, "BRK.B")
	assert.ErrorIs(t, err, quotedomain.ErrInvalidSymbol)

	_, _, err = f.uc.AddSymbol(ctx, entity.Identity{}, "IBM")
	assert.ErrorIs(t, err, domain.ErrInvalidIdentity)

	assert.Equal(t, []string{"AAPL", "MSFT"}, f.sessions.symbols(session))
}

// TestWatchlistUsecase_EndToEnd は追加から表示・集計までの一連の流れを検証します。
func TestWatchlistUsecase_EndToEnd(t *testing.T) {
	t.Parallel()

	f := newFixture(20)
	ctx := context.Background()
	at := time.Date(2026, 6, 1, 14, 30, 0, 0, time.UTC)
	f.resolver.quotes["AAPL"] = quote("AAPL", "150", "3", at)

	for _, s := range []string{"AAPL", "MSFT"} {
		_, _, err := f.uc.AddSymbol(ctx, user, s)
		require.NoError(t, err)
	}
	f.alerts.alerts = append(f.alerts.alerts, entity.PriceAlert{
		ID: 1, UserID: user.UserID, Symbol: "AAPL", Type: entity.AlertAbove, Target: decimal.NewFromInt(149), Active: true,
	})

	view, err := f.uc.GetWatchlistWithQuotes(ctx, user)
	require.NoError(t, err)

	require.Len(t, view.Result.Items, 2)
	assert.Equal(t, "AAPL", view.Result.Items[0].Entry.Symbol)
	require.NotNil(t, view.Result.Items[0].Quote)
	assert.Equal(t, "MSFT", view.Result.Items[1].Entry.Symbol)
	assert.Nil(t, view.Result.Items[1].Quote)
	assert.Equal(t, []string{"MSFT: all providers failed"}, view.Result.Errors)

	assert.True(t, view.Summary.TotalValue.Equal(decimal.NewFromInt(150)))
	assert.True(t, view.Summary.TotalChange.Equal(decimal.NewFromInt(3)))
	assert.Equal(t, 1, view.Summary.Count)
	assert.True(t, view.Summary.LastUpdated.Equal(at))

	require.Len(t, view.TriggeredAlerts, 1)
	assert.Equal(t, uint(1), view.TriggeredAlerts[0].ID)
}

// TestWatchlistUsecase_GetWatchlistWithQuotes_AlertFailure はアラート評価の失敗が表示を妨げないことを検証します。
func TestWatchlistUsecase_GetWatchlistWithQuotes_AlertFailure(t *testing.T) {
	t.Parallel()

	f := newFixture(20)
	f.alerts.listErr = errStoreDown
	f.users.seed(user, entity.Entry{Symbol: "AAPL"})

	view, err := f.uc.GetWatchlistWithQuotes(context.Background(), user)
	require.NoError(t, err)
	assert.Len(t, view.Result.Items, 1)
	assert.Empty(t, view.TriggeredAlerts)
}

func TestWatchlistUsecase_GetWatchlistWithQuotes_StoreError(t *testing.T) {
	t.Parallel()

	f := newFixture(20)
	f.sessions.listErr = errStoreDown

	_, err := f.uc.GetWatchlistWithQuotes(context.Background(), session)
	assert.ErrorIs(t, err, errStoreDown)
}

// TestWatchlistUsecase_EditOperations は削除・並べ替え・更新の操作を検証します。
func TestWatchlistUsecase_EditOperations(t *testing.T) {
	t.Parallel()

	f := newFixture(20)
	ctx := context.Background()
	for _, s := range []string{"AAPL", "MSFT", "GOOG"} {
		_, _, err := f.uc.AddSymbol(ctx, user, s)
		require.NoError(t, err)
	}

	out, err := f.uc.ReorderSymbols(ctx, user, []string{"goog"})
	require.NoError(t, err)
	assert.Equal(t, "GOOG", out[0].Symbol)

	alias := "Alphabet"
	e, err := f.uc.UpdateEntry(ctx, user, "goog", entity.EntryPatch{Alias: &alias})
	require.NoError(t, err)
	assert.Equal(t, "Alphabet", e.Alias)

	on := true
	e, err = f.uc.UpdateItem(ctx, user, e.ID, entity.EntryPatch{AlertEnabled: &on})
	require.NoError(t, err)
	assert.True(t, e.AlertEnabled)

	_, err = f.uc.UpdateItem(ctx, session, e.ID, entity.EntryPatch{AlertEnabled: &on})
	assert.ErrorIs(t, err, domain.ErrInvalidIdentity)

	require.NoError(t, f.uc.RemoveSymbol(ctx, user, "msft"))
	assert.ErrorIs(t, f.uc.RemoveSymbol(ctx, user, "MSFT"), domain.ErrNotFound)
	assert.Equal(t, []string{"GOOG", "AAPL"}, f.users.symbols(user))

	require.NoError(t, f.uc.ClearWatchlist(ctx, user))
	assert.Empty(t, f.users.symbols(user))
}

// TestWatchlistUsecase_MigrateOnSignIn はサインイン時の移行と部分失敗の伝播を検証します。
func TestWatchlistUsecase_MigrateOnSignIn(t *testing.T) {
	t.Parallel()

	t.Run("merges session", func(t *testing.T) {
		t.Parallel()

		f := newFixture(20)
		f.sessions.seed(session, entity.Entry{Symbol: "AAPL"})

		require.NoError(t, f.uc.MigrateOnSignIn(context.Background(), sessionID, 42))
		assert.Equal(t, []string{"AAPL"}, f.users.symbols(user))
	})

	t.Run("partial is returned", func(t *testing.T) {
		t.Parallel()

		f := newFixture(1)
		f.users.seed(user, entity.Entry{Symbol: "IBM"})
		f.sessions.seed(session, entity.Entry{Symbol: "AAPL"})

		err := f.uc.MigrateOnSignIn(context.Background(), sessionID, 42)
		var partial *usecase.PartialMigrationError
		assert.True(t, errors.As(err, &partial))
	})

	t.Run("no session is a no-op", func(t *testing.T) {
		t.Parallel()

		f := newFixture(20)
		assert.NoError(t, f.uc.MigrateOnSignIn(context.Background(), "", 42))

		uc := usecase.NewWatchlistUsecase(usecase.Stores{}, nil, nil, nil, 0)
		assert.NoError(t, uc.MigrateOnSignIn(context.Background(), sessionID, 42))
	})
}
