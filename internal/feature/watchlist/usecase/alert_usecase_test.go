package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	quoteentity "watchlist_backend/internal/feature/quotes/domain/entity"
	"watchlist_backend/internal/feature/watchlist/domain"
	"watchlist_backend/internal/feature/watchlist/domain/entity"
	"watchlist_backend/internal/feature/watchlist/usecase"
)

// TestAlertUsecase_Create は入力の正規化と検証を検証します。
func TestAlertUsecase_Create(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		owner   entity.Identity
		symbol  string
		typ     entity.AlertType
		target  string
		wantErr error
	}{
		{name: "user alert", owner: user, symbol: " aapl ", typ: "ABOVE", target: "200"},
		{name: "session alert", owner: session, symbol: "MSFT", typ: entity.AlertPercentChange, target: "2.5"},
		{name: "no owner", owner: entity.Identity{}, symbol: "AAPL", typ: entity.AlertAbove, target: "1", wantErr: domain.ErrInvalidIdentity},
		{name: "unknown type", owner: user, symbol: "AAPL", typ: "sideways", target: "1", wantErr: domain.ErrInvalidAlert},
		{name: "non positive target", owner: user, symbol: "AAPL", typ: entity.AlertBelow, target: "0", wantErr: domain.ErrInvalidAlert},
		{name: "bad symbol", owner: user, symbol: "not a symbol", typ: entity.AlertBelow, target: "1", wantErr: domain.ErrInvalidAlert},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			repo := &mockAlertRepo{}
			uc := usecase.NewAlertUsecase(repo)

			a, err := uc.Create(context.Background(), tt.owner, tt.symbol, tt.typ, decimal.RequireFromString(tt.target), "  note ")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, repo.alerts)
				return
			}
			require.NoError(t, err)
			assert.NotZero(t, a.ID)
			assert.Equal(t, quoteentity.NormalizeSymbol(tt.symbol), a.Symbol)
			assert.True(t, a.Active)
			assert.Equal(t, "note", a.Message)
			assert.Equal(t, tt.owner, a.Owner())
		})
	}
}

// TestAlertUsecase_Evaluate は発火したアラートのみ返し、発火時刻を記録することを検証します。
func TestAlertUsecase_Evaluate(t *testing.T) {
	t.Parallel()

	repo := &mockAlertRepo{alerts: []entity.PriceAlert{
		{ID: 1, UserID: 42, Symbol: "AAPL", Type: entity.AlertAbove, Target: decimal.NewFromInt(150), Active: true},
		{ID: 2, UserID: 42, Symbol: "AAPL", Type: entity.AlertBelow, Target: decimal.NewFromInt(100), Active: true},
		{ID: 3, UserID: 42, Symbol: "MSFT", Type: entity.AlertPercentChange, Target: decimal.NewFromInt(1), Active: true},
		{ID: 4, UserID: 42, Symbol: "MSFT", Type: entity.AlertBelow, Target: decimal.NewFromInt(1000), Active: false},
		{ID: 5, UserID: 42, Symbol: "GOOG", Type: entity.AlertBelow, Target: decimal.NewFromInt(1000), Active: true},
		{ID: 6, UserID: 7, Symbol: "AAPL", Type: entity.AlertAbove, Target: decimal.NewFromInt(1), Active: true},
	}}
	uc := usecase.NewAlertUsecase(repo)

	at := time.Now()
	aapl := quote("AAPL", "151", "1", at)
	msft := quote("MSFT", "330", "-5", at)
	result := entity.AggregationResult{Items: []entity.Item{
		{Entry: entity.Entry{Symbol: "AAPL"}, Quote: &aapl},
		{Entry: entity.Entry{Symbol: "MSFT"}, Quote: &msft},
		{Entry: entity.Entry{Symbol: "GOOG"}, Error: "timed out"},
	}}

	fired, err := uc.Evaluate(context.Background(), user, result)
	require.NoError(t, err)

	ids := make([]uint, 0, len(fired))
	for _, a := range fired {
		ids = append(ids, a.ID)
		assert.NotNil(t, a.LastTriggeredAt)
	}
	assert.Equal(t, []uint{1, 3}, ids)
	assert.Equal(t, []uint{1, 3}, repo.marked)
}

// TestAlertUsecase_Evaluate_MarkFailure は記録失敗時も発火結果を返すことを検証します。
func TestAlertUsecase_Evaluate_MarkFailure(t *testing.T) {
	t.Parallel()

	repo := &mockAlertRepo{
		alerts:  []entity.PriceAlert{{ID: 1, UserID: 42, Symbol: "AAPL", Type: entity.AlertAbove, Target: decimal.NewFromInt(1), Active: true}},
		markErr: errStoreDown,
	}
	aapl := quote("AAPL", "10", "0", time.Now())

	fired, err := usecase.NewAlertUsecase(repo).Evaluate(context.Background(), user,
		entity.AggregationResult{Items: []entity.Item{{Quote: &aapl}}})

	require.NoError(t, err)
	assert.Len(t, fired, 1)
}

func TestAlertUsecase_ListAndDelete(t *testing.T) {
	t.Parallel()

	repo := &mockAlertRepo{}
	uc := usecase.NewAlertUsecase(repo)
	ctx := context.Background()

	a, err := uc.Create(ctx, user, "AAPL", entity.AlertAbove, decimal.NewFromInt(5), "")
	require.NoError(t, err)

	list, err := uc.List(ctx, user)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	assert.ErrorIs(t, uc.Delete(ctx, session, a.ID), domain.ErrNotFound)
	require.NoError(t, uc.Delete(ctx, user, a.ID))

	_, err = uc.List(ctx, entity.Identity{})
	assert.ErrorIs(t, err, domain.ErrInvalidIdentity)
}
