package handler_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	quotedomain "watchlist_backend/internal/feature/quotes/domain"
	quoteentity "watchlist_backend/internal/feature/quotes/domain/entity"
	"watchlist_backend/internal/feature/watchlist/domain"
	"watchlist_backend/internal/feature/watchlist/domain/entity"
	"watchlist_backend/internal/feature/watchlist/transport/handler"
	"watchlist_backend/internal/feature/watchlist/usecase"
	jwtmw "watchlist_backend/internal/platform/jwt"
)

var addedAt = time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC)

// mockWatchlistUsecase はWatchlistUsecaseインターフェースのモック実装です。
type mockWatchlistUsecase struct {
	GetFunc        func(ctx context.Context, id entity.Identity) (usecase.WatchlistView, error)
	AddFunc        func(ctx context.Context, id entity.Identity, symbol string) (entity.Entry, bool, error)
	RemoveFunc     func(ctx context.Context, id entity.Identity, symbol string) error
	ClearFunc      func(ctx context.Context, id entity.Identity) error
	ReorderFunc    func(ctx context.Context, id entity.Identity, symbols []string) ([]entity.Entry, error)
	UpdateFunc     func(ctx context.Context, id entity.Identity, symbol string, p entity.EntryPatch) (entity.Entry, error)
	UpdateItemFunc func(ctx context.Context, id entity.Identity, itemID uint, p entity.EntryPatch) (entity.Entry, error)
}

func (m *mockWatchlistUsecase) Capacity() int { return 20 }

func (m *mockWatchlistUsecase) GetWatchlistWithQuotes(ctx context.Context, id entity.Identity) (usecase.WatchlistView, error) {
	return m.GetFunc(ctx, id)
}

func (m *mockWatchlistUsecase) AddSymbol(ctx context.Context, id entity.Identity, symbol string) (entity.Entry, bool, error) {
	return m.AddFunc(ctx, id, symbol)
}

func (m *mockWatchlistUsecase) RemoveSymbol(ctx context.Context, id entity.Identity, symbol string) error {
	return m.RemoveFunc(ctx, id, symbol)
}

func (m *mockWatchlistUsecase) ClearWatchlist(ctx context.Context, id entity.Identity) error {
	return m.ClearFunc(ctx, id)
}

func (m *mockWatchlistUsecase) ReorderSymbols(ctx context.Context, id entity.Identity, symbols []string) ([]entity.Entry, error) {
	return m.ReorderFunc(ctx, id, symbols)
}

func (m *mockWatchlistUsecase) UpdateEntry(ctx context.Context, id entity.Identity, symbol string, p entity.EntryPatch) (entity.Entry, error) {
	return m.UpdateFunc(ctx, id, symbol, p)
}

func (m *mockWatchlistUsecase) UpdateItem(ctx context.Context, id entity.Identity, itemID uint, p entity.EntryPatch) (entity.Entry, error) {
	return m.UpdateItemFunc(ctx, id, itemID, p)
}

// newRouter はセッションIDを設定した状態でハンドラーを登録したルーターを返します。
func newRouter(h *handler.WatchlistHandler, userID uint) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(jwtmw.ContextSessionID, "sess-1")
		if userID != 0 {
			c.Set(jwtmw.ContextUserID, userID)
		}
		c.Next()
	})
	r.GET("/watchlist", h.Get)
	r.POST("/watchlist", h.Add)
	r.DELETE("/watchlist", h.Clear)
	r.DELETE("/watchlist/:symbol", h.Remove)
	r.PUT("/watchlist/order", h.Reorder)
	r.PATCH("/watchlist/:symbol", h.Update)
	r.PATCH("/watchlist/items/:id", h.UpdateItem)
	return r
}

func do(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	r.ServeHTTP(w, req)
	return w
}

// TestWatchlistHandler_Get はウォッチリストのレスポンス形式を検証します。
func TestWatchlistHandler_Get(t *testing.T) {
	at := time.Date(2026, 2, 3, 21, 0, 0, 0, time.UTC)
	q := quoteentity.NewQuote("AAPL", decimal.RequireFromString("150"), decimal.RequireFromString("-9"),
		decimal.RequireFromString("-5.66"), "Apple Inc", at, "twelvedata")

	var gotID entity.Identity
	uc := &mockWatchlistUsecase{GetFunc: func(ctx context.Context, id entity.Identity) (usecase.WatchlistView, error) {
		gotID = id
		return usecase.WatchlistView{
			Result: entity.AggregationResult{
				Items: []entity.Item{
					{Entry: entity.Entry{ID: 1, Symbol: "AAPL", AddedAt: addedAt}, Quote: &q},
					{Entry: entity.Entry{ID: 2, Symbol: "MSFT", AddedAt: addedAt, SortOrder: 1}, Error: "timed out"},
				},
				Errors: []string{"MSFT: timed out"},
			},
			Summary: entity.PortfolioSummary{
				TotalValue: decimal.NewFromInt(150), TotalChange: decimal.NewFromInt(-9),
				TotalChangePercent: decimal.RequireFromString("-5.66"), Count: 1, LastUpdated: at,
			},
		}, nil
	}}

	w := do(newRouter(handler.NewWatchlistHandler(uc), 0), http.MethodGet, "/watchlist", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, entity.Identity{SessionID: "sess-1"}, gotID)
	assert.JSONEq(t, `{
		"items": [
			{"id":1,"symbol":"AAPL","target_price":null,"stop_loss_price":null,"alert_enabled":false,"sort_order":0,
			 "added_at":"2026-02-03T04:05:06Z",
			 "quote":{"symbol":"AAPL","company_name":"Apple Inc","price":"150.00","change":"-9.00",
			          "change_percent":"-5.66%","captured_at":"2026-02-03T21:00:00Z","provider":"twelvedata"}},
			{"id":2,"symbol":"MSFT","target_price":null,"stop_loss_price":null,"alert_enabled":false,"sort_order":1,
			 "added_at":"2026-02-03T04:05:06Z","quote":null,"error":"timed out"}
		],
		"errors": ["MSFT: timed out"],
		"summary": {"total_value":"150.00","total_change":"-9.00","total_change_percent":"-5.66%","count":1,
		            "last_updated":"2026-02-03T21:00:00Z"},
		"triggered_alerts": [],
		"recommendations": [{"symbol":"AAPL","action":"buy","reason":"down 5.66% today"}],
		"capacity": 20
	}`, w.Body.String())
}

// TestWatchlistHandler_Get_UserWins はログイン済みの場合にユーザーとして扱われることを検証します。
func TestWatchlistHandler_Get_UserWins(t *testing.T) {
	var gotID entity.Identity
	uc := &mockWatchlistUsecase{GetFunc: func(ctx context.Context, id entity.Identity) (usecase.WatchlistView, error) {
		gotID = id
		return usecase.WatchlistView{}, nil
	}}

	w := do(newRouter(handler.NewWatchlistHandler(uc), 9), http.MethodGet, "/watchlist", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, gotID.IsUser())
	assert.Equal(t, uint(9), gotID.UserID)
	assert.Contains(t, w.Body.String(), `"errors":[]`)
}

// TestWatchlistHandler_Add はステータスコードの対応を検証します。
func TestWatchlistHandler_Add(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		addFunc        func(ctx context.Context, id entity.Identity, symbol string) (entity.Entry, bool, error)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "created",
			body: `{"symbol":"aapl"}`,
			addFunc: func(ctx context.Context, id entity.Identity, symbol string) (entity.Entry, bool, error) {
				return entity.Entry{ID: 3, Symbol: "AAPL", AddedAt: addedAt}, true, nil
			},
			expectedStatus: http.StatusCreated,
			expectedBody: `{"id":3,"symbol":"AAPL","target_price":null,"stop_loss_price":null,"alert_enabled":false,
				"sort_order":0,"added_at":"2026-02-03T04:05:06Z"}`,
		},
		{
			name: "duplicate is a no-op",
			body: `{"symbol":"AAPL"}`,
			addFunc: func(ctx context.Context, id entity.Identity, symbol string) (entity.Entry, bool, error) {
				return entity.Entry{ID: 3, Symbol: "AAPL", AddedAt: addedAt}, false, nil
			},
			expectedStatus: http.StatusOK,
			expectedBody: `{"id":3,"symbol":"AAPL","target_price":null,"stop_loss_price":null,"alert_enabled":false,
				"sort_order":0,"added_at":"2026-02-03T04:05:06Z"}`,
		},
		{
			name: "capacity exceeded",
			body: `{"symbol":"IBM"}`,
			addFunc: func(ctx context.Context, id entity.Identity, symbol string) (entity.Entry, bool, error) {
				return entity.Entry{}, false, domain.ErrCapacityExceeded
			},
			expectedStatus: http.StatusConflict,
			expectedBody:   `{"error":"watchlist capacity exceeded"}`,
		},
		{
			name: "invalid symbol",
			body: `{"symbol":"BRK.B"}`,
			addFunc: func(ctx context.Context, id entity.Identity, symbol string) (entity.Entry, bool, error) {
				return entity.Entry{}, false, quotedomain.ErrInvalidSymbol
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"invalid symbol"}`,
		},
		{
			name:           "missing symbol",
			body:           `{}`,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"symbol is required"}`,
		},
		{
			name: "store failure hides details",
			body: `{"symbol":"AAPL"}`,
			addFunc: func(ctx context.Context, id entity.Identity, symbol string) (entity.Entry, bool, error) {
				return entity.Entry{}, false, errors.New("dial tcp: refused")
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"error":"internal server error"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &mockWatchlistUsecase{AddFunc: tt.addFunc}
			w := do(newRouter(handler.NewWatchlistHandler(uc), 0), http.MethodPost, "/watchlist", tt.body)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.JSONEq(t, tt.expectedBody, w.Body.String())
		})
	}
}

func TestWatchlistHandler_RemoveAndClear(t *testing.T) {
	uc := &mockWatchlistUsecase{
		RemoveFunc: func(ctx context.Context, id entity.Identity, symbol string) error {
			if symbol == "MSFT" {
				return domain.ErrNotFound
			}
			return nil
		},
		ClearFunc: func(ctx context.Context, id entity.Identity) error { return nil },
	}
	r := newRouter(handler.NewWatchlistHandler(uc), 0)

	assert.Equal(t, http.StatusNoContent, do(r, http.MethodDelete, "/watchlist/AAPL", "").Code)
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodDelete, "/watchlist/MSFT", "").Code)
	assert.Equal(t, http.StatusNoContent, do(r, http.MethodDelete, "/watchlist", "").Code)
}

func TestWatchlistHandler_Reorder(t *testing.T) {
	var got []string
	uc := &mockWatchlistUsecase{ReorderFunc: func(ctx context.Context, id entity.Identity, symbols []string) ([]entity.Entry, error) {
		got = symbols
		return []entity.Entry{{ID: 2, Symbol: "MSFT", AddedAt: addedAt}, {ID: 1, Symbol: "AAPL", AddedAt: addedAt, SortOrder: 1}}, nil
	}}
	r := newRouter(handler.NewWatchlistHandler(uc), 0)

	w := do(r, http.MethodPut, "/watchlist/order", `{"symbols":["MSFT"]}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"MSFT"}, got)
	assert.Contains(t, w.Body.String(), `"symbol":"MSFT"`)

	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPut, "/watchlist/order", `{}`).Code)
}

// TestWatchlistHandler_Update はリクエストが EntryPatch に変換されることを検証します。
func TestWatchlistHandler_Update(t *testing.T) {
	var got entity.EntryPatch
	uc := &mockWatchlistUsecase{
		UpdateFunc: func(ctx context.Context, id entity.Identity, symbol string, p entity.EntryPatch) (entity.Entry, error) {
			got = p
			return entity.Entry{ID: 1, Symbol: "AAPL", Alias: "Apple", AddedAt: addedAt}, nil
		},
		UpdateItemFunc: func(ctx context.Context, id entity.Identity, itemID uint, p entity.EntryPatch) (entity.Entry, error) {
			if !id.IsUser() {
				return entity.Entry{}, domain.ErrInvalidIdentity
			}
			return entity.Entry{ID: itemID, Symbol: "AAPL", AddedAt: addedAt}, nil
		},
	}
	r := newRouter(handler.NewWatchlistHandler(uc), 0)

	w := do(r, http.MethodPatch, "/watchlist/AAPL", `{"alias":"Apple","target_price":"200.5","stop_loss_price":""}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, got.Alias)
	assert.Equal(t, "Apple", *got.Alias)
	require.NotNil(t, got.TargetPrice)
	assert.Equal(t, "200.5", got.TargetPrice.String())
	assert.True(t, got.ClearStopLoss)
	assert.Nil(t, got.AlertEnabled)

	w = do(r, http.MethodPatch, "/watchlist/AAPL", `{"target_price":"-1"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"invalid price"}`, w.Body.String())

	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPatch, "/watchlist/items/abc", `{}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPatch, "/watchlist/items/5", `{"alert_enabled":true}`).Code,
		"anonymous sessions cannot edit by id")

	userRouter := newRouter(handler.NewWatchlistHandler(uc), 3)
	w = do(userRouter, http.MethodPatch, "/watchlist/items/5", `{"alert_enabled":true}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"id":5`)
}
