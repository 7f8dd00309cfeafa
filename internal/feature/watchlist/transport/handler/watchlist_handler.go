// Package handler はwatchlistフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	quotedomain "watchlist_backend/internal/feature/quotes/domain"
	recusecase "watchlist_backend/internal/feature/recommendation/usecase"
	recdto "watchlist_backend/internal/feature/recommendation/transport/http/dto"
	"watchlist_backend/internal/feature/watchlist/domain"
	"watchlist_backend/internal/feature/watchlist/domain/entity"
	"watchlist_backend/internal/feature/watchlist/transport/http/dto"
	"watchlist_backend/internal/feature/watchlist/usecase"
	commondto "watchlist_backend/internal/platform/http/dto"
	jwtmw "watchlist_backend/internal/platform/jwt"
)

// WatchlistUsecase はウォッチリスト操作のユースケースインターフェースを定義します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type WatchlistUsecase interface {
	Capacity() int
	GetWatchlistWithQuotes(ctx context.Context, id entity.Identity) (usecase.WatchlistView, error)
	AddSymbol(ctx context.Context, id entity.Identity, symbol string) (entity.Entry, bool, error)
	RemoveSymbol(ctx context.Context, id entity.Identity, symbol string) error
	ClearWatchlist(ctx context.Context, id entity.Identity) error
	ReorderSymbols(ctx context.Context, id entity.Identity, symbols []string) ([]entity.Entry, error)
	UpdateEntry(ctx context.Context, id entity.Identity, symbol string, patch entity.EntryPatch) (entity.Entry, error)
	UpdateItem(ctx context.Context, id entity.Identity, itemID uint, patch entity.EntryPatch) (entity.Entry, error)
}

var _ WatchlistUsecase = (*usecase.WatchlistUsecase)(nil)

// WatchlistHandler はウォッチリストのHTTPリクエストを処理します。
// 利用者の識別は jwtmw.Identify が設定した値を使います。
type WatchlistHandler struct {
	uc WatchlistUsecase
}

// NewWatchlistHandler は新しい WatchlistHandler を作成します。
func NewWatchlistHandler(uc WatchlistUsecase) *WatchlistHandler {
	return &WatchlistHandler{uc: uc}
}

// identityFrom はリクエストの利用者を返します。ログイン済みの場合はユーザーが優先されます。
func identityFrom(c *gin.Context) entity.Identity {
	return entity.Identity{UserID: jwtmw.UserID(c), SessionID: jwtmw.SessionID(c)}
}

// Get はウォッチリストを株価・集計・提案付きで返します。
//
// エンドポイント: GET /watchlist
func (h *WatchlistHandler) Get(c *gin.Context) {
	view, err := h.uc.GetWatchlistWithQuotes(c.Request.Context(), identityFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}

	errs := view.Result.Errors
	if errs == nil {
		errs = []string{}
	}
	c.JSON(http.StatusOK, dto.WatchlistResponse{
		Items:           dto.NewItemResponses(view.Result.Items),
		Errors:          errs,
		Summary:         dto.NewSummaryResponse(view.Summary),
		TriggeredAlerts: dto.NewAlertResponses(view.TriggeredAlerts),
		Recommendations: recdto.NewRecommendationResponses(recusecase.RecommendAll(view.Result)),
		Capacity:        h.uc.Capacity(),
	})
}

// Add は銘柄を追加します。新規追加は201、既に登録済みの場合は200で既存のエントリーを返します。
//
// エンドポイント: POST /watchlist
func (h *WatchlistHandler) Add(c *gin.Context) {
	var req dto.AddSymbolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, commondto.ErrorResponse{Error: "symbol is required"})
		return
	}

	e, created, err := h.uc.AddSymbol(c.Request.Context(), identityFrom(c), req.Symbol)
	if err != nil {
		writeError(c, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, dto.NewEntryResponse(e))
}

// Remove は銘柄を削除します。
//
// エンドポイント: DELETE /watchlist/:symbol
func (h *WatchlistHandler) Remove(c *gin.Context) {
	if err := h.uc.RemoveSymbol(c.Request.Context(), identityFrom(c), c.Param("symbol")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Clear はウォッチリストを空にします。
//
// エンドポイント: DELETE /watchlist
func (h *WatchlistHandler) Clear(c *gin.Context) {
	if err := h.uc.ClearWatchlist(c.Request.Context(), identityFrom(c)); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Reorder は表示順を変更します。
//
// エンドポイント: PUT /watchlist/order
func (h *WatchlistHandler) Reorder(c *gin.Context) {
	var req dto.ReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, commondto.ErrorResponse{Error: "symbols are required"})
		return
	}
	entries, err := h.uc.ReorderSymbols(c.Request.Context(), identityFrom(c), req.Symbols)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ReorderResponse{Items: dto.NewEntryResponses(entries)})
}

// Update は銘柄のエントリーを編集します。
//
// エンドポイント: PATCH /watchlist/:symbol
func (h *WatchlistHandler) Update(c *gin.Context) {
	patch, ok := bindPatch(c)
	if !ok {
		return
	}
	e, err := h.uc.UpdateEntry(c.Request.Context(), identityFrom(c), c.Param("symbol"), patch)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewEntryResponse(e))
}

// UpdateItem はIDで指定したエントリーを編集します。ログインユーザーのみ利用できます。
//
// エンドポイント: PATCH /watchlist/items/:id
func (h *WatchlistHandler) UpdateItem(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, commondto.ErrorResponse{Error: "invalid id"})
		return
	}
	patch, ok := bindPatch(c)
	if !ok {
		return
	}
	e, err := h.uc.UpdateItem(c.Request.Context(), identityFrom(c), uint(id), patch)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewEntryResponse(e))
}

func bindPatch(c *gin.Context) (entity.EntryPatch, bool) {
	var req dto.UpdateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, commondto.ErrorResponse{Error: "invalid request body"})
		return entity.EntryPatch{}, false
	}
	patch, err := req.ToPatch()
	if err != nil {
		c.JSON(http.StatusBadRequest, commondto.ErrorResponse{Error: err.Error()})
		return entity.EntryPatch{}, false
	}
	return patch, true
}

// statusForError maps domain errors to HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, domain.ErrCapacityExceeded):
		return http.StatusConflict
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, quotedomain.ErrInvalidSymbol),
		errors.Is(err, domain.ErrInvalidIdentity),
		errors.Is(err, domain.ErrInvalidAlert):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, err error) {
	status := statusForError(err)
	if status >= http.StatusInternalServerError {
		slog.Error("watchlist request failed", "path", c.FullPath(), "error", err)
		c.JSON(status, commondto.ErrorResponse{Error: "internal server error"})
		return
	}
	c.JSON(status, commondto.ErrorResponse{Error: err.Error()})
}
