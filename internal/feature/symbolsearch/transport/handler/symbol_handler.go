// Package handler はsymbolsearchフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"watchlist_backend/internal/feature/symbolsearch/domain/entity"
	"watchlist_backend/internal/feature/symbolsearch/transport/http/dto"
	"watchlist_backend/internal/feature/symbolsearch/usecase"
	commondto "watchlist_backend/internal/platform/http/dto"
)

// SearchUsecase は銘柄検索のユースケースインターフェースです。
// Following Go convention: interfaces are defined by the consumer (handler), not the provider (usecase).
type SearchUsecase interface {
	Search(ctx context.Context, query string, limit int) ([]entity.Symbol, error)
	SearchByLogo(ctx context.Context, imageData []byte) ([]entity.LogoMatch, error)
}

var _ SearchUsecase = (*usecase.SearchUsecase)(nil)

// SymbolHandler は銘柄検索のHTTPリクエストを処理します。
type SymbolHandler struct {
	uc SearchUsecase
}

// NewSymbolHandler は新しい SymbolHandler を作成します。
func NewSymbolHandler(uc SearchUsecase) *SymbolHandler {
	return &SymbolHandler{uc: uc}
}

// Search は銘柄を検索します。q を省略すると有効な銘柄の一覧を返します。
//
// エンドポイント: GET /symbols?q=&limit=
func (h *SymbolHandler) Search(c *gin.Context) {
	limit := 0
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, commondto.ErrorResponse{Error: "invalid limit"})
			return
		}
		limit = n
	}

	symbols, err := h.uc.Search(c.Request.Context(), c.Query("q"), limit)
	if err != nil {
		slog.Error("symbol search failed", "error", err)
		c.JSON(http.StatusInternalServerError, commondto.ErrorResponse{Error: "internal server error"})
		return
	}
	c.JSON(http.StatusOK, dto.NewSymbolItems(symbols))
}

// SearchByLogo はアップロードされた画像のロゴから銘柄を検索します。
//
// エンドポイント: POST /symbols/logo
// Content-Type: multipart/form-data
// フィールド: image（画像ファイル、最大10MB）
func (h *SymbolHandler) SearchByLogo(c *gin.Context) {
	file, err := c.FormFile("image")
	if err != nil {
		slog.Warn("画像ファイルの取得に失敗", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, commondto.ErrorResponse{Error: "画像ファイルが必要です"})
		return
	}
	if file.Size > usecase.MaxImageSize {
		c.JSON(http.StatusRequestEntityTooLarge, commondto.ErrorResponse{Error: "画像サイズが大きすぎます"})
		return
	}

	f, err := file.Open()
	if err != nil {
		slog.Error("画像ファイルのオープンに失敗", "error", err)
		c.JSON(http.StatusInternalServerError, commondto.ErrorResponse{Error: "画像の読み込みに失敗しました"})
		return
	}
	defer func() {
		if err := f.Close(); err != nil {
			slog.Warn("画像ファイルのクローズに失敗", "error", err)
		}
	}()

	imageData, err := io.ReadAll(io.LimitReader(f, usecase.MaxImageSize+1))
	if err != nil {
		slog.Error("画像データの読み取りに失敗", "error", err)
		c.JSON(http.StatusInternalServerError, commondto.ErrorResponse{Error: "画像の読み込みに失敗しました"})
		return
	}

	matches, err := h.uc.SearchByLogo(c.Request.Context(), imageData)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, dto.NewLogoMatchResponses(matches))
	case errors.Is(err, usecase.ErrLogoSearchDisabled):
		c.JSON(http.StatusServiceUnavailable, commondto.ErrorResponse{Error: "ロゴ検索は利用できません"})
	case errors.Is(err, usecase.ErrEmptyImage):
		c.JSON(http.StatusBadRequest, commondto.ErrorResponse{Error: "画像ファイルが必要です"})
	case errors.Is(err, usecase.ErrImageTooLarge):
		c.JSON(http.StatusRequestEntityTooLarge, commondto.ErrorResponse{Error: "画像サイズが大きすぎます"})
	default:
		slog.Error("ロゴ検索に失敗", "error", err)
		c.JSON(http.StatusBadGateway, commondto.ErrorResponse{Error: "ロゴ検出に失敗しました"})
	}
}
