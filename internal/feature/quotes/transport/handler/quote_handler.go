// Package handler はquotesフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"watchlist_backend/internal/feature/quotes/domain"
	"watchlist_backend/internal/feature/quotes/domain/entity"
	"watchlist_backend/internal/feature/quotes/transport/http/dto"
	commondto "watchlist_backend/internal/platform/http/dto"
)

// QuoteUsecase は株価取得のユースケースインターフェースを定義します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type QuoteUsecase interface {
	GetQuote(ctx context.Context, symbol string) (entity.Quote, error)
}

// QuoteHandler は株価のHTTPリクエストを処理します。
type QuoteHandler struct {
	uc QuoteUsecase
}

// NewQuoteHandler は指定されたusecaseでQuoteHandlerの新しいインスタンスを生成します。
func NewQuoteHandler(uc QuoteUsecase) *QuoteHandler {
	return &QuoteHandler{uc: uc}
}

// GetQuote は銘柄コードを受け取り、キャッシュ優先で株価をJSONで返します。
//
// エンドポイント例:
// GET /quotes/:symbol
func (h *QuoteHandler) GetQuote(c *gin.Context) {
	q, err := h.uc.GetQuote(c.Request.Context(), c.Param("symbol"))
	if err != nil {
		status := statusForError(err)
		msg := err.Error()
		if status >= http.StatusInternalServerError {
			slog.Warn("quote lookup failed", "symbol", c.Param("symbol"), "error", err)
			// 上流のエラー詳細はクライアントに返さない
			msg = messageForStatus(status)
		}
		c.JSON(status, commondto.ErrorResponse{Error: msg})
		return
	}
	c.JSON(http.StatusOK, dto.NewQuoteResponse(q))
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidSymbol):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrAllProvidersFailed):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, domain.ErrTimedOut):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func messageForStatus(status int) string {
	switch status {
	case http.StatusBadGateway:
		return "quote unavailable from all providers"
	case http.StatusGatewayTimeout:
		return "quote lookup timed out"
	default:
		return "internal server error"
	}
}
