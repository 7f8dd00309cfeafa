// Package handler はrecommendationフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	quotedomain "watchlist_backend/internal/feature/quotes/domain"
	"watchlist_backend/internal/feature/recommendation/domain/entity"
	"watchlist_backend/internal/feature/recommendation/transport/http/dto"
	"watchlist_backend/internal/feature/recommendation/usecase"
	commondto "watchlist_backend/internal/platform/http/dto"
)

// AnalysisUsecase は銘柄解説のユースケースインターフェースを定義します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type AnalysisUsecase interface {
	Analyze(ctx context.Context, symbol string) (*entity.Analysis, error)
}

// AnalysisHandler は銘柄解説のHTTPリクエストを処理します。
type AnalysisHandler struct {
	uc AnalysisUsecase
}

// NewAnalysisHandler はAnalysisHandlerの新しいインスタンスを生成します。
func NewAnalysisHandler(uc AnalysisUsecase) *AnalysisHandler {
	return &AnalysisHandler{uc: uc}
}

// Analyze は銘柄のAI解説を生成します。
//
// エンドポイント: GET /recommendations/:symbol/analysis
func (h *AnalysisHandler) Analyze(c *gin.Context) {
	symbol := c.Param("symbol")
	a, err := h.uc.Analyze(c.Request.Context(), symbol)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrAnalyzerDisabled):
			c.JSON(http.StatusServiceUnavailable, commondto.ErrorResponse{Error: err.Error()})
		case errors.Is(err, quotedomain.ErrInvalidSymbol), errors.Is(err, usecase.ErrInvalidCompanyName):
			c.JSON(http.StatusBadRequest, commondto.ErrorResponse{Error: err.Error()})
		default:
			slog.Error("銘柄解説の生成に失敗", "error", err, "symbol", symbol)
			c.JSON(http.StatusBadGateway, commondto.ErrorResponse{Error: "銘柄解説の生成に失敗しました"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.NewAnalysisResponse(a))
}
