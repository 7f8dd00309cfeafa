package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"watchlist_backend/internal/feature/watchlist/domain/entity"
	"watchlist_backend/internal/feature/watchlist/transport/http/dto"
	"watchlist_backend/internal/feature/watchlist/usecase"
	commondto "watchlist_backend/internal/platform/http/dto"
)

// AlertUsecase は価格アラートのユースケースインターフェースを定義します。
type AlertUsecase interface {
	Create(ctx context.Context, owner entity.Identity, symbol string, typ entity.AlertType, target decimal.Decimal, message string) (entity.PriceAlert, error)
	List(ctx context.Context, owner entity.Identity) ([]entity.PriceAlert, error)
	Delete(ctx context.Context, owner entity.Identity, id uint) error
}

var _ AlertUsecase = (*usecase.AlertUsecase)(nil)

// AlertHandler は価格アラートのHTTPリクエストを処理します。
type AlertHandler struct {
	uc AlertUsecase
}

// NewAlertHandler は新しい AlertHandler を作成します。
func NewAlertHandler(uc AlertUsecase) *AlertHandler {
	return &AlertHandler{uc: uc}
}

// List は利用者のアラート一覧を返します。
//
// エンドポイント: GET /alerts
func (h *AlertHandler) List(c *gin.Context) {
	alerts, err := h.uc.List(c.Request.Context(), identityFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewAlertResponses(alerts))
}

// Create はアラートを作成します。
//
// エンドポイント: POST /alerts
func (h *AlertHandler) Create(c *gin.Context) {
	var req dto.CreateAlertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, commondto.ErrorResponse{Error: "invalid request body"})
		return
	}
	target, err := decimal.NewFromString(req.Target)
	if err != nil {
		c.JSON(http.StatusBadRequest, commondto.ErrorResponse{Error: dto.ErrInvalidPrice.Error()})
		return
	}

	a, err := h.uc.Create(c.Request.Context(), identityFrom(c), req.Symbol, entity.AlertType(req.Type), target, req.Message)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewAlertResponse(a))
}

// Delete はアラートを削除します。
//
// エンドポイント: DELETE /alerts/:id
func (h *AlertHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, commondto.ErrorResponse{Error: "invalid id"})
		return
	}
	if err := h.uc.Delete(c.Request.Context(), identityFrom(c), uint(id)); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
