// Package handler はプラットフォームレベルのエンドポイント用HTTPハンドラーを提供します。
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// checkTimeout は依存先1件あたりの確認の待ち時間です。
const checkTimeout = 2 * time.Second

// Check は依存先の疎通確認です。
type Check struct {
	Name string
	Ping func(ctx context.Context) error
}

// HealthResponse は /healthz のレスポンスです。
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// HealthHandler はサービスと依存先（DB、Redis）の状態を返します。
type HealthHandler struct {
	service string
	checks  []Check
}

// NewHealthHandler は新しい HealthHandler を作成します。
func NewHealthHandler(service string, checks ...Check) *HealthHandler {
	return &HealthHandler{service: service, checks: checks}
}

// Health はサービスヘルスチェック用の /healthz エンドポイントを処理します。
// HTTPメソッドに応じて適切にレスポンスし、キャッシュを防止します。
// GET では依存先を確認し、1件でも失敗した場合は503を返します。
func (h *HealthHandler) Health(c *gin.Context) {
	// 明示的にキャッシュを防止
	c.Header("Cache-Control", "no-store")

	switch c.Request.Method {
	case http.MethodHead:
		c.Status(http.StatusOK)
		return
	case http.MethodOptions:
		c.Status(http.StatusNoContent)
		return
	}

	resp := HealthResponse{Status: "ok"}
	status := http.StatusOK
	if len(h.checks) > 0 {
		resp.Checks = make(map[string]string, len(h.checks))
	}
	for _, chk := range h.checks {
		ctx, cancel := context.WithTimeout(c.Request.Context(), checkTimeout)
		err := chk.Ping(ctx)
		cancel()
		if err != nil {
			resp.Checks[chk.Name] = "unavailable"
			resp.Status = "degraded"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[chk.Name] = "ok"
	}
	c.JSON(status, resp)
}

// Root は GET / に軽量な応答を返します。
func (h *HealthHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"service": h.service, "status": "ok"})
}
