// Package handler はauthフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"watchlist_backend/internal/feature/auth/transport/http/dto"
	"watchlist_backend/internal/feature/auth/usecase"
	commondto "watchlist_backend/internal/platform/http/dto"
	jwtmw "watchlist_backend/internal/platform/jwt"
)

// AuthUsecase は認証操作のユースケースを定義します。
// Goの慣例に従い、インターフェースはプロバイダー（usecase）ではなくコンシューマー（handler）が定義します。
type AuthUsecase interface {
	// Signup は指定されたメールアドレスとパスワードで新規ユーザーを登録します。
	Signup(ctx context.Context, email, password string) error
	// Login はユーザーを認証し、成功時にJWTトークンを返します。
	// sessionID のウォッチリストはユーザーへ移行されます。
	Login(ctx context.Context, email, password, sessionID string) (string, error)
}

// AuthHandler は認証操作のHTTPリクエストを処理します。
type AuthHandler struct {
	auth AuthUsecase
}

// NewAuthHandler はAuthHandlerの新しいインスタンスを生成します。
func NewAuthHandler(auth AuthUsecase) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Signup はユーザー登録APIエンドポイントを処理します。
// - バリデーションエラー・短いパスワードは400
// - メール重複は409（ユーザー列挙を防ぐため詳細は返さない）
// - 成功時は201
func (h *AuthHandler) Signup(c *gin.Context) {
	var req dto.SignupReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("signup validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, commondto.ErrorResponse{Error: "invalid request"})
		return
	}
	if err := h.auth.Signup(c.Request.Context(), req.Email, req.Password); err != nil {
		switch {
		case errors.Is(err, usecase.ErrWeakPassword):
			c.JSON(http.StatusBadRequest, commondto.ErrorResponse{Error: "invalid request"})
		case errors.Is(err, usecase.ErrEmailAlreadyExists):
			slog.Warn("signup failed", "error", err, "remote_addr", c.ClientIP())
			c.JSON(http.StatusConflict, commondto.ErrorResponse{Error: "signup failed"})
		default:
			slog.Error("signup failed", "error", err, "remote_addr", c.ClientIP())
			c.JSON(http.StatusInternalServerError, commondto.ErrorResponse{Error: "internal server error"})
		}
		return
	}
	slog.Info("user signup successful", "remote_addr", c.ClientIP())
	c.JSON(http.StatusCreated, commondto.MessageResponse{Message: "ok"})
}

// Login はユーザーログインAPIエンドポイントを処理します。
// X-Session-ID ヘッダーがあれば、そのセッションのウォッチリストをユーザーへ移行します。
// - バリデーションエラー時は400
// - 認証失敗時は401
// - 認証成功時はJWTトークン付きで200
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("login validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, commondto.ErrorResponse{Error: "invalid request"})
		return
	}
	token, err := h.auth.Login(c.Request.Context(), req.Email, req.Password, jwtmw.HeaderSession(c))
	if err != nil {
		// ユーザー列挙攻撃を防止するため、実際のエラーを公開しない
		slog.Warn("login failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusUnauthorized, commondto.ErrorResponse{Error: "invalid email or password"})
		return
	}
	slog.Info("user login successful", "remote_addr", c.ClientIP())
	c.JSON(http.StatusOK, dto.TokenRes{Token: token})
}
