package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	authhandler "watchlist_backend/internal/feature/auth/transport/handler"
	quotehandler "watchlist_backend/internal/feature/quotes/transport/handler"
	rechandler "watchlist_backend/internal/feature/recommendation/transport/handler"
	symbolhandler "watchlist_backend/internal/feature/symbolsearch/transport/handler"
	watchlisthandler "watchlist_backend/internal/feature/watchlist/transport/handler"
	platformhandler "watchlist_backend/internal/platform/http/handler"
	jwtmw "watchlist_backend/internal/platform/jwt"
)

// Handlers はルーターに登録するハンドラーの集合です。
// Metrics が nil の場合 /metrics は登録されません。
type Handlers struct {
	Health         *platformhandler.HealthHandler
	Auth           *authhandler.AuthHandler
	Quote          *quotehandler.QuoteHandler
	Watchlist      *watchlisthandler.WatchlistHandler
	Alert          *watchlisthandler.AlertHandler
	Symbol         *symbolhandler.SymbolHandler
	Analysis       *rechandler.AnalysisHandler
	Metrics        http.Handler
	AllowedOrigins []string
	RequestTimeout time.Duration
}

func NewRouter(h Handlers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(newCORS(h.AllowedOrigins))

	// 認証不要
	// 導通確認用
	r.GET("/", h.Health.Root)
	r.GET("/healthz", h.Health.Health)
	r.HEAD("/healthz", h.Health.Health)
	r.OPTIONS("/healthz", h.Health.Health)
	if h.Metrics != nil {
		r.GET("/metrics", gin.WrapH(h.Metrics))
	}
	// 新規ユーザー登録
	r.POST("/signup", h.Auth.Signup)
	// ログイン（JWT 発行）。X-Session-ID があればウォッチリストを移行します
	r.POST("/login", h.Auth.Login)
	r.GET("/symbols", h.Symbol.Search)
	r.POST("/symbols/logo", h.Symbol.SearchByLogo)

	// 匿名セッションとログインユーザーの両方を受け付けるルート
	// jwtmw.Identify() が利用者を識別し、X-Session-ID を払い出します
	api := r.Group("/")
	api.Use(jwtmw.Identify(), requestTimeout(h.RequestTimeout))
	{
		api.GET("/quotes/:symbol", h.Quote.GetQuote)
		api.GET("/recommendations/:symbol/analysis", h.Analysis.Analyze)

		api.GET("/watchlist", h.Watchlist.Get)
		api.POST("/watchlist", h.Watchlist.Add)
		api.DELETE("/watchlist", h.Watchlist.Clear)
		api.PUT("/watchlist/order", h.Watchlist.Reorder)
		api.DELETE("/watchlist/:symbol", h.Watchlist.Remove)
		api.PATCH("/watchlist/:symbol", h.Watchlist.Update)

		api.GET("/alerts", h.Alert.List)
		api.POST("/alerts", h.Alert.Create)
		api.DELETE("/alerts/:id", h.Alert.Delete)
	}

	// 認証必須のルート
	// jwtmw.AuthRequired() ミドルウェアを適用
	// → リクエストヘッダーに JWT が必要になる
	auth := api.Group("/")
	auth.Use(jwtmw.AuthRequired())
	{
		auth.PATCH("/watchlist/items/:id", h.Watchlist.UpdateItem)
	}

	return r
}

// newCORS は許可オリジンが未設定なら全オリジンを許可します。
func newCORS(origins []string) gin.HandlerFunc {
	cfg := cors.DefaultConfig()
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	cfg.AddAllowHeaders("Authorization", jwtmw.HeaderSessionID)
	cfg.AddExposeHeaders(jwtmw.HeaderSessionID)
	return cors.New(cfg)
}

// requestTimeout はリクエストのコンテキストに期限を設定します。d が0以下なら何もしません。
func requestTimeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if d <= 0 {
			c.Next()
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
