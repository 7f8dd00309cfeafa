package di

import (
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"watchlist_backend/internal/feature/watchlist/adapters"
	"watchlist_backend/internal/feature/watchlist/usecase"
	"watchlist_backend/internal/platform/session"
)

// StoreRedis selects the Redis session store.
const StoreRedis = "redis"

// NewSessionStore creates the anonymous-session watchlist store.
// If Redis is requested and available, it returns a Redis-backed implementation.
// Otherwise, it falls back to process memory.
func NewSessionStore(kind string, rdb *redis.Client, ttl time.Duration) usecase.Store {
	if kind == StoreRedis && rdb != nil {
		return session.NewWatchlistRedis(rdb, session.DefaultPrefix, ttl)
	}
	if kind == StoreRedis {
		slog.Warn("redis unavailable, session watchlists are kept in memory")
	}
	return adapters.NewSessionMemory()
}
