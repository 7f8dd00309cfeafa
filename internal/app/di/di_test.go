package di

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"watchlist_backend/internal/platform/cache"
	"watchlist_backend/internal/platform/session"
)

// TestNewQuoteProviders はAPIキーのないプロバイダーを除き、指定順で生成することを検証します。
func TestNewQuoteProviders(t *testing.T) {
	t.Setenv("TWELVE_DATA_API_KEY", "")
	t.Setenv("FINNHUB_API_KEY", "key")

	providers := NewQuoteProviders([]string{"yahoo", "twelvedata", "finnhub", "bloomberg"})

	names := make([]string, 0, len(providers))
	for _, p := range providers {
		names = append(names, p.Name())
	}
	assert.Equal(t, []string{"yahoo", "finnhub"}, names)
}

func TestNewSessionStore(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	assert.IsType(t, &session.WatchlistRedis{}, NewSessionStore(StoreRedis, rdb, time.Hour))

	// Redis が使えない場合と memory 指定はどちらもメモリ実装です
	_, isRedis := NewSessionStore(StoreRedis, nil, time.Hour).(*session.WatchlistRedis)
	assert.False(t, isRedis)
	_, isRedis = NewSessionStore("memory", rdb, time.Hour).(*session.WatchlistRedis)
	assert.False(t, isRedis)
}

func TestNewQuoteCache(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	_, wrapped := NewQuoteCache(db, nil, time.Minute).(*cache.CachingQuoteCache)
	assert.False(t, wrapped)

	rdb := redis.NewClient(&redis.Options{Addr: miniredis.RunT(t).Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	_, wrapped = NewQuoteCache(db, rdb, time.Minute).(*cache.CachingQuoteCache)
	assert.True(t, wrapped)
}
