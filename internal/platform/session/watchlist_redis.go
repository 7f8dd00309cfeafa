// Package session stores anonymous-session watchlists in Redis.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"watchlist_backend/internal/feature/watchlist/domain"
	"watchlist_backend/internal/feature/watchlist/domain/entity"
	"watchlist_backend/internal/feature/watchlist/usecase"
)

const (
	// DefaultPrefix is the key prefix for session watchlists.
	DefaultPrefix = "watchlist:session"
	// DefaultTTL is how long an untouched session watchlist is kept. Every read and write extends it.
	DefaultTTL = 30 * 24 * time.Hour

	maxTxRetries = 5
)

// errTooMuchContention is returned when optimistic transactions keep conflicting.
var errTooMuchContention = errors.New("session watchlist: too many concurrent writers")

// WatchlistRedis implements usecase.Store for anonymous sessions.
// A session's whole watchlist is one JSON value; writes use WATCH/MULTI so concurrent
// requests of the same session cannot exceed capacity or insert duplicates.
type WatchlistRedis struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	now    func() time.Time
}

var _ usecase.Store = (*WatchlistRedis)(nil)

// NewWatchlistRedis creates a new WatchlistRedis instance.
// An empty prefix or non-positive ttl selects the defaults.
func NewWatchlistRedis(client *redis.Client, prefix string, ttl time.Duration) *WatchlistRedis {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &WatchlistRedis{client: client, prefix: prefix, ttl: ttl, now: time.Now}
}

// key returns the Redis key for a session.
func (r *WatchlistRedis) key(sessionID string) string {
	return fmt.Sprintf("%s:%s", r.prefix, sessionID)
}

// entryRecord is the stored form of one entry.
type entryRecord struct {
	ID            uint             `json:"id"`
	Symbol        string           `json:"symbol"`
	AddedAt       time.Time        `json:"added_at"`
	Alias         string           `json:"alias,omitempty"`
	TargetPrice   *decimal.Decimal `json:"target_price,omitempty"`
	StopLossPrice *decimal.Decimal `json:"stop_loss_price,omitempty"`
	AlertEnabled  bool             `json:"alert_enabled,omitempty"`
	SortOrder     int              `json:"sort_order"`
}

func encode(list []entity.Entry) ([]byte, error) {
	recs := make([]entryRecord, len(list))
	for i, e := range list {
		recs[i] = entryRecord{
			ID:            e.ID,
			Symbol:        e.Symbol,
			AddedAt:       e.AddedAt.UTC(),
			Alias:         e.Alias,
			TargetPrice:   e.TargetPrice,
			StopLossPrice: e.StopLossPrice,
			AlertEnabled:  e.AlertEnabled,
			SortOrder:     e.SortOrder,
		}
	}
	return json.Marshal(recs)
}

func decode(sessionID string, data []byte) ([]entity.Entry, error) {
	var recs []entryRecord
	if err := json.Unmarshal(data, &recs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session watchlist: %w", err)
	}
	out := make([]entity.Entry, len(recs))
	for i, rec := range recs {
		out[i] = entity.Entry{
			ID:            rec.ID,
			SessionID:     sessionID,
			Symbol:        rec.Symbol,
			AddedAt:       rec.AddedAt.UTC(),
			Alias:         rec.Alias,
			TargetPrice:   rec.TargetPrice,
			StopLossPrice: rec.StopLossPrice,
			AlertEnabled:  rec.AlertEnabled,
			SortOrder:     rec.SortOrder,
		}
	}
	entity.SortEntries(out)
	return out, nil
}

// List returns the session's entries and extends the session's TTL.
func (r *WatchlistRedis) List(ctx context.Context, owner entity.Identity) ([]entity.Entry, error) {
	if owner.SessionID == "" {
		return nil, domain.ErrInvalidIdentity
	}
	data, err := r.client.GetEx(ctx, r.key(owner.SessionID), r.ttl).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []entity.Entry{}, nil
		}
		return nil, err
	}
	return decode(owner.SessionID, data)
}

// Add appends an entry after checking duplicates and capacity atomically.
func (r *WatchlistRedis) Add(ctx context.Context, owner entity.Identity, e entity.Entry, limit int) (entity.Entry, error) {
	if owner.SessionID == "" {
		return entity.Entry{}, domain.ErrInvalidIdentity
	}
	e.SessionID, e.UserID = owner.SessionID, 0

	var added entity.Entry
	err := r.update(ctx, owner.SessionID, func(list []entity.Entry) ([]entity.Entry, error) {
		out, a, err := entity.AppendEntry(list, e, limit, r.now())
		if err != nil {
			return nil, err
		}
		added = a
		return out, nil
	})
	if err != nil {
		return entity.Entry{}, err
	}
	return added, nil
}

// Remove deletes the session's entry for symbol.
func (r *WatchlistRedis) Remove(ctx context.Context, owner entity.Identity, symbol string) error {
	if owner.SessionID == "" {
		return domain.ErrInvalidIdentity
	}
	return r.update(ctx, owner.SessionID, func(list []entity.Entry) ([]entity.Entry, error) {
		return entity.RemoveEntry(list, symbol)
	})
}

// Clear deletes the session's watchlist.
func (r *WatchlistRedis) Clear(ctx context.Context, owner entity.Identity) error {
	if owner.SessionID == "" {
		return domain.ErrInvalidIdentity
	}
	return r.client.Del(ctx, r.key(owner.SessionID)).Err()
}

// Reorder renumbers the session's entries.
func (r *WatchlistRedis) Reorder(ctx context.Context, owner entity.Identity, symbols []string) ([]entity.Entry, error) {
	if owner.SessionID == "" {
		return nil, domain.ErrInvalidIdentity
	}
	var out []entity.Entry
	err := r.update(ctx, owner.SessionID, func(list []entity.Entry) ([]entity.Entry, error) {
		ordered, err := entity.ApplyOrder(list, symbols)
		if err != nil {
			return nil, err
		}
		out = ordered
		return ordered, nil
	})
	return out, err
}

// Update applies patch to the session's entry for symbol.
func (r *WatchlistRedis) Update(ctx context.Context, owner entity.Identity, symbol string, p entity.EntryPatch) (entity.Entry, error) {
	if owner.SessionID == "" {
		return entity.Entry{}, domain.ErrInvalidIdentity
	}
	var updated entity.Entry
	err := r.update(ctx, owner.SessionID, func(list []entity.Entry) ([]entity.Entry, error) {
		out, e, err := entity.PatchEntry(list, symbol, p)
		if err != nil {
			return nil, err
		}
		updated = e
		return out, nil
	})
	return updated, err
}

// update runs fn against the current list inside an optimistic transaction and stores its result.
// fn may run more than once when another writer touches the key concurrently.
func (r *WatchlistRedis) update(ctx context.Context, sessionID string, fn func([]entity.Entry) ([]entity.Entry, error)) error {
	key := r.key(sessionID)
	txf := func(tx *redis.Tx) error {
		var list []entity.Entry
		data, err := tx.Get(ctx, key).Bytes()
		switch {
		case errors.Is(err, redis.Nil):
		case err != nil:
			return err
		default:
			if list, err = decode(sessionID, data); err != nil {
				return err
			}
		}

		out, err := fn(list)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			if len(out) == 0 {
				pipe.Del(ctx, key)
				return nil
			}
			payload, err := encode(out)
			if err != nil {
				return err
			}
			pipe.Set(ctx, key, payload, r.ttl)
			return nil
		})
		return err
	}

	for i := 0; i < maxTxRetries; i++ {
		err := r.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return errTooMuchContention
}
