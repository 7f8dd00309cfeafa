package usecase

import (
	"context"

	"watchlist_backend/internal/feature/watchlist/domain"
	"watchlist_backend/internal/feature/watchlist/domain/entity"
)

// Store はウォッチリストの永続化レイヤーを抽象化します。
// セッション用（メモリ/Redis）とユーザー用（RDB）の実装が同じ契約を満たします。
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type Store interface {
	// List returns the owner's entries ordered by sort order, then added time.
	List(ctx context.Context, owner entity.Identity) ([]entity.Entry, error)

	// Add inserts entry for owner after checking entity.CheckAdd atomically.
	// It returns domain.ErrDuplicateSymbol or domain.ErrCapacityExceeded.
	Add(ctx context.Context, owner entity.Identity, entry entity.Entry, limit int) (entity.Entry, error)

	// Remove deletes the owner's entry for symbol, or returns domain.ErrNotFound.
	Remove(ctx context.Context, owner entity.Identity, symbol string) error

	// Clear deletes every entry of owner.
	Clear(ctx context.Context, owner entity.Identity) error

	// Reorder renumbers the owner's entries as described by entity.ApplyOrder.
	Reorder(ctx context.Context, owner entity.Identity, symbols []string) ([]entity.Entry, error)

	// Update applies patch to the owner's entry for symbol, or returns domain.ErrNotFound.
	Update(ctx context.Context, owner entity.Identity, symbol string, patch entity.EntryPatch) (entity.Entry, error)
}

// ItemStore is a Store whose entries have stable ids, used for signed-in users.
// Lookups by id are scoped to owner: another owner's id yields domain.ErrNotFound.
type ItemStore interface {
	Store
	FindByID(ctx context.Context, owner entity.Identity, id uint) (entity.Entry, error)
	UpdateByID(ctx context.Context, owner entity.Identity, id uint, patch entity.EntryPatch) (entity.Entry, error)
}

// Stores selects the store variant for an identity.
type Stores struct {
	User    ItemStore
	Session Store
}

// For returns the user store for a signed-in identity and the session store for an anonymous one.
func (s Stores) For(id entity.Identity) (Store, error) {
	switch {
	case id.IsUser():
		return s.User, nil
	case id.IsSession():
		return s.Session, nil
	default:
		return nil, domain.ErrInvalidIdentity
	}
}
