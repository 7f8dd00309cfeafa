// Package adapters はwatchlistフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"sync"
	"time"

	"watchlist_backend/internal/feature/watchlist/domain"
	"watchlist_backend/internal/feature/watchlist/domain/entity"
	"watchlist_backend/internal/feature/watchlist/usecase"
)

// sessionMemory はセッション用ウォッチリストをプロセス内メモリに保持するStore実装です。
// Redisが利用できない場合のフォールバックとして使用します。再起動で内容は失われます。
type sessionMemory struct {
	mu    sync.Mutex
	lists map[string][]entity.Entry
	now   func() time.Time
}

var _ usecase.Store = (*sessionMemory)(nil)

// NewSessionMemory creates an empty in-memory session store.
func NewSessionMemory() *sessionMemory {
	return &sessionMemory{lists: make(map[string][]entity.Entry), now: time.Now}
}

func (s *sessionMemory) List(ctx context.Context, owner entity.Identity) ([]entity.Entry, error) {
	if owner.SessionID == "" {
		return nil, domain.ErrInvalidIdentity
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneEntries(s.lists[owner.SessionID]), nil
}

func (s *sessionMemory) Add(ctx context.Context, owner entity.Identity, e entity.Entry, limit int) (entity.Entry, error) {
	if owner.SessionID == "" {
		return entity.Entry{}, domain.ErrInvalidIdentity
	}
	e.SessionID, e.UserID = owner.SessionID, 0

	s.mu.Lock()
	defer s.mu.Unlock()
	out, added, err := entity.AppendEntry(s.lists[owner.SessionID], e, limit, s.now())
	if err != nil {
		return entity.Entry{}, err
	}
	s.lists[owner.SessionID] = out
	return added, nil
}

func (s *sessionMemory) Remove(ctx context.Context, owner entity.Identity, symbol string) error {
	if owner.SessionID == "" {
		return domain.ErrInvalidIdentity
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out, err := entity.RemoveEntry(s.lists[owner.SessionID], symbol)
	if err != nil {
		return err
	}
	s.store(owner.SessionID, out)
	return nil
}

func (s *sessionMemory) Clear(ctx context.Context, owner entity.Identity) error {
	if owner.SessionID == "" {
		return domain.ErrInvalidIdentity
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.lists, owner.SessionID)
	return nil
}

func (s *sessionMemory) Reorder(ctx context.Context, owner entity.Identity, symbols []string) ([]entity.Entry, error) {
	if owner.SessionID == "" {
		return nil, domain.ErrInvalidIdentity
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out, err := entity.ApplyOrder(s.lists[owner.SessionID], symbols)
	if err != nil {
		return nil, err
	}
	s.store(owner.SessionID, out)
	return cloneEntries(out), nil
}

func (s *sessionMemory) Update(ctx context.Context, owner entity.Identity, symbol string, p entity.EntryPatch) (entity.Entry, error) {
	if owner.SessionID == "" {
		return entity.Entry{}, domain.ErrInvalidIdentity
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out, e, err := entity.PatchEntry(s.lists[owner.SessionID], symbol, p)
	if err != nil {
		return entity.Entry{}, err
	}
	s.store(owner.SessionID, out)
	return e, nil
}

// store must be called with mu held.
func (s *sessionMemory) store(sessionID string, list []entity.Entry) {
	if len(list) == 0 {
		delete(s.lists, sessionID)
		return
	}
	s.lists[sessionID] = list
}

func cloneEntries(in []entity.Entry) []entity.Entry {
	out := make([]entity.Entry, len(in))
	copy(out, in)
	return out
}
