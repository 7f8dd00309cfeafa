package usecase_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	quotedomain "watchlist_backend/internal/feature/quotes/domain"
	quoteentity "watchlist_backend/internal/feature/quotes/domain/entity"
	quoteusecase "watchlist_backend/internal/feature/quotes/usecase"
	"watchlist_backend/internal/feature/watchlist/domain"
	"watchlist_backend/internal/feature/watchlist/domain/entity"
	"watchlist_backend/internal/feature/watchlist/usecase"
)

var errStoreDown = errors.New("store down")

// memStore is a simple Store keyed by Identity.String used by the usecase tests.
type memStore struct {
	mu      sync.Mutex
	lists   map[string][]entity.Entry
	addErr  func(symbol string) error
	listErr error
	clears  int
}

var _ usecase.ItemStore = (*memStore)(nil)

func newMemStore() *memStore {
	return &memStore{lists: make(map[string][]entity.Entry)}
}

func (s *memStore) seed(owner entity.Identity, es ...entity.Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range es {
		out, _, _ := entity.AppendEntry(s.lists[owner.String()], e, 100, time.Now())
		s.lists[owner.String()] = out
	}
}

func (s *memStore) List(ctx context.Context, owner entity.Identity) ([]entity.Entry, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]entity.Entry(nil), s.lists[owner.String()]...), nil
}

func (s *memStore) Add(ctx context.Context, owner entity.Identity, e entity.Entry, limit int) (entity.Entry, error) {
	if s.addErr != nil {
		if err := s.addErr(e.Symbol); err != nil {
			return entity.Entry{}, err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out, added, err := entity.AppendEntry(s.lists[owner.String()], e, limit, time.Now())
	if err != nil {
		return entity.Entry{}, err
	}
	s.lists[owner.String()] = out
	return added, nil
}

func (s *memStore) Remove(ctx context.Context, owner entity.Identity, symbol string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	out, err := entity.RemoveEntry(s.lists[owner.String()], symbol)
	if err != nil {
		return err
	}
	s.lists[owner.String()] = out
	return nil
}

func (s *memStore) Clear(ctx context.Context, owner entity.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clears++
	delete(s.lists, owner.String())
	return nil
}

func (s *memStore) Reorder(ctx context.Context, owner entity.Identity, symbols []string) ([]entity.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out, err := entity.ApplyOrder(s.lists[owner.String()], symbols)
	if err != nil {
		return nil, err
	}
	s.lists[owner.String()] = out
	return out, nil
}

func (s *memStore) Update(ctx context.Context, owner entity.Identity, symbol string, p entity.EntryPatch) (entity.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out, e, err := entity.PatchEntry(s.lists[owner.String()], symbol, p)
	if err != nil {
		return entity.Entry{}, err
	}
	s.lists[owner.String()] = out
	return e, nil
}

func (s *memStore) FindByID(ctx context.Context, owner entity.Identity, id uint) (entity.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.lists[owner.String()] {
		if e.ID == id {
			return e, nil
		}
	}
	return entity.Entry{}, domain.ErrNotFound
}

func (s *memStore) UpdateByID(ctx context.Context, owner entity.Identity, id uint, p entity.EntryPatch) (entity.Entry, error) {
	e, err := s.FindByID(ctx, owner, id)
	if err != nil {
		return entity.Entry{}, err
	}
	return s.Update(ctx, owner, e.Symbol, p)
}

func (s *memStore) symbols(owner entity.Identity) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for _, e := range s.lists[owner.String()] {
		out = append(out, e.Symbol)
	}
	return out
}

// stubResolver resolves symbols from a fixed table. Unknown symbols fail with all providers failed.
type stubResolver struct {
	quotes map[string]quoteentity.Quote
	errs   map[string]error
	calls  [][]string
}

func (r *stubResolver) GetQuotes(ctx context.Context, symbols []string) []quoteusecase.Lookup {
	r.calls = append(r.calls, append([]string(nil), symbols...))
	out := make([]quoteusecase.Lookup, len(symbols))
	for i, s := range symbols {
		sym := quoteentity.NormalizeSymbol(s)
		out[i].Symbol = sym
		if err, ok := r.errs[sym]; ok {
			out[i].Err = err
			continue
		}
		if q, ok := r.quotes[sym]; ok {
			q := q
			out[i].Quote = &q
			continue
		}
		out[i].Err = &quotedomain.AggregateFetchError{Symbol: sym}
	}
	return out
}

func quote(symbol, price, change string, at time.Time) quoteentity.Quote {
	p := decimal.RequireFromString(price)
	c := decimal.RequireFromString(change)
	return quoteentity.NewQuote(symbol, p, c, quoteentity.PercentFromChange(p, c), symbol+" Inc.", at, "test")
}

// mockAlertRepo is an in-memory AlertRepository.
type mockAlertRepo struct {
	mu          sync.Mutex
	alerts      []entity.PriceAlert
	listErr     error
	markErr     error
	reassignErr error
	marked      []uint
}

func (r *mockAlertRepo) Create(ctx context.Context, a *entity.PriceAlert) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a.ID = uint(len(r.alerts) + 1)
	r.alerts = append(r.alerts, *a)
	return nil
}

func (r *mockAlertRepo) ListByOwner(ctx context.Context, owner entity.Identity) ([]entity.PriceAlert, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.PriceAlert
	for _, a := range r.alerts {
		if (owner.IsUser() && a.UserID == owner.UserID) || (owner.IsSession() && a.SessionID == owner.SessionID) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *mockAlertRepo) Delete(ctx context.Context, owner entity.Identity, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, a := range r.alerts {
		if a.ID == id && a.Owner() == owner {
			r.alerts = append(r.alerts[:i], r.alerts[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *mockAlertRepo) MarkTriggered(ctx context.Context, ids []uint, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.marked = append(r.marked, ids...)
	return r.markErr
}

func (r *mockAlertRepo) Reassign(ctx context.Context, sessionID string, userID uint) (int64, error) {
	if r.reassignErr != nil {
		return 0, r.reassignErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for i := range r.alerts {
		if r.alerts[i].SessionID == sessionID {
			r.alerts[i].SessionID = ""
			r.alerts[i].UserID = userID
			n++
		}
	}
	return n, nil
}

type recordingMetrics struct {
	mu       sync.Mutex
	outcomes []string
}

func (m *recordingMetrics) ObserveMigration(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outcomes = append(m.outcomes, outcome)
}
