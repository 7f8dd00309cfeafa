package entity

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"watchlist_backend/internal/feature/watchlist/domain"
)

// DefaultCapacity is the maximum number of entries per watchlist when none is configured.
const DefaultCapacity = 20

// Entry is one symbol on an owner's watchlist.
// Exactly one of SessionID and UserID is set. (owner, Symbol) is unique.
type Entry struct {
	ID            uint
	SessionID     string
	UserID        uint
	Symbol        string
	AddedAt       time.Time
	Alias         string
	TargetPrice   *decimal.Decimal
	StopLossPrice *decimal.Decimal
	AlertEnabled  bool
	SortOrder     int
}

// Owner returns the identity that owns the entry.
func (e Entry) Owner() Identity {
	return Identity{UserID: e.UserID, SessionID: e.SessionID}
}

// EntryPatch is a partial update of an entry's user-editable fields.
// Nil fields are left unchanged. The Clear flags remove a price.
type EntryPatch struct {
	Alias            *string
	TargetPrice      *decimal.Decimal
	ClearTargetPrice bool
	StopLossPrice    *decimal.Decimal
	ClearStopLoss    bool
	AlertEnabled     *bool
}

// Apply writes the patch onto e.
func (p EntryPatch) Apply(e *Entry) {
	if p.Alias != nil {
		e.Alias = strings.TrimSpace(*p.Alias)
	}
	switch {
	case p.ClearTargetPrice:
		e.TargetPrice = nil
	case p.TargetPrice != nil:
		v := *p.TargetPrice
		e.TargetPrice = &v
	}
	switch {
	case p.ClearStopLoss:
		e.StopLossPrice = nil
	case p.StopLossPrice != nil:
		v := *p.StopLossPrice
		e.StopLossPrice = &v
	}
	if p.AlertEnabled != nil {
		e.AlertEnabled = *p.AlertEnabled
	}
}

// CheckAdd validates adding symbol to a watchlist currently holding existing.
// A duplicate is reported before capacity, so re-adding to a full list is not an error upstream.
// A limit of 0 or less uses DefaultCapacity.
func CheckAdd(existing []Entry, symbol string, limit int) error {
	if limit <= 0 {
		limit = DefaultCapacity
	}
	for _, e := range existing {
		if strings.EqualFold(e.Symbol, symbol) {
			return domain.ErrDuplicateSymbol
		}
	}
	if len(existing) >= limit {
		return domain.ErrCapacityExceeded
	}
	return nil
}

// NextSortOrder returns the sort order for an entry appended after existing.
func NextSortOrder(existing []Entry) int {
	next := 0
	for _, e := range existing {
		if e.SortOrder >= next {
			next = e.SortOrder + 1
		}
	}
	return next
}

// SortEntries orders entries by SortOrder, then AddedAt, then ID.
func SortEntries(es []Entry) {
	sort.SliceStable(es, func(i, j int) bool {
		a, b := es[i], es[j]
		if a.SortOrder != b.SortOrder {
			return a.SortOrder < b.SortOrder
		}
		if !a.AddedAt.Equal(b.AddedAt) {
			return a.AddedAt.Before(b.AddedAt)
		}
		return a.ID < b.ID
	})
}

// ApplyOrder renumbers entries so that symbols come first in the given order and the
// remaining entries follow in their current relative order.
// It returns domain.ErrNotFound when symbols names an entry that does not exist.
// The returned slice is sorted by the new SortOrder.
func ApplyOrder(entries []Entry, symbols []string) ([]Entry, error) {
	out := make([]Entry, len(entries))
	copy(out, entries)
	SortEntries(out)

	index := make(map[string]int, len(out))
	for i, e := range out {
		index[strings.ToUpper(e.Symbol)] = i
	}

	placed := make(map[int]bool, len(symbols))
	order := 0
	for _, s := range symbols {
		i, ok := index[strings.ToUpper(strings.TrimSpace(s))]
		if !ok {
			return nil, domain.ErrNotFound
		}
		if placed[i] {
			continue
		}
		placed[i] = true
		out[i].SortOrder = order
		order++
	}
	for i := range out {
		if !placed[i] {
			out[i].SortOrder = order
			order++
		}
	}
	SortEntries(out)
	return out, nil
}
