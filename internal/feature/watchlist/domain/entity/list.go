package entity

import (
	"strings"
	"time"

	"watchlist_backend/internal/feature/watchlist/domain"
)

// Session-backed stores keep a whole watchlist as one value; these helpers apply
// the store operations to such a list and return the new list.

// AppendEntry validates and appends e to list. AddedAt defaults to now and SortOrder is set
// past the current maximum. The returned list is sorted.
func AppendEntry(list []Entry, e Entry, limit int, now time.Time) ([]Entry, Entry, error) {
	if err := CheckAdd(list, e.Symbol, limit); err != nil {
		return list, Entry{}, err
	}
	if e.AddedAt.IsZero() {
		e.AddedAt = now
	}
	e.AddedAt = e.AddedAt.UTC()
	e.SortOrder = NextSortOrder(list)
	e.ID = nextID(list)

	out := make([]Entry, 0, len(list)+1)
	out = append(out, list...)
	out = append(out, e)
	SortEntries(out)
	return out, e, nil
}

// RemoveEntry drops symbol from list, or returns domain.ErrNotFound.
func RemoveEntry(list []Entry, symbol string) ([]Entry, error) {
	i := indexOf(list, symbol)
	if i < 0 {
		return list, domain.ErrNotFound
	}
	out := make([]Entry, 0, len(list)-1)
	out = append(out, list[:i]...)
	out = append(out, list[i+1:]...)
	return out, nil
}

// PatchEntry applies p to the entry for symbol, or returns domain.ErrNotFound.
func PatchEntry(list []Entry, symbol string, p EntryPatch) ([]Entry, Entry, error) {
	i := indexOf(list, symbol)
	if i < 0 {
		return list, Entry{}, domain.ErrNotFound
	}
	out := make([]Entry, len(list))
	copy(out, list)
	p.Apply(&out[i])
	return out, out[i], nil
}

func indexOf(list []Entry, symbol string) int {
	for i, e := range list {
		if strings.EqualFold(e.Symbol, symbol) {
			return i
		}
	}
	return -1
}

func nextID(list []Entry) uint {
	var max uint
	for _, e := range list {
		if e.ID > max {
			max = e.ID
		}
	}
	return max + 1
}
