package usecase

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"watchlist_backend/internal/feature/quotes/domain"
	"watchlist_backend/internal/feature/quotes/domain/entity"
)

// Lookup is the outcome of resolving one requested symbol.
// Exactly one of Quote and Err is set.
type Lookup struct {
	Symbol string
	Quote  *entity.Quote
	Err    error
}

// GetQuotes resolves symbols concurrently and returns one Lookup per input, in input order.
// Each distinct symbol is resolved once and its result is shared by its duplicates.
// One symbol failing never affects the others. When ctx ends before a symbol completes,
// that symbol's Err wraps domain.ErrTimedOut.
func (u *QuoteUsecase) GetQuotes(ctx context.Context, symbols []string) []Lookup {
	out := make([]Lookup, len(symbols))

	// 重複を除いた銘柄と、それぞれの入力位置
	positions := make(map[string][]int, len(symbols))
	unique := make([]string, 0, len(symbols))
	for i, s := range symbols {
		sym := entity.NormalizeSymbol(s)
		out[i].Symbol = sym
		if !entity.ValidSymbol(sym) {
			out[i].Err = fmt.Errorf("%w: %q", domain.ErrInvalidSymbol, sym)
			continue
		}
		if _, seen := positions[sym]; !seen {
			unique = append(unique, sym)
		}
		positions[sym] = append(positions[sym], i)
	}
	if len(unique) == 0 {
		return out
	}

	var (
		mu       sync.Mutex
		results  = make(map[string]Lookup, len(unique))
		finished = make(chan struct{})
	)

	go func() {
		defer close(finished)
		var g errgroup.Group
		g.SetLimit(u.maxConcurrency)
		for _, sym := range unique {
			if ctx.Err() != nil {
				break
			}
			g.Go(func() error {
				q, err := u.GetQuote(ctx, sym)
				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					results[sym] = Lookup{Symbol: sym, Err: err}
				} else {
					results[sym] = Lookup{Symbol: sym, Quote: &q}
				}
				// エラーは返さず、他の銘柄の取得を継続させます
				return nil
			})
		}
		_ = g.Wait()
	}()

	select {
	case <-finished:
	case <-ctx.Done():
	}

	mu.Lock()
	defer mu.Unlock()
	for _, sym := range unique {
		res, ok := results[sym]
		if !ok || (res.Err != nil && isContextErr(res.Err) && ctx.Err() != nil) {
			res = Lookup{Symbol: sym, Err: fmt.Errorf("%s: %w", sym, domain.ErrTimedOut)}
		}
		for _, i := range positions[sym] {
			out[i] = res
			if res.Quote != nil {
				q := *res.Quote
				out[i].Quote = &q
			}
		}
	}
	return out
}
