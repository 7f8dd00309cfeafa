// Package usecase implements the business logic for the watchlist feature.
package usecase

import (
	"fmt"
	"sort"
	"strings"
)

// PartialMigrationError reports a sign-in migration where some session entries could not be
// copied to the user's watchlist. The session watchlist is left intact so the migration can be retried.
// Callers treat it as a warning.
type PartialMigrationError struct {
	Migrated []string
	Failed   map[string]error
	AlertErr error
}

func (e *PartialMigrationError) Error() string {
	syms := make([]string, 0, len(e.Failed))
	for s := range e.Failed {
		syms = append(syms, s)
	}
	sort.Strings(syms)
	parts := make([]string, 0, len(syms)+1)
	for _, s := range syms {
		parts = append(parts, fmt.Sprintf("%s: %v", s, e.Failed[s]))
	}
	if e.AlertErr != nil {
		parts = append(parts, fmt.Sprintf("alerts: %v", e.AlertErr))
	}
	return fmt.Sprintf("partial migration (%d migrated, %d failed): %s",
		len(e.Migrated), len(e.Failed), strings.Join(parts, "; "))
}
