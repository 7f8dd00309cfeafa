package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"watchlist_backend/internal/feature/watchlist/domain"
	"watchlist_backend/internal/feature/watchlist/domain/entity"
)

// AlertTransferer moves price alerts from a session to a user.
type AlertTransferer interface {
	Reassign(ctx context.Context, sessionID string, userID uint) (int64, error)
}

// MigrationMetrics records migration outcomes.
type MigrationMetrics interface {
	ObserveMigration(outcome string)
}

type nopMigrationMetrics struct{}

func (nopMigrationMetrics) ObserveMigration(string) {}

// Migrator はサインイン時にセッションのウォッチリストをユーザーのウォッチリストへ移行します。
type Migrator struct {
	sessions Store
	users    Store
	alerts   AlertTransferer
	metrics  MigrationMetrics
	limit    int
}

// NewMigrator は新しい Migrator を作成します。alerts と metrics は nil でも構いません。
func NewMigrator(sessions, users Store, alerts AlertTransferer, metrics MigrationMetrics, limit int) *Migrator {
	if metrics == nil {
		metrics = nopMigrationMetrics{}
	}
	return &Migrator{sessions: sessions, users: users, alerts: alerts, metrics: metrics, limit: limit}
}

// Migrate copies the session's entries that the user does not already have into the user's
// watchlist, keeping alias, target, stop-loss and alert settings. Symbols the user already
// tracks keep the user's settings. The session's alerts are re-owned by the user.
// The session watchlist is cleared only when every entry was merged; otherwise a
// *PartialMigrationError is returned and the session is left as is.
// Running it again after success changes nothing.
func (m *Migrator) Migrate(ctx context.Context, sessionID string, userID uint) error {
	session := entity.Identity{SessionID: sessionID}
	user := entity.Identity{UserID: userID}
	if sessionID == "" || userID == 0 {
		return domain.ErrInvalidIdentity
	}

	var alertErr error
	if m.alerts != nil {
		n, err := m.alerts.Reassign(ctx, sessionID, userID)
		if err != nil {
			alertErr = err
		} else if n > 0 {
			slog.Info("reassigned session alerts", "user_id", userID, "count", n)
		}
	}

	sessEntries, err := m.sessions.List(ctx, session)
	if err != nil {
		m.metrics.ObserveMigration("error")
		return fmt.Errorf("list session watchlist: %w", err)
	}
	if len(sessEntries) == 0 {
		if alertErr != nil {
			m.metrics.ObserveMigration("partial")
			return &PartialMigrationError{Failed: map[string]error{}, AlertErr: alertErr}
		}
		m.metrics.ObserveMigration("noop")
		return nil
	}

	userEntries, err := m.users.List(ctx, user)
	if err != nil {
		m.metrics.ObserveMigration("error")
		return fmt.Errorf("list user watchlist: %w", err)
	}
	present := make(map[string]bool, len(userEntries))
	for _, e := range userEntries {
		present[strings.ToUpper(e.Symbol)] = true
	}

	var migrated []string
	failed := make(map[string]error)
	for _, e := range sessEntries {
		sym := strings.ToUpper(e.Symbol)
		if present[sym] {
			continue
		}
		e.ID = 0
		e.SessionID = ""
		e.UserID = userID
		if _, err := m.users.Add(ctx, user, e, m.limit); err != nil {
			// 並行して追加された場合は既に存在するものとして扱います
			if errors.Is(err, domain.ErrDuplicateSymbol) {
				present[sym] = true
				continue
			}
			failed[sym] = err
			continue
		}
		present[sym] = true
		migrated = append(migrated, sym)
	}

	if len(failed) == 0 {
		if err := m.sessions.Clear(ctx, session); err != nil {
			m.metrics.ObserveMigration("error")
			return fmt.Errorf("clear session watchlist: %w", err)
		}
	}
	if len(failed) > 0 || alertErr != nil {
		m.metrics.ObserveMigration("partial")
		return &PartialMigrationError{Migrated: migrated, Failed: failed, AlertErr: alertErr}
	}

	m.metrics.ObserveMigration("success")
	slog.Info("migrated session watchlist", "user_id", userID, "migrated", len(migrated), "session_entries", len(sessEntries))
	return nil
}
