package adapters

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"watchlist_backend/internal/feature/watchlist/domain"
	"watchlist_backend/internal/feature/watchlist/domain/entity"
	"watchlist_backend/internal/feature/watchlist/usecase"
)

// entryGorm はログインユーザーのウォッチリストをRDBに保存するItemStore実装です。
// 追加時の重複・上限チェックはトランザクション内で行い、重複は一意制約でも防ぎます。
// gorm.Config.TranslateError を有効にした接続を前提とします。
type entryGorm struct {
	db  *gorm.DB
	now func() time.Time
}

var _ usecase.ItemStore = (*entryGorm)(nil)

// NewEntryGorm は指定されたgorm.DB接続でentryGormの新しいインスタンスを生成します。
func NewEntryGorm(db *gorm.DB) *entryGorm {
	return &entryGorm{db: db, now: time.Now}
}

func (r *entryGorm) List(ctx context.Context, owner entity.Identity) ([]entity.Entry, error) {
	if !owner.IsUser() {
		return nil, domain.ErrInvalidIdentity
	}
	return r.list(r.db.WithContext(ctx), owner.UserID)
}

func (r *entryGorm) list(tx *gorm.DB, userID uint) ([]entity.Entry, error) {
	var rows []WatchlistEntryModel
	if err := tx.Where("user_id = ?", userID).
		Order("sort_order ASC").Order("added_at ASC").Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]entity.Entry, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].ToEntity())
	}
	return out, nil
}

func (r *entryGorm) Add(ctx context.Context, owner entity.Identity, e entity.Entry, limit int) (entity.Entry, error) {
	if !owner.IsUser() {
		return entity.Entry{}, domain.ErrInvalidIdentity
	}
	var added entity.Entry
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockOwner(tx, owner.UserID); err != nil {
			return err
		}
		existing, err := r.list(tx, owner.UserID)
		if err != nil {
			return err
		}
		if err := entity.CheckAdd(existing, e.Symbol, limit); err != nil {
			return err
		}

		e.ID = 0
		e.UserID, e.SessionID = owner.UserID, ""
		e.SortOrder = entity.NextSortOrder(existing)
		if e.AddedAt.IsZero() {
			e.AddedAt = r.now()
		}
		m := EntryModelFromEntity(e)
		if err := tx.Create(m).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return domain.ErrDuplicateSymbol
			}
			return err
		}
		added = m.ToEntity()
		return nil
	})
	if err != nil {
		return entity.Entry{}, err
	}
	return added, nil
}

func (r *entryGorm) Remove(ctx context.Context, owner entity.Identity, symbol string) error {
	if !owner.IsUser() {
		return domain.ErrInvalidIdentity
	}
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND symbol = ?", owner.UserID, symbol).
		Delete(&WatchlistEntryModel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *entryGorm) Clear(ctx context.Context, owner entity.Identity) error {
	if !owner.IsUser() {
		return domain.ErrInvalidIdentity
	}
	return r.db.WithContext(ctx).Where("user_id = ?", owner.UserID).Delete(&WatchlistEntryModel{}).Error
}

func (r *entryGorm) Reorder(ctx context.Context, owner entity.Identity, symbols []string) ([]entity.Entry, error) {
	if !owner.IsUser() {
		return nil, domain.ErrInvalidIdentity
	}
	var out []entity.Entry
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockOwner(tx, owner.UserID); err != nil {
			return err
		}
		existing, err := r.list(tx, owner.UserID)
		if err != nil {
			return err
		}
		ordered, err := entity.ApplyOrder(existing, symbols)
		if err != nil {
			return err
		}
		for _, e := range ordered {
			if err := tx.Model(&WatchlistEntryModel{}).
				Where("id = ? AND user_id = ?", e.ID, owner.UserID).
				Update("sort_order", e.SortOrder).Error; err != nil {
				return err
			}
		}
		out = ordered
		return nil
	})
	return out, err
}

func (r *entryGorm) Update(ctx context.Context, owner entity.Identity, symbol string, p entity.EntryPatch) (entity.Entry, error) {
	if !owner.IsUser() {
		return entity.Entry{}, domain.ErrInvalidIdentity
	}
	return r.patch(ctx, p, "user_id = ? AND symbol = ?", owner.UserID, symbol)
}

func (r *entryGorm) FindByID(ctx context.Context, owner entity.Identity, id uint) (entity.Entry, error) {
	if !owner.IsUser() {
		return entity.Entry{}, domain.ErrInvalidIdentity
	}
	var m WatchlistEntryModel
	// 所有者で絞り込むため、他ユーザーのIDは存在しないものとして扱います
	err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, owner.UserID).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return entity.Entry{}, domain.ErrNotFound
	}
	if err != nil {
		return entity.Entry{}, err
	}
	return m.ToEntity(), nil
}

func (r *entryGorm) UpdateByID(ctx context.Context, owner entity.Identity, id uint, p entity.EntryPatch) (entity.Entry, error) {
	if !owner.IsUser() {
		return entity.Entry{}, domain.ErrInvalidIdentity
	}
	return r.patch(ctx, p, "id = ? AND user_id = ?", id, owner.UserID)
}

func (r *entryGorm) patch(ctx context.Context, p entity.EntryPatch, query string, args ...any) (entity.Entry, error) {
	var out entity.Entry
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m WatchlistEntryModel
		if err := tx.Where(query, args...).First(&m).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNotFound
			}
			return err
		}
		e := m.ToEntity()
		p.Apply(&e)
		updated := EntryModelFromEntity(e)
		if err := tx.Model(&WatchlistEntryModel{}).Where("id = ?", m.ID).
			Select("alias", "target_price", "stop_loss_price", "alert_enabled").
			Updates(updated).Error; err != nil {
			return err
		}
		out = e
		return nil
	})
	return out, err
}

// lockOwner serializes writers of one user's watchlist on PostgreSQL.
// SQLite already serializes write transactions.
func lockOwner(tx *gorm.DB, userID uint) error {
	if tx.Dialector.Name() != "postgres" {
		return nil
	}
	return tx.Exec("SELECT pg_advisory_xact_lock(?)", int64(userID)).Error
}
