package adapters

import (
	"context"
	"time"

	"gorm.io/gorm"

	"watchlist_backend/internal/feature/watchlist/domain"
	"watchlist_backend/internal/feature/watchlist/domain/entity"
	"watchlist_backend/internal/feature/watchlist/usecase"
)

// alertGorm はAlertRepositoryインターフェースのGORM実装です。
type alertGorm struct {
	db *gorm.DB
}

var _ usecase.AlertRepository = (*alertGorm)(nil)

// NewAlertGorm は指定されたgorm.DB接続でalertGormの新しいインスタンスを生成します。
func NewAlertGorm(db *gorm.DB) *alertGorm {
	return &alertGorm{db: db}
}

func (r *alertGorm) Create(ctx context.Context, a *entity.PriceAlert) error {
	m := AlertModelFromEntity(*a)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	a.ID = m.ID
	return nil
}

func (r *alertGorm) ListByOwner(ctx context.Context, owner entity.Identity) ([]entity.PriceAlert, error) {
	q, err := ownerScope(r.db.WithContext(ctx), owner)
	if err != nil {
		return nil, err
	}
	var rows []PriceAlertModel
	if err := q.Order("created_at ASC").Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]entity.PriceAlert, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].ToEntity())
	}
	return out, nil
}

func (r *alertGorm) Delete(ctx context.Context, owner entity.Identity, id uint) error {
	q, err := ownerScope(r.db.WithContext(ctx), owner)
	if err != nil {
		return err
	}
	res := q.Where("id = ?", id).Delete(&PriceAlertModel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *alertGorm) MarkTriggered(ctx context.Context, ids []uint, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&PriceAlertModel{}).
		Where("id IN ?", ids).
		Update("last_triggered_at", at.UTC()).Error
}

func (r *alertGorm) Reassign(ctx context.Context, sessionID string, userID uint) (int64, error) {
	if sessionID == "" || userID == 0 {
		return 0, domain.ErrInvalidIdentity
	}
	res := r.db.WithContext(ctx).Model(&PriceAlertModel{}).
		Where("session_id = ?", sessionID).
		Updates(map[string]any{"user_id": userID, "session_id": nil})
	return res.RowsAffected, res.Error
}

func ownerScope(q *gorm.DB, owner entity.Identity) (*gorm.DB, error) {
	switch {
	case owner.IsUser():
		return q.Where("user_id = ?", owner.UserID), nil
	case owner.IsSession():
		return q.Where("session_id = ?", owner.SessionID), nil
	default:
		return nil, domain.ErrInvalidIdentity
	}
}
