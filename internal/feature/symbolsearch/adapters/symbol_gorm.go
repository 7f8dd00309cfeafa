// Package adapters はsymbolsearchフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"watchlist_backend/internal/feature/symbolsearch/domain/entity"
	"watchlist_backend/internal/feature/symbolsearch/usecase"
)

// likeEscaper は LIKE のワイルドカードをエスケープします。
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// symbolGorm はSymbolRepositoryインターフェースのGORM実装です。
type symbolGorm struct {
	db *gorm.DB
}

var _ usecase.SymbolRepository = (*symbolGorm)(nil)

// NewSymbolRepository は指定されたDB接続でsymbolGormリポジトリの新しいインスタンスを生成します。
func NewSymbolRepository(db *gorm.DB) *symbolGorm {
	return &symbolGorm{db: db}
}

// Search はコードの前方一致または名前の部分一致（大文字小文字を区別しない）で有効な銘柄を返します。
func (r *symbolGorm) Search(ctx context.Context, query string, limit int) ([]entity.Symbol, error) {
	q := likeEscaper.Replace(strings.ToLower(strings.TrimSpace(query)))
	var models []SymbolModel
	if err := r.active(ctx).
		Where(`(LOWER(code) LIKE ? ESCAPE '\' OR LOWER(name) LIKE ? ESCAPE '\')`, q+"%", "%"+q+"%").
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, err
	}
	return toEntities(models), nil
}

// ListActive はsort_key順に有効な銘柄を返します。
func (r *symbolGorm) ListActive(ctx context.Context, limit int) ([]entity.Symbol, error) {
	var models []SymbolModel
	if err := r.active(ctx).Limit(limit).Find(&models).Error; err != nil {
		return nil, err
	}
	return toEntities(models), nil
}

func (r *symbolGorm) active(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("sort_key ASC").
		Order("code ASC")
}

func toEntities(models []SymbolModel) []entity.Symbol {
	out := make([]entity.Symbol, 0, len(models))
	for i := range models {
		out = append(out, models[i].ToEntity())
	}
	return out
}
