package adapters

import (
	"time"

	"watchlist_backend/internal/feature/symbolsearch/domain/entity"
)

// SymbolModel is the GORM model for the symbols table.
type SymbolModel struct {
	ID        uint      `gorm:"primaryKey"`
	Code      string    `gorm:"size:20;not null;uniqueIndex"`
	Name      string    `gorm:"size:255;not null"`
	Market    string    `gorm:"size:100;not null"`
	IsActive  bool      `gorm:"not null;index"`
	SortKey   int       `gorm:"not null;default:0"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// TableName returns the table name for GORM.
func (SymbolModel) TableName() string {
	return "symbols"
}

// ToEntity converts the GORM model to a domain entity.
func (m *SymbolModel) ToEntity() entity.Symbol {
	return entity.Symbol{
		ID:        m.ID,
		Code:      m.Code,
		Name:      m.Name,
		Market:    m.Market,
		IsActive:  m.IsActive,
		SortKey:   m.SortKey,
		UpdatedAt: m.UpdatedAt,
	}
}

// SymbolModelFromEntity converts a domain entity to a GORM model.
func SymbolModelFromEntity(s entity.Symbol) *SymbolModel {
	return &SymbolModel{
		ID:        s.ID,
		Code:      s.Code,
		Name:      s.Name,
		Market:    s.Market,
		IsActive:  s.IsActive,
		SortKey:   s.SortKey,
		UpdatedAt: s.UpdatedAt,
	}
}
