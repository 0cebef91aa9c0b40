// Package adapters はsymbollistフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"time"

	"pattern_scanner/internal/feature/symbollist/domain/entity"
	"pattern_scanner/internal/feature/symbollist/usecase"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// symbolGorm はSymbolRepositoryインターフェースのGORM実装です。
type symbolGorm struct {
	db *gorm.DB
}

var _ usecase.SymbolRepository = (*symbolGorm)(nil)

// NewSymbolRepository は指定されたDB接続でリポジトリの新しいインスタンスを生成します。
func NewSymbolRepository(db *gorm.DB) *symbolGorm {
	return &symbolGorm{db: db}
}

type SymbolModel struct {
	ID        uint      `gorm:"primaryKey"`
	Code      string    `gorm:"size:32;not null;uniqueIndex"`
	Name      string    `gorm:"size:255;not null"`
	Exchange  string    `gorm:"size:100;not null;default:''"`
	IsActive  bool      `gorm:"not null;default:true"`
	SortKey   int       `gorm:"not null;default:0"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (SymbolModel) TableName() string {
	return "symbols"
}

func toEntity(m SymbolModel) entity.Symbol {
	return entity.Symbol{
		Code:     m.Code,
		Name:     m.Name,
		Exchange: m.Exchange,
		Active:   m.IsActive,
		SortKey:  m.SortKey,
	}
}

// ListActive はsort_key順にすべてのアクティブな銘柄を返します。
func (r *symbolGorm) ListActive(ctx context.Context) ([]entity.Symbol, error) {
	var rows []SymbolModel
	if err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("sort_key ASC, code ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]entity.Symbol, 0, len(rows))
	for _, m := range rows {
		out = append(out, toEntity(m))
	}
	return out, nil
}

// ListActiveCodes はsort_key順にアクティブな銘柄のコードのみを返します。
func (r *symbolGorm) ListActiveCodes(ctx context.Context) ([]string, error) {
	var codes []string
	if err := r.db.WithContext(ctx).
		Model(&SymbolModel{}).
		Where("is_active = ?", true).
		Order("sort_key ASC, code ASC").
		Pluck("code", &codes).Error; err != nil {
		return nil, err
	}
	return codes, nil
}

// Upsert はcodeをキーに銘柄を登録または更新します。
func (r *symbolGorm) Upsert(ctx context.Context, symbols []entity.Symbol) error {
	if len(symbols) == 0 {
		return nil
	}
	rows := make([]SymbolModel, 0, len(symbols))
	for _, s := range symbols {
		rows = append(rows, SymbolModel{
			Code:     s.Code,
			Name:     s.Name,
			Exchange: s.Exchange,
			IsActive: s.Active,
			SortKey:  s.SortKey,
		})
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "code"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "exchange", "is_active", "sort_key", "updated_at"}),
	}).Create(&rows).Error
}
