// Package adapters はcandlesフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"time"

	"pattern_scanner/internal/feature/candles/domain/entity"
	"pattern_scanner/internal/feature/candles/usecase"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type candleGorm struct {
	db *gorm.DB
}

var _ usecase.CandleRepository = (*candleGorm)(nil)

func NewCandleRepository(db *gorm.DB) *candleGorm {
	return &candleGorm{db: db}
}

type CandleModel struct {
	ID              uint      `gorm:"primaryKey"`
	Symbol          string    `gorm:"size:32;not null;uniqueIndex:candle_sym_int_time,priority:1"`
	IntervalMinutes int       `gorm:"not null;uniqueIndex:candle_sym_int_time,priority:2"`
	Time            time.Time `gorm:"column:bucket_time;not null;uniqueIndex:candle_sym_int_time,priority:3"`

	Open   float64 `gorm:"not null"`
	High   float64 `gorm:"not null"`
	Low    float64 `gorm:"not null"`
	Close  float64 `gorm:"not null"`
	Volume float64 `gorm:"not null;default:0"`
}

func (CandleModel) TableName() string {
	return "candles"
}

func toModel(e entity.Candle) CandleModel {
	return CandleModel{
		Symbol:          e.Symbol,
		IntervalMinutes: e.IntervalMinutes,
		Time:            e.Time.UTC(),
		Open:            e.Open,
		High:            e.High,
		Low:             e.Low,
		Close:           e.Close,
		Volume:          e.Volume,
	}
}

func toEntity(m CandleModel) entity.Candle {
	return entity.Candle{
		Symbol:          m.Symbol,
		IntervalMinutes: m.IntervalMinutes,
		Time:            m.Time.UTC(),
		Open:            m.Open,
		High:            m.High,
		Low:             m.Low,
		Close:           m.Close,
		Volume:          m.Volume,
	}
}

func (r *candleGorm) UpsertBatch(ctx context.Context, candles []entity.Candle) error {
	if len(candles) == 0 {
		return nil
	}
	ms := make([]CandleModel, 0, len(candles))
	for _, e := range candles {
		ms = append(ms, toModel(e))
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "symbol"}, {Name: "interval_minutes"}, {Name: "bucket_time"}},
		DoUpdates: clause.AssignmentColumns([]string{"open", "high", "low", "close", "volume"}),
	}).Create(&ms).Error
}

func (r *candleGorm) Find(ctx context.Context, symbol string, intervalMinutes int, from, to time.Time) ([]entity.Candle, error) {
	var rows []CandleModel
	err := r.db.WithContext(ctx).
		Where("symbol = ? AND interval_minutes = ? AND bucket_time >= ? AND bucket_time < ?", symbol, intervalMinutes, from.UTC(), to.UTC()).
		Order("bucket_time ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]entity.Candle, 0, len(rows))
	for _, m := range rows {
		out = append(out, toEntity(m))
	}
	return out, nil
}
