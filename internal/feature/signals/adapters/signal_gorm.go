// Package adapters はsignalsフィーチャーの永続化と配信の実装を提供します。
package adapters

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"pattern_scanner/internal/feature/signals/domain/entity"
	"pattern_scanner/internal/feature/signals/usecase"
)

type signalGorm struct {
	db *gorm.DB
}

var _ usecase.SignalRepository = (*signalGorm)(nil)

func NewSignalRepository(db *gorm.DB) *signalGorm {
	return &signalGorm{db: db}
}

// SignalModel is one accepted entry signal. A rerun of the same scan
// overwrites the row for (symbol, pattern, time, direction).
type SignalModel struct {
	ID         string    `gorm:"type:varchar(36);primaryKey"`
	Symbol     string    `gorm:"size:32;not null;uniqueIndex:signal_sym_pat_time,priority:1"`
	Pattern    string    `gorm:"size:32;not null;uniqueIndex:signal_sym_pat_time,priority:2"`
	SignalTime time.Time `gorm:"not null;uniqueIndex:signal_sym_pat_time,priority:3"`
	Direction  string    `gorm:"size:8;not null;uniqueIndex:signal_sym_pat_time,priority:4"`

	EntryPrice      float64 `gorm:"not null"`
	StopLoss        float64 `gorm:"not null"`
	Target          float64 `gorm:"not null"`
	RiskAmount      float64 `gorm:"not null"`
	RewardAmount    float64 `gorm:"not null"`
	RiskRewardRatio float64 `gorm:"not null"`
	Confidence      float64 `gorm:"not null"`
	HasVolume       bool    `gorm:"not null;default:false"`
	Quality         float64 `gorm:"not null"`
	Urgency         string  `gorm:"size:16;not null"`
	Reason          string  `gorm:"size:512"`
	Volume          float64
	AverageVolume   float64
	VolumeRatio     float64

	ConfluenceCount int    `gorm:"not null;default:0"`
	MergedPatterns  string `gorm:"size:512"`

	CreatedAt time.Time
}

func (SignalModel) TableName() string {
	return "signals"
}

func toModel(s entity.EntrySignal) SignalModel {
	m := SignalModel{
		ID:              uuid.NewString(),
		Symbol:          s.Symbol,
		Pattern:         s.Kind.String(),
		SignalTime:      s.Time.UTC(),
		Direction:       s.Direction.String(),
		EntryPrice:      s.EntryPrice,
		StopLoss:        s.StopLoss,
		Target:          s.Target,
		RiskAmount:      s.RiskAmount,
		RewardAmount:    s.RewardAmount,
		RiskRewardRatio: s.RiskRewardRatio,
		Confidence:      s.Confidence,
		HasVolume:       s.HasVolumeConfirmation,
		Quality:         s.Quality,
		Urgency:         s.Urgency.String(),
		Reason:          s.Reason,
		Volume:          s.Volume,
		AverageVolume:   s.AverageVolume,
		VolumeRatio:     s.VolumeRatio,
	}
	if s.Confluence != nil {
		m.ConfluenceCount = s.Confluence.Count
		m.MergedPatterns = strings.Join(s.Confluence.MergedPatternNames, ",")
	}
	return m
}

func toEntity(m SignalModel) (entity.EntrySignal, error) {
	kind, err := entity.ParsePatternKind(m.Pattern)
	if err != nil {
		return entity.EntrySignal{}, err
	}
	var dir entity.Direction
	if err := dir.UnmarshalText([]byte(m.Direction)); err != nil {
		return entity.EntrySignal{}, err
	}
	var urg entity.Urgency
	if err := urg.UnmarshalText([]byte(m.Urgency)); err != nil {
		return entity.EntrySignal{}, err
	}

	s := entity.EntrySignal{
		Symbol:                m.Symbol,
		Kind:                  kind,
		Time:                  m.SignalTime.UTC(),
		EntryPrice:            m.EntryPrice,
		StopLoss:              m.StopLoss,
		Target:                m.Target,
		RiskAmount:            m.RiskAmount,
		RewardAmount:          m.RewardAmount,
		RiskRewardRatio:       m.RiskRewardRatio,
		Confidence:            m.Confidence,
		HasVolumeConfirmation: m.HasVolume,
		Quality:               m.Quality,
		Urgency:               urg,
		Direction:             dir,
		Reason:                m.Reason,
		Volume:                m.Volume,
		AverageVolume:         m.AverageVolume,
		VolumeRatio:           m.VolumeRatio,
	}
	if m.ConfluenceCount > 0 {
		s.Confluence = &entity.Confluence{Count: m.ConfluenceCount, MergedPatternNames: strings.Split(m.MergedPatterns, ",")}
	}
	return s, nil
}

func (r *signalGorm) SaveBatch(ctx context.Context, signals []entity.EntrySignal) error {
	if len(signals) == 0 {
		return nil
	}
	ms := make([]SignalModel, 0, len(signals))
	for _, s := range signals {
		ms = append(ms, toModel(s))
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "symbol"}, {Name: "pattern"}, {Name: "signal_time"}, {Name: "direction"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"entry_price", "stop_loss", "target", "risk_amount", "reward_amount", "risk_reward_ratio",
			"confidence", "has_volume", "quality", "urgency", "reason", "volume", "average_volume",
			"volume_ratio", "confluence_count", "merged_patterns",
		}),
	}).Create(&ms).Error
}

func (r *signalGorm) Find(ctx context.Context, symbol string, from, to time.Time) ([]entity.EntrySignal, error) {
	var rows []SignalModel
	err := r.db.WithContext(ctx).
		Where("symbol = ? AND signal_time >= ? AND signal_time < ?", symbol, from.UTC(), to.UTC()).
		Order("signal_time ASC").
		Order("pattern ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]entity.EntrySignal, 0, len(rows))
	for _, m := range rows {
		s, err := toEntity(m)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}
