// Package usecase implements candle construction and the candle supply used by the scanner.
package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pattern_scanner/internal/feature/candles/domain/entity"
)

const (
	// DefaultIntervalMinutes is the bucket size used when the caller passes none.
	DefaultIntervalMinutes = 5
	// MaxIntervalMinutes caps intraday bucket sizes to one trading day.
	MaxIntervalMinutes = 24 * 60
	// DateLayout is the calendar date format accepted by GetCandles.
	DateLayout = "2006-01-02"
)

var (
	// ErrInvalidDate is returned when the date is not yyyy-MM-dd.
	ErrInvalidDate = errors.New("invalid date")
	// ErrUnsortedCandles signals a caller bug: a sequence that is not strictly ascending.
	ErrUnsortedCandles = errors.New("candles are not strictly ascending by time")
)

// CandleRepository abstracts the candle storage layer.
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type CandleRepository interface {
	// Find returns candles with from <= Time < to, ascending.
	Find(ctx context.Context, symbol string, intervalMinutes int, from, to time.Time) ([]entity.Candle, error)
	UpsertBatch(ctx context.Context, candles []entity.Candle) error
}

// CandlesUsecase serves candle sequences for one symbol and trading date.
type CandlesUsecase struct {
	candle CandleRepository
	loc    *time.Location
}

// NewCandlesUsecase creates a CandlesUsecase that interprets dates in loc.
// A nil loc means UTC.
func NewCandlesUsecase(candle CandleRepository, loc *time.Location) *CandlesUsecase {
	if loc == nil {
		loc = time.UTC
	}
	return &CandlesUsecase{candle: candle, loc: loc}
}

// DayWindow converts a yyyy-MM-dd date in loc into a UTC [start, end) range.
func DayWindow(date string, loc *time.Location) (time.Time, time.Time, error) {
	d, err := time.ParseInLocation(DateLayout, date, loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w %q: %v", ErrInvalidDate, date, err)
	}
	return d.UTC(), d.AddDate(0, 0, 1).UTC(), nil
}

// GetCandles returns the ascending candle sequence for symbol on date.
// An empty result is not an error.
func (cu *CandlesUsecase) GetCandles(ctx context.Context, symbol, date string, intervalMinutes int) ([]entity.Candle, error) {
	if intervalMinutes == 0 {
		intervalMinutes = DefaultIntervalMinutes
	}
	if intervalMinutes < 0 || intervalMinutes > MaxIntervalMinutes {
		return nil, ErrInvalidInterval
	}
	from, to, err := DayWindow(date, cu.loc)
	if err != nil {
		return nil, err
	}

	cs, err := cu.candle.Find(ctx, symbol, intervalMinutes, from, to)
	if err != nil {
		return nil, err
	}
	if cs == nil {
		cs = []entity.Candle{}
	}
	return cs, nil
}

// VerifyAscending checks the ordering contract every detector relies on.
func VerifyAscending(candles []entity.Candle) error {
	for i := 1; i < len(candles); i++ {
		if !candles[i].Time.After(candles[i-1].Time) {
			return fmt.Errorf("%w: index %d (%s) follows %s", ErrUnsortedCandles, i,
				candles[i].Time.Format(time.RFC3339), candles[i-1].Time.Format(time.RFC3339))
		}
	}
	return nil
}
