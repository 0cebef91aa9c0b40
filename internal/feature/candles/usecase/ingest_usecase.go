package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"pattern_scanner/internal/feature/candles/domain/entity"
	"pattern_scanner/internal/shared/ratelimiter"
)

// MarketRepository fetches raw intraday ticks and volume for a trading date.
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type MarketRepository interface {
	GetIntraday(ctx context.Context, symbol, date string) (entity.IntradayFeed, error)
}

// IngestUsecase builds candles from the market feed and persists them.
type IngestUsecase struct {
	market          MarketRepository
	candle          CandleRepository
	rateLimiter     ratelimiter.Limiter
	intervalMinutes int
}

// NewIngestUsecase creates a new IngestUsecase producing candles of intervalMinutes.
func NewIngestUsecase(market MarketRepository, candle CandleRepository, rateLimiter ratelimiter.Limiter, intervalMinutes int) *IngestUsecase {
	if intervalMinutes <= 0 {
		intervalMinutes = DefaultIntervalMinutes
	}
	return &IngestUsecase{market: market, candle: candle, rateLimiter: rateLimiter, intervalMinutes: intervalMinutes}
}

// ingestOne fetches one symbol's feed, builds candles and upserts them.
// It returns the number of candles written.
func (iu *IngestUsecase) ingestOne(ctx context.Context, symbol, date string) (int, error) {
	feed, err := iu.market.GetIntraday(ctx, symbol, date)
	if err != nil {
		return 0, err
	}

	volumes := RollupVolumes(feed.Volumes, iu.intervalMinutes)
	cs, err := BuildCandles(feed.Ticks, volumes, iu.intervalMinutes, feed.Timezone)
	if err != nil {
		return 0, fmt.Errorf("build candles for %s: %w", symbol, err)
	}

	for i := range cs {
		cs[i].Symbol = symbol
	}
	if err := iu.candle.UpsertBatch(ctx, cs); err != nil {
		return 0, err
	}
	return len(cs), nil
}

// IngestAll builds and stores candles for every symbol on date. A failing
// symbol is logged and skipped; only context cancellation aborts the run.
func (iu *IngestUsecase) IngestAll(ctx context.Context, symbols []string, date string) error {
	for _, s := range symbols {
		if err := iu.rateLimiter.Wait(ctx); err != nil {
			return err
		}
		n, err := iu.ingestOne(ctx, s, date)
		if err != nil {
			// 1つの銘柄でエラーが発生しても処理を止めずにログに出力し、次の処理を続ける
			slog.Error("failed to ingest data", "symbol", s, "date", date, "error", err)
			continue
		}
		slog.Info("ingested candles", "symbol", s, "date", date, "interval_minutes", iu.intervalMinutes, "count", n)
	}
	return nil
}
