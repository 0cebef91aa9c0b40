// Package di provides dependency injection factories for creating application components.
package di

import (
	"time"

	"pattern_scanner/internal/app/config"
	"pattern_scanner/internal/feature/candles/usecase"
	"pattern_scanner/internal/platform/externalapi/twelvedata"
	infrahttp "pattern_scanner/internal/platform/http"
	"pattern_scanner/internal/shared/ratelimiter"
)

// NewMarket creates a fully configured TwelveDataMarket with HTTP client.
func NewMarket(cfg config.Config) *twelvedata.TwelveDataMarket {
	tdCfg := twelvedata.LoadConfig()
	httpClient := infrahttp.NewHTTPClient(tdCfg.Timeout, cfg.ScanWorkers)
	return twelvedata.NewTwelveDataMarket(tdCfg, httpClient)
}

// NewIngestUsecase wires the market feed, rate limiter and candle store.
func NewIngestUsecase(cfg config.Config, market usecase.MarketRepository, candles usecase.CandleRepository) *usecase.IngestUsecase {
	rl := ratelimiter.NewRateLimiter(cfg.IngestRatePerMinute, time.Minute)
	return usecase.NewIngestUsecase(market, candles, rl, cfg.ScanIntervalMinutes)
}
