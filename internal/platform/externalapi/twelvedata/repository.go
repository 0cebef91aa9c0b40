package twelvedata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"pattern_scanner/internal/feature/candles/domain/entity"
	"pattern_scanner/internal/feature/candles/usecase"
	"pattern_scanner/internal/platform/externalapi/twelvedata/dto"

	"github.com/cenkalti/backoff/v4"
)

const (
	barLayout     = "2006-01-02 15:04:05"
	barMinutes    = 1
	maxBarsPerDay = 5000
)

// TwelveDataMarket はTwelve Data外部APIから1分足を取得するMarketRepository実装です。
type TwelveDataMarket struct {
	cfg    Config
	client *http.Client
}

// TwelveDataMarketがMarketRepositoryを実装していることをコンパイル時に検証します。
var _ usecase.MarketRepository = (*TwelveDataMarket)(nil)

// NewTwelveDataMarket は指定された設定とHTTPクライアントでTwelveDataMarketの新しいインスタンスを生成します。
func NewTwelveDataMarket(cfg Config, client *http.Client) *TwelveDataMarket {
	return &TwelveDataMarket{cfg: cfg, client: client}
}

// statusError is a non-2xx response.
type statusError struct{ code int }

func (e *statusError) Error() string { return fmt.Sprintf("twelvedata http %d", e.code) }

// GetIntraday fetches the 1-minute bars of date (exchange wall clock) and
// expands each bar into open/high/low/close ticks plus one volume interval.
func (t *TwelveDataMarket) GetIntraday(ctx context.Context, symbol, date string) (entity.IntradayFeed, error) {
	if _, err := time.Parse(usecase.DateLayout, date); err != nil {
		return entity.IntradayFeed{}, fmt.Errorf("%w: %q", usecase.ErrInvalidDate, date)
	}

	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("interval", "1min")
	q.Set("start_date", date+" 00:00:00")
	q.Set("end_date", date+" 23:59:59")
	q.Set("outputsize", strconv.Itoa(maxBarsPerDay))
	q.Set("order", "ASC")
	q.Set("apikey", t.cfg.TwelveDataAPIKey)
	u := fmt.Sprintf("%s/time_series?%s", t.cfg.BaseURL, q.Encode())

	var body dto.TimeSeriesResponse
	op := func() error {
		var err error
		body, err = t.fetch(ctx, u)
		return err
	}
	notify := func(err error, next time.Duration) {
		slog.Warn("twelvedata request failed, retrying", "symbol", symbol, "error", err, "next", next)
	}
	if err := backoff.RetryNotify(op, t.backoff(ctx), notify); err != nil {
		return entity.IntradayFeed{}, err
	}

	if body.Status == "error" {
		return entity.IntradayFeed{}, fmt.Errorf("twelvedata: %s", body.Message)
	}
	return toFeed(symbol, body)
}

func (t *TwelveDataMarket) backoff(ctx context.Context) backoff.BackOff {
	eb := backoff.NewExponentialBackOff()
	if t.cfg.RetryInterval > 0 {
		eb.InitialInterval = t.cfg.RetryInterval
	}
	eb.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(eb, t.cfg.MaxRetries), ctx)
}

// fetch performs one request. Client errors other than 429 are permanent.
func (t *TwelveDataMarket) fetch(ctx context.Context, u string) (dto.TimeSeriesResponse, error) {
	var body dto.TimeSeriesResponse

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return body, backoff.Permanent(err)
	}
	res, err := t.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return body, backoff.Permanent(err)
		}
		return body, err
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	if res.StatusCode >= 400 {
		se := &statusError{code: res.StatusCode}
		if res.StatusCode == http.StatusTooManyRequests || res.StatusCode >= 500 {
			return body, se
		}
		return body, backoff.Permanent(se)
	}

	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return body, backoff.Permanent(fmt.Errorf("decode twelvedata response: %w", err))
	}
	return body, nil
}

func toFeed(symbol string, body dto.TimeSeriesResponse) (entity.IntradayFeed, error) {
	zone := body.Meta.ExchangeTimezone
	if zone == "" {
		zone = "UTC"
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return entity.IntradayFeed{}, fmt.Errorf("%w %q: %v", usecase.ErrUnknownTimezone, zone, err)
	}

	feed := entity.IntradayFeed{
		Symbol:   symbol,
		Timezone: zone,
		Ticks:    make([]entity.Tick, 0, 4*len(body.Values)),
		Volumes:  make([]entity.VolumeInterval, 0, len(body.Values)),
	}
	for _, v := range body.Values {
		at, err := time.ParseInLocation(barLayout, v.Datetime, loc)
		if err != nil {
			return entity.IntradayFeed{}, fmt.Errorf("parse time %q: %w", v.Datetime, err)
		}
		prices, err := parsePrices(v)
		if err != nil {
			return entity.IntradayFeed{}, err
		}
		// 出来高は空文字のことがある（指数など）
		var vol float64
		if v.Volume != "" {
			if vol, err = strconv.ParseFloat(v.Volume, 64); err != nil {
				return entity.IntradayFeed{}, fmt.Errorf("parse volume %q: %w", v.Volume, err)
			}
		}

		for _, p := range prices {
			feed.Ticks = append(feed.Ticks, entity.Tick{LocalTimestamp: v.Datetime, Price: p})
		}
		start := at.Unix()
		feed.Volumes = append(feed.Volumes, entity.VolumeInterval{
			StartEpochSeconds: start,
			EndEpochSeconds:   start + barMinutes*60,
			Volume:            vol,
			IntervalMinutes:   barMinutes,
		})
	}
	return feed, nil
}

// parsePrices returns open, high, low, close in tick order.
func parsePrices(v dto.TimeSeriesValue) ([4]float64, error) {
	var out [4]float64
	fields := [4]struct{ name, raw string }{
		{"open", v.Open}, {"high", v.High}, {"low", v.Low}, {"close", v.Close},
	}
	for i, f := range fields {
		p, err := strconv.ParseFloat(f.raw, 64)
		if err != nil {
			return out, fmt.Errorf("parse %s %q: %w", f.name, f.raw, err)
		}
		out[i] = p
	}
	return out, nil
}

// IsStatus reports whether err is an HTTP error with the given status code.
func IsStatus(err error, code int) bool {
	var se *statusError
	return errors.As(err, &se) && se.code == code
}
