package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"

	"pattern_scanner/internal/feature/candles/domain/entity"
)

var (
	from = time.Date(2024, 1, 2, 5, 0, 0, 0, time.UTC)
	to   = from.Add(24 * time.Hour)
	key  = fmt.Sprintf("candles:AAPL:5:%d:%d", from.Unix(), to.Unix())
)

// mockCandleRepository はテスト用のCandleRepositoryモック実装です。
type mockCandleRepository struct {
	findFn        func(ctx context.Context, symbol string, intervalMinutes int, from, to time.Time) ([]entity.Candle, error)
	upsertBatchFn func(ctx context.Context, candles []entity.Candle) error
}

func (m *mockCandleRepository) Find(ctx context.Context, symbol string, intervalMinutes int, from, to time.Time) ([]entity.Candle, error) {
	if m.findFn != nil {
		return m.findFn(ctx, symbol, intervalMinutes, from, to)
	}
	return nil, nil
}

func (m *mockCandleRepository) UpsertBatch(ctx context.Context, candles []entity.Candle) error {
	if m.upsertBatchFn != nil {
		return m.upsertBatchFn(ctx, candles)
	}
	return nil
}

func sampleCandles() []entity.Candle {
	return []entity.Candle{
		{Symbol: "AAPL", Time: from.Add(9*time.Hour + 30*time.Minute), Open: 150, High: 156, Low: 149, Close: 155, Volume: 1200, IntervalMinutes: 5},
	}
}

// TestNewCachingCandleRepository_Defaults はnamespaceとTTLのデフォルトを検証します。
func TestNewCachingCandleRepository_Defaults(t *testing.T) {
	t.Parallel()

	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("load zone: %v", err)
	}

	tests := []struct {
		name              string
		ttl               time.Duration
		namespace         string
		loc               *time.Location
		now               time.Time
		expectedTTL       time.Duration
		expectedNamespace string
	}{
		{
			name:              "zero ttl lasts until the UTC day rollover",
			now:               time.Date(2024, 1, 2, 20, 0, 0, 0, time.UTC),
			expectedTTL:       4 * time.Hour,
			expectedNamespace: "candles",
		},
		{
			name:              "negative ttl follows the market zone",
			ttl:               -1 * time.Minute,
			loc:               ny,
			now:               time.Date(2024, 1, 2, 20, 0, 0, 0, time.UTC), // 15:00 in New York
			expectedTTL:       9 * time.Hour,
			expectedNamespace: "candles",
		},
		{
			name:              "custom values preserved",
			ttl:               10 * time.Minute,
			namespace:         "custom",
			now:               time.Date(2024, 1, 2, 20, 0, 0, 0, time.UTC),
			expectedTTL:       10 * time.Minute,
			expectedNamespace: "custom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			repo := NewCachingCandleRepository(nil, tt.ttl, &mockCandleRepository{}, tt.namespace, tt.loc)
			repo.now = func() time.Time { return tt.now }

			if got := repo.ttlFor(); got != tt.expectedTTL {
				t.Errorf("expected TTL %v, got %v", tt.expectedTTL, got)
			}
			if repo.namespace != tt.expectedNamespace {
				t.Errorf("expected namespace %q, got %q", tt.expectedNamespace, repo.namespace)
			}
		})
	}
}

// TestCachingCandleRepository_Find_NilRedis はRedisがnilの場合にキャッシュをバイパスすることを検証します。
func TestCachingCandleRepository_Find_NilRedis(t *testing.T) {
	t.Parallel()

	inner := &mockCandleRepository{
		findFn: func(ctx context.Context, symbol string, intervalMinutes int, f, tt time.Time) ([]entity.Candle, error) {
			return sampleCandles(), nil
		},
	}

	repo := NewCachingCandleRepository(nil, 5*time.Minute, inner, "candles", nil)

	candles, err := repo.Find(context.Background(), "AAPL", 5, from, to)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(candles) != 1 {
		t.Errorf("expected 1 candle, got %d", len(candles))
	}
}

// TestCachingCandleRepository_Find_CacheHit はキャッシュヒット時に内部リポジトリを呼ばないことを検証します。
func TestCachingCandleRepository_Find_CacheHit(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	cachedJSON, _ := json.Marshal(sampleCandles())
	mock.ExpectGet(key).SetVal(string(cachedJSON))

	innerCalled := false
	inner := &mockCandleRepository{
		findFn: func(ctx context.Context, symbol string, intervalMinutes int, f, tt time.Time) ([]entity.Candle, error) {
			innerCalled = true
			return nil, nil
		},
	}

	repo := NewCachingCandleRepository(rdb, 5*time.Minute, inner, "candles", nil)
	candles, err := repo.Find(context.Background(), "AAPL", 5, from, to)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if innerCalled {
		t.Error("inner repository should not be called on cache hit")
	}
	if len(candles) != 1 || !candles[0].Time.Equal(sampleCandles()[0].Time) {
		t.Errorf("unexpected candles from cache: %+v", candles)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled mock expectations: %v", err)
	}
}

// TestCachingCandleRepository_Find_CacheMiss はキャッシュミス時にDBから取得してキャッシュに保存することを検証します。
func TestCachingCandleRepository_Find_CacheMiss(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	expectedJSON, _ := json.Marshal(sampleCandles())
	mock.ExpectGet(key).RedisNil()
	mock.ExpectSet(key, expectedJSON, 5*time.Minute).SetVal("OK")

	inner := &mockCandleRepository{
		findFn: func(ctx context.Context, symbol string, intervalMinutes int, f, tt time.Time) ([]entity.Candle, error) {
			if symbol != "AAPL" || intervalMinutes != 5 || !f.Equal(from) || !tt.Equal(to) {
				t.Errorf("unexpected query: %s %d %s %s", symbol, intervalMinutes, f, tt)
			}
			return sampleCandles(), nil
		},
	}

	repo := NewCachingCandleRepository(rdb, 5*time.Minute, inner, "candles", nil)
	candles, err := repo.Find(context.Background(), "AAPL", 5, from, to)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(candles) != 1 {
		t.Errorf("expected 1 candle, got %d", len(candles))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled mock expectations: %v", err)
	}
}

// TestCachingCandleRepository_Find_RedisDown はRedis障害時もDBから読み出せることを検証します。
func TestCachingCandleRepository_Find_RedisDown(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	expectedJSON, _ := json.Marshal(sampleCandles())
	mock.ExpectGet(key).SetErr(errors.New("connection refused"))
	mock.ExpectSet(key, expectedJSON, 5*time.Minute).SetErr(errors.New("connection refused"))

	inner := &mockCandleRepository{
		findFn: func(ctx context.Context, symbol string, intervalMinutes int, f, tt time.Time) ([]entity.Candle, error) {
			return sampleCandles(), nil
		},
	}

	repo := NewCachingCandleRepository(rdb, 5*time.Minute, inner, "candles", nil)
	candles, err := repo.Find(context.Background(), "AAPL", 5, from, to)
	if err != nil {
		t.Fatalf("cache failures must not surface: %v", err)
	}
	if len(candles) != 1 {
		t.Errorf("expected 1 candle, got %d", len(candles))
	}
}

// TestCachingCandleRepository_Find_InnerError は内部リポジトリのエラーが伝播されることを検証します。
func TestCachingCandleRepository_Find_InnerError(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	expectedErr := errors.New("database error")
	mock.ExpectGet(key).RedisNil()

	inner := &mockCandleRepository{
		findFn: func(ctx context.Context, symbol string, intervalMinutes int, f, tt time.Time) ([]entity.Candle, error) {
			return nil, expectedErr
		},
	}

	repo := NewCachingCandleRepository(rdb, 5*time.Minute, inner, "candles", nil)
	_, err := repo.Find(context.Background(), "AAPL", 5, from, to)
	if !errors.Is(err, expectedErr) {
		t.Errorf("expected error %v, got %v", expectedErr, err)
	}
}

// TestCachingCandleRepository_Find_CorruptedCache は破損したキャッシュを削除してDBにフォールバックすることを検証します。
func TestCachingCandleRepository_Find_CorruptedCache(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	expectedJSON, _ := json.Marshal(sampleCandles())
	mock.ExpectGet(key).SetVal("invalid json")
	mock.ExpectDel(key).SetVal(1)
	mock.ExpectSet(key, expectedJSON, 5*time.Minute).SetVal("OK")

	inner := &mockCandleRepository{
		findFn: func(ctx context.Context, symbol string, intervalMinutes int, f, tt time.Time) ([]entity.Candle, error) {
			return sampleCandles(), nil
		},
	}

	repo := NewCachingCandleRepository(rdb, 5*time.Minute, inner, "candles", nil)
	candles, err := repo.Find(context.Background(), "AAPL", 5, from, to)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(candles) != 1 {
		t.Errorf("expected 1 candle, got %d", len(candles))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled mock expectations: %v", err)
	}
}

// TestCachingCandleRepository_UpsertBatch_InnerError は内部リポジトリのエラーが伝播されることを検証します。
func TestCachingCandleRepository_UpsertBatch_InnerError(t *testing.T) {
	t.Parallel()

	expectedErr := errors.New("upsert error")
	inner := &mockCandleRepository{
		upsertBatchFn: func(ctx context.Context, candles []entity.Candle) error {
			return expectedErr
		},
	}

	repo := NewCachingCandleRepository(nil, 5*time.Minute, inner, "candles", nil)
	err := repo.UpsertBatch(context.Background(), sampleCandles())
	if !errors.Is(err, expectedErr) {
		t.Errorf("expected error %v, got %v", expectedErr, err)
	}
}

// TestCachingCandleRepository_UpsertBatch_CacheInvalidation はsymbol+intervalごとに1回だけキャッシュを無効化することを検証します。
func TestCachingCandleRepository_UpsertBatch_CacheInvalidation(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	inner := &mockCandleRepository{
		upsertBatchFn: func(ctx context.Context, candles []entity.Candle) error { return nil },
	}

	mock.ExpectScan(0, "candles:AAPL:5:*", 200).SetVal([]string{key}, 0)
	mock.ExpectDel(key).SetVal(1)
	mock.ExpectScan(0, "candles:AAPL:15:*", 200).SetVal([]string{}, 0)

	repo := NewCachingCandleRepository(rdb, 5*time.Minute, inner, "candles", nil)
	err := repo.UpsertBatch(context.Background(), []entity.Candle{
		{Symbol: "AAPL", IntervalMinutes: 5, Time: from},
		{Symbol: "AAPL", IntervalMinutes: 5, Time: from.Add(5 * time.Minute)},
		{Symbol: "AAPL", IntervalMinutes: 15, Time: from},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled mock expectations: %v", err)
	}
}

// TestCachingCandleRepository_UpsertBatch_EmptyCandles は空データで正常終了することを検証します。
func TestCachingCandleRepository_UpsertBatch_EmptyCandles(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	repo := NewCachingCandleRepository(rdb, 5*time.Minute, &mockCandleRepository{}, "candles", nil)
	if err := repo.UpsertBatch(context.Background(), []entity.Candle{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unexpected redis calls: %v", err)
	}
}

// TestSafe はsafe関数がRedisキーで問題となる文字をエスケープすることを検証します。
func TestSafe(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected string
	}{
		{"AAPL", "AAPL"},
		{"BRK A", "BRK_A"},
		{"key:value", "key_value"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			if result := safe(tt.input); result != tt.expected {
				t.Errorf("safe(%q) = %q, expected %q", tt.input, result, tt.expected)
			}
		})
	}
}
