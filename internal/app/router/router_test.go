package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	candle "pattern_scanner/internal/feature/candles/domain/entity"
	candleshandler "pattern_scanner/internal/feature/candles/transport/handler"
	"pattern_scanner/internal/feature/signals/domain/entity"
	signalshandler "pattern_scanner/internal/feature/signals/transport/handler"
	"pattern_scanner/internal/feature/signals/usecase"
	symbol "pattern_scanner/internal/feature/symbollist/domain/entity"
	symbollisthandler "pattern_scanner/internal/feature/symbollist/transport/handler"
	jwtmw "pattern_scanner/internal/platform/jwt"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

const secret = "router-test-secret"

type stubCandles struct{}

func (stubCandles) GetCandles(ctx context.Context, symbol, date string, intervalMinutes int) ([]candle.Candle, error) {
	return []candle.Candle{}, nil
}

type stubSignals struct{}

func (stubSignals) GetSignals(ctx context.Context, symbol, date string) ([]entity.EntrySignal, error) {
	return []entity.EntrySignal{}, nil
}

func (stubSignals) Scan(ctx context.Context, symbol, date string, intervalMinutes int) (usecase.ScanResult, error) {
	return usecase.ScanResult{Symbol: symbol, Date: date, IntervalMinutes: intervalMinutes}, nil
}

type stubSymbols struct{}

func (stubSymbols) ListActiveSymbols(ctx context.Context) ([]symbol.Symbol, error) {
	return []symbol.Symbol{{Code: "AAPL", Name: "Apple"}}, nil
}

func newTestRouter() *gin.Engine {
	return NewRouter(Handlers{
		Candles: candleshandler.NewCandlesHandler(stubCandles{}),
		Signals: signalshandler.NewSignalsHandler(stubSignals{}),
		Symbols: symbollisthandler.NewSymbolHandler(stubSymbols{}),
	}, secret)
}

func token(t *testing.T, scopes ...string) string {
	t.Helper()
	tok, err := jwtmw.NewGenerator(secret, time.Hour).GenerateToken("router-test", scopes)
	require.NoError(t, err)
	return "Bearer " + tok
}

// TestNewRouter はルートごとの認証・スコープ要件を検証します。
func TestNewRouter(t *testing.T) {
	t.Parallel()

	r := newTestRouter()
	read := token(t, jwtmw.ScopeRead)
	scan := token(t, jwtmw.ScopeRead, jwtmw.ScopeScan)

	tests := []struct {
		name   string
		method string
		path   string
		auth   string
		status int
	}{
		{"healthz is public", http.MethodGet, "/healthz", "", http.StatusOK},
		{"readyz is public", http.MethodGet, "/readyz", "", http.StatusOK},
		{"metrics is public", http.MethodGet, "/metrics", "", http.StatusOK},
		{"symbols needs a token", http.MethodGet, "/symbols", "", http.StatusUnauthorized},
		{"symbols with token", http.MethodGet, "/symbols", read, http.StatusOK},
		{"candles with token", http.MethodGet, "/candles/AAPL?date=2024-01-02", read, http.StatusOK},
		{"signals with read scope", http.MethodGet, "/signals/AAPL?date=2024-01-02", read, http.StatusOK},
		{"signals without read scope", http.MethodGet, "/signals/AAPL?date=2024-01-02", token(t), http.StatusForbidden},
		{"scan without scan scope", http.MethodPost, "/signals/AAPL/scan?date=2024-01-02", read, http.StatusForbidden},
		{"scan with scan scope", http.MethodPost, "/signals/AAPL/scan?date=2024-01-02", scan, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			w := httptest.NewRecorder()
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.auth != "" {
				req.Header.Set("Authorization", tt.auth)
			}
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code, w.Body.String())
		})
	}
}
