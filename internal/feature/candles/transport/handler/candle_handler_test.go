package handler_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"pattern_scanner/internal/feature/candles/domain/entity"
	"pattern_scanner/internal/feature/candles/transport/handler"
	"pattern_scanner/internal/feature/candles/usecase"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

// mockCandlesUsecase はCandlesUsecaseインターフェースのモック実装です。
type mockCandlesUsecase struct {
	GetCandlesFunc func(ctx context.Context, symbol, date string, intervalMinutes int) ([]entity.Candle, error)
}

func (m *mockCandlesUsecase) GetCandles(ctx context.Context, symbol, date string, intervalMinutes int) ([]entity.Candle, error) {
	return m.GetCandlesFunc(ctx, symbol, date, intervalMinutes)
}

// TestCandlesHandler_GetCandlesHandler はGetCandlesHandlerのHTTPリクエスト/レスポンス処理をテストします。
func TestCandlesHandler_GetCandlesHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)

	testTime := time.Date(2024, 1, 2, 14, 30, 0, 0, time.UTC)

	tests := []struct {
		name           string
		url            string
		mockGetCandles func(ctx context.Context, symbol, date string, intervalMinutes int) ([]entity.Candle, error)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "success: all parameters specified",
			url:  "/candles/AAPL?date=2024-01-02&interval=5",
			mockGetCandles: func(ctx context.Context, symbol, date string, intervalMinutes int) ([]entity.Candle, error) {
				assert.Equal(t, "AAPL", symbol)
				assert.Equal(t, "2024-01-02", date)
				assert.Equal(t, 5, intervalMinutes)
				return []entity.Candle{
					{Time: testTime, Open: 100, High: 110, Low: 90, Close: 105, Volume: 1000, IntervalMinutes: 5},
				}, nil
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `[{"time":"2024-01-02T14:30:00Z","open":100,"high":110,"low":90,"close":105,"volume":1000}]`,
		},
		{
			name: "edge case: invalid interval string is passed as zero",
			url:  "/candles/AAPL?date=2024-01-02&interval=abc",
			mockGetCandles: func(ctx context.Context, symbol, date string, intervalMinutes int) ([]entity.Candle, error) {
				assert.Equal(t, 0, intervalMinutes)
				return []entity.Candle{}, nil
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `[]`,
		},
		{
			name: "error: invalid date maps to bad request",
			url:  "/candles/AAPL?date=02-01-2024",
			mockGetCandles: func(ctx context.Context, symbol, date string, intervalMinutes int) ([]entity.Candle, error) {
				return nil, fmt.Errorf("%w %q", usecase.ErrInvalidDate, date)
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"invalid date \"02-01-2024\""}`,
		},
		{
			name: "error: usecase returns error",
			url:  "/candles/9999.T?date=2024-01-02",
			mockGetCandles: func(ctx context.Context, symbol, date string, intervalMinutes int) ([]entity.Candle, error) {
				return nil, errors.New("internal server error")
			},
			expectedStatus: http.StatusBadGateway,
			expectedBody:   `{"error":"internal server error"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockUC := &mockCandlesUsecase{GetCandlesFunc: tt.mockGetCandles}
			h := handler.NewCandlesHandler(mockUC)

			router := gin.New()
			router.GET("/candles/:code", h.GetCandlesHandler)

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.JSONEq(t, tt.expectedBody, w.Body.String())
		})
	}
}
