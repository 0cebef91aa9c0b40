// Package handler はcandlesフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"pattern_scanner/internal/feature/candles/domain/entity"
	"pattern_scanner/internal/feature/candles/transport/http/dto"
	"pattern_scanner/internal/feature/candles/usecase"

	"github.com/gin-gonic/gin"
)

// CandlesUsecase はローソク足データ操作のユースケースインターフェースを定義します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type CandlesUsecase interface {
	GetCandles(ctx context.Context, symbol, date string, intervalMinutes int) ([]entity.Candle, error)
}

// CandlesHandler はローソク足データのHTTPリクエストを処理します。
type CandlesHandler struct {
	uc CandlesUsecase
}

// NewCandlesHandler は指定されたusecaseでCandlesHandlerの新しいインスタンスを生成します。
func NewCandlesHandler(uc CandlesUsecase) *CandlesHandler {
	return &CandlesHandler{uc: uc}
}

// GetCandlesHandler returns one trading date of candles as JSON.
//
// エンドポイント例:
// GET /candles/:code?date=2024-01-02&interval=5
func (h *CandlesHandler) GetCandlesHandler(c *gin.Context) {
	code := c.Param("code")
	date := c.DefaultQuery("date", time.Now().UTC().Format(usecase.DateLayout))
	// 不正な値は0となり、usecase側でデフォルト値に置き換えられる
	interval, _ := strconv.Atoi(c.DefaultQuery("interval", "0"))

	candles, err := h.uc.GetCandles(c.Request.Context(), code, date, interval)
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, usecase.ErrInvalidDate) || errors.Is(err, usecase.ErrInvalidInterval) {
			status = http.StatusBadRequest
		}
		c.JSON(status, dto.ErrorResponse{Error: err.Error()})
		return
	}

	out := make([]dto.CandleResponse, 0, len(candles))
	for _, x := range candles {
		out = append(out, dto.CandleResponse{
			Time:   x.Time.UTC().Format(time.RFC3339),
			Open:   x.Open,
			High:   x.High,
			Low:    x.Low,
			Close:  x.Close,
			Volume: x.Volume,
		})
	}

	c.JSON(http.StatusOK, out)
}
