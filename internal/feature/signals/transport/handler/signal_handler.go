// Package handler はsignalsフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	candleusecase "pattern_scanner/internal/feature/candles/usecase"
	"pattern_scanner/internal/feature/signals/domain/entity"
	"pattern_scanner/internal/feature/signals/transport/http/dto"
	"pattern_scanner/internal/feature/signals/usecase"

	"github.com/gin-gonic/gin"
)

// SignalsUsecase はシグナル取得とオンデマンドスキャンのインターフェースです。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type SignalsUsecase interface {
	GetSignals(ctx context.Context, symbol, date string) ([]entity.EntrySignal, error)
	Scan(ctx context.Context, symbol, date string, intervalMinutes int) (usecase.ScanResult, error)
}

// SignalsHandler はシグナルのHTTPリクエストを処理します。
type SignalsHandler struct {
	uc SignalsUsecase
}

func NewSignalsHandler(uc SignalsUsecase) *SignalsHandler {
	return &SignalsHandler{uc: uc}
}

// GetSignalsHandler returns stored signals for one trading date.
//
// エンドポイント例:
// GET /signals/:code?date=2024-01-02
func (h *SignalsHandler) GetSignalsHandler(c *gin.Context) {
	code := c.Param("code")
	date := c.DefaultQuery("date", time.Now().UTC().Format(candleusecase.DateLayout))

	signals, err := h.uc.GetSignals(c.Request.Context(), code, date)
	if err != nil {
		c.JSON(statusFor(err), dto.ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, signals)
}

// ScanHandler runs the pipeline on demand without persisting anything.
//
// エンドポイント例:
// POST /signals/:code/scan?date=2024-01-02&interval=5
func (h *SignalsHandler) ScanHandler(c *gin.Context) {
	code := c.Param("code")
	date := c.DefaultQuery("date", time.Now().UTC().Format(candleusecase.DateLayout))
	interval, _ := strconv.Atoi(c.DefaultQuery("interval", "0"))

	res, err := h.uc.Scan(c.Request.Context(), code, date, interval)
	if err != nil {
		c.JSON(statusFor(err), dto.ErrorResponse{Error: err.Error()})
		return
	}

	patterns := make([]dto.PatternResponse, 0, len(res.Patterns))
	for _, p := range res.Patterns {
		patterns = append(patterns, dto.PatternResponse{
			Pattern:               p.Kind.String(),
			Time:                  p.Time.UTC().Format(time.RFC3339),
			Confidence:            p.Confidence,
			Description:           p.Description,
			PriceAtDetection:      p.PriceAtDetection,
			SupportLevel:          p.SupportLevel,
			ResistanceLevel:       p.ResistanceLevel,
			HasVolumeConfirmation: p.HasVolumeConfirmation,
		})
	}
	signals := res.Signals
	if signals == nil {
		signals = []entity.EntrySignal{}
	}

	c.JSON(http.StatusOK, dto.ScanResponse{
		Symbol:          res.Symbol,
		Date:            res.Date,
		IntervalMinutes: res.IntervalMinutes,
		Patterns:        patterns,
		Signals:         signals,
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, candleusecase.ErrInvalidDate), errors.Is(err, candleusecase.ErrInvalidInterval):
		return http.StatusBadRequest
	case errors.Is(err, candleusecase.ErrUnsortedCandles):
		return http.StatusInternalServerError
	default:
		return http.StatusBadGateway
	}
}
