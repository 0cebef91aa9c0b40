package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"pattern_scanner/internal/feature/symbollist/domain/entity"
	"pattern_scanner/internal/feature/symbollist/transport/http/dto"

	"github.com/gin-gonic/gin"
)

// SymbolUsecase は銘柄情報に関するユースケースのインターフェースです。
// Following Go convention: interfaces are defined by the consumer (handler), not the provider (usecase).
type SymbolUsecase interface {
	ListActiveSymbols(ctx context.Context) ([]entity.Symbol, error)
}

// SymbolHandler は銘柄情報に関するHTTPリクエストを処理します。
type SymbolHandler struct {
	uc SymbolUsecase
}

// NewSymbolHandler は新しい SymbolHandler を作成します。
func NewSymbolHandler(uc SymbolUsecase) *SymbolHandler {
	return &SymbolHandler{uc: uc}
}

// List returns the scan universe: every active symbol, in the order the
// scanner processes them (sort key, then code). Inactive symbols never appear.
// ?exchange=NASDAQ narrows the list to one venue (case-insensitive).
// The body is always a JSON array, [] when nothing matches.
func (h *SymbolHandler) List(c *gin.Context) {
	symbols, err := h.uc.ListActiveSymbols(c.Request.Context())
	if err != nil {
		slog.Error("failed to list symbols", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list symbols"})
		return
	}

	exchange := strings.TrimSpace(c.Query("exchange"))
	out := make([]dto.SymbolItem, 0, len(symbols))
	for _, s := range symbols {
		if exchange != "" && !strings.EqualFold(s.Exchange, exchange) {
			continue
		}
		out = append(out, dto.SymbolItem{Code: s.Code, Name: s.Name, Exchange: s.Exchange})
	}
	c.JSON(http.StatusOK, out)
}
