package router

import (
	candleshandler "pattern_scanner/internal/feature/candles/transport/handler"
	signalshandler "pattern_scanner/internal/feature/signals/transport/handler"
	symbollisthandler "pattern_scanner/internal/feature/symbollist/transport/handler"
	"pattern_scanner/internal/platform/http/handler"
	jwtmw "pattern_scanner/internal/platform/jwt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handlers groups the feature handlers mounted by NewRouter.
type Handlers struct {
	Candles *candleshandler.CandlesHandler
	Signals *signalshandler.SignalsHandler
	Symbols *symbollisthandler.SymbolHandler
	Ready   []handler.Check
}

func NewRouter(h Handlers, jwtSecret string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	// 認証不要
	r.GET("/healthz", handler.Health)
	r.HEAD("/healthz", handler.Health)
	r.GET("/readyz", handler.Ready(h.Ready...))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 認証必須のルート
	auth := r.Group("/")
	auth.Use(jwtmw.AuthRequired(jwtSecret))
	{
		auth.GET("/symbols", h.Symbols.List)
		auth.GET("/candles/:code", h.Candles.GetCandlesHandler)
		auth.GET("/signals/:code", jwtmw.RequireScope(jwtmw.ScopeRead), h.Signals.GetSignalsHandler)
		auth.POST("/signals/:code/scan", jwtmw.RequireScope(jwtmw.ScopeScan), h.Signals.ScanHandler)
	}

	return r
}
