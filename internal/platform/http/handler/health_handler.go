// Package handler はプラットフォームレベルのエンドポイント用HTTPハンドラーを提供します。
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const readyTimeout = 2 * time.Second

// Check is one dependency probe (database, redis, nats).
type Check struct {
	Name  string
	Probe func(ctx context.Context) error
}

// Health はプロセス生存確認用の /healthz エンドポイントです。依存先は確認しません。
func Health(c *gin.Context) {
	c.Header("Cache-Control", "no-store")

	switch c.Request.Method {
	case http.MethodHead:
		c.Status(http.StatusOK)
	case http.MethodOptions:
		c.Status(http.StatusNoContent)
	default:
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

// Ready は /readyz 用ハンドラーを返します。いずれかの依存先が失敗すると503を返します。
func Ready(checks ...Check) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", "no-store")

		ctx, cancel := context.WithTimeout(c.Request.Context(), readyTimeout)
		defer cancel()

		status := http.StatusOK
		results := make(gin.H, len(checks))
		for _, ch := range checks {
			if err := ch.Probe(ctx); err != nil {
				slog.Warn("readiness check failed", "check", ch.Name, "error", err)
				results[ch.Name] = "down"
				status = http.StatusServiceUnavailable
				continue
			}
			results[ch.Name] = "ok"
		}

		overall := "ok"
		if status != http.StatusOK {
			overall = "degraded"
		}
		c.JSON(status, gin.H{"status": overall, "checks": results})
	}
}
