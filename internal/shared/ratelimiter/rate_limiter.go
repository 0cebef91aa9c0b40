// Package ratelimiter paces outbound calls to rate-limited market data APIs.
package ratelimiter

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Limiter は、API呼び出しなどの操作の頻度を制限するインターフェースです。
type Limiter interface {
	Wait(ctx context.Context) error
}

// RateLimiter allows at most limit operations per interval.
type RateLimiter struct {
	limiter *rate.Limiter
}

var _ Limiter = (*RateLimiter)(nil)

// NewRateLimiter creates a RateLimiter allowing limit calls per interval,
// with a burst of limit.
func NewRateLimiter(limit int, interval time.Duration) *RateLimiter {
	if limit <= 0 {
		limit = 1
	}
	return &RateLimiter{limiter: rate.NewLimiter(rate.Every(interval/time.Duration(limit)), limit)}
}

// Wait blocks until the next call is allowed or ctx is done.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	return rl.limiter.Wait(ctx)
}
