package ratelimit

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Pacer enforces a fixed polite delay between consecutive requests,
// independent of the server-advertised quota.
type Pacer struct {
	limiter *rate.Limiter
}

// NewPacer creates a pacer that allows one request per delay interval. The
// first request passes immediately. A non-positive delay disables pacing.
func NewPacer(delay time.Duration) *Pacer {
	if delay <= 0 {
		return &Pacer{limiter: rate.NewLimiter(rate.Inf, 1)}
	}
	return &Pacer{limiter: rate.NewLimiter(rate.Every(delay), 1)}
}

// Wait blocks until the next request is allowed or the context is cancelled.
func (p *Pacer) Wait(ctx context.Context) error {
	return p.limiter.Wait(ctx)
}
