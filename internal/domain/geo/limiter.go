package geo

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Limiter gates outbound provider calls.
type Limiter interface {
	Wait(ctx context.Context) error
}

// IntervalLimiter hands out one permit per interval across all callers.
type IntervalLimiter struct {
	limiter *rate.Limiter
}

// NewIntervalLimiter allows one call per interval with no burst beyond the first.
func NewIntervalLimiter(interval time.Duration) *IntervalLimiter {
	if interval <= 0 {
		return &IntervalLimiter{limiter: rate.NewLimiter(rate.Inf, 1)}
	}
	return &IntervalLimiter{limiter: rate.NewLimiter(rate.Every(interval), 1)}
}

// Wait blocks until a permit is available or ctx is done.
func (l *IntervalLimiter) Wait(ctx context.Context) error {
	return l.limiter.Wait(ctx)
}

// NoopLimiter never blocks.
type NoopLimiter struct{}

// Wait implements Limiter.
func (NoopLimiter) Wait(ctx context.Context) error {
	return ctx.Err()
}

var (
	_ Limiter = (*IntervalLimiter)(nil)
	_ Limiter = NoopLimiter{}
)
