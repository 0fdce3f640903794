package util

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// RerunLimiter lets at most one watch-mode rerun start per interval.
type RerunLimiter struct {
	inner *rate.Limiter
}

// NewRerunLimiter never blocks when interval is not positive.
func NewRerunLimiter(interval time.Duration) *RerunLimiter {
	if interval <= 0 {
		return &RerunLimiter{inner: rate.NewLimiter(rate.Inf, 1)}
	}
	return &RerunLimiter{inner: rate.NewLimiter(rate.Every(interval), 1)}
}

// Ready reports whether a rerun could start now without waiting.
func (l *RerunLimiter) Ready() bool {
	if l.inner.Limit() == rate.Inf {
		return true
	}
	return l.inner.Tokens() >= 1
}

// Wait blocks until the next rerun may start or ctx is done.
func (l *RerunLimiter) Wait(ctx context.Context) error {
	return l.inner.Wait(ctx)
}
