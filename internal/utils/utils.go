package utils

import (
	"context"
	"time"
)

// WaitFor blocks for d or until ctx is done, whichever comes first.
func WaitFor(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Backoff returns base doubled attempt-1 times, capped at limit.
func Backoff(attempt int, base, limit time.Duration) time.Duration {
	if attempt < 1 || base <= 0 {
		return 0
	}

	d := base
	for i := 1; i < attempt; i++ {
		d *= 2
		if limit > 0 && d >= limit {
			return limit
		}
	}

	if limit > 0 && d > limit {
		return limit
	}
	return d
}
