package txcore

import (
	"context"
	"time"
)

// RealSleeper blocks the calling goroutine for at least the requested
// duration, respecting context cancellation. A duration <= 0 returns
// immediately without starting a timer.
type RealSleeper struct{}

func (RealSleeper) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
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

// NullSleeper never blocks. It is intended for unit tests that want to
// exercise retry logic without waiting out real backoff delays.
type NullSleeper struct{}

func (NullSleeper) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return nil
}
