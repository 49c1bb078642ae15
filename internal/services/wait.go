package services

import (
	"context"
	"fmt"
	"time"
)

const minPollInterval = 10 * time.Millisecond

// Sleep pauses for d or until ctx is done. Non-positive durations return
// immediately.
func Sleep(ctx context.Context, d time.Duration) error {
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

// WaitForFile polls probe until it reports true. A zero timeout waits until
// ctx is cancelled. The probe runs once before the first sleep.
func WaitForFile(ctx context.Context, probe func() bool, interval, timeout time.Duration) error {
	if interval < minPollInterval {
		interval = minPollInterval
	}
	var deadline time.Time
	if timeout > 0 {
		deadline = time.Now().Add(timeout)
	}
	for {
		if probe() {
			return nil
		}
		if !deadline.IsZero() && time.Now().After(deadline) {
			return fmt.Errorf("%w: waited %s", ErrTimeout, timeout)
		}
		if err := Sleep(ctx, interval); err != nil {
			return err
		}
	}
}
