package trigger

import (
	"context"
	"time"
)

// Trigger yields capture cycles.
type Trigger interface {
	Next(ctx context.Context) error
}

// Func adapts a function to Trigger.
type Func func(ctx context.Context) error

// Next calls f.
func (f Func) Next(ctx context.Context) error { return f(ctx) }

func sleep(ctx context.Context, d time.Duration) error {
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
