package trigger

import (
	"context"
	"log/slog"
	"time"

	"scribe/internal/logging"
)

// DefaultSlice bounds how long Interval sleeps before rechecking the context.
const DefaultSlice = 100 * time.Millisecond

// Clicker presses the external application's cast button.
type Clicker interface {
	Click(ctx context.Context) error
}

// Interval clicks the cast button every Every, measured from the previous
// click so cycle time counts against the interval. The first call clicks
// immediately.
type Interval struct {
	Clicker Clicker
	Every   time.Duration
	Slice   time.Duration
	Logger  *slog.Logger

	last time.Time
}

// Next waits out the remaining interval, clicks, and returns. Click failures
// are logged and the cycle still runs.
func (t *Interval) Next(ctx context.Context) error {
	if !t.last.IsZero() {
		slice := t.Slice
		if slice <= 0 {
			slice = DefaultSlice
		}
		for {
			remaining := t.Every - time.Since(t.last)
			if remaining <= 0 {
				break
			}
			if err := sleep(ctx, min(remaining, slice)); err != nil {
				return err
			}
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	t.last = time.Now()
	if t.Clicker == nil {
		return nil
	}
	if err := t.Clicker.Click(ctx); err != nil {
		logger := t.Logger
		if logger == nil {
			logger = logging.NewNop()
		}
		logging.WarnWithContext(logger, "click failed", "trigger_click_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check the click command and that the application window is open"),
			logging.String(logging.FieldImpact, "capturing whatever the panel currently shows"),
		)
	}
	return nil
}
