package trigger

import (
	"context"
	"time"
)

// DefaultPollEvery is the EventPoll detector cadence.
const DefaultPollEvery = 50 * time.Millisecond

// Detector reports whether the user just asked for a reading, for example
// by focusing the cast button or pressing Enter in the application window.
type Detector interface {
	Triggered(ctx context.Context) (bool, error)
}

// EventPoll polls a Detector until it fires. Detector errors are treated as
// "not triggered"; transient UI glitches are expected.
type EventPoll struct {
	Detector Detector
	Every    time.Duration
}

// Next returns once the detector fires.
func (t *EventPoll) Next(ctx context.Context) error {
	every := t.Every
	if every <= 0 {
		every = DefaultPollEvery
	}
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if t.Detector != nil {
			if ok, err := t.Detector.Triggered(ctx); err == nil && ok {
				return nil
			}
		}
		if err := sleep(ctx, every); err != nil {
			return err
		}
	}
}
