package capture

import (
	"context"
	"strings"
	"time"
)

// Defaults for Reader.
const (
	DefaultInitialDelay = 200 * time.Millisecond
	DefaultPolls        = 6
	DefaultInterval     = 80 * time.Millisecond

	// MinLines and MinKeywords define a complete-looking reading.
	MinLines    = 5
	MinKeywords = 3
)

// Keywords are the line labels of a rendered reading.
var Keywords = []string{"公历", "农历", "干支", "旬空"}

// LooksComplete reports whether text has at least MinLines non-empty lines
// and at least MinKeywords of the Keywords.
func LooksComplete(text string) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}
	lines := 0
	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		if strings.TrimSpace(line) != "" {
			lines++
		}
	}
	if lines < MinLines {
		return false
	}
	hits := 0
	for _, kw := range Keywords {
		if strings.Contains(text, kw) {
			hits++
		}
	}
	return hits >= MinKeywords
}

// Reader polls a Probe until the text looks complete.
type Reader struct {
	Probe        Probe
	InitialDelay time.Duration
	Polls        int
	Interval     time.Duration
}

// NewReader returns a Reader with the default timings.
func NewReader(p Probe) *Reader {
	return &Reader{
		Probe:        p,
		InitialDelay: DefaultInitialDelay,
		Polls:        DefaultPolls,
		Interval:     DefaultInterval,
	}
}

// Read waits InitialDelay to skip half-painted frames, then polls up to Polls
// times. It returns the first complete-looking text, or else the longest
// non-empty text seen, which may still be incomplete.
func (r *Reader) Read(ctx context.Context) string {
	sleep(ctx, r.InitialDelay)

	polls := r.Polls
	if polls <= 0 {
		polls = 1
	}
	best := ""
	bestLen := -1
	for i := 0; i < polls; i++ {
		current := readText(ctx, r.Probe)
		if current != "" && len(current) >= bestLen {
			best = current
			bestLen = len(current)
		}
		if LooksComplete(current) {
			return current
		}
		if i < polls-1 {
			sleep(ctx, r.Interval)
		}
	}
	return best
}

// WaitNonEmpty polls p until it returns any non-empty text or timeout
// elapses, returning the last text read.
func WaitNonEmpty(ctx context.Context, p Probe, timeout, poll time.Duration) string {
	if poll <= 0 {
		poll = 50 * time.Millisecond
	}
	deadline := time.Now().Add(timeout)
	for {
		text := readText(ctx, p)
		if text != "" {
			return text
		}
		if !time.Now().Before(deadline) || ctx.Err() != nil {
			return text
		}
		sleep(ctx, poll)
	}
}

func readText(ctx context.Context, p Probe) string {
	if p == nil {
		return ""
	}
	text, err := p.Text(ctx)
	if err != nil {
		return ""
	}
	return text
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
