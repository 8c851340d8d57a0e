package logging

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"
)

// StatusComponent tags events published by a LineSink.
const StatusComponent = "status"

// LineSink is the append-only stream of status lines meant for the person
// running scribe. Each line is timestamped, written to Out, published to the
// hub, and recorded at debug level on the structured logger.
type LineSink struct {
	mu     sync.Mutex
	out    io.Writer
	hub    *StreamHub
	logger *slog.Logger
	now    func() time.Time
}

// NewLineSink returns a sink. Any of out, hub, or logger may be nil.
func NewLineSink(out io.Writer, hub *StreamHub, logger *slog.Logger) *LineSink {
	return &LineSink{out: out, hub: hub, logger: logger, now: time.Now}
}

// Log appends one line.
func (s *LineSink) Log(line string) {
	ts := s.now()
	s.mu.Lock()
	if s.out != nil {
		fmt.Fprintf(s.out, "[%s] %s\n", ts.Format(time.TimeOnly), line)
	}
	s.mu.Unlock()
	s.hub.Publish(LogEvent{Timestamp: ts, Level: "INFO", Message: line, Component: StatusComponent})
	if s.logger != nil {
		s.logger.Debug("status line", String(FieldLine, line))
	}
}
